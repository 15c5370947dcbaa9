/*
Package observability exports engine activity as Prometheus metrics.

Metrics plugs into the engine through lifecycle hooks, so anything that accepts
domain.LifecycleHooks (an Engine, a session Host, the trial Runner) can be
measured without knowing about Prometheus:

	m := observability.NewMetrics()
	host := session.NewHost(manager, library, session.WithHooks(m.Hooks()))
	mux.Handle("/metrics", m.Handler())
*/
package observability

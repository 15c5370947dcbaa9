package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/metamaze/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors fed by engine hooks.
type Metrics struct {
	registry *prometheus.Registry

	steps      *prometheus.CounterVec
	goals      *prometheus.CounterVec
	plans      *prometheus.CounterVec
	validCount *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a private registry, along with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metamaze_steps_total",
				Help: "Total number of doors chosen, by outcome",
			},
			[]string{"outcome"},
		),
		goals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metamaze_goals_reached_total",
				Help: "Total number of goals collected",
			},
			[]string{"goal"},
		),
		plans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metamaze_plans_total",
				Help: "Total number of planner queries, by map type and advice",
			},
			[]string{"map_type", "advice"},
		),
		validCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "metamaze_plan_valid_instances",
				Help:    "Instances still consistent with observations when planning",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
			[]string{"map_type"},
		),
	}
	m.registry.MustRegister(
		m.steps, m.goals, m.plans, m.validCount,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry so callers can add collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRoomEnter: func(_ context.Context, _ *domain.StepEvent) {
			m.steps.WithLabelValues("moved").Inc()
		},
		OnDoorBlocked: func(_ context.Context, _ *domain.StepEvent) {
			m.steps.WithLabelValues("blocked").Inc()
		},
		OnGoalReached: func(_ context.Context, e *domain.GoalEvent) {
			m.goals.WithLabelValues(strconv.Itoa(e.Goal)).Inc()
		},
		OnPlan: func(_ context.Context, e *domain.PlanEvent) {
			m.plans.WithLabelValues(e.MapType, adviceLabel(e)).Inc()
			m.validCount.WithLabelValues(e.MapType).Observe(float64(e.ValidInstances))
		},
	}
}

func adviceLabel(e *domain.PlanEvent) string {
	switch {
	case e.Door < 0:
		return "unreachable"
	case e.Here:
		return "here"
	default:
		return "door"
	}
}

package runner

import (
	"log/slog"

	"github.com/aretw0/metamaze/pkg/domain"
)

const (
	// DefaultMaxSteps bounds a trial when WithMaxSteps is not given.
	DefaultMaxSteps = 100
	// DefaultSeed seeds instance selection and random agents.
	DefaultSeed uint64 = 1
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithTrials sets the number of trials.
func WithTrials(n int) Option {
	return func(r *Runner) {
		r.trials = n
	}
}

// WithMaxSteps sets the step budget of a single trial.
func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		r.maxSteps = n
	}
}

// WithSeed seeds instance selection and the agents' random sources.
func WithSeed(seed uint64) Option {
	return func(r *Runner) {
		r.seed = seed
	}
}

// WithAgent selects how the agent of each trial is built.
func WithAgent(factory AgentFactory) Option {
	return func(r *Runner) {
		r.agent = factory
	}
}

// WithStopOnMistake ends a trial at the first door that disagrees with the
// planner, the way test trials are scored.
func WithStopOnMistake(stop bool) Option {
	return func(r *Runner) {
		r.stopOnMistake = stop
	}
}

// WithHooks registers lifecycle hooks on every trial engine.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/aretw0/metamaze"
	"github.com/aretw0/metamaze/internal/logging"
	"github.com/aretw0/metamaze/pkg/domain"
	"github.com/aretw0/metamaze/pkg/maze"
	"github.com/aretw0/metamaze/pkg/mazemap"
	"github.com/aretw0/metamaze/pkg/ports"
	"github.com/aretw0/metamaze/pkg/schema"
)

const (
	// NeedValue is the need every goal starts a trial with.
	NeedValue = 1.0
	// GoalValue is subtracted from a goal's need when it is found.
	GoalValue = 1.0
)

var (
	ErrNilConfig = errors.New("nil maze config")
	ErrNoGoals   = errors.New("maze has no goals to chase")
)

// Runner repeats trials of one maze configuration.
type Runner struct {
	cfg *schema.Config

	trials        int
	maxSteps      int
	seed          uint64
	agent         AgentFactory
	stopOnMistake bool
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
}

// New creates a Runner for cfg. By default it runs one trial with a
// planner-following agent.
func New(cfg *schema.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		trials:   1,
		maxSteps: DefaultMaxSteps,
		seed:     DefaultSeed,
		agent:    Planner(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TrialResult summarizes one trial.
type TrialResult struct {
	Trial        int   `json:"trial"`
	InstanceSeed int64 `json:"instance_seed"`
	Steps        int   `json:"steps"`
	// Goals lists the goals found, in order.
	Goals []int `json:"goals"`
	// Advised counts the steps where the planner had a door to offer.
	Advised int `json:"advised"`
	// Agreed counts the advised steps where the agent took that door.
	Agreed  int  `json:"agreed"`
	Mistake bool `json:"mistake,omitempty"`
}

// Success reports whether any goal was found.
func (t TrialResult) Success() bool {
	return len(t.Goals) > 0
}

// Report collects the results of a run.
type Report struct {
	Maze   string        `json:"maze"`
	Trials []TrialResult `json:"trials"`
}

// Successes counts the trials that found at least one goal.
func (r *Report) Successes() int {
	n := 0
	for _, t := range r.Trials {
		if t.Success() {
			n++
		}
	}
	return n
}

// GoalsFound counts every goal found across trials.
func (r *Report) GoalsFound() int {
	n := 0
	for _, t := range r.Trials {
		n += len(t.Goals)
	}
	return n
}

// Agreement is the share of advised steps where the agent agreed with the
// planner. It is zero when the planner never advised.
func (r *Report) Agreement() float64 {
	advised, agreed := 0, 0
	for _, t := range r.Trials {
		advised += t.Advised
		agreed += t.Agreed
	}
	if advised == 0 {
		return 0
	}
	return float64(agreed) / float64(advised)
}

// Run executes all trials. A cancelled context stops the run between steps.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.cfg == nil {
		return nil, ErrNilConfig
	}
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	if r.cfg.Goals == 0 {
		return nil, ErrNoGoals
	}

	rng := rand.New(rand.NewPCG(r.seed, uint64(r.cfg.MetaSeed)))
	report := &Report{Maze: r.cfg.Name}
	for trial := range r.trials {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		index := pickInstance(rng, r.cfg.Frequencies())
		res, err := r.Trial(ctx, trial, index, rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64())))
		if err != nil {
			return report, fmt.Errorf("trial %d: %w", trial, err)
		}
		report.Trials = append(report.Trials, res)
		r.logger.Info("trial finished",
			"trial", trial,
			"instance_seed", res.InstanceSeed,
			"steps", res.Steps,
			"goals", len(res.Goals),
			"agreed", res.Agreed,
			"advised", res.Advised,
		)
	}
	return report, nil
}

// Trial runs a single trial on the instance at instanceIndex.
func (r *Runner) Trial(ctx context.Context, trial, instanceIndex int, rng *rand.Rand) (TrialResult, error) {
	cfg := r.cfg.Clone()
	if len(cfg.InstanceSeeds) > 0 {
		cfg.InstanceIndex = instanceIndex
	}
	res := TrialResult{Trial: trial, InstanceSeed: cfg.InstanceSeed()}

	eng, err := metamaze.New(cfg,
		metamaze.WithLifecycleHooks(r.hooks),
		metamaze.WithLogger(r.logger),
		metamaze.WithSessionID(fmt.Sprintf("trial-%d", trial)),
	)
	if err != nil {
		return res, err
	}
	agent := r.agent(eng, rng)

	needs := make([]float64, cfg.Goals)
	for i := range needs {
		needs[i] = NeedValue
	}
	found := func(goals []int) {
		for _, g := range goals {
			needs[g] = max(needs[g]-GoalValue, 0)
			res.Goals = append(res.Goals, g)
		}
	}
	found(eng.Reached())

	for res.Steps < r.maxSteps && len(res.Goals) < cfg.Goals {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		goal := mostNeeded(needs)

		advice, err := eng.Plan(ctx, goal)
		if err != nil && !errors.Is(err, mazemap.ErrRoomMapPlanning) {
			return res, err
		}
		room := eng.Room()
		door, err := chooseDoor(ctx, agent, room, goal, advice)
		if err != nil {
			return res, fmt.Errorf("agent: %w", err)
		}

		if advice != nil && advice.Reachable && !advice.Here {
			res.Advised++
			if door == advice.Door {
				res.Agreed++
			} else if r.stopOnMistake {
				res.Mistake = true
				break
			}
		}

		step, err := eng.Step(ctx, door)
		if err != nil {
			return res, err
		}
		res.Steps++
		agent.Observe(ctx, door, step.Moved)
		found(step.Reached)
	}
	return res, nil
}

func chooseDoor(ctx context.Context, agent ports.Agent, room maze.RoomView, goal int, advice *metamaze.Advice) (int, error) {
	if f, ok := agent.(follower); ok && advice != nil {
		return f.Follow(ctx, room, advice)
	}
	return agent.ChooseDoor(ctx, room, goal)
}

// mostNeeded returns the goal with the highest remaining need, the lowest
// index on ties, and goal 0 when every need is satisfied.
func mostNeeded(needs []float64) int {
	best, need := 0, 0.0
	for i, n := range needs {
		if n > need {
			best, need = i, n
		}
	}
	return best
}

// pickInstance draws an index with probability proportional to its frequency.
func pickInstance(rng *rand.Rand, freqs []float64) int {
	total := 0.0
	for _, f := range freqs {
		total += f
	}
	if total <= 0 {
		return rng.IntN(len(freqs))
	}
	x := rng.Float64() * total
	for i, f := range freqs {
		if x < f {
			return i
		}
		x -= f
	}
	return len(freqs) - 1
}

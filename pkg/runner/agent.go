package runner

import (
	"context"
	"math/rand/v2"

	"github.com/aretw0/metamaze"
	"github.com/aretw0/metamaze/pkg/maze"
	"github.com/aretw0/metamaze/pkg/ports"
)

// AgentFactory builds the agent of one trial. rng is private to the trial.
type AgentFactory func(eng *metamaze.Engine, rng *rand.Rand) ports.Agent

// Planner returns a factory for agents that follow the planner's advice.
func Planner() AgentFactory {
	return func(eng *metamaze.Engine, rng *rand.Rand) ports.Agent {
		return NewPlannerAgent(eng, rng)
	}
}

// Random returns a factory for uniform random walkers.
func Random() AgentFactory {
	return func(_ *metamaze.Engine, rng *rand.Rand) ports.Agent {
		return NewRandomAgent(rng)
	}
}

// follower is an agent that can act on the advice the runner already has,
// sparing a second search.
type follower interface {
	Follow(ctx context.Context, room maze.RoomView, advice *metamaze.Advice) (int, error)
}

// PlannerAgent takes the door the planner recommends and wanders at random
// when the planner has nothing to offer.
type PlannerAgent struct {
	engine *metamaze.Engine
	rng    *rand.Rand
}

func NewPlannerAgent(eng *metamaze.Engine, rng *rand.Rand) *PlannerAgent {
	return &PlannerAgent{engine: eng, rng: rng}
}

func (a *PlannerAgent) ChooseDoor(ctx context.Context, room maze.RoomView, goal int) (int, error) {
	advice, err := a.engine.Plan(ctx, goal)
	if err != nil {
		return 0, err
	}
	return a.Follow(ctx, room, advice)
}

// Follow picks a door from advice already computed for room.
func (a *PlannerAgent) Follow(_ context.Context, room maze.RoomView, advice *metamaze.Advice) (int, error) {
	if advice.Reachable && !advice.Here {
		return advice.Door, nil
	}
	return randomDoor(a.rng, room), nil
}

func (a *PlannerAgent) Observe(context.Context, int, bool) {}

// RandomAgent picks an open door uniformly. It does not retry a door that
// just failed to move it while another open door exists.
type RandomAgent struct {
	rng     *rand.Rand
	blocked int
}

func NewRandomAgent(rng *rand.Rand) *RandomAgent {
	return &RandomAgent{rng: rng, blocked: -1}
}

func (a *RandomAgent) ChooseDoor(_ context.Context, room maze.RoomView, _ int) (int, error) {
	open := room.OpenDoors()
	if a.blocked >= 0 && len(open) > 1 {
		for i, d := range open {
			if d == a.blocked {
				open = append(open[:i], open[i+1:]...)
				break
			}
		}
	}
	if len(open) == 0 {
		return a.rng.IntN(len(room.Doors)), nil
	}
	return open[a.rng.IntN(len(open))], nil
}

func (a *RandomAgent) Observe(_ context.Context, door int, moved bool) {
	if moved {
		a.blocked = -1
	} else {
		a.blocked = door
	}
}

func randomDoor(rng *rand.Rand, room maze.RoomView) int {
	open := room.OpenDoors()
	if len(open) == 0 {
		return rng.IntN(len(room.Doors))
	}
	return open[rng.IntN(len(open))]
}

package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/metamaze/pkg/maze"
)

// ErrUnknownLink is returned when a lift names a link that was never declared.
var ErrUnknownLink = errors.New("unknown link name")

// Builder collects the layout of a maze. Nothing is validated until Build.
type Builder struct {
	rooms, doors, goals int

	links   []*LinkBuilder
	lifts   []*LiftBuilder
	roomOps []func(*maze.Maze) error

	start int
	seed  *int64
	marks *maze.MarkOptions
}

// New starts a maze with the given dimensions.
func New(rooms, doors, goals int) *Builder {
	return &Builder{rooms: rooms, doors: doors, goals: goals}
}

// Room returns a builder for the room with index id.
func (b *Builder) Room(id int) *RoomBuilder {
	return &RoomBuilder{builder: b, id: id}
}

// Lift links two named links (or lifts) at level, so firing cause arms effect.
func (b *Builder) Lift(level int, cause, effect string) *LiftBuilder {
	lb := &LiftBuilder{level: level, cause: cause, effect: effect, prob: 1, delay: 1}
	b.lifts = append(b.lifts, lb)
	return lb
}

// Start places the agent in room before the first step.
func (b *Builder) Start(room int) *Builder {
	b.start = room
	return b
}

// InstanceSeed pins the instance that resolves probabilistic links.
func (b *Builder) InstanceSeed(seed int64) *Builder {
	b.seed = &seed
	return b
}

// Marks computes room marks on Build.
func (b *Builder) Marks(opts maze.MarkOptions) *Builder {
	b.marks = &opts
	return b
}

// Build creates the maze, applying links first, then lifts in declaration order.
func (b *Builder) Build() (*maze.Maze, error) {
	if b.rooms < 1 || b.doors < 1 || b.goals < 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d with %d goals", b.rooms, b.doors, b.goals)
	}
	mz := maze.New(b.rooms, b.doors, b.goals)
	named := make(map[string]int)

	for _, l := range b.links {
		idx, err := mz.OpenLink(l.from, l.to, l.door, l.prob, l.delay)
		if err != nil {
			return nil, fmt.Errorf("room %d door %d: %w", l.from, l.door, err)
		}
		if err := remember(named, l.name, idx); err != nil {
			return nil, err
		}
	}

	for _, lb := range b.lifts {
		cause, ok := named[lb.cause]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLink, lb.cause)
		}
		effect, ok := named[lb.effect]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLink, lb.effect)
		}
		idx, err := mz.AddContext(lb.level, cause, effect, lb.prob, lb.delay)
		if err != nil {
			return nil, fmt.Errorf("lift %s -> %s: %w", lb.cause, lb.effect, err)
		}
		if err := remember(named, lb.name, idx); err != nil {
			return nil, err
		}
	}

	for _, op := range b.roomOps {
		if err := op(mz); err != nil {
			return nil, err
		}
	}
	if err := mz.SetCurrent(b.start); err != nil {
		return nil, err
	}
	if b.seed != nil {
		mz.SetInstanceSeed(*b.seed)
	}
	if b.marks != nil {
		mz.MarkRooms(*b.marks)
	}
	return mz, nil
}

func remember(named map[string]int, name string, idx int) error {
	if name == "" {
		return nil
	}
	if _, dup := named[name]; dup {
		return fmt.Errorf("duplicate link name %q", name)
	}
	named[name] = idx
	return nil
}

package dsl

import "github.com/aretw0/metamaze/pkg/maze"

// RoomBuilder configures one room.
type RoomBuilder struct {
	builder *Builder
	id      int
}

// Door declares a link leaving through door. It opens with certainty after
// one step unless Prob or Delay say otherwise.
func (r *RoomBuilder) Door(door int) *LinkBuilder {
	lb := &LinkBuilder{from: r.id, door: door, to: -1, prob: 1, delay: 1}
	r.builder.links = append(r.builder.links, lb)
	return lb
}

// Goal places goal in the room.
func (r *RoomBuilder) Goal(goal int) *RoomBuilder {
	id := r.id
	r.builder.roomOps = append(r.builder.roomOps, func(m *maze.Maze) error { return m.SetGoal(id, goal) })
	return r
}

// Mark tags the room.
func (r *RoomBuilder) Mark(mark int) *RoomBuilder {
	id := r.id
	r.builder.roomOps = append(r.builder.roomOps, func(m *maze.Maze) error { return m.SetMark(id, mark) })
	return r
}

// LinkBuilder configures a level-0 link.
type LinkBuilder struct {
	from, door, to int
	prob           float64
	delay          int
	name           string
}

// To sets the destination room.
func (l *LinkBuilder) To(room int) *LinkBuilder {
	l.to = room
	return l
}

// Prob sets the chance that the link opens.
func (l *LinkBuilder) Prob(p float64) *LinkBuilder {
	l.prob = p
	return l
}

// Delay sets how many steps the link takes to open.
func (l *LinkBuilder) Delay(steps int) *LinkBuilder {
	l.delay = steps
	return l
}

// As names the link so lifts can refer to it.
func (l *LinkBuilder) As(name string) *LinkBuilder {
	l.name = name
	return l
}

// LiftBuilder configures a higher-level context.
type LiftBuilder struct {
	level         int
	cause, effect string
	prob          float64
	delay         int
	name          string
}

// Prob sets the chance that the lift fires.
func (l *LiftBuilder) Prob(p float64) *LiftBuilder {
	l.prob = p
	return l
}

// Delay sets the effect delay of the lift.
func (l *LiftBuilder) Delay(steps int) *LiftBuilder {
	l.delay = steps
	return l
}

// As names the lift so higher lifts can refer to it.
func (l *LiftBuilder) As(name string) *LiftBuilder {
	l.name = name
	return l
}

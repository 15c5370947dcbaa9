package maze

import (
	"fmt"
	"slices"
)

// Kind tells which arena a Ref points into.
type Kind uint8

const (
	KindRoom Kind = iota
	KindContext
)

func (k Kind) String() string {
	switch k {
	case KindRoom:
		return "room"
	case KindContext:
		return "context"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Ref addresses a component inside the Maze that owns it.
// Indices stay valid across Clone.
type Ref struct {
	Kind  Kind
	Index int
}

// RoomRef returns a reference to the room at index i.
func RoomRef(i int) Ref { return Ref{Kind: KindRoom, Index: i} }

// ContextRef returns a reference to the context at index i.
func ContextRef(i int) Ref { return Ref{Kind: KindContext, Index: i} }

func (r Ref) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.Index)
}

// Room is a location with a fixed set of doors and goals.
type Room struct {
	ID           int
	Mark         int
	Doors        []bool
	Goals        []bool
	InstanceSeed int64

	// CauseContexts are the level-0 contexts answering to this room's doors.
	CauseContexts []int
	// Pending are contexts scheduled for delivery to this room.
	Pending []int

	signatures []*Signature
}

// HasGoal reports whether goal g is placed in the room.
func (r *Room) HasGoal(g int) bool {
	return g >= 0 && g < len(r.Goals) && r.Goals[g]
}

func (r *Room) clone() *Room {
	c := *r
	c.Doors = slices.Clone(r.Doors)
	c.Goals = slices.Clone(r.Goals)
	c.CauseContexts = slices.Clone(r.CauseContexts)
	c.Pending = slices.Clone(r.Pending)
	c.signatures = make([]*Signature, len(r.signatures))
	for i, s := range r.signatures {
		c.signatures[i] = s.Clone()
	}
	return &c
}

// Context is a delayed probabilistic link between two components.
// Level-0 contexts link rooms through a door; higher levels link contexts.
type Context struct {
	ID          int
	Level       int
	Cause       Ref
	Effect      Ref
	Door        int
	Probability float64
	EffectDelay int
	EffectTimer int

	CauseContexts []int
	Pending       []int
}

func (c *Context) clone() *Context {
	n := *c
	n.CauseContexts = slices.Clone(c.CauseContexts)
	n.Pending = slices.Clone(c.Pending)
	return &n
}

// RoomView is what an agent senses in the current room.
type RoomView struct {
	ID    int    `json:"id"`
	Index int    `json:"index"`
	Mark  int    `json:"mark"`
	Doors []bool `json:"doors"`
	Goals []bool `json:"goals"`
}

// OpenDoors lists the indices of open doors.
func (v RoomView) OpenDoors() []int {
	var open []int
	for i, d := range v.Doors {
		if d {
			open = append(open, i)
		}
	}
	return open
}

// HasGoal reports whether goal g is visible in the view.
func (v RoomView) HasGoal(g int) bool {
	return g >= 0 && g < len(v.Goals) && v.Goals[g]
}

// VisibleGoals lists the indices of the goals visible in the view.
func (v RoomView) VisibleGoals() []int {
	var goals []int
	for i, g := range v.Goals {
		if g {
			goals = append(goals, i)
		}
	}
	return goals
}

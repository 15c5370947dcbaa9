package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRoomEnter   EventType = "room_enter"
	EventDoorBlocked EventType = "door_blocked"
	EventGoalReached EventType = "goal_reached"
	EventPlan        EventType = "plan"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// NewEventBase stamps an event of the given type.
func NewEventBase(t EventType, sessionID string) EventBase {
	return EventBase{Timestamp: time.Now().UTC(), Type: t, SessionID: sessionID}
}

// StepEvent describes one door choice.
type StepEvent struct {
	EventBase
	Door     int  `json:"door"`
	FromRoom int  `json:"from_room"`
	ToRoom   int  `json:"to_room"`
	Moved    bool `json:"moved"`
}

// GoalEvent is emitted when the agent collects a goal.
type GoalEvent struct {
	EventBase
	Goal   int `json:"goal"`
	RoomID int `json:"room_id"`
}

// PlanEvent is emitted every time the planner recommends a door.
type PlanEvent struct {
	EventBase
	Goal int `json:"goal"`
	// Door is -1 when the goal is unreachable.
	Door int `json:"door"`
	// Here is set when the goal is in the current room.
	Here           bool   `json:"here"`
	MapType        string `json:"map_type"`
	ValidInstances int    `json:"valid_instances"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnRoomEnter   func(context.Context, *StepEvent)
	OnDoorBlocked func(context.Context, *StepEvent)
	OnGoalReached func(context.Context, *GoalEvent)
	OnPlan        func(context.Context, *PlanEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRoomEnter:   chain(h.OnRoomEnter, other.OnRoomEnter),
		OnDoorBlocked: chain(h.OnDoorBlocked, other.OnDoorBlocked),
		OnGoalReached: chain(h.OnGoalReached, other.OnGoalReached),
		OnPlan:        chain(h.OnPlan, other.OnPlan),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}

package domain

import (
	"slices"
	"time"
)

// Move records one door choice made inside a session.
type Move struct {
	Door  int  `json:"door"`
	Moved bool `json:"moved"`
	// RoomID is the id of the room the agent stood in after the choice.
	RoomID int `json:"room_id"`
}

// State is the persisted snapshot of a session.
//
// Mazes are generated deterministically from their configuration, so a session
// is fully described by the maze name and the doors chosen so far: replaying
// the doors against a freshly built maze yields the same rooms and outcomes.
type State struct {
	SessionID string `json:"session_id"`
	Maze      string `json:"maze"`
	Goal      int    `json:"goal"`
	Moves     []Move `json:"moves"`
	// GoalsReached lists goal indices in the order they were collected.
	GoalsReached []int     `json:"goals_reached,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Sealed carries the encrypted session when a store middleware hides it.
	// It is empty in every state handed to the engine.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewState creates an empty session on the given maze.
func NewState(sessionID, mazeName string, goal int) *State {
	now := time.Now().UTC()
	return &State{
		SessionID: sessionID,
		Maze:      mazeName,
		Goal:      goal,
		Moves:     []Move{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Record appends a move and bumps UpdatedAt.
func (s *State) Record(m Move) {
	s.Moves = append(s.Moves, m)
	s.UpdatedAt = time.Now().UTC()
}

// Doors returns the door history in order.
func (s *State) Doors() []int {
	doors := make([]int, len(s.Moves))
	for i, m := range s.Moves {
		doors[i] = m.Door
	}
	return doors
}

// Reached reports whether the goal was already collected in this session.
func (s *State) Reached(goal int) bool {
	return slices.Contains(s.GoalsReached, goal)
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Moves = slices.Clone(s.Moves)
	c.GoalsReached = slices.Clone(s.GoalsReached)
	c.Sealed = slices.Clone(s.Sealed)
	return &c
}

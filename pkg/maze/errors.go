package maze

import "errors"

var (
	// ErrInvalidParams is returned when maze dimensions or generation
	// parameters are out of range.
	ErrInvalidParams = errors.New("invalid maze parameters")

	// ErrTopologyExhausted is returned when a context could not be placed
	// within MaxCreateTries attempts.
	ErrTopologyExhausted = errors.New("topology could not be built within the retry budget")

	// ErrRoomOutOfRange is returned for a room index outside the maze.
	ErrRoomOutOfRange = errors.New("room index out of range")

	// ErrDoorOutOfRange is returned for a door index outside [0, NumDoors).
	ErrDoorOutOfRange = errors.New("door index out of range")

	// ErrGoalOutOfRange is returned for a goal index outside [0, NumGoals).
	ErrGoalOutOfRange = errors.New("goal index out of range")

	// ErrDoorInUse is returned when a door already answers to a context.
	ErrDoorInUse = errors.New("door already bound to a context")

	// ErrInvalidLink is returned for self links, duplicate links and links
	// that do not respect the level ordering.
	ErrInvalidLink = errors.New("invalid context link")
)

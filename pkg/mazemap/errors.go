package mazemap

import "errors"

var (
	// ErrNilMaze is returned when mapping is asked for without a maze.
	ErrNilMaze = errors.New("no maze to map")

	// ErrRoomMapPlanning is returned when a room map is asked to plan or
	// follow doors. Room maps ignore probabilities and only serve dumps.
	ErrRoomMapPlanning = errors.New("room maps cannot plan")

	// ErrInvalidMapSet is returned for inconsistent map set parameters.
	ErrInvalidMapSet = errors.New("invalid map set")

	// ErrGoalOutOfRange is returned for a goal index outside the maze.
	ErrGoalOutOfRange = errors.New("goal index out of range")

	// ErrDoorOutOfRange is returned for a door index outside the maze.
	ErrDoorOutOfRange = errors.New("door index out of range")

	// ErrUnknownDumpFormat is returned by ParseDumpFormat.
	ErrUnknownDumpFormat = errors.New("unknown dump format")

	// ErrNotMapped is returned when the map has no current descriptor.
	ErrNotMapped = errors.New("map has no current room")
)

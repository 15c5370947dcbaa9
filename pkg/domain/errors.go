package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrMazeNotFound is returned when a maze name is not present in the library.
var ErrMazeNotFound = errors.New("maze not found")

// ErrSessionExists is returned when creating a session whose ID is already taken.
var ErrSessionExists = errors.New("session already exists")

// ErrLockTimeout is returned when a distributed lock cannot be acquired in time.
var ErrLockTimeout = errors.New("lock acquisition timed out")

package ports

import (
	"context"

	"github.com/aretw0/metamaze/pkg/schema"
)

// MazeLibrary provides named maze configurations.
type MazeLibrary interface {
	// Get returns the config stored under name.
	// Returns domain.ErrMazeNotFound if there is none.
	Get(ctx context.Context, name string) (*schema.Config, error)

	// List returns the names of all mazes, sorted.
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for libraries that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that receives the name of every changed maze.
	Watch(ctx context.Context) (<-chan string, error)
}

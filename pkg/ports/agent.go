package ports

import (
	"context"

	"github.com/aretw0/metamaze/pkg/maze"
)

// Agent chooses doors. Implementations range from a uniform random walker to
// the planner itself or a remote model reached over MCP.
type Agent interface {
	// ChooseDoor picks a door of room that should lead toward goal.
	ChooseDoor(ctx context.Context, room maze.RoomView, goal int) (int, error)

	// Observe reports whether the chosen door actually moved the agent.
	Observe(ctx context.Context, door int, moved bool)
}

package maze

// Room marks used by the trial driver and the renderers.
const (
	MarkStart = iota
	MarkBegin
	MarkEnd
	MarkGoal
	MarkDead
	MarkMaze
)

// MarkOptions selects how MarkRooms tags rooms.
type MarkOptions struct {
	// ContextMaze marks the entry room as the beginning of a context maze
	// rather than a plain start room.
	ContextMaze bool
	// MarkPath gives every maze room a distinct mark (MarkMaze + index).
	MarkPath bool
}

// MarkRooms assigns the standard marks. Goal rooms win over every other mark.
func (m *Maze) MarkRooms(opts MarkOptions) {
	for i, r := range m.Rooms {
		switch {
		case i == 0 && opts.ContextMaze:
			r.Mark = MarkBegin
		case i == 0:
			r.Mark = MarkStart
		case opts.MarkPath:
			r.Mark = MarkMaze + i
		default:
			r.Mark = MarkMaze
		}
		for _, g := range r.Goals {
			if g {
				r.Mark = MarkGoal
				break
			}
		}
	}
}

// MarkName returns a short label for a mark.
func MarkName(mark int) string {
	switch mark {
	case MarkStart:
		return "start"
	case MarkBegin:
		return "begin"
	case MarkEnd:
		return "end"
	case MarkGoal:
		return "goal"
	case MarkDead:
		return "dead"
	default:
		return "maze"
	}
}

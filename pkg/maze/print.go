package maze

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a text listing of rooms and contexts.
func (m *Maze) Dump(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Maze: rooms=%d doors=%d goals=%d instance=%d current=%d\n",
		len(m.Rooms), m.NumDoors, m.NumGoals, m.InstanceSeed, m.Current)

	sb.WriteString("Rooms:\n")
	for _, r := range m.Rooms {
		fmt.Fprintf(&sb, "  room %d mark=%d doors=%v goals=%v\n", r.ID, r.Mark, indices(r.Doors), indices(r.Goals))
	}

	sb.WriteString("Contexts:\n")
	for level, idxs := range m.Levels {
		fmt.Fprintf(&sb, "  level %d:\n", level)
		for _, ci := range idxs {
			c := m.context(ci)
			fmt.Fprintf(&sb, "    context %d: %s %d -> %s %d door=%d probability=%0.2f delay=%d\n",
				c.ID, c.Cause.Kind, m.ComponentID(c.Cause), c.Effect.Kind, m.ComponentID(c.Effect),
				c.Door, c.Probability, c.EffectDelay)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func indices(flags []bool) []int {
	out := []int{}
	for i, f := range flags {
		if f {
			out = append(out, i)
		}
	}
	return out
}

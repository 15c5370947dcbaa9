package mazemap

import (
	"fmt"
	"io"
	"strings"
)

// DumpFormat selects the output of Dump.
type DumpFormat int

const (
	DumpText DumpFormat = iota
	DumpGraph
)

// ParseDumpFormat maps "text" and "dot" to a DumpFormat.
func ParseDumpFormat(s string) (DumpFormat, error) {
	switch s {
	case "text", "":
		return DumpText, nil
	case "dot", "graph":
		return DumpGraph, nil
	}
	return DumpText, fmt.Errorf("%w: %q", ErrUnknownDumpFormat, s)
}

// Annotation decorates a dump with an instance and the sequence of steps
// taken in it. IDs are descriptor ids (room ids for room maps) and Doors
// the door taken at each step.
type Annotation struct {
	InstanceSeed int64
	Goal         int
	IDs          []int
	Doors        []int
}

// Dump writes the map. For a map set the instance named by the annotation
// is written, or the real instance when there is none.
func (m *Map) Dump(w io.Writer, format DumpFormat, ann *Annotation) error {
	target := m.Real()
	if m.IsSet() && ann != nil {
		for i, seed := range m.InstanceSeeds {
			if seed == ann.InstanceSeed {
				target = m.Instances[i]
				break
			}
		}
	}

	var sb strings.Builder
	if format == DumpGraph {
		target.writeGraph(&sb, ann)
	} else {
		target.writeText(&sb, ann)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (m *Map) title() string {
	switch m.Type {
	case RoomMap:
		return "Maze room map"
	case InstanceMap:
		return "Maze instance map"
	default:
		return "Maze meta map"
	}
}

func (m *Map) nodeID(d *RoomDescriptor) int {
	if m.Type == RoomMap {
		return d.Room().ID
	}
	return d.ID
}

func (m *Map) targetID(d *RoomDescriptor, c *ConnectingRoom) int {
	if m.Type == RoomMap || c.Desc == nil {
		return d.Maze.Rooms[c.RoomIndex].ID
	}
	return c.Desc.ID
}

// showProbability is false for room maps over layered mazes, where the
// probability of an edge depends on the path taken.
func (m *Map) showProbability() bool {
	return m.Type != RoomMap || !m.higherLevels
}

func (a *Annotation) steps(id int) []int {
	if a == nil {
		return nil
	}
	var out []int
	for i, v := range a.IDs {
		if v == id {
			out = append(out, i)
		}
	}
	return out
}

func (a *Annotation) stepsVia(id, door int) []int {
	if a == nil {
		return nil
	}
	var out []int
	for _, i := range a.steps(id) {
		if i < len(a.Doors) && a.Doors[i] == door {
			out = append(out, i)
		}
	}
	return out
}

func (a *Annotation) openLabel(c *ConnectingRoom) string {
	if c.Signature.Outcome(a.InstanceSeed) {
		return "open"
	}
	return "closed"
}

func joinInts(xs []int) string {
	var sb strings.Builder
	for _, x := range xs {
		fmt.Fprintf(&sb, "%d ", x)
	}
	return sb.String()
}

func (m *Map) writeText(sb *strings.Builder, ann *Annotation) {
	sb.WriteString(m.title() + ":\n")
	if ann != nil {
		fmt.Fprintf(sb, "Instance=%d, Goal=%d\n", ann.InstanceSeed, ann.Goal)
	}
	for _, d := range m.Descriptors {
		room := d.Room()
		id := m.nodeID(d)
		fmt.Fprintf(sb, "Room %d:\n", id)
		fmt.Fprintf(sb, "\tMark %d\n", room.Mark)
		sb.WriteString("\tDoors:")
		for i, open := range room.Doors {
			if open {
				fmt.Fprintf(sb, " %d", i)
			}
		}
		sb.WriteString("\n\tGoals:")
		for i, has := range room.Goals {
			if has {
				fmt.Fprintf(sb, " %d", i)
			}
		}
		sb.WriteString("\n")
		if seq := ann.steps(id); len(seq) > 0 {
			fmt.Fprintf(sb, "\tSequence: %s\n", joinInts(seq))
		}

		sb.WriteString("\tConnections:\n")
		for _, c := range d.Connections {
			fmt.Fprintf(sb, "\t\tRoom %d via door %d", m.targetID(d, c), c.Door)
			if m.showProbability() {
				fmt.Fprintf(sb, " with probability=%0.2f", c.Signature.Probability)
				if ann != nil {
					fmt.Fprintf(sb, " (%s)", ann.openLabel(c))
				}
			}
			sb.WriteString("\n")
			if seq := ann.stepsVia(id, c.Door); len(seq) > 0 {
				fmt.Fprintf(sb, "\t\tSequence: %s\n", joinInts(seq))
			}
		}
	}
}

func (m *Map) writeGraph(sb *strings.Builder, ann *Annotation) {
	sb.WriteString("digraph Maze {\n")
	sb.WriteString("\tgraph [size=\"8.5,11\",fontsize=24];\n")

	for _, d := range m.Descriptors {
		room := d.Room()
		id := m.nodeID(d)
		fmt.Fprintf(sb, "\t\"%d\" [label=\"room %d mark %d\\ngoals: ", id, id, room.Mark)
		for i, has := range room.Goals {
			if has {
				fmt.Fprintf(sb, "%d ", i)
			}
		}
		if seq := ann.steps(id); len(seq) > 0 {
			fmt.Fprintf(sb, "\\nseq: %s", joinInts(seq))
		}
		sb.WriteString("\",shape=box];\n")
	}

	for _, d := range m.Descriptors {
		id := m.nodeID(d)
		for _, c := range d.Connections {
			fmt.Fprintf(sb, "\t\"%d\" -> \"%d\" [label=\"door %d", id, m.targetID(d, c), c.Door)
			if m.showProbability() {
				fmt.Fprintf(sb, " (%0.2f", c.Signature.Probability)
				if ann != nil {
					sb.WriteString("/" + ann.openLabel(c))
				}
				sb.WriteString(")")
			}
			if seq := ann.stepsVia(id, c.Door); len(seq) > 0 {
				fmt.Fprintf(sb, " seq: %s", joinInts(seq))
			}
			sb.WriteString("\",style=solid];\n")
		}
	}

	fmt.Fprintf(sb, "\tlabel = \"%s", m.title())
	if ann != nil {
		fmt.Fprintf(sb, ", instance=%d, goal=%d", ann.InstanceSeed, ann.Goal)
	}
	sb.WriteString("\";\n}\n")
}

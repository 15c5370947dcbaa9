package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/metamaze/pkg/mazemap"
)

// GraphOverlay contains the walked path to highlight on the graph.
type GraphOverlay struct {
	// Visited holds node ids in visiting order; the last one is current.
	Visited []int
}

// OverlayFrom builds an overlay from a dump annotation.
func OverlayFrom(ann *mazemap.Annotation) *GraphOverlay {
	if ann == nil {
		return nil
	}
	return &GraphOverlay{Visited: slices.Clone(ann.IDs)}
}

// GenerateMermaid produces a Mermaid flowchart of the real instance of m.
// It applies semantic styling:
// - Start: ((Circle))
// - Room holding goals: {{Hexagon}}
// - Default: [Rectangle]
//
// Edges are solid once known to open, dotted while unresolved and crossed
// when known to stay shut.
func GenerateMermaid(m *mazemap.Map, overlay *GraphOverlay) string {
	target := m.Real()
	roomIDs := target.Type == mazemap.RoomMap

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i, d := range target.Descriptors {
		room := d.Room()
		id := d.ID
		if roomIDs {
			id = room.ID
		}

		label := fmt.Sprintf("room %d", room.ID)
		if room.Mark != 0 {
			label += fmt.Sprintf(" · mark %d", room.Mark)
		}
		opener, closer := "[", "]"
		var goals []string
		for g, has := range room.Goals {
			if has {
				goals = append(goals, fmt.Sprint(g))
			}
		}
		switch {
		case i == 0:
			opener, closer = "((", "))"
		case len(goals) > 0:
			opener, closer = "{{", "}}"
		}
		if len(goals) > 0 {
			label += " <br/> goals " + strings.Join(goals, ",")
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeName(id), opener, label, closer)

		for _, c := range d.Connections {
			to := d.Maze.Rooms[c.RoomIndex].ID
			if !roomIDs && c.Desc != nil {
				to = c.Desc.ID
			}
			text := fmt.Sprintf("door %d", c.Door)
			arrow := fmt.Sprintf("-. \"%s p=%.2f\" .->", text, c.Signature.Probability)
			if c.Resolved() {
				if c.Signature.Success {
					arrow = fmt.Sprintf("-- \"%s\" -->", text)
				} else {
					arrow = fmt.Sprintf("-- \"%s\" --x", text)
				}
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", nodeName(id), arrow, nodeName(to))
		}
	}

	if overlay != nil && len(overlay.Visited) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[int]bool)
		current := overlay.Visited[len(overlay.Visited)-1]
		for _, id := range overlay.Visited {
			if seen[id] || id == current {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", nodeName(id))
		}
		fmt.Fprintf(&sb, "    class %s current;\n", nodeName(current))
	}

	return sb.String()
}

func nodeName(id int) string {
	return fmt.Sprintf("n%d", id)
}

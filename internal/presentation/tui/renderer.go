package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/metamaze/pkg/maze"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// Without a working renderer the markdown is returned untouched.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// RoomMarkdown describes a room for the play loop.
func RoomMarkdown(view maze.RoomView, goal int, step int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Room %d\n\n", view.ID)
	fmt.Fprintf(&sb, "Step **%d**, chasing goal **%d**", step, goal)
	if view.Mark != 0 {
		fmt.Fprintf(&sb, ", mark `%d`", view.Mark)
	}
	sb.WriteString("\n\n| Door | State |\n|---|---|\n")
	for i, open := range view.Doors {
		state := "closed"
		if open {
			state = "open"
		}
		fmt.Fprintf(&sb, "| %d | %s |\n", i, state)
	}

	if goals := view.VisibleGoals(); len(goals) > 0 {
		sb.WriteString("\nGoals here:")
		for _, g := range goals {
			fmt.Fprintf(&sb, " `%d`", g)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// CodeBlock wraps text in a fenced block so dumps survive markdown rendering.
func CodeBlock(lang, text string) string {
	return "```" + lang + "\n" + strings.TrimRight(text, "\n") + "\n```\n"
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/metamaze/internal/presentation/tui"
	"github.com/aretw0/metamaze/pkg/domain"
	"github.com/aretw0/metamaze/pkg/mazemap"
	"github.com/aretw0/metamaze/pkg/session"
)

// PlayOptions configures an interactive session.
type PlayOptions struct {
	Maze string
	Goal int
	// SessionID resumes an existing session instead of creating one.
	SessionID string
	// Pretty renders rooms as markdown through glamour.
	Pretty bool
}

const playHelp = `Commands:
  <n>          walk through door n
  p, plan      ask the planner for the current goal
  d [dot]      dump the map (text by default)
  h, help      show this help
  q, quit      leave (the session is kept)`

// Play runs the read-eval loop of the play command until the input ends,
// the player quits or ctx is cancelled.
func Play(ctx context.Context, host *session.Host, in io.Reader, out io.Writer, opts PlayOptions) error {
	render := func(s string) string { return s }
	if opts.Pretty {
		r := tui.NewRenderer()
		render = func(s string) string {
			if rendered, err := r(s); err == nil {
				return rendered
			}
			return s
		}
	}

	state, err := openPlaySession(ctx, host, opts)
	if err != nil {
		return err
	}
	PrintSystemMessage(out, "Session %s on maze %q", state.SessionID, state.Maze)

	showRoom := func() error {
		view, err := host.Room(ctx, state.SessionID)
		if err != nil {
			return err
		}
		fmt.Fprint(out, render(tui.RoomMarkdown(view, state.Goal, len(state.Moves))))
		return nil
	}
	if err := showRoom(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return io.EOF
		}

		line, err := SanitizeInput(scanner.Text())
		if err != nil {
			PrintSystemMessage(out, "%v", err)
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch cmd := strings.ToLower(fields[0]); cmd {
		case "q", "quit", "exit":
			PrintSystemMessage(out, "Bye. Resume with --session %s", state.SessionID)
			return nil

		case "h", "help", "?":
			fmt.Fprintln(out, playHelp)

		case "p", "plan":
			advice, err := host.Plan(ctx, state.SessionID, nil)
			if err != nil {
				PrintSystemMessage(out, "%v", err)
				continue
			}
			switch {
			case advice.Here:
				PrintSystemMessage(out, "Goal %d is here", advice.Goal)
			case !advice.Reachable:
				PrintSystemMessage(out, "Goal %d looks unreachable (%d instances left)", advice.Goal, advice.ValidInstances)
			default:
				PrintSystemMessage(out, "Take door %d towards goal %d (%d instances left)", advice.Door, advice.Goal, advice.ValidInstances)
			}

		case "d", "dump":
			name := "text"
			if len(fields) > 1 {
				name = fields[1]
			}
			format, err := mazemap.ParseDumpFormat(name)
			if err != nil {
				PrintSystemMessage(out, "%v", err)
				continue
			}
			var sb strings.Builder
			if err := host.Dump(ctx, state.SessionID, &sb, format); err != nil {
				PrintSystemMessage(out, "%v", err)
				continue
			}
			fmt.Fprint(out, render(tui.CodeBlock(name, sb.String())))

		default:
			door, err := strconv.Atoi(cmd)
			if err != nil {
				PrintSystemMessage(out, "Unknown command %q, type help", cmd)
				continue
			}
			res, _, err := host.Step(ctx, state.SessionID, door)
			if err != nil {
				PrintSystemMessage(out, "%v", err)
				continue
			}
			if !res.Moved {
				PrintSystemMessage(out, "Door %d is closed", door)
			}
			for _, g := range res.Reached {
				PrintSystemMessage(out, "%s", tui.Highlight(fmt.Sprintf("Goal %d reached!", g), true))
			}
			if state, err = host.Get(ctx, state.SessionID); err != nil {
				return err
			}
			if err := showRoom(); err != nil {
				return err
			}
		}
	}
}

func openPlaySession(ctx context.Context, host *session.Host, opts PlayOptions) (*domain.State, error) {
	if opts.SessionID != "" {
		state, err := host.Get(ctx, opts.SessionID)
		if err == nil || !errors.Is(err, domain.ErrSessionNotFound) {
			return state, err
		}
	}
	return host.Create(ctx, opts.Maze, opts.Goal)
}

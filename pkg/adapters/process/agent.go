// Package process lets external programs act as maze agents.
//
// For every decision the program is started once. It receives the room as
// JSON on stdin and as METAMAZE_* environment variables, and must print the
// chosen door index on stdout.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/metamaze/pkg/maze"
)

// ErrBadReply is returned when the program's output is not a door index.
var ErrBadReply = errors.New("agent process replied with an invalid door")

// DefaultTimeout bounds a single decision.
const DefaultTimeout = 10 * time.Second

// Request is written to the program's stdin.
type Request struct {
	Room maze.RoomView `json:"room"`
	Goal int           `json:"goal"`
	// LastDoor and LastMoved describe the previous decision; LastDoor is -1 on the first call.
	LastDoor  int  `json:"last_door"`
	LastMoved bool `json:"last_moved"`
}

// Agent implements ports.Agent by running a command.
type Agent struct {
	cfg     AgentConfig
	baseDir string
	timeout time.Duration

	lastDoor  int
	lastMoved bool
}

// Option configures the Agent.
type Option func(*Agent)

// WithBaseDir sets the working directory of the program.
func WithBaseDir(dir string) Option {
	return func(a *Agent) {
		a.baseDir = dir
	}
}

// WithTimeout bounds each decision.
func WithTimeout(d time.Duration) Option {
	return func(a *Agent) {
		a.timeout = d
	}
}

// NewAgent creates an agent running cfg.Command.
func NewAgent(cfg AgentConfig, opts ...Option) *Agent {
	a := &Agent{cfg: cfg, timeout: DefaultTimeout, lastDoor: -1}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ChooseDoor runs the program once and parses its reply.
func (a *Agent) ChooseDoor(ctx context.Context, room maze.RoomView, goal int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req := Request{Room: room, Goal: goal, LastDoor: a.lastDoor, LastMoved: a.lastMoved}
	input, err := json.Marshal(req)
	if err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, a.cfg.Command, a.cfg.Args...)
	cmd.Dir = a.baseDir
	cmd.Env = append(cmd.Environ(), a.environment(req)...)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("agent %s failed: %w. Stderr: %s", a.cfg.Name, err, strings.TrimSpace(stderr.String()))
	}

	reply := strings.TrimSpace(stdout.String())
	door, err := strconv.Atoi(reply)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadReply, reply)
	}
	if door < 0 || door >= len(room.Doors) {
		return 0, fmt.Errorf("%w: %d", maze.ErrDoorOutOfRange, door)
	}
	return door, nil
}

// Observe remembers the outcome so the next call can report it.
func (a *Agent) Observe(_ context.Context, door int, moved bool) {
	a.lastDoor = door
	a.lastMoved = moved
}

func (a *Agent) environment(req Request) []string {
	doors := make([]string, len(req.Room.Doors))
	for i, open := range req.Room.Doors {
		doors[i] = "0"
		if open {
			doors[i] = "1"
		}
	}

	env := []string{
		"METAMAZE_ROOM=" + strconv.Itoa(req.Room.ID),
		"METAMAZE_MARK=" + strconv.Itoa(req.Room.Mark),
		"METAMAZE_GOAL=" + strconv.Itoa(req.Goal),
		"METAMAZE_DOORS=" + strings.Join(doors, ","),
		"METAMAZE_LAST_DOOR=" + strconv.Itoa(req.LastDoor),
		"METAMAZE_LAST_MOVED=" + strconv.FormatBool(req.LastMoved),
	}
	for k, v := range a.cfg.Environment {
		env = append(env, k+"="+v)
	}
	return env
}

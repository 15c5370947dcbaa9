package metamaze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/aretw0/metamaze/pkg/domain"
	"github.com/aretw0/metamaze/pkg/maze"
	"github.com/aretw0/metamaze/pkg/mazemap"
	"github.com/aretw0/metamaze/pkg/schema"
)

// Engine is the high-level entry point: one maze instance and the planner
// that maps it. It is not safe for concurrent use; hosts serialize access
// per session.
type Engine struct {
	Name string

	cfg    *schema.Config
	maze   *maze.Maze
	plan   *mazemap.Map
	hooks  domain.LifecycleHooks
	logger *slog.Logger

	sessionID string
	mapType   *mazemap.Type

	moves   []domain.Move
	reached []int
	trail   []int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSessionID tags emitted events and log lines with a session id.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		e.sessionID = id
	}
}

// WithMapType overrides the map type named in the config.
func WithMapType(t mazemap.Type) Option {
	return func(e *Engine) {
		e.mapType = &t
	}
}

// StepResult is what happened after choosing a door.
type StepResult struct {
	Door  int           `json:"door"`
	Moved bool          `json:"moved"`
	From  maze.RoomView `json:"from"`
	Room  maze.RoomView `json:"room"`
	// Reached lists the goals collected on arrival.
	Reached []int `json:"reached,omitempty"`
}

// Advice is the planner's recommendation for a goal.
type Advice struct {
	Goal int `json:"goal"`
	// Door is the recommended door; meaningless unless Reachable and not Here.
	// Goals collected by the engine are gone from the map, so Here only
	// reports a goal the real maze did not hand out.
	Door      int  `json:"door"`
	Here      bool `json:"here"`
	Reachable bool `json:"reachable"`
	// ValidInstances counts the instances still consistent with what was seen.
	ValidInstances int `json:"valid_instances"`
}

// New builds the maze described by cfg and maps it.
// Goals visible in the start room are collected immediately.
func New(cfg *schema.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("nil maze config")
	}
	eng := newEngine(cfg.Clone(), opts)
	if eng.mapType != nil {
		eng.cfg.MapType = eng.mapType.String()
	}

	mz, err := eng.cfg.BuildMaze()
	if err != nil {
		return nil, err
	}
	plan, err := eng.cfg.BuildMap(mz, eng.logger)
	if err != nil {
		return nil, err
	}
	eng.attach(mz, plan)
	return eng, nil
}

// NewFromMaze maps a maze built by hand. Such engines have no config and
// cannot be replayed.
func NewFromMaze(mz *maze.Maze, t mazemap.Type, opts ...Option) (*Engine, error) {
	eng := newEngine(nil, opts)
	if eng.mapType != nil {
		t = *eng.mapType
	}
	plan := mazemap.New(t, mazemap.WithLogger(eng.logger))
	if err := plan.MapMaze(mz); err != nil {
		return nil, err
	}
	eng.attach(mz, plan)
	return eng, nil
}

func newEngine(cfg *schema.Config, opts []Option) *Engine {
	eng := &Engine{cfg: cfg}
	if cfg != nil {
		eng.Name = cfg.Name
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("maze", eng.Name)
	}
	if eng.sessionID != "" {
		eng.logger = eng.logger.With("session_id", eng.sessionID)
	}
	return eng
}

func (e *Engine) attach(mz *maze.Maze, plan *mazemap.Map) {
	e.maze = mz
	e.plan = plan
	e.trail = append(e.trail, e.position())
	e.reached = append(e.reached, mz.Room().VisibleGoals()...)
	e.collect()
	e.logger.Debug("engine ready", "rooms", mz.NumRooms(), "map", plan.Type.String(), "instances", len(plan.InstanceSeeds))
}

// Replay builds a fresh engine and re-applies the door history of state.
// Mazes are deterministic, so the result matches the engine that produced state.
func Replay(ctx context.Context, cfg *schema.Config, doors []int, opts ...Option) (*Engine, error) {
	eng, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	hooks := eng.hooks
	eng.hooks = domain.LifecycleHooks{}
	defer func() { eng.hooks = hooks }()

	for i, door := range doors {
		if _, err := eng.Step(ctx, door); err != nil {
			return nil, fmt.Errorf("replay step %d: %w", i, err)
		}
	}
	return eng, nil
}

// Config returns a copy of the config the engine was built from, or nil
// for hand-built mazes.
func (e *Engine) Config() *schema.Config {
	if e.cfg == nil {
		return nil
	}
	return e.cfg.Clone()
}

// Maze exposes the underlying maze for renderers.
func (e *Engine) Maze() *maze.Maze {
	return e.maze
}

// Map exposes the planner's map for renderers.
func (e *Engine) Map() *mazemap.Map {
	return e.plan
}

// Room returns the current room without collecting goals.
func (e *Engine) Room() maze.RoomView {
	return e.maze.Peek()
}

// Moves returns the door history.
func (e *Engine) Moves() []domain.Move {
	return slices.Clone(e.moves)
}

// Reached returns the goals collected so far, in order.
func (e *Engine) Reached() []int {
	return slices.Clone(e.reached)
}

// Step chooses a door in the real maze and tells the planner about it.
func (e *Engine) Step(ctx context.Context, door int) (*StepResult, error) {
	if door < 0 || door >= e.maze.NumDoors {
		return nil, fmt.Errorf("%w: %d", maze.ErrDoorOutOfRange, door)
	}
	if e.maze.CurrentRoom() == nil {
		return nil, mazemap.ErrNotMapped
	}

	from := e.maze.Peek()
	_, moved := e.maze.ChooseDoor(door, false)
	if e.plan.Type != mazemap.RoomMap {
		if err := e.plan.ChooseDoor(door); err != nil {
			return nil, err
		}
	}

	view := e.maze.Room()
	e.collect()
	res := &StepResult{Door: door, Moved: moved, From: from, Room: view}

	e.moves = append(e.moves, domain.Move{Door: door, Moved: moved, RoomID: view.ID})
	e.trail = append(e.trail, e.position())

	event := &domain.StepEvent{Door: door, FromRoom: from.ID, ToRoom: view.ID, Moved: moved}
	if moved {
		event.EventBase = domain.NewEventBase(domain.EventRoomEnter, e.sessionID)
		if e.hooks.OnRoomEnter != nil {
			e.hooks.OnRoomEnter(ctx, event)
		}
	} else {
		event.EventBase = domain.NewEventBase(domain.EventDoorBlocked, e.sessionID)
		if e.hooks.OnDoorBlocked != nil {
			e.hooks.OnDoorBlocked(ctx, event)
		}
	}

	for _, g := range view.VisibleGoals() {
		if slices.Contains(e.reached, g) {
			continue
		}
		e.reached = append(e.reached, g)
		res.Reached = append(res.Reached, g)
		if e.hooks.OnGoalReached != nil {
			e.hooks.OnGoalReached(ctx, &domain.GoalEvent{
				EventBase: domain.NewEventBase(domain.EventGoalReached, e.sessionID),
				Goal:      g,
				RoomID:    view.ID,
			})
		}
	}

	e.logger.Debug("door chosen", "door", door, "moved", moved, "room", view.ID)
	return res, nil
}

// collect tells the planner that the goals of the current room are gone.
// Plan then has nothing left to consume, so the map follows from the door
// history alone.
func (e *Engine) collect() {
	if e.plan.Type != mazemap.RoomMap {
		e.plan.CollectGoals()
	}
}

// Plan asks the planner for the next door toward goal. It does not change
// the engine: asking twice gives the same advice.
func (e *Engine) Plan(ctx context.Context, goal int) (*Advice, error) {
	door, err := e.plan.GotoGoal(goal)
	if err != nil {
		return nil, err
	}
	advice := &Advice{
		Goal:           goal,
		Door:           door,
		Here:           door == e.plan.NumDoors,
		Reachable:      door != mazemap.Unreachable,
		ValidInstances: e.plan.ValidCount(),
	}
	if e.hooks.OnPlan != nil {
		e.hooks.OnPlan(ctx, &domain.PlanEvent{
			EventBase:      domain.NewEventBase(domain.EventPlan, e.sessionID),
			Goal:           goal,
			Door:           door,
			Here:           advice.Here,
			MapType:        e.plan.Type.String(),
			ValidInstances: advice.ValidInstances,
		})
	}
	return advice, nil
}

// Annotation describes the path walked so far, for dumps.
func (e *Engine) Annotation(goal int) *mazemap.Annotation {
	doors := make([]int, len(e.moves))
	for i, m := range e.moves {
		doors[i] = m.Door
	}
	return &mazemap.Annotation{
		InstanceSeed: e.maze.InstanceSeed,
		Goal:         goal,
		IDs:          slices.Clone(e.trail),
		Doors:        doors,
	}
}

// Dump writes the planner's map. With annotate set, the walked path and the
// real instance's door outcomes are included.
func (e *Engine) Dump(w io.Writer, format mazemap.DumpFormat, annotate bool) error {
	var ann *mazemap.Annotation
	if annotate {
		ann = e.Annotation(0)
	}
	return e.plan.Dump(w, format, ann)
}

// position is the id used by dumps for where the agent stands: the
// descriptor id in meta and instance maps, the room id in room maps.
func (e *Engine) position() int {
	if e.plan.Type == mazemap.RoomMap {
		if r := e.maze.CurrentRoom(); r != nil {
			return r.ID
		}
		return -1
	}
	if cur := e.plan.Real().Current; cur != nil {
		return cur.ID
	}
	return -1
}

package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/metamaze"
	"github.com/aretw0/metamaze/internal/logging"
	"github.com/aretw0/metamaze/pkg/domain"
	"github.com/aretw0/metamaze/pkg/maze"
	"github.com/aretw0/metamaze/pkg/mazemap"
	"github.com/aretw0/metamaze/pkg/ports"
)

// DefaultMaxEngines bounds the number of live engines a Host keeps.
const DefaultMaxEngines = 1024

type cachedEngine struct {
	engine *metamaze.Engine
	moves  int
	used   uint64
}

// DiffListener is told about every persisted step.
type DiffListener func(sessionID string, diff *domain.StateDiff)

// Host runs sessions: it owns the engines and persists every step.
type Host struct {
	manager *Manager
	library ports.MazeLibrary
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	listen  DiffListener

	mu         sync.Mutex
	engines    map[string]*cachedEngine
	maxEngines int
	tick       uint64
}

type HostOption func(*Host)

// WithHooks forwards lifecycle events of every hosted engine.
func WithHooks(hooks domain.LifecycleHooks) HostOption {
	return func(h *Host) {
		h.hooks = hooks
	}
}

// WithHostLogger sets the logger passed down to engines.
func WithHostLogger(logger *slog.Logger) HostOption {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithDiffListener registers a callback for state diffs.
func WithDiffListener(fn DiffListener) HostOption {
	return func(h *Host) {
		h.listen = fn
	}
}

// WithMaxEngines overrides DefaultMaxEngines.
func WithMaxEngines(n int) HostOption {
	return func(h *Host) {
		h.maxEngines = n
	}
}

func NewHost(manager *Manager, library ports.MazeLibrary, opts ...HostOption) *Host {
	h := &Host{
		manager:    manager,
		library:    library,
		logger:     logging.NewNop(),
		engines:    make(map[string]*cachedEngine),
		maxEngines: DefaultMaxEngines,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Create starts a session on the named maze chasing goal.
func (h *Host) Create(ctx context.Context, mazeName string, goal int) (*domain.State, error) {
	cfg, err := h.library.Get(ctx, mazeName)
	if err != nil {
		return nil, err
	}
	if cfg.Goals > 0 && (goal < 0 || goal >= cfg.Goals) {
		return nil, fmt.Errorf("%w: %d", mazemap.ErrGoalOutOfRange, goal)
	}

	id := NewID()
	eng, err := metamaze.New(cfg, h.engineOptions(id)...)
	if err != nil {
		return nil, err
	}

	state := domain.NewState(id, mazeName, goal)
	state.GoalsReached = eng.Reached()
	if err := h.manager.Create(ctx, state); err != nil {
		return nil, err
	}
	h.remember(id, eng, 0)
	h.logger.Info("session created", "session_id", id, "maze", mazeName, "goal", goal)
	return state, nil
}

// Get returns the stored state of a session.
func (h *Host) Get(ctx context.Context, sessionID string) (*domain.State, error) {
	return h.manager.Load(ctx, sessionID)
}

// Room returns what the agent currently senses.
func (h *Host) Room(ctx context.Context, sessionID string) (maze.RoomView, error) {
	var view maze.RoomView
	err := h.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		eng, _, err := h.load(ctx, sessionID)
		if err != nil {
			return err
		}
		view = eng.Room()
		return nil
	})
	return view, err
}

// Step chooses a door, persists the move and returns the outcome together
// with what changed in the stored state.
func (h *Host) Step(ctx context.Context, sessionID string, door int) (*metamaze.StepResult, *domain.StateDiff, error) {
	var (
		res  *metamaze.StepResult
		diff *domain.StateDiff
	)
	err := h.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		eng, state, err := h.load(ctx, sessionID)
		if err != nil {
			return err
		}
		res, err = eng.Step(ctx, door)
		if err != nil {
			return err
		}

		next := state.Clone()
		next.Record(eng.Moves()[len(eng.Moves())-1])
		next.GoalsReached = eng.Reached()
		if err := h.manager.Store().Save(ctx, sessionID, next); err != nil {
			h.forget(sessionID)
			return fmt.Errorf("failed to persist step: %w", err)
		}
		h.remember(sessionID, eng, len(next.Moves))
		diff = domain.Diff(state, next)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if h.listen != nil && diff != nil {
		h.listen(sessionID, diff)
	}
	return res, diff, nil
}

// Plan asks the session's planner for advice. A nil goal means the session goal.
func (h *Host) Plan(ctx context.Context, sessionID string, goal *int) (*metamaze.Advice, error) {
	var advice *metamaze.Advice
	err := h.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		eng, state, err := h.load(ctx, sessionID)
		if err != nil {
			return err
		}
		g := state.Goal
		if goal != nil {
			g = *goal
		}
		advice, err = eng.Plan(ctx, g)
		return err
	})
	return advice, err
}

// Dump writes the session's map annotated with the walked path.
func (h *Host) Dump(ctx context.Context, sessionID string, w io.Writer, format mazemap.DumpFormat) error {
	return h.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		eng, state, err := h.load(ctx, sessionID)
		if err != nil {
			return err
		}
		return eng.Map().Dump(w, format, eng.Annotation(state.Goal))
	})
}

// Delete removes a session and its live engine.
func (h *Host) Delete(ctx context.Context, sessionID string) error {
	if err := h.manager.Delete(ctx, sessionID); err != nil {
		return err
	}
	h.forget(sessionID)
	return nil
}

// List returns the ids of all stored sessions.
func (h *Host) List(ctx context.Context) ([]string, error) {
	return h.manager.List(ctx)
}

// Mazes returns the names available to Create.
func (h *Host) Mazes(ctx context.Context) ([]string, error) {
	return h.library.List(ctx)
}

// load returns the live engine for a session, replaying the stored moves
// when the cache is cold or behind the store. Callers hold the session lock.
func (h *Host) load(ctx context.Context, sessionID string) (*metamaze.Engine, *domain.State, error) {
	state, err := h.manager.Store().Load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	h.mu.Lock()
	cached := h.engines[sessionID]
	if cached != nil {
		h.tick++
		cached.used = h.tick
	}
	h.mu.Unlock()
	if cached != nil && cached.moves == len(state.Moves) {
		return cached.engine, state, nil
	}

	cfg, err := h.library.Get(ctx, state.Maze)
	if err != nil {
		return nil, nil, err
	}
	eng, err := metamaze.Replay(ctx, cfg, state.Doors(), h.engineOptions(sessionID)...)
	if err != nil {
		return nil, nil, fmt.Errorf("replay session %s: %w", sessionID, err)
	}
	h.logger.Debug("session replayed", "session_id", sessionID, "moves", len(state.Moves))
	h.remember(sessionID, eng, len(state.Moves))
	return eng, state, nil
}

func (h *Host) engineOptions(sessionID string) []metamaze.Option {
	return []metamaze.Option{
		metamaze.WithSessionID(sessionID),
		metamaze.WithLifecycleHooks(h.hooks),
		metamaze.WithLogger(h.logger),
	}
}

func (h *Host) remember(sessionID string, eng *metamaze.Engine, moves int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.engines[sessionID]; !ok && h.maxEngines > 0 && len(h.engines) >= h.maxEngines {
		h.evictOldest()
	}
	h.tick++
	h.engines[sessionID] = &cachedEngine{engine: eng, moves: moves, used: h.tick}
}

// evictOldest drops the least recently used engine. Callers hold h.mu.
func (h *Host) evictOldest() {
	var (
		oldest string
		used   uint64
	)
	for id, c := range h.engines {
		if oldest == "" || c.used < used {
			oldest, used = id, c.used
		}
	}
	delete(h.engines, oldest)
}

// Invalidate drops the live engines built from the named maze, so the next
// access replays against the current config. It returns how many were dropped.
func (h *Host) Invalidate(mazeName string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, c := range h.engines {
		if c.engine.Name == mazeName {
			delete(h.engines, id)
			n++
		}
	}
	return n
}

func (h *Host) forget(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.engines, sessionID)
}

// cached reports whether a live engine is held for the session.
func (h *Host) cached(sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.engines[sessionID]
	return ok
}

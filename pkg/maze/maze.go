package maze

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// MaxCreateTries bounds the attempts made to place a single context.
const MaxCreateTries = 100

// Maze owns a set of rooms and the layered contexts connecting them.
// Components live in two arenas and refer to each other by index.
type Maze struct {
	NumDoors     int
	NumGoals     int
	Rooms        []*Room
	Contexts     []*Context
	Levels       [][]int
	Current      int
	InstanceSeed int64

	nextID int
}

// Params describes a generated topology.
type Params struct {
	NumRooms         int
	NumDoors         int
	NumGoals         int
	ContextSizes     []int
	EffectDelayScale int
	MetaSeed         int64
	InstanceSeed     int64
	TwoWay           bool
}

func (p Params) validate() error {
	switch {
	case p.NumRooms < 0, p.NumDoors < 0, p.NumGoals < 0:
		return fmt.Errorf("%w: negative dimension", ErrInvalidParams)
	case len(p.ContextSizes) > 0 && p.EffectDelayScale < 1:
		return fmt.Errorf("%w: effect delay scale must be at least 1", ErrInvalidParams)
	case p.NumGoals > 0 && p.NumRooms == 0:
		return fmt.Errorf("%w: goals need at least one room", ErrInvalidParams)
	}
	for level, n := range p.ContextSizes {
		if n < 0 {
			return fmt.Errorf("%w: negative context count at level %d", ErrInvalidParams, level)
		}
	}
	return nil
}

// New returns a maze with closed doors, no goals and no contexts.
// The current room is 0, or -1 when numRooms is 0.
func New(numRooms, numDoors, numGoals int) *Maze {
	m := &Maze{
		NumDoors: numDoors,
		NumGoals: numGoals,
		Rooms:    make([]*Room, numRooms),
		Current:  -1,
	}
	for i := range m.Rooms {
		m.Rooms[i] = &Room{
			ID:    m.dispenseID(),
			Doors: make([]bool, numDoors),
			Goals: make([]bool, numGoals),
		}
	}
	if numRooms > 0 {
		m.Current = 0
	}
	return m
}

// Generate builds a random topology from p.MetaSeed. The same Params always
// produce the same graph.
func Generate(p Params) (*Maze, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	m := New(p.NumRooms, p.NumDoors, p.NumGoals)
	m.SetInstanceSeed(p.InstanceSeed)
	if p.NumRooms == 0 {
		return m, nil
	}

	rnd := rand.New(rand.NewPCG(uint64(p.MetaSeed), uint64(p.MetaSeed)>>1|1))
	for g := 0; g < p.NumGoals; g++ {
		m.Rooms[rnd.IntN(p.NumRooms)].Goals[g] = true
	}

	var lower []int
	for level, size := range p.ContextSizes {
		m.ensureLevel(level)
		for k := 0; k < size; k++ {
			placed := false
			for try := 0; try < MaxCreateTries && !placed; try++ {
				if level == 0 {
					placed = m.tryLink(rnd, p)
				} else {
					placed = m.tryLift(rnd, p, level, lower)
				}
			}
			if !placed {
				return nil, fmt.Errorf("%w: level %d context %d", ErrTopologyExhausted, level, k)
			}
		}
		lower = append(lower, m.Levels[level]...)
	}
	return m, nil
}

func (m *Maze) tryLink(rnd *rand.Rand, p Params) bool {
	probability := rnd.Float64()
	cause := rnd.IntN(p.NumRooms)
	effect := rnd.IntN(p.NumRooms)
	if cause == effect || p.NumDoors == 0 {
		return false
	}
	door, ok := m.freeDoor(cause, rnd.IntN(p.NumDoors))
	if !ok {
		return false
	}
	delay := rnd.IntN(p.EffectDelayScale) + 1

	if !p.TwoWay {
		m.link(cause, effect, door, probability, delay)
		return true
	}

	back, ok := m.freeDoor(effect, rnd.IntN(p.NumDoors))
	if !ok {
		return false
	}
	m.link(cause, effect, door, probability, delay)
	m.link(effect, cause, back, rnd.Float64(), rnd.IntN(p.EffectDelayScale)+1)
	return true
}

func (m *Maze) tryLift(rnd *rand.Rand, p Params, level int, lower []int) bool {
	prev := m.Levels[level-1]
	if len(prev) == 0 || len(lower) == 0 {
		return false
	}
	probability := rnd.Float64()
	cause := prev[rnd.IntN(len(prev))]
	effect := lower[rnd.IntN(len(lower))]
	if rnd.IntN(2) == 0 {
		cause, effect = effect, cause
	}
	if cause == effect || m.hasLift(level, cause, effect) {
		return false
	}
	delay := rnd.IntN((level+1)*p.EffectDelayScale) + 1
	m.lift(level, cause, effect, probability, delay)
	return true
}

// freeDoor scans forward from start, wrapping around, for a closed door.
func (m *Maze) freeDoor(room, start int) (int, bool) {
	r := m.Rooms[room]
	for i := range m.NumDoors {
		d := (start + i) % m.NumDoors
		if !r.Doors[d] {
			return d, true
		}
	}
	return -1, false
}

func (m *Maze) hasLift(level, cause, effect int) bool {
	for _, ci := range m.Levels[level] {
		c := m.Contexts[ci]
		if c.Cause.Index == cause && c.Effect.Index == effect {
			return true
		}
	}
	return false
}

func (m *Maze) link(cause, effect, door int, probability float64, delay int) int {
	idx := m.addContext(0, RoomRef(cause), RoomRef(effect), door, probability, delay)
	r := m.Rooms[cause]
	r.Doors[door] = true
	r.CauseContexts = append(r.CauseContexts, idx)
	return idx
}

func (m *Maze) lift(level, cause, effect int, probability float64, delay int) int {
	idx := m.addContext(level, ContextRef(cause), ContextRef(effect), -1, probability, delay)
	c := m.Contexts[cause]
	c.CauseContexts = append(c.CauseContexts, idx)
	return idx
}

func (m *Maze) addContext(level int, cause, effect Ref, door int, probability float64, delay int) int {
	m.ensureLevel(level)
	idx := len(m.Contexts)
	m.Contexts = append(m.Contexts, &Context{
		ID:          m.dispenseID(),
		Level:       level,
		Cause:       cause,
		Effect:      effect,
		Door:        door,
		Probability: probability,
		EffectDelay: delay,
		EffectTimer: -1,
	})
	m.Levels[level] = append(m.Levels[level], idx)
	return idx
}

func (m *Maze) ensureLevel(level int) {
	for len(m.Levels) <= level {
		m.Levels = append(m.Levels, nil)
	}
}

func (m *Maze) dispenseID() int {
	id := m.nextID
	m.nextID++
	return id
}

// OpenLink binds door on room from to a level-0 context leading to room to.
// It returns the context index.
func (m *Maze) OpenLink(from, to, door int, probability float64, delay int) (int, error) {
	if err := m.checkRoom(from); err != nil {
		return -1, err
	}
	if err := m.checkRoom(to); err != nil {
		return -1, err
	}
	if door < 0 || door >= m.NumDoors {
		return -1, fmt.Errorf("%w: %d", ErrDoorOutOfRange, door)
	}
	if from == to {
		return -1, fmt.Errorf("%w: room %d links to itself", ErrInvalidLink, from)
	}
	if m.Rooms[from].Doors[door] {
		return -1, fmt.Errorf("%w: room %d door %d", ErrDoorInUse, from, door)
	}
	if delay < 1 {
		delay = 1
	}
	return m.link(from, to, door, probability, delay), nil
}

// AddContext links two existing contexts at level, which must be above the
// level of both.
func (m *Maze) AddContext(level, cause, effect int, probability float64, delay int) (int, error) {
	if level < 1 {
		return -1, fmt.Errorf("%w: level %d is reserved for doors", ErrInvalidLink, level)
	}
	for _, ci := range []int{cause, effect} {
		if ci < 0 || ci >= len(m.Contexts) {
			return -1, fmt.Errorf("%w: unknown context %d", ErrInvalidLink, ci)
		}
		if m.Contexts[ci].Level >= level {
			return -1, fmt.Errorf("%w: context %d is not below level %d", ErrInvalidLink, ci, level)
		}
	}
	if cause == effect {
		return -1, fmt.Errorf("%w: context %d links to itself", ErrInvalidLink, cause)
	}
	m.ensureLevel(level)
	if m.hasLift(level, cause, effect) {
		return -1, fmt.Errorf("%w: duplicate link %d -> %d", ErrInvalidLink, cause, effect)
	}
	if delay < 1 {
		delay = 1
	}
	return m.lift(level, cause, effect, probability, delay), nil
}

// SetGoal places goal in room.
func (m *Maze) SetGoal(room, goal int) error {
	if err := m.checkRoom(room); err != nil {
		return err
	}
	if goal < 0 || goal >= m.NumGoals {
		return fmt.Errorf("%w: %d", ErrGoalOutOfRange, goal)
	}
	m.Rooms[room].Goals[goal] = true
	return nil
}

// SetMark tags a room.
func (m *Maze) SetMark(room, mark int) error {
	if err := m.checkRoom(room); err != nil {
		return err
	}
	m.Rooms[room].Mark = mark
	return nil
}

// SetCurrent moves the maze to room without firing any context.
func (m *Maze) SetCurrent(room int) error {
	if err := m.checkRoom(room); err != nil {
		return err
	}
	m.Current = room
	return nil
}

// SetInstanceSeed pins the instance that resolves probabilistic links.
func (m *Maze) SetInstanceSeed(seed int64) {
	m.InstanceSeed = seed
	for _, r := range m.Rooms {
		r.InstanceSeed = seed
	}
}

func (m *Maze) checkRoom(room int) error {
	if room < 0 || room >= len(m.Rooms) {
		return fmt.Errorf("%w: %d", ErrRoomOutOfRange, room)
	}
	return nil
}

// NumRooms returns the number of rooms.
func (m *Maze) NumRooms() int { return len(m.Rooms) }

// CurrentRoom returns the room the maze is in, or nil for an empty maze.
func (m *Maze) CurrentRoom() *Room {
	if m.Current < 0 {
		return nil
	}
	return m.room(m.Current)
}

// HasHigherLevels reports whether any context above level 0 exists.
func (m *Maze) HasHigherLevels() bool {
	for level := 1; level < len(m.Levels); level++ {
		if len(m.Levels[level]) > 0 {
			return true
		}
	}
	return false
}

// FindByID returns the component carrying id.
func (m *Maze) FindByID(id int) (Ref, bool) {
	for i, r := range m.Rooms {
		if r.ID == id {
			return RoomRef(i), true
		}
	}
	for i, c := range m.Contexts {
		if c.ID == id {
			return ContextRef(i), true
		}
	}
	return Ref{}, false
}

// ComponentID returns the id of the referenced component.
func (m *Maze) ComponentID(ref Ref) int {
	if ref.Kind == KindRoom {
		return m.room(ref.Index).ID
	}
	return m.context(ref.Index).ID
}

func (m *Maze) room(i int) *Room {
	if i < 0 || i >= len(m.Rooms) {
		panic(fmt.Sprintf("maze: room index %d outside arena of %d", i, len(m.Rooms)))
	}
	return m.Rooms[i]
}

func (m *Maze) context(i int) *Context {
	if i < 0 || i >= len(m.Contexts) {
		panic(fmt.Sprintf("maze: context index %d outside arena of %d", i, len(m.Contexts)))
	}
	return m.Contexts[i]
}

// pending returns the pending list of the referenced component.
func (m *Maze) pending(ref Ref) *[]int {
	if ref.Kind == KindRoom {
		return &m.room(ref.Index).Pending
	}
	return &m.context(ref.Index).Pending
}

// Clone returns an independent copy of the maze for the same instance.
func (m *Maze) Clone() *Maze {
	return m.CloneWithSeed(m.InstanceSeed)
}

// CloneWithSeed returns an independent copy resolved by another instance seed.
// Signatures already drawn keep their outcome.
func (m *Maze) CloneWithSeed(seed int64) *Maze {
	c := &Maze{
		NumDoors:     m.NumDoors,
		NumGoals:     m.NumGoals,
		Rooms:        make([]*Room, len(m.Rooms)),
		Contexts:     make([]*Context, len(m.Contexts)),
		Levels:       make([][]int, len(m.Levels)),
		Current:      m.Current,
		InstanceSeed: seed,
		nextID:       m.nextID,
	}
	for i, r := range m.Rooms {
		c.Rooms[i] = r.clone()
		c.Rooms[i].InstanceSeed = seed
	}
	for i, ctx := range m.Contexts {
		c.Contexts[i] = ctx.clone()
	}
	for i, l := range m.Levels {
		c.Levels[i] = slices.Clone(l)
	}
	return c
}

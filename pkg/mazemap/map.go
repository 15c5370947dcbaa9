package mazemap

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/aretw0/metamaze/pkg/maze"
)

// Type selects how a Map treats probabilistic links.
type Type int

const (
	// RoomMap ignores probabilities and covers every reachable room.
	RoomMap Type = iota
	// MetaMap assumes every link may open and keeps outcomes unresolved.
	MetaMap
	// InstanceMap records only the links open in the mapped instance.
	InstanceMap
)

func (t Type) String() string {
	switch t {
	case RoomMap:
		return "room"
	case MetaMap:
		return "meta"
	case InstanceMap:
		return "instance"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// ParseType maps "room", "meta" and "instance" to a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "room":
		return RoomMap, nil
	case "meta", "":
		return MetaMap, nil
	case "instance":
		return InstanceMap, nil
	}
	return 0, fmt.Errorf("unknown map type %q", s)
}

const (
	// MaxLevel bounds the depth of recursive map construction.
	MaxLevel = 50
	// SearchPasses is the number of sampled trials per single-map search.
	SearchPasses = 100
	// MaxWalkSteps bounds the speculative walk of a map set.
	MaxWalkSteps = 1000
	// Unreachable is returned by GotoGoal when no path is known.
	Unreachable = -1
)

// Map is the planner. It is either a single map over one maze instance or a
// set of per-instance meta maps, one of which is the real instance.
type Map struct {
	Type     Type
	NumDoors int
	NumGoals int

	Descriptors []*RoomDescriptor
	Current     *RoomDescriptor

	InstanceIndex       int
	InstanceSeeds       []int64
	InstanceFrequencies []float64
	Instances           []*Map
	Valid               []bool

	higherLevels bool
	nextID       int
	backCurrent  *RoomDescriptor
	backValid    []bool

	walkIDs   []int
	walkDoors []int

	logger *slog.Logger
}

// Option configures a Map.
type Option func(*Map)

// WithLogger sets the logger used for construction and planning traces.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Map) {
		m.logger = logger
	}
}

// New returns an empty map of the given type.
func New(t Type, opts ...Option) *Map {
	m := &Map{
		Type:   t,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsSet reports whether the map is a map set.
func (m *Map) IsSet() bool {
	return len(m.Instances) > 0
}

func (m *Map) reset() {
	m.Descriptors = nil
	m.Current = nil
	m.Instances = nil
	m.Valid = nil
	m.InstanceIndex = 0
	m.InstanceSeeds = nil
	m.InstanceFrequencies = nil
	m.nextID = 0
	m.backCurrent = nil
	m.backValid = nil
	m.walkIDs = nil
	m.walkDoors = nil
}

// MapMaze rebuilds the map from mz. The maze itself is not modified.
func (m *Map) MapMaze(mz *maze.Maze) error {
	if mz == nil {
		return ErrNilMaze
	}
	m.reset()
	m.NumDoors = mz.NumDoors
	m.NumGoals = mz.NumGoals
	m.higherLevels = mz.HasHigherLevels()
	m.InstanceSeeds = []int64{mz.InstanceSeed}
	m.InstanceFrequencies = []float64{1.0}

	if mz.Current < 0 {
		return nil
	}

	if m.Type == RoomMap {
		m.mapRooms(mz)
	} else {
		root := m.addDescriptor(mz.Clone())
		m.Current = root
		m.mapContexts(root, 0)
	}

	m.logger.Debug("maze mapped",
		"type", m.Type.String(),
		"descriptors", len(m.Descriptors),
		"instance", mz.InstanceSeed,
	)
	return nil
}

// MapMazeSet builds one meta map per instance seed, each over a clone of mz
// resolved by that seed. instanceIndex selects the real instance.
func (m *Map) MapMazeSet(mz *maze.Maze, instanceIndex int, seeds []int64, frequencies []float64) error {
	switch {
	case mz == nil:
		return ErrNilMaze
	case m.Type != MetaMap:
		return fmt.Errorf("%w: map sets need a meta map, got %s", ErrInvalidMapSet, m.Type)
	case len(seeds) == 0:
		return fmt.Errorf("%w: no instance seeds", ErrInvalidMapSet)
	case len(frequencies) != len(seeds):
		return fmt.Errorf("%w: %d seeds but %d frequencies", ErrInvalidMapSet, len(seeds), len(frequencies))
	case instanceIndex < 0 || instanceIndex >= len(seeds):
		return fmt.Errorf("%w: instance index %d", ErrInvalidMapSet, instanceIndex)
	}

	m.reset()
	m.NumDoors = mz.NumDoors
	m.NumGoals = mz.NumGoals
	m.higherLevels = mz.HasHigherLevels()
	m.InstanceIndex = instanceIndex
	m.InstanceSeeds = slices.Clone(seeds)
	m.InstanceFrequencies = slices.Clone(frequencies)

	for _, seed := range seeds {
		inst := New(MetaMap, WithLogger(m.logger))
		if err := inst.MapMaze(mz.CloneWithSeed(seed)); err != nil {
			return err
		}
		m.Instances = append(m.Instances, inst)
		m.Valid = append(m.Valid, true)
	}
	return nil
}

func (m *Map) addDescriptor(mz *maze.Maze) *RoomDescriptor {
	d := &RoomDescriptor{
		ID:           m.nextID,
		Maze:         mz,
		SearchLength: -1,
	}
	m.nextID++
	m.Descriptors = append(m.Descriptors, d)
	return d
}

func (m *Map) descriptorAt(room int) *RoomDescriptor {
	for _, d := range m.Descriptors {
		if d.RoomIndex() == room {
			return d
		}
	}
	return nil
}

func (m *Map) mapRooms(mz *maze.Maze) {
	m.mapRoomsFrom(mz.Clone())
	for range mz.NumRooms() {
		missing := -1
		for i := range mz.NumRooms() {
			if m.descriptorAt(i) == nil {
				missing = i
				break
			}
		}
		if missing < 0 {
			break
		}
		start := mz.Clone()
		_ = start.SetCurrent(missing)
		m.mapRoomsFrom(start)
	}

	for _, d := range m.Descriptors {
		for _, c := range d.Connections {
			c.Desc = m.descriptorAt(c.RoomIndex)
		}
	}
	m.Current = m.descriptorAt(mz.Current)
}

func (m *Map) mapRoomsFrom(mz *maze.Maze) {
	d := m.descriptorAt(mz.Current)
	if d == nil {
		d = m.addDescriptor(mz)
	}
	room := d.Room()
	for door := range m.NumDoors {
		if !room.Doors[door] {
			continue
		}
		next := d.Maze.Clone()
		sig, ok := next.ChooseDoor(door, true)
		if !ok || d.connectedTo(next.Current, door) {
			continue
		}
		d.Connections = append(d.Connections, &ConnectingRoom{
			RoomIndex:          next.Current,
			Door:               door,
			Signature:          sig.Clone(),
			ValidInstanceCount: -1,
		})
		m.mapRoomsFrom(next)
	}
}

func (m *Map) mapContexts(d *RoomDescriptor, level int) {
	if level > d.Maze.NumRooms() || level > MaxLevel {
		return
	}
	force := m.Type != InstanceMap
	room := d.Room()
	for door := range m.NumDoors {
		if !room.Doors[door] || d.Connection(door) != nil {
			continue
		}
		next := d.Maze.Clone()
		sig, ok := next.ChooseDoor(door, force)
		if !ok {
			continue
		}

		conn := &ConnectingRoom{
			RoomIndex:          next.Current,
			Door:               door,
			Signature:          sig.Clone(),
			ValidInstanceCount: -1,
		}
		if m.Type == InstanceMap {
			conn.Signature.Resolve(sig.Success)
		}

		candidate := &RoomDescriptor{Maze: next}
		target := m.findDejaVu(candidate)
		if target == nil {
			target = m.addDescriptor(next)
		}
		conn.Desc = target
		d.Connections = append(d.Connections, conn)
		m.mapContexts(target, level+1)
	}
}

func (m *Map) findDejaVu(d *RoomDescriptor) *RoomDescriptor {
	for _, other := range m.Descriptors {
		if other.DejaVu(d) {
			return other
		}
	}
	return nil
}

// Backup saves the planning state of every descriptor (and the validity of
// a map set) for a later Restore.
func (m *Map) Backup() {
	if m.IsSet() {
		m.backValid = slices.Clone(m.Valid)
		for i, inst := range m.Instances {
			if m.Valid[i] {
				inst.Backup()
			}
		}
		return
	}
	for _, d := range m.Descriptors {
		d.Backup()
	}
	m.backCurrent = m.Current
}

// Restore undoes every change made since Backup.
func (m *Map) Restore() {
	if m.IsSet() {
		if m.backValid == nil {
			return
		}
		m.Valid = m.backValid
		m.backValid = nil
		for i, inst := range m.Instances {
			if m.Valid[i] {
				inst.Restore()
			}
		}
		return
	}
	for _, d := range m.Descriptors {
		d.Restore()
	}
	if m.backCurrent != nil {
		m.Current = m.backCurrent
		m.backCurrent = nil
	}
}

// Real returns the map of the real instance (the map itself when it is not
// a set).
func (m *Map) Real() *Map {
	if m.IsSet() {
		return m.Instances[m.InstanceIndex]
	}
	return m
}

// CurrentRoom returns the room the real instance is believed to be in.
func (m *Map) CurrentRoom() *maze.Room {
	r := m.Real()
	if r.Current == nil {
		return nil
	}
	return r.Current.Room()
}

// ValidCount returns the number of instances still consistent with what was
// observed. A single map counts as one.
func (m *Map) ValidCount() int {
	if !m.IsSet() {
		return 1
	}
	n := 0
	for _, v := range m.Valid {
		if v {
			n++
		}
	}
	return n
}

// Walk returns the descriptor ids and doors of the last speculative walk
// made by a map set.
func (m *Map) Walk() (ids, doors []int) {
	return slices.Clone(m.walkIDs), slices.Clone(m.walkDoors)
}

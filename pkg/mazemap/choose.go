package mazemap

import (
	"fmt"

	"github.com/aretw0/metamaze/pkg/maze"
)

// ChooseDoor commits a door taken in the real maze. The outcome recorded in
// the edge signature decides whether the map advances; either way the
// outcome is propagated to every edge with a matching signature.
func (m *Map) ChooseDoor(door int) error {
	if m.Type == RoomMap {
		return ErrRoomMapPlanning
	}
	if door < 0 || door >= m.NumDoors {
		return fmt.Errorf("%w: %d", ErrDoorOutOfRange, door)
	}
	if m.Real().Current == nil {
		return ErrNotMapped
	}
	if m.IsSet() {
		m.chooseDoorSet(door)
	} else {
		m.chooseDoor(door, -1)
	}
	return nil
}

func (m *Map) chooseDoor(door, validCount int) {
	if m.Current == nil {
		return
	}
	conn := m.Current.Connection(door)
	if conn == nil {
		return
	}

	taken := conn.Signature.Clone()
	if taken.Success {
		conn.Visited = true
		conn.ValidInstanceCount = validCount
		m.Current = conn.Desc
	}
	m.propagate(taken, taken.Success)
}

// propagate resolves every edge whose signature matches sig.
func (m *Map) propagate(sig *maze.Signature, success bool) {
	for _, d := range m.Descriptors {
		for _, c := range d.Connections {
			if sig.Match(c.Signature) {
				c.Signature.Resolve(success)
			}
		}
	}
}

// chooseDoorSet forwards the door to every valid instance and rules out the
// instances that no longer agree with the real one.
func (m *Map) chooseDoorSet(door int) {
	count := m.ValidCount()
	for i, inst := range m.Instances {
		if m.Valid[i] {
			inst.chooseDoor(door, count)
		}
	}

	mark := m.Instances[m.InstanceIndex].currentMark()
	for i, inst := range m.Instances {
		if m.Valid[i] && i != m.InstanceIndex && inst.currentMark() != mark {
			m.Valid[i] = false
			m.logger.Debug("instance ruled out", "instance", m.InstanceSeeds[i], "door", door)
		}
	}
}

// CollectGoals clears the goals of the room the real instance stands in.
// They are removed from that room in every descriptor, and in a map set
// from the current room of every valid instance. It returns the goals
// cleared for the real instance.
func (m *Map) CollectGoals() []int {
	if !m.IsSet() {
		return m.collectGoals()
	}
	var found []int
	for i, inst := range m.Instances {
		if !m.Valid[i] {
			continue
		}
		goals := inst.collectGoals()
		if i == m.InstanceIndex {
			found = goals
		}
	}
	return found
}

func (m *Map) collectGoals() []int {
	if m.Current == nil {
		return nil
	}
	var found []int
	for g, has := range m.Current.Room().Goals {
		if has {
			found = append(found, g)
		}
	}
	if len(found) == 0 {
		return nil
	}
	idx := m.Current.RoomIndex()
	for _, d := range m.Descriptors {
		r := d.Maze.Rooms[idx]
		for _, g := range found {
			r.Goals[g] = false
		}
	}
	return found
}

func (m *Map) currentMark() int {
	if m.Current == nil {
		return -1
	}
	return m.Current.Room().Mark
}

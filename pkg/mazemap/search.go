package mazemap

import (
	"fmt"
	"slices"
)

type doorScore struct {
	weight float64
	length int
	count  int
}

// bestDoor picks the door with the highest weight, breaking ties by the
// lowest mean path length and then by the lowest door index.
func bestDoor(scores []doorScore) int {
	best := Unreachable
	for door, s := range scores {
		if s.count == 0 || s.weight <= 0 {
			continue
		}
		if best == Unreachable {
			best = door
			continue
		}
		b := scores[best]
		switch {
		case s.weight > b.weight:
			best = door
		case s.weight == b.weight && meanLength(s) < meanLength(b):
			best = door
		}
	}
	return best
}

func meanLength(s doorScore) float64 {
	return float64(s.length) / float64(s.count)
}

// GotoGoal advises the next door toward goal. It returns NumDoors when the
// goal is in the current room and Unreachable when no path is known.
// Goals found in the current room are consumed as by CollectGoals, so a
// second call from the same room searches for another copy.
func (m *Map) GotoGoal(goal int) (int, error) {
	if m.Type == RoomMap {
		return Unreachable, ErrRoomMapPlanning
	}
	if goal < 0 || goal >= m.NumGoals {
		return Unreachable, fmt.Errorf("%w: %d", ErrGoalOutOfRange, goal)
	}

	var door int
	if m.IsSet() {
		door = m.gotoGoalSet(goal)
	} else {
		door = m.gotoGoalSingle(goal)
	}
	m.logger.Debug("goal advice", "goal", goal, "door", door, "valid", m.ValidCount())
	return door, nil
}

func (m *Map) gotoGoalSingle(goal int) int {
	if m.Current == nil {
		return Unreachable
	}
	if slices.Contains(m.collectGoals(), goal) {
		return m.NumDoors
	}

	scores := make([]doorScore, m.NumDoors)
	for pass := range SearchPasses {
		key := int64(pass)
		for _, conn := range m.Current.Connections {
			if conn.Visited || !conn.Signature.Outcome(key) {
				continue
			}
			if path, ok := m.searchFrom(goal, conn, key); ok {
				s := &scores[conn.Door]
				s.weight++
				s.length += len(path)
				s.count++
			}
		}
	}
	return bestDoor(scores)
}

func (m *Map) searchFrom(goal int, conn *ConnectingRoom, key int64) ([]int, bool) {
	if conn.Desc == nil {
		return nil, false
	}
	for _, d := range m.Descriptors {
		d.SearchLength = -1
	}
	m.Current.SearchLength = 0
	return SearchGoal(goal, conn.Desc, []int{m.Current.ID}, key)
}

// SearchGoal looks depth first for the shortest path from d to a room
// holding goal, following only the edges open for trialKey. The returned
// path lists descriptor ids and starts with the given path.
//
// A descriptor already reached by a path no longer than the current one is
// not expanded again, which bounds the search on cyclic maps. Callers reset
// SearchLength to -1 on every descriptor before a new search.
func SearchGoal(goal int, d *RoomDescriptor, path []int, trialKey int64) ([]int, bool) {
	if d.SearchLength != -1 && d.SearchLength <= len(path) {
		return path, false
	}
	d.SearchLength = len(path)

	here := append(slices.Clone(path), d.ID)
	if d.Room().HasGoal(goal) {
		return here, true
	}

	var best []int
	for _, conn := range d.Connections {
		if conn.Desc == nil || !conn.Signature.Outcome(trialKey) {
			continue
		}
		if p, ok := SearchGoal(goal, conn.Desc, here, trialKey); ok {
			if best == nil || len(p) < len(best) {
				best = p
			}
		}
	}
	if best != nil {
		return best, true
	}
	return path, false
}

// advise adds this instance's vote for the next door to scores. It reports
// true when the instance already stands in a room holding goal.
func (m *Map) advise(goal int, weight float64, validCount int, trialKey int64, scores []doorScore) bool {
	if m.Current == nil {
		return false
	}
	if m.Current.Room().HasGoal(goal) {
		return true
	}
	for _, conn := range m.Current.Connections {
		if m.higherLevels {
			if conn.Visited {
				continue
			}
		} else if conn.ValidInstanceCount != -1 && conn.ValidInstanceCount <= validCount {
			continue
		}
		if !conn.Signature.Outcome(trialKey) {
			continue
		}
		if path, ok := m.searchFrom(goal, conn, trialKey); ok {
			s := &scores[conn.Door]
			s.weight += weight
			s.length += len(path)
			s.count++
		}
	}
	return false
}

func (m *Map) gotoGoalSet(goal int) int {
	actual := m.Real()
	if actual.Current == nil {
		return Unreachable
	}

	here := false
	for i, inst := range m.Instances {
		if m.Valid[i] && slices.Contains(inst.collectGoals(), goal) && i == m.InstanceIndex {
			here = true
		}
	}
	if here {
		m.walkIDs = []int{actual.Current.ID}
		m.walkDoors = []int{m.NumDoors}
		return m.NumDoors
	}

	m.Backup()
	ids := []int{actual.Current.ID}
	counts := []int{m.ValidCount()}
	var doors []int

	for range MaxWalkSteps {
		scores := make([]doorScore, m.NumDoors)
		count := m.ValidCount()
		reached := false
		for i, inst := range m.Instances {
			if !m.Valid[i] {
				continue
			}
			if inst.advise(goal, m.InstanceFrequencies[i], count, m.InstanceSeeds[i], scores) && i == m.InstanceIndex {
				reached = true
			}
		}
		if reached {
			doors = append(doors, m.NumDoors)
			break
		}

		door := bestDoor(scores)
		doors = append(doors, door)
		if door == Unreachable {
			break
		}
		m.chooseDoorSet(door)
		ids = append(ids, actual.Current.ID)
		counts = append(counts, m.ValidCount())
	}
	m.Restore()

	m.walkIDs = ids
	m.walkDoors = doors

	if len(doors) == 0 {
		return Unreachable
	}
	first := doors[0]
	if first < 0 || first >= m.NumDoors || m.higherLevels {
		return first
	}

	// Loops that bring the real instance back to its starting room without
	// ruling out any instance can be skipped.
	door := first
	for i := 1; i < len(doors) && i < len(ids); i++ {
		if ids[i] == ids[0] && counts[i] == counts[0] && doors[i] >= 0 && doors[i] < m.NumDoors {
			door = doors[i]
		}
	}
	return door
}

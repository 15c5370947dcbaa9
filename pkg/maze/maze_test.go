package maze_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/metamaze/pkg/maze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dump(t *testing.T, m *maze.Maze) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, m.Dump(&buf))
	return buf.String()
}

// twoRooms builds room 0 -> room 1 through door 0 with the goal in room 1.
func twoRooms(t *testing.T, probability float64) *maze.Maze {
	t.Helper()
	m := maze.New(2, 1, 1)
	_, err := m.OpenLink(0, 1, 0, probability, 1)
	require.NoError(t, err)
	require.NoError(t, m.SetGoal(1, 0))
	return m
}

func TestGenerate_TopologyValidity(t *testing.T) {
	tests := []struct {
		name   string
		params maze.Params
	}{
		{
			name: "one way with a second level",
			params: maze.Params{
				NumRooms: 8, NumDoors: 3, NumGoals: 2,
				ContextSizes: []int{10, 4}, EffectDelayScale: 2,
			},
		},
		{
			name: "two way",
			params: maze.Params{
				NumRooms: 6, NumDoors: 4, NumGoals: 1,
				ContextSizes: []int{6}, EffectDelayScale: 1, TwoWay: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(1); seed <= 20; seed++ {
				p := tt.params
				p.MetaSeed = seed
				m, err := maze.Generate(p)
				require.NoError(t, err)

				type slot struct{ room, door int }
				seen := map[slot]bool{}
				for _, ci := range m.Levels[0] {
					c := m.Contexts[ci]
					require.Equal(t, maze.KindRoom, c.Cause.Kind)
					require.Equal(t, maze.KindRoom, c.Effect.Kind)
					assert.NotEqual(t, c.Cause.Index, c.Effect.Index)
					s := slot{c.Cause.Index, c.Door}
					assert.False(t, seen[s], "door %d of room %d bound twice", c.Door, c.Cause.Index)
					seen[s] = true
				}

				for _, r := range m.Rooms {
					open := 0
					for _, d := range r.Doors {
						if d {
							open++
						}
					}
					assert.Equal(t, open, len(r.CauseContexts))
				}

				for level := 1; level < len(m.Levels); level++ {
					for _, ci := range m.Levels[level] {
						c := m.Contexts[ci]
						assert.Equal(t, maze.KindContext, c.Cause.Kind)
						assert.Equal(t, maze.KindContext, c.Effect.Kind)
						assert.Less(t, m.Contexts[c.Cause.Index].Level, level)
						assert.Less(t, m.Contexts[c.Effect.Index].Level, level)
						assert.GreaterOrEqual(t, c.EffectDelay, 1)
						assert.LessOrEqual(t, c.EffectDelay, (level+1)*p.EffectDelayScale)
					}
				}

				want := p.ContextSizes[0]
				if p.TwoWay {
					want *= 2
				}
				assert.Len(t, m.Levels[0], want)
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	p := maze.Params{
		NumRooms: 7, NumDoors: 3, NumGoals: 2,
		ContextSizes: []int{9, 3}, EffectDelayScale: 2,
		MetaSeed: 42, InstanceSeed: 7,
	}
	a, err := maze.Generate(p)
	require.NoError(t, err)
	b, err := maze.Generate(p)
	require.NoError(t, err)
	assert.Equal(t, dump(t, a), dump(t, b))

	p.MetaSeed = 43
	c, err := maze.Generate(p)
	require.NoError(t, err)
	assert.NotEqual(t, dump(t, a), dump(t, c))
}

func TestGenerate_Errors(t *testing.T) {
	_, err := maze.Generate(maze.Params{NumRooms: 2, NumDoors: 1, ContextSizes: []int{3}, EffectDelayScale: 1})
	assert.ErrorIs(t, err, maze.ErrTopologyExhausted)

	_, err = maze.Generate(maze.Params{NumRooms: 3, NumDoors: 2, ContextSizes: []int{0, 2}, EffectDelayScale: 1})
	assert.ErrorIs(t, err, maze.ErrTopologyExhausted)

	_, err = maze.Generate(maze.Params{NumRooms: -1})
	assert.ErrorIs(t, err, maze.ErrInvalidParams)

	_, err = maze.Generate(maze.Params{NumRooms: 3, NumDoors: 2, ContextSizes: []int{2}})
	assert.ErrorIs(t, err, maze.ErrInvalidParams)
}

func TestGenerate_Empty(t *testing.T) {
	m, err := maze.Generate(maze.Params{NumDoors: 2})
	require.NoError(t, err)
	assert.Equal(t, -1, m.Current)

	_, ok := m.ChooseDoor(0, true)
	assert.False(t, ok)
	assert.Equal(t, -1, m.Room().ID)
}

func TestMaze_Clone(t *testing.T) {
	m, err := maze.Generate(maze.Params{
		NumRooms: 6, NumDoors: 3, NumGoals: 2,
		ContextSizes: []int{8, 3}, EffectDelayScale: 2, MetaSeed: 11, InstanceSeed: 3,
	})
	require.NoError(t, err)
	before := dump(t, m)

	c := m.Clone()
	assert.Equal(t, before, dump(t, c))
	require.Len(t, c.Rooms, len(m.Rooms))
	require.Len(t, c.Contexts, len(m.Contexts))
	for i := range m.Rooms {
		assert.NotSame(t, m.Rooms[i], c.Rooms[i])
	}
	for i := range m.Contexts {
		assert.NotSame(t, m.Contexts[i], c.Contexts[i])
	}

	for door := range c.NumDoors {
		if _, ok := c.ChooseDoor(door, true); ok {
			break
		}
	}
	c.Rooms[0].Doors[0] = !c.Rooms[0].Doors[0]
	c.Rooms[1].Goals[1] = !c.Rooms[1].Goals[1]
	c.Contexts[0].Probability = 0.123
	c.Levels[0] = c.Levels[0][:1]

	assert.Equal(t, before, dump(t, m))
	assert.Equal(t, 0, m.Current)
}

func TestMaze_CloneWithSeed(t *testing.T) {
	m := twoRooms(t, 0.5)
	c := m.CloneWithSeed(99)
	assert.Equal(t, int64(99), c.InstanceSeed)
	for _, r := range c.Rooms {
		assert.Equal(t, int64(99), r.InstanceSeed)
	}
	assert.Equal(t, int64(0), m.Rooms[0].InstanceSeed)
}

func TestMaze_RoomGoalsAreSingleUse(t *testing.T) {
	m := maze.New(2, 1, 1)
	require.NoError(t, m.SetGoal(0, 0))

	assert.True(t, m.Peek().HasGoal(0))
	assert.True(t, m.Room().HasGoal(0))
	assert.False(t, m.Room().HasGoal(0))
	assert.False(t, m.Peek().HasGoal(0))
}

func TestMaze_ChooseDoor(t *testing.T) {
	t.Run("certain link moves and reports the goal once", func(t *testing.T) {
		m := twoRooms(t, 1.0)
		sig, ok := m.ChooseDoor(0, false)
		require.True(t, ok)
		assert.True(t, sig.Success)
		assert.Equal(t, 1, m.Current)

		v := m.Room()
		assert.Equal(t, 1, v.ID)
		assert.True(t, v.HasGoal(0))
		assert.False(t, m.Room().HasGoal(0))
	})

	t.Run("impossible link stays and drops the schedule", func(t *testing.T) {
		m := twoRooms(t, 0)
		sig, ok := m.ChooseDoor(0, false)
		assert.False(t, ok)
		require.NotNil(t, sig)
		assert.False(t, sig.Success)
		assert.Equal(t, 0, m.Current)
		assert.Empty(t, m.Rooms[1].Pending)
		assert.Equal(t, -1, m.Contexts[0].EffectTimer)
	})

	t.Run("force overrides the outcome", func(t *testing.T) {
		m := twoRooms(t, 0)
		_, ok := m.ChooseDoor(0, true)
		assert.True(t, ok)
		assert.Equal(t, 1, m.Current)
	})

	t.Run("closed and out of range doors", func(t *testing.T) {
		m := maze.New(2, 2, 0)
		_, err := m.OpenLink(0, 1, 1, 1.0, 1)
		require.NoError(t, err)

		for _, door := range []int{-1, 0, 2} {
			sig, ok := m.ChooseDoor(door, true)
			assert.False(t, ok)
			assert.Nil(t, sig)
		}
		assert.Equal(t, 0, m.Current)
	})

	t.Run("outcome is stable for the same instance", func(t *testing.T) {
		m := twoRooms(t, 0.5)
		first, _ := m.ChooseDoor(0, false)
		for range 5 {
			c := twoRooms(t, 0.5)
			sig, _ := c.ChooseDoor(0, false)
			assert.Equal(t, first.Success, sig.Success)
		}
	})
}

func TestMaze_HigherLevelContextsTravelWithTheirHost(t *testing.T) {
	m := maze.New(3, 2, 0)
	a, err := m.OpenLink(0, 1, 0, 0.2, 1)
	require.NoError(t, err)
	_, err = m.OpenLink(1, 0, 0, 0.2, 1)
	require.NoError(t, err)
	c, err := m.OpenLink(1, 2, 1, 0.2, 1)
	require.NoError(t, err)
	x, err := m.AddContext(1, a, c, 0.3, 5)
	require.NoError(t, err)
	assert.True(t, m.HasHigherLevels())

	_, ok := m.ChooseDoor(0, true)
	require.True(t, ok)
	assert.Equal(t, []int{x}, m.Contexts[c].Pending)
	assert.Equal(t, 5, m.Contexts[x].EffectTimer)

	sig, ok := m.ChooseDoor(1, true)
	require.True(t, ok)
	assert.ElementsMatch(t, []int{m.Rooms[2].ID, m.Contexts[c].ID, m.Contexts[x].ID}, sig.IDs)
	assert.InDelta(t, 0.5, sig.Probability, 1e-9)
	assert.Empty(t, m.Contexts[c].Pending)
	assert.Empty(t, m.Rooms[2].Pending)
	assert.Equal(t, -1, m.Contexts[x].EffectTimer)
}

func TestMaze_ExpireContexts(t *testing.T) {
	m := maze.New(3, 1, 0)
	a, err := m.OpenLink(0, 1, 0, 1.0, 1)
	require.NoError(t, err)
	b, err := m.OpenLink(1, 2, 0, 1.0, 1)
	require.NoError(t, err)
	x, err := m.AddContext(1, a, b, 0.5, 2)
	require.NoError(t, err)

	_, ok := m.ChooseDoor(0, false)
	require.True(t, ok)
	require.Equal(t, []int{x}, m.Contexts[b].Pending)

	m.ExpireContexts()
	assert.Equal(t, []int{x}, m.Contexts[b].Pending)
	assert.Equal(t, 1, m.Contexts[x].EffectTimer)

	m.ExpireContexts()
	assert.Empty(t, m.Contexts[b].Pending)
	assert.Equal(t, -1, m.Contexts[x].EffectTimer)
}

func TestMaze_Builders(t *testing.T) {
	m := maze.New(3, 2, 1)

	_, err := m.OpenLink(0, 0, 0, 1, 1)
	assert.ErrorIs(t, err, maze.ErrInvalidLink)
	_, err = m.OpenLink(0, 1, 2, 1, 1)
	assert.ErrorIs(t, err, maze.ErrDoorOutOfRange)
	_, err = m.OpenLink(0, 5, 0, 1, 1)
	assert.ErrorIs(t, err, maze.ErrRoomOutOfRange)

	a, err := m.OpenLink(0, 1, 0, 1, 1)
	require.NoError(t, err)
	_, err = m.OpenLink(0, 2, 0, 1, 1)
	assert.ErrorIs(t, err, maze.ErrDoorInUse)
	b, err := m.OpenLink(1, 2, 0, 1, 1)
	require.NoError(t, err)

	_, err = m.AddContext(0, a, b, 0.5, 1)
	assert.ErrorIs(t, err, maze.ErrInvalidLink)
	_, err = m.AddContext(1, a, a, 0.5, 1)
	assert.ErrorIs(t, err, maze.ErrInvalidLink)
	_, err = m.AddContext(1, a, b, 0.5, 1)
	require.NoError(t, err)
	_, err = m.AddContext(1, a, b, 0.5, 1)
	assert.ErrorIs(t, err, maze.ErrInvalidLink)

	assert.ErrorIs(t, m.SetGoal(0, 1), maze.ErrGoalOutOfRange)
	assert.ErrorIs(t, m.SetMark(3, 1), maze.ErrRoomOutOfRange)
	assert.ErrorIs(t, m.SetCurrent(-1), maze.ErrRoomOutOfRange)
}

func TestMaze_FindByID(t *testing.T) {
	m := twoRooms(t, 1)
	ref, ok := m.FindByID(1)
	require.True(t, ok)
	assert.Equal(t, maze.RoomRef(1), ref)

	ref, ok = m.FindByID(m.Contexts[0].ID)
	require.True(t, ok)
	assert.Equal(t, maze.ContextRef(0), ref)

	_, ok = m.FindByID(1000)
	assert.False(t, ok)
}

func TestMaze_MarkRooms(t *testing.T) {
	m := maze.New(4, 1, 1)
	require.NoError(t, m.SetGoal(2, 0))

	m.MarkRooms(maze.MarkOptions{})
	assert.Equal(t, maze.MarkStart, m.Rooms[0].Mark)
	assert.Equal(t, maze.MarkMaze, m.Rooms[1].Mark)
	assert.Equal(t, maze.MarkGoal, m.Rooms[2].Mark)

	m.MarkRooms(maze.MarkOptions{ContextMaze: true, MarkPath: true})
	assert.Equal(t, maze.MarkBegin, m.Rooms[0].Mark)
	assert.Equal(t, maze.MarkMaze+3, m.Rooms[3].Mark)
	assert.Equal(t, maze.MarkGoal, m.Rooms[2].Mark)
	assert.Equal(t, "goal", maze.MarkName(maze.MarkGoal))
}

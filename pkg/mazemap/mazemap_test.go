package mazemap_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/metamaze/pkg/dsl"
	"github.com/aretw0/metamaze/pkg/maze"
	"github.com/aretw0/metamaze/pkg/mazemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// corridor builds room 0 -> room 1 through door 0 with goal 0 in room 1.
func corridor(t *testing.T, probability float64) *maze.Maze {
	t.Helper()
	m := maze.New(2, 1, 1)
	_, err := m.OpenLink(0, 1, 0, probability, 1)
	require.NoError(t, err)
	require.NoError(t, m.SetGoal(1, 0))
	m.MarkRooms(maze.MarkOptions{})
	return m
}

func generated(t *testing.T, seed int64) *maze.Maze {
	t.Helper()
	m, err := maze.Generate(maze.Params{
		NumRooms: 6, NumDoors: 3, NumGoals: 2,
		ContextSizes: []int{5}, EffectDelayScale: 1,
		MetaSeed: seed, InstanceSeed: seed * 31, TwoWay: true,
	})
	require.NoError(t, err)
	m.MarkRooms(maze.MarkOptions{})
	return m
}

func TestGotoGoal_EndToEnd(t *testing.T) {
	mz := corridor(t, 1.0)
	plan := mazemap.New(mazemap.MetaMap)
	require.NoError(t, plan.MapMaze(mz))
	require.Len(t, plan.Descriptors, 2)

	door, err := plan.GotoGoal(0)
	require.NoError(t, err)
	assert.Equal(t, 0, door)

	_, ok := mz.ChooseDoor(door, false)
	require.True(t, ok)
	require.NoError(t, plan.ChooseDoor(door))
	assert.Same(t, plan.Descriptors[1], plan.Current)
	assert.True(t, plan.Descriptors[0].Connection(0).Resolved())

	assert.True(t, mz.Room().HasGoal(0))
	assert.False(t, mz.Room().HasGoal(0))

	door, err = plan.GotoGoal(0)
	require.NoError(t, err)
	assert.Equal(t, mz.NumDoors, door)

	door, err = plan.GotoGoal(0)
	require.NoError(t, err)
	assert.Equal(t, mazemap.Unreachable, door, "the goal was consumed")
}

func TestMap_CollectGoals(t *testing.T) {
	mz := corridor(t, 1.0)
	plan := mazemap.New(mazemap.MetaMap)
	require.NoError(t, plan.MapMaze(mz))

	assert.Empty(t, plan.CollectGoals(), "nothing to collect in the start room")
	require.NoError(t, plan.ChooseDoor(0))

	assert.Equal(t, []int{0}, plan.CollectGoals())
	assert.Empty(t, plan.CollectGoals())
	for _, d := range plan.Descriptors {
		assert.False(t, d.Maze.Rooms[1].HasGoal(0))
	}

	door, err := plan.GotoGoal(0)
	require.NoError(t, err)
	assert.Equal(t, mazemap.Unreachable, door)
}

func TestGotoGoal_Unreachable(t *testing.T) {
	t.Run("no links at all", func(t *testing.T) {
		mz := maze.New(2, 1, 1)
		require.NoError(t, mz.SetGoal(1, 0))
		plan := mazemap.New(mazemap.MetaMap)
		require.NoError(t, plan.MapMaze(mz))

		door, err := plan.GotoGoal(0)
		require.NoError(t, err)
		assert.Equal(t, mazemap.Unreachable, door)
	})

	t.Run("goal room only leads away", func(t *testing.T) {
		mz := maze.New(3, 1, 1)
		_, err := mz.OpenLink(2, 0, 0, 1.0, 1)
		require.NoError(t, err)
		require.NoError(t, mz.SetGoal(2, 0))
		plan := mazemap.New(mazemap.MetaMap)
		require.NoError(t, plan.MapMaze(mz))

		door, err := plan.GotoGoal(0)
		require.NoError(t, err)
		assert.Equal(t, mazemap.Unreachable, door)
	})

	t.Run("closed link", func(t *testing.T) {
		mz := corridor(t, 0)
		plan := mazemap.New(mazemap.MetaMap)
		require.NoError(t, plan.MapMaze(mz))

		door, err := plan.GotoGoal(0)
		require.NoError(t, err)
		assert.Equal(t, mazemap.Unreachable, door)
	})
}

func TestGotoGoal_Errors(t *testing.T) {
	mz := corridor(t, 1.0)

	rooms := mazemap.New(mazemap.RoomMap)
	require.NoError(t, rooms.MapMaze(mz))
	_, err := rooms.GotoGoal(0)
	assert.ErrorIs(t, err, mazemap.ErrRoomMapPlanning)
	assert.ErrorIs(t, rooms.ChooseDoor(0), mazemap.ErrRoomMapPlanning)

	plan := mazemap.New(mazemap.MetaMap)
	require.NoError(t, plan.MapMaze(mz))
	_, err = plan.GotoGoal(1)
	assert.ErrorIs(t, err, mazemap.ErrGoalOutOfRange)
	assert.ErrorIs(t, plan.ChooseDoor(3), mazemap.ErrDoorOutOfRange)

	assert.ErrorIs(t, plan.MapMaze(nil), mazemap.ErrNilMaze)
}

func TestGotoGoal_PrefersShorterPaths(t *testing.T) {
	// Door 0 reaches the goal directly, door 1 goes around through room 2.
	mz := maze.New(3, 2, 1)
	_, err := mz.OpenLink(0, 1, 0, 1.0, 1)
	require.NoError(t, err)
	_, err = mz.OpenLink(0, 2, 1, 1.0, 1)
	require.NoError(t, err)
	_, err = mz.OpenLink(2, 1, 0, 1.0, 1)
	require.NoError(t, err)
	require.NoError(t, mz.SetGoal(1, 0))

	plan := mazemap.New(mazemap.MetaMap)
	require.NoError(t, plan.MapMaze(mz))
	door, err := plan.GotoGoal(0)
	require.NoError(t, err)
	assert.Equal(t, 0, door)
}

func TestMapMaze_Modes(t *testing.T) {
	t.Run("room map covers disconnected rooms", func(t *testing.T) {
		mz := maze.New(4, 1, 0)
		_, err := mz.OpenLink(0, 1, 0, 0.1, 1)
		require.NoError(t, err)
		_, err = mz.OpenLink(2, 3, 0, 0.1, 1)
		require.NoError(t, err)

		plan := mazemap.New(mazemap.RoomMap)
		require.NoError(t, plan.MapMaze(mz))
		require.Len(t, plan.Descriptors, 4)
		assert.Equal(t, 0, plan.Current.RoomIndex())

		seen := map[int]bool{}
		for _, d := range plan.Descriptors {
			seen[d.RoomIndex()] = true
		}
		assert.Len(t, seen, 4)
	})

	t.Run("meta map merges revisited rooms", func(t *testing.T) {
		mz := maze.New(2, 1, 0)
		_, err := mz.OpenLink(0, 1, 0, 0.5, 1)
		require.NoError(t, err)
		_, err = mz.OpenLink(1, 0, 0, 0.5, 1)
		require.NoError(t, err)

		plan := mazemap.New(mazemap.MetaMap)
		require.NoError(t, plan.MapMaze(mz))
		require.Len(t, plan.Descriptors, 2)
		assert.Same(t, plan.Descriptors[0], plan.Descriptors[1].Connection(0).Desc)
		for _, d := range plan.Descriptors {
			for _, c := range d.Connections {
				assert.False(t, c.Resolved())
			}
		}
	})

	t.Run("instance map keeps open links resolved", func(t *testing.T) {
		for seed := int64(1); seed <= 10; seed++ {
			mz := generated(t, seed)
			plan := mazemap.New(mazemap.InstanceMap)
			require.NoError(t, plan.MapMaze(mz))
			for _, d := range plan.Descriptors {
				for _, c := range d.Connections {
					assert.True(t, c.Resolved())
					assert.True(t, c.Signature.Success)
				}
			}
		}
	})

	t.Run("mapping leaves the maze untouched", func(t *testing.T) {
		mz := generated(t, 5)
		var before bytes.Buffer
		require.NoError(t, mz.Dump(&before))

		plan := mazemap.New(mazemap.MetaMap)
		require.NoError(t, plan.MapMaze(mz))

		var after bytes.Buffer
		require.NoError(t, mz.Dump(&after))
		assert.Equal(t, before.String(), after.String())
	})

	t.Run("empty maze", func(t *testing.T) {
		plan := mazemap.New(mazemap.MetaMap)
		require.NoError(t, plan.MapMaze(maze.New(0, 1, 0)))
		assert.Nil(t, plan.Current)
		door, err := plan.GotoGoal(0)
		assert.ErrorIs(t, err, mazemap.ErrGoalOutOfRange)
		assert.Equal(t, mazemap.Unreachable, door)
	})
}

func TestSearchGoal_TerminatesOnCycles(t *testing.T) {
	for seed := int64(1); seed <= 15; seed++ {
		mz := generated(t, seed)
		for _, typ := range []mazemap.Type{mazemap.MetaMap, mazemap.InstanceMap} {
			plan := mazemap.New(typ)
			require.NoError(t, plan.MapMaze(mz))

			for key := int64(0); key < 5; key++ {
				for _, d := range plan.Descriptors {
					d.SearchLength = -1
				}
				path, ok := mazemap.SearchGoal(0, plan.Current, nil, key)
				if !ok {
					continue
				}
				seen := map[int]bool{}
				for _, id := range path {
					assert.False(t, seen[id], "descriptor %d visited twice on one path", id)
					seen[id] = true
				}
			}

			for goal := range mz.NumGoals {
				door, err := plan.GotoGoal(goal)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, door, mazemap.Unreachable)
				assert.LessOrEqual(t, door, mz.NumDoors)
			}
		}
	}
}

func TestMap_BackupRestore(t *testing.T) {
	mz := corridor(t, 1.0)
	plan := mazemap.New(mazemap.MetaMap)
	require.NoError(t, plan.MapMaze(mz))
	root := plan.Current

	plan.Backup()
	require.NoError(t, plan.ChooseDoor(0))
	assert.NotSame(t, root, plan.Current)
	assert.True(t, root.Connection(0).Resolved())

	plan.Restore()
	assert.Same(t, root, plan.Current)
	assert.False(t, root.Connection(0).Resolved())
	assert.False(t, root.Connection(0).Visited)
}

// openAndClosedSeeds finds one instance seed that opens the corridor link
// and one that keeps it closed.
func openAndClosedSeeds(t *testing.T, mz *maze.Maze) (open, closed int64) {
	t.Helper()
	sig := maze.NewSignature([]int{mz.Rooms[1].ID, mz.Contexts[0].ID}, mz.Contexts[0].Probability)
	open, closed = -1, -1
	for seed := int64(1); seed < 1000 && (open < 0 || closed < 0); seed++ {
		if sig.Draw(seed) {
			if open < 0 {
				open = seed
			}
		} else if closed < 0 {
			closed = seed
		}
	}
	require.GreaterOrEqual(t, open, int64(0))
	require.GreaterOrEqual(t, closed, int64(0))
	return open, closed
}

func TestMapSet(t *testing.T) {
	t.Run("parameters", func(t *testing.T) {
		mz := corridor(t, 0.5)
		set := mazemap.New(mazemap.MetaMap)
		assert.ErrorIs(t, set.MapMazeSet(mz, 0, nil, nil), mazemap.ErrInvalidMapSet)
		assert.ErrorIs(t, set.MapMazeSet(mz, 0, []int64{1}, []float64{0.5, 0.5}), mazemap.ErrInvalidMapSet)
		assert.ErrorIs(t, set.MapMazeSet(mz, 2, []int64{1, 2}, []float64{0.5, 0.5}), mazemap.ErrInvalidMapSet)
		assert.ErrorIs(t, mazemap.New(mazemap.InstanceMap).MapMazeSet(mz, 0, []int64{1}, []float64{1}), mazemap.ErrInvalidMapSet)
	})

	t.Run("diverging instance is ruled out", func(t *testing.T) {
		mz := corridor(t, 0.5)
		open, closed := openAndClosedSeeds(t, mz)

		set := mazemap.New(mazemap.MetaMap)
		require.NoError(t, set.MapMazeSet(mz, 0, []int64{open, closed}, []float64{0.5, 0.5}))
		require.True(t, set.IsSet())
		assert.Equal(t, 2, set.ValidCount())

		door, err := set.GotoGoal(0)
		require.NoError(t, err)
		assert.Equal(t, 0, door)
		assert.Equal(t, 2, set.ValidCount(), "planning must not change validity")

		ids, doors := set.Walk()
		assert.NotEmpty(t, ids)
		assert.Equal(t, []int{0, mz.NumDoors}, doors)

		require.NoError(t, set.ChooseDoor(0))
		assert.Equal(t, []bool{true, false}, set.Valid)
		assert.Equal(t, 1, set.ValidCount())
		assert.Equal(t, maze.MarkGoal, set.CurrentRoom().Mark)

		door, err = set.GotoGoal(0)
		require.NoError(t, err)
		assert.Equal(t, mz.NumDoors, door)

		assert.Empty(t, set.CollectGoals(), "planning already consumed the goal")
		door, err = set.GotoGoal(0)
		require.NoError(t, err)
		assert.Equal(t, mazemap.Unreachable, door)
	})

	t.Run("instance without frequency does not vote", func(t *testing.T) {
		mz := corridor(t, 0.5)
		open, closed := openAndClosedSeeds(t, mz)

		set := mazemap.New(mazemap.MetaMap)
		require.NoError(t, set.MapMazeSet(mz, 1, []int64{open, closed}, []float64{0, 1}))

		door, err := set.GotoGoal(0)
		require.NoError(t, err)
		assert.Equal(t, mazemap.Unreachable, door)
	})

	t.Run("real instance closed", func(t *testing.T) {
		mz := corridor(t, 0.5)
		open, closed := openAndClosedSeeds(t, mz)

		set := mazemap.New(mazemap.MetaMap)
		require.NoError(t, set.MapMazeSet(mz, 1, []int64{open, closed}, []float64{0.5, 0.5}))

		door, err := set.GotoGoal(0)
		require.NoError(t, err)
		assert.Equal(t, 0, door, "the open instance still votes for the door")

		require.NoError(t, set.ChooseDoor(0))
		assert.Equal(t, []bool{false, true}, set.Valid)

		door, err = set.GotoGoal(0)
		require.NoError(t, err)
		assert.Equal(t, mazemap.Unreachable, door)
	})
}

// loopMaze has two ways from room 0 to the goal in room 2: door 1 directly
// (link "near") or door 0 through room 1 and its door 1 (link "far").
// Door 0 of room 1 leads back to room 0. Rooms 3 and 4 are unreachable and
// only carry the lift when lifted is set.
func loopMaze(t *testing.T, lifted, marked bool) *maze.Maze {
	t.Helper()
	b := dsl.New(5, 2, 1)
	b.Room(0).Door(0).To(1)
	b.Room(0).Door(1).To(2).Prob(0.5).As("near")
	b.Room(1).Door(0).To(0)
	b.Room(1).Door(1).To(2).Prob(0.5).As("far")
	b.Room(3).Door(0).To(4).As("out")
	b.Room(4).Door(0).To(3).As("back")
	b.Room(2).Goal(0)
	if lifted {
		b.Lift(1, "out", "back")
	}
	if marked {
		b.Marks(maze.MarkOptions{})
	}
	mz, err := b.Build()
	require.NoError(t, err)
	return mz
}

// loopSeeds finds a seed where only "near" opens and one where only "far" does.
func loopSeeds(t *testing.T, mz *maze.Maze) (nearOnly, farOnly int64) {
	t.Helper()
	near := maze.NewSignature([]int{mz.Rooms[2].ID, mz.Contexts[1].ID}, 0.5)
	far := maze.NewSignature([]int{mz.Rooms[2].ID, mz.Contexts[3].ID}, 0.5)
	nearOnly, farOnly = -1, -1
	for seed := int64(1); seed < 1000 && (nearOnly < 0 || farOnly < 0); seed++ {
		n, f := near.Draw(seed), far.Draw(seed)
		switch {
		case n && !f && nearOnly < 0:
			nearOnly = seed
		case f && !n && farOnly < 0:
			farOnly = seed
		}
	}
	require.GreaterOrEqual(t, nearOnly, int64(0))
	require.GreaterOrEqual(t, farOnly, int64(0))
	return nearOnly, farOnly
}

func TestMapSet_LoopShortcut(t *testing.T) {
	// The real instance only has "near"; the likelier one only has "far".
	// The walk tries door 0, fails "far", comes back to room 0 and takes
	// door 1. Without ruling anything out on the way, door 1 is advised.
	tests := []struct {
		name          string
		lifted        bool
		marked        bool
		wantDoor      int
		wantRemaining int
	}{
		{name: "loop is skipped", wantDoor: 1, wantRemaining: 2},
		{name: "higher levels keep the first step", lifted: true, wantDoor: 0, wantRemaining: 2},
		{name: "ruling out an instance keeps the first step", marked: true, wantDoor: 0, wantRemaining: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mz := loopMaze(t, tt.lifted, tt.marked)
			require.Equal(t, tt.lifted, mz.HasHigherLevels())
			nearOnly, farOnly := loopSeeds(t, mz)

			set := mazemap.New(mazemap.MetaMap)
			require.NoError(t, set.MapMazeSet(mz, 0, []int64{nearOnly, farOnly}, []float64{0.3, 0.7}))

			door, err := set.GotoGoal(0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDoor, door)
			assert.Equal(t, 2, set.ValidCount(), "planning must not change validity")

			ids, doors := set.Walk()
			assert.Equal(t, []int{0, 1, 0, 1, mz.NumDoors}, doors)
			require.Len(t, ids, 5)
			assert.Equal(t, ids[0], ids[3], "the walk returns to the start room")

			require.NoError(t, set.ChooseDoor(0))
			require.NoError(t, set.ChooseDoor(1))
			assert.Equal(t, tt.wantRemaining, set.ValidCount())
		})
	}
}

func TestMap_Dump(t *testing.T) {
	mz := corridor(t, 1.0)
	plan := mazemap.New(mazemap.MetaMap)
	require.NoError(t, plan.MapMaze(mz))

	var text bytes.Buffer
	require.NoError(t, plan.Dump(&text, mazemap.DumpText, nil))
	out := text.String()
	assert.Contains(t, out, "Maze meta map:\n")
	assert.Contains(t, out, "Room 0:\n\tMark 0\n\tDoors: 0\n\tGoals:\n")
	assert.Contains(t, out, "\t\tRoom 1 via door 0 with probability=1.00\n")
	assert.NotContains(t, out, "(open)")

	var annotated bytes.Buffer
	ann := &mazemap.Annotation{InstanceSeed: 3, Goal: 0, IDs: []int{0, 1}, Doors: []int{0, 1}}
	require.NoError(t, plan.Dump(&annotated, mazemap.DumpText, ann))
	out = annotated.String()
	assert.Contains(t, out, "Instance=3, Goal=0\n")
	assert.Contains(t, out, "with probability=1.00 (open)\n")
	assert.Contains(t, out, "\tSequence: 0 \n")

	var graph bytes.Buffer
	require.NoError(t, plan.Dump(&graph, mazemap.DumpGraph, ann))
	out = graph.String()
	assert.Contains(t, out, "digraph Maze {\n")
	assert.Contains(t, out, "\t\"1\" [label=\"room 1 mark 3\\ngoals: 0 \\nseq: 1 \",shape=box];\n")
	assert.Contains(t, out, "\t\"0\" -> \"1\" [label=\"door 0 (1.00/open) seq: 0 \",style=solid];\n")
	assert.Contains(t, out, "label = \"Maze meta map, instance=3, goal=0\";\n}\n")
}

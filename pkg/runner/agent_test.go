package runner

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/aretw0/metamaze/pkg/maze"
	"github.com/stretchr/testify/assert"
)

func TestMostNeeded(t *testing.T) {
	tests := []struct {
		name  string
		needs []float64
		want  int
	}{
		{"all equal picks first", []float64{1, 1, 1}, 0},
		{"skips satisfied", []float64{0, 1, 1}, 1},
		{"highest wins", []float64{0.5, 0.2, 0.9}, 2},
		{"all satisfied", []float64{0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mostNeeded(tt.needs))
		})
	}
}

func TestPickInstance(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	counts := make([]int, 3)
	for range 3000 {
		counts[pickInstance(rng, []float64{0.7, 0, 0.3})]++
	}
	assert.Zero(t, counts[1])
	assert.Greater(t, counts[0], counts[2])
	assert.Positive(t, counts[2])

	for range 50 {
		i := pickInstance(rng, []float64{0, 0})
		assert.True(t, i == 0 || i == 1)
	}
}

func TestRandomAgent(t *testing.T) {
	ctx := context.Background()
	agent := NewRandomAgent(rand.New(rand.NewPCG(3, 4)))
	room := maze.RoomView{Doors: []bool{false, true, true}}

	for range 100 {
		door, err := agent.ChooseDoor(ctx, room, 0)
		assert.NoError(t, err)
		assert.Contains(t, []int{1, 2}, door)
	}

	agent.Observe(ctx, 1, false)
	for range 20 {
		door, _ := agent.ChooseDoor(ctx, room, 0)
		assert.Equal(t, 2, door)
	}

	agent.Observe(ctx, 2, true)
	closed := maze.RoomView{Doors: []bool{false, false}}
	for range 20 {
		door, _ := agent.ChooseDoor(ctx, closed, 0)
		assert.True(t, door == 0 || door == 1)
	}
}

package maze_test

import (
	"testing"

	"github.com/aretw0/metamaze/pkg/maze"
	"github.com/stretchr/testify/assert"
)

func TestSignature_Draw(t *testing.T) {
	t.Run("deterministic per trial key", func(t *testing.T) {
		s := maze.NewSignature([]int{4, 1, 9}, 0.5)
		for key := int64(0); key < 50; key++ {
			assert.Equal(t, s.Draw(key), s.Draw(key))
		}
	})

	t.Run("certain and impossible links", func(t *testing.T) {
		always := maze.NewSignature([]int{1, 2}, 1.0)
		never := maze.NewSignature([]int{1, 2}, 0)
		for key := int64(0); key < 100; key++ {
			assert.True(t, always.Draw(key))
			assert.False(t, never.Draw(key))
		}
	})

	t.Run("mixes outcomes across keys", func(t *testing.T) {
		s := maze.NewSignature([]int{3, 7}, 0.5)
		hits := 0
		for key := int64(0); key < 400; key++ {
			if s.Draw(key) {
				hits++
			}
		}
		assert.Greater(t, hits, 100)
		assert.Less(t, hits, 300)
	})

	t.Run("probability is clamped", func(t *testing.T) {
		assert.Equal(t, 1.0, maze.NewSignature([]int{1}, 1.7).Probability)
		assert.Equal(t, 0.0, maze.NewSignature([]int{1}, -0.2).Probability)
	})
}

func TestSignature_Outcome(t *testing.T) {
	s := maze.NewSignature([]int{1, 2}, 1.0)
	assert.True(t, s.Outcome(3))

	s.Resolve(false)
	assert.True(t, s.Resolved)
	for key := int64(0); key < 10; key++ {
		assert.False(t, s.Outcome(key))
	}
}

func TestSignature_Match(t *testing.T) {
	a := maze.NewSignature([]int{5, 2, 8}, 0.3)
	b := maze.NewSignature([]int{8, 5, 2}, 0.9)
	c := maze.NewSignature([]int{5, 2}, 0.3)

	assert.True(t, a.Match(b))
	assert.False(t, a.Match(c))
	assert.False(t, a.Match(nil))
}

func TestSignature_Clone(t *testing.T) {
	a := maze.NewSignature([]int{1, 2}, 0.4)
	b := a.Clone()
	b.IDs[0] = 99
	b.Resolve(true)

	assert.Equal(t, []int{1, 2}, a.IDs)
	assert.False(t, a.Resolved)
}

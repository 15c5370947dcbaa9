package tests

import (
	"context"
	"testing"

	"github.com/aretw0/metamaze/pkg/domain"
	"github.com/aretw0/metamaze/pkg/ports"
	"github.com/aretw0/metamaze/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MazeLibraryContractTest is a reusable test suite that verifies if an adapter complies with ports.MazeLibrary.
// setupData holds the configs the library was seeded with, keyed by name.
func MazeLibraryContractTest(t *testing.T, library ports.MazeLibrary, setupData map[string]*schema.Config) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get_Success", func(t *testing.T) {
		for name, want := range setupData {
			got, err := library.Get(ctx, name)
			require.NoError(t, err, "get %s", name)
			assert.Equal(t, name, got.Name)
			assert.Equal(t, want.Rooms, got.Rooms)
			assert.Equal(t, want.Doors, got.Doors)
			assert.Equal(t, want.Goals, got.Goals)
			assert.Equal(t, want.ContextSizes, got.ContextSizes)
			assert.Equal(t, want.MetaSeed, got.MetaSeed)
			assert.Equal(t, want.InstanceSeeds, got.InstanceSeeds)
		}
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := library.Get(ctx, "non-existent-maze")
		assert.ErrorIs(t, err, domain.ErrMazeNotFound)
	})

	t.Run("Get_ReturnsCopy", func(t *testing.T) {
		for name := range setupData {
			first, err := library.Get(ctx, name)
			require.NoError(t, err)
			first.Rooms = -99

			second, err := library.Get(ctx, name)
			require.NoError(t, err)
			assert.NotEqual(t, -99, second.Rooms)
			return
		}
	})

	t.Run("List", func(t *testing.T) {
		names, err := library.List(ctx)
		require.NoError(t, err)
		assert.Len(t, names, len(setupData))
		assert.IsNonDecreasing(t, names)
		for name := range setupData {
			assert.Contains(t, names, name)
		}
	})
}

package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/metamaze/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, "corridor", 1)
		state.Record(domain.Move{Door: 2, Moved: true, RoomID: 4})
		state.Record(domain.Move{Door: 0, Moved: false, RoomID: 4})
		state.GoalsReached = []int{1}

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "corridor", loaded.Maze)
		assert.Equal(t, 1, loaded.Goal)
		assert.Equal(t, state.Moves, loaded.Moves)
		assert.Equal(t, []int{1}, loaded.GoalsReached)
		assert.True(t, state.UpdatedAt.Equal(loaded.UpdatedAt), "timestamps survive persistence")
	})

	t.Run("Saved State Is Detached", func(t *testing.T) {
		state := domain.NewState(sessionID, "corridor", 0)
		require.NoError(t, store.Save(ctx, sessionID, state))

		state.Record(domain.Move{Door: 1})

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Moves, "mutating after Save must not leak into the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, "corridor", 0))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, "corridor", 0))
		_ = store.Save(ctx, id2, domain.NewState(id2, "corridor", 0))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

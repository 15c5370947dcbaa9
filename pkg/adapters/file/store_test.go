package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/metamaze/pkg/adapters/file"
	"github.com/aretw0/metamaze/pkg/domain"
	"github.com/aretw0/metamaze/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.StateStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "sessions")
	store := file.New(dir)
	ctx := context.Background()

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids, "missing directory lists as empty")

	require.NoError(t, store.Save(ctx, "abc", domain.NewState("abc", "corridor", 0)))
	_, err = os.Stat(filepath.Join(dir, "abc.json"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, store.Delete(ctx, "abc"))
	require.NoError(t, store.Delete(ctx, "abc"), "deleting twice is fine")
}

func TestFileStore_RejectsEscapingIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "..", "../outside", `a\b`} {
		err := store.Save(ctx, id, domain.NewState(id, "corridor", 0))
		assert.ErrorIs(t, err, file.ErrInvalidSessionID, "id %q", id)
	}
}

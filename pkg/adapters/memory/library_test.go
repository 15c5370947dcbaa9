package memory_test

import (
	"testing"

	"github.com/aretw0/metamaze/pkg/adapters/memory"
	contract "github.com/aretw0/metamaze/pkg/ports/tests"
	"github.com/aretw0/metamaze/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLibrary_Contract(t *testing.T) {
	small := schema.Default()
	small.Name = "small"

	set := schema.Default()
	set.Name = "set"
	set.InstanceSeeds = []int64{3, 5, 8}

	library, err := memory.NewLibrary(small, set)
	require.NoError(t, err)

	contract.MazeLibraryContractTest(t, library, map[string]*schema.Config{
		"small": small,
		"set":   set,
	})
}

func TestInMemoryLibrary_RejectsBadConfigs(t *testing.T) {
	unnamed := schema.Default()
	unnamed.Name = ""
	_, err := memory.NewLibrary(unnamed)
	assert.Error(t, err)

	invalid := schema.Default()
	invalid.Doors = 0
	_, err = memory.NewLibrary(invalid)
	assert.ErrorIs(t, err, schema.ErrInvalidConfig)
}

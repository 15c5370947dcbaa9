package registry

import (
	"math/rand/v2"
	"testing"

	"github.com/aretw0/metamaze/pkg/adapters/process"
	"github.com/aretw0/metamaze/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{"planner", "random"}, r.Names())

	f, err := r.Lookup("random")
	require.NoError(t, err)
	agent := f(nil, rand.New(rand.NewPCG(1, 2)))
	assert.IsType(t, &runner.RandomAgent{}, agent)

	_, err = r.Lookup("oracle")
	assert.ErrorIs(t, err, ErrAgentNotFound)

	r.RegisterProcesses(map[string]process.AgentConfig{
		"script": {Name: "script", Command: "sh", Args: []string{"-c", "echo 0"}},
	})
	assert.Equal(t, []string{"planner", "random", "script"}, r.Names())

	f, err = r.Lookup("script")
	require.NoError(t, err)
	assert.IsType(t, &process.Agent{}, f(nil, nil))
}

package schema

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/aretw0/metamaze/pkg/maze"
	"github.com/aretw0/metamaze/pkg/mazemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Config {
	return &Config{
		Name:             "sample",
		Rooms:            6,
		Doors:            3,
		Goals:            2,
		ContextSizes:     []int{8, 3},
		EffectDelayScale: 2,
		MetaSeed:         42,
		MapType:          "meta",
	}
}

func dumpMaze(t *testing.T, mz *maze.Maze) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, mz.Dump(&buf))
	return buf.String()
}

func TestConfig_RoundTripRebuildsSameMaze(t *testing.T) {
	for _, name := range []string{"maze.yaml", "maze.json"} {
		t.Run(name, func(t *testing.T) {
			cfg := sample()
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, cfg))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)

			a, err := cfg.BuildMaze()
			require.NoError(t, err)
			b, err := loaded.BuildMaze()
			require.NoError(t, err)
			assert.Equal(t, dumpMaze(t, a), dumpMaze(t, b))
		})
	}
}

func TestLoad_NameDefaultsToFileName(t *testing.T) {
	cfg := sample()
	cfg.Name = ""
	path := filepath.Join(t.TempDir(), "corridor.yml")
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "corridor", loaded.Name)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "maze.toml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("rooms: 2\ndoors: 0\neffect_delay_scale: 1\n"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("rooms: 2\ndoors: 2\nlabyrinth: true\n"), 0o644))
	_, err = Load(unknown)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{"valid", func(*Config) {}, ""},
		{"no doors", func(c *Config) { c.Doors = 0 }, "Config.Doors"},
		{"negative rooms", func(c *Config) { c.Rooms = -1 }, "Config.Rooms"},
		{"zero delay scale", func(c *Config) { c.EffectDelayScale = 0 }, "Config.EffectDelayScale"},
		{"negative context size", func(c *Config) { c.ContextSizes = []int{3, -1} }, "Config.ContextSizes[1]"},
		{"bad map type", func(c *Config) { c.MapType = "atlas" }, "Config.MapType"},
		{"goals without rooms", func(c *Config) { c.Rooms = 0 }, "goals"},
		{"frequency mismatch", func(c *Config) {
			c.InstanceSeeds = []int64{1, 2}
			c.InstanceFrequencies = []float64{1}
		}, "instance_frequencies"},
		{"index out of range", func(c *Config) {
			c.InstanceSeeds = []int64{1, 2}
			c.InstanceIndex = 2
		}, "instance_index"},
		{"index without seeds", func(c *Config) { c.InstanceIndex = 1 }, "instance_index"},
		{"set needs meta map", func(c *Config) {
			c.InstanceSeeds = []int64{1, 2}
			c.MapType = "room"
		}, "map_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sample()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			var keys []string
			for _, e := range ValidationErrors(err) {
				var ve *ValidationError
				require.ErrorAs(t, e, &ve)
				keys = append(keys, ve.Key)
			}
			assert.Contains(t, keys, tt.wantKey)
		})
	}
}

func TestAggregateError_Message(t *testing.T) {
	err := &AggregateError{Errors: []error{
		&ValidationError{Key: "a", Reason: "bad"},
		&ValidationError{Key: "b", Reason: "worse", Value: 3},
	}}
	assert.Contains(t, err.Error(), "2 validation errors")
	assert.Contains(t, err.Error(), `field "b": worse (got 3)`)
	assert.Nil(t, ValidationErrors(errors.New("plain")))
}

func TestDecode(t *testing.T) {
	input := map[string]any{
		"rooms":          float64(4),
		"doors":          "2",
		"context_sizes":  []any{float64(5)},
		"meta_seed":      float64(7),
		"instance_seeds": []any{1, 2, 3},
		"map_type":       "meta",
	}

	cfg, err := Decode(input, Default())
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Rooms)
	assert.Equal(t, 2, cfg.Doors)
	assert.Equal(t, 1, cfg.Goals, "unset fields keep the base value")
	assert.Equal(t, []int{5}, cfg.ContextSizes)
	assert.Equal(t, []int64{1, 2, 3}, cfg.InstanceSeeds)
	assert.Equal(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, cfg.Frequencies())

	_, err = Decode(map[string]any{"doors": 0}, Default())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Decode(map[string]any{"corridors": 3}, Default())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_InstanceSeedAndType(t *testing.T) {
	cfg := sample()
	assert.Equal(t, int64(42), cfg.InstanceSeed())

	cfg.InstanceSeeds = []int64{10, 20}
	cfg.InstanceIndex = 1
	assert.Equal(t, int64(20), cfg.InstanceSeed())

	cfg.MapType = ""
	typ, err := cfg.Type()
	require.NoError(t, err)
	assert.Equal(t, mazemap.MetaMap, typ)
}

func TestConfig_BuildMap(t *testing.T) {
	cfg := sample()
	mz, err := cfg.BuildMaze()
	require.NoError(t, err)
	wantMark := maze.MarkStart
	if slices.Contains(mz.Rooms[0].Goals, true) {
		wantMark = maze.MarkGoal
	}
	assert.Equal(t, wantMark, mz.Rooms[0].Mark)

	m, err := cfg.BuildMap(mz, nil)
	require.NoError(t, err)
	assert.False(t, m.IsSet())
	assert.NotEmpty(t, m.Descriptors)

	cfg.InstanceSeeds = []int64{1, 2, 3}
	cfg.InstanceIndex = 1
	mz, err = cfg.BuildMaze()
	require.NoError(t, err)
	set, err := cfg.BuildMap(mz, nil)
	require.NoError(t, err)
	assert.True(t, set.IsSet())
	assert.Len(t, set.Instances, 3)
	assert.Equal(t, 1, set.InstanceIndex)
}

func TestConfig_BuildMazeRejectsInvalid(t *testing.T) {
	cfg := sample()
	cfg.Doors = 0
	_, err := cfg.BuildMaze()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

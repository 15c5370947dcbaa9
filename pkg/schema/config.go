package schema

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/metamaze/pkg/maze"
	"github.com/aretw0/metamaze/pkg/mazemap"
)

// Config is the serializable description of a maze and its planner.
type Config struct {
	Name        string `yaml:"name" json:"name" mapstructure:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty" mapstructure:"description"`

	Rooms int `yaml:"rooms" json:"rooms" mapstructure:"rooms" validate:"gte=0"`
	Doors int `yaml:"doors" json:"doors" mapstructure:"doors" validate:"gte=1"`
	Goals int `yaml:"goals" json:"goals" mapstructure:"goals" validate:"gte=0"`

	// ContextSizes holds the number of contexts per level; level 0 links rooms.
	ContextSizes     []int `yaml:"context_sizes" json:"context_sizes" mapstructure:"context_sizes" validate:"max=50,dive,gte=0"`
	EffectDelayScale int   `yaml:"effect_delay_scale" json:"effect_delay_scale" mapstructure:"effect_delay_scale" validate:"gte=1"`
	TwoWay           bool  `yaml:"two_way,omitempty" json:"two_way,omitempty" mapstructure:"two_way"`

	MetaSeed            int64     `yaml:"meta_seed" json:"meta_seed" mapstructure:"meta_seed"`
	InstanceSeeds       []int64   `yaml:"instance_seeds,omitempty" json:"instance_seeds,omitempty" mapstructure:"instance_seeds"`
	InstanceFrequencies []float64 `yaml:"instance_frequencies,omitempty" json:"instance_frequencies,omitempty" mapstructure:"instance_frequencies" validate:"dive,gte=0"`
	InstanceIndex       int       `yaml:"instance_index,omitempty" json:"instance_index,omitempty" mapstructure:"instance_index" validate:"gte=0"`

	ContextMaze bool   `yaml:"context_maze,omitempty" json:"context_maze,omitempty" mapstructure:"context_maze"`
	MarkPath    bool   `yaml:"mark_path,omitempty" json:"mark_path,omitempty" mapstructure:"mark_path"`
	MapType     string `yaml:"map_type,omitempty" json:"map_type,omitempty" mapstructure:"map_type" validate:"omitempty,oneof=room meta instance"`
}

// Default returns a small single-instance maze with one goal.
func Default() *Config {
	return &Config{
		Name:             "default",
		Rooms:            10,
		Doors:            3,
		Goals:            1,
		ContextSizes:     []int{15},
		EffectDelayScale: 1,
		MetaSeed:         1,
		MapType:          mazemap.MetaMap.String(),
	}
}

// InstanceSeed returns the seed of the real instance.
func (c *Config) InstanceSeed() int64 {
	if len(c.InstanceSeeds) == 0 {
		return c.MetaSeed
	}
	return c.InstanceSeeds[c.InstanceIndex]
}

// Frequencies returns the instance frequencies, uniform when none are set.
func (c *Config) Frequencies() []float64 {
	if len(c.InstanceFrequencies) > 0 {
		return slices.Clone(c.InstanceFrequencies)
	}
	n := max(len(c.InstanceSeeds), 1)
	freqs := make([]float64, n)
	for i := range freqs {
		freqs[i] = 1 / float64(n)
	}
	return freqs
}

// Type parses MapType, defaulting to a meta map.
func (c *Config) Type() (mazemap.Type, error) {
	if c.MapType == "" {
		return mazemap.MetaMap, nil
	}
	return mazemap.ParseType(c.MapType)
}

// Params converts the config into generator parameters for the given instance seed.
func (c *Config) Params(instanceSeed int64) maze.Params {
	return maze.Params{
		NumRooms:         c.Rooms,
		NumDoors:         c.Doors,
		NumGoals:         c.Goals,
		ContextSizes:     slices.Clone(c.ContextSizes),
		EffectDelayScale: c.EffectDelayScale,
		MetaSeed:         c.MetaSeed,
		InstanceSeed:     instanceSeed,
		TwoWay:           c.TwoWay,
	}
}

// BuildMaze validates the config and generates the real instance with its marks.
func (c *Config) BuildMaze() (*maze.Maze, error) {
	return c.BuildInstance(c.InstanceSeed())
}

// BuildInstance generates the maze resolved by an arbitrary instance seed.
func (c *Config) BuildInstance(seed int64) (*maze.Maze, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	mz, err := maze.Generate(c.Params(seed))
	if err != nil {
		return nil, fmt.Errorf("generate maze %q: %w", c.Name, err)
	}
	mz.MarkRooms(maze.MarkOptions{ContextMaze: c.ContextMaze, MarkPath: c.MarkPath})
	return mz, nil
}

// BuildMap maps mz with the configured planner. Configs with more than one
// instance seed produce a map set.
func (c *Config) BuildMap(mz *maze.Maze, logger *slog.Logger) (*mazemap.Map, error) {
	t, err := c.Type()
	if err != nil {
		return nil, err
	}
	var opts []mazemap.Option
	if logger != nil {
		opts = append(opts, mazemap.WithLogger(logger))
	}
	m := mazemap.New(t, opts...)
	if len(c.InstanceSeeds) > 1 {
		err = m.MapMazeSet(mz, c.InstanceIndex, c.InstanceSeeds, c.Frequencies())
	} else {
		err = m.MapMaze(mz)
	}
	if err != nil {
		return nil, fmt.Errorf("map maze %q: %w", c.Name, err)
	}
	return m, nil
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	cp := *c
	cp.ContextSizes = slices.Clone(c.ContextSizes)
	cp.InstanceSeeds = slices.Clone(c.InstanceSeeds)
	cp.InstanceFrequencies = slices.Clone(c.InstanceFrequencies)
	return &cp
}

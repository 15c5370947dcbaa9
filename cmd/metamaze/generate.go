package main

import (
	"fmt"

	"github.com/aretw0/metamaze/pkg/schema"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Write a new maze config",
	Long: `Builds a maze config from flags, checks that it generates, and writes it to
the given file (YAML or JSON by extension) or to stdout as YAML.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFromFlags(cmd)
		if err != nil {
			return err
		}
		mz, err := cfg.BuildMaze()
		if err != nil {
			return err
		}
		if _, err := cfg.BuildMap(mz, nil); err != nil {
			return err
		}

		if len(args) == 0 {
			data, err := schema.Marshal(cfg, schema.FormatYAML)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := schema.Save(args[0], cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d rooms, %d goals)\n", args[0], mz.NumRooms(), cfg.Goals)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	def := schema.Default()
	f := generateCmd.Flags()
	f.String("name", "", "Maze name (defaults to the file name)")
	f.Int("rooms", def.Rooms, "Number of rooms")
	f.Int("doors", def.Doors, "Doors per room")
	f.Int("goals", def.Goals, "Number of goals")
	f.IntSlice("contexts", def.ContextSizes, "Context count per level; level 0 links rooms")
	f.Int("delay-scale", def.EffectDelayScale, "Effect delay scale between levels")
	f.Bool("two-way", false, "Make every link walkable both ways")
	f.Int64("seed", def.MetaSeed, "Meta seed")
	f.Int64Slice("instances", nil, "Instance seeds; more than one plans over a maze set")
	f.Float64Slice("frequencies", nil, "Instance frequencies (uniform when omitted)")
	f.String("map-type", def.MapType, "Planner map type (room, meta, instance)")
	f.Bool("context-maze", false, "Mark rooms with their level-1 context")
	f.Bool("mark-path", false, "Mark the rooms on shortest paths to goals")
}

func configFromFlags(cmd *cobra.Command) (*schema.Config, error) {
	f := cmd.Flags()
	cfg := &schema.Config{}
	cfg.Name, _ = f.GetString("name")
	cfg.Rooms, _ = f.GetInt("rooms")
	cfg.Doors, _ = f.GetInt("doors")
	cfg.Goals, _ = f.GetInt("goals")
	cfg.ContextSizes, _ = f.GetIntSlice("contexts")
	cfg.EffectDelayScale, _ = f.GetInt("delay-scale")
	cfg.TwoWay, _ = f.GetBool("two-way")
	cfg.MetaSeed, _ = f.GetInt64("seed")
	cfg.InstanceSeeds, _ = f.GetInt64Slice("instances")
	cfg.InstanceFrequencies, _ = f.GetFloat64Slice("frequencies")
	cfg.MapType, _ = f.GetString("map-type")
	cfg.ContextMaze, _ = f.GetBool("context-maze")
	cfg.MarkPath, _ = f.GetBool("mark-path")

	return cfg, cfg.Validate()
}

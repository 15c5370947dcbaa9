package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/metamaze"
	"github.com/aretw0/metamaze/internal/presentation/graph"
	"github.com/aretw0/metamaze/internal/presentation/tui"
	"github.com/aretw0/metamaze/pkg/mazemap"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [maze]",
	Short: "Print the planner's map of a maze",
	Long:  `Builds the named maze, maps it with its configured planner and prints the map as text or Graphviz dot.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		pretty, _ := cmd.Flags().GetBool("pretty")
		annotate, _ := cmd.Flags().GetBool("annotate")

		format, err := mazemap.ParseDumpFormat(formatName)
		if err != nil {
			return err
		}
		eng, err := newEngine(cmd, args)
		if err != nil {
			return err
		}

		var sb strings.Builder
		if err := eng.Dump(&sb, format, annotate); err != nil {
			return err
		}
		out := sb.String()
		if pretty {
			rendered, err := tui.NewRenderer()(tui.CodeBlock(formatName, out))
			if err == nil {
				out = rendered
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph [maze]",
	Short: "Export the map as a Mermaid diagram",
	Long:  `Builds the named maze and outputs a Mermaid flowchart of the real instance as the planner sees it.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cmd, args)
		if err != nil {
			return err
		}
		goal, _ := cmd.Flags().GetInt("goal")
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(eng.Map(), graph.OverlayFrom(eng.Annotation(goal))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(graphCmd)

	dumpCmd.Flags().String("format", "text", "Output format: text or dot")
	dumpCmd.Flags().Bool("pretty", false, "Render through the terminal markdown renderer")
	dumpCmd.Flags().Bool("annotate", false, "Include the real instance's door outcomes")

	graphCmd.Flags().Int("goal", 0, "Goal to highlight")
}

func newEngine(cmd *cobra.Command, args []string) (*metamaze.Engine, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	cfg, err := loadMaze(cmd.Context(), mazeArg(args))
	if err != nil {
		return nil, err
	}
	return metamaze.New(cfg, metamaze.WithLogger(logger))
}

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/metamaze/internal/cli"
	"github.com/aretw0/metamaze/pkg/adapters/process"
	"github.com/aretw0/metamaze/pkg/registry"
	"github.com/aretw0/metamaze/pkg/runner"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [maze]",
	Short: "Run navigation trials on a maze",
	Long: `Places an agent in fresh copies of the maze and lets it walk towards the goals,
comparing each choice with the planner's advice. Instances are drawn by frequency.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		cfg, err := loadMaze(cmd.Context(), mazeArg(args))
		if err != nil {
			return err
		}

		trials, _ := cmd.Flags().GetInt("trials")
		maxSteps, _ := cmd.Flags().GetInt("max-steps")
		seed, _ := cmd.Flags().GetUint64("seed")
		agentName, _ := cmd.Flags().GetString("agent")
		stop, _ := cmd.Flags().GetBool("stop-on-mistake")
		asJSON, _ := cmd.Flags().GetBool("json")

		agents := registry.Default()
		if agentsFile, _ := cmd.Flags().GetString("agents"); agentsFile != "" {
			configs, err := process.LoadAgents(agentsFile)
			if err != nil {
				return err
			}
			agents.RegisterProcesses(configs, process.WithBaseDir(filepath.Dir(agentsFile)))
		}
		agent, err := agents.Lookup(agentName)
		if err != nil {
			return fmt.Errorf("%w (available: %s)", err, strings.Join(agents.Names(), ", "))
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		r := runner.New(cfg,
			runner.WithTrials(trials),
			runner.WithMaxSteps(maxSteps),
			runner.WithSeed(seed),
			runner.WithAgent(agent),
			runner.WithStopOnMistake(stop),
			runner.WithHooks(cli.DebugHooks(logger)),
			runner.WithLogger(logger),
		)
		report, err := r.Run(ctx)
		if err != nil {
			return cli.HandleExecutionError(err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TRIAL\tINSTANCE\tSTEPS\tGOALS\tAGREED")
		for _, t := range report.Trials {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%v\t%d/%d\n", t.Trial, t.InstanceSeed, t.Steps, t.Goals, t.Agreed, t.Advised)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d/%d trials found a goal, %d goals in total, agreement %.1f%%\n",
			report.Successes(), len(report.Trials), report.GoalsFound(), 100*report.Agreement())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.IntP("trials", "n", 1, "Number of trials")
	f.Int("max-steps", runner.DefaultMaxSteps, "Step limit per trial")
	f.Uint64("seed", runner.DefaultSeed, "Seed for instance draws and random agents")
	f.String("agent", "planner", "Agent name: planner, random or one from --agents")
	f.String("agents", "", "YAML or JSON file declaring external process agents")
	f.Bool("stop-on-mistake", false, "End a trial when the agent ignores the planner")
	f.Bool("json", false, "Print the report as JSON")
}

package main

import (
	"os"

	"github.com/aretw0/metamaze/internal/cli"
	"github.com/aretw0/metamaze/internal/presentation/tui"
	"github.com/aretw0/metamaze/pkg/session"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [maze]",
	Short: "Walk a maze interactively",
	Long: `Starts (or resumes with --session) a session and reads door choices from stdin.
Sessions are persisted in the configured store, so a session can be resumed later
or continued through the HTTP and MCP servers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		backend, err := openBackend(logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		goal, _ := cmd.Flags().GetInt("goal")
		sessionID, _ := cmd.Flags().GetString("session")
		pretty := cli.IsInteractive()
		if cmd.Flags().Changed("pretty") {
			pretty, _ = cmd.Flags().GetBool("pretty")
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if pretty {
			tui.PrintBanner(os.Stdout)
		}
		host := backend.Host(logger, session.WithHooks(cli.DebugHooks(logger)))
		err = cli.Play(ctx, host, os.Stdin, os.Stdout, cli.PlayOptions{
			Maze:      mazeArg(args),
			Goal:      goal,
			SessionID: sessionID,
			Pretty:    pretty,
		})
		return cli.HandleExecutionError(err)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Int("goal", 0, "Goal to chase")
	playCmd.Flags().String("session", "", "Resume this session")
	playCmd.Flags().Bool("pretty", false, "Render rooms as markdown (default when interactive)")
}

package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/metamaze/internal/cli"
	"github.com/aretw0/metamaze/pkg/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every maze in the library",
	Long:  `Loads each maze of the library, validates its config and generates it, reporting every failure.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := cli.OpenLibrary(viper.GetString("library"))
		if err != nil {
			return err
		}
		names, err := lib.List(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		var errs []error
		for _, name := range names {
			cfg, err := lib.Get(cmd.Context(), name)
			if err == nil {
				_, err = cfg.BuildMaze()
			}
			if err != nil {
				fmt.Fprintf(out, "✗ %s\n", name)
				for _, v := range schema.ValidationErrors(err) {
					fmt.Fprintf(out, "    %v\n", v)
				}
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			fmt.Fprintf(out, "✓ %s\n", name)
		}
		if len(errs) > 0 {
			return errors.Join(errs...)
		}
		fmt.Fprintf(out, "%d mazes are valid\n", len(names))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

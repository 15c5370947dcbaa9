package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/metamaze"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of metamaze",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "metamaze version %s\n", strings.TrimSpace(metamaze.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

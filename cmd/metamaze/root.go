package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/metamaze/internal/cli"
	"github.com/aretw0/metamaze/pkg/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "metamaze",
	Short: "Metamaze explores random mazes with a probabilistic planner",
	Long: `Metamaze generates mazes whose doors open with unknown probabilities and
plans routes to their goals from what an agent has seen so far.

Mazes come from a library (a directory of documents, a single config file or
the built-in default). Sessions can live in memory, on disk, in Badger or in Redis.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./.metamaze.yaml or $HOME/.metamaze.yaml)")
	flags.String("library", "", "Maze library: a directory of maze documents or a single config file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("redis", "", "Redis URL for sessions (redis://host:port/db)")
	flags.String("badger", "", "Badger directory for sessions, or :memory:")
	flags.String("sessions-dir", "", "Directory storing one JSON file per session")
	flags.String("encryption-key", "", "Hex AES-256 key sealing stored sessions")
	flags.StringSlice("encryption-fallback-keys", nil, "Older hex keys still accepted when loading sessions")

	for _, name := range []string{"library", "log-level", "log-format", "debug", "redis", "badger", "sessions-dir", "encryption-key", "encryption-fallback-keys"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".metamaze")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("METAMAZE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Failed to read config %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

func newLogger() (*slog.Logger, error) {
	return cli.CreateLogger(viper.GetBool("debug"), viper.GetString("log-level"), viper.GetString("log-format"))
}

func openBackend(logger *slog.Logger) (*cli.Backend, error) {
	return cli.OpenBackend(cli.BackendOptions{
		RedisURL:      viper.GetString("redis"),
		BadgerPath:    viper.GetString("badger"),
		SessionsDir:   viper.GetString("sessions-dir"),
		EncryptionKey: viper.GetString("encryption-key"),
		FallbackKeys:  viper.GetStringSlice("encryption-fallback-keys"),
		Library:       viper.GetString("library"),
		Logger:        logger,
	})
}

// mazeArg returns the maze named by the first argument, "default" when absent.
func mazeArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "default"
}

func loadMaze(ctx context.Context, name string) (*schema.Config, error) {
	lib, err := cli.OpenLibrary(viper.GetString("library"))
	if err != nil {
		return nil, err
	}
	return lib.Get(ctx, name)
}

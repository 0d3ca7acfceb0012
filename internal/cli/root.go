// Package cli is the terminal client: it plays scenarios against a local
// SQLite file without a server.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/vytor/upsimu/internal/dialogue"
	"github.com/vytor/upsimu/internal/logger"
)

type rootOptions struct {
	dbPath      string
	username    string
	scenarioDir string
	logLevel    string
	maxTurns    int
	seed        int64
}

func Execute() error {
	return NewRoot().Execute()
}

func NewRoot() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "upsimu",
		Short:        "Practice customer conversations in the terminal",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetDefault(logger.New(
				logger.WithLevel(logger.ParseLevel(opts.logLevel)),
				logger.WithOutput(cmd.ErrOrStderr()),
			))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.dbPath, "db", envOr("DB_PATH", "file:upsimu.db"), "SQLite database path")
	flags.StringVar(&opts.username, "profile", envOr("UPSIMU_PROFILE", "player"), "Profile to play as")
	flags.StringVar(&opts.scenarioDir, "scenarios", os.Getenv("SCENARIO_DIR"), "Directory with extra scenario YAML files")
	flags.StringVar(&opts.logLevel, "log-level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")
	flags.IntVar(&opts.maxTurns, "max-turns", dialogue.DefaultMaxTurns, "Turns before an attempt is scored anyway")
	flags.Int64Var(&opts.seed, "seed", 0, "Phrase variation seed (0 = random)")

	root.AddCommand(
		scenariosCmd(opts),
		playCmd(opts),
		progressCmd(opts),
		resetCmd(opts),
	)
	return root
}

// withApp opens the local service graph for the duration of fn.
func withApp(ctx context.Context, opts *rootOptions, fn func(*app) error) error {
	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

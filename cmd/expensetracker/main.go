package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
)

var version = "dev"

// app carries what PersistentPreRunE prepared for the subcommands.
type app struct {
	cfg    *config.Config
	logger *applog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	v := viper.New()
	config.SetDefaults(v)

	root := &cobra.Command{
		Use:           "expensetracker",
		Short:         "Personal income and expense tracker",
		Long:          "expensetracker records income and expense transactions in SQLite and serves a dashboard and JSON API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromViper(v)
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cli.SetupLogger(cfg)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("db", "", "SQLite database path (env SQLITE_DB_PATH)")
	flags.String("log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")
	flags.String("log-format", "", "log format: text, json (env LOG_FORMAT)")
	_ = v.BindPFlag(config.KeySQLiteDBPath, flags.Lookup("db"))
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))

	root.AddCommand(
		newServeCmd(a, v),
		newMigrateCmd(a),
		newWorkerCmd(a),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// Skip config validation for version.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "expensetracker", version)
		},
	}
}

func main() {
	cli.LoadEnvFile()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

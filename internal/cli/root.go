package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eleven-am/tasklist/internal/logger"
	"github.com/eleven-am/tasklist/internal/store"
	"github.com/eleven-am/tasklist/pkg/version"
)

// Global configuration variables
var (
	configFile  string
	appConfig   *Config
	databaseURL string
	debug       bool
	verbose     bool
)

// openStore connects to the configured database. Tests replace it.
var openStore = func(ctx context.Context) (*store.Store, error) {
	dsn, err := resolveDatabaseURL()
	if err != nil {
		return nil, err
	}

	dbConfig := store.NewDBConfig(dsn)
	if appConfig != nil {
		dbConfig.MaxOpenConns = appConfig.Database.MaxConnections
		dbConfig.MaxIdleConns = appConfig.Database.MaxIdleConnections
	}

	db, err := store.Open(ctx, dbConfig)
	if err != nil {
		return nil, err
	}

	return store.New(db, store.WithHashParams(appConfig.HashParams()))
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tasklist",
		Short: "tasklist - users, todos and categories on Postgres",
		Long: `tasklist manages a personal task list stored in PostgreSQL.

Users own todos; todos are tagged with per-user categories.
Run "tasklist migrate" once to create the schema.`,
		Version:      version.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			appConfig, err = LoadConfig(configFile)
			if err != nil {
				if verbose {
					cmd.Printf("Warning: Failed to load config file: %v\n", err)
				}
			}

			configureLogging()

			if appConfig != nil && databaseURL == "" && appConfig.Database.URL != "" {
				databaseURL = appConfig.Database.URL
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: tasklist.yaml)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "url", "", "database connection URL")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(todoCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// configureLogging applies the configured level, then lets --debug and --verbose raise it
func configureLogging() {
	level := logger.LevelWarn
	if appConfig != nil {
		level = logger.ParseLevel(appConfig.Log.Level)
	}
	if debug && level > logger.LevelInfo {
		level = logger.LevelInfo
	}
	if verbose {
		level = logger.LevelDebug
	}
	logger.SetLevel(level)
}

// resolveDatabaseURL picks --url, then TASKLIST_DATABASE_URL, then the config file
func resolveDatabaseURL() (string, error) {
	if databaseURL != "" {
		return databaseURL, nil
	}
	if url := os.Getenv(databaseURLEnv); url != "" {
		return url, nil
	}
	if appConfig != nil && appConfig.Database.URL != "" {
		return appConfig.Database.URL, nil
	}
	return "", fmt.Errorf("database connection required: use --url, %s, or specify it in tasklist.yaml", databaseURLEnv)
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eleven-am/tasklist/internal/migrator"
	"github.com/eleven-am/tasklist/internal/store"
)

var (
	// Database connection flags
	dbHost     string
	dbPort     string
	dbUser     string
	dbPassword string
	dbName     string
	dbSSLMode  string

	// Migration flags
	dryRun              bool
	createDBIfNotExists bool
	allowDestructive    bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Compare the live database with the tasklist schema and apply the difference.
Changes that drop tables, columns or indexes are skipped unless --allow-destructive is set.`,
	RunE: runMigrate,
}

func init() {
	// Database flags - these are used when no URL is configured
	migrateCmd.Flags().StringVar(&dbHost, "host", "localhost", "Database host")
	migrateCmd.Flags().StringVar(&dbPort, "port", "5432", "Database port")
	migrateCmd.Flags().StringVar(&dbUser, "user", "", "Database user")
	migrateCmd.Flags().StringVar(&dbPassword, "password", "", "Database password")
	migrateCmd.Flags().StringVar(&dbName, "dbname", "", "Database name")
	migrateCmd.Flags().StringVar(&dbSSLMode, "sslmode", "disable", "SSL mode (disable, require, verify-ca, verify-full)")

	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the planned SQL without applying it")
	migrateCmd.Flags().BoolVar(&createDBIfNotExists, "create-if-not-exists", false, "Create the database if it does not exist")
	migrateCmd.Flags().BoolVar(&allowDestructive, "allow-destructive", false, "Allow potentially destructive operations")
}

// migrationDSN prefers the configured URL and falls back to the individual connection flags
func migrationDSN() (string, error) {
	if dsn, err := resolveDatabaseURL(); err == nil {
		return dsn, nil
	}
	if dbUser != "" && dbName != "" {
		return migrator.GetDatabaseURL(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode), nil
	}
	return "", fmt.Errorf("database connection required: use --url, individual connection flags, or specify it in tasklist.yaml")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dsn, err := migrationDSN()
	if err != nil {
		return err
	}

	if createDBIfNotExists {
		if err := migrator.EnsureDatabaseExists(ctx, dsn); err != nil {
			return err
		}
	}

	dbConfig := store.NewDBConfig(dsn)
	dbConfig.MaxOpenConns = 1
	db, err := store.Open(ctx, dbConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	plan, err := migrator.New(db.DB).Migrate(ctx, migrator.Options{
		DryRun:           dryRun,
		AllowDestructive: allowDestructive,
	})
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	printPlan(cmd, plan)
	return nil
}

func printPlan(cmd *cobra.Command, plan *migrator.Plan) {
	out := cmd.OutOrStdout()

	for _, skipped := range plan.Skipped {
		fmt.Fprintf(out, "-- skipped (destructive): %s\n", skipped)
	}

	if len(plan.Statements) == 0 {
		fmt.Fprintln(out, "Schema is up to date")
		return
	}

	for _, stmt := range plan.Statements {
		fmt.Fprintf(out, "%s;\n", stmt)
	}

	if plan.Applied {
		fmt.Fprintf(out, "Applied %d change(s)\n", len(plan.Changes))
	} else {
		fmt.Fprintln(out, "Migration planned (dry run)")
	}
}

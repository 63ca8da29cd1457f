package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq"

	"github.com/eleven-am/tasklist/internal/logger"
)

// EnsureDatabaseExists creates the database named in dsn if it doesn't exist
func EnsureDatabaseExists(ctx context.Context, dsn string) error {
	dbName, adminDSN, err := parseDSNForDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse DSN: %w", err)
	}

	db, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to admin database: %w", err)
	}
	defer db.Close()

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := db.QueryRowContext(ctx, query, dbName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}

	if exists {
		return nil
	}

	log := logger.Migration().WithField("database", dbName)
	log.Info("database does not exist, creating")

	createSQL := fmt.Sprintf("CREATE DATABASE %s", quoteIdentifier(dbName))
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create database '%s': %w", dbName, err)
	}

	log.Info("database created")
	return nil
}

// parseDSNForDB extracts the database name and returns a DSN for the postgres admin database.
// Both URL and key=value forms are accepted.
func parseDSNForDB(dsn string) (dbName string, adminDSN string, err error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("invalid database URL: %w", err)
		}

		dbName = strings.TrimPrefix(u.Path, "/")
		if dbName == "" {
			return "", "", fmt.Errorf("no database name found in URL")
		}

		u.Path = "/postgres"
		return dbName, u.String(), nil
	}

	var adminParts []string
	for _, kv := range strings.Fields(dsn) {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		if parts[0] == "dbname" {
			dbName = parts[1]
			adminParts = append(adminParts, "dbname=postgres")
			continue
		}
		adminParts = append(adminParts, kv)
	}

	if dbName == "" {
		return "", "", fmt.Errorf("no database name found in DSN")
	}

	return dbName, strings.Join(adminParts, " "), nil
}

// quoteIdentifier quotes a PostgreSQL identifier to prevent SQL injection
func quoteIdentifier(name string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(name, `"`, `""`))
}

// GetDatabaseURL builds a database URL from components
func GetDatabaseURL(host, port, user, password, dbname, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, url.QueryEscape(password), host, port, dbname, sslmode)
}

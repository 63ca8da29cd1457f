// Package testutil provides throwaway Postgres databases for integration tests.
package testutil

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DatabaseURLEnv names a Postgres server URL the tests may create databases on.
// Integration tests are skipped when it is unset.
const DatabaseURLEnv = "TASKLIST_TEST_DATABASE_URL"

// TestDB provides a connection to a freshly created database
type TestDB struct {
	DB      *sqlx.DB
	DBName  string
	ConnStr string

	adminConnStr string
	t            *testing.T
}

// NewTestDB creates a new database on the server named by TASKLIST_TEST_DATABASE_URL
// and drops it when the test finishes
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	base := os.Getenv(DatabaseURLEnv)
	if base == "" {
		t.Skipf("%s not set, skipping integration test", DatabaseURLEnv)
	}

	u, err := url.Parse(base)
	if err != nil {
		t.Fatalf("Invalid %s: %v", DatabaseURLEnv, err)
	}

	admin, err := sqlx.Open("postgres", base)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer admin.Close()

	dbName := "tasklist_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if _, err := admin.Exec(fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	u.Path = "/" + dbName
	tdb := &TestDB{
		DBName:       dbName,
		ConnStr:      u.String(),
		adminConnStr: base,
		t:            t,
	}

	tdb.DB, err = sqlx.Open("postgres", tdb.ConnStr)
	if err != nil {
		tdb.drop()
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	t.Cleanup(tdb.Cleanup)
	return tdb
}

// Cleanup closes the connection and drops the test database
func (tdb *TestDB) Cleanup() {
	if tdb.DB != nil {
		tdb.DB.Close()
	}
	tdb.drop()
}

func (tdb *TestDB) drop() {
	db, err := sqlx.Open("postgres", tdb.adminConnStr)
	if err != nil {
		tdb.t.Logf("Failed to connect for cleanup: %v", err)
		return
	}
	defer db.Close()

	_, err = db.Exec(`
		SELECT pg_terminate_backend(pg_stat_activity.pid)
		FROM pg_stat_activity
		WHERE pg_stat_activity.datname = $1
		AND pid <> pg_backend_pid()
	`, tdb.DBName)
	if err != nil {
		tdb.t.Logf("Failed to terminate connections: %v", err)
	}

	if _, err := db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", tdb.DBName)); err != nil {
		tdb.t.Logf("Failed to drop test database: %v", err)
	}
}

// TableExists checks if a table exists
func (tdb *TestDB) TableExists(tableName string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`
	err := tdb.DB.Get(&exists, query, tableName)
	return exists, err
}

// GetColumnType returns the data type of a column
func (tdb *TestDB) GetColumnType(tableName, columnName string) (string, error) {
	var dataType string
	query := `
		SELECT data_type
		FROM information_schema.columns
		WHERE table_schema = 'public'
		AND table_name = $1
		AND column_name = $2
	`
	err := tdb.DB.Get(&dataType, query, tableName, columnName)
	return dataType, err
}

// IndexExists checks if an index exists
func (tdb *TestDB) IndexExists(indexName string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM pg_indexes
			WHERE schemaname = 'public'
			AND indexname = $1
		)
	`
	err := tdb.DB.Get(&exists, query, indexName)
	return exists, err
}

// ConstraintExists checks if a constraint exists
func (tdb *TestDB) ConstraintExists(tableName, constraintName string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.table_constraints
			WHERE table_schema = 'public'
			AND table_name = $1
			AND constraint_name = $2
		)
	`
	err := tdb.DB.Get(&exists, query, tableName, constraintName)
	return exists, err
}

// CountRows returns the number of rows in table
func (tdb *TestDB) CountRows(table string) (int64, error) {
	var n int64
	err := tdb.DB.Get(&n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	return n, err
}

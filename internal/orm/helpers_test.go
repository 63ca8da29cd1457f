package orm

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// testNote is a small model exercising generated and touch columns
type testNote struct {
	ID        int64     `db:"id"`
	OwnerID   int64     `db:"owner_id"`
	Body      string    `db:"body"`
	Pinned    bool      `db:"pinned"`
	UpdatedAt time.Time `db:"updated_at"`
}

var noteColumns = []string{"id", "owner_id", "body", "pinned", "updated_at"}

func createTestNoteMetadata() Metadata {
	return Metadata{
		TableName:  "notes",
		PrimaryKey: "id",
		Columns:    noteColumns,
		Generated:  []string{"id", "updated_at"},
		Touch:      []string{"updated_at"},
	}
}

func newNoteRepo(t *testing.T) (*Repository[testNote], sqlmock.Sqlmock, *sqlx.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	repo, err := NewRepository[testNote](sqlxDB, createTestNoteMetadata())
	require.NoError(t, err)
	return repo, mock, sqlxDB
}

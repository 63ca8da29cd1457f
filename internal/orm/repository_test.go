package orm

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "postgres")

	t.Run("rejects non-struct", func(t *testing.T) {
		_, err := NewRepository[int](sqlxDB, createTestNoteMetadata())
		assert.ErrorIs(t, err, ErrInvalidStruct)
	})

	t.Run("rejects missing primary key", func(t *testing.T) {
		meta := createTestNoteMetadata()
		meta.PrimaryKey = ""
		_, err := NewRepository[testNote](sqlxDB, meta)
		assert.ErrorIs(t, err, ErrNoPrimaryKey)
	})

	t.Run("rejects unmapped column", func(t *testing.T) {
		meta := createTestNoteMetadata()
		meta.Columns = append(meta.Columns, "color")
		_, err := NewRepository[testNote](sqlxDB, meta)
		assert.ErrorIs(t, err, ErrInvalidStruct)
	})

	t.Run("qualified columns", func(t *testing.T) {
		repo, err := NewRepository[testNote](sqlxDB, createTestNoteMetadata())
		require.NoError(t, err)
		assert.Equal(t, []string{"notes.id", "notes.owner_id", "notes.body", "notes.pinned", "notes.updated_at"}, repo.Columns())
		assert.Equal(t, "notes", repo.TableName())
		assert.False(t, repo.IsTransaction())
	})
}

func TestCreate(t *testing.T) {
	repo, mock, _ := newNoteRepo(t)
	ctx := context.Background()

	t.Run("fills generated columns", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`INSERT INTO notes \(owner_id,body,pinned\) VALUES \(\$1,\$2,\$3\) RETURNING id, updated_at`).
			WithArgs(int64(7), "buy milk", false).
			WillReturnRows(sqlmock.NewRows([]string{"id", "updated_at"}).AddRow(int64(11), now))

		note := &testNote{OwnerID: 7, Body: "buy milk"}
		require.NoError(t, repo.Create(ctx, note))
		assert.Equal(t, int64(11), note.ID)
		assert.Equal(t, now, note.UpdatedAt)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violations", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO notes`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "notes_body_key"})

		err := repo.Create(ctx, &testNote{OwnerID: 7, Body: "dup"})
		assert.ErrorIs(t, err, ErrDuplicateKey)
		assert.Equal(t, "notes_body_key", GetConstraintName(err))

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil record", func(t *testing.T) {
		assert.ErrorIs(t, repo.Create(ctx, nil), ErrInvalidStruct)
	})
}

func TestCreateWithoutGeneratedColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	meta := createTestNoteMetadata()
	meta.Generated = nil
	meta.Touch = nil
	repo, err := NewRepository[testNote](sqlx.NewDb(db, "postgres"), meta)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO notes \(id,owner_id,body,pinned,updated_at\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), &testNote{ID: 1, OwnerID: 2, Body: "x"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID(t *testing.T) {
	repo, mock, _ := newNoteRepo(t)
	ctx := context.Background()

	t.Run("existing record", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT notes.id, notes.owner_id, notes.body, notes.pinned, notes.updated_at FROM notes WHERE \(notes.id = \$1\) LIMIT 1`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(noteColumns).AddRow(int64(3), int64(7), "buy milk", true, now))

		note, err := repo.FindByID(ctx, int64(3))
		require.NoError(t, err)
		assert.Equal(t, "buy milk", note.Body)
		assert.True(t, note.Pinned)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing record", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM notes`).
			WithArgs(int64(999)).
			WillReturnRows(sqlmock.NewRows(noteColumns))

		note, err := repo.FindByID(ctx, int64(999))
		assert.Nil(t, note)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "find_by_id")

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdate(t *testing.T) {
	repo, mock, _ := newNoteRepo(t)
	ctx := context.Background()

	t.Run("writes columns and refreshes touch columns", func(t *testing.T) {
		later := time.Now().Add(time.Minute)
		mock.ExpectQuery(`UPDATE notes SET owner_id = \$1, body = \$2, pinned = \$3, updated_at = now\(\) WHERE id = \$4 RETURNING updated_at`).
			WithArgs(int64(7), "buy oat milk", true, int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(later))

		note := &testNote{ID: 3, OwnerID: 7, Body: "buy oat milk", Pinned: true}
		require.NoError(t, repo.Update(ctx, note))
		assert.Equal(t, later, note.UpdatedAt)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing record", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE notes`).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

		err := repo.Update(ctx, &testNote{ID: 42})
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteByID(t *testing.T) {
	repo, mock, _ := newNoteRepo(t)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM notes WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteByID(ctx, int64(3)))

	mock.ExpectExec(`DELETE FROM notes WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeleteByID(ctx, int64(4)), ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery(t *testing.T) {
	repo, mock, _ := newNoteRepo(t)
	ctx := context.Background()
	owner := NumericColumn[int64]{Column: Column[int64]{Name: "owner_id", Table: "notes"}}
	pinned := BoolColumn{Column: Column[bool]{Name: "pinned", Table: "notes"}}
	id := NumericColumn[int64]{Column: Column[int64]{Name: "id", Table: "notes"}}

	t.Run("Find with conditions and ordering", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT .* FROM notes WHERE \(notes.owner_id = \$1 AND notes.pinned = \$2\) ORDER BY notes.id ASC`).
			WithArgs(int64(7), true).
			WillReturnRows(sqlmock.NewRows(noteColumns).
				AddRow(int64(1), int64(7), "a", true, now).
				AddRow(int64(2), int64(7), "b", true, now))

		notes, err := repo.Query(ctx).Where(owner.Eq(7), pinned.IsTrue()).OrderBy(id.Asc()).Find()
		require.NoError(t, err)
		assert.Len(t, notes, 2)
		assert.Equal(t, "b", notes[1].Body)
	})

	t.Run("Find with join", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM notes INNER JOIN owners ON owners.id = notes.owner_id WHERE \(owners.name = \$1\)`).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(noteColumns))

		notes, err := repo.Query(ctx).
			InnerJoin("owners", "owners.id = notes.owner_id").
			Where(Raw("owners.name = ?", "alice")).
			Find()
		require.NoError(t, err)
		assert.Empty(t, notes)
	})

	t.Run("Exists", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notes WHERE \(notes.owner_id = \$1\)`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		exists, err := repo.Query(ctx).Where(owner.Eq(7)).Exists()
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Update touches columns", func(t *testing.T) {
		mock.ExpectExec(`UPDATE notes SET body = \$1, pinned = \$2, updated_at = now\(\) WHERE \(notes.id = \$3\)`).
			WithArgs("x", false, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := repo.Query(ctx).Where(id.Eq(1)).Update(map[string]interface{}{"pinned": false, "body": "x"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("Update requires values", func(t *testing.T) {
		_, err := repo.Query(ctx).Update(nil)
		assert.Error(t, err)
	})

	t.Run("Delete", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM notes WHERE \(notes.owner_id = \$1\)`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.Query(ctx).Where(owner.Eq(7)).Delete()
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("Find wraps driver errors", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM notes`).WillReturnError(sql.ErrConnDone)

		_, err := repo.Query(ctx).Find()
		var ormErr *Error
		require.ErrorAs(t, err, &ormErr)
		assert.Equal(t, "find", ormErr.Op)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

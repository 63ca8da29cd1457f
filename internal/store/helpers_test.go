package store

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/tasklist/internal/models"
)

var testHashParams = models.HashParams{N: 1 << 10, R: 8, P: 1, SaltLength: 16, KeyLength: 64}

var (
	userColumns     = []string{"id", "username", "email", "password"}
	todoColumns     = []string{"id", "user_id", "text", "done"}
	categoryColumns = []string{"id", "user_id", "text"}
)

const (
	insertUserSQL     = `INSERT INTO users \(username,email,password\) VALUES \(\$1,\$2,\$3\) RETURNING id`
	insertTodoSQL     = `INSERT INTO todos \(user_id,text,done\) VALUES \(\$1,\$2,\$3\) RETURNING id`
	insertCategorySQL = `INSERT INTO categories \(user_id,text\) VALUES \(\$1,\$2\) RETURNING id`
	insertLinkSQL     = `INSERT INTO todo_category \(todo_id,category_id\) VALUES \(\$1,\$2\) RETURNING id, last_modified`
	ownedTodoSQL      = `SELECT (.+) FROM todos WHERE \(todos.id = \$1 AND todos.user_id = \$2\) LIMIT 1`
	findCategorySQL   = `SELECT (.+) FROM categories WHERE \(categories.user_id = \$1 AND categories.text = \$2\) LIMIT 1`
	countLinkSQL      = `SELECT COUNT\(\*\) FROM todo_category WHERE \(todo_category.todo_id = \$1 AND todo_category.category_id = \$2\)`
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := New(sqlx.NewDb(db, "postgres"), WithHashParams(testHashParams))
	require.NoError(t, err)
	return s, mock
}

func testUser(t *testing.T) *models.User {
	t.Helper()
	user, err := models.NewUserWithParams("alice", "alice@example.com", "s3cret", testHashParams)
	require.NoError(t, err)
	user.ID = 1
	return user
}

func expectOwnedTodo(mock sqlmock.Sqlmock, todoID, userID int64, text string, done bool) {
	mock.ExpectQuery(ownedTodoSQL).
		WithArgs(todoID, userID).
		WillReturnRows(sqlmock.NewRows(todoColumns).AddRow(todoID, userID, text, done))
}

func expectLinkInsert(mock sqlmock.Sqlmock, todoID, categoryID, linkID int64) {
	mock.ExpectQuery(insertLinkSQL).
		WithArgs(todoID, categoryID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "last_modified"}).AddRow(linkID, time.Now()))
}

package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTodoCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("creates category and link on first use", func(t *testing.T) {
		s, mock := newTestStore(t)
		user := testUser(t)

		expectOwnedTodo(mock, 1, 1, "buy milk", false)
		mock.ExpectQuery(findCategorySQL).
			WithArgs(int64(1), "shopping").
			WillReturnRows(sqlmock.NewRows(categoryColumns))
		mock.ExpectQuery(insertCategorySQL).
			WithArgs(int64(1), "shopping").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectQuery(countLinkSQL).
			WithArgs(int64(1), int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
		expectLinkInsert(mock, 1, 3, 1)

		ok, err := s.AddTodoCategory(ctx, user, 1, "shopping")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second call reuses category and link", func(t *testing.T) {
		s, mock := newTestStore(t)
		user := testUser(t)

		expectOwnedTodo(mock, 1, 1, "buy milk", false)
		mock.ExpectQuery(findCategorySQL).
			WithArgs(int64(1), "shopping").
			WillReturnRows(sqlmock.NewRows(categoryColumns).AddRow(int64(3), int64(1), "shopping"))
		mock.ExpectQuery(countLinkSQL).
			WithArgs(int64(1), int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

		ok, err := s.AddTodoCategory(ctx, user, 1, "shopping")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("todo owned by someone else", func(t *testing.T) {
		s, mock := newTestStore(t)
		user := testUser(t)

		mock.ExpectQuery(ownedTodoSQL).
			WithArgs(int64(7), int64(1)).
			WillReturnRows(sqlmock.NewRows(todoColumns))

		ok, err := s.AddTodoCategory(ctx, user, 7, "shopping")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost category insert race reads the winner", func(t *testing.T) {
		s, mock := newTestStore(t)
		user := testUser(t)

		expectOwnedTodo(mock, 1, 1, "buy milk", false)
		mock.ExpectQuery(findCategorySQL).WillReturnRows(sqlmock.NewRows(categoryColumns))
		mock.ExpectQuery(insertCategorySQL).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "uk_categories_user_text"})
		mock.ExpectQuery(findCategorySQL).
			WithArgs(int64(1), "shopping").
			WillReturnRows(sqlmock.NewRows(categoryColumns).AddRow(int64(4), int64(1), "shopping"))
		mock.ExpectQuery(countLinkSQL).
			WithArgs(int64(1), int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
		expectLinkInsert(mock, 1, 4, 2)

		ok, err := s.AddTodoCategory(ctx, user, 1, "shopping")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost link insert race counts as linked", func(t *testing.T) {
		s, mock := newTestStore(t)
		user := testUser(t)

		expectOwnedTodo(mock, 1, 1, "buy milk", false)
		mock.ExpectQuery(findCategorySQL).
			WillReturnRows(sqlmock.NewRows(categoryColumns).AddRow(int64(3), int64(1), "shopping"))
		mock.ExpectQuery(countLinkSQL).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectQuery(insertLinkSQL).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "uk_todo_category_pair"})

		ok, err := s.AddTodoCategory(ctx, user, 1, "shopping")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

// alice creates "buy milk", tags it "shopping" and reads it back
func TestShoppingScenario(t *testing.T) {
	ctx := context.Background()
	s, mock := newTestStore(t)

	mock.ExpectQuery(insertUserSQL).
		WithArgs("alice", "alice@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(insertTodoSQL).
		WithArgs(int64(1), "buy milk", false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	expectOwnedTodo(mock, 1, 1, "buy milk", false)
	mock.ExpectQuery(findCategorySQL).WillReturnRows(sqlmock.NewRows(categoryColumns))
	mock.ExpectQuery(insertCategorySQL).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(countLinkSQL).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	expectLinkInsert(mock, 1, 1, 1)

	mock.ExpectQuery(`SELECT (.+) FROM categories INNER JOIN todo_category (.+) WHERE \(todo_category.todo_id = \$1\)`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(categoryColumns).AddRow(int64(1), int64(1), "shopping"))
	mock.ExpectQuery(`SELECT (.+) FROM todos INNER JOIN todo_category ON todo_category.todo_id = todos.id WHERE \(todo_category.category_id = \$1\) ORDER BY todo_category.id ASC`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(todoColumns).AddRow(int64(1), int64(1), "buy milk", false))

	user, err := s.CreateUser(ctx, "alice", "alice@example.com", "pw1")
	require.NoError(t, err)
	assert.True(t, user.CheckPassword("pw1"))
	assert.False(t, user.CheckPassword("pw2"))

	todo, err := s.CreateTodo(ctx, user.ID, "buy milk")
	require.NoError(t, err)
	assert.False(t, todo.Done)

	ok, err := s.AddTodoCategory(ctx, user, todo.ID, "shopping")
	require.NoError(t, err)
	assert.True(t, ok)

	categories, err := s.TodoCategories(ctx, todo.ID)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "shopping", categories[0].Text)

	desc, err := s.DescribeCategory(ctx, &categories[0])
	require.NoError(t, err)
	assert.Equal(t, "<Category 1 | shopping | Todos [buy milk]>", desc)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddTodoCategoryRejectsEmptyText(t *testing.T) {
	ctx := context.Background()
	s, mock := newTestStore(t)
	user := testUser(t)

	expectOwnedTodo(mock, 1, 1, "buy milk", false)
	mock.ExpectQuery(findCategorySQL).WillReturnRows(sqlmock.NewRows(categoryColumns))

	_, err := s.AddTodoCategory(ctx, user, 1, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text")

	require.NoError(t, mock.ExpectationsWereMet())
}

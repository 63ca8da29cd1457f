package store

import (
	"context"

	"github.com/eleven-am/tasklist/internal/models"
	"github.com/eleven-am/tasklist/internal/orm"
)

// CreateTodo inserts a todo for userID. An unknown user surfaces as orm.ErrForeignKey.
func (s *Store) CreateTodo(ctx context.Context, userID int64, text string) (*models.Todo, error) {
	todo := models.NewTodo(userID, text)
	if err := todo.Validate(); err != nil {
		return nil, err
	}

	if err := s.Todos.Create(ctx, todo); err != nil {
		return nil, err
	}

	s.log.Info("todo created", "todo_id", todo.ID, "user_id", userID)
	return todo, nil
}

// FindTodo loads a todo only if userID owns it
func (s *Store) FindTodo(ctx context.Context, userID, todoID int64) (*models.Todo, error) {
	return s.Todos.Query(ctx).
		Where(models.Todos.ID.Eq(todoID), models.Todos.UserID.Eq(userID)).
		First()
}

// ToggleTodo flips done and persists it immediately. On failure the in-memory value
// is restored.
func (s *Store) ToggleTodo(ctx context.Context, todo *models.Todo) error {
	todo.Toggle()

	n, err := s.Todos.Query(ctx).
		Where(models.Todos.ID.Eq(todo.ID)).
		Update(map[string]interface{}{"done": todo.Done})
	if err == nil && n == 0 {
		err = &orm.Error{Op: "toggle", Table: models.TodosTable, Err: orm.ErrNotFound}
	}
	if err != nil {
		todo.Toggle()
		return err
	}

	s.log.Debug("todo toggled", "todo_id", todo.ID, "done", todo.Done)
	return nil
}

// TodoOwner resolves the user a todo belongs to through its foreign key
func (s *Store) TodoOwner(ctx context.Context, todo *models.Todo) (*models.User, error) {
	return s.Users.FindByID(ctx, todo.UserID)
}

// TodoCategories returns the categories linked to a todo, oldest link first
func (s *Store) TodoCategories(ctx context.Context, todoID int64) ([]models.Category, error) {
	return s.Categories.Query(ctx).
		InnerJoin(models.TodoCategoryTable, "todo_category.category_id = categories.id").
		Where(models.TodoCategories.TodoID.Eq(todoID)).
		OrderBy(models.TodoCategories.ID.Asc()).
		Find()
}

// DescribeTodo renders a todo with its owner and categories
func (s *Store) DescribeTodo(ctx context.Context, todo *models.Todo) (string, error) {
	owner, err := s.TodoOwner(ctx, todo)
	if err != nil {
		return "", err
	}

	categories, err := s.TodoCategories(ctx, todo.ID)
	if err != nil {
		return "", err
	}

	return todo.Describe(owner.Username, categories), nil
}

package store

import (
	"context"
	"errors"

	"github.com/eleven-am/tasklist/internal/models"
	"github.com/eleven-am/tasklist/internal/orm"
)

// AddTodoCategory attaches the category named text to one of user's todos, creating
// the category on first use. It returns false without writing anything when the todo
// does not exist or belongs to someone else.
//
// The category insert and the link insert commit separately. A failure between them
// leaves an unlinked category, which later calls reuse.
func (s *Store) AddTodoCategory(ctx context.Context, user *models.User, todoID int64, text string) (bool, error) {
	todo, err := s.FindTodo(ctx, user.ID, todoID)
	if errors.Is(err, orm.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	category, err := s.findOrCreateCategory(ctx, user.ID, text)
	if err != nil {
		return false, err
	}

	if err := s.linkTodoCategory(ctx, todo.ID, category.ID); err != nil {
		return false, err
	}

	return true, nil
}

// FindCategory looks up a user's category by its exact text
func (s *Store) FindCategory(ctx context.Context, userID int64, text string) (*models.Category, error) {
	return s.Categories.Query(ctx).
		Where(models.Categories.UserID.Eq(userID), models.Categories.Text.Eq(text)).
		First()
}

// findOrCreateCategory returns the user's category with text, inserting it if absent.
// Losing an insert race to a concurrent caller falls back to reading the winner's row.
func (s *Store) findOrCreateCategory(ctx context.Context, userID int64, text string) (*models.Category, error) {
	category, err := s.FindCategory(ctx, userID, text)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, orm.ErrNotFound) {
		return nil, err
	}

	category = models.NewCategory(userID, text)
	if err := category.Validate(); err != nil {
		return nil, err
	}

	err = s.Categories.Create(ctx, category)
	if errors.Is(err, orm.ErrDuplicateKey) {
		s.log.Debug("category created concurrently, reading it back", "user_id", userID, "text", text)
		return s.FindCategory(ctx, userID, text)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("category created", "category_id", category.ID, "user_id", userID)
	return category, nil
}

// linkTodoCategory inserts the join row unless the pair is already linked
func (s *Store) linkTodoCategory(ctx context.Context, todoID, categoryID int64) error {
	linked, err := s.TodoCategories.Query(ctx).
		Where(models.TodoCategories.TodoID.Eq(todoID), models.TodoCategories.CategoryID.Eq(categoryID)).
		Exists()
	if err != nil {
		return err
	}
	if linked {
		return nil
	}

	err = s.TodoCategories.Create(ctx, models.NewTodoCategory(todoID, categoryID))
	if errors.Is(err, orm.ErrDuplicateKey) {
		return nil
	}
	if err != nil {
		return err
	}

	s.log.Debug("todo linked to category", "todo_id", todoID, "category_id", categoryID)
	return nil
}

// CategoryTodos returns the todos linked to a category, oldest link first
func (s *Store) CategoryTodos(ctx context.Context, categoryID int64) ([]models.Todo, error) {
	return s.Todos.Query(ctx).
		InnerJoin(models.TodoCategoryTable, "todo_category.todo_id = todos.id").
		Where(models.TodoCategories.CategoryID.Eq(categoryID)).
		OrderBy(models.TodoCategories.ID.Asc()).
		Find()
}

// DescribeCategory renders a category with the text of its todos
func (s *Store) DescribeCategory(ctx context.Context, category *models.Category) (string, error) {
	todos, err := s.CategoryTodos(ctx, category.ID)
	if err != nil {
		return "", err
	}
	return category.Describe(todos), nil
}

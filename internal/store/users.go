package store

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/eleven-am/tasklist/internal/models"
	"github.com/eleven-am/tasklist/internal/orm"
)

// CreateUser hashes password and inserts a new user. A taken username or email
// surfaces as orm.ErrDuplicateKey.
func (s *Store) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	user, err := models.NewUserWithParams(username, email, password, s.hashParams)
	if err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *Store) FindUser(ctx context.Context, id int64) (*models.User, error) {
	return s.Users.FindByID(ctx, id)
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.Users.Query(ctx).Where(models.Users.Username.Eq(username)).First()
}

// ResetPassword replaces the user's password hash and persists it
func (s *Store) ResetPassword(ctx context.Context, user *models.User, password string) error {
	previous := user.Password
	if err := user.SetPasswordWithParams(password, s.hashParams); err != nil {
		return err
	}

	if err := s.Users.Update(ctx, user); err != nil {
		user.Password = previous
		return err
	}

	s.log.Info("password reset", "user_id", user.ID)
	return nil
}

// UserTodos returns the user's todos in creation order
func (s *Store) UserTodos(ctx context.Context, userID int64) ([]models.Todo, error) {
	return s.Todos.Query(ctx).
		Where(models.Todos.UserID.Eq(userID)).
		OrderBy(models.Todos.ID.Asc()).
		Find()
}

// UserCategories returns the user's categories in creation order
func (s *Store) UserCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	return s.Categories.Query(ctx).
		Where(models.Categories.UserID.Eq(userID)).
		OrderBy(models.Categories.ID.Asc()).
		Find()
}

// DeleteUser removes a user together with its todos, categories and every join row
// that references them. Children are deleted explicitly inside one transaction so no
// orphan survives even without ON DELETE CASCADE.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.WithTransaction(ctx, func(tx *Store) error {
		ownedTodos := squirrel.Select("id").From(models.TodosTable).Where(squirrel.Eq{"user_id": id})
		ownedCategories := squirrel.Select("id").From(models.CategoriesTable).Where(squirrel.Eq{"user_id": id})

		links, err := tx.TodoCategories.Query(ctx).
			Where(orm.Or(
				models.TodoCategories.TodoID.InSubquery(ownedTodos),
				models.TodoCategories.CategoryID.InSubquery(ownedCategories),
			)).
			Delete()
		if err != nil {
			return err
		}

		todos, err := tx.Todos.Query(ctx).Where(models.Todos.UserID.Eq(id)).Delete()
		if err != nil {
			return err
		}

		categories, err := tx.Categories.Query(ctx).Where(models.Categories.UserID.Eq(id)).Delete()
		if err != nil {
			return err
		}

		if err := tx.Users.DeleteByID(ctx, id); err != nil {
			return err
		}

		s.log.Info("user deleted",
			"user_id", id,
			"todos", todos,
			"categories", categories,
			"links", links,
		)
		return nil
	})
}

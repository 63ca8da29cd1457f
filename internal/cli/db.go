package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/eleven-am/tasklist/internal/models"
	"github.com/eleven-am/tasklist/internal/orm"
	"github.com/eleven-am/tasklist/internal/store"
)

const commandTimeout = 30 * time.Second

// withStore opens the store, runs fn and closes the store again
func withStore(fn func(ctx context.Context, s *store.Store) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, s)
}

func lookupUser(ctx context.Context, s *store.Store, username string) (*models.User, error) {
	user, err := s.FindUserByUsername(ctx, username)
	if errors.Is(err, orm.ErrNotFound) {
		return nil, fmt.Errorf("user %q not found", username)
	}
	return user, err
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// Package store is the entry point for reading and writing users, todos and categories.
// Every operation commits on its own; only user deletion spans a transaction.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/eleven-am/tasklist/internal/logger"
	"github.com/eleven-am/tasklist/internal/models"
	"github.com/eleven-am/tasklist/internal/orm"
)

// DBConfig holds connection pool settings
type DBConfig struct {
	URL             string
	ConnMaxLifetime time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
}

func NewDBConfig(url string) DBConfig {
	return DBConfig{
		URL:             url,
		ConnMaxLifetime: 10 * time.Minute,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
	}
}

// Open connects to Postgres and verifies the connection
func Open(ctx context.Context, cfg DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Store holds the repositories for every table
type Store struct {
	db         *sqlx.DB
	executor   orm.DBExecutor // Current executor (DB or TX)
	hashParams models.HashParams
	log        logger.Logger

	Users          *orm.Repository[models.User]
	Todos          *orm.Repository[models.Todo]
	Categories     *orm.Repository[models.Category]
	TodoCategories *orm.Repository[models.TodoCategory]
}

// Option configures a Store
type Option func(*Store)

// WithHashParams sets the scrypt parameters used for new password hashes
func WithHashParams(params models.HashParams) Option {
	return func(s *Store) {
		s.hashParams = params
	}
}

// New creates a Store on db. Every repository logs its statements through logger.DB().
func New(db *sqlx.DB, opts ...Option) (*Store, error) {
	s := &Store{
		db:         db,
		executor:   db,
		hashParams: models.DefaultHashParams,
		log:        logger.Store(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if s.Users, err = orm.NewRepository[models.User](db, models.UserMetadata); err != nil {
		return nil, err
	}
	if s.Todos, err = orm.NewRepository[models.Todo](db, models.TodoMetadata); err != nil {
		return nil, err
	}
	if s.Categories, err = orm.NewRepository[models.Category](db, models.CategoryMetadata); err != nil {
		return nil, err
	}
	if s.TodoCategories, err = orm.NewRepository[models.TodoCategory](db, models.TodoCategoryMetadata); err != nil {
		return nil, err
	}

	queryLog := orm.LoggingMiddleware(logger.DB())
	s.Users.AddMiddleware(queryLog)
	s.Todos.AddMiddleware(queryLog)
	s.Categories.AddMiddleware(queryLog)
	s.TodoCategories.AddMiddleware(queryLog)

	return s, nil
}

// withExecutor returns a Store whose repositories run on exec
func (s *Store) withExecutor(exec orm.DBExecutor) *Store {
	return &Store{
		db:             s.db,
		executor:       exec,
		hashParams:     s.hashParams,
		log:            s.log,
		Users:          s.Users.WithExecutor(exec),
		Todos:          s.Todos.WithExecutor(exec),
		Categories:     s.Categories.WithExecutor(exec),
		TodoCategories: s.TodoCategories.WithExecutor(exec),
	}
}

// WithTransaction executes fn with a transaction-bound Store. Nested calls reuse the
// outer transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(*Store) error) error {
	if _, isTransaction := s.executor.(*sqlx.Tx); isTransaction {
		return fn(s)
	}

	return orm.NewTransactionManager(s.db).WithTransaction(ctx, func(tx *sqlx.Tx) error {
		return fn(s.withExecutor(tx))
	})
}

// DB returns the underlying connection pool
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Ping verifies the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

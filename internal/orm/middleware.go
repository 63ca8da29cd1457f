package orm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/eleven-am/tasklist/internal/logger"
)

// OperationType represents different types of database operations
type OperationType string

const (
	OpCreate     OperationType = "create"
	OpUpdate     OperationType = "update"
	OpUpdateMany OperationType = "update_many"
	OpDelete     OperationType = "delete"
	OpQuery      OperationType = "query"
)

// MiddlewareContext contains information passed to middleware.
// Query and Args are filled in once the builder has been rendered.
type MiddlewareContext struct {
	Operation    OperationType
	TableName    string
	Record       interface{}
	QueryBuilder interface{} // squirrel.SelectBuilder, squirrel.InsertBuilder, etc.
	Query        string
	Args         []interface{}
	Error        error
	StartTime    time.Time
	Duration     time.Duration
	Context      context.Context
	Metadata     map[string]interface{}
}

// QueryMiddlewareFunc represents middleware that can modify queries
type QueryMiddlewareFunc func(ctx *MiddlewareContext) error

// QueryMiddleware represents middleware that can see and modify query builders
type QueryMiddleware func(next QueryMiddlewareFunc) QueryMiddlewareFunc

// middlewareManager manages database middleware
type middlewareManager struct {
	middleware []QueryMiddleware
}

func newMiddlewareManager() *middlewareManager {
	return &middlewareManager{
		middleware: make([]QueryMiddleware, 0),
	}
}

func (mm *middlewareManager) AddMiddleware(middleware QueryMiddleware) {
	mm.middleware = append(mm.middleware, middleware)
}

func (mm *middlewareManager) ExecuteMiddleware(ctx *MiddlewareContext, finalFunc QueryMiddlewareFunc) error {
	handler := finalFunc

	for i := len(mm.middleware) - 1; i >= 0; i-- {
		handler = mm.middleware[i](handler)
	}

	return handler(ctx)
}

// Repository middleware integration

func (r *Repository[T]) executeQueryMiddleware(op OperationType, ctx context.Context, record interface{}, queryBuilder interface{}, finalFunc QueryMiddlewareFunc) error {
	middlewareCtx := &MiddlewareContext{
		Operation:    op,
		TableName:    r.metadata.TableName,
		Record:       record,
		QueryBuilder: queryBuilder,
		Context:      ctx,
		StartTime:    time.Now(),
		Metadata:     make(map[string]interface{}),
	}

	var err error
	if r.middlewareManager == nil {
		err = finalFunc(middlewareCtx)
	} else {
		err = r.middlewareManager.ExecuteMiddleware(middlewareCtx, finalFunc)
	}
	middlewareCtx.Error = err
	return err
}

func (r *Repository[T]) AddMiddleware(middleware QueryMiddleware) {
	r.getMiddlewareManager().AddMiddleware(middleware)
}

func (r *Repository[T]) getMiddlewareManager() *middlewareManager {
	if r.middlewareManager == nil {
		r.middlewareManager = newMiddlewareManager()
	}
	return r.middlewareManager
}

// LoggingMiddleware logs every statement at debug level and failures at warn.
// Each statement is tagged with a query_id for correlating log lines.
func LoggingMiddleware(log logger.Logger) QueryMiddleware {
	return func(next QueryMiddlewareFunc) QueryMiddlewareFunc {
		return func(ctx *MiddlewareContext) error {
			queryID := uuid.NewString()
			ctx.Metadata["query_id"] = queryID

			err := next(ctx)
			ctx.Duration = time.Since(ctx.StartTime)

			entry := log.WithFields(map[string]interface{}{
				"op":       string(ctx.Operation),
				"table":    ctx.TableName,
				"query_id": queryID,
				"duration": ctx.Duration,
			})

			if err != nil && !errors.Is(err, ErrNotFound) {
				entry.Warn("query failed", "sql", ctx.Query, "error", err)
				return err
			}

			entry.Debug("query executed", "sql", ctx.Query, "args", len(ctx.Args))
			return err
		}
	}
}

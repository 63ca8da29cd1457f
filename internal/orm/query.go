package orm

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
)

// JoinType selects the SQL join flavour
type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
)

type join struct {
	Type      JoinType
	Table     string
	Condition string
}

// Query provides a fluent interface for building database queries
type Query[T any] struct {
	repo *Repository[T]
	ctx  context.Context
	err  error

	limit       *uint64
	orderBy     []string
	whereClause squirrel.And
	joins       []join
}

func (r *Repository[T]) Query(ctx context.Context) *Query[T] {
	return &Query[T]{
		repo:        r,
		ctx:         ctx,
		whereClause: squirrel.And{},
	}
}

func (q *Query[T]) Where(conditions ...Condition) *Query[T] {
	if q.err != nil {
		return q
	}
	for _, condition := range conditions {
		q.whereClause = append(q.whereClause, condition.ToSqlizer())
	}
	return q
}

func (q *Query[T]) OrderBy(expressions ...string) *Query[T] {
	if q.err != nil {
		return q
	}
	q.orderBy = append(q.orderBy, expressions...)
	return q
}

func (q *Query[T]) Limit(limit uint64) *Query[T] {
	if q.err != nil {
		return q
	}
	q.limit = &limit
	return q
}

func (q *Query[T]) Join(joinType JoinType, table, condition string) *Query[T] {
	if q.err != nil {
		return q
	}
	q.joins = append(q.joins, join{
		Type:      joinType,
		Table:     table,
		Condition: condition,
	})
	return q
}

func (q *Query[T]) InnerJoin(table, condition string) *Query[T] {
	return q.Join(InnerJoin, table, condition)
}

func (q *Query[T]) LeftJoin(table, condition string) *Query[T] {
	return q.Join(LeftJoin, table, condition)
}

func (q *Query[T]) applyJoins(builder squirrel.SelectBuilder) squirrel.SelectBuilder {
	for _, j := range q.joins {
		switch j.Type {
		case InnerJoin:
			builder = builder.InnerJoin(fmt.Sprintf("%s ON %s", j.Table, j.Condition))
		case LeftJoin:
			builder = builder.LeftJoin(fmt.Sprintf("%s ON %s", j.Table, j.Condition))
		}
	}
	if len(q.whereClause) > 0 {
		builder = builder.Where(q.whereClause)
	}
	return builder
}

func (q *Query[T]) Find() ([]T, error) {
	if q.err != nil {
		return nil, q.err
	}

	builder := q.applyJoins(squirrel.Select(q.repo.Columns()...).
		From(q.repo.metadata.TableName).
		PlaceholderFormat(squirrel.Dollar))

	for _, orderBy := range q.orderBy {
		builder = builder.OrderBy(orderBy)
	}

	if q.limit != nil {
		builder = builder.Limit(*q.limit)
	}

	var records []T
	err := q.repo.executeQueryMiddleware(OpQuery, q.ctx, nil, builder, func(middlewareCtx *MiddlewareContext) error {
		sqlQuery, args, err := middlewareCtx.QueryBuilder.(squirrel.SelectBuilder).ToSql()
		if err != nil {
			return &Error{
				Op:    "find",
				Table: q.repo.metadata.TableName,
				Err:   fmt.Errorf("failed to build query: %w", err),
			}
		}
		middlewareCtx.Query, middlewareCtx.Args = sqlQuery, args

		if err := q.repo.db.SelectContext(q.ctx, &records, sqlQuery, args...); err != nil {
			return &Error{
				Op:    "find",
				Table: q.repo.metadata.TableName,
				Err:   fmt.Errorf("failed to execute query: %w", err),
			}
		}
		return nil
	})

	return records, err
}

func (q *Query[T]) First() (*T, error) {
	q.Limit(1)
	records, err := q.Find()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, &Error{
			Op:    "first",
			Table: q.repo.metadata.TableName,
			Err:   ErrNotFound,
		}
	}

	return &records[0], nil
}

func (q *Query[T]) Count() (int64, error) {
	if q.err != nil {
		return 0, q.err
	}

	builder := q.applyJoins(squirrel.Select("COUNT(*)").
		From(q.repo.metadata.TableName).
		PlaceholderFormat(squirrel.Dollar))

	var count int64
	err := q.repo.executeQueryMiddleware(OpQuery, q.ctx, nil, builder, func(middlewareCtx *MiddlewareContext) error {
		sqlQuery, args, err := middlewareCtx.QueryBuilder.(squirrel.SelectBuilder).ToSql()
		if err != nil {
			return &Error{
				Op:    "count",
				Table: q.repo.metadata.TableName,
				Err:   fmt.Errorf("failed to build count query: %w", err),
			}
		}
		middlewareCtx.Query, middlewareCtx.Args = sqlQuery, args

		if err := q.repo.db.GetContext(q.ctx, &count, sqlQuery, args...); err != nil {
			return &Error{
				Op:    "count",
				Table: q.repo.metadata.TableName,
				Err:   fmt.Errorf("failed to execute count query: %w", err),
			}
		}
		return nil
	})

	return count, err
}

func (q *Query[T]) Exists() (bool, error) {
	count, err := q.Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes every row matching the query's conditions. Joins are ignored.
func (q *Query[T]) Delete() (int64, error) {
	if q.err != nil {
		return 0, q.err
	}

	deleteBuilder := squirrel.Delete(q.repo.metadata.TableName).
		PlaceholderFormat(squirrel.Dollar)

	if len(q.whereClause) > 0 {
		deleteBuilder = deleteBuilder.Where(q.whereClause)
	}

	var rowsAffected int64
	err := q.repo.executeQueryMiddleware(OpDelete, q.ctx, nil, deleteBuilder, func(middlewareCtx *MiddlewareContext) error {
		sqlQuery, args, err := middlewareCtx.QueryBuilder.(squirrel.DeleteBuilder).ToSql()
		if err != nil {
			return &Error{
				Op:    "delete",
				Table: q.repo.metadata.TableName,
				Err:   fmt.Errorf("failed to build delete query: %w", err),
			}
		}
		middlewareCtx.Query, middlewareCtx.Args = sqlQuery, args

		result, err := q.repo.db.ExecContext(q.ctx, sqlQuery, args...)
		if err != nil {
			return ParsePostgreSQLError(err, "delete", q.repo.metadata.TableName)
		}

		rowsAffected, err = affectedRows(result, "delete", q.repo.metadata.TableName)
		return err
	})

	return rowsAffected, err
}

// Update sets columns on every row matching the query's conditions.
// Columns are written in sorted order so the generated SQL is stable.
func (q *Query[T]) Update(updates map[string]interface{}) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	if len(updates) == 0 {
		return 0, &Error{
			Op:    "update",
			Table: q.repo.metadata.TableName,
			Err:   fmt.Errorf("no updates provided"),
		}
	}

	columns := make([]string, 0, len(updates))
	for column := range updates {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	updateBuilder := squirrel.Update(q.repo.metadata.TableName).
		PlaceholderFormat(squirrel.Dollar)

	for _, column := range columns {
		updateBuilder = updateBuilder.Set(column, updates[column])
	}
	for _, column := range q.repo.metadata.Touch {
		if _, ok := updates[column]; !ok {
			updateBuilder = updateBuilder.Set(column, squirrel.Expr("now()"))
		}
	}

	if len(q.whereClause) > 0 {
		updateBuilder = updateBuilder.Where(q.whereClause)
	}

	var rowsAffected int64
	err := q.repo.executeQueryMiddleware(OpUpdateMany, q.ctx, updates, updateBuilder, func(middlewareCtx *MiddlewareContext) error {
		sqlQuery, args, err := middlewareCtx.QueryBuilder.(squirrel.UpdateBuilder).ToSql()
		if err != nil {
			return &Error{
				Op:    "update",
				Table: q.repo.metadata.TableName,
				Err:   fmt.Errorf("failed to build update query: %w", err),
			}
		}
		middlewareCtx.Query, middlewareCtx.Args = sqlQuery, args

		result, err := q.repo.db.ExecContext(q.ctx, sqlQuery, args...)
		if err != nil {
			return ParsePostgreSQLError(err, "update", q.repo.metadata.TableName)
		}

		rowsAffected, err = affectedRows(result, "update", q.repo.metadata.TableName)
		return err
	})

	return rowsAffected, err
}

func affectedRows(result sql.Result, op, table string) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, &Error{
			Op:    op,
			Table: table,
			Err:   fmt.Errorf("failed to get rows affected: %w", err),
		}
	}
	return n, nil
}

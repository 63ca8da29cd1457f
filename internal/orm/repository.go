package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx/reflectx"
)

// Repository provides CRUD operations for a single model type
type Repository[T any] struct {
	db                DBExecutor
	metadata          Metadata
	mapper            *reflectx.Mapper
	middlewareManager *middlewareManager
}

// NewRepository creates a repository for T. Every column in metadata must map to a
// field of T through its `db` tag.
func NewRepository[T any](db DBExecutor, metadata Metadata) (*Repository[T], error) {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T is not a struct", ErrInvalidStruct, zero)
	}

	if err := metadata.Validate(); err != nil {
		return nil, err
	}

	mapper := reflectx.NewMapperFunc("db", strings.ToLower)
	fields := mapper.TypeMap(typ)
	for _, col := range metadata.Columns {
		if fields.GetByPath(col) == nil {
			return nil, fmt.Errorf("%w: %s has no field tagged db:%q", ErrInvalidStruct, typ.Name(), col)
		}
	}

	return &Repository[T]{
		db:       db,
		metadata: metadata,
		mapper:   mapper,
	}, nil
}

// WithExecutor returns a copy of the repository bound to exec, typically a transaction.
// Middleware is shared with r.
func (r *Repository[T]) WithExecutor(exec DBExecutor) *Repository[T] {
	return &Repository[T]{
		db:                exec,
		metadata:          r.metadata,
		mapper:            r.mapper,
		middlewareManager: r.getMiddlewareManager(),
	}
}

// Metadata returns the table mapping
func (r *Repository[T]) Metadata() Metadata {
	return r.metadata
}

// TableName returns the table this repository reads and writes
func (r *Repository[T]) TableName() string {
	return r.metadata.TableName
}

// Columns returns the table-qualified select list
func (r *Repository[T]) Columns() []string {
	cols := make([]string, len(r.metadata.Columns))
	for i, col := range r.metadata.Columns {
		cols[i] = r.metadata.TableName + "." + col
	}
	return cols
}

// IsTransaction returns true if the repository is using a transaction
func (r *Repository[T]) IsTransaction() bool {
	_, ok := r.db.(interface{ Commit() error })
	return ok
}

// Create inserts record and copies database-generated columns back into it
func (r *Repository[T]) Create(ctx context.Context, record *T) error {
	if record == nil {
		return &Error{Op: "create", Table: r.metadata.TableName, Err: ErrInvalidStruct}
	}

	v := reflect.ValueOf(record).Elem()
	cols := r.metadata.insertColumns()
	values := make([]interface{}, len(cols))
	for i, col := range cols {
		values[i] = r.mapper.FieldByName(v, col).Interface()
	}

	builder := squirrel.Insert(r.metadata.TableName).
		Columns(cols...).
		Values(values...).
		PlaceholderFormat(squirrel.Dollar)

	if len(r.metadata.Generated) > 0 {
		builder = builder.Suffix("RETURNING " + strings.Join(r.metadata.Generated, ", "))
	}

	return r.executeQueryMiddleware(OpCreate, ctx, record, builder, func(middlewareCtx *MiddlewareContext) error {
		query, args, err := middlewareCtx.QueryBuilder.(squirrel.InsertBuilder).ToSql()
		if err != nil {
			return &Error{
				Op:    "create",
				Table: r.metadata.TableName,
				Err:   fmt.Errorf("failed to build insert query: %w", err),
			}
		}
		middlewareCtx.Query, middlewareCtx.Args = query, args

		if len(r.metadata.Generated) == 0 {
			_, err = r.db.ExecContext(ctx, query, args...)
			return ParsePostgreSQLError(err, "create", r.metadata.TableName)
		}

		dest := r.fieldPointers(v, r.metadata.Generated)
		if err := r.db.QueryRowxContext(ctx, query, args...).Scan(dest...); err != nil {
			return ParsePostgreSQLError(err, "create", r.metadata.TableName)
		}
		return nil
	})
}

// FindByID loads the record with the given primary key
func (r *Repository[T]) FindByID(ctx context.Context, id interface{}) (*T, error) {
	record, err := r.Query(ctx).
		Where(Condition{squirrel.Eq{r.metadata.TableName + "." + r.metadata.PrimaryKey: id}}).
		First()
	if err != nil {
		var ormErr *Error
		if errors.As(err, &ormErr) && ormErr.Op == "first" {
			ormErr.Op = "find_by_id"
		}
		return nil, err
	}
	return record, nil
}

// Update writes every non-generated column of record. Touch columns are set to now()
// and read back into record.
func (r *Repository[T]) Update(ctx context.Context, record *T) error {
	if record == nil {
		return &Error{Op: "update", Table: r.metadata.TableName, Err: ErrInvalidStruct}
	}

	v := reflect.ValueOf(record).Elem()
	pk := r.mapper.FieldByName(v, r.metadata.PrimaryKey).Interface()

	builder := squirrel.Update(r.metadata.TableName).PlaceholderFormat(squirrel.Dollar)
	for _, col := range r.metadata.updateColumns() {
		builder = builder.Set(col, r.mapper.FieldByName(v, col).Interface())
	}
	for _, col := range r.metadata.Touch {
		builder = builder.Set(col, squirrel.Expr("now()"))
	}
	builder = builder.Where(squirrel.Eq{r.metadata.PrimaryKey: pk})

	if len(r.metadata.Touch) > 0 {
		builder = builder.Suffix("RETURNING " + strings.Join(r.metadata.Touch, ", "))
	}

	return r.executeQueryMiddleware(OpUpdate, ctx, record, builder, func(middlewareCtx *MiddlewareContext) error {
		query, args, err := middlewareCtx.QueryBuilder.(squirrel.UpdateBuilder).ToSql()
		if err != nil {
			return &Error{
				Op:    "update",
				Table: r.metadata.TableName,
				Err:   fmt.Errorf("failed to build update query: %w", err),
			}
		}
		middlewareCtx.Query, middlewareCtx.Args = query, args

		if len(r.metadata.Touch) > 0 {
			dest := r.fieldPointers(v, r.metadata.Touch)
			if err := r.db.QueryRowxContext(ctx, query, args...).Scan(dest...); err != nil {
				return ParsePostgreSQLError(err, "update", r.metadata.TableName)
			}
			return nil
		}

		result, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return ParsePostgreSQLError(err, "update", r.metadata.TableName)
		}
		return checkAffected(result, "update", r.metadata.TableName)
	})
}

// DeleteByID removes the record with the given primary key
func (r *Repository[T]) DeleteByID(ctx context.Context, id interface{}) error {
	builder := squirrel.Delete(r.metadata.TableName).
		Where(squirrel.Eq{r.metadata.PrimaryKey: id}).
		PlaceholderFormat(squirrel.Dollar)

	return r.executeQueryMiddleware(OpDelete, ctx, nil, builder, func(middlewareCtx *MiddlewareContext) error {
		query, args, err := middlewareCtx.QueryBuilder.(squirrel.DeleteBuilder).ToSql()
		if err != nil {
			return &Error{
				Op:    "delete",
				Table: r.metadata.TableName,
				Err:   fmt.Errorf("failed to build delete query: %w", err),
			}
		}
		middlewareCtx.Query, middlewareCtx.Args = query, args

		result, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return ParsePostgreSQLError(err, "delete", r.metadata.TableName)
		}
		return checkAffected(result, "delete", r.metadata.TableName)
	})
}

func (r *Repository[T]) fieldPointers(v reflect.Value, cols []string) []interface{} {
	dest := make([]interface{}, len(cols))
	for i, col := range cols {
		dest[i] = r.mapper.FieldByName(v, col).Addr().Interface()
	}
	return dest
}

func checkAffected(result sql.Result, op, table string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return &Error{
			Op:    op,
			Table: table,
			Err:   fmt.Errorf("failed to get rows affected: %w", err),
		}
	}
	if affected == 0 {
		return &Error{Op: op, Table: table, Err: ErrNotFound}
	}
	return nil
}

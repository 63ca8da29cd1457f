package orm

import (
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

// Column represents a type-safe database column reference
type Column[T any] struct {
	Name  string
	Table string
}

func (c Column[T]) String() string {
	if c.Table != "" {
		return fmt.Sprintf("%s.%s", c.Table, c.Name)
	}
	return c.Name
}

func (c Column[T]) Eq(value T) Condition {
	return Condition{squirrel.Eq{c.String(): value}}
}

func (c Column[T]) NotEq(value T) Condition {
	return Condition{squirrel.NotEq{c.String(): value}}
}

func (c Column[T]) In(values ...T) Condition {
	interfaces := make([]interface{}, len(values))
	for i, v := range values {
		interfaces[i] = v
	}
	return Condition{squirrel.Eq{c.String(): interfaces}}
}

func (c Column[T]) IsNull() Condition {
	return Condition{squirrel.Eq{c.String(): nil}}
}

func (c Column[T]) IsNotNull() Condition {
	return Condition{squirrel.NotEq{c.String(): nil}}
}

func (c Column[T]) Asc() string {
	return c.String() + " ASC"
}

func (c Column[T]) Desc() string {
	return c.String() + " DESC"
}

// InSubquery matches rows whose column value appears in the result of a subquery
func (c Column[T]) InSubquery(sub squirrel.SelectBuilder) Condition {
	subSQL, subArgs, err := sub.ToSql()
	if err != nil {
		return Condition{errSqlizer{err}}
	}
	return Condition{squirrel.Expr(c.String()+" IN ("+subSQL+")", subArgs...)}
}

// Numeric types for mathematical operations
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// NumericColumn provides numeric comparison operations
type NumericColumn[T Numeric] struct {
	Column[T]
}

func (c NumericColumn[T]) Gt(value T) Condition {
	return Condition{squirrel.Gt{c.String(): value}}
}

func (c NumericColumn[T]) Lt(value T) Condition {
	return Condition{squirrel.Lt{c.String(): value}}
}

// StringColumn provides string-specific operations
type StringColumn struct {
	Column[string]
}

func (c StringColumn) Like(pattern string) Condition {
	return Condition{squirrel.Like{c.String(): pattern}}
}

func (c StringColumn) ILike(pattern string) Condition {
	return Condition{squirrel.ILike{c.String(): pattern}}
}

func (c StringColumn) Contains(substring string) Condition {
	return c.Like("%" + substring + "%")
}

// TimeColumn provides time-specific operations
type TimeColumn struct {
	Column[time.Time]
}

func (c TimeColumn) After(t time.Time) Condition {
	return Condition{squirrel.Gt{c.String(): t}}
}

func (c TimeColumn) Before(t time.Time) Condition {
	return Condition{squirrel.Lt{c.String(): t}}
}

// BoolColumn provides boolean-specific operations
type BoolColumn struct {
	Column[bool]
}

func (c BoolColumn) IsTrue() Condition {
	return c.Eq(true)
}

func (c BoolColumn) IsFalse() Condition {
	return c.Eq(false)
}

// Condition wraps squirrel conditions for type safety
type Condition struct {
	condition squirrel.Sqlizer
}

// Raw builds a condition from a SQL fragment with ? placeholders
func Raw(sql string, args ...interface{}) Condition {
	return Condition{squirrel.Expr(sql, args...)}
}

func (c Condition) And(other Condition) Condition {
	return Condition{squirrel.And{c.condition, other.condition}}
}

func (c Condition) Or(other Condition) Condition {
	return Condition{squirrel.Or{c.condition, other.condition}}
}

func (c Condition) Not() Condition {
	return Condition{squirrel.Expr("NOT (?)", c.condition)}
}

func (c Condition) ToSqlizer() squirrel.Sqlizer {
	return c.condition
}

// And combines multiple conditions with AND
func And(conditions ...Condition) Condition {
	sqlizers := make([]squirrel.Sqlizer, len(conditions))
	for i, c := range conditions {
		sqlizers[i] = c.condition
	}
	return Condition{squirrel.And(sqlizers)}
}

// Or combines multiple conditions with OR
func Or(conditions ...Condition) Condition {
	sqlizers := make([]squirrel.Sqlizer, len(conditions))
	for i, c := range conditions {
		sqlizers[i] = c.condition
	}
	return Condition{squirrel.Or(sqlizers)}
}

type errSqlizer struct {
	err error
}

func (e errSqlizer) ToSql() (string, []interface{}, error) {
	return "", nil, e.err
}

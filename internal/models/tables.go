package models

import (
	"time"

	"github.com/eleven-am/tasklist/internal/orm"
)

// Table names
const (
	UsersTable        = "users"
	TodosTable        = "todos"
	CategoriesTable   = "categories"
	TodoCategoryTable = "todo_category"
)

// Table metadata used to build repositories

var UserMetadata = orm.Metadata{
	TableName:  UsersTable,
	PrimaryKey: "id",
	Columns:    []string{"id", "username", "email", "password"},
	Generated:  []string{"id"},
}

var TodoMetadata = orm.Metadata{
	TableName:  TodosTable,
	PrimaryKey: "id",
	Columns:    []string{"id", "user_id", "text", "done"},
	Generated:  []string{"id"},
}

var CategoryMetadata = orm.Metadata{
	TableName:  CategoriesTable,
	PrimaryKey: "id",
	Columns:    []string{"id", "user_id", "text"},
	Generated:  []string{"id"},
}

var TodoCategoryMetadata = orm.Metadata{
	TableName:  TodoCategoryTable,
	PrimaryKey: "id",
	Columns:    []string{"id", "todo_id", "category_id", "last_modified"},
	Generated:  []string{"id", "last_modified"},
	Touch:      []string{"last_modified"},
}

// Typed column references for building conditions

var Users = struct {
	ID       orm.NumericColumn[int64]
	Username orm.StringColumn
	Email    orm.StringColumn
}{
	ID:       orm.NumericColumn[int64]{Column: orm.Column[int64]{Name: "id", Table: UsersTable}},
	Username: orm.StringColumn{Column: orm.Column[string]{Name: "username", Table: UsersTable}},
	Email:    orm.StringColumn{Column: orm.Column[string]{Name: "email", Table: UsersTable}},
}

var Todos = struct {
	ID     orm.NumericColumn[int64]
	UserID orm.NumericColumn[int64]
	Text   orm.StringColumn
	Done   orm.BoolColumn
}{
	ID:     orm.NumericColumn[int64]{Column: orm.Column[int64]{Name: "id", Table: TodosTable}},
	UserID: orm.NumericColumn[int64]{Column: orm.Column[int64]{Name: "user_id", Table: TodosTable}},
	Text:   orm.StringColumn{Column: orm.Column[string]{Name: "text", Table: TodosTable}},
	Done:   orm.BoolColumn{Column: orm.Column[bool]{Name: "done", Table: TodosTable}},
}

var Categories = struct {
	ID     orm.NumericColumn[int64]
	UserID orm.NumericColumn[int64]
	Text   orm.StringColumn
}{
	ID:     orm.NumericColumn[int64]{Column: orm.Column[int64]{Name: "id", Table: CategoriesTable}},
	UserID: orm.NumericColumn[int64]{Column: orm.Column[int64]{Name: "user_id", Table: CategoriesTable}},
	Text:   orm.StringColumn{Column: orm.Column[string]{Name: "text", Table: CategoriesTable}},
}

var TodoCategories = struct {
	ID           orm.NumericColumn[int64]
	TodoID       orm.NumericColumn[int64]
	CategoryID   orm.NumericColumn[int64]
	LastModified orm.TimeColumn
}{
	ID:           orm.NumericColumn[int64]{Column: orm.Column[int64]{Name: "id", Table: TodoCategoryTable}},
	TodoID:       orm.NumericColumn[int64]{Column: orm.Column[int64]{Name: "todo_id", Table: TodoCategoryTable}},
	CategoryID:   orm.NumericColumn[int64]{Column: orm.Column[int64]{Name: "category_id", Table: TodoCategoryTable}},
	LastModified: orm.TimeColumn{Column: orm.Column[time.Time]{Name: "last_modified", Table: TodoCategoryTable}},
}

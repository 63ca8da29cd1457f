package migrator

import (
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"

	"github.com/eleven-am/tasklist/internal/models"
)

// Constraint and index names
const (
	UsernameUniqueIndex     = "users_username_key"
	EmailUniqueIndex        = "users_email_key"
	CategoryUniqueIndex     = "uk_categories_user_text"
	TodoCategoryUniqueIndex = "uk_todo_category_pair"
)

// ManagedTables lists the tables this schema owns, in dependency order
var ManagedTables = []string{
	models.UsersTable,
	models.TodosTable,
	models.CategoriesTable,
	models.TodoCategoryTable,
}

func idColumn() *schema.Column {
	return schema.NewColumn("id").SetType(&postgres.SerialType{T: "bigserial"})
}

func refColumn(name string) *schema.Column {
	return schema.NewIntColumn(name, "bigint")
}

func varchar(name string, size int) *schema.Column {
	return schema.NewStringColumn(name, "character varying", schema.StringSize(size))
}

func cascadeFK(symbol string, col *schema.Column, ref *schema.Table) *schema.ForeignKey {
	return schema.NewForeignKey(symbol).
		AddColumns(col).
		SetRefTable(ref).
		AddRefColumns(ref.Columns[0]).
		SetOnDelete(schema.Cascade)
}

// Desired builds the target schema for the given Postgres schema name
func Desired(name string) *schema.Schema {
	userID := idColumn()
	username := varchar("username", models.UsernameMaxLength)
	email := varchar("email", models.EmailMaxLength)
	users := schema.NewTable(models.UsersTable).
		AddColumns(userID, username, email, varchar("password", 255)).
		SetPrimaryKey(schema.NewPrimaryKey(userID)).
		AddIndexes(
			schema.NewUniqueIndex(UsernameUniqueIndex).AddColumns(username),
			schema.NewUniqueIndex(EmailUniqueIndex).AddColumns(email),
		)

	todoID := idColumn()
	todoOwner := refColumn("user_id")
	todos := schema.NewTable(models.TodosTable).
		AddColumns(
			todoID,
			todoOwner,
			varchar("text", models.TextMaxLength),
			schema.NewBoolColumn("done", "boolean").SetDefault(&schema.Literal{V: "false"}),
		).
		SetPrimaryKey(schema.NewPrimaryKey(todoID)).
		AddIndexes(schema.NewIndex("idx_todos_user").AddColumns(todoOwner)).
		AddForeignKeys(cascadeFK("fk_todos_user", todoOwner, users))

	categoryID := idColumn()
	categoryOwner := refColumn("user_id")
	categoryText := varchar("text", models.TextMaxLength)
	categories := schema.NewTable(models.CategoriesTable).
		AddColumns(categoryID, categoryOwner, categoryText).
		SetPrimaryKey(schema.NewPrimaryKey(categoryID)).
		AddIndexes(schema.NewUniqueIndex(CategoryUniqueIndex).AddColumns(categoryOwner, categoryText)).
		AddForeignKeys(cascadeFK("fk_categories_user", categoryOwner, users))

	linkID := idColumn()
	linkTodo := refColumn("todo_id")
	linkCategory := refColumn("category_id")
	todoCategory := schema.NewTable(models.TodoCategoryTable).
		AddColumns(
			linkID,
			linkTodo,
			linkCategory,
			schema.NewTimeColumn("last_modified", "timestamp with time zone").
				SetDefault(&schema.RawExpr{X: "now()"}),
		).
		SetPrimaryKey(schema.NewPrimaryKey(linkID)).
		AddIndexes(
			schema.NewUniqueIndex(TodoCategoryUniqueIndex).AddColumns(linkTodo, linkCategory),
			schema.NewIndex("idx_todo_category_category").AddColumns(linkCategory),
		).
		AddForeignKeys(
			cascadeFK("fk_todo_category_todo", linkTodo, todos),
			cascadeFK("fk_todo_category_category", linkCategory, categories),
		)

	return schema.New(name).AddTables(users, todos, categories, todoCategory)
}

package models

import (
	"fmt"
	"strings"

	"github.com/eleven-am/tasklist/internal/orm"
)

// Todo is a task owned by exactly one user
type Todo struct {
	ID     int64  `db:"id"`
	UserID int64  `db:"user_id"`
	Text   string `db:"text"`
	Done   bool   `db:"done"`
}

// NewTodo builds a todo that is not done
func NewTodo(userID int64, text string) *Todo {
	return &Todo{
		UserID: userID,
		Text:   text,
	}
}

// Toggle flips Done in memory
func (t *Todo) Toggle() {
	t.Done = !t.Done
}

// Status is the human-readable form of Done
func (t *Todo) Status() string {
	if t.Done {
		return "done"
	}
	return "not done"
}

// Validate checks required fields and column lengths
func (t *Todo) Validate() error {
	var errs orm.ValidationErrors
	if t.UserID == 0 {
		errs = append(errs, orm.ValidationError{Field: "user_id", Message: "is required"})
	}
	errs = appendRequired(errs, "text", t.Text, TextMaxLength)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Describe renders the todo with its owner's username and category names
func (t *Todo) Describe(username string, categories []Category) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Text
	}
	return fmt.Sprintf("<Todo: %d | %s | %s | %s | categories [%s]>",
		t.ID, username, t.Text, t.Status(), strings.Join(names, ", "))
}

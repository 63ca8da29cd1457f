package models

import (
	"fmt"
	"strings"

	"github.com/eleven-am/tasklist/internal/orm"
)

// Category is a user-scoped label that can be attached to many todos
type Category struct {
	ID     int64  `db:"id"`
	UserID int64  `db:"user_id"`
	Text   string `db:"text"`
}

func NewCategory(userID int64, text string) *Category {
	return &Category{
		UserID: userID,
		Text:   text,
	}
}

// Validate checks required fields and column lengths
func (c *Category) Validate() error {
	var errs orm.ValidationErrors
	if c.UserID == 0 {
		errs = append(errs, orm.ValidationError{Field: "user_id", Message: "is required"})
	}
	errs = appendRequired(errs, "text", c.Text, TextMaxLength)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Describe renders the category with the text of its linked todos
func (c *Category) Describe(todos []Todo) string {
	titles := make([]string, len(todos))
	for i, t := range todos {
		titles[i] = t.Text
	}
	return fmt.Sprintf("<Category %d | %s | Todos [%s]>", c.ID, c.Text, strings.Join(titles, ", "))
}

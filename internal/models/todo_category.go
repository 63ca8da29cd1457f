package models

import (
	"fmt"
	"time"
)

// TodoCategory links one todo to one category
type TodoCategory struct {
	ID           int64     `db:"id"`
	TodoID       int64     `db:"todo_id"`
	CategoryID   int64     `db:"category_id"`
	LastModified time.Time `db:"last_modified"`
}

func NewTodoCategory(todoID, categoryID int64) *TodoCategory {
	return &TodoCategory{
		TodoID:     todoID,
		CategoryID: categoryID,
	}
}

func (tc *TodoCategory) String() string {
	return fmt.Sprintf("<TodoCategory last modified %s>", tc.LastModified.Format("2006/01/02, 15:04:05"))
}

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/tasklist/internal/orm"
)

func TestNewUser(t *testing.T) {
	u, err := NewUserWithParams("alice", "a@x.com", "pw1", testParams)
	require.NoError(t, err)

	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "a@x.com", u.Email)
	assert.NotEqual(t, "pw1", u.Password)
	assert.True(t, u.CheckPassword("pw1"))
	assert.False(t, u.CheckPassword("pw2"))
	assert.NoError(t, u.Validate())
}

func TestSetPasswordReplacesHash(t *testing.T) {
	u, err := NewUserWithParams("alice", "a@x.com", "pw1", testParams)
	require.NoError(t, err)
	old := u.Password

	require.NoError(t, u.SetPasswordWithParams("pw2", testParams))
	assert.NotEqual(t, old, u.Password)
	assert.True(t, u.CheckPassword("pw2"))
	assert.False(t, u.CheckPassword("pw1"))
}

func TestCheckPasswordWithCorruptHash(t *testing.T) {
	u := &User{Password: "not a hash"}
	assert.False(t, u.CheckPassword("not a hash"))
}

func TestUserValidate(t *testing.T) {
	u := &User{}
	err := u.Validate()
	var verrs orm.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)

	u = &User{Username: strings.Repeat("a", UsernameMaxLength+1), Email: "a@x.com", Password: "hash"}
	require.ErrorAs(t, u.Validate(), &verrs)
	assert.Equal(t, "username", verrs[0].Field)
}

func TestUserString(t *testing.T) {
	u := &User{ID: 1, Username: "alice", Email: "a@x.com"}
	assert.Equal(t, "<User 1 alice - a@x.com>", u.String())
}

func TestTodoToggle(t *testing.T) {
	todo := NewTodo(1, "buy milk")
	assert.False(t, todo.Done)

	todo.Toggle()
	assert.True(t, todo.Done)

	todo.Toggle()
	assert.False(t, todo.Done)
}

func TestTodoValidate(t *testing.T) {
	assert.NoError(t, NewTodo(1, "buy milk").Validate())

	var verrs orm.ValidationErrors
	require.ErrorAs(t, NewTodo(0, "").Validate(), &verrs)
	assert.Len(t, verrs, 2)

	require.ErrorAs(t, NewTodo(1, strings.Repeat("x", TextMaxLength+1)).Validate(), &verrs)
	assert.Equal(t, "text", verrs[0].Field)
}

func TestTodoDescribe(t *testing.T) {
	todo := &Todo{ID: 1, UserID: 1, Text: "buy milk"}
	cats := []Category{{ID: 1, Text: "shopping"}, {ID: 2, Text: "errands"}}

	assert.Equal(t, "<Todo: 1 | alice | buy milk | not done | categories [shopping, errands]>", todo.Describe("alice", cats))

	todo.Done = true
	assert.Equal(t, "<Todo: 1 | alice | buy milk | done | categories []>", todo.Describe("alice", nil))
}

func TestCategory(t *testing.T) {
	c := NewCategory(1, "shopping")
	assert.NoError(t, c.Validate())
	assert.Error(t, NewCategory(1, "").Validate())

	c.ID = 4
	todos := []Todo{{Text: "buy milk"}, {Text: "buy bread"}}
	assert.Equal(t, "<Category 4 | shopping | Todos [buy milk, buy bread]>", c.Describe(todos))
}

func TestTodoCategoryString(t *testing.T) {
	tc := NewTodoCategory(1, 2)
	tc.LastModified = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "<TodoCategory last modified 2024/03/09, 14:05:07>", tc.String())
}

func TestMetadataMatchesModels(t *testing.T) {
	for _, meta := range []orm.Metadata{UserMetadata, TodoMetadata, CategoryMetadata, TodoCategoryMetadata} {
		assert.NoError(t, meta.Validate(), meta.TableName)
	}
}

// Package models defines the users, todos, categories and their join rows,
// along with the table mappings the store uses to persist them.
package models

import (
	"fmt"
	"unicode/utf8"

	"github.com/eleven-am/tasklist/internal/orm"
)

// Column length limits, mirrored by the schema
const (
	UsernameMaxLength = 80
	EmailMaxLength    = 120
	TextMaxLength     = 255
)

// User owns todos and categories. Password always holds a scrypt hash.
type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Email    string `db:"email"`
	Password string `db:"password"`
}

// NewUser builds a user and hashes password with DefaultHashParams
func NewUser(username, email, password string) (*User, error) {
	return NewUserWithParams(username, email, password, DefaultHashParams)
}

// NewUserWithParams builds a user and hashes password with params
func NewUserWithParams(username, email, password string, params HashParams) (*User, error) {
	u := &User{
		Username: username,
		Email:    email,
	}
	if err := u.SetPasswordWithParams(password, params); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the stored hash with a freshly salted hash of password.
// Only the in-memory value changes.
func (u *User) SetPassword(password string) error {
	return u.SetPasswordWithParams(password, DefaultHashParams)
}

func (u *User) SetPasswordWithParams(password string, params HashParams) error {
	hash, err := HashPassword(password, params)
	if err != nil {
		return err
	}
	u.Password = hash
	return nil
}

// CheckPassword reports whether password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	ok, err := CheckPasswordHash(password, u.Password)
	return err == nil && ok
}

// Validate checks required fields and column lengths
func (u *User) Validate() error {
	var errs orm.ValidationErrors
	errs = appendRequired(errs, "username", u.Username, UsernameMaxLength)
	errs = appendRequired(errs, "email", u.Email, EmailMaxLength)
	if u.Password == "" {
		errs = append(errs, orm.ValidationError{Field: "password", Message: "is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (u *User) String() string {
	return fmt.Sprintf("<User %d %s - %s>", u.ID, u.Username, u.Email)
}

func appendRequired(errs orm.ValidationErrors, field, value string, max int) orm.ValidationErrors {
	if value == "" {
		return append(errs, orm.ValidationError{Field: field, Message: "is required"})
	}
	if utf8.RuneCountInString(value) > max {
		return append(errs, orm.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters", max),
		})
	}
	return errs
}

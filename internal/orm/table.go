package orm

import "fmt"

// Metadata describes how a model struct maps onto its table.
// Column names must match the struct's `db` tags.
type Metadata struct {
	TableName  string
	PrimaryKey string
	// Columns lists every selectable column in table order
	Columns []string
	// Generated columns are filled by the database on insert and read back with RETURNING
	Generated []string
	// Touch columns are set to now() on every update
	Touch []string
}

// Validate checks the metadata is usable by a repository
func (m Metadata) Validate() error {
	if m.TableName == "" {
		return fmt.Errorf("%w: missing table name", ErrInvalidStruct)
	}
	if m.PrimaryKey == "" {
		return ErrNoPrimaryKey
	}
	if !contains(m.Columns, m.PrimaryKey) {
		return fmt.Errorf("%w: primary key %q is not a column of %s", ErrInvalidStruct, m.PrimaryKey, m.TableName)
	}
	for _, col := range append(append([]string{}, m.Generated...), m.Touch...) {
		if !contains(m.Columns, col) {
			return fmt.Errorf("%w: %q is not a column of %s", ErrInvalidStruct, col, m.TableName)
		}
	}
	return nil
}

// insertColumns are the columns an INSERT supplies values for
func (m Metadata) insertColumns() []string {
	cols := make([]string, 0, len(m.Columns))
	for _, col := range m.Columns {
		if !contains(m.Generated, col) {
			cols = append(cols, col)
		}
	}
	return cols
}

// updateColumns are the columns an UPDATE copies from the record
func (m Metadata) updateColumns() []string {
	cols := make([]string, 0, len(m.Columns))
	for _, col := range m.Columns {
		if col == m.PrimaryKey || contains(m.Generated, col) || contains(m.Touch, col) {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

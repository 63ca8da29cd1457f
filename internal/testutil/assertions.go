package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TableAssertions checks schema objects in a TestDB
type TableAssertions struct {
	t   *testing.T
	tdb *TestDB
}

func NewTableAssertions(t *testing.T, tdb *TestDB) *TableAssertions {
	return &TableAssertions{t: t, tdb: tdb}
}

func (ta *TableAssertions) AssertTableExists(tableName string) {
	ta.t.Helper()
	exists, err := ta.tdb.TableExists(tableName)
	require.NoError(ta.t, err, "checking table %s", tableName)
	assert.True(ta.t, exists, "table %s does not exist", tableName)
}

func (ta *TableAssertions) AssertColumnType(tableName, columnName, expectedType string) {
	ta.t.Helper()
	actualType, err := ta.tdb.GetColumnType(tableName, columnName)
	require.NoError(ta.t, err, "getting type of %s.%s", tableName, columnName)
	assert.Equal(ta.t, expectedType, actualType, "column %s.%s", tableName, columnName)
}

func (ta *TableAssertions) AssertIndexExists(indexName string) {
	ta.t.Helper()
	exists, err := ta.tdb.IndexExists(indexName)
	require.NoError(ta.t, err, "checking index %s", indexName)
	assert.True(ta.t, exists, "index %s does not exist", indexName)
}

func (ta *TableAssertions) AssertConstraintExists(tableName, constraintName string) {
	ta.t.Helper()
	exists, err := ta.tdb.ConstraintExists(tableName, constraintName)
	require.NoError(ta.t, err, "checking constraint %s", constraintName)
	assert.True(ta.t, exists, "constraint %s on table %s does not exist", constraintName, tableName)
}

// AssertRowCount asserts the number of rows in table
func (ta *TableAssertions) AssertRowCount(table string, expected int64) {
	ta.t.Helper()
	n, err := ta.tdb.CountRows(table)
	require.NoError(ta.t, err, "counting rows in %s", table)
	assert.Equal(ta.t, expected, n, "rows in %s", table)
}

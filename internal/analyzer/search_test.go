package analyzer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupSearchDir creates a directory with two differently shaped files.
func setupSearchDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeInput(t, dir, "people.csv", "name,city\nJohn Smith,Berlin\nJane Roe,Paris\n")
	writeInput(t, dir, "orders.csv", "order,name\n17,john\n18,alice\n")
	return dir
}

func TestSearch_Value(t *testing.T) {
	a := New(WithDiagnostics(&bytes.Buffer{}))
	_, err := a.LoadDirectory(setupSearchDir(t))
	require.NoError(t, err)

	res, err := a.Search("john", nil)
	require.NoError(t, err)

	// Case-insensitive substring across every column of every file.
	// Directory loads are name-ordered, so orders.csv comes first.
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "john", res.Rows[0].Row["name"])
	assert.Equal(t, "orders.csv", res.Rows[0].Source)
	assert.Equal(t, "John Smith", res.Rows[1].Row["name"])
	assert.Equal(t, "people.csv", res.Rows[1].Source)

	// Result columns are the first-seen union over all loaded files.
	assert.Equal(t, []string{"order", "name", "city"}, res.Columns)
}

func TestSearch_Filters(t *testing.T) {
	a := New(WithDiagnostics(&bytes.Buffer{}))
	_, err := a.LoadDirectory(setupSearchDir(t))
	require.NoError(t, err)

	res, err := a.Search("", map[string]string{"name": "j", "city": "berlin"})
	require.NoError(t, err)

	// people.csv: both filters apply, only John Smith/Berlin passes.
	// orders.csv lacks a city column, so only the name filter applies there.
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "john", res.Rows[0].Row["name"])
	assert.Equal(t, "John Smith", res.Rows[1].Row["name"])
}

func TestSearch_ValueWinsOverFilters(t *testing.T) {
	a := New(WithDiagnostics(&bytes.Buffer{}))
	_, err := a.LoadDirectory(setupSearchDir(t))
	require.NoError(t, err)

	res, err := a.Search("paris", map[string]string{"name": "john"})
	require.NoError(t, err)

	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Jane Roe", res.Rows[0].Row["name"])
}

func TestSearch_NoHits(t *testing.T) {
	a := New(WithDiagnostics(&bytes.Buffer{}))
	_, err := a.LoadDirectory(setupSearchDir(t))
	require.NoError(t, err)

	res, err := a.Search("zzz", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestSearch_Errors(t *testing.T) {
	a := New(WithDiagnostics(&bytes.Buffer{}))

	_, err := a.Search("john", nil)
	require.ErrorIs(t, err, ErrNoTables)

	_, err = a.LoadDirectory(setupSearchDir(t))
	require.NoError(t, err)

	_, err = a.Search("", nil)
	require.ErrorIs(t, err, ErrNoQuery)
}

func TestColumnValues(t *testing.T) {
	a := New(WithDiagnostics(&bytes.Buffer{}))
	_, err := a.LoadDirectory(setupSearchDir(t))
	require.NoError(t, err)

	values := a.ColumnValues("name")
	assert.Equal(t, []string{"john", "alice"}, values["orders.csv"])
	assert.Equal(t, []string{"John Smith", "Jane Roe"}, values["people.csv"])

	// Sources lacking the column are omitted entirely.
	values = a.ColumnValues("city")
	assert.NotContains(t, values, "orders.csv")
	assert.Equal(t, []string{"Berlin", "Paris"}, values["people.csv"])

	assert.Empty(t, a.ColumnValues("nonexistent"))
}

package table

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateIndex_Primary(t *testing.T) {
	tbl := New([]string{"company", "date", "metric"})
	idx, err := tbl.DateIndex()
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestDateIndex_ScrapedAlias(t *testing.T) {
	tbl := New([]string{"company", "scraped_date", "metric"})
	idx, err := tbl.DateIndex()
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestDateIndex_Missing(t *testing.T) {
	tbl := New([]string{"company", "metric"})
	_, err := tbl.DateIndex()
	assert.Error(t, err)
}

func TestAppend_RejectsShapeMismatch(t *testing.T) {
	tbl := New([]string{"a", "b"})
	assert.Error(t, tbl.Append(Row{"only-one"}))
	assert.Error(t, tbl.Append(Row{"1", "2", "3"}))
	assert.NoError(t, tbl.Append(Row{"1", "2"}))
	assert.Equal(t, 1, tbl.Len())
}

func TestRowDate(t *testing.T) {
	tbl := New([]string{"company", "date"})
	require.NoError(t, tbl.Append(Row{"Acme", "2025-03-14"}))

	d, err := tbl.RowDate(tbl.Rows[0], 1)
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, 3, int(d.Month()))

	require.NoError(t, tbl.Append(Row{"Acme", "not-a-date"}))
	_, err = tbl.RowDate(tbl.Rows[1], 1)
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	tbl := New([]string{"company", "date"})
	require.NoError(t, tbl.Append(Row{"A", "2025-01-01"}))
	require.NoError(t, tbl.Append(Row{"B", "2025-01-02"}))

	got := tbl.Filter(func(r Row) bool { return r[0] == "B" })
	assert.Equal(t, 1, got.Len())
	assert.Equal(t, "B", got.Rows[0][0])
	// original untouched
	assert.Equal(t, 2, tbl.Len())
}

func TestWriteCSVFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	tbl := New([]string{"company", "date", "note"})
	require.NoError(t, tbl.Append(Row{"Acme", "2025-01-01", "has, comma"}))
	require.NoError(t, tbl.WriteCSVFile(path))

	got, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns, got.Columns)
	assert.Equal(t, tbl.Rows, got.Rows)
}

func TestWriteCSVFile_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	first := New([]string{"a"})
	require.NoError(t, first.Append(Row{"1"}))
	require.NoError(t, first.WriteCSVFile(path))

	second := New([]string{"a"})
	require.NoError(t, second.Append(Row{"2"}))
	require.NoError(t, second.WriteCSVFile(path))

	got, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, Row{"2"}, got.Rows[0])

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "leftover temp file %s", e.Name())
	}
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

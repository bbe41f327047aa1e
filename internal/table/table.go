// Package table holds the in-memory tabular model shared by the master
// stores, the partitioner, and the catalog builder. A Table is a header
// plus string-valued rows; typed access is limited to the two columns the
// engine actually depends on, the date and the entity identifier.
package table

import (
	"time"

	"github.com/rotisserie/eris"
)

// DateLayout is the calendar date format used in every persisted file.
const DateLayout = "2006-01-02"

// ErrNoDateColumn is returned when a table carries neither a "date" nor a
// "scraped_date" column and therefore cannot be partitioned.
var ErrNoDateColumn = eris.New("table: no date column")

// Row is a single observation, one cell per column.
type Row []string

// Table is an ordered set of rows under a fixed header.
type Table struct {
	Columns []string
	Rows    []Row
}

// New returns an empty table with the given header.
func New(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// DateIndex locates the date column, accepting the legacy "scraped_date"
// name as an alias.
func (t *Table) DateIndex() (int, error) {
	if i := t.ColumnIndex("date"); i >= 0 {
		return i, nil
	}
	if i := t.ColumnIndex("scraped_date"); i >= 0 {
		return i, nil
	}
	return -1, ErrNoDateColumn
}

// EntityIndex locates the entity identifier column ("company", with
// "entity" as an alias), or returns -1 when absent.
func (t *Table) EntityIndex() int {
	if i := t.ColumnIndex("company"); i >= 0 {
		return i
	}
	return t.ColumnIndex("entity")
}

// RowDate parses the date cell of the given row.
func (t *Table) RowDate(r Row, dateIdx int) (time.Time, error) {
	if dateIdx < 0 || dateIdx >= len(r) {
		return time.Time{}, eris.Errorf("table: row has no cell at date index %d", dateIdx)
	}
	d, err := time.Parse(DateLayout, r[dateIdx])
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "table: parse date %q", r[dateIdx])
	}
	return d, nil
}

// Append adds a row. Rows shorter or longer than the header are rejected
// so a malformed generator cannot corrupt a persisted store.
func (t *Table) Append(r Row) error {
	if len(r) != len(t.Columns) {
		return eris.Errorf("table: row has %d cells, header has %d", len(r), len(t.Columns))
	}
	t.Rows = append(t.Rows, r)
	return nil
}

// Filter returns a new table sharing this table's header and containing
// only the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.Columns)
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

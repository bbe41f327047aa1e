package pipeline

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/signalforge/datamart/internal/table"
)

// fakeVertical is a controllable test double for generators.
type fakeVertical struct {
	slug     string
	columns  []string
	generate func(date time.Time) []table.Row
}

func (f *fakeVertical) Slug() string         { return f.slug }
func (f *fakeVertical) Name() string         { return "Fake " + f.slug }
func (f *fakeVertical) BaseFilename() string { return f.slug + "_digest" }

func (f *fakeVertical) Columns() []string {
	if f.columns != nil {
		return f.columns
	}
	return []string{"company", "date", "metric"}
}

func (f *fakeVertical) Generate(_ *rand.Rand, date time.Time) []table.Row {
	if f.generate != nil {
		return f.generate(date)
	}
	return []table.Row{
		{"Acme", date.Format(table.DateLayout), "1"},
		{"Globex", date.Format(table.DateLayout), "2"},
	}
}

// rowsFor builds a one-metric table with one row per given date string.
func rowsFor(dates ...string) *table.Table {
	t := table.New([]string{"company", "date", "metric"})
	for i, d := range dates {
		t.Rows = append(t.Rows, table.Row{"Acme", d, fmt.Sprintf("%d", i)})
	}
	return t
}

func day(s string) time.Time {
	d, err := time.Parse(table.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

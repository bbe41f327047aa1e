package pipeline

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalforge/datamart/internal/store"
	"github.com/signalforge/datamart/internal/table"
)

func newTestMerger(t *testing.T, backfillDays int) (*Merger, *store.CSVStore) {
	t.Helper()
	st, err := store.NewCSVStore(t.TempDir())
	require.NoError(t, err)
	return NewMerger(st, backfillDays), st
}

func mergeRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 7))
}

func TestMergeDay_ColdStartBackfill(t *testing.T) {
	m, st := newTestMerger(t, 3)
	v := &fakeVertical{slug: "alpha"}

	res, err := m.MergeDay(context.Background(), v, mergeRand(), day("2025-06-10"))
	require.NoError(t, err)

	assert.True(t, res.Backfilled)
	// backfill window is inclusive of asOf: 4 dates x 2 companies
	assert.Equal(t, 8, res.StoreRows)
	assert.True(t, st.Exists(v.BaseFilename()))

	persisted, err := st.Load(context.Background(), v.BaseFilename())
	require.NoError(t, err)
	assert.Equal(t, 8, persisted.Len())

	dates := make(map[string]bool)
	for _, r := range persisted.Rows {
		dates[r[1]] = true
	}
	for _, d := range []string{"2025-06-07", "2025-06-08", "2025-06-09", "2025-06-10"} {
		assert.True(t, dates[d], "missing backfilled date %s", d)
	}
}

func TestMergeDay_SameDayIdempotent(t *testing.T) {
	m, st := newTestMerger(t, 2)
	metric := "first"
	v := &fakeVertical{
		slug: "alpha",
		generate: func(date time.Time) []table.Row {
			return []table.Row{{"Acme", date.Format(table.DateLayout), metric}}
		},
	}
	asOf := day("2025-06-10")

	_, err := m.MergeDay(context.Background(), v, mergeRand(), asOf)
	require.NoError(t, err)

	// Re-run the same day with different generator output: the second
	// run's rows replace the first's, never union with them.
	metric = "second"
	res, err := m.MergeDay(context.Background(), v, mergeRand(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 3, res.StoreRows) // 3 backfilled dates, one row each

	persisted, err := st.Load(context.Background(), v.BaseFilename())
	require.NoError(t, err)
	count := 0
	for _, r := range persisted.Rows {
		if r[1] == "2025-06-10" {
			count++
			assert.Equal(t, "second", r[2])
		}
	}
	assert.Equal(t, 1, count, "exactly one row set for the re-run day")
}

func TestMergeDay_NextDayAppends(t *testing.T) {
	m, st := newTestMerger(t, 1)
	v := &fakeVertical{slug: "alpha"}

	_, err := m.MergeDay(context.Background(), v, mergeRand(), day("2025-06-10"))
	require.NoError(t, err)

	res, err := m.MergeDay(context.Background(), v, mergeRand(), day("2025-06-11"))
	require.NoError(t, err)
	assert.False(t, res.Backfilled)
	assert.Equal(t, 6, res.StoreRows) // (2 backfill dates + 1 new) x 2 companies

	persisted, err := st.Load(context.Background(), v.BaseFilename())
	require.NoError(t, err)
	assert.Equal(t, 6, persisted.Len())
}

func TestMergeDay_NoDuplicateEventKeys(t *testing.T) {
	m, st := newTestMerger(t, 2)
	v := &fakeVertical{slug: "alpha"}

	for _, d := range []string{"2025-06-10", "2025-06-10", "2025-06-11", "2025-06-11", "2025-06-12"} {
		_, err := m.MergeDay(context.Background(), v, mergeRand(), day(d))
		require.NoError(t, err)
	}

	persisted, err := st.Load(context.Background(), v.BaseFilename())
	require.NoError(t, err)

	keys := make(map[string]bool)
	for _, r := range persisted.Rows {
		k := r[0] + "|" + r[1]
		assert.False(t, keys[k], "duplicate event key %s", k)
		keys[k] = true
	}
	assert.Equal(t, persisted.Len(), len(keys))
}

func TestMergeDay_MasterWithoutDateColumn(t *testing.T) {
	m, st := newTestMerger(t, 1)
	v := &fakeVertical{slug: "alpha"}

	broken := table.New([]string{"company", "metric"})
	require.NoError(t, broken.Append(table.Row{"Acme", "1"}))
	require.NoError(t, st.Save(context.Background(), v.BaseFilename(), broken))

	_, err := m.MergeDay(context.Background(), v, mergeRand(), day("2025-06-10"))
	assert.Error(t, err)

	// the broken master is left untouched
	persisted, err := st.Load(context.Background(), v.BaseFilename())
	require.NoError(t, err)
	assert.Equal(t, 1, persisted.Len())
}

func TestDedupEventKeys_ExplicitIDWins(t *testing.T) {
	tbl := table.New([]string{"id", "company", "date", "metric"})
	require.NoError(t, tbl.Append(table.Row{"r1", "Acme", "2025-01-01", "old"}))
	require.NoError(t, tbl.Append(table.Row{"r2", "Acme", "2025-01-02", "x"}))
	require.NoError(t, tbl.Append(table.Row{"r1", "Acme", "2025-01-01", "new"}))

	got, err := dedupEventKeys(tbl)
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())
	// most recently merged row wins, original position preserved
	assert.Equal(t, table.Row{"r1", "Acme", "2025-01-01", "new"}, got.Rows[0])
	assert.Equal(t, table.Row{"r2", "Acme", "2025-01-02", "x"}, got.Rows[1])
}

func TestDedupEventKeys_EntityDateKey(t *testing.T) {
	tbl := rowsFor("2025-01-01", "2025-01-01", "2025-01-02")
	got, err := dedupEventKeys(tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}

func TestMergeDay_PanickingGeneratorLeavesStoreUntouched(t *testing.T) {
	m, st := newTestMerger(t, 1)
	v := &fakeVertical{slug: "alpha"}

	// healthy run first: two dates of rows persisted
	res, err := m.MergeDay(context.Background(), v, mergeRand(), day("2025-06-10"))
	require.NoError(t, err)
	require.Equal(t, 4, res.StoreRows)

	// same-day re-run now panics; overwrite-on-regenerate must not fire
	v.generate = func(time.Time) []table.Row {
		panic("generator bug")
	}
	_, err = m.MergeDay(context.Background(), v, mergeRand(), day("2025-06-10"))
	require.Error(t, err)

	persisted, err := st.Load(context.Background(), v.BaseFilename())
	require.NoError(t, err)
	assert.Equal(t, 4, persisted.Len())
}

func TestMergeDay_PanicDuringBackfillPersistsNothing(t *testing.T) {
	m, st := newTestMerger(t, 2)
	v := &fakeVertical{
		slug: "alpha",
		generate: func(time.Time) []table.Row {
			panic("generator bug")
		},
	}

	_, err := m.MergeDay(context.Background(), v, mergeRand(), day("2025-06-10"))
	require.Error(t, err)
	// no header-only master may appear, or the backfill would be forfeited
	assert.False(t, st.Exists(v.BaseFilename()))

	// the next healthy run still backfills the full window
	v.generate = nil
	res, err := m.MergeDay(context.Background(), v, mergeRand(), day("2025-06-10"))
	require.NoError(t, err)
	assert.True(t, res.Backfilled)
	assert.Equal(t, 6, res.StoreRows)
}

package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/signalforge/datamart/internal/table"
)

// CSVStore implements MasterStore as one CSV file per vertical at the root
// of the data directory.
type CSVStore struct {
	dir string
}

// NewCSVStore creates the data directory if needed and returns a store
// rooted there.
func NewCSVStore(dir string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "store: create data dir %s", dir)
	}
	return &CSVStore{dir: dir}, nil
}

// Dir returns the data directory root.
func (s *CSVStore) Dir() string { return s.dir }

func (s *CSVStore) path(baseFilename string) string {
	return filepath.Join(s.dir, baseFilename+".csv")
}

func (s *CSVStore) Load(ctx context.Context, baseFilename string) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "store: load cancelled")
	}
	t, err := table.ReadCSVFile(s.path(baseFilename))
	if err != nil {
		return nil, eris.Wrapf(err, "store: load %s", baseFilename)
	}
	return t, nil
}

func (s *CSVStore) Save(ctx context.Context, baseFilename string, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "store: save cancelled")
	}
	if err := t.WriteCSVFile(s.path(baseFilename)); err != nil {
		return eris.Wrapf(err, "store: save %s", baseFilename)
	}
	return nil
}

func (s *CSVStore) Exists(baseFilename string) bool {
	_, err := os.Stat(s.path(baseFilename))
	return err == nil
}

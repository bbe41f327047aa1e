package pipeline

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/signalforge/datamart/internal/model"
)

// StatusFile is the ledger filename under the data directory.
const StatusFile = "status.json"

// Ledger records run observability data in status.json. Every write
// overwrites prior state; failures are logged and swallowed because the
// ledger must never block partitioning or catalog building.
type Ledger struct {
	dataDir string
}

// NewLedger returns a ledger rooted at the data directory.
func NewLedger(dataDir string) *Ledger {
	return &Ledger{dataDir: dataDir}
}

// SnapshotSizes walks the data tree and records the size of every CSV,
// keyed by filename. Unreadable entries are skipped; the snapshot is
// advisory input for byte-delta accounting only.
func SnapshotSizes(dataDir string) map[string]int64 {
	sizes := make(map[string]int64)
	_ = filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".csv") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		sizes[d.Name()] = info.Size()
		return nil
	})
	return sizes
}

// Record computes the byte delta between two size snapshots and persists
// the ledger. Only growth counts: a file that shrank contributes nothing
// and is not an error. The computed status is returned even when the
// write fails.
func (l *Ledger) Record(before, after map[string]int64, now time.Time) model.Status {
	var totalAdded, totalSize int64
	details := make(map[string]int64)
	for name, size := range after {
		totalSize += size
		if diff := size - before[name]; diff > 0 {
			totalAdded += diff
			details[name] = diff
		}
	}

	status := model.Status{
		LastUpdate:         now.UTC().Format("2006-01-02 15:04:05 UTC"),
		StatusLine:         "Premium Data Pipeline Active",
		TotalDataSizeBytes: totalSize,
		TotalAddedBytes:    totalAdded,
		Details:            details,
	}

	if err := writeJSONAtomic(filepath.Join(l.dataDir, StatusFile), status); err != nil {
		zap.L().Warn("ledger write failed", zap.Error(err))
	}
	return status
}

// Read loads the persisted ledger. Callers treat any error as "no status
// yet"; a corrupt ledger is never fatal.
func (l *Ledger) Read() (*model.Status, error) {
	data, err := os.ReadFile(filepath.Join(l.dataDir, StatusFile))
	if err != nil {
		return nil, eris.Wrap(err, "ledger: read status")
	}
	var status model.Status
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, eris.Wrap(err, "ledger: unmarshal status")
	}
	return &status, nil
}

// writeJSONAtomic marshals v and replaces path in one rename, so readers
// never observe a partial write.
func writeJSONAtomic(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "marshal %s", filepath.Base(path))
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "rename %s -> %s", tmpName, path)
	}
	return nil
}

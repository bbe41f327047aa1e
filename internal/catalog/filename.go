package catalog

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/rotisserie/eris"

	"github.com/signalforge/datamart/internal/model"
)

// ErrNotFound is returned when a valid filename matches no product file.
var ErrNotFound = eris.New("catalog: file not found")

// filenamePattern matches exactly the character set the partitioner's own
// naming scheme produces. Path separators, parent references, and odd
// extensions are all rejected before any filesystem lookup.
var filenamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+\.csv$`)

// ValidateFilename rejects download names outside the engine's naming
// scheme.
func ValidateFilename(name string) error {
	if !filenamePattern.MatchString(name) {
		return eris.Errorf("catalog: invalid filename %q", name)
	}
	return nil
}

// Resolve validates a download filename and locates the product file in
// the tier directories, returning its absolute path.
func Resolve(dataDir, name string) (string, error) {
	if err := ValidateFilename(name); err != nil {
		return "", err
	}
	for _, tier := range model.Tiers {
		path := filepath.Join(dataDir, tier.DirName(), name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", eris.Wrapf(ErrNotFound, "%s", name)
}

package table

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// ReadCSV parses a comma-delimited table with a header row.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // validated against the header below

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("table: empty csv")
	}
	if err != nil {
		return nil, eris.Wrap(err, "table: read header")
	}

	t := New(header)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "table: read row")
		}
		if err := t.Append(Row(record)); err != nil {
			return nil, err
		}
	}
}

// ReadCSVFile reads a table from the given path.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "table: open %s", path)
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSV writes the table as comma-delimited UTF-8 with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return eris.Wrap(err, "table: write header")
	}
	for _, r := range t.Rows {
		if err := writer.Write(r); err != nil {
			return eris.Wrap(err, "table: write row")
		}
	}
	writer.Flush()
	return eris.Wrap(writer.Error(), "table: flush")
}

// WriteCSVFile persists the table with all-or-nothing semantics: the data
// is written to a temporary file in the destination directory and renamed
// over the target, so a failed write leaves any previous file untouched.
func (t *Table) WriteCSVFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "table: create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if err := t.WriteCSV(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "table: close %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "table: rename %s -> %s", tmpName, path)
	}
	return nil
}

package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ritzau/deflex-graph/pkg/finder"
	"github.com/ritzau/deflex-graph/pkg/logging"
)

// LoadCSV reads every table file in dir into a collection. Each file holds
// two header rows (top and sub column level) and the row index in the first
// column; the table is named after the file without its extension.
func LoadCSV(dir string) (Collection, error) {
	files, err := finder.FindTableFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("finding table files: %w", err)
	}

	c := make(Collection)
	for _, path := range files {
		t, err := ReadCSVFile(path)
		if err != nil {
			return nil, err
		}
		c.Add(t)
		logging.Debug("loaded table", "name", t.Name, "rows", len(t.Index), "columns", len(t.Columns))
	}

	logging.Info("loaded table collection", "path", dir, "tables", len(c))
	return c, nil
}

// ReadCSVFile reads a single table file
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return fromRecords(name, records)
}

func fromRecords(name string, records [][]string) (*Table, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("table %q: need two header rows: %w", name, ErrMalformedTable)
	}

	tops, subs := records[0], records[1]
	if len(tops) != len(subs) {
		return nil, fmt.Errorf("table %q: header rows differ in length: %w", name, ErrMalformedTable)
	}

	columns := make([]Column, 0, len(tops)-1)
	for j := 1; j < len(tops); j++ {
		columns = append(columns, Column{Top: tops[j], Sub: subs[j]})
	}

	body := records[2:]
	// pandas writes the index name on its own line below the headers. A
	// lone blank row is data.
	if len(body) > 1 && isIndexNameRow(body[0]) {
		body = body[1:]
	}

	index := make([]string, 0, len(body))
	for _, rec := range body {
		index = append(index, rec[0])
	}

	t := New(name, index, columns)
	for i, rec := range body {
		if len(rec) != len(tops) {
			return nil, fmt.Errorf("table %q: row %q has %d fields, expected %d: %w",
				name, rec[0], len(rec), len(tops), ErrMalformedTable)
		}
		copy(t.cells[i], rec[1:])
	}

	return t, nil
}

func isIndexNameRow(rec []string) bool {
	for _, cell := range rec[1:] {
		if cell != "" {
			return false
		}
	}
	return len(rec) > 1
}

// WriteCSV replaces dir with one file per table of the collection.
// Spaces in table names become underscores.
func (c Collection) WriteCSV(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+finder.TableFileExt)
		if err := c[name].WriteCSVFile(path); err != nil {
			return err
		}
	}

	logging.Info("saved table collection", "path", dir, "tables", len(names))
	return nil
}

// WriteCSVFile writes the table in the format LoadCSV reads
func (t *Table) WriteCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	tops := make([]string, 0, len(t.Columns)+1)
	subs := make([]string, 0, len(t.Columns)+1)
	tops = append(tops, "")
	subs = append(subs, "")
	for _, col := range t.Columns {
		tops = append(tops, col.Top)
		subs = append(subs, col.Sub)
	}
	if err := w.Write(tops); err != nil {
		return err
	}
	if err := w.Write(subs); err != nil {
		return err
	}

	for i, row := range t.Index {
		rec := append([]string{row}, t.cells[i]...)
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedTable is returned when a table, row, column or cell a caller
// needs is absent or unreadable.
var ErrMalformedTable = errors.New("malformed table")

// Column is a two-level column key, e.g. (region, technology)
type Column struct {
	Top string
	Sub string
}

func (c Column) String() string {
	return fmt.Sprintf("(%s, %s)", c.Top, c.Sub)
}

// Table is a rectangular table with a row index and two-level columns.
// Cells are kept as text and parsed on access.
type Table struct {
	Name    string
	Index   []string
	Columns []Column

	rows  map[string]int
	cols  map[Column]int
	cells [][]string
}

// New creates an empty table with the given row index and columns
func New(name string, index []string, columns []Column) *Table {
	t := &Table{
		Name:    name,
		Index:   index,
		Columns: columns,
		rows:    make(map[string]int, len(index)),
		cols:    make(map[Column]int, len(columns)),
		cells:   make([][]string, len(index)),
	}
	for i, row := range index {
		t.rows[row] = i
		t.cells[i] = make([]string, len(columns))
	}
	for j, col := range columns {
		t.cols[col] = j
	}
	return t
}

func (t *Table) malformed(format string, args ...any) error {
	return fmt.Errorf("table %q: %s: %w", t.Name, fmt.Sprintf(format, args...), ErrMalformedTable)
}

// Set stores the text of a cell
func (t *Table) Set(row string, col Column, value string) error {
	i, j, err := t.locate(row, col)
	if err != nil {
		return err
	}
	t.cells[i][j] = value
	return nil
}

// SetFloat stores a number in a cell
func (t *Table) SetFloat(row string, col Column, value float64) error {
	return t.Set(row, col, formatFloat(value))
}

// SetSeries fills a column from top to bottom
func (t *Table) SetSeries(col Column, values []float64) error {
	j, ok := t.cols[col]
	if !ok {
		return t.malformed("missing column %s", col)
	}
	if len(values) != len(t.Index) {
		return t.malformed("series for %s has %d values, index has %d", col, len(values), len(t.Index))
	}
	for i, v := range values {
		t.cells[i][j] = formatFloat(v)
	}
	return nil
}

func (t *Table) locate(row string, col Column) (int, int, error) {
	i, ok := t.rows[row]
	if !ok {
		return 0, 0, t.malformed("missing row %q", row)
	}
	j, ok := t.cols[col]
	if !ok {
		return 0, 0, t.malformed("missing column %s", col)
	}
	return i, j, nil
}

// Text returns the raw text of a cell
func (t *Table) Text(row string, col Column) (string, error) {
	i, j, err := t.locate(row, col)
	if err != nil {
		return "", err
	}
	return t.cells[i][j], nil
}

// Float returns a cell as a number. "inf" and "nan" are accepted, a blank
// cell is NaN.
func (t *Table) Float(row string, col Column) (float64, error) {
	s, err := t.Text(row, col)
	if err != nil {
		return 0, err
	}
	v, err := parseFloat(s)
	if err != nil {
		return 0, t.malformed("cell [%q, %s]: %v", row, col, err)
	}
	return v, nil
}

// Series returns a whole column as numbers in index order
func (t *Table) Series(col Column) ([]float64, error) {
	j, ok := t.cols[col]
	if !ok {
		return nil, t.malformed("missing column %s", col)
	}
	values := make([]float64, len(t.Index))
	for i := range t.Index {
		v, err := parseFloat(t.cells[i][j])
		if err != nil {
			return nil, t.malformed("cell [%q, %s]: %v", t.Index[i], col, err)
		}
		values[i] = v
	}
	return values, nil
}

// HasColumn reports whether the column exists
func (t *Table) HasColumn(col Column) bool {
	_, ok := t.cols[col]
	return ok
}

// RowIndex returns the position of row in the index
func (t *Table) RowIndex(row string) (int, bool) {
	i, ok := t.rows[row]
	return i, ok
}

// HasRow reports whether the row exists
func (t *Table) HasRow(row string) bool {
	_, ok := t.rows[row]
	return ok
}

// HasTop reports whether any column has the given first level
func (t *Table) HasTop(top string) bool {
	for _, col := range t.Columns {
		if col.Top == top {
			return true
		}
	}
	return false
}

// Tops returns the distinct first column levels in column order
func (t *Table) Tops() []string {
	seen := make(map[string]bool)
	var tops []string
	for _, col := range t.Columns {
		if !seen[col.Top] {
			seen[col.Top] = true
			tops = append(tops, col.Top)
		}
	}
	return tops
}

// Subs returns the second levels under top in column order
func (t *Table) Subs(top string) []string {
	var subs []string
	for _, col := range t.Columns {
		if col.Top == top {
			subs = append(subs, col.Sub)
		}
	}
	return subs
}

// ColumnsWithSub returns all columns whose second level is sub
func (t *Table) ColumnsWithSub(sub string) []Column {
	var cols []Column
	for _, col := range t.Columns {
		if col.Sub == sub {
			cols = append(cols, col)
		}
	}
	return cols
}

// CheckNaN returns an error naming every column that contains a NaN or an
// empty cell.
func (t *Table) CheckNaN() error {
	var bad []string
	for j, col := range t.Columns {
		for i := range t.Index {
			// Text cells are fine, only blanks and NaN are missing values
			if v, err := parseFloat(t.cells[i][j]); err != nil || !math.IsNaN(v) {
				continue
			}
			bad = append(bad, col.String())
			break
		}
	}
	if len(bad) > 0 {
		return t.malformed("NaN values in columns %s", strings.Join(bad, ", "))
	}
	return nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Collection is a set of tables keyed by name
type Collection map[string]*Table

// Get returns the named table
func (c Collection) Get(name string) (*Table, error) {
	t, ok := c[name]
	if !ok {
		return nil, fmt.Errorf("missing table %q: %w", name, ErrMalformedTable)
	}
	return t, nil
}

// Has reports whether the named table is present
func (c Collection) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Add stores a table under its name
func (c Collection) Add(t *Table) {
	c[t.Name] = t
}

package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

var (
	ErrDataNotFound   = errors.New("data not found")
	ErrColumnNotFound = errors.New("column not found")
)

// Table is a CSV-shaped record table: ordered column names and rows of raw
// cells. Every row carries exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

func (t *Table) Len() int { return len(t.Rows) }

func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

func (t *Table) Append(row ...string) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, append([]string(nil), row...))
	return nil
}

func (t *Table) Column(name string) ([]string, error) {
	j := t.Index(name)
	if j < 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[j]
	}
	return out, nil
}

func (t *Table) Float(row int, name string) (float64, error) {
	j := t.Index(name)
	if j < 0 {
		return 0, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(t.Rows[row][j]), 64)
	if err != nil {
		return 0, fmt.Errorf("row %d column %s: %w", row, name, err)
	}
	return v, nil
}

// AddColumn appends a column. values must have one entry per row.
func (t *Table) AddColumn(name string, values []string) error {
	if t.Has(name) {
		return fmt.Errorf("column %s already exists", name)
	}
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), len(t.Rows))
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// Project returns a new table holding only cols, in the given order.
func (t *Table) Project(cols []string) (*Table, error) {
	idx := make([]int, len(cols))
	var missing []string
	for k, c := range cols {
		idx[k] = t.Index(c)
		if idx[k] < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, strings.Join(missing, ", "))
	}
	out := &Table{Columns: append([]string(nil), cols...), Rows: make([][]string, len(t.Rows))}
	for i, r := range t.Rows {
		row := make([]string, len(idx))
		for k, j := range idx {
			row[k] = r[j]
		}
		out.Rows[i] = row
	}
	return out, nil
}

// Drop returns a new table without the named columns. Unknown names are ignored.
func (t *Table) Drop(cols ...string) *Table {
	skip := map[string]bool{}
	for _, c := range cols {
		skip[c] = true
	}
	keep := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !skip[c] {
			keep = append(keep, c)
		}
	}
	out, _ := t.Project(keep)
	return out
}

// Select returns the rows at idx, in that order.
func (t *Table) Select(idx []int) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...), Rows: make([][]string, len(idx))}
	for k, i := range idx {
		out.Rows[k] = append([]string(nil), t.Rows[i]...)
	}
	return out
}

func (t *Table) Clone() *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...), Rows: make([][]string, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// IsMissing reports whether a cell holds no value.
func IsMissing(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "na", "nan", "null", "none":
		return true
	}
	return false
}

func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDataNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no header row", path)
	}
	t := NewTable(rows[0]...)
	for i := 1; i < len(rows); i++ {
		if err := t.Append(rows[i]...); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
		}
	}
	return t, nil
}

// WriteCSV replaces path with the table contents. The file is written next
// to the destination first and renamed over it.
func WriteCSV(path string, t *Table) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = f.Chmod(0o644); err != nil {
		_ = f.Close()
		return err
	}

	w := csv.NewWriter(f)
	if err = w.Write(t.Columns); err == nil {
		err = w.WriteAll(t.Rows)
	}
	err = multierr.Append(err, f.Close())
	if err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

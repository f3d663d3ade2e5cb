package data

import (
	"math/rand/v2"
)

const DefaultLocationSeed uint64 = 42

// WithLocation adds the synthetic binary location column to t when it is
// absent. It reports whether the column was added; an existing column is
// never rewritten.
func WithLocation(t *Table, seed uint64) bool {
	if t.Has(LocationColumn) {
		return false
	}
	r := rand.New(rand.NewPCG(seed, seed))
	values := make([]string, t.Len())
	for i := range values {
		if r.Uint64()&1 == 1 {
			values[i] = "1"
		} else {
			values[i] = "0"
		}
	}
	// length always matches and the column is known to be absent
	_ = t.AddColumn(LocationColumn, values)
	return true
}

// AddLocation applies WithLocation to the CSV at path and writes the table
// back in place. A missing file yields ErrDataNotFound and nothing is
// created.
func AddLocation(path string, seed uint64) (bool, error) {
	t, err := ReadCSV(path)
	if err != nil {
		return false, err
	}
	if !WithLocation(t, seed) {
		return false, nil
	}
	if err := WriteCSV(path, t); err != nil {
		return false, err
	}
	return true, nil
}

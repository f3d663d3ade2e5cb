package features

import (
	"fmt"
	"strconv"
	"strings"

	"irisml/internal/data"
)

// Matrix converts every cell of t to float64, row-major, in column order.
func Matrix(t *data.Table) ([][]float64, error) {
	X := make([][]float64, t.Len())
	for i, r := range t.Rows {
		v, err := Vectorize(t.Columns, r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		X[i] = v
	}
	return X, nil
}

// Vectorize parses one row of cells named by names.
func Vectorize(names, cells []string) ([]float64, error) {
	vec := make([]float64, len(cells))
	for j, c := range cells {
		if data.IsMissing(c) {
			return nil, fmt.Errorf("column %s: missing value", names[j])
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", names[j], err)
		}
		vec[j] = v
	}
	return vec, nil
}

// Example returns the first row of X as a column -> value map.
func Example(names []string, X [][]float64) map[string]float64 {
	if len(X) == 0 {
		return nil
	}
	out := make(map[string]float64, len(names))
	for j, n := range names {
		out[n] = X[0][j]
	}
	return out
}

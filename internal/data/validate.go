package data

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/stat"
)

const MinClasses = 3

var ErrInvalidData = errors.New("invalid data")

// Validate checks the table against the dataset contract: required columns
// present, no missing value in a required column, numeric features, and at
// least MinClasses label classes. Every violation is reported.
func Validate(t *Table) error {
	var err error
	var missingCols []string
	for _, c := range RequiredColumns {
		if !t.Has(c) {
			missingCols = append(missingCols, c)
		}
	}
	if len(missingCols) > 0 {
		err = multierr.Append(err, fmt.Errorf("%w: missing columns %s", ErrInvalidData, strings.Join(missingCols, ", ")))
	}

	for _, c := range RequiredColumns {
		j := t.Index(c)
		if j < 0 {
			continue
		}
		nulls := 0
		for _, r := range t.Rows {
			if IsMissing(r[j]) {
				nulls++
			}
		}
		if nulls > 0 {
			err = multierr.Append(err, fmt.Errorf("%w: column %s has %d missing values", ErrInvalidData, c, nulls))
		}
	}

	for _, c := range FeatureColumns {
		j := t.Index(c)
		if j < 0 {
			continue
		}
		for i, r := range t.Rows {
			if IsMissing(r[j]) {
				continue
			}
			if _, perr := strconv.ParseFloat(strings.TrimSpace(r[j]), 64); perr != nil {
				err = multierr.Append(err, fmt.Errorf("%w: column %s row %d is not numeric: %q", ErrInvalidData, c, i, r[j]))
				break
			}
		}
	}

	if labels, lerr := t.Column(SpeciesColumn); lerr == nil {
		if n := len(ClassCounts(labels)); n < MinClasses {
			err = multierr.Append(err, fmt.Errorf("%w: %s has %d classes, want at least %d", ErrInvalidData, SpeciesColumn, n, MinClasses))
		}
	}
	return err
}

// ClassCounts counts the non-missing labels.
func ClassCounts(labels []string) map[string]int {
	out := map[string]int{}
	for _, l := range labels {
		if IsMissing(l) {
			continue
		}
		out[l]++
	}
	return out
}

type FeatureStats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

type Summary struct {
	Rows     int
	Classes  map[string]int
	Features map[string]FeatureStats
}

// ClassNames returns the summary classes sorted.
func (s Summary) ClassNames() []string {
	out := make([]string, 0, len(s.Classes))
	for c := range s.Classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func Summarize(t *Table) (Summary, error) {
	s := Summary{Rows: t.Len(), Features: map[string]FeatureStats{}}
	labels, err := t.Column(SpeciesColumn)
	if err != nil {
		return s, err
	}
	s.Classes = ClassCounts(labels)
	for _, c := range FeatureColumns {
		if !t.Has(c) {
			continue
		}
		xs := make([]float64, 0, t.Len())
		for i := 0; i < t.Len(); i++ {
			v, err := t.Float(i, c)
			if err != nil {
				return s, err
			}
			xs = append(xs, v)
		}
		if len(xs) == 0 {
			continue
		}
		mean, std := stat.MeanStdDev(xs, nil)
		fs := FeatureStats{Mean: mean, StdDev: std, Min: xs[0], Max: xs[0]}
		for _, v := range xs {
			if v < fs.Min {
				fs.Min = v
			}
			if v > fs.Max {
				fs.Max = v
			}
		}
		s.Features[c] = fs
	}
	return s, nil
}

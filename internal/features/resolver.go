// Package features decides which table columns a fitted model reads.
package features

import (
	"errors"
	"fmt"
	"strings"

	"irisml/internal/data"
)

var ErrFeatureSchemaMismatch = errors.New("feature schema mismatch")

// MissingFeatureError names the recorded model features the table lacks.
type MissingFeatureError struct {
	Missing []string
}

func (e *MissingFeatureError) Error() string {
	return "model was trained on features not present in the data: " + strings.Join(e.Missing, ", ")
}

func (e *MissingFeatureError) Is(target error) bool { return target == ErrFeatureSchemaMismatch }

// FeatureCountError reports a resolved column set whose width differs from
// the width the model was fitted on.
type FeatureCountError struct {
	Want    int
	Columns []string
}

func (e *FeatureCountError) Error() string {
	return fmt.Sprintf("model expects %d features, resolved %d: %s", e.Want, len(e.Columns), strings.Join(e.Columns, ", "))
}

func (e *FeatureCountError) Is(target error) bool { return target == ErrFeatureSchemaMismatch }

// FeatureCounter is implemented by fitted models that know their input
// width. Zero means unknown.
type FeatureCounter interface {
	NumFeatures() int
}

// FeatureRecorder is implemented by fitted models that remember the ordered
// feature names they were trained on. An empty list means nothing was
// recorded.
type FeatureRecorder interface {
	FeatureNames() []string
}

type Kind int

const (
	// Exact resolution uses the model's recorded feature list.
	Exact Kind = iota
	// Fallback resolution guesses the features from the table.
	Fallback
)

func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Fallback:
		return "fallback"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Resolution struct {
	Kind    Kind
	Columns []string
	Table   *data.Table
}

// Warning is non-empty for best-effort resolutions.
func (r Resolution) Warning() string {
	if r.Kind != Fallback {
		return ""
	}
	return "model carries no feature names; using all columns except " + data.SpeciesColumn + " and known non-feature columns"
}

type Resolver struct {
	Label      string
	NonFeature []string
}

func DefaultResolver() Resolver {
	return Resolver{Label: data.SpeciesColumn, NonFeature: []string{data.LocationColumn}}
}

// Resolve uses the default label and non-feature columns.
func Resolve(m FeatureRecorder, t *data.Table) (Resolution, error) {
	return DefaultResolver().Resolve(m, t)
}

// Resolve projects t onto the columns m expects. With a recorded feature
// list every name must be present and the order is the model's; without one
// it drops the label and NonFeature columns and keeps table order. When m
// also reports its input width, a resolution of any other width fails.
func (r Resolver) Resolve(m FeatureRecorder, t *data.Table) (Resolution, error) {
	res, err := r.resolve(m, t)
	if err != nil {
		return Resolution{}, err
	}
	if fc, ok := m.(FeatureCounter); ok {
		if want := fc.NumFeatures(); want > 0 && want != len(res.Columns) {
			return Resolution{}, &FeatureCountError{Want: want, Columns: res.Columns}
		}
	}
	return res, nil
}

func (r Resolver) resolve(m FeatureRecorder, t *data.Table) (Resolution, error) {
	var names []string
	if m != nil {
		names = m.FeatureNames()
	}
	if len(names) == 0 {
		drop := append([]string{r.Label}, r.NonFeature...)
		sub := t.Drop(drop...)
		return Resolution{Kind: Fallback, Columns: sub.Columns, Table: sub}, nil
	}

	var missing []string
	for _, n := range names {
		if !t.Has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return Resolution{}, &MissingFeatureError{Missing: missing}
	}
	sub, err := t.Project(names)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Kind: Exact, Columns: sub.Columns, Table: sub}, nil
}

package models

import (
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
)

func init() {
	gob.Register(&DecisionTree{})
}

// Bundle is the persisted model artifact: the fitted classifier and what
// is needed to feed and interpret it.
type Bundle struct {
	Model            Classifier
	Features         []string
	Classes          []string
	Params           map[string]string
	SplitFingerprint uint64
	CreatedAt        time.Time
}

func NewBundle(m Classifier, features []string, enc *LabelEncoder) *Bundle {
	b := &Bundle{
		Model:     m,
		Features:  append([]string(nil), features...),
		CreatedAt: time.Now().UTC(),
	}
	if enc != nil {
		b.Classes = append([]string(nil), enc.Classes...)
	}
	if p, ok := m.(interface{ Params() map[string]string }); ok {
		b.Params = p.Params()
	}
	return b
}

// FeatureNames returns the ordered training features, or nil when the
// bundle was written without them.
func (b *Bundle) FeatureNames() []string {
	if b == nil {
		return nil
	}
	return b.Features
}

// NumFeatures is the row width the model expects, or zero when unknown.
func (b *Bundle) NumFeatures() int {
	if b == nil || b.Model == nil {
		return 0
	}
	return b.Model.NumFeatures()
}

// Predict returns class names for X.
func (b *Bundle) Predict(X [][]float64) ([]string, error) {
	codes, err := b.Model.Predict(X)
	if err != nil {
		return nil, err
	}
	enc := &LabelEncoder{Classes: b.Classes}
	return enc.Inverse(codes)
}

// SaveGob encodes v into path, replacing any previous content.
func SaveGob(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func LoadGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

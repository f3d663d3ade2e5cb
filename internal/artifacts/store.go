// Package artifacts reads and writes the local training outputs.
package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"irisml/internal/models"
)

const (
	ModelFile   = "model.gob"
	EncoderFile = "label_encoder.gob"
	MetricsFile = "metrics.json"
	ChartFile   = "metrics.png"
)

var ErrArtifactNotFound = errors.New("artifact not found")

// Metrics is the evaluation record written after every evaluation run.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
}

// Rounded returns m with every value rounded to 4 decimals.
func (m Metrics) Rounded() Metrics {
	r := func(v float64) float64 { return math.Round(v*1e4) / 1e4 }
	return Metrics{Accuracy: r(m.Accuracy), Precision: r(m.Precision), Recall: r(m.Recall), F1: r(m.F1)}
}

type Store struct {
	Dir string
}

func NewStore(dir string) *Store { return &Store{Dir: dir} }

func (s *Store) Path(name string) string { return filepath.Join(s.Dir, name) }

func (s *Store) SaveModel(b *models.Bundle) (string, error) {
	return s.saveGob(ModelFile, b)
}

func (s *Store) LoadModel() (*models.Bundle, error) {
	var b models.Bundle
	if err := s.loadGob(ModelFile, &b); err != nil {
		return nil, err
	}
	if b.Model == nil {
		return nil, fmt.Errorf("%s: bundle has no model", s.Path(ModelFile))
	}
	return &b, nil
}

func (s *Store) SaveEncoder(e *models.LabelEncoder) (string, error) {
	return s.saveGob(EncoderFile, e)
}

func (s *Store) LoadEncoder() (*models.LabelEncoder, error) {
	var e models.LabelEncoder
	if err := s.loadGob(EncoderFile, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// SaveMetrics overwrites the metrics record.
func (s *Store) SaveMetrics(m Metrics) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	buf, err := json.MarshalIndent(m.Rounded(), "", "    ")
	if err != nil {
		return "", err
	}
	path := s.Path(MetricsFile)
	return path, os.WriteFile(path, append(buf, '\n'), 0o644)
}

func (s *Store) LoadMetrics() (Metrics, error) {
	var m Metrics
	buf, err := os.ReadFile(s.Path(MetricsFile))
	if err != nil {
		return m, notFound(err, s.Path(MetricsFile))
	}
	return m, json.Unmarshal(buf, &m)
}

// Exists reports whether every named artifact is present.
func (s *Store) Exists(names ...string) bool {
	for _, n := range names {
		if _, err := os.Stat(s.Path(n)); err != nil {
			return false
		}
	}
	return true
}

func (s *Store) saveGob(name string, v any) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	path := s.Path(name)
	return path, models.SaveGob(path, v)
}

func (s *Store) loadGob(name string, v any) error {
	path := s.Path(name)
	if err := models.LoadGob(path, v); err != nil {
		return notFound(err, path)
	}
	return nil
}

func notFound(err error, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
	}
	return err
}

// Package tracking records training runs: parameters, metrics, tags and the
// logged model. Runs go either to a local directory store or to a remote
// tracking server; both speak the same Tracker/Run contract.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

//go:generate mockgen -destination=../mocks/mock_tracking.go -package=mocks irisml/internal/tracking Tracker,Run

var (
	ErrRunNotFound = errors.New("run not found")
	ErrTransport   = errors.New("tracking transport error")
	ErrInvalidName = errors.New("tracking: invalid name")
)

// Endpoint selects where runs are recorded. It is resolved once at startup.
type Endpoint int

const (
	Local Endpoint = iota
	Remote
)

func (e Endpoint) String() string {
	switch e {
	case Local:
		return "local"
	case Remote:
		return "remote"
	}
	return fmt.Sprintf("Endpoint(%d)", int(e))
}

type Status string

const (
	StatusRunning  Status = "RUNNING"
	StatusFinished Status = "FINISHED"
	StatusFailed   Status = "FAILED"
)

type Tracker interface {
	StartRun(ctx context.Context, experiment string) (Run, error)
}

type Run interface {
	ID() string
	LogParams(ctx context.Context, params map[string]string) error
	LogMetric(ctx context.Context, key string, value float64) error
	SetTag(ctx context.Context, key, value string) error
	LogModel(ctx context.Context, m ModelLog) error
	End(ctx context.Context, status Status) error
}

type ColumnSpec struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type" yaml:"type"`
}

type Signature struct {
	Inputs  []ColumnSpec `json:"inputs" yaml:"inputs"`
	Outputs []ColumnSpec `json:"outputs" yaml:"outputs"`
}

// InferSignature describes a model reading the named double columns and
// producing one value of outputType.
func InferSignature(features []string, outputType string) Signature {
	s := Signature{Outputs: []ColumnSpec{{Type: outputType}}}
	for _, f := range features {
		s.Inputs = append(s.Inputs, ColumnSpec{Name: f, Type: "double"})
	}
	return s
}

// ModelLog is a model blob plus what the tracker stores about it.
type ModelLog struct {
	ArtifactPath        string             `json:"artifact_path" binding:"required"`
	Flavor              string             `json:"flavor"`
	ModelName           string             `json:"model_name"`
	Blob                []byte             `json:"blob"`
	Signature           Signature          `json:"signature"`
	InputExample        map[string]float64 `json:"input_example,omitempty"`
	RegisteredModelName string             `json:"registered_model_name,omitempty"`
}

type RunInfo struct {
	RunID        string     `json:"run_id" yaml:"run_id"`
	ExperimentID string     `json:"experiment_id" yaml:"experiment_id"`
	Status       Status     `json:"status" yaml:"status"`
	StartTime    time.Time  `json:"start_time" yaml:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	ArtifactURI  string     `json:"artifact_uri" yaml:"artifact_uri"`
}

// RunData is everything recorded for a run.
type RunData struct {
	Info    RunInfo            `json:"info"`
	Params  map[string]string  `json:"params"`
	Metrics map[string]float64 `json:"metrics"`
	Tags    map[string]string  `json:"tags"`
	Models  []string           `json:"models"`
}

// Open returns the tracker for the endpoint. Local URIs use the file:
// scheme, remote ones http or https.
func Open(endpoint Endpoint, uri string, logger *zap.Logger) (Tracker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch endpoint {
	case Local:
		root := strings.TrimPrefix(uri, "file:")
		root = strings.TrimPrefix(root, "//")
		if root == "" {
			return nil, fmt.Errorf("tracking: empty local uri")
		}
		logger.Info("Tracking local", zap.String("root", root))
		return NewFileStore(root), nil
	case Remote:
		if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
			return nil, fmt.Errorf("tracking: remote uri must be http(s): %q", uri)
		}
		logger.Info("Tracking remoto", zap.String("uri", uri))
		return NewClient(uri, &http.Client{Timeout: 30 * time.Second}), nil
	}
	return nil, fmt.Errorf("tracking: unknown endpoint %v", endpoint)
}

// Package config holds the pipeline configuration. A Config is built once
// at startup and passed to the commands' collaborators; nothing reads the
// environment after Load returns.
package config

import (
	"errors"

	"irisml/internal/tracking"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

type Config struct {
	// ProjectID and Location identify the cloud project hosting the bucket.
	ProjectID string `koanf:"project_id" validate:"required"`
	Location  string `koanf:"location" validate:"required"`

	// BucketURI is gs://<bucket> or file://<dir>/<bucket>.
	BucketURI string `koanf:"bucket_uri" validate:"required"`

	// ArtifactPrefix is the object key prefix for uploaded artifacts.
	ArtifactPrefix string `koanf:"artifact_prefix" validate:"required"`

	// TrackingURI is the remote tracking server; LocalTrackingURI is used
	// when the Local endpoint is selected.
	TrackingURI      string `koanf:"tracking_uri" validate:"required,url"`
	LocalTrackingURI string `koanf:"local_tracking_uri" validate:"required,startswith=file:"`
	// TrackingAPIKey is sent by the client and required by cmd/tracker.
	TrackingAPIKey   string `koanf:"tracking_api_key"`

	RegisteredModelName string `koanf:"registered_model_name"`
	ExperimentName      string `koanf:"experiment_name" validate:"required"`

	DataPath    string `koanf:"data_path" validate:"required"`
	ArtifactDir string `koanf:"artifact_dir" validate:"required"`

	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFile  string `koanf:"log_file"`

	// TrackerAddr is the listen address of the tracking server command.
	TrackerAddr string `koanf:"tracker_addr" validate:"required"`
	TrackerRoot string `koanf:"tracker_root" validate:"required"`

	// Endpoint is resolved from the environment by Load.
	Endpoint tracking.Endpoint `koanf:"-"`
}

func New() *Config {
	return &Config{
		ProjectID:           "mlopsweek1",
		Location:            "us-central1",
		BucketURI:           "gs://mlops-course-mlopsweek1-unique",
		ArtifactPrefix:      "my-models/iris-classifier-week-8",
		TrackingURI:         "http://localhost:8100",
		LocalTrackingURI:    "file:./mlruns",
		RegisteredModelName: "IRIS-classifier-decisiontrees",
		ExperimentName:      "Iris_Classification_Experiment",
		DataPath:            "data/iris.csv",
		ArtifactDir:         "artifacts",
		LogLevel:            "info",
		TrackerAddr:         ":8100",
		TrackerRoot:         "mlruns",
		Endpoint:            tracking.Remote,
	}
}

// ActiveTrackingURI is the tracking URI for the resolved endpoint.
func (c *Config) ActiveTrackingURI() string {
	if c.Endpoint == tracking.Local {
		return c.LocalTrackingURI
	}
	return c.TrackingURI
}

// ActiveRegisteredModelName is empty on the Local endpoint: models logged
// from CI are not registered.
func (c *Config) ActiveRegisteredModelName() string {
	if c.Endpoint == tracking.Local {
		return ""
	}
	return c.RegisteredModelName
}

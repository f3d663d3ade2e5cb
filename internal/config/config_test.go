package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irisml/internal/config"
	"irisml/internal/tracking"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := config.LoadWith(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "gs://mlops-course-mlopsweek1-unique", cfg.BucketURI)
	assert.Equal(t, "IRIS-classifier-decisiontrees", cfg.RegisteredModelName)
	assert.Equal(t, tracking.Remote, cfg.Endpoint)
	assert.Equal(t, cfg.TrackingURI, cfg.ActiveTrackingURI())
	assert.Equal(t, "IRIS-classifier-decisiontrees", cfg.ActiveRegisteredModelName())
}

func TestCISelectsLocalEndpoint(t *testing.T) {
	cfg, err := config.LoadWith(lookupFrom(map[string]string{"CI": "true"}))
	require.NoError(t, err)

	assert.Equal(t, tracking.Local, cfg.Endpoint)
	assert.Equal(t, "file:./mlruns", cfg.ActiveTrackingURI())
	assert.Empty(t, cfg.ActiveRegisteredModelName())

	assert.Equal(t, tracking.Remote, config.ResolveEndpoint(lookupFrom(map[string]string{"CI": ""})))
}

func TestFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iris.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_path: from-file.csv\nexperiment_name: exp-file\n"), 0o644))

	t.Setenv("IRIS_EXPERIMENT_NAME", "exp-env")

	cfg, err := config.LoadWith(lookupFrom(map[string]string{config.EnvConfig: path}))
	require.NoError(t, err)
	assert.Equal(t, "from-file.csv", cfg.DataPath)
	assert.Equal(t, "exp-env", cfg.ExperimentName)
}

func TestMissingFile(t *testing.T) {
	_, err := config.LoadWith(lookupFrom(map[string]string{config.EnvConfig: filepath.Join(t.TempDir(), "nope.yaml")}))
	assert.ErrorIs(t, err, config.ErrLoadConfig)
}

func TestValidate(t *testing.T) {
	cfg := config.New()
	require.NoError(t, config.Validate(cfg))

	cfg.LogLevel = "verbose"
	assert.ErrorIs(t, config.Validate(cfg), config.ErrInvalidConfig)

	cfg = config.New()
	cfg.LocalTrackingURI = "./mlruns"
	assert.ErrorIs(t, config.Validate(cfg), config.ErrInvalidConfig)
}

package tracking_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irisml/internal/tracking"
)

func logRun(t *testing.T, tr tracking.Tracker, registered string) tracking.Run {
	t.Helper()
	ctx := context.Background()
	run, err := tr.StartRun(ctx, "Iris_Classification_Experiment")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID())

	require.NoError(t, run.LogParams(ctx, map[string]string{"max_depth": "4", "random_state": "1"}))
	require.NoError(t, run.LogMetric(ctx, "accuracy", 0.95))
	require.NoError(t, run.LogMetric(ctx, "accuracy", 0.975))
	require.NoError(t, run.SetTag(ctx, "Training Info", "Decision tree model for IRIS data"))
	require.NoError(t, run.LogModel(ctx, tracking.ModelLog{
		ArtifactPath:        "iris_model",
		Flavor:              "go_gob",
		ModelName:           "model.gob",
		Blob:                []byte("blob"),
		Signature:           tracking.InferSignature([]string{"sepal_length", "petal_width"}, "string"),
		InputExample:        map[string]float64{"sepal_length": 5.1, "petal_width": 0.2},
		RegisteredModelName: registered,
	}))
	require.NoError(t, run.End(ctx, tracking.StatusFinished))
	return run
}

func TestFileStoreRecordsRun(t *testing.T) {
	root := t.TempDir()
	store := tracking.NewFileStore(root)
	run := logRun(t, store, "")

	rd, err := store.GetRun(run.ID())
	require.NoError(t, err)
	assert.Equal(t, tracking.StatusFinished, rd.Info.Status)
	assert.NotNil(t, rd.Info.EndTime)
	assert.Equal(t, "0", rd.Info.ExperimentID)
	assert.Equal(t, map[string]string{"max_depth": "4", "random_state": "1"}, rd.Params)
	assert.Equal(t, 0.975, rd.Metrics["accuracy"])
	assert.Equal(t, "Decision tree model for IRIS data", rd.Tags["Training Info"])
	assert.Equal(t, []string{"iris_model"}, rd.Models)

	adir := filepath.Join(rd.Info.ArtifactURI, "iris_model")
	blob, err := os.ReadFile(filepath.Join(adir, "model.gob"))
	require.NoError(t, err)
	assert.Equal(t, "blob", string(blob))
	assert.FileExists(t, filepath.Join(adir, "input_example.json"))

	raw, err := os.ReadFile(filepath.Join(adir, "MLmodel"))
	require.NoError(t, err)
	var desc struct {
		RunID     string             `yaml:"run_id"`
		Signature tracking.Signature `yaml:"signature"`
	}
	require.NoError(t, yaml.Unmarshal(raw, &desc))
	assert.Equal(t, run.ID(), desc.RunID)
	require.Len(t, desc.Signature.Inputs, 2)
	assert.Equal(t, "petal_width", desc.Signature.Inputs[1].Name)

	versions, err := store.ModelVersions("IRIS-classifier-decisiontrees")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestFileStoreReusesExperimentAndRegistersVersions(t *testing.T) {
	store := tracking.NewFileStore(t.TempDir())
	a := logRun(t, store, "IRIS-classifier-decisiontrees")
	b := logRun(t, store, "IRIS-classifier-decisiontrees")

	ra, err := store.GetRun(a.ID())
	require.NoError(t, err)
	rb, err := store.GetRun(b.ID())
	require.NoError(t, err)
	assert.Equal(t, ra.Info.ExperimentID, rb.Info.ExperimentID)

	versions, err := store.ModelVersions("IRIS-classifier-decisiontrees")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, b.ID(), versions[1].RunID)
}

func TestFileStoreUnknownRun(t *testing.T) {
	store := tracking.NewFileStore(t.TempDir())
	_, err := store.GetRun("deadbeef")
	assert.ErrorIs(t, err, tracking.ErrRunNotFound)
	assert.Error(t, store.SetTag("../x", "k", "v"))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tr, err := tracking.Open(tracking.Local, "file:"+dir, nil)
	require.NoError(t, err)
	fs, ok := tr.(*tracking.FileStore)
	require.True(t, ok)
	assert.Equal(t, dir, fs.Root)

	tr, err = tracking.Open(tracking.Remote, "http://localhost:8100", nil)
	require.NoError(t, err)
	assert.IsType(t, &tracking.Client{}, tr)

	_, err = tracking.Open(tracking.Remote, "file:./mlruns", nil)
	assert.Error(t, err)
}

func TestEndpointString(t *testing.T) {
	assert.Equal(t, "local", tracking.Local.String())
	assert.Equal(t, "remote", tracking.Remote.String())
}

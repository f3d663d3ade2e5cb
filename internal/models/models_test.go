package models_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irisml/internal/data"
	"irisml/internal/features"
	"irisml/internal/models"
)

func irisXY(t *testing.T, perClass int) ([][]float64, []int, *models.LabelEncoder) {
	t.Helper()
	tbl := data.GenerateIris(perClass, 3)
	sub, err := tbl.Project(data.FeatureColumns)
	require.NoError(t, err)
	X, err := features.Matrix(sub)
	require.NoError(t, err)
	labels, err := tbl.Column(data.SpeciesColumn)
	require.NoError(t, err)
	enc := models.FitLabelEncoder(labels)
	y, err := enc.Transform(labels)
	require.NoError(t, err)
	return X, y, enc
}

func TestDecisionTreeFitsSeparableData(t *testing.T) {
	X, y, _ := irisXY(t, 40)

	dt := models.NewDecisionTree()
	require.NoError(t, dt.Fit(X, y))

	assert.Equal(t, 3, dt.NClasses)
	assert.LessOrEqual(t, dt.Depth(), 4)
	assert.GreaterOrEqual(t, dt.Leaves(), 3)
	pred, err := dt.Predict(X)
	require.NoError(t, err)
	assert.Greater(t, models.Accuracy(y, pred), 0.95)

	proba, err := dt.PredictProba(X[:5])
	require.NoError(t, err)
	for _, p := range proba {
		require.Len(t, p, 3)
		assert.InDelta(t, 1.0, p[0]+p[1]+p[2], 1e-9)
	}
}

func TestDecisionTreeRespectsMaxDepth(t *testing.T) {
	X, y, _ := irisXY(t, 40)

	dt := models.NewDecisionTree()
	dt.MaxDepth = 1
	require.NoError(t, dt.Fit(X, y))
	assert.Equal(t, 1, dt.Depth())
	assert.Equal(t, 2, dt.Leaves())
}

func TestDecisionTreeIsDeterministic(t *testing.T) {
	X, y, _ := irisXY(t, 30)

	a := models.NewDecisionTree()
	b := models.NewDecisionTree()
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))
	assert.Equal(t, a.Root, b.Root)
}

func TestDecisionTreeRejectsBadInput(t *testing.T) {
	dt := models.NewDecisionTree()
	assert.Error(t, dt.Fit(nil, nil))
	assert.Error(t, dt.Fit([][]float64{{1}, {2}}, []int{0}))
	assert.Error(t, dt.Fit([][]float64{{1}, {2, 3}}, []int{0, 1}))
}

func TestLabelEncoder(t *testing.T) {
	enc := models.FitLabelEncoder([]string{"virginica", "setosa", "versicolor", "setosa"})
	assert.Equal(t, []string{"setosa", "versicolor", "virginica"}, enc.Classes)

	codes, err := enc.Transform([]string{"versicolor", "setosa"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, codes)

	names, err := enc.Inverse([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"virginica", "setosa"}, names)

	_, err = enc.Transform([]string{"rosa"})
	assert.ErrorIs(t, err, models.ErrUnknownLabel)
	_, err = enc.Inverse([]int{3})
	assert.ErrorIs(t, err, models.ErrUnknownLabel)
}

func TestMacroScores(t *testing.T) {
	y := []int{0, 0, 1, 1, 2, 2}
	p := []int{0, 1, 1, 1, 2, 0}

	assert.InDelta(t, 4.0/6.0, models.Accuracy(y, p), 1e-12)

	// class 0: tp1 fp1 fn1 -> p .5 r .5
	// class 1: tp2 fp1 fn0 -> p 2/3 r 1
	// class 2: tp1 fp0 fn1 -> p 1 r .5
	prec, rec, f1 := models.Macro(y, p)
	assert.InDelta(t, (0.5+2.0/3.0+1.0)/3, prec, 1e-12)
	assert.InDelta(t, (0.5+1.0+0.5)/3, rec, 1e-12)
	assert.InDelta(t, (0.5+0.8+2.0/3.0)/3, f1, 1e-12)

	assert.Equal(t, [][]int{{1, 1, 0}, {0, 2, 0}, {1, 0, 1}}, models.Confusion(y, p, 3))
}

func TestMacroZeroDivision(t *testing.T) {
	scores := models.PerClass([]int{0, 0}, []int{1, 1})
	require.Len(t, scores, 2)
	for _, s := range scores {
		assert.Zero(t, s.F1)
	}
	_, _, f1 := models.Macro(nil, nil)
	assert.Zero(t, f1)
}

func TestBundleGobRoundTrip(t *testing.T) {
	X, y, enc := irisXY(t, 20)
	dt := models.NewDecisionTree()
	require.NoError(t, dt.Fit(X, y))

	b := models.NewBundle(dt, data.FeatureColumns, enc)
	b.SplitFingerprint = 99
	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, models.SaveGob(path, b))

	var got models.Bundle
	require.NoError(t, models.LoadGob(path, &got))
	assert.Equal(t, data.FeatureColumns, got.FeatureNames())
	assert.Equal(t, enc.Classes, got.Classes)
	assert.Equal(t, uint64(99), got.SplitFingerprint)
	assert.Equal(t, "4", got.Params["max_depth"])
	want, err := dt.Predict(X)
	require.NoError(t, err)
	have, err := got.Model.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, want, have)
	assert.Equal(t, 4, got.NumFeatures())

	names, err := got.Predict(X[:1])
	require.NoError(t, err)
	assert.Equal(t, []string{"setosa"}, names)

	var missing *models.Bundle
	assert.Nil(t, missing.FeatureNames())
	assert.Zero(t, missing.NumFeatures())
}

func TestDecisionTreeRejectsWrongRowWidth(t *testing.T) {
	X, y, _ := irisXY(t, 20)
	dt := models.NewDecisionTree()
	require.NoError(t, dt.Fit(X, y))
	assert.Equal(t, 4, dt.NumFeatures())

	narrow := [][]float64{{5.1, 3.5}}
	_, err := dt.Predict(narrow)
	assert.ErrorIs(t, err, models.ErrFeatureCount)
	_, err = dt.PredictProba(narrow)
	assert.ErrorIs(t, err, models.ErrFeatureCount)

	_, err = dt.Predict([][]float64{{1, 5.1, 3.5, 1.4, 0.2}})
	assert.ErrorIs(t, err, models.ErrFeatureCount)

	_, err = models.NewDecisionTree().Predict(X[:1])
	assert.ErrorIs(t, err, models.ErrNotFitted)
}

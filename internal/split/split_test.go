package split_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irisml/internal/data"
	"irisml/internal/split"
)

func TestStratifiedIsDeterministic(t *testing.T) {
	tbl := data.GenerateIris(30, 7)

	a, err := split.Stratified(tbl, 0.4, 42, data.SpeciesColumn)
	require.NoError(t, err)
	b, err := split.Stratified(tbl.Clone(), 0.4, 42, data.SpeciesColumn)
	require.NoError(t, err)

	require.Equal(t, a.Partition, b.Partition)
	require.Equal(t, a.Train.Rows, b.Train.Rows)
	require.Equal(t, a.Test.Rows, b.Test.Rows)
	require.Equal(t, a.Partition.Fingerprint(), b.Partition.Fingerprint())
}

// The partition for this table is fixed for good: models trained on it are
// evaluated against the same rows by later builds.
func TestStratifiedGoldenPartition(t *testing.T) {
	s, err := split.Stratified(data.GenerateIris(30, 7), 0.4, 42, data.SpeciesColumn)
	require.NoError(t, err)

	assert.Equal(t, []int{
		79, 86, 12, 84, 11, 8, 50, 63, 45, 44, 69, 5,
		27, 31, 61, 72, 17, 30, 81, 38, 65, 16, 13, 53,
		34, 28, 41, 47, 57, 89, 18, 2, 68, 6, 87, 56,
	}, s.Partition.Test)
	assert.Equal(t, uint64(0x8c7aec75639d6614), s.Partition.Fingerprint())
}

func TestStratifiedSizes(t *testing.T) {
	tbl := data.GenerateIris(30, 7)

	s, err := split.DefaultParams().Apply(tbl)
	require.NoError(t, err)
	assert.Equal(t, 36, s.Test.Len())
	assert.Equal(t, 54, s.Train.Len())

	seen := map[int]bool{}
	for _, i := range append(append([]int(nil), s.Partition.Train...), s.Partition.Test...) {
		require.False(t, seen[i], "row %d placed twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, 90)
}

func TestStratifiedKeepsClassProportions(t *testing.T) {
	tbl := data.NewTable("x", data.SpeciesColumn)
	counts := map[string]int{"a": 50, "b": 31, "c": 19}
	for c, n := range counts {
		for i := 0; i < n; i++ {
			require.NoError(t, tbl.Append("1", c))
		}
	}

	s, err := split.Stratified(tbl, 0.4, 42, data.SpeciesColumn)
	require.NoError(t, err)
	labels, err := s.Test.Column(data.SpeciesColumn)
	require.NoError(t, err)
	got := data.ClassCounts(labels)

	total := tbl.Len()
	for c, n := range counts {
		want := float64(n) / float64(total) * float64(s.Test.Len())
		assert.InDelta(t, want, float64(got[c]), 1.0, "class %s", c)
	}
}

func TestDifferentSeedChangesPartition(t *testing.T) {
	tbl := data.GenerateIris(30, 7)

	a, err := split.Stratified(tbl, 0.4, 42, data.SpeciesColumn)
	require.NoError(t, err)
	b, err := split.Stratified(tbl, 0.4, 43, data.SpeciesColumn)
	require.NoError(t, err)
	assert.NotEqual(t, a.Partition.Test, b.Partition.Test)
	assert.NotEqual(t, a.Partition.Fingerprint(), b.Partition.Fingerprint())
}

func TestStratificationError(t *testing.T) {
	tbl := data.NewTable("x", data.SpeciesColumn)
	for i := 0; i < 20; i++ {
		require.NoError(t, tbl.Append("1", "big"))
	}
	require.NoError(t, tbl.Append("1", "tiny"))

	_, err := split.Stratified(tbl, 0.4, 42, data.SpeciesColumn)
	require.ErrorIs(t, err, split.ErrStratification)

	var serr *split.StratificationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "tiny", serr.Class)
	assert.Equal(t, 1, serr.Count)
}

func TestInvalidFraction(t *testing.T) {
	tbl := data.GenerateIris(10, 1)
	for _, f := range []float64{0, 1, -0.2, 1.5} {
		_, err := split.Stratified(tbl, f, 42, data.SpeciesColumn)
		assert.ErrorIs(t, err, split.ErrInvalidFraction, "fraction %v", f)
	}
}

func TestUnknownStratifyColumn(t *testing.T) {
	tbl := data.GenerateIris(10, 1)
	_, err := split.Stratified(tbl, 0.4, 42, "genus")
	require.ErrorIs(t, err, data.ErrColumnNotFound)
}

func TestMissingLabel(t *testing.T) {
	tbl := data.GenerateIris(10, 1)
	tbl.Rows[3][tbl.Index(data.SpeciesColumn)] = ""
	_, err := split.Stratified(tbl, 0.4, 42, data.SpeciesColumn)
	require.ErrorIs(t, err, split.ErrStratification)
}

func TestIndependentOfFeatureColumns(t *testing.T) {
	tbl := data.GenerateIris(30, 7)
	withLocation := tbl.Clone()
	data.WithLocation(withLocation, data.DefaultLocationSeed)

	a, err := split.DefaultParams().Apply(tbl)
	require.NoError(t, err)
	b, err := split.DefaultParams().Apply(withLocation.Drop(data.SepalWidth))
	require.NoError(t, err)
	assert.Equal(t, a.Partition, b.Partition)
}

package data

import (
	"math/rand/v2"
	"strconv"
)

const (
	SepalLength    = "sepal_length"
	SepalWidth     = "sepal_width"
	PetalLength    = "petal_length"
	PetalWidth     = "petal_width"
	SpeciesColumn  = "species"
	LocationColumn = "location"
)

// FeatureColumns are the measurement columns every iris table must carry,
// in training order.
var FeatureColumns = []string{SepalLength, SepalWidth, PetalLength, PetalWidth}

// RequiredColumns are FeatureColumns plus the label.
var RequiredColumns = append(append([]string(nil), FeatureColumns...), SpeciesColumn)

type centroid struct {
	species string
	mean    [4]float64
	std     [4]float64
}

var centroids = []centroid{
	{"setosa", [4]float64{5.0, 3.4, 1.5, 0.25}, [4]float64{0.3, 0.3, 0.15, 0.08}},
	{"versicolor", [4]float64{5.9, 2.8, 4.2, 1.3}, [4]float64{0.3, 0.25, 0.2, 0.1}},
	{"virginica", [4]float64{6.6, 3.0, 5.7, 2.1}, [4]float64{0.3, 0.25, 0.2, 0.1}},
}

// GenerateIris builds a deterministic iris-like table with perClass rows for
// each of the three species, rows grouped by species.
func GenerateIris(perClass int, seed uint64) *Table {
	r := rand.New(rand.NewPCG(seed, seed))
	t := NewTable(RequiredColumns...)
	for _, c := range centroids {
		for i := 0; i < perClass; i++ {
			row := make([]string, 0, len(RequiredColumns))
			for f := range FeatureColumns {
				v := c.mean[f] + r.NormFloat64()*c.std[f]
				if v < 0.1 {
					v = 0.1
				}
				row = append(row, strconv.FormatFloat(v, 'f', 1, 64))
			}
			row = append(row, c.species)
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// GenerateIrisCSV writes GenerateIris output to outPath.
func GenerateIrisCSV(perClass int, seed uint64, outPath string) error {
	return WriteCSV(outPath, GenerateIris(perClass, seed))
}

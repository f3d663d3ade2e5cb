package models

import "sort"

func Accuracy(y, p []int) float64 {
	if len(y) == 0 {
		return 0
	}
	c := 0
	for i := range y {
		if y[i] == p[i] {
			c++
		}
	}
	return float64(c) / float64(len(y))
}

// ClassScore holds one-vs-rest scores for a single class.
type ClassScore struct {
	Class     int
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// PerClass scores every label occurring in y or p, in ascending order.
// Undefined ratios (no predictions, no support) score zero.
func PerClass(y, p []int) []ClassScore {
	tp := map[int]int{}
	fp := map[int]int{}
	fn := map[int]int{}
	support := map[int]int{}
	labels := map[int]bool{}
	for i := range y {
		labels[y[i]] = true
		labels[p[i]] = true
		support[y[i]]++
		if y[i] == p[i] {
			tp[y[i]]++
		} else {
			fp[p[i]]++
			fn[y[i]]++
		}
	}
	keys := make([]int, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]ClassScore, 0, len(keys))
	for _, k := range keys {
		s := ClassScore{Class: k, Support: support[k]}
		if d := tp[k] + fp[k]; d > 0 {
			s.Precision = float64(tp[k]) / float64(d)
		}
		if d := tp[k] + fn[k]; d > 0 {
			s.Recall = float64(tp[k]) / float64(d)
		}
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
		out = append(out, s)
	}
	return out
}

// Macro averages per-class precision, recall and F1 without weighting.
func Macro(y, p []int) (precision, recall, f1 float64) {
	scores := PerClass(y, p)
	if len(scores) == 0 {
		return 0, 0, 0
	}
	for _, s := range scores {
		precision += s.Precision
		recall += s.Recall
		f1 += s.F1
	}
	n := float64(len(scores))
	return precision / n, recall / n, f1 / n
}

// Confusion returns counts indexed [true][predicted] for k classes.
func Confusion(y, p []int, k int) [][]int {
	m := make([][]int, k)
	for i := range m {
		m[i] = make([]int, k)
	}
	for i := range y {
		if y[i] >= 0 && y[i] < k && p[i] >= 0 && p[i] < k {
			m[y[i]][p[i]]++
		}
	}
	return m
}

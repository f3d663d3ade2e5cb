package models

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
)

type DTNode struct {
	Feature   int
	Threshold float64
	Left      *DTNode
	Right     *DTNode
	IsLeaf    bool
	Class     int
	Proba     []float64
	Samples   int
}

// DecisionTree is a CART classifier splitting on Gini impurity. Candidate
// thresholds are midpoints between consecutive distinct values; features are
// visited in an order drawn from RandomState, and the first strictly best
// split wins.
type DecisionTree struct {
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	RandomState     uint64
	NClasses        int
	NFeatures       int
	Root            *DTNode
}

func NewDecisionTree() *DecisionTree {
	return &DecisionTree{MaxDepth: 4, MinSamplesSplit: 2, MinSamplesLeaf: 1, RandomState: 1}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) Params() map[string]string {
	return map[string]string{
		"max_depth":         fmt.Sprint(dt.MaxDepth),
		"min_samples_split": fmt.Sprint(dt.MinSamplesSplit),
		"min_samples_leaf":  fmt.Sprint(dt.MinSamplesLeaf),
		"random_state":      fmt.Sprint(dt.RandomState),
	}
}

func (dt *DecisionTree) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("decision tree: no samples")
	}
	if len(X) != len(y) {
		return fmt.Errorf("decision tree: %d samples, %d labels", len(X), len(y))
	}
	dt.NFeatures = len(X[0])
	dt.NClasses = 0
	for i, c := range y {
		if c < 0 {
			return fmt.Errorf("decision tree: negative label at %d", i)
		}
		if len(X[i]) != dt.NFeatures {
			return fmt.Errorf("decision tree: row %d has %d features, want %d", i, len(X[i]), dt.NFeatures)
		}
		if c+1 > dt.NClasses {
			dt.NClasses = c + 1
		}
	}
	b := &builder{dt: dt, X: X, y: y, rng: rand.New(rand.NewPCG(dt.RandomState, dt.RandomState))}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	dt.Root = b.build(idx, 0)
	return nil
}

// NumFeatures is the row width the tree was fitted on; zero before Fit.
func (dt *DecisionTree) NumFeatures() int { return dt.NFeatures }

func (dt *DecisionTree) Predict(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i := range X {
		n, err := dt.leaf(i, X[i])
		if err != nil {
			return nil, err
		}
		out[i] = n.Class
	}
	return out, nil
}

func (dt *DecisionTree) PredictProba(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i := range X {
		n, err := dt.leaf(i, X[i])
		if err != nil {
			return nil, err
		}
		out[i] = append([]float64(nil), n.Proba...)
	}
	return out, nil
}

func (dt *DecisionTree) leaf(row int, x []float64) (*DTNode, error) {
	n := dt.Root
	if n == nil {
		return nil, ErrNotFitted
	}
	if len(x) != dt.NFeatures {
		return nil, fmt.Errorf("%w: row %d has %d features, model has %d", ErrFeatureCount, row, len(x), dt.NFeatures)
	}
	for !n.IsLeaf {
		next := n.Right
		if x[n.Feature] <= n.Threshold {
			next = n.Left
		}
		if next == nil {
			return n, nil
		}
		n = next
	}
	return n, nil
}

// Depth is the number of split levels below the root.
func (dt *DecisionTree) Depth() int { return depth(dt.Root) }

func (dt *DecisionTree) Leaves() int { return leaves(dt.Root) }

func depth(n *DTNode) int {
	if n == nil || n.IsLeaf {
		return 0
	}
	return 1 + max(depth(n.Left), depth(n.Right))
}

func leaves(n *DTNode) int {
	if n == nil {
		return 0
	}
	if n.IsLeaf {
		return 1
	}
	return leaves(n.Left) + leaves(n.Right)
}

type builder struct {
	dt  *DecisionTree
	X   [][]float64
	y   []int
	rng *rand.Rand
}

func (b *builder) build(idx []int, depth int) *DTNode {
	counts := b.counts(idx)
	node := &DTNode{Samples: len(idx), Class: argmax(counts), Proba: normalize(counts, len(idx))}
	parent := gini(counts, len(idx))
	if depth >= b.dt.MaxDepth || len(idx) < b.dt.MinSamplesSplit || len(idx) < 2*b.dt.MinSamplesLeaf || parent == 0 {
		node.IsLeaf = true
		return node
	}

	bestFeature := -1
	bestThr := 0.0
	bestImp := parent
	for _, f := range b.rng.Perm(b.dt.NFeatures) {
		thr, imp, ok := b.bestThreshold(idx, f, counts)
		if ok && imp < bestImp {
			bestFeature, bestThr, bestImp = f, thr, imp
		}
	}
	if bestFeature == -1 {
		node.IsLeaf = true
		return node
	}

	l, r := splitIdx(b.X, idx, bestFeature, bestThr)
	node.Feature = bestFeature
	node.Threshold = bestThr
	node.Left = b.build(l, depth+1)
	node.Right = b.build(r, depth+1)
	return node
}

// bestThreshold sweeps the samples sorted by feature f and returns the
// midpoint threshold with the lowest weighted child impurity.
func (b *builder) bestThreshold(idx []int, f int, total []float64) (float64, float64, bool) {
	order := append([]int(nil), idx...)
	sort.SliceStable(order, func(i, j int) bool { return b.X[order[i]][f] < b.X[order[j]][f] })

	left := make([]float64, len(total))
	right := append([]float64(nil), total...)
	n := len(order)
	best, bestThr, found := 0.0, 0.0, false
	for i := 0; i < n-1; i++ {
		c := b.y[order[i]]
		left[c]++
		right[c]--
		v, next := b.X[order[i]][f], b.X[order[i+1]][f]
		if v == next {
			continue
		}
		nl, nr := i+1, n-i-1
		if nl < b.dt.MinSamplesLeaf || nr < b.dt.MinSamplesLeaf {
			continue
		}
		imp := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
		if !found || imp < best {
			best, bestThr, found = imp, v+(next-v)/2, true
		}
	}
	return bestThr, best, found
}

func (b *builder) counts(idx []int) []float64 {
	out := make([]float64, b.dt.NClasses)
	for _, i := range idx {
		out[b.y[i]]++
	}
	return out
}

func splitIdx(X [][]float64, idx []int, f int, thr float64) ([]int, []int) {
	l := make([]int, 0, len(idx))
	r := make([]int, 0, len(idx))
	for _, i := range idx {
		if X[i][f] <= thr {
			l = append(l, i)
		} else {
			r = append(r, i)
		}
	}
	return l, r
}

func gini(counts []float64, n int) float64 {
	if n == 0 {
		return 0
	}
	s := 1.0
	for _, c := range counts {
		p := c / float64(n)
		s -= p * p
	}
	return s
}

func normalize(counts []float64, n int) []float64 {
	out := make([]float64, len(counts))
	if n == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = c / float64(n)
	}
	return out
}

func argmax(xs []float64) int {
	best := 0
	for i, v := range xs {
		if v > xs[best] {
			best = i
		}
	}
	return best
}

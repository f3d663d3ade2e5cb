// Package split rebuilds the stratified train/test partition of a table.
//
// Training and evaluation never exchange the partition; both call Stratified
// with the same parameters and must land on the same rows. The sampling is
// therefore fixed down to the generator: PCG from math/rand/v2 seeded with
// (seed, seed), and Fisher-Yates shuffles drawing j = Uint64() % (i+1) from
// the top index down. Changing any step changes every partition.
package split

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/cespare/xxhash/v2"

	"irisml/internal/data"
)

const (
	DefaultHeldOut float64 = 0.4
	DefaultSeed    uint64  = 42
)

var (
	ErrStratification  = errors.New("stratification error")
	ErrInvalidFraction = errors.New("held-out fraction must be in (0, 1)")
	ErrSplitMismatch   = errors.New("split does not match the one used in training")
)

// StratificationError reports a class too small to appear on both sides of
// the split.
type StratificationError struct {
	Class string
	Count int
	Test  int
}

func (e *StratificationError) Error() string {
	return fmt.Sprintf("stratification: class %q has %d rows and gets %d test rows; both partitions need at least one", e.Class, e.Count, e.Test)
}

func (e *StratificationError) Is(target error) bool { return target == ErrStratification }

// Params are the split parameters shared by every call site.
type Params struct {
	HeldOut    float64
	Seed       uint64
	StratifyBy string
}

func DefaultParams() Params {
	return Params{HeldOut: DefaultHeldOut, Seed: DefaultSeed, StratifyBy: data.SpeciesColumn}
}

func (p Params) Apply(t *data.Table) (*Split, error) {
	return Stratified(t, p.HeldOut, p.Seed, p.StratifyBy)
}

// Partition holds row indices into the source table.
type Partition struct {
	Train []int
	Test  []int
}

// Fingerprint hashes the ordered test indices.
func (p Partition) Fingerprint() uint64 {
	buf := make([]byte, 0, 8*len(p.Test))
	for _, i := range p.Test {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(i))
	}
	return xxhash.Sum64(buf)
}

type Split struct {
	Train     *data.Table
	Test      *data.Table
	Partition Partition
}

// Stratified partitions t by the stratifyBy column. Identical inputs always
// produce identical partitions, rows and order included.
func Stratified(t *data.Table, heldOut float64, seed uint64, stratifyBy string) (*Split, error) {
	labels, err := t.Column(stratifyBy)
	if err != nil {
		return nil, err
	}
	for i, l := range labels {
		if data.IsMissing(l) {
			return nil, fmt.Errorf("%w: row %d has no %s", ErrStratification, i, stratifyBy)
		}
	}
	p, err := Indices(labels, heldOut, seed)
	if err != nil {
		return nil, err
	}
	return &Split{Train: t.Select(p.Train), Test: t.Select(p.Test), Partition: p}, nil
}

// Indices computes the partition over labels.
func Indices(labels []string, heldOut float64, seed uint64) (Partition, error) {
	if !(heldOut > 0 && heldOut < 1) {
		return Partition{}, fmt.Errorf("%w: %v", ErrInvalidFraction, heldOut)
	}
	n := len(labels)
	if n == 0 {
		return Partition{}, fmt.Errorf("%w: no rows", ErrStratification)
	}
	byClass := map[string][]int{}
	for i, l := range labels {
		byClass[l] = append(byClass[l], i)
	}
	classes := make([]string, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	nTest := int(math.Ceil(heldOut*float64(n) - 1e-9))
	quota := allocate(classes, byClass, n, nTest)
	for k, c := range classes {
		if quota[k] == 0 || quota[k] == len(byClass[c]) {
			return Partition{}, &StratificationError{Class: c, Count: len(byClass[c]), Test: quota[k]}
		}
	}

	src := rand.NewPCG(seed, seed)
	p := Partition{Train: make([]int, 0, n-nTest), Test: make([]int, 0, nTest)}
	for k, c := range classes {
		idx := append([]int(nil), byClass[c]...)
		shuffle(src, idx)
		p.Test = append(p.Test, idx[:quota[k]]...)
		p.Train = append(p.Train, idx[quota[k]:]...)
	}
	shuffle(src, p.Train)
	shuffle(src, p.Test)
	return p, nil
}

// allocate spreads nTest seats over classes proportionally: floor shares
// first, then one extra seat per class by largest remainder, ties going to
// the earlier class.
func allocate(classes []string, byClass map[string][]int, n, nTest int) []int {
	quota := make([]int, len(classes))
	rem := make([]int, len(classes))
	assigned := 0
	for k, c := range classes {
		num := nTest * len(byClass[c])
		quota[k] = num / n
		rem[k] = num % n
		assigned += quota[k]
	}
	order := make([]int, len(classes))
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool { return rem[order[a]] > rem[order[b]] })
	for i := 0; assigned < nTest && i < len(order); i++ {
		quota[order[i]]++
		assigned++
	}
	return quota
}

func shuffle(src *rand.PCG, a []int) {
	for i := len(a) - 1; i > 0; i-- {
		j := int(src.Uint64() % uint64(i+1))
		a[i], a[j] = a[j], a[i]
	}
}

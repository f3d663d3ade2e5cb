package models

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownLabel = errors.New("unknown label")

// LabelEncoder maps class names to codes by their sorted position.
type LabelEncoder struct {
	Classes []string
}

func FitLabelEncoder(labels []string) *LabelEncoder {
	seen := map[string]bool{}
	classes := []string{}
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			classes = append(classes, l)
		}
	}
	sort.Strings(classes)
	return &LabelEncoder{Classes: classes}
}

func (e *LabelEncoder) Transform(labels []string) ([]int, error) {
	codes := make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		codes[c] = i
	}
	out := make([]int, len(labels))
	for i, l := range labels {
		c, ok := codes[l]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, l)
		}
		out[i] = c
	}
	return out, nil
}

func (e *LabelEncoder) Inverse(codes []int) ([]string, error) {
	out := make([]string, len(codes))
	for i, c := range codes {
		if c < 0 || c >= len(e.Classes) {
			return nil, fmt.Errorf("%w: code %d", ErrUnknownLabel, c)
		}
		out[i] = e.Classes[c]
	}
	return out, nil
}

// Package similarity scores how closely two names resemble each other.
//
// The default algorithm is Ratcliff/Obershelp "gestalt pattern matching":
// find the longest common block, recurse on the unmatched text to its left
// and right, and score 2*M/T where M is the total size of all blocks and T the
// combined length of both names. The result is not symmetric in general;
// callers pass the customer name as a and the restricted party as b.
package similarity

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Scorer scores candidate names against one fixed name.
type Scorer interface {
	Score(a string) float64
}

// Algorithm prepares a Scorer for a fixed name.
type Algorithm func(name string) Scorer

// Algorithm names accepted by ByName.
const (
	AlgorithmRatcliff    = "ratcliff"
	AlgorithmLevenshtein = "levenshtein"
)

// ByName resolves a configured algorithm name.
func ByName(name string) (Algorithm, error) {
	switch name {
	case "", AlgorithmRatcliff:
		return Ratcliff, nil
	case AlgorithmLevenshtein:
		return Levenshtein, nil
	default:
		return nil, fmt.Errorf("unknown similarity algorithm %q", name)
	}
}

// Ratcliff is the matching-blocks algorithm.
func Ratcliff(name string) Scorer {
	return NewMatcher(name)
}

// Levenshtein scores 1 - distance/longer length.
func Levenshtein(name string) Scorer {
	return levenshteinScorer(strings.ToLower(name))
}

// Ratio is the case-insensitive Ratcliff/Obershelp similarity of a against b.
func Ratio(a, b string) float64 {
	return NewMatcher(b).Score(a)
}

// LevenshteinRatio is the case-insensitive edit-distance similarity of a and b.
func LevenshteinRatio(a, b string) float64 {
	return Levenshtein(b).Score(a)
}

type levenshteinScorer string

func (s levenshteinScorer) Score(a string) float64 {
	a = strings.ToLower(a)
	b := string(s)
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1.0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

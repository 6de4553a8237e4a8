// Package screening flags customers whose names resemble restricted parties
// and tracks how each flagged match was resolved.
package screening

import (
	"time"

	records "rpscreen/internal/records/models"
	"rpscreen/internal/screening/models"
	"rpscreen/internal/screening/similarity"
	"rpscreen/pkg/platform/strings"
)

// DefaultThreshold is the lowest similarity reported as a similar match.
const DefaultThreshold = 0.3

// Engine compares every customer with every restricted party.
type Engine struct {
	algorithm similarity.Algorithm
}

type EngineOption func(*Engine)

// WithAlgorithm replaces the Ratcliff/Obershelp scorer.
func WithAlgorithm(a similarity.Algorithm) EngineOption {
	return func(e *Engine) {
		e.algorithm = a
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{algorithm: similarity.Ratcliff}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Screen runs the exact pass and then the similar pass over the full cross
// product. Exact matches come first; within each pass results are ordered by
// customer, then restricted party.
//
// A pair is exact when the trimmed, lowercased names are equal. A pair is
// similar when threshold <= score < 1.0, so identical names never show up in
// the similar pass, while a trimmed-equal pair whose raw names differ can show
// up in both.
func (e *Engine) Screen(customers []records.Customer, parties []records.RestrictedParty, threshold float64, now time.Time) []models.Match {
	matches := []models.Match{}
	if len(customers) == 0 || len(parties) == 0 {
		return matches
	}

	partyKeys := make([]string, len(parties))
	for j, p := range parties {
		partyKeys[j] = strings.FoldKey(p.Name)
	}
	for _, c := range customers {
		key := strings.FoldKey(c.Name)
		for j, p := range parties {
			if key == partyKeys[j] {
				matches = append(matches, newMatch(c, p, 1.0, models.MatchTypeExact, now))
			}
		}
	}

	scorers := make([]similarity.Scorer, len(parties))
	for j, p := range parties {
		scorers[j] = e.algorithm(p.Name)
	}
	for _, c := range customers {
		for j, p := range parties {
			score := scorers[j].Score(c.Name)
			if score >= threshold && score < 1.0 {
				matches = append(matches, newMatch(c, p, score, models.MatchTypeSimilar, now))
			}
		}
	}
	return matches
}

func newMatch(c records.Customer, p records.RestrictedParty, score float64, matchType models.MatchType, now time.Time) models.Match {
	return models.Match{
		Customer:          c,
		RestrictedParty:   p,
		CustomerID:        c.ID,
		RestrictedPartyID: p.ID,
		Similarity:        score,
		MatchType:         matchType,
		MatchDate:         now,
	}
}

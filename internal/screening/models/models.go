package models

import (
	"encoding/json"
	"time"

	records "rpscreen/internal/records/models"
)

// MatchType tells which pass produced a match.
type MatchType string

const (
	MatchTypeExact   MatchType = "exact"
	MatchTypeSimilar MatchType = "similar"
)

// Match pairs a customer with a restricted party it resembles.
//
// Customer and RestrictedParty are snapshots taken at screening time and do
// not follow later edits; CustomerID and RestrictedPartyID identify the live
// records. Matches are addressed by their position in the list.
type Match struct {
	Customer          records.Customer        `json:"customer"`
	RestrictedParty   records.RestrictedParty `json:"restricted_party"`
	CustomerID        int                     `json:"customer_id"`
	RestrictedPartyID int                     `json:"restricted_party_id"`
	Similarity        float64                 `json:"similarity"`
	MatchType         MatchType               `json:"match_type"`
	HoldType          *string                 `json:"hold_type"`
	DType             *string                 `json:"dtype"`
	MatchDate         time.Time               `json:"match_date"`
}

// MarshalJSON writes hold_type as null on exact matches and leaves it out of
// similar matches until a hold is set.
func (m Match) MarshalJSON() ([]byte, error) {
	type match Match
	if m.MatchType == MatchTypeSimilar && m.HoldType == nil {
		return json.Marshal(struct {
			match
			HoldType *string `json:"hold_type,omitempty"`
		}{match: match(m)})
	}
	return json.Marshal(match(m))
}

// Key identifies a match across screening runs.
type Key struct {
	CustomerID        int
	RestrictedPartyID int
	MatchType         MatchType
}

func (m Match) Key() Key {
	return Key{CustomerID: m.CustomerID, RestrictedPartyID: m.RestrictedPartyID, MatchType: m.MatchType}
}

// SetHold records a resolution. An empty dtype leaves the previous one in place.
func (m *Match) SetHold(holdType, dtype string) {
	m.HoldType = &holdType
	if dtype != "" {
		m.DType = &dtype
	}
}

package handler

import "rpscreen/internal/screening/models"

// RunResponse is returned by POST /api/screening.
type RunResponse struct {
	Success        bool           `json:"success"`
	ExactMatches   int            `json:"exact_matches"`
	SimilarMatches int            `json:"similar_matches"`
	Matches        []models.Match `json:"matches"`
}

// HoldResponse is returned by PUT /api/matches/{index}/hold.
type HoldResponse struct {
	Success bool          `json:"success"`
	Index   int           `json:"index"`
	Match   *models.Match `json:"match"`
}

func newRunResponse(matches []models.Match) RunResponse {
	resp := RunResponse{Success: true, Matches: matches}
	if resp.Matches == nil {
		resp.Matches = []models.Match{}
	}
	for _, m := range matches {
		switch m.MatchType {
		case models.MatchTypeExact:
			resp.ExactMatches++
		case models.MatchTypeSimilar:
			resp.SimilarMatches++
		}
	}
	return resp
}

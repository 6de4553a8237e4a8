package handler

import (
	"strings"

	dErrors "rpscreen/pkg/domain-errors"
)

// HoldRequest is the body of PUT /api/matches/{index}/hold.
type HoldRequest struct {
	HoldType string `json:"hold_type"`
	DType    string `json:"dtype"`
}

func (r *HoldRequest) Normalize() {
	r.HoldType = strings.TrimSpace(r.HoldType)
	r.DType = strings.TrimSpace(r.DType)
}

func (r *HoldRequest) Validate() error {
	if r.HoldType == "" {
		return dErrors.New(dErrors.CodeValidation, "hold_type is required")
	}
	return nil
}

package handler

import "rpscreen/internal/records/models"

// DeletedCustomerResponse is returned by DELETE /api/customers/{id}.
type DeletedCustomerResponse struct {
	Success  bool             `json:"success"`
	Customer *models.Customer `json:"deleted_customer"`
}

// DeletedRestrictedPartyResponse is returned by DELETE /api/restricted-parties/{id}.
type DeletedRestrictedPartyResponse struct {
	Success bool                    `json:"success"`
	Party   *models.RestrictedParty `json:"deleted_party"`
}

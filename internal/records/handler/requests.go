package handler

import (
	"rpscreen/internal/records/models"
)

// CustomerRequest is the body of POST /api/customers.
// Name is checked by the service so direct and imported records share one rule.
type CustomerRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Comments string `json:"comments"`
}

func (r *CustomerRequest) Validate() error { return nil }

func (r *CustomerRequest) Input() models.NewCustomerInput {
	return models.NewCustomerInput{
		Name:     r.Name,
		Address:  r.Address,
		Phone:    r.Phone,
		Email:    r.Email,
		Comments: r.Comments,
	}
}

// CustomerPatchRequest is the body of PUT /api/customers/{id}. Absent keys
// leave the stored value alone.
type CustomerPatchRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Comments *string `json:"comments"`
}

func (r *CustomerPatchRequest) Validate() error { return nil }

func (r *CustomerPatchRequest) Patch() models.CustomerPatch {
	return models.CustomerPatch{
		Name:     r.Name,
		Address:  r.Address,
		Phone:    r.Phone,
		Email:    r.Email,
		Comments: r.Comments,
	}
}

// RestrictedPartyRequest is the body of POST /api/restricted-parties.
type RestrictedPartyRequest struct {
	Name     string `json:"name"`
	Reason   string `json:"reason"`
	Source   string `json:"source"`
	Comments string `json:"comments"`
}

func (r *RestrictedPartyRequest) Validate() error { return nil }

func (r *RestrictedPartyRequest) Input() models.NewRestrictedPartyInput {
	return models.NewRestrictedPartyInput{
		Name:     r.Name,
		Reason:   r.Reason,
		Source:   r.Source,
		Comments: r.Comments,
	}
}

// RestrictedPartyPatchRequest is the body of PUT /api/restricted-parties/{id}.
type RestrictedPartyPatchRequest struct {
	Name     *string `json:"name"`
	Reason   *string `json:"reason"`
	Source   *string `json:"source"`
	Comments *string `json:"comments"`
}

func (r *RestrictedPartyPatchRequest) Validate() error { return nil }

func (r *RestrictedPartyPatchRequest) Patch() models.RestrictedPartyPatch {
	return models.RestrictedPartyPatch{
		Name:     r.Name,
		Reason:   r.Reason,
		Source:   r.Source,
		Comments: r.Comments,
	}
}

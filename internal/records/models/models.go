package models

import (
	"strings"
	"time"
)

// Customer is a screened party. Name is the only field used for matching.
type Customer struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Address      string     `json:"address"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	Comments     string     `json:"comments"`
	CreatedDate  time.Time  `json:"created_date"`
	ModifiedDate *time.Time `json:"modified_date,omitempty"`
}

// RestrictedParty is a listed name customers are screened against.
type RestrictedParty struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Reason       string     `json:"reason"`
	Source       string     `json:"source"`
	Comments     string     `json:"comments"`
	CreatedDate  time.Time  `json:"created_date"`
	ModifiedDate *time.Time `json:"modified_date,omitempty"`
}

// NewCustomerInput holds the fields supplied when creating a customer.
type NewCustomerInput struct {
	Name     string `validate:"required"`
	Address  string
	Phone    string
	Email    string
	Comments string
}

// Normalize trims every field.
func (in *NewCustomerInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Comments = strings.TrimSpace(in.Comments)
}

// NewRestrictedPartyInput holds the fields supplied when creating a restricted party.
type NewRestrictedPartyInput struct {
	Name     string `validate:"required"`
	Reason   string
	Source   string
	Comments string
}

// Normalize trims every field.
func (in *NewRestrictedPartyInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Reason = strings.TrimSpace(in.Reason)
	in.Source = strings.TrimSpace(in.Source)
	in.Comments = strings.TrimSpace(in.Comments)
}

// CustomerPatch lists the customer fields to overwrite; nil fields are kept.
type CustomerPatch struct {
	Name     *string
	Address  *string
	Phone    *string
	Email    *string
	Comments *string
}

// Apply merges the patch into c and stamps the modification time.
func (p CustomerPatch) Apply(c *Customer, now time.Time) {
	setTrimmed(&c.Name, p.Name)
	setTrimmed(&c.Address, p.Address)
	setTrimmed(&c.Phone, p.Phone)
	setTrimmed(&c.Email, p.Email)
	setTrimmed(&c.Comments, p.Comments)
	c.ModifiedDate = &now
}

// RestrictedPartyPatch lists the restricted party fields to overwrite.
type RestrictedPartyPatch struct {
	Name     *string
	Reason   *string
	Source   *string
	Comments *string
}

// Apply merges the patch into p and stamps the modification time.
func (p RestrictedPartyPatch) Apply(rp *RestrictedParty, now time.Time) {
	setTrimmed(&rp.Name, p.Name)
	setTrimmed(&rp.Reason, p.Reason)
	setTrimmed(&rp.Source, p.Source)
	setTrimmed(&rp.Comments, p.Comments)
	rp.ModifiedDate = &now
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

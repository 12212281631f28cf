// Package refaccounts manages the RFB reference account registry: the tax
// authority's master chart every company chart-of-account entry links to.
package refaccounts

import "time"

// ReferenceAccount is a tax-authority-issued account. The uniqueness key is
// (code, validity year) and a nil validity year is itself part of the tuple.
type ReferenceAccount struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Description  string    `json:"description"`
	ValidityYear *int      `json:"validityYear,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

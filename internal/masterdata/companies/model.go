package companies

import "time"

// Company is the bookkeeping scope owner. AccountingCutoff is the Período
// Contábil: postings dated before it are locked against any change.
type Company struct {
	ID               int64      `json:"id"`
	TaxID            string     `json:"taxId"`
	LegalName        string     `json:"legalName"`
	AccountingCutoff *time.Time `json:"accountingCutoff,omitempty"`
	Active           bool       `json:"active"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

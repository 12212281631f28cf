// Package taxparams holds the registry of tax parameters referenced by
// Parte B adjustment entries. Only the flat registry lives here; the dated
// value timeline is managed elsewhere.
package taxparams

import "time"

// TaxParameter is an adjustment parameter published by the tax authority.
type TaxParameter struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

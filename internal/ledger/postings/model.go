// Package postings manages ledger postings (lançamentos contábeis): the
// double-entry records of the main financial ledger.
package postings

import (
	"time"

	"github.com/shopspring/decimal"
)

// Posting is one double-entry ledger record. Debit and credit accounts must
// differ (partidas dobradas) and the amount is strictly positive.
type Posting struct {
	ID              int64           `json:"id"`
	CompanyID       int64           `json:"companyId"`
	DebitAccountID  int64           `json:"debitAccountId"`
	CreditAccountID int64           `json:"creditAccountId"`
	Date            time.Time       `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	Memo            string          `json:"memo"`
	DocumentNumber  string          `json:"documentNumber,omitempty"`
	FiscalYear      int             `json:"fiscalYear"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ExportRow is a posting flattened for CSV export, with account codes in
// place of internal ids.
type ExportRow struct {
	DebitCode      string
	CreditCode     string
	Date           time.Time
	Amount         decimal.Decimal
	Memo           string
	DocumentNumber string
}

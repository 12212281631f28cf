// Package accounts manages Parte B accounts (contas da Parte B): the
// supplementary tax-adjustment ledger used for IRPJ/CSLL computation.
package accounts

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fiscalbr/elalur/internal/importer"
)

// TaxType selects which tax a Parte B record affects.
type TaxType string

const (
	TaxIRPJ TaxType = "IRPJ"
	TaxCSLL TaxType = "CSLL"
	TaxBoth TaxType = "BOTH"
)

// BalanceNature is the debit/credit nature of an opening balance.
type BalanceNature string

const (
	BalanceDebit  BalanceNature = "DEBIT"
	BalanceCredit BalanceNature = "CREDIT"
)

// PartBAccount is one Parte B control account, unique per company + base
// year. Validity end never precedes start when both are present.
type PartBAccount struct {
	ID             int64           `json:"id"`
	CompanyID      int64           `json:"companyId"`
	Code           string          `json:"code"`
	Description    string          `json:"description"`
	BaseYear       int             `json:"baseYear"`
	ValidityStart  *time.Time      `json:"validityStart,omitempty"`
	ValidityEnd    *time.Time      `json:"validityEnd,omitempty"`
	TaxType        TaxType         `json:"taxType"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	BalanceNature  BalanceNature   `json:"balanceNature"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ParseTaxType accepts IRPJ, CSLL and BOTH (or AMBOS), case-insensitively.
func ParseTaxType(s string) (TaxType, error) {
	switch importer.Fold(s) {
	case "irpj":
		return TaxIRPJ, nil
	case "csll":
		return TaxCSLL, nil
	case "both", "ambos":
		return TaxBoth, nil
	}
	return "", fmt.Errorf("invalid tax type %q", s)
}

// ParseBalanceNature accepts DEBIT/CREDIT and their Portuguese equivalents.
func ParseBalanceNature(s string) (BalanceNature, error) {
	switch importer.Fold(s) {
	case "debit", "devedora", "d":
		return BalanceDebit, nil
	case "credit", "credora", "c":
		return BalanceCredit, nil
	}
	return "", fmt.Errorf("invalid balance nature %q", s)
}

// Package accounts manages the company chart of accounts (plano de contas),
// scoped per company and fiscal year.
package accounts

import (
	"fmt"
	"time"

	"github.com/fiscalbr/elalur/internal/importer"
)

// AccountType classifies a chart account.
type AccountType string

const (
	TypeAsset     AccountType = "ASSET"
	TypeLiability AccountType = "LIABILITY"
	TypeRevenue   AccountType = "REVENUE"
	TypeExpense   AccountType = "EXPENSE"
)

// Nature is the debit/credit nature of an account.
type Nature string

const (
	NatureDebit  Nature = "DEBIT"
	NatureCredit Nature = "CREDIT"
)

// ChartAccount is one chart-of-accounts entry. Code and fiscal year are
// immutable after creation; deactivation replaces deletion.
type ChartAccount struct {
	ID                 int64       `json:"id"`
	CompanyID          int64       `json:"companyId"`
	Code               string      `json:"code"`
	Name               string      `json:"name"`
	FiscalYear         int         `json:"fiscalYear"`
	Type               AccountType `json:"type"`
	ReferenceAccountID int64       `json:"referenceAccountId"`
	Classification     string      `json:"classification"`
	Level              int         `json:"level"`
	Nature             Nature      `json:"nature"`
	AffectsResult      bool        `json:"affectsResult"`
	Deductible         bool        `json:"deductible"`
	Active             bool        `json:"active"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// ParseAccountType accepts the canonical enum names and their Portuguese
// equivalents, case- and accent-insensitively.
func ParseAccountType(s string) (AccountType, error) {
	switch importer.Fold(s) {
	case "asset", "ativo":
		return TypeAsset, nil
	case "liability", "passivo":
		return TypeLiability, nil
	case "revenue", "receita":
		return TypeRevenue, nil
	case "expense", "despesa":
		return TypeExpense, nil
	}
	return "", fmt.Errorf("invalid account type %q", s)
}

// ParseNature accepts DEBIT/CREDIT and their Portuguese equivalents.
func ParseNature(s string) (Nature, error) {
	switch importer.Fold(s) {
	case "debit", "devedora", "d":
		return NatureDebit, nil
	case "credit", "credora", "c":
		return NatureCredit, nil
	}
	return "", fmt.Errorf("invalid nature %q", s)
}

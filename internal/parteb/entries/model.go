// Package entries manages Parte B adjustment entries (lançamentos da Parte
// B): monthly IRPJ/CSLL additions and exclusions tied to a ledger account, a
// Parte B account, or both.
package entries

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fiscalbr/elalur/internal/importer"
	pbaccounts "github.com/fiscalbr/elalur/internal/parteb/accounts"
)

// RelationKind says which accounts an adjustment entry is linked to.
type RelationKind string

const (
	RelationLedger RelationKind = "LEDGER_ACCOUNT"
	RelationPartB  RelationKind = "PARTIAL_B_ACCOUNT"
	RelationBoth   RelationKind = "BOTH"
)

// AdjustmentKind is the direction of a Parte B adjustment.
type AdjustmentKind string

const (
	AdjustmentAddition  AdjustmentKind = "ADDITION"
	AdjustmentExclusion AdjustmentKind = "EXCLUSION"
)

// Relation binds an entry to exactly the account ids its kind implies. The
// constructors are the only way to build one, so a LEDGER_ACCOUNT relation
// can never carry a Parte B id and vice versa.
type Relation struct {
	kind            RelationKind
	ledgerAccountID int64
	partBAccountID  int64
}

func LedgerRelation(ledgerAccountID int64) Relation {
	return Relation{kind: RelationLedger, ledgerAccountID: ledgerAccountID}
}

func PartBRelation(partBAccountID int64) Relation {
	return Relation{kind: RelationPartB, partBAccountID: partBAccountID}
}

func BothRelation(ledgerAccountID, partBAccountID int64) Relation {
	return Relation{kind: RelationBoth, ledgerAccountID: ledgerAccountID, partBAccountID: partBAccountID}
}

func (rel Relation) Kind() RelationKind { return rel.kind }

// LedgerAccountID reports the ledger-account id and whether the kind carries one.
func (rel Relation) LedgerAccountID() (int64, bool) {
	return rel.ledgerAccountID, rel.kind == RelationLedger || rel.kind == RelationBoth
}

// PartBAccountID reports the Parte B account id and whether the kind carries one.
func (rel Relation) PartBAccountID() (int64, bool) {
	return rel.partBAccountID, rel.kind == RelationPartB || rel.kind == RelationBoth
}

type relationJSON struct {
	Kind            RelationKind `json:"kind"`
	LedgerAccountID *int64       `json:"ledgerAccountId,omitempty"`
	PartBAccountID  *int64       `json:"partBAccountId,omitempty"`
}

func (rel Relation) MarshalJSON() ([]byte, error) {
	out := relationJSON{Kind: rel.kind}
	if id, ok := rel.LedgerAccountID(); ok {
		out.LedgerAccountID = &id
	}
	if id, ok := rel.PartBAccountID(); ok {
		out.PartBAccountID = &id
	}
	return json.Marshal(out)
}

// Entry is one Parte B adjustment for a reference month/year.
type Entry struct {
	ID             int64              `json:"id"`
	CompanyID      int64              `json:"companyId"`
	Month          int                `json:"month"`
	Year           int                `json:"year"`
	TaxType        pbaccounts.TaxType `json:"taxType"`
	Relation       Relation           `json:"relation"`
	TaxParameterID int64              `json:"taxParameterId"`
	Kind           AdjustmentKind     `json:"adjustmentKind"`
	Description    string             `json:"description"`
	Amount         decimal.Decimal    `json:"amount"`
	Active         bool               `json:"active"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// ParseRelationKind accepts the canonical names and their Portuguese forms.
func ParseRelationKind(s string) (RelationKind, error) {
	switch importer.Fold(s) {
	case "ledger_account", "conta_contabil", "contacontabil":
		return RelationLedger, nil
	case "partial_b_account", "conta_parte_b", "contaparteb":
		return RelationPartB, nil
	case "both", "ambos", "ambas":
		return RelationBoth, nil
	}
	return "", fmt.Errorf("invalid relationship kind %q", s)
}

// ParseAdjustmentKind accepts ADDITION/EXCLUSION and adição/exclusão.
func ParseAdjustmentKind(s string) (AdjustmentKind, error) {
	switch importer.Fold(s) {
	case "addition", "adicao":
		return AdjustmentAddition, nil
	case "exclusion", "exclusao":
		return AdjustmentExclusion, nil
	}
	return "", fmt.Errorf("invalid adjustment kind %q", s)
}

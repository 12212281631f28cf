package entries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pbaccounts "github.com/fiscalbr/elalur/internal/parteb/accounts"
	"github.com/fiscalbr/elalur/internal/shared"
)

const (
	minMonth = 1
	maxMonth = 12
)

// buildEntry is the manual-path entry validator, shared by create and
// update: field presence, enum parsing, range checks, the conditional-FK
// rules of the relationship kind, then resolution of every present FK within
// the entry's company scope.
func (s *Service) buildEntry(ctx context.Context, companyID int64, input Input) (Entry, error) {
	if strings.TrimSpace(input.TaxType) == "" {
		return Entry{}, errors.New("tax type is required")
	}
	if strings.TrimSpace(input.RelationKind) == "" {
		return Entry{}, errors.New("relationship kind is required")
	}
	if strings.TrimSpace(input.ParameterCode) == "" {
		return Entry{}, errors.New("tax parameter code is required")
	}
	if strings.TrimSpace(input.AdjustmentKind) == "" {
		return Entry{}, errors.New("adjustment kind is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return Entry{}, errors.New("description is required")
	}

	taxType, err := pbaccounts.ParseTaxType(input.TaxType)
	if err != nil {
		return Entry{}, err
	}
	relationKind, err := ParseRelationKind(input.RelationKind)
	if err != nil {
		return Entry{}, err
	}
	adjustmentKind, err := ParseAdjustmentKind(input.AdjustmentKind)
	if err != nil {
		return Entry{}, err
	}

	if input.Month < minMonth || input.Month > maxMonth {
		return Entry{}, fmt.Errorf("month %d out of range [%d, %d]", input.Month, minMonth, maxMonth)
	}
	if input.Year < 2000 {
		return Entry{}, fmt.Errorf("year %d must be 2000 or later", input.Year)
	}
	if !input.Amount.IsPositive() {
		return Entry{}, errors.New("amount must be greater than zero")
	}

	relation, err := s.resolveRelation(ctx, companyID, input.Year, relationKind,
		strings.TrimSpace(input.LedgerCode), strings.TrimSpace(input.PartBCode))
	if err != nil {
		return Entry{}, err
	}

	parameterCode := strings.TrimSpace(input.ParameterCode)
	parameter, err := s.params.ResolveActive(ctx, parameterCode)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return Entry{}, fmt.Errorf("tax parameter %s not found", parameterCode)
	case errors.Is(err, shared.ErrInactive):
		return Entry{}, fmt.Errorf("tax parameter %s is inactive", parameterCode)
	case err != nil:
		return Entry{}, fmt.Errorf("resolve tax parameter %s: %v", parameterCode, err)
	}

	return Entry{
		CompanyID:      companyID,
		Month:          input.Month,
		Year:           input.Year,
		TaxType:        taxType,
		Relation:       relation,
		TaxParameterID: parameter.ID,
		Kind:           adjustmentKind,
		Description:    strings.TrimSpace(input.Description),
		Amount:         input.Amount,
	}, nil
}

// resolveRelation enforces that exactly the codes implied by the kind are
// present, then resolves each within the company scope so ownership is
// implied by a successful lookup.
func (s *Service) resolveRelation(ctx context.Context, companyID int64, year int, kind RelationKind, ledgerCode, partBCode string) (Relation, error) {
	switch kind {
	case RelationLedger:
		if ledgerCode == "" {
			return Relation{}, fmt.Errorf("relationship kind %s requires a ledger account code", kind)
		}
		if partBCode != "" {
			return Relation{}, fmt.Errorf("relationship kind %s forbids a parte b account code", kind)
		}
		ledgerID, err := s.resolveLedger(ctx, companyID, year, ledgerCode)
		if err != nil {
			return Relation{}, err
		}
		return LedgerRelation(ledgerID), nil
	case RelationPartB:
		if partBCode == "" {
			return Relation{}, fmt.Errorf("relationship kind %s requires a parte b account code", kind)
		}
		if ledgerCode != "" {
			return Relation{}, fmt.Errorf("relationship kind %s forbids a ledger account code", kind)
		}
		partBID, err := s.resolvePartB(ctx, companyID, year, partBCode)
		if err != nil {
			return Relation{}, err
		}
		return PartBRelation(partBID), nil
	case RelationBoth:
		if ledgerCode == "" {
			return Relation{}, fmt.Errorf("relationship kind %s requires a ledger account code", kind)
		}
		if partBCode == "" {
			return Relation{}, fmt.Errorf("relationship kind %s requires a parte b account code", kind)
		}
		ledgerID, err := s.resolveLedger(ctx, companyID, year, ledgerCode)
		if err != nil {
			return Relation{}, err
		}
		partBID, err := s.resolvePartB(ctx, companyID, year, partBCode)
		if err != nil {
			return Relation{}, err
		}
		return BothRelation(ledgerID, partBID), nil
	}
	return Relation{}, fmt.Errorf("unknown relationship kind %q", kind)
}

func (s *Service) resolveLedger(ctx context.Context, companyID int64, year int, code string) (int64, error) {
	account, err := s.ledger.ResolveAccount(ctx, companyID, year, code)
	if errors.Is(err, shared.ErrNotFound) {
		return 0, fmt.Errorf("ledger account %s not found for fiscal year %d", code, year)
	}
	if err != nil {
		return 0, err
	}
	return account.ID, nil
}

func (s *Service) resolvePartB(ctx context.Context, companyID int64, year int, code string) (int64, error) {
	account, err := s.partB.ResolvePartB(ctx, companyID, year, code)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return 0, fmt.Errorf("parte b account %s not found for base year %d", code, year)
	case errors.Is(err, shared.ErrInactive):
		return 0, fmt.Errorf("parte b account %s is inactive", code)
	case err != nil:
		return 0, err
	}
	return account.ID, nil
}

package postings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fiscalbr/elalur/internal/ledger/accounts"
	"github.com/fiscalbr/elalur/internal/shared"
)

// ErrSameAccount rejects a posting whose two legs hit one account.
var ErrSameAccount = errors.New("debit and credit accounts must be different")

// buildPosting is the manual-path posting validator, shared by create and
// update: field presence, amount > 0, debit != credit, then both account
// resolutions within the posting's company + fiscal year.
func (s *Service) buildPosting(ctx context.Context, companyID int64, input Input) (Posting, error) {
	debitCode := strings.TrimSpace(input.DebitCode)
	creditCode := strings.TrimSpace(input.CreditCode)
	if debitCode == "" {
		return Posting{}, errors.New("debit account code is required")
	}
	if creditCode == "" {
		return Posting{}, errors.New("credit account code is required")
	}
	if input.Date.IsZero() {
		return Posting{}, errors.New("posting date is required")
	}
	if strings.TrimSpace(input.Memo) == "" {
		return Posting{}, errors.New("memo is required")
	}
	if input.FiscalYear < 2000 {
		return Posting{}, fmt.Errorf("fiscal year %d must be 2000 or later", input.FiscalYear)
	}
	if !input.Amount.IsPositive() {
		return Posting{}, errors.New("amount must be greater than zero")
	}
	if debitCode == creditCode {
		return Posting{}, ErrSameAccount
	}

	debit, err := s.resolve(ctx, companyID, input.FiscalYear, debitCode)
	if err != nil {
		return Posting{}, err
	}
	credit, err := s.resolve(ctx, companyID, input.FiscalYear, creditCode)
	if err != nil {
		return Posting{}, err
	}
	if debit.ID == credit.ID {
		return Posting{}, ErrSameAccount
	}

	return Posting{
		CompanyID:       companyID,
		DebitAccountID:  debit.ID,
		CreditAccountID: credit.ID,
		Date:            input.Date,
		Amount:          input.Amount,
		Memo:            strings.TrimSpace(input.Memo),
		DocumentNumber:  strings.TrimSpace(input.DocumentNumber),
		FiscalYear:      input.FiscalYear,
	}, nil
}

func (s *Service) resolve(ctx context.Context, companyID int64, fiscalYear int, code string) (accounts.ChartAccount, error) {
	account, err := s.accounts.ResolveAccount(ctx, companyID, fiscalYear, code)
	if errors.Is(err, shared.ErrNotFound) {
		return accounts.ChartAccount{}, fmt.Errorf("account %s not found for fiscal year %d", code, fiscalYear)
	}
	return account, err
}

package accounts

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fiscalbr/elalur/internal/importer"
	"github.com/fiscalbr/elalur/internal/shared"
)

// CreateInput carries the fields of a manual Parte B account request.
type CreateInput struct {
	Code           string
	Description    string
	BaseYear       int
	ValidityStart  *time.Time
	ValidityEnd    *time.Time
	TaxType        string
	OpeningBalance decimal.Decimal
	BalanceNature  string
}

type Service struct {
	repo   Repository
	logger *slog.Logger
	orch   *importer.Orchestrator[PartBAccount, ImportPreview]
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		orch:   importer.NewOrchestrator[PartBAccount, ImportPreview](ImportLayout, importer.MaxLedgerFileSize, logger),
	}
}

func (s *Service) List(ctx context.Context, baseYear int) ([]PartBAccount, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, companyID, baseYear)
}

func (s *Service) Get(ctx context.Context, id int64) (PartBAccount, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return PartBAccount{}, err
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, input CreateInput) (PartBAccount, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return PartBAccount{}, err
	}
	account, err := build(companyID, input)
	if err != nil {
		return PartBAccount{}, err
	}
	return s.repo.Create(ctx, account)
}

// Update rewrites the mutable fields. Code and base year stay as created.
func (s *Service) Update(ctx context.Context, id int64, input CreateInput) error {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return err
	}
	current, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return err
	}
	input.Code = current.Code
	input.BaseYear = current.BaseYear
	account, err := build(companyID, input)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, companyID, id, account)
}

// ToggleStatus flips soft-deactivation; Parte B accounts are never deleted.
func (s *Service) ToggleStatus(ctx context.Context, id int64) (PartBAccount, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return PartBAccount{}, err
	}
	current, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return PartBAccount{}, err
	}
	if err := s.repo.SetActive(ctx, companyID, id, !current.Active); err != nil {
		return PartBAccount{}, err
	}
	current.Active = !current.Active
	return current, nil
}

// ResolvePartB satisfies the adjustment-entry validators' lookup. Inactive
// accounts resolve to shared.ErrInactive so callers can tell the cases apart.
func (s *Service) ResolvePartB(ctx context.Context, companyID int64, baseYear int, code string) (PartBAccount, error) {
	account, err := s.repo.FindByCode(ctx, companyID, baseYear, code)
	if err != nil {
		return PartBAccount{}, err
	}
	if !account.Active {
		return PartBAccount{}, shared.ErrInactive
	}
	return account, nil
}

// Import bulk-loads Parte B accounts for the company in context.
func (s *Service) Import(ctx context.Context, baseYear int, content []byte, dryRun bool) (importer.Result[ImportPreview], error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return importer.Result[ImportPreview]{}, err
	}
	proc := NewImportProcessor(s.repo, companyID, baseYear)
	return s.orch.Run(ctx, proc, content, dryRun)
}

func build(companyID int64, input CreateInput) (PartBAccount, error) {
	if err := validateInput(input); err != nil {
		return PartBAccount{}, err
	}
	taxType, err := ParseTaxType(input.TaxType)
	if err != nil {
		return PartBAccount{}, err
	}
	nature, err := ParseBalanceNature(input.BalanceNature)
	if err != nil {
		return PartBAccount{}, err
	}
	return PartBAccount{
		CompanyID:      companyID,
		Code:           input.Code,
		Description:    input.Description,
		BaseYear:       input.BaseYear,
		ValidityStart:  input.ValidityStart,
		ValidityEnd:    input.ValidityEnd,
		TaxType:        taxType,
		OpeningBalance: input.OpeningBalance,
		BalanceNature:  nature,
		Active:         true,
	}, nil
}

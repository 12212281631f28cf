package accounts

import (
	"context"
	"log/slog"

	"github.com/fiscalbr/elalur/internal/importer"
	"github.com/fiscalbr/elalur/internal/shared"
)

// ReferenceResolver resolves an active RFB reference account code to its id,
// preferring the entry scoped to the fiscal year. Returns shared.ErrNotFound
// for an unknown code and shared.ErrInactive for a deactivated one.
type ReferenceResolver interface {
	ResolveReference(ctx context.Context, code string, fiscalYear int) (int64, error)
}

// CreateInput carries the fields of a manual chart-account request. The
// reference account arrives as the RFB code and is resolved here.
type CreateInput struct {
	Code           string
	Name           string
	FiscalYear     int
	Type           string
	ReferenceCode  string
	Classification string
	Level          int
	Nature         string
	AffectsResult  bool
	Deductible     bool
}

type Service struct {
	repo       Repository
	references ReferenceResolver
	logger     *slog.Logger
	orch       *importer.Orchestrator[ChartAccount, ImportPreview]
}

func NewService(repo Repository, references ReferenceResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		references: references,
		logger:     logger,
		orch:       importer.NewOrchestrator[ChartAccount, ImportPreview](ImportLayout, importer.MaxMasterFileSize, logger),
	}
}

func (s *Service) List(ctx context.Context, fiscalYear int) ([]ChartAccount, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, companyID, fiscalYear)
}

func (s *Service) Get(ctx context.Context, id int64) (ChartAccount, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return ChartAccount{}, err
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, input CreateInput) (ChartAccount, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return ChartAccount{}, err
	}
	account, err := s.build(ctx, companyID, input)
	if err != nil {
		return ChartAccount{}, err
	}
	return s.repo.Create(ctx, account)
}

// Update rewrites the mutable fields. Code and fiscal year stay as created.
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
	input.FiscalYear = current.FiscalYear
	account, err := s.build(ctx, companyID, input)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, companyID, id, account)
}

// ToggleStatus flips soft-deactivation; chart accounts are never deleted.
func (s *Service) ToggleStatus(ctx context.Context, id int64) (ChartAccount, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return ChartAccount{}, err
	}
	current, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return ChartAccount{}, err
	}
	if err := s.repo.SetActive(ctx, companyID, id, !current.Active); err != nil {
		return ChartAccount{}, err
	}
	current.Active = !current.Active
	return current, nil
}

// ResolveAccount satisfies the posting validators' account lookup.
func (s *Service) ResolveAccount(ctx context.Context, companyID int64, fiscalYear int, code string) (ChartAccount, error) {
	return s.repo.FindByCode(ctx, companyID, fiscalYear, code)
}

// Import bulk-loads chart accounts for the company in context.
func (s *Service) Import(ctx context.Context, fiscalYear int, content []byte, dryRun bool) (importer.Result[ImportPreview], error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return importer.Result[ImportPreview]{}, err
	}
	proc := NewImportProcessor(s.repo, s.references, companyID, fiscalYear)
	return s.orch.Run(ctx, proc, content, dryRun)
}

func (s *Service) build(ctx context.Context, companyID int64, input CreateInput) (ChartAccount, error) {
	if err := validateInput(input); err != nil {
		return ChartAccount{}, err
	}
	accountType, err := ParseAccountType(input.Type)
	if err != nil {
		return ChartAccount{}, err
	}
	nature, err := ParseNature(input.Nature)
	if err != nil {
		return ChartAccount{}, err
	}
	referenceID, err := s.references.ResolveReference(ctx, input.ReferenceCode, input.FiscalYear)
	if err != nil {
		return ChartAccount{}, err
	}
	return ChartAccount{
		CompanyID:          companyID,
		Code:               input.Code,
		Name:               input.Name,
		FiscalYear:         input.FiscalYear,
		Type:               accountType,
		ReferenceAccountID: referenceID,
		Classification:     input.Classification,
		Level:              input.Level,
		Nature:             nature,
		AffectsResult:      input.AffectsResult,
		Deductible:         input.Deductible,
		Active:             true,
	}, nil
}

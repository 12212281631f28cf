package entries

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/fiscalbr/elalur/internal/importer"
	ledgeraccounts "github.com/fiscalbr/elalur/internal/ledger/accounts"
	"github.com/fiscalbr/elalur/internal/masterdata/taxparams"
	pbaccounts "github.com/fiscalbr/elalur/internal/parteb/accounts"
	"github.com/fiscalbr/elalur/internal/shared"
)

// LedgerResolver looks up a chart account by code within the company and
// fiscal-year scope, so ownership is implied by a successful lookup.
type LedgerResolver interface {
	ResolveAccount(ctx context.Context, companyID int64, fiscalYear int, code string) (ledgeraccounts.ChartAccount, error)
}

// PartBResolver looks up an active Parte B account by code within the
// company and base-year scope.
type PartBResolver interface {
	ResolvePartB(ctx context.Context, companyID int64, baseYear int, code string) (pbaccounts.PartBAccount, error)
}

// ParameterResolver resolves an active tax parameter by its RFB code.
type ParameterResolver interface {
	ResolveActive(ctx context.Context, code string) (taxparams.TaxParameter, error)
}

// Input carries the fields of a manual adjustment-entry request. Accounts
// and the tax parameter arrive as codes and are resolved here.
type Input struct {
	Month          int
	Year           int
	TaxType        string
	RelationKind   string
	LedgerCode     string
	PartBCode      string
	ParameterCode  string
	AdjustmentKind string
	Description    string
	Amount         decimal.Decimal
}

type Service struct {
	repo   Repository
	ledger LedgerResolver
	partB  PartBResolver
	params ParameterResolver
	logger *slog.Logger
	orch   *importer.Orchestrator[Entry, ImportPreview]
}

func NewService(repo Repository, ledger LedgerResolver, partB PartBResolver, params ParameterResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		ledger: ledger,
		partB:  partB,
		params: params,
		logger: logger,
		orch:   importer.NewOrchestrator[Entry, ImportPreview](ImportLayout, importer.MaxLedgerFileSize, logger),
	}
}

func (s *Service) List(ctx context.Context, year int) ([]Entry, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, companyID, year)
}

func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return Entry{}, err
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, input Input) (Entry, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return Entry{}, err
	}
	entry, err := s.buildEntry(ctx, companyID, input)
	if err != nil {
		return Entry{}, err
	}
	entry.Active = true
	return s.repo.Create(ctx, entry)
}

func (s *Service) Update(ctx context.Context, id int64, input Input) error {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, companyID, id); err != nil {
		return err
	}
	entry, err := s.buildEntry(ctx, companyID, input)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, companyID, id, entry)
}

// ToggleStatus flips soft-deactivation; adjustment entries are never deleted.
func (s *Service) ToggleStatus(ctx context.Context, id int64) (Entry, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return Entry{}, err
	}
	current, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return Entry{}, err
	}
	if err := s.repo.SetActive(ctx, companyID, id, !current.Active); err != nil {
		return Entry{}, err
	}
	current.Active = !current.Active
	return current, nil
}

// Import bulk-loads adjustment entries for the company in context.
func (s *Service) Import(ctx context.Context, content []byte, dryRun bool) (importer.Result[ImportPreview], error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return importer.Result[ImportPreview]{}, err
	}
	proc := NewImportProcessor(s, companyID)
	return s.orch.Run(ctx, proc, content, dryRun)
}

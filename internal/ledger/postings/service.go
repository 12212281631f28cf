package postings

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fiscalbr/elalur/internal/importer"
	"github.com/fiscalbr/elalur/internal/ledger/accounts"
	"github.com/fiscalbr/elalur/internal/ledger/periodlock"
	"github.com/fiscalbr/elalur/internal/shared"
)

// AccountResolver looks up a chart account by code within the company and
// fiscal-year scope, so ownership is implied by a successful lookup.
type AccountResolver interface {
	ResolveAccount(ctx context.Context, companyID int64, fiscalYear int, code string) (accounts.ChartAccount, error)
}

// Input carries the fields of a manual posting request. Accounts arrive as
// chart codes and are resolved against the posting's company + fiscal year.
type Input struct {
	DebitCode      string
	CreditCode     string
	Date           time.Time
	Amount         decimal.Decimal
	Memo           string
	DocumentNumber string
	FiscalYear     int
}

type Service struct {
	repo     Repository
	accounts AccountResolver
	guard    *periodlock.Guard
	logger   *slog.Logger
	orch     *importer.Orchestrator[Posting, ImportPreview]
}

func NewService(repo Repository, resolver AccountResolver, guard *periodlock.Guard, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		accounts: resolver,
		guard:    guard,
		logger:   logger,
		orch:     importer.NewOrchestrator[Posting, ImportPreview](ImportLayout, importer.MaxLedgerFileSize, logger),
	}
}

func (s *Service) List(ctx context.Context, fiscalYear int) ([]Posting, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, companyID, fiscalYear)
}

func (s *Service) Get(ctx context.Context, id int64) (Posting, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return Posting{}, err
	}
	return s.repo.Get(ctx, companyID, id)
}

// Create runs the manual-path posting validator and the period lock before
// writing anything.
func (s *Service) Create(ctx context.Context, input Input) (Posting, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return Posting{}, err
	}
	posting, err := s.buildPosting(ctx, companyID, input)
	if err != nil {
		return Posting{}, err
	}
	if err := s.guard.EnsureCreate(ctx, companyID, posting.Date); err != nil {
		return Posting{}, err
	}
	posting.Active = true
	return s.repo.Create(ctx, posting)
}

// Update checks the stored date against the period lock before any new field
// is considered: a posting already behind the cutoff cannot be edited at all,
// not even into an allowed date. The new date is then checked as well.
func (s *Service) Update(ctx context.Context, id int64, input Input) error {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return err
	}
	stored, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return err
	}
	if err := s.guard.EnsureUpdate(ctx, companyID, stored.Date, input.Date); err != nil {
		return err
	}
	input.FiscalYear = stored.FiscalYear
	posting, err := s.buildPosting(ctx, companyID, input)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, companyID, id, posting)
}

// ToggleStatus flips the active flag, guarded against the stored date only.
func (s *Service) ToggleStatus(ctx context.Context, id int64) (Posting, error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return Posting{}, err
	}
	stored, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return Posting{}, err
	}
	if err := s.guard.EnsureToggle(ctx, companyID, stored.Date); err != nil {
		return Posting{}, err
	}
	if err := s.repo.SetActive(ctx, companyID, id, !stored.Active); err != nil {
		return Posting{}, err
	}
	stored.Active = !stored.Active
	return stored, nil
}

// Import bulk-loads postings for the company in context. Period-lock
// violations surface as line errors here, not request rejections.
func (s *Service) Import(ctx context.Context, fiscalYear int, content []byte, dryRun bool) (importer.Result[ImportPreview], error) {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return importer.Result[ImportPreview]{}, err
	}
	proc := NewImportProcessor(s.repo, s.accounts, s.guard, companyID, fiscalYear)
	return s.orch.Run(ctx, proc, content, dryRun)
}

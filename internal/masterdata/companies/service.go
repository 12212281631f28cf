package companies

import (
	"context"
	"fmt"
	"time"

	"github.com/fiscalbr/elalur/internal/shared"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]Company, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	if id <= 0 {
		return Company{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, company Company) (Company, error) {
	if err := s.validate(company); err != nil {
		return Company{}, err
	}
	company.Active = true
	return s.repo.Create(ctx, company)
}

func (s *Service) Update(ctx context.Context, id int64, company Company) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := s.validate(company); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, company)
}

// ToggleStatus flips the soft-deactivation flag. Companies are never deleted.
func (s *Service) ToggleStatus(ctx context.Context, id int64) (Company, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Company{}, err
	}
	if err := s.repo.SetActive(ctx, id, !current.Active); err != nil {
		return Company{}, err
	}
	current.Active = !current.Active
	return current, nil
}

// UpdateAccountingCutoff moves the Período Contábil and leaves an audit trail.
// Every ledger-affecting operation reads the value this sets.
func (s *Service) UpdateAccountingCutoff(ctx context.Context, id int64, actorID int64, cutoff *time.Time) error {
	previous, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.UpdateAccountingCutoff(ctx, id, cutoff, shared.AuditLog{
		ActorID:   actorID,
		CompanyID: id,
		Action:    "company.cutoff_update",
		Entity:    "company",
		EntityID:  fmt.Sprintf("%d", id),
		Meta: map[string]any{
			"previous": formatCutoff(previous.AccountingCutoff),
			"current":  formatCutoff(cutoff),
		},
		At: s.now(),
	})
}

// AccountingCutoff satisfies periodlock.CutoffSource.
func (s *Service) AccountingCutoff(ctx context.Context, id int64) (*time.Time, error) {
	return s.repo.AccountingCutoff(ctx, id)
}

func formatCutoff(cutoff *time.Time) string {
	if cutoff == nil {
		return ""
	}
	return cutoff.Format("2006-01-02")
}

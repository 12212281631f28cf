package taxparams

import (
	"context"
	"errors"
	"strings"

	"github.com/fiscalbr/elalur/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]TaxParameter, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (TaxParameter, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, param TaxParameter) (TaxParameter, error) {
	if strings.TrimSpace(param.Code) == "" {
		return TaxParameter{}, errors.New("taxparams: code is required")
	}
	if strings.TrimSpace(param.Description) == "" {
		return TaxParameter{}, errors.New("taxparams: description is required")
	}
	param.Active = true
	return s.repo.Create(ctx, param)
}

func (s *Service) Update(ctx context.Context, id int64, param TaxParameter) error {
	if strings.TrimSpace(param.Description) == "" {
		return errors.New("taxparams: description is required")
	}
	return s.repo.Update(ctx, id, param)
}

func (s *Service) ToggleStatus(ctx context.Context, id int64) (TaxParameter, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return TaxParameter{}, err
	}
	if err := s.repo.SetActive(ctx, id, !current.Active); err != nil {
		return TaxParameter{}, err
	}
	current.Active = !current.Active
	return current, nil
}

// ResolveActive finds a parameter by code and requires it to be active.
// Inactive parameters surface as a distinct condition from missing ones.
func (s *Service) ResolveActive(ctx context.Context, code string) (TaxParameter, error) {
	param, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return TaxParameter{}, err
	}
	if !param.Active {
		return TaxParameter{}, shared.ErrInactive
	}
	return param, nil
}

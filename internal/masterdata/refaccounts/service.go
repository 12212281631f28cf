package refaccounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fiscalbr/elalur/internal/importer"
	"github.com/fiscalbr/elalur/internal/platform/cache"
	"github.com/fiscalbr/elalur/internal/shared"
)

const lookupCacheTTL = 10 * time.Minute

type Service struct {
	repo   Repository
	cache  *redis.Client
	logger *slog.Logger
	orch   *importer.Orchestrator[ReferenceAccount, ImportPreview]
}

func NewService(repo Repository, cacheClient *redis.Client, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cacheClient,
		logger: logger,
		orch:   importer.NewOrchestrator[ReferenceAccount, ImportPreview](ImportLayout, importer.MaxMasterFileSize, logger),
	}
}

func (s *Service) List(ctx context.Context) ([]ReferenceAccount, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (ReferenceAccount, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, account ReferenceAccount) (ReferenceAccount, error) {
	if err := validate(account); err != nil {
		return ReferenceAccount{}, err
	}
	account.Active = true
	return s.repo.Create(ctx, account)
}

func (s *Service) Update(ctx context.Context, id int64, account ReferenceAccount) error {
	if strings.TrimSpace(account.Description) == "" {
		return errors.New("refaccounts: description is required")
	}
	if err := s.repo.Update(ctx, id, account); err != nil {
		return err
	}
	s.dropCached(ctx, id)
	return nil
}

func (s *Service) ToggleStatus(ctx context.Context, id int64) (ReferenceAccount, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return ReferenceAccount{}, err
	}
	if err := s.repo.SetActive(ctx, id, !current.Active); err != nil {
		return ReferenceAccount{}, err
	}
	s.dropCached(ctx, id)
	current.Active = !current.Active
	return current, nil
}

// ResolveActive looks up a reference account by RFB code, preferring the
// fiscal-year-scoped entry. Inactive accounts are a distinct condition from
// missing ones: linking to a deactivated RFB code is rejected, not retried.
func (s *Service) ResolveActive(ctx context.Context, code string, year *int) (ReferenceAccount, error) {
	account, ok := s.cachedLookup(ctx, code, year)
	if !ok {
		var err error
		account, err = s.repo.FindByCode(ctx, code, year)
		if err != nil {
			return ReferenceAccount{}, err
		}
		s.storeCached(ctx, code, year, account)
	}
	if !account.Active {
		return ReferenceAccount{}, shared.ErrInactive
	}
	return account, nil
}

// Import runs the reference-account bulk load. Administrators only; the
// registry is global, so no company scope applies.
func (s *Service) Import(ctx context.Context, content []byte, dryRun bool) (importer.Result[ImportPreview], error) {
	return s.orch.Run(ctx, NewImportProcessor(s.repo), content, dryRun)
}

func validate(a ReferenceAccount) error {
	if strings.TrimSpace(a.Code) == "" {
		return errors.New("refaccounts: code is required")
	}
	if strings.TrimSpace(a.Description) == "" {
		return errors.New("refaccounts: description is required")
	}
	return nil
}

func lookupKey(code string, year *int) string {
	if year == nil {
		return fmt.Sprintf("refacct:%s:", code)
	}
	return fmt.Sprintf("refacct:%s:%d", code, *year)
}

func (s *Service) cachedLookup(ctx context.Context, code string, year *int) (ReferenceAccount, bool) {
	if s.cache == nil {
		return ReferenceAccount{}, false
	}
	var account ReferenceAccount
	hit, err := cache.GetJSON(ctx, s.cache, lookupKey(code, year), &account)
	if err != nil {
		s.logger.Warn("reference account cache read", slog.Any("error", err))
		return ReferenceAccount{}, false
	}
	return account, hit
}

func (s *Service) storeCached(ctx context.Context, code string, year *int, account ReferenceAccount) {
	if s.cache == nil {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, lookupKey(code, year), account, lookupCacheTTL); err != nil {
		s.logger.Warn("reference account cache write", slog.Any("error", err))
	}
}

// dropCached invalidates lookups for an account after a mutation. The key
// space is per (code, year), so invalidate both scoped and unscoped entries.
func (s *Service) dropCached(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return
	}
	keys := []string{lookupKey(account.Code, nil)}
	if account.ValidityYear != nil {
		keys = append(keys, lookupKey(account.Code, account.ValidityYear))
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("reference account cache invalidate", slog.Any("error", err))
	}
}

package refaccounts

import (
	"context"
	"io"
	"log/slog"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/fiscalbr/elalur/internal/shared"
)

type memoryRepo struct {
	nextID    int64
	accounts  map[int64]ReferenceAccount
	findCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, accounts: make(map[int64]ReferenceAccount)}
}

func (m *memoryRepo) List(context.Context) ([]ReferenceAccount, error) {
	var out []ReferenceAccount
	for _, a := range m.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (ReferenceAccount, error) {
	a, ok := m.accounts[id]
	if !ok {
		return ReferenceAccount{}, shared.ErrNotFound
	}
	return a, nil
}

func (m *memoryRepo) Create(_ context.Context, account ReferenceAccount) (ReferenceAccount, error) {
	for _, a := range m.accounts {
		if a.Code == account.Code && yearEqual(a.ValidityYear, account.ValidityYear) {
			return ReferenceAccount{}, shared.ErrDuplicate
		}
	}
	account.ID = m.nextID
	m.nextID++
	m.accounts[account.ID] = account
	return account, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, account ReferenceAccount) error {
	stored, ok := m.accounts[id]
	if !ok {
		return shared.ErrNotFound
	}
	stored.Description = account.Description
	m.accounts[id] = stored
	return nil
}

func (m *memoryRepo) SetActive(_ context.Context, id int64, active bool) error {
	stored, ok := m.accounts[id]
	if !ok {
		return shared.ErrNotFound
	}
	stored.Active = active
	m.accounts[id] = stored
	return nil
}

func (m *memoryRepo) FindByCode(_ context.Context, code string, year *int) (ReferenceAccount, error) {
	m.findCalls++
	// Exact (code, year) match first, then the year-less registry entry.
	for _, a := range m.accounts {
		if a.Code == code && yearEqual(a.ValidityYear, year) {
			return a, nil
		}
	}
	for _, a := range m.accounts {
		if a.Code == code && a.ValidityYear == nil {
			return a, nil
		}
	}
	return ReferenceAccount{}, shared.ErrNotFound
}

func (m *memoryRepo) Exists(ctx context.Context, code string, year *int) (bool, error) {
	for _, a := range m.accounts {
		if a.Code == code && yearEqual(a.ValidityYear, year) {
			return true, nil
		}
	}
	return false, nil
}

func yearEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCachedService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, client, testLogger())
}

func intPtr(v int) *int { return &v }

func TestResolveActivePrefersYearScopedEntry(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, testLogger())

	_, err := svc.Create(context.Background(), ReferenceAccount{Code: "REF-1", Description: "geral"})
	require.NoError(t, err)
	scoped, err := svc.Create(context.Background(), ReferenceAccount{Code: "REF-1", Description: "2024", ValidityYear: intPtr(2024)})
	require.NoError(t, err)

	got, err := svc.ResolveActive(context.Background(), "REF-1", intPtr(2024))
	require.NoError(t, err)
	require.Equal(t, scoped.ID, got.ID)
}

func TestResolveActiveFallsBackToYearlessEntry(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, testLogger())

	created, err := svc.Create(context.Background(), ReferenceAccount{Code: "REF-1", Description: "geral"})
	require.NoError(t, err)

	got, err := svc.ResolveActive(context.Background(), "REF-1", intPtr(2030))
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestResolveActiveInactiveIsDistinct(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, testLogger())

	created, err := svc.Create(context.Background(), ReferenceAccount{Code: "REF-1", Description: "geral"})
	require.NoError(t, err)
	_, err = svc.ToggleStatus(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = svc.ResolveActive(context.Background(), "REF-1", nil)
	require.ErrorIs(t, err, shared.ErrInactive)

	_, err = svc.ResolveActive(context.Background(), "REF-404", nil)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestResolveActiveUsesCache(t *testing.T) {
	repo := newMemoryRepo()
	svc := newCachedService(t, repo)

	_, err := svc.Create(context.Background(), ReferenceAccount{Code: "REF-1", Description: "geral"})
	require.NoError(t, err)

	for range 3 {
		_, err = svc.ResolveActive(context.Background(), "REF-1", nil)
		require.NoError(t, err)
	}
	require.Equal(t, 1, repo.findCalls, "repeat lookups served from cache")
}

func TestToggleInvalidatesCache(t *testing.T) {
	repo := newMemoryRepo()
	svc := newCachedService(t, repo)

	created, err := svc.Create(context.Background(), ReferenceAccount{Code: "REF-1", Description: "geral"})
	require.NoError(t, err)

	_, err = svc.ResolveActive(context.Background(), "REF-1", nil)
	require.NoError(t, err)

	_, err = svc.ToggleStatus(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = svc.ResolveActive(context.Background(), "REF-1", nil)
	require.ErrorIs(t, err, shared.ErrInactive, "deactivation is visible despite the earlier cached hit")
}

func TestImportDedupIncludesValidityYear(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, testLogger())

	// Same code with different validity years is two distinct registry rows.
	content := []byte("REF-1;geral;\nREF-1;escopo 2024;2024\nREF-1;repetida;2024\n")
	result, err := svc.Import(context.Background(), content, false)
	require.NoError(t, err)

	require.Equal(t, 2, result.ProcessedLines)
	require.Len(t, result.Errors, 1)
	require.Equal(t, 3, result.Errors[0].Line)
	require.Contains(t, result.Errors[0].Message, "first seen at line 2")
}

func TestImportInvalidYear(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, testLogger())
	result, err := svc.Import(context.Background(), []byte("REF-1;geral;1ived\n"), false)
	require.NoError(t, err)
	require.Contains(t, result.Errors[0].Message, "anoValidade")
}

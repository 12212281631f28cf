package companies

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fiscalbr/elalur/internal/shared"
)

type memoryRepo struct {
	nextID    int64
	companies map[int64]Company
	audits    []shared.AuditLog
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, companies: make(map[int64]Company)}
}

func (m *memoryRepo) List(context.Context) ([]Company, error) {
	var out []Company
	for _, c := range m.companies {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return Company{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) Create(_ context.Context, company Company) (Company, error) {
	for _, c := range m.companies {
		if c.TaxID == company.TaxID {
			return Company{}, shared.ErrDuplicate
		}
	}
	company.ID = m.nextID
	m.nextID++
	m.companies[company.ID] = company
	return company, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, company Company) error {
	if _, ok := m.companies[id]; !ok {
		return shared.ErrNotFound
	}
	company.ID = id
	m.companies[id] = company
	return nil
}

func (m *memoryRepo) SetActive(_ context.Context, id int64, active bool) error {
	c, ok := m.companies[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.Active = active
	m.companies[id] = c
	return nil
}

func (m *memoryRepo) UpdateAccountingCutoff(_ context.Context, id int64, cutoff *time.Time, log shared.AuditLog) error {
	c, ok := m.companies[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.AccountingCutoff = cutoff
	m.companies[id] = c
	m.audits = append(m.audits, log)
	return nil
}

func (m *memoryRepo) AccountingCutoff(_ context.Context, id int64) (*time.Time, error) {
	c, ok := m.companies[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c.AccountingCutoff, nil
}

func validCompany() Company {
	return Company{TaxID: "12345678000195", LegalName: "Empresa Exemplo LTDA"}
}

func TestCreateValidatesTaxID(t *testing.T) {
	svc := NewService(newMemoryRepo())

	company := validCompany()
	company.TaxID = "123"
	_, err := svc.Create(context.Background(), company)
	require.Error(t, err)

	company = validCompany()
	company.LegalName = " "
	_, err = svc.Create(context.Background(), company)
	require.Error(t, err)

	created, err := svc.Create(context.Background(), validCompany())
	require.NoError(t, err)
	require.True(t, created.Active)
}

func TestUpdateAccountingCutoffLeavesAuditTrail(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), validCompany())
	require.NoError(t, err)

	first := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.UpdateAccountingCutoff(context.Background(), created.ID, 42, &first))

	second := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.UpdateAccountingCutoff(context.Background(), created.ID, 42, &second))

	require.Len(t, repo.audits, 2)
	last := repo.audits[1]
	require.Equal(t, "company.cutoff_update", last.Action)
	require.Equal(t, int64(42), last.ActorID)
	require.Equal(t, "2024-03-31", last.Meta["previous"])
	require.Equal(t, "2024-06-30", last.Meta["current"])

	got, err := svc.AccountingCutoff(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, got.Equal(second))
}

func TestClearAccountingCutoff(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), validCompany())
	require.NoError(t, err)

	cutoff := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.UpdateAccountingCutoff(context.Background(), created.ID, 1, &cutoff))
	require.NoError(t, svc.UpdateAccountingCutoff(context.Background(), created.ID, 1, nil))

	got, err := svc.AccountingCutoff(context.Background(), created.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCutoffUpdateOnMissingCompanyLeavesNoAudit(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	cutoff := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	err := svc.UpdateAccountingCutoff(context.Background(), 99, 1, &cutoff)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, repo.audits)
}

func TestToggleStatus(t *testing.T) {
	svc := NewService(newMemoryRepo())

	created, err := svc.Create(context.Background(), validCompany())
	require.NoError(t, err)

	toggled, err := svc.ToggleStatus(context.Background(), created.ID)
	require.NoError(t, err)
	require.False(t, toggled.Active)
}

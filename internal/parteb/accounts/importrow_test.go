package accounts

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fiscalbr/elalur/internal/shared"
)

type memoryRepo struct {
	nextID   int64
	accounts map[int64]PartBAccount
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, accounts: make(map[int64]PartBAccount)}
}

func (m *memoryRepo) List(_ context.Context, companyID int64, baseYear int) ([]PartBAccount, error) {
	var out []PartBAccount
	for _, a := range m.accounts {
		if a.CompanyID == companyID && a.BaseYear == baseYear {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, companyID, id int64) (PartBAccount, error) {
	a, ok := m.accounts[id]
	if !ok || a.CompanyID != companyID {
		return PartBAccount{}, shared.ErrNotFound
	}
	return a, nil
}

func (m *memoryRepo) Create(_ context.Context, account PartBAccount) (PartBAccount, error) {
	for _, a := range m.accounts {
		if a.CompanyID == account.CompanyID && a.BaseYear == account.BaseYear && a.Code == account.Code {
			return PartBAccount{}, shared.ErrDuplicate
		}
	}
	account.ID = m.nextID
	m.nextID++
	m.accounts[account.ID] = account
	return account, nil
}

func (m *memoryRepo) Update(_ context.Context, companyID, id int64, account PartBAccount) error {
	stored, ok := m.accounts[id]
	if !ok || stored.CompanyID != companyID {
		return shared.ErrNotFound
	}
	account.ID = id
	account.Code = stored.Code
	account.BaseYear = stored.BaseYear
	m.accounts[id] = account
	return nil
}

func (m *memoryRepo) SetActive(_ context.Context, companyID, id int64, active bool) error {
	stored, ok := m.accounts[id]
	if !ok || stored.CompanyID != companyID {
		return shared.ErrNotFound
	}
	stored.Active = active
	m.accounts[id] = stored
	return nil
}

func (m *memoryRepo) FindByCode(_ context.Context, companyID int64, baseYear int, code string) (PartBAccount, error) {
	for _, a := range m.accounts {
		if a.CompanyID == companyID && a.BaseYear == baseYear && a.Code == code {
			return a, nil
		}
	}
	return PartBAccount{}, shared.ErrNotFound
}

func (m *memoryRepo) ExistsCode(ctx context.Context, companyID int64, baseYear int, code string) (bool, error) {
	_, err := m.FindByCode(ctx, companyID, baseYear, code)
	return err == nil, nil
}

func companyCtx() context.Context {
	return shared.ContextWithCompany(context.Background(), 1)
}

func TestImportValidRows(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	content := []byte("PB-1;Prejuizo fiscal;2024-01-01;;IRPJ;1500.00;DEVEDORA\n" +
		"PB-2;Base negativa CSLL;;;CSLL;;\n")
	result, err := svc.Import(companyCtx(), 2024, content, false)
	require.NoError(t, err)

	require.True(t, result.Success)
	require.Equal(t, 2, result.ProcessedLines)

	first, err := repo.FindByCode(context.Background(), 1, 2024, "PB-1")
	require.NoError(t, err)
	require.Equal(t, TaxIRPJ, first.TaxType)
	require.True(t, first.OpeningBalance.Equal(decimal.RequireFromString("1500.00")))
	require.NotNil(t, first.ValidityStart)
	require.Nil(t, first.ValidityEnd)

	second, err := repo.FindByCode(context.Background(), 1, 2024, "PB-2")
	require.NoError(t, err)
	require.True(t, second.OpeningBalance.IsZero(), "saldoInicial defaults to zero")
	require.Equal(t, BalanceDebit, second.BalanceNature)
}

func TestImportInvertedValidityRange(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	content := []byte("PB-1;Prejuizo;2024-06-01;2024-01-01;IRPJ;;\n")
	result, err := svc.Import(companyCtx(), 2024, content, false)
	require.NoError(t, err)
	require.Contains(t, result.Errors[0].Message, "precedes dataInicio")
}

func TestImportInvalidTaxType(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	result, err := svc.Import(companyCtx(), 2024, []byte("PB-1;Prejuizo;;;IPVA;;\n"), false)
	require.NoError(t, err)
	require.Contains(t, result.Errors[0].Message, "tipoTributo")
}

func TestImportDuplicateCode(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	content := []byte("PB-1;Prejuizo;;;IRPJ;;\nPB-1;Repetida;;;CSLL;;\n")
	result, err := svc.Import(companyCtx(), 2024, content, false)
	require.NoError(t, err)
	require.Equal(t, 1, result.ProcessedLines)
	require.Contains(t, result.Errors[0].Message, "first seen at line 1")
}

func TestParseTaxType(t *testing.T) {
	got, err := ParseTaxType("ambos")
	require.NoError(t, err)
	require.Equal(t, TaxBoth, got)

	got, err = ParseTaxType("csll")
	require.NoError(t, err)
	require.Equal(t, TaxCSLL, got)

	_, err = ParseTaxType("iss")
	require.Error(t, err)
}

func TestUpdateFreezesCodeAndBaseYear(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	created, err := svc.Create(companyCtx(), CreateInput{
		Code:          "PB-1",
		Description:   "Prejuizo",
		BaseYear:      2024,
		TaxType:       "IRPJ",
		BalanceNature: "DEVEDORA",
	})
	require.NoError(t, err)

	err = svc.Update(companyCtx(), created.ID, CreateInput{
		Code:          "PB-9",
		Description:   "Renomeada",
		BaseYear:      2030,
		TaxType:       "CSLL",
		BalanceNature: "CREDORA",
	})
	require.NoError(t, err)

	got, err := svc.Get(companyCtx(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "PB-1", got.Code)
	require.Equal(t, 2024, got.BaseYear)
	require.Equal(t, TaxCSLL, got.TaxType)
}

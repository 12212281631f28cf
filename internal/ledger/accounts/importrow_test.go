package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fiscalbr/elalur/internal/shared"
)

type memoryRepo struct {
	nextID   int64
	accounts map[int64]ChartAccount
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, accounts: make(map[int64]ChartAccount)}
}

func (m *memoryRepo) List(_ context.Context, companyID int64, fiscalYear int) ([]ChartAccount, error) {
	var out []ChartAccount
	for _, a := range m.accounts {
		if a.CompanyID == companyID && a.FiscalYear == fiscalYear {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, companyID, id int64) (ChartAccount, error) {
	a, ok := m.accounts[id]
	if !ok || a.CompanyID != companyID {
		return ChartAccount{}, shared.ErrNotFound
	}
	return a, nil
}

func (m *memoryRepo) Create(_ context.Context, account ChartAccount) (ChartAccount, error) {
	for _, a := range m.accounts {
		if a.CompanyID == account.CompanyID && a.FiscalYear == account.FiscalYear && a.Code == account.Code {
			return ChartAccount{}, shared.ErrDuplicate
		}
	}
	account.ID = m.nextID
	m.nextID++
	m.accounts[account.ID] = account
	return account, nil
}

func (m *memoryRepo) Update(_ context.Context, companyID, id int64, account ChartAccount) error {
	stored, ok := m.accounts[id]
	if !ok || stored.CompanyID != companyID {
		return shared.ErrNotFound
	}
	account.ID = id
	account.Code = stored.Code
	account.FiscalYear = stored.FiscalYear
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

func (m *memoryRepo) FindByCode(_ context.Context, companyID int64, fiscalYear int, code string) (ChartAccount, error) {
	for _, a := range m.accounts {
		if a.CompanyID == companyID && a.FiscalYear == fiscalYear && a.Code == code {
			return a, nil
		}
	}
	return ChartAccount{}, shared.ErrNotFound
}

func (m *memoryRepo) ExistsCode(ctx context.Context, companyID int64, fiscalYear int, code string) (bool, error) {
	_, err := m.FindByCode(ctx, companyID, fiscalYear, code)
	if err == nil {
		return true, nil
	}
	return false, nil
}

// stubReferences knows code REF-1; REF-OFF exists but is inactive.
type stubReferences struct{}

func (stubReferences) ResolveReference(_ context.Context, code string, _ int) (int64, error) {
	switch code {
	case "REF-1":
		return 77, nil
	case "REF-OFF":
		return 0, shared.ErrInactive
	}
	return 0, shared.ErrNotFound
}

func importChart(t *testing.T, repo Repository, content string, dryRun bool) (result struct {
	Success        bool
	ProcessedLines int
	Errors         []string
	Lines          []int
}) {
	t.Helper()
	svc := NewService(repo, stubReferences{}, nil)
	ctx := shared.ContextWithCompany(context.Background(), 1)
	res, err := svc.Import(ctx, 2024, []byte(content), dryRun)
	require.NoError(t, err)
	result.Success = res.Success
	result.ProcessedLines = res.ProcessedLines
	for _, e := range res.Errors {
		result.Errors = append(result.Errors, e.Message)
		result.Lines = append(result.Lines, e.Line)
	}
	return result
}

func TestImportValidRow(t *testing.T) {
	repo := newMemoryRepo()
	res := importChart(t, repo, "1.01;Caixa;ATIVO;REF-1;1.01.001;3;DEVEDORA;sim;nao\n", false)

	require.True(t, res.Success)
	require.Equal(t, 1, res.ProcessedLines)
	require.Len(t, repo.accounts, 1)

	stored, err := repo.FindByCode(context.Background(), 1, 2024, "1.01")
	require.NoError(t, err)
	require.Equal(t, TypeAsset, stored.Type)
	require.Equal(t, NatureDebit, stored.Nature)
	require.Equal(t, int64(77), stored.ReferenceAccountID)
	require.True(t, stored.AffectsResult)
	require.False(t, stored.Deductible)
}

func TestImportOptionalBooleansDefaultFalse(t *testing.T) {
	repo := newMemoryRepo()
	res := importChart(t, repo, "1.01;Caixa;ATIVO;REF-1;1.01.001;3;DEVEDORA\n", false)

	require.True(t, res.Success)
	stored, err := repo.FindByCode(context.Background(), 1, 2024, "1.01")
	require.NoError(t, err)
	require.False(t, stored.AffectsResult)
	require.False(t, stored.Deductible)
}

func TestImportMissingRequiredField(t *testing.T) {
	res := importChart(t, newMemoryRepo(), "1.01;;ATIVO;REF-1;1.01.001;3;DEVEDORA\n", false)
	require.False(t, res.Success)
	require.Contains(t, res.Errors[0], "required field nome is missing")
}

func TestImportInvalidEnum(t *testing.T) {
	res := importChart(t, newMemoryRepo(), "1.01;Caixa;PATRIMONIO;REF-1;1.01.001;3;DEVEDORA\n", false)
	require.Contains(t, res.Errors[0], "tipoConta")
}

func TestImportLevelOutOfRange(t *testing.T) {
	res := importChart(t, newMemoryRepo(), "1.01;Caixa;ATIVO;REF-1;1.01.001;6;DEVEDORA\n", false)
	require.Contains(t, res.Errors[0], "nivel")
	require.Contains(t, res.Errors[0], "out of range")
}

func TestImportBooleanParsedBeforeLevelRange(t *testing.T) {
	// Bad boolean and out-of-range level on the same line: the boolean is a
	// type failure and must be the one reported.
	res := importChart(t, newMemoryRepo(), "1.01;Caixa;ATIVO;REF-1;1.01.001;6;DEVEDORA;talvez;nao\n", false)
	require.Contains(t, res.Errors[0], "afetaResultado")
	require.NotContains(t, res.Errors[0], "nivel")
}

func TestImportInFileDuplicateBackReference(t *testing.T) {
	content := "1.01;Caixa;ATIVO;REF-1;1.01.001;3;DEVEDORA\n" +
		"1.02;Bancos;ATIVO;REF-1;1.01.002;3;DEVEDORA\n" +
		"1.01;Repetida;ATIVO;REF-1;1.01.003;3;DEVEDORA\n"
	res := importChart(t, newMemoryRepo(), content, false)

	require.Equal(t, 2, res.ProcessedLines)
	require.Equal(t, []int{3}, res.Lines)
	require.Contains(t, res.Errors[0], "first seen at line 1")
}

func TestImportPersistedDuplicate(t *testing.T) {
	repo := newMemoryRepo()
	first := importChart(t, repo, "1.01;Caixa;ATIVO;REF-1;1.01.001;3;DEVEDORA\n", false)
	require.True(t, first.Success)

	second := importChart(t, repo, "1.01;Caixa;ATIVO;REF-1;1.01.001;3;DEVEDORA\n", false)
	require.Contains(t, second.Errors[0], "already exists for fiscal year 2024")
}

func TestImportUnknownReference(t *testing.T) {
	res := importChart(t, newMemoryRepo(), "1.01;Caixa;ATIVO;REF-9;1.01.001;3;DEVEDORA\n", false)
	require.Contains(t, res.Errors[0], "reference account REF-9 not found")
}

func TestImportInactiveReference(t *testing.T) {
	res := importChart(t, newMemoryRepo(), "1.01;Caixa;ATIVO;REF-OFF;1.01.001;3;DEVEDORA\n", false)
	require.Contains(t, res.Errors[0], "reference account REF-OFF is inactive")
}

func TestImportDryRunLeavesRepoUntouched(t *testing.T) {
	repo := newMemoryRepo()
	res := importChart(t, repo, "1.01;Caixa;ATIVO;REF-1;1.01.001;3;DEVEDORA\n", true)
	require.True(t, res.Success)
	require.Empty(t, repo.accounts)
}

func TestParseAccountTypeSynonyms(t *testing.T) {
	got, err := ParseAccountType("Ativo")
	require.NoError(t, err)
	require.Equal(t, TypeAsset, got)

	got, err = ParseAccountType("DESPESA")
	require.NoError(t, err)
	require.Equal(t, TypeExpense, got)

	_, err = ParseAccountType("outro")
	require.Error(t, err)
}

func TestParseNatureSynonyms(t *testing.T) {
	got, err := ParseNature("Credora")
	require.NoError(t, err)
	require.Equal(t, NatureCredit, got)

	got, err = ParseNature("d")
	require.NoError(t, err)
	require.Equal(t, NatureDebit, got)
}

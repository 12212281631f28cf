package postings

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type exportRepo struct {
	memoryRepo
	rows []ExportRow
	from *time.Time
	to   *time.Time
}

func (e *exportRepo) ListForExport(_ context.Context, companyID int64, fiscalYear int, from, to *time.Time) ([]ExportRow, error) {
	e.from = from
	e.to = to
	return e.rows, nil
}

func TestExportCSVMirrorsImportFormat(t *testing.T) {
	repo := &exportRepo{
		memoryRepo: *newMemoryRepo(),
		rows: []ExportRow{
			{
				DebitCode:  "1.01",
				CreditCode: "2.01",
				Date:       day(2024, time.June, 15),
				Amount:     decimal.RequireFromString("100.5"),
				Memo:       "venda a vista",
			},
			{
				DebitCode:      "3.01",
				CreditCode:     "1.01",
				Date:           day(2024, time.June, 20),
				Amount:         decimal.RequireFromString("42"),
				Memo:           "tarifa",
				DocumentNumber: "DOC-9",
			},
		},
	}
	svc := newTestService(repo, nil)

	var buf bytes.Buffer
	err := svc.ExportCSV(companyCtx(), &buf, ExportFilter{FiscalYear: 2024})
	require.NoError(t, err)

	want := "contaDebitoCode;contaCreditoCode;data;valor;historico;numeroDocumento\n" +
		"1.01;2.01;2024-06-15;100.50;venda a vista;\n" +
		"3.01;1.01;2024-06-20;42.00;tarifa;DOC-9\n"
	require.Equal(t, want, buf.String())
}

func TestExportCSVHalfOpenRangeRejected(t *testing.T) {
	repo := &exportRepo{memoryRepo: *newMemoryRepo()}
	svc := newTestService(repo, nil)

	from := day(2024, time.June, 1)
	err := svc.ExportCSV(companyCtx(), &bytes.Buffer{}, ExportFilter{FiscalYear: 2024, From: &from})
	require.ErrorIs(t, err, errHalfOpenRange)
}

func TestExportCSVInvertedRangeRejected(t *testing.T) {
	repo := &exportRepo{memoryRepo: *newMemoryRepo()}
	svc := newTestService(repo, nil)

	from := day(2024, time.June, 10)
	to := day(2024, time.June, 1)
	err := svc.ExportCSV(companyCtx(), &bytes.Buffer{}, ExportFilter{FiscalYear: 2024, From: &from, To: &to})
	require.ErrorIs(t, err, errInvertedRange)
}

func TestExportCSVPassesRange(t *testing.T) {
	repo := &exportRepo{memoryRepo: *newMemoryRepo()}
	svc := newTestService(repo, nil)

	from := day(2024, time.June, 1)
	to := day(2024, time.June, 30)
	require.NoError(t, svc.ExportCSV(companyCtx(), &bytes.Buffer{}, ExportFilter{FiscalYear: 2024, From: &from, To: &to}))
	require.Equal(t, &from, repo.from)
	require.Equal(t, &to, repo.to)
}

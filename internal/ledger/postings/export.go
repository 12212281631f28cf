package postings

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"time"

	"github.com/fiscalbr/elalur/internal/importer"
	"github.com/fiscalbr/elalur/internal/shared"
)

// ExportFilter narrows the export to one fiscal year and, optionally, an
// inclusive date range. From and To come together or not at all.
type ExportFilter struct {
	FiscalYear int
	From       *time.Time
	To         *time.Time
}

var (
	errHalfOpenRange = errors.New("dataInicio and dataFim must be supplied together")
	errInvertedRange = errors.New("dataFim must not precede dataInicio")
)

// ExportCSV writes the company's postings as the mirror of the import
// format: the same six columns, ';'-delimited, amounts with two decimals,
// date ascending.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, filter ExportFilter) error {
	companyID, err := shared.RequireCompany(ctx)
	if err != nil {
		return err
	}
	if (filter.From == nil) != (filter.To == nil) {
		return errHalfOpenRange
	}
	if filter.From != nil && filter.To.Before(*filter.From) {
		return errInvertedRange
	}

	rows, err := s.repo.ListForExport(ctx, companyID, filter.FiscalYear, filter.From, filter.To)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	writer.Comma = ';'
	defer writer.Flush()

	if err := writer.Write(ImportLayout.Columns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.DebitCode,
			row.CreditCode,
			row.Date.Format(importer.DateFormat),
			row.Amount.StringFixed(2),
			row.Memo,
			row.DocumentNumber,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

package postings

import (
	"context"
	"errors"
	"fmt"

	"github.com/fiscalbr/elalur/internal/importer"
	"github.com/fiscalbr/elalur/internal/ledger/periodlock"
	"github.com/fiscalbr/elalur/internal/shared"
)

// ImportLayout is the posting file format. numeroDocumento is optional.
var ImportLayout = importer.Layout{
	Columns: []string{
		"contaDebitoCode", "contaCreditoCode", "data", "valor", "historico", "numeroDocumento",
	},
	MinColumns: 5,
}

// ImportPreview mirrors one submitted row for dry runs.
type ImportPreview struct {
	ContaDebitoCode  string `json:"contaDebitoCode"`
	ContaCreditoCode string `json:"contaCreditoCode"`
	Data             string `json:"data"`
	Valor            string `json:"valor"`
	Historico        string `json:"historico"`
	NumeroDocumento  string `json:"numeroDocumento,omitempty"`
}

// ImportProcessor validates and persists posting rows for one run. The
// period lock surfaces here as a line error, never as a run abort.
type ImportProcessor struct {
	repo       Repository
	accounts   AccountResolver
	guard      *periodlock.Guard
	companyID  int64
	fiscalYear int
}

func NewImportProcessor(repo Repository, resolver AccountResolver, guard *periodlock.Guard, companyID int64, fiscalYear int) *ImportProcessor {
	return &ImportProcessor{
		repo:       repo,
		accounts:   resolver,
		guard:      guard,
		companyID:  companyID,
		fiscalYear: fiscalYear,
	}
}

func (p *ImportProcessor) Validate(ctx context.Context, rec importer.Record) (Posting, error) {
	for _, field := range []string{"contaDebitoCode", "contaCreditoCode", "data", "valor", "historico"} {
		if rec.Named(field) == "" {
			return Posting{}, fmt.Errorf("required field %s is missing", field)
		}
	}

	date, err := importer.ParseDate(rec.Named("data"))
	if err != nil {
		return Posting{}, fmt.Errorf("data: %v", err)
	}
	amount, err := importer.ParsePositiveAmount(rec.Named("valor"))
	if err != nil {
		return Posting{}, fmt.Errorf("valor: %v", err)
	}

	debitCode := rec.Named("contaDebitoCode")
	creditCode := rec.Named("contaCreditoCode")
	if debitCode == creditCode {
		return Posting{}, ErrSameAccount
	}

	debit, err := p.resolveAccount(ctx, debitCode)
	if err != nil {
		return Posting{}, err
	}
	credit, err := p.resolveAccount(ctx, creditCode)
	if err != nil {
		return Posting{}, err
	}
	if debit == credit {
		return Posting{}, ErrSameAccount
	}

	if err := p.guard.EnsureCreate(ctx, p.companyID, date); err != nil {
		if errors.Is(err, periodlock.ErrPeriodLocked) {
			return Posting{}, fmt.Errorf("date %s is within a locked accounting period", rec.Named("data"))
		}
		return Posting{}, err
	}

	return Posting{
		CompanyID:       p.companyID,
		DebitAccountID:  debit,
		CreditAccountID: credit,
		Date:            date,
		Amount:          amount,
		Memo:            rec.Named("historico"),
		DocumentNumber:  rec.Named("numeroDocumento"),
		FiscalYear:      p.fiscalYear,
		Active:          true,
	}, nil
}

func (p *ImportProcessor) Preview(rec importer.Record) ImportPreview {
	return ImportPreview{
		ContaDebitoCode:  rec.Named("contaDebitoCode"),
		ContaCreditoCode: rec.Named("contaCreditoCode"),
		Data:             rec.Named("data"),
		Valor:            rec.Named("valor"),
		Historico:        rec.Named("historico"),
		NumeroDocumento:  rec.Named("numeroDocumento"),
	}
}

func (p *ImportProcessor) Persist(ctx context.Context, row Posting) error {
	_, err := p.repo.Create(ctx, row)
	return err
}

func (p *ImportProcessor) resolveAccount(ctx context.Context, code string) (int64, error) {
	account, err := p.accounts.ResolveAccount(ctx, p.companyID, p.fiscalYear, code)
	if errors.Is(err, shared.ErrNotFound) {
		return 0, fmt.Errorf("account %s not found for fiscal year %d", code, p.fiscalYear)
	}
	if err != nil {
		return 0, err
	}
	return account.ID, nil
}

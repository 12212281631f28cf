package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fiscalbr/elalur/internal/importer"
)

// ImportLayout is the Parte B account file format. Validity dates are
// optional; saldoInicial defaults to zero with a debit nature.
var ImportLayout = importer.Layout{
	Columns: []string{
		"codigo", "descricao", "dataInicio", "dataFim",
		"tipoTributo", "saldoInicial", "naturezaSaldo",
	},
	MinColumns: 5,
}

// ImportPreview mirrors one submitted row for dry runs.
type ImportPreview struct {
	Codigo        string `json:"codigo"`
	Descricao     string `json:"descricao"`
	DataInicio    string `json:"dataInicio,omitempty"`
	DataFim       string `json:"dataFim,omitempty"`
	TipoTributo   string `json:"tipoTributo"`
	SaldoInicial  string `json:"saldoInicial,omitempty"`
	NaturezaSaldo string `json:"naturezaSaldo,omitempty"`
}

// ImportProcessor validates and persists Parte B account rows for one run.
type ImportProcessor struct {
	repo      Repository
	companyID int64
	baseYear  int
	seen      map[string]int
}

func NewImportProcessor(repo Repository, companyID int64, baseYear int) *ImportProcessor {
	return &ImportProcessor{
		repo:      repo,
		companyID: companyID,
		baseYear:  baseYear,
		seen:      make(map[string]int),
	}
}

// Validate applies the layered rule set in order, stopping at the first
// failure: presence, enums and formats, date ordering, in-file duplicates,
// then persisted duplicates.
func (p *ImportProcessor) Validate(ctx context.Context, rec importer.Record) (PartBAccount, error) {
	for _, field := range []string{"codigo", "descricao", "tipoTributo"} {
		if rec.Named(field) == "" {
			return PartBAccount{}, fmt.Errorf("required field %s is missing", field)
		}
	}

	taxType, err := ParseTaxType(rec.Named("tipoTributo"))
	if err != nil {
		return PartBAccount{}, fmt.Errorf("tipoTributo: %v", err)
	}
	start, err := optionalDate(rec.Named("dataInicio"))
	if err != nil {
		return PartBAccount{}, fmt.Errorf("dataInicio: %v", err)
	}
	end, err := optionalDate(rec.Named("dataFim"))
	if err != nil {
		return PartBAccount{}, fmt.Errorf("dataFim: %v", err)
	}
	if start != nil && end != nil && end.Before(*start) {
		return PartBAccount{}, fmt.Errorf("dataFim %s precedes dataInicio %s",
			end.Format(importer.DateFormat), start.Format(importer.DateFormat))
	}

	balance := decimal.Zero
	if raw := rec.Named("saldoInicial"); raw != "" {
		balance, err = importer.ParseAmount(raw)
		if err != nil {
			return PartBAccount{}, fmt.Errorf("saldoInicial: %v", err)
		}
	}
	nature := BalanceDebit
	if raw := rec.Named("naturezaSaldo"); raw != "" {
		nature, err = ParseBalanceNature(raw)
		if err != nil {
			return PartBAccount{}, fmt.Errorf("naturezaSaldo: %v", err)
		}
	}

	code := rec.Named("codigo")
	if first, dup := p.seen[code]; dup {
		return PartBAccount{}, fmt.Errorf("duplicate account code %s, first seen at line %d", code, first)
	}
	p.seen[code] = rec.Line

	exists, err := p.repo.ExistsCode(ctx, p.companyID, p.baseYear, code)
	if err != nil {
		return PartBAccount{}, fmt.Errorf("lookup account %s: %v", code, err)
	}
	if exists {
		return PartBAccount{}, fmt.Errorf("account %s already exists for base year %d", code, p.baseYear)
	}

	return PartBAccount{
		CompanyID:      p.companyID,
		Code:           code,
		Description:    rec.Named("descricao"),
		BaseYear:       p.baseYear,
		ValidityStart:  start,
		ValidityEnd:    end,
		TaxType:        taxType,
		OpeningBalance: balance,
		BalanceNature:  nature,
		Active:         true,
	}, nil
}

func (p *ImportProcessor) Preview(rec importer.Record) ImportPreview {
	return ImportPreview{
		Codigo:        rec.Named("codigo"),
		Descricao:     rec.Named("descricao"),
		DataInicio:    rec.Named("dataInicio"),
		DataFim:       rec.Named("dataFim"),
		TipoTributo:   rec.Named("tipoTributo"),
		SaldoInicial:  rec.Named("saldoInicial"),
		NaturezaSaldo: rec.Named("naturezaSaldo"),
	}
}

func (p *ImportProcessor) Persist(ctx context.Context, row PartBAccount) error {
	_, err := p.repo.Create(ctx, row)
	return err
}

func optionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := importer.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

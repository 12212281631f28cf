package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/fiscalbr/elalur/internal/importer"
	"github.com/fiscalbr/elalur/internal/shared"
)

// ImportLayout is the chart-of-accounts file format. The last two boolean
// columns default to false when the line carries only seven fields.
var ImportLayout = importer.Layout{
	Columns: []string{
		"codigo", "nome", "tipoConta", "contaReferencial", "classificacao",
		"nivel", "natureza", "afetaResultado", "dedutivel",
	},
	MinColumns: 7,
}

// ImportPreview mirrors one submitted row for dry runs.
type ImportPreview struct {
	Codigo           string `json:"codigo"`
	Nome             string `json:"nome"`
	TipoConta        string `json:"tipoConta"`
	ContaReferencial string `json:"contaReferencial"`
	Classificacao    string `json:"classificacao"`
	Nivel            string `json:"nivel"`
	Natureza         string `json:"natureza"`
	AfetaResultado   string `json:"afetaResultado,omitempty"`
	Dedutivel        string `json:"dedutivel,omitempty"`
}

// ImportProcessor validates and persists chart-account rows for one run.
type ImportProcessor struct {
	repo       Repository
	references ReferenceResolver
	companyID  int64
	fiscalYear int
	seen       map[string]int
}

func NewImportProcessor(repo Repository, references ReferenceResolver, companyID int64, fiscalYear int) *ImportProcessor {
	return &ImportProcessor{
		repo:       repo,
		references: references,
		companyID:  companyID,
		fiscalYear: fiscalYear,
		seen:       make(map[string]int),
	}
}

// Validate applies the layered rule set in order, stopping at the first
// failure: presence, enums and booleans, ranges, in-file duplicates,
// persisted duplicates, then the reference-account link.
func (p *ImportProcessor) Validate(ctx context.Context, rec importer.Record) (ChartAccount, error) {
	for _, field := range []string{"codigo", "nome", "tipoConta", "contaReferencial", "classificacao", "nivel", "natureza"} {
		if rec.Named(field) == "" {
			return ChartAccount{}, fmt.Errorf("required field %s is missing", field)
		}
	}

	accountType, err := ParseAccountType(rec.Named("tipoConta"))
	if err != nil {
		return ChartAccount{}, fmt.Errorf("tipoConta: %v", err)
	}
	nature, err := ParseNature(rec.Named("natureza"))
	if err != nil {
		return ChartAccount{}, fmt.Errorf("natureza: %v", err)
	}
	affectsResult, err := optionalBool(rec.Named("afetaResultado"))
	if err != nil {
		return ChartAccount{}, fmt.Errorf("afetaResultado: %v", err)
	}
	deductible, err := optionalBool(rec.Named("dedutivel"))
	if err != nil {
		return ChartAccount{}, fmt.Errorf("dedutivel: %v", err)
	}
	level, err := importer.ParseIntIn(rec.Named("nivel"), minLevel, maxLevel)
	if err != nil {
		return ChartAccount{}, fmt.Errorf("nivel: %v", err)
	}

	code := rec.Named("codigo")
	if first, dup := p.seen[code]; dup {
		return ChartAccount{}, fmt.Errorf("duplicate account code %s, first seen at line %d", code, first)
	}
	p.seen[code] = rec.Line

	exists, err := p.repo.ExistsCode(ctx, p.companyID, p.fiscalYear, code)
	if err != nil {
		return ChartAccount{}, fmt.Errorf("lookup account %s: %v", code, err)
	}
	if exists {
		return ChartAccount{}, fmt.Errorf("account %s already exists for fiscal year %d", code, p.fiscalYear)
	}

	referenceCode := rec.Named("contaReferencial")
	referenceID, err := p.references.ResolveReference(ctx, referenceCode, p.fiscalYear)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return ChartAccount{}, fmt.Errorf("reference account %s not found", referenceCode)
	case errors.Is(err, shared.ErrInactive):
		return ChartAccount{}, fmt.Errorf("reference account %s is inactive", referenceCode)
	case err != nil:
		return ChartAccount{}, fmt.Errorf("resolve reference account %s: %v", referenceCode, err)
	}

	return ChartAccount{
		CompanyID:          p.companyID,
		Code:               code,
		Name:               rec.Named("nome"),
		FiscalYear:         p.fiscalYear,
		Type:               accountType,
		ReferenceAccountID: referenceID,
		Classification:     rec.Named("classificacao"),
		Level:              level,
		Nature:             nature,
		AffectsResult:      affectsResult,
		Deductible:         deductible,
		Active:             true,
	}, nil
}

func (p *ImportProcessor) Preview(rec importer.Record) ImportPreview {
	return ImportPreview{
		Codigo:           rec.Named("codigo"),
		Nome:             rec.Named("nome"),
		TipoConta:        rec.Named("tipoConta"),
		ContaReferencial: rec.Named("contaReferencial"),
		Classificacao:    rec.Named("classificacao"),
		Nivel:            rec.Named("nivel"),
		Natureza:         rec.Named("natureza"),
		AfetaResultado:   rec.Named("afetaResultado"),
		Dedutivel:        rec.Named("dedutivel"),
	}
}

func (p *ImportProcessor) Persist(ctx context.Context, row ChartAccount) error {
	_, err := p.repo.Create(ctx, row)
	return err
}

func optionalBool(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	return importer.ParseBool(raw)
}

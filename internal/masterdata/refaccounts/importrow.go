package refaccounts

import (
	"context"
	"fmt"

	"github.com/fiscalbr/elalur/internal/importer"
)

// ImportLayout is the reference-account file format: codigo;descricao;anoValidade.
var ImportLayout = importer.Layout{
	Columns:    []string{"codigo", "descricao", "anoValidade"},
	MinColumns: 2,
}

// ImportPreview mirrors one submitted row for dry runs.
type ImportPreview struct {
	Codigo      string `json:"codigo"`
	Descricao   string `json:"descricao"`
	AnoValidade string `json:"anoValidade,omitempty"`
}

// ImportProcessor validates and persists reference-account rows. One instance
// serves one run; seen tracks in-file natural keys by first line number.
type ImportProcessor struct {
	repo Repository
	seen map[string]int
}

func NewImportProcessor(repo Repository) *ImportProcessor {
	return &ImportProcessor{repo: repo, seen: make(map[string]int)}
}

func (p *ImportProcessor) Validate(ctx context.Context, rec importer.Record) (ReferenceAccount, error) {
	code := rec.Named("codigo")
	if code == "" {
		return ReferenceAccount{}, fmt.Errorf("required field codigo is missing")
	}
	description := rec.Named("descricao")
	if description == "" {
		return ReferenceAccount{}, fmt.Errorf("required field descricao is missing")
	}

	var year *int
	if raw := rec.Named("anoValidade"); raw != "" {
		value, err := importer.ParseIntIn(raw, 2000, 9999)
		if err != nil {
			return ReferenceAccount{}, fmt.Errorf("anoValidade: %v", err)
		}
		year = &value
	}

	key := lookupKey(code, year)
	if first, dup := p.seen[key]; dup {
		return ReferenceAccount{}, fmt.Errorf("duplicate reference account %s, first seen at line %d", code, first)
	}
	p.seen[key] = rec.Line

	exists, err := p.repo.Exists(ctx, code, year)
	if err != nil {
		return ReferenceAccount{}, fmt.Errorf("lookup reference account %s: %v", code, err)
	}
	if exists {
		return ReferenceAccount{}, fmt.Errorf("reference account %s already exists", code)
	}

	return ReferenceAccount{
		Code:         code,
		Description:  description,
		ValidityYear: year,
		Active:       true,
	}, nil
}

func (p *ImportProcessor) Preview(rec importer.Record) ImportPreview {
	return ImportPreview{
		Codigo:      rec.Named("codigo"),
		Descricao:   rec.Named("descricao"),
		AnoValidade: rec.Named("anoValidade"),
	}
}

func (p *ImportProcessor) Persist(ctx context.Context, row ReferenceAccount) error {
	_, err := p.repo.Create(ctx, row)
	return err
}

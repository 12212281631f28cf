package entries

import (
	"context"
	"fmt"

	"github.com/fiscalbr/elalur/internal/importer"
)

// ImportLayout is the adjustment-entry file format. Every position is
// carried even when blank: contaContabil and contaParteB are filled or left
// empty according to the relationship kind.
var ImportLayout = importer.Layout{
	Columns: []string{
		"mes", "ano", "tipoTributo", "tipoRelacionamento", "contaContabil",
		"contaParteB", "parametroFiscal", "tipoAjuste", "descricao", "valor",
	},
	MinColumns: 10,
}

// ImportPreview mirrors one submitted row for dry runs.
type ImportPreview struct {
	Mes                string `json:"mes"`
	Ano                string `json:"ano"`
	TipoTributo        string `json:"tipoTributo"`
	TipoRelacionamento string `json:"tipoRelacionamento"`
	ContaContabil      string `json:"contaContabil,omitempty"`
	ContaParteB        string `json:"contaParteB,omitempty"`
	ParametroFiscal    string `json:"parametroFiscal"`
	TipoAjuste         string `json:"tipoAjuste"`
	Descricao          string `json:"descricao"`
	Valor              string `json:"valor"`
}

// ImportProcessor validates and persists adjustment-entry rows for one run.
// Entries have no natural key, so there is no duplicate detection here.
type ImportProcessor struct {
	service   *Service
	companyID int64
}

func NewImportProcessor(service *Service, companyID int64) *ImportProcessor {
	return &ImportProcessor{service: service, companyID: companyID}
}

// Validate reuses the manual-path entry builder, which already applies the
// conditional-FK rules of the relationship kind.
func (p *ImportProcessor) Validate(ctx context.Context, rec importer.Record) (Entry, error) {
	for _, field := range []string{"mes", "ano", "tipoTributo", "tipoRelacionamento", "parametroFiscal", "tipoAjuste", "descricao", "valor"} {
		if rec.Named(field) == "" {
			return Entry{}, fmt.Errorf("required field %s is missing", field)
		}
	}

	month, err := importer.ParseIntIn(rec.Named("mes"), minMonth, maxMonth)
	if err != nil {
		return Entry{}, fmt.Errorf("mes: %v", err)
	}
	year, err := importer.ParseIntIn(rec.Named("ano"), 2000, 9999)
	if err != nil {
		return Entry{}, fmt.Errorf("ano: %v", err)
	}
	amount, err := importer.ParsePositiveAmount(rec.Named("valor"))
	if err != nil {
		return Entry{}, fmt.Errorf("valor: %v", err)
	}

	entry, err := p.service.buildEntry(ctx, p.companyID, Input{
		Month:          month,
		Year:           year,
		TaxType:        rec.Named("tipoTributo"),
		RelationKind:   rec.Named("tipoRelacionamento"),
		LedgerCode:     rec.Named("contaContabil"),
		PartBCode:      rec.Named("contaParteB"),
		ParameterCode:  rec.Named("parametroFiscal"),
		AdjustmentKind: rec.Named("tipoAjuste"),
		Description:    rec.Named("descricao"),
		Amount:         amount,
	})
	if err != nil {
		return Entry{}, err
	}
	entry.Active = true
	return entry, nil
}

func (p *ImportProcessor) Preview(rec importer.Record) ImportPreview {
	return ImportPreview{
		Mes:                rec.Named("mes"),
		Ano:                rec.Named("ano"),
		TipoTributo:        rec.Named("tipoTributo"),
		TipoRelacionamento: rec.Named("tipoRelacionamento"),
		ContaContabil:      rec.Named("contaContabil"),
		ContaParteB:        rec.Named("contaParteB"),
		ParametroFiscal:    rec.Named("parametroFiscal"),
		TipoAjuste:         rec.Named("tipoAjuste"),
		Descricao:          rec.Named("descricao"),
		Valor:              rec.Named("valor"),
	}
}

func (p *ImportProcessor) Persist(ctx context.Context, row Entry) error {
	_, err := p.service.repo.Create(ctx, row)
	return err
}

package entries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	pbaccounts "github.com/fiscalbr/elalur/internal/parteb/accounts"
	"github.com/fiscalbr/elalur/internal/shared"
)

type Repository interface {
	List(ctx context.Context, companyID int64, year int) ([]Entry, error)
	Get(ctx context.Context, companyID, id int64) (Entry, error)
	Create(ctx context.Context, entry Entry) (Entry, error)
	Update(ctx context.Context, companyID, id int64, entry Entry) error
	SetActive(ctx context.Context, companyID, id int64, active bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const entryColumns = `id, company_id, ref_month, ref_year, tax_type, relation_kind,
ledger_account_id, partb_account_id, tax_parameter_id, adjustment_kind, description,
amount, active, created_at, updated_at`

func (r *repository) List(ctx context.Context, companyID int64, year int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM partb_entries
WHERE company_id = $1 AND ref_year = $2 ORDER BY ref_month, id`, companyID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM partb_entries
WHERE company_id = $1 AND id = $2`, companyID, id)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, shared.ErrNotFound
	}
	return entry, err
}

func (r *repository) Create(ctx context.Context, entry Entry) (Entry, error) {
	now := time.Now()
	ledgerID, partBID := relationParams(entry.Relation)
	err := r.pool.QueryRow(ctx, `INSERT INTO partb_entries
(company_id, ref_month, ref_year, tax_type, relation_kind, ledger_account_id, partb_account_id,
 tax_parameter_id, adjustment_kind, description, amount, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13) RETURNING id`,
		entry.CompanyID, entry.Month, entry.Year, string(entry.TaxType), string(entry.Relation.Kind()),
		ledgerID, partBID, entry.TaxParameterID, string(entry.Kind), entry.Description,
		entry.Amount, entry.Active, now).
		Scan(&entry.ID)
	if err != nil {
		return Entry{}, err
	}
	entry.CreatedAt = now
	entry.UpdatedAt = now
	return entry, nil
}

func (r *repository) Update(ctx context.Context, companyID, id int64, entry Entry) error {
	ledgerID, partBID := relationParams(entry.Relation)
	tag, err := r.pool.Exec(ctx, `UPDATE partb_entries SET ref_month = $1, ref_year = $2,
tax_type = $3, relation_kind = $4, ledger_account_id = $5, partb_account_id = $6,
tax_parameter_id = $7, adjustment_kind = $8, description = $9, amount = $10, updated_at = NOW()
WHERE company_id = $11 AND id = $12`,
		entry.Month, entry.Year, string(entry.TaxType), string(entry.Relation.Kind()),
		ledgerID, partBID, entry.TaxParameterID, string(entry.Kind), entry.Description,
		entry.Amount, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, companyID, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE partb_entries SET active = $1, updated_at = NOW()
WHERE company_id = $2 AND id = $3`, active, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func relationParams(rel Relation) (ledgerID, partBID *int64) {
	if id, ok := rel.LedgerAccountID(); ok {
		ledgerID = &id
	}
	if id, ok := rel.PartBAccountID(); ok {
		partBID = &id
	}
	return ledgerID, partBID
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var taxType, relationKind, adjustmentKind string
	var ledgerID, partBID *int64
	var amount decimal.Decimal
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&e.ID, &e.CompanyID, &e.Month, &e.Year, &taxType, &relationKind,
		&ledgerID, &partBID, &e.TaxParameterID, &adjustmentKind, &e.Description,
		&amount, &e.Active, &createdAt, &updatedAt); err != nil {
		return Entry{}, err
	}
	e.TaxType = pbaccounts.TaxType(taxType)
	e.Kind = AdjustmentKind(adjustmentKind)
	e.Amount = amount
	relation, err := storedRelation(RelationKind(relationKind), ledgerID, partBID)
	if err != nil {
		return Entry{}, err
	}
	e.Relation = relation
	if createdAt.Valid {
		e.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		e.UpdatedAt = updatedAt.Time
	}
	return e, nil
}

// storedRelation rebuilds the relation variant from its columns, refusing
// rows whose FK columns disagree with the stored kind.
func storedRelation(kind RelationKind, ledgerID, partBID *int64) (Relation, error) {
	switch kind {
	case RelationLedger:
		if ledgerID == nil || partBID != nil {
			return Relation{}, fmt.Errorf("inconsistent relation columns for kind %s", kind)
		}
		return LedgerRelation(*ledgerID), nil
	case RelationPartB:
		if partBID == nil || ledgerID != nil {
			return Relation{}, fmt.Errorf("inconsistent relation columns for kind %s", kind)
		}
		return PartBRelation(*partBID), nil
	case RelationBoth:
		if ledgerID == nil || partBID == nil {
			return Relation{}, fmt.Errorf("inconsistent relation columns for kind %s", kind)
		}
		return BothRelation(*ledgerID, *partBID), nil
	}
	return Relation{}, fmt.Errorf("unknown relation kind %q", kind)
}

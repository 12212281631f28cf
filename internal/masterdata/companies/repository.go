package companies

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fiscalbr/elalur/internal/platform/db"
	"github.com/fiscalbr/elalur/internal/shared"
)

type Repository interface {
	List(ctx context.Context) ([]Company, error)
	Get(ctx context.Context, id int64) (Company, error)
	Create(ctx context.Context, company Company) (Company, error)
	Update(ctx context.Context, id int64, company Company) error
	SetActive(ctx context.Context, id int64, active bool) error
	UpdateAccountingCutoff(ctx context.Context, id int64, cutoff *time.Time, log shared.AuditLog) error
	AccountingCutoff(ctx context.Context, id int64) (*time.Time, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const companyColumns = `id, tax_id, legal_name, accounting_cutoff, active, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY legal_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, company)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	company, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, shared.ErrNotFound
	}
	return company, err
}

func (r *repository) Create(ctx context.Context, company Company) (Company, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO companies (tax_id, legal_name, accounting_cutoff, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		company.TaxID, company.LegalName, cutoffParam(company.AccountingCutoff), company.Active, now).
		Scan(&company.ID)
	if err != nil {
		return Company{}, mapUniqueViolation(err)
	}
	company.CreatedAt = now
	company.UpdatedAt = now
	return company, nil
}

func (r *repository) Update(ctx context.Context, id int64, company Company) error {
	tag, err := r.pool.Exec(ctx, `UPDATE companies SET tax_id = $1, legal_name = $2, updated_at = NOW() WHERE id = $3`,
		company.TaxID, company.LegalName, id)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE companies SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateAccountingCutoff moves the cutoff and writes its audit row in one
// transaction; neither lands without the other.
func (r *repository) UpdateAccountingCutoff(ctx context.Context, id int64, cutoff *time.Time, log shared.AuditLog) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE companies SET accounting_cutoff = $1, updated_at = NOW() WHERE id = $2`,
			cutoffParam(cutoff), id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		metaJSON, err := json.Marshal(log.Meta)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `INSERT INTO audit_logs (actor_id, company_id, action, entity, entity_id, meta, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			log.ActorID, log.CompanyID, log.Action, log.Entity, log.EntityID, metaJSON, log.At)
		return err
	})
}

func (r *repository) AccountingCutoff(ctx context.Context, id int64) (*time.Time, error) {
	var cutoff pgtype.Date
	err := r.pool.QueryRow(ctx, `SELECT accounting_cutoff FROM companies WHERE id = $1`, id).Scan(&cutoff)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !cutoff.Valid {
		return nil, nil
	}
	value := cutoff.Time
	return &value, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (Company, error) {
	var c Company
	var cutoff pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&c.ID, &c.TaxID, &c.LegalName, &cutoff, &c.Active, &createdAt, &updatedAt); err != nil {
		return Company{}, err
	}
	if cutoff.Valid {
		value := cutoff.Time
		c.AccountingCutoff = &value
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
	}
	return c, nil
}

func cutoffParam(cutoff *time.Time) pgtype.Date {
	if cutoff == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *cutoff, Valid: true}
}

func mapUniqueViolation(err error) error {
	if db.IsUniqueViolation(err) {
		return shared.ErrDuplicate
	}
	return err
}

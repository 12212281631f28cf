package taxparams

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fiscalbr/elalur/internal/platform/db"
	"github.com/fiscalbr/elalur/internal/shared"
)

type Repository interface {
	List(ctx context.Context) ([]TaxParameter, error)
	Get(ctx context.Context, id int64) (TaxParameter, error)
	Create(ctx context.Context, param TaxParameter) (TaxParameter, error)
	Update(ctx context.Context, id int64, param TaxParameter) error
	SetActive(ctx context.Context, id int64, active bool) error
	FindByCode(ctx context.Context, code string) (TaxParameter, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const taxParamColumns = `id, code, description, active, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]TaxParameter, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taxParamColumns+` FROM tax_parameters ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TaxParameter
	for rows.Next() {
		param, err := scanTaxParameter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, param)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (TaxParameter, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taxParamColumns+` FROM tax_parameters WHERE id = $1`, id)
	param, err := scanTaxParameter(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return TaxParameter{}, shared.ErrNotFound
	}
	return param, err
}

func (r *repository) Create(ctx context.Context, param TaxParameter) (TaxParameter, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO tax_parameters (code, description, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		param.Code, param.Description, param.Active, now).
		Scan(&param.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return TaxParameter{}, shared.ErrDuplicate
		}
		return TaxParameter{}, err
	}
	param.CreatedAt = now
	param.UpdatedAt = now
	return param, nil
}

func (r *repository) Update(ctx context.Context, id int64, param TaxParameter) error {
	tag, err := r.pool.Exec(ctx, `UPDATE tax_parameters SET description = $1, updated_at = NOW() WHERE id = $2`,
		param.Description, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE tax_parameters SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (TaxParameter, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taxParamColumns+` FROM tax_parameters WHERE code = $1`, code)
	param, err := scanTaxParameter(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return TaxParameter{}, shared.ErrNotFound
	}
	return param, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaxParameter(row rowScanner) (TaxParameter, error) {
	var p TaxParameter
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&p.ID, &p.Code, &p.Description, &p.Active, &createdAt, &updatedAt); err != nil {
		return TaxParameter{}, err
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return p, nil
}

package refaccounts

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
	List(ctx context.Context) ([]ReferenceAccount, error)
	Get(ctx context.Context, id int64) (ReferenceAccount, error)
	Create(ctx context.Context, account ReferenceAccount) (ReferenceAccount, error)
	Update(ctx context.Context, id int64, account ReferenceAccount) error
	SetActive(ctx context.Context, id int64, active bool) error
	// FindByCode resolves (code, year) exactly, falling back to the
	// year-less registry entry for that code.
	FindByCode(ctx context.Context, code string, year *int) (ReferenceAccount, error)
	Exists(ctx context.Context, code string, year *int) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const refAccountColumns = `id, code, description, validity_year, active, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]ReferenceAccount, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+refAccountColumns+` FROM reference_accounts ORDER BY code, validity_year NULLS FIRST`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReferenceAccount
	for rows.Next() {
		account, err := scanReferenceAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, account)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (ReferenceAccount, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+refAccountColumns+` FROM reference_accounts WHERE id = $1`, id)
	account, err := scanReferenceAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ReferenceAccount{}, shared.ErrNotFound
	}
	return account, err
}

func (r *repository) Create(ctx context.Context, account ReferenceAccount) (ReferenceAccount, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO reference_accounts (code, description, validity_year, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		account.Code, account.Description, account.ValidityYear, account.Active, now).
		Scan(&account.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ReferenceAccount{}, shared.ErrDuplicate
		}
		return ReferenceAccount{}, err
	}
	account.CreatedAt = now
	account.UpdatedAt = now
	return account, nil
}

func (r *repository) Update(ctx context.Context, id int64, account ReferenceAccount) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reference_accounts SET description = $1, updated_at = NOW() WHERE id = $2`,
		account.Description, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reference_accounts SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) FindByCode(ctx context.Context, code string, year *int) (ReferenceAccount, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+refAccountColumns+` FROM reference_accounts
WHERE code = $1 AND (validity_year = $2 OR validity_year IS NULL)
ORDER BY validity_year NULLS LAST LIMIT 1`, code, year)
	account, err := scanReferenceAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ReferenceAccount{}, shared.ErrNotFound
	}
	return account, err
}

func (r *repository) Exists(ctx context.Context, code string, year *int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reference_accounts
WHERE code = $1 AND validity_year IS NOT DISTINCT FROM $2)`, code, year).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReferenceAccount(row rowScanner) (ReferenceAccount, error) {
	var a ReferenceAccount
	var year pgtype.Int4
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&a.ID, &a.Code, &a.Description, &year, &a.Active, &createdAt, &updatedAt); err != nil {
		return ReferenceAccount{}, err
	}
	if year.Valid {
		value := int(year.Int32)
		a.ValidityYear = &value
	}
	if createdAt.Valid {
		a.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		a.UpdatedAt = updatedAt.Time
	}
	return a, nil
}

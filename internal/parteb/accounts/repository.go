package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fiscalbr/elalur/internal/platform/db"
	"github.com/fiscalbr/elalur/internal/shared"
)

type Repository interface {
	List(ctx context.Context, companyID int64, baseYear int) ([]PartBAccount, error)
	Get(ctx context.Context, companyID, id int64) (PartBAccount, error)
	Create(ctx context.Context, account PartBAccount) (PartBAccount, error)
	Update(ctx context.Context, companyID, id int64, account PartBAccount) error
	SetActive(ctx context.Context, companyID, id int64, active bool) error
	FindByCode(ctx context.Context, companyID int64, baseYear int, code string) (PartBAccount, error)
	ExistsCode(ctx context.Context, companyID int64, baseYear int, code string) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const partBColumns = `id, company_id, code, description, base_year, validity_start, validity_end,
tax_type, opening_balance, balance_nature, active, created_at, updated_at`

func (r *repository) List(ctx context.Context, companyID int64, baseYear int) ([]PartBAccount, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+partBColumns+` FROM partb_accounts
WHERE company_id = $1 AND base_year = $2 ORDER BY code`, companyID, baseYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PartBAccount
	for rows.Next() {
		account, err := scanPartBAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, account)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (PartBAccount, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+partBColumns+` FROM partb_accounts
WHERE company_id = $1 AND id = $2`, companyID, id)
	account, err := scanPartBAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return PartBAccount{}, shared.ErrNotFound
	}
	return account, err
}

func (r *repository) Create(ctx context.Context, account PartBAccount) (PartBAccount, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO partb_accounts
(company_id, code, description, base_year, validity_start, validity_end, tax_type,
 opening_balance, balance_nature, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11) RETURNING id`,
		account.CompanyID, account.Code, account.Description, account.BaseYear,
		dateParam(account.ValidityStart), dateParam(account.ValidityEnd), string(account.TaxType),
		account.OpeningBalance, string(account.BalanceNature), account.Active, now).
		Scan(&account.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return PartBAccount{}, shared.ErrDuplicate
		}
		return PartBAccount{}, err
	}
	account.CreatedAt = now
	account.UpdatedAt = now
	return account, nil
}

func (r *repository) Update(ctx context.Context, companyID, id int64, account PartBAccount) error {
	tag, err := r.pool.Exec(ctx, `UPDATE partb_accounts SET description = $1, validity_start = $2,
validity_end = $3, tax_type = $4, opening_balance = $5, balance_nature = $6, updated_at = NOW()
WHERE company_id = $7 AND id = $8`,
		account.Description, dateParam(account.ValidityStart), dateParam(account.ValidityEnd),
		string(account.TaxType), account.OpeningBalance, string(account.BalanceNature), companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, companyID, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE partb_accounts SET active = $1, updated_at = NOW()
WHERE company_id = $2 AND id = $3`, active, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) FindByCode(ctx context.Context, companyID int64, baseYear int, code string) (PartBAccount, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+partBColumns+` FROM partb_accounts
WHERE company_id = $1 AND base_year = $2 AND code = $3`, companyID, baseYear, code)
	account, err := scanPartBAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return PartBAccount{}, shared.ErrNotFound
	}
	return account, err
}

func (r *repository) ExistsCode(ctx context.Context, companyID int64, baseYear int, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM partb_accounts
WHERE company_id = $1 AND base_year = $2 AND code = $3)`, companyID, baseYear, code).Scan(&exists)
	return exists, err
}

func dateParam(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPartBAccount(row rowScanner) (PartBAccount, error) {
	var a PartBAccount
	var taxType, nature string
	var start, end pgtype.Date
	var balance decimal.Decimal
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Description, &a.BaseYear,
		&start, &end, &taxType, &balance, &nature, &a.Active, &createdAt, &updatedAt); err != nil {
		return PartBAccount{}, err
	}
	a.TaxType = TaxType(taxType)
	a.BalanceNature = BalanceNature(nature)
	a.OpeningBalance = balance
	if start.Valid {
		t := start.Time
		a.ValidityStart = &t
	}
	if end.Valid {
		t := end.Time
		a.ValidityEnd = &t
	}
	if createdAt.Valid {
		a.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		a.UpdatedAt = updatedAt.Time
	}
	return a, nil
}

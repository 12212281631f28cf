package accounts

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
	List(ctx context.Context, companyID int64, fiscalYear int) ([]ChartAccount, error)
	Get(ctx context.Context, companyID, id int64) (ChartAccount, error)
	Create(ctx context.Context, account ChartAccount) (ChartAccount, error)
	// Update touches the mutable fields only; code and fiscal year are frozen.
	Update(ctx context.Context, companyID, id int64, account ChartAccount) error
	SetActive(ctx context.Context, companyID, id int64, active bool) error
	FindByCode(ctx context.Context, companyID int64, fiscalYear int, code string) (ChartAccount, error)
	ExistsCode(ctx context.Context, companyID int64, fiscalYear int, code string) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const chartColumns = `id, company_id, code, name, fiscal_year, account_type, reference_account_id,
classification, level, nature, affects_result, deductible, active, created_at, updated_at`

func (r *repository) List(ctx context.Context, companyID int64, fiscalYear int) ([]ChartAccount, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+chartColumns+` FROM chart_accounts
WHERE company_id = $1 AND fiscal_year = $2 ORDER BY code`, companyID, fiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChartAccount
	for rows.Next() {
		account, err := scanChartAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, account)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (ChartAccount, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+chartColumns+` FROM chart_accounts
WHERE company_id = $1 AND id = $2`, companyID, id)
	account, err := scanChartAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChartAccount{}, shared.ErrNotFound
	}
	return account, err
}

func (r *repository) Create(ctx context.Context, account ChartAccount) (ChartAccount, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO chart_accounts
(company_id, code, name, fiscal_year, account_type, reference_account_id, classification, level, nature,
 affects_result, deductible, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13) RETURNING id`,
		account.CompanyID, account.Code, account.Name, account.FiscalYear, string(account.Type),
		account.ReferenceAccountID, account.Classification, account.Level, string(account.Nature),
		account.AffectsResult, account.Deductible, account.Active, now).
		Scan(&account.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ChartAccount{}, shared.ErrDuplicate
		}
		return ChartAccount{}, err
	}
	account.CreatedAt = now
	account.UpdatedAt = now
	return account, nil
}

func (r *repository) Update(ctx context.Context, companyID, id int64, account ChartAccount) error {
	tag, err := r.pool.Exec(ctx, `UPDATE chart_accounts SET name = $1, account_type = $2,
reference_account_id = $3, classification = $4, level = $5, nature = $6,
affects_result = $7, deductible = $8, updated_at = NOW()
WHERE company_id = $9 AND id = $10`,
		account.Name, string(account.Type), account.ReferenceAccountID, account.Classification,
		account.Level, string(account.Nature), account.AffectsResult, account.Deductible, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, companyID, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE chart_accounts SET active = $1, updated_at = NOW()
WHERE company_id = $2 AND id = $3`, active, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) FindByCode(ctx context.Context, companyID int64, fiscalYear int, code string) (ChartAccount, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+chartColumns+` FROM chart_accounts
WHERE company_id = $1 AND fiscal_year = $2 AND code = $3`, companyID, fiscalYear, code)
	account, err := scanChartAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChartAccount{}, shared.ErrNotFound
	}
	return account, err
}

func (r *repository) ExistsCode(ctx context.Context, companyID int64, fiscalYear int, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM chart_accounts
WHERE company_id = $1 AND fiscal_year = $2 AND code = $3)`, companyID, fiscalYear, code).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChartAccount(row rowScanner) (ChartAccount, error) {
	var a ChartAccount
	var accountType, nature string
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.FiscalYear, &accountType,
		&a.ReferenceAccountID, &a.Classification, &a.Level, &nature,
		&a.AffectsResult, &a.Deductible, &a.Active, &createdAt, &updatedAt); err != nil {
		return ChartAccount{}, err
	}
	a.Type = AccountType(accountType)
	a.Nature = Nature(nature)
	if createdAt.Valid {
		a.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		a.UpdatedAt = updatedAt.Time
	}
	return a, nil
}

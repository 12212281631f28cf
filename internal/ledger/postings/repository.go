package postings

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fiscalbr/elalur/internal/shared"
)

type Repository interface {
	List(ctx context.Context, companyID int64, fiscalYear int) ([]Posting, error)
	Get(ctx context.Context, companyID, id int64) (Posting, error)
	Create(ctx context.Context, posting Posting) (Posting, error)
	Update(ctx context.Context, companyID, id int64, posting Posting) error
	SetActive(ctx context.Context, companyID, id int64, active bool) error
	// ListForExport returns postings joined to their account codes, date
	// ascending, optionally narrowed to an inclusive date range.
	ListForExport(ctx context.Context, companyID int64, fiscalYear int, from, to *time.Time) ([]ExportRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const postingColumns = `id, company_id, debit_account_id, credit_account_id, date, amount, memo,
document_number, fiscal_year, active, created_at, updated_at`

func (r *repository) List(ctx context.Context, companyID int64, fiscalYear int) ([]Posting, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+postingColumns+` FROM ledger_postings
WHERE company_id = $1 AND fiscal_year = $2 ORDER BY date, id`, companyID, fiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Posting
	for rows.Next() {
		posting, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, posting)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Posting, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+postingColumns+` FROM ledger_postings
WHERE company_id = $1 AND id = $2`, companyID, id)
	posting, err := scanPosting(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Posting{}, shared.ErrNotFound
	}
	return posting, err
}

func (r *repository) Create(ctx context.Context, posting Posting) (Posting, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO ledger_postings
(company_id, debit_account_id, credit_account_id, date, amount, memo, document_number, fiscal_year, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id`,
		posting.CompanyID, posting.DebitAccountID, posting.CreditAccountID,
		pgtype.Date{Time: posting.Date, Valid: true}, posting.Amount, posting.Memo,
		posting.DocumentNumber, posting.FiscalYear, posting.Active, now).
		Scan(&posting.ID)
	if err != nil {
		return Posting{}, err
	}
	posting.CreatedAt = now
	posting.UpdatedAt = now
	return posting, nil
}

func (r *repository) Update(ctx context.Context, companyID, id int64, posting Posting) error {
	tag, err := r.pool.Exec(ctx, `UPDATE ledger_postings SET debit_account_id = $1, credit_account_id = $2,
date = $3, amount = $4, memo = $5, document_number = $6, updated_at = NOW()
WHERE company_id = $7 AND id = $8`,
		posting.DebitAccountID, posting.CreditAccountID, pgtype.Date{Time: posting.Date, Valid: true},
		posting.Amount, posting.Memo, posting.DocumentNumber, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, companyID, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE ledger_postings SET active = $1, updated_at = NOW()
WHERE company_id = $2 AND id = $3`, active, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListForExport(ctx context.Context, companyID int64, fiscalYear int, from, to *time.Time) ([]ExportRow, error) {
	query := `SELECT d.code, c.code, p.date, p.amount, p.memo, p.document_number
FROM ledger_postings p
JOIN chart_accounts d ON d.id = p.debit_account_id
JOIN chart_accounts c ON c.id = p.credit_account_id
WHERE p.company_id = $1 AND p.fiscal_year = $2`
	args := []any{companyID, fiscalYear}
	if from != nil && to != nil {
		query += ` AND p.date BETWEEN $3 AND $4`
		args = append(args, pgtype.Date{Time: *from, Valid: true}, pgtype.Date{Time: *to, Valid: true})
	}
	query += ` ORDER BY p.date, p.id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportRow
	for rows.Next() {
		var row ExportRow
		var date pgtype.Date
		if err := rows.Scan(&row.DebitCode, &row.CreditCode, &date, &row.Amount, &row.Memo, &row.DocumentNumber); err != nil {
			return nil, err
		}
		if date.Valid {
			row.Date = date.Time
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(row rowScanner) (Posting, error) {
	var p Posting
	var date pgtype.Date
	var amount decimal.Decimal
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&p.ID, &p.CompanyID, &p.DebitAccountID, &p.CreditAccountID, &date, &amount,
		&p.Memo, &p.DocumentNumber, &p.FiscalYear, &p.Active, &createdAt, &updatedAt); err != nil {
		return Posting{}, err
	}
	p.Date = date.Time
	p.Amount = amount
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return p, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/repository"
)

type loanRepository struct {
	db DBTX
}

func NewLoanRepository(db DBTX) repository.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, client_id, tool_id, quantity, loan_date, agreed_return_date, actual_return_date, daily_rate, status, created_by, COALESCE(notes, ''), created_on, updated_on`

func scanLoan(scan func(dest ...any) error) (*domain.Loan, error) {
	l := &domain.Loan{}
	err := scan(&l.ID, &l.ClientID, &l.ToolID, &l.Quantity, &l.LoanDate, &l.AgreedReturnDate, &l.ActualReturnDate, &l.DailyRate, &l.Status, &l.CreatedBy, &l.Notes, &l.CreatedOn, &l.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *loanRepository) Create(ctx context.Context, l *domain.Loan) error {
	query := `INSERT INTO loans (client_id, tool_id, quantity, loan_date, agreed_return_date, daily_rate, status, created_by, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id`
	now := time.Now()
	l.CreatedOn = now
	l.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query, l.ClientID, l.ToolID, l.Quantity, l.LoanDate, l.AgreedReturnDate, l.DailyRate, l.Status, l.CreatedBy, l.Notes, now).Scan(&l.ID)
}

func (r *loanRepository) GetByID(ctx context.Context, id int32) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	l, err := scanLoan(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("loan", id)
	}
	return l, err
}

func (r *loanRepository) Update(ctx context.Context, l *domain.Loan) error {
	query := `UPDATE loans SET actual_return_date = $1, status = $2, notes = $3, updated_on = $4 WHERE id = $5`
	l.UpdatedOn = time.Now()
	_, err := r.db.ExecContext(ctx, query, l.ActualReturnDate, l.Status, l.Notes, l.UpdatedOn, l.ID)
	return err
}

func (r *loanRepository) ListByClient(ctx context.Context, clientID int32, status domain.LoanStatus) ([]domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE client_id = $1`
	args := []any{clientID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows.Scan)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *l)
	}
	return loans, rows.Err()
}

func (r *loanRepository) CountActiveByClient(ctx context.Context, clientID int32) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM loans WHERE client_id = $1 AND status = 'ACTIVE'`
	err := r.db.QueryRowContext(ctx, query, clientID).Scan(&count)
	return count, err
}

func (r *loanRepository) HasActiveLoanForTool(ctx context.Context, clientID, toolID int32) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM loans WHERE client_id = $1 AND tool_id = $2 AND status = 'ACTIVE')`
	err := r.db.QueryRowContext(ctx, query, clientID, toolID).Scan(&exists)
	return exists, err
}

// HasOverdueActiveLoan detects lateness on loans still out. Loans only get
// the OVERDUE status once returned, so active lateness is a date comparison.
func (r *loanRepository) HasOverdueActiveLoan(ctx context.Context, clientID int32, asOf time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM loans WHERE client_id = $1 AND status = 'ACTIVE' AND agreed_return_date < $2)`
	err := r.db.QueryRowContext(ctx, query, clientID, asOf).Scan(&exists)
	return exists, err
}

func (r *loanRepository) ListOverdueActive(ctx context.Context, asOf time.Time) ([]domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = 'ACTIVE' AND agreed_return_date < $1 ORDER BY agreed_return_date ASC`
	rows, err := r.db.QueryContext(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows.Scan)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *l)
	}
	return loans, rows.Err()
}

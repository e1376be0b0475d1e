package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type fineRepository struct {
	db DBTX
}

func NewFineRepository(db DBTX) repository.FineRepository {
	return &fineRepository{db: db}
}

const fineColumns = `id, reference, client_id, loan_id, type, amount, COALESCE(description, ''), paid, due_date, paid_date, created_by, created_on`

func scanFine(scan func(dest ...any) error) (*domain.Fine, error) {
	f := &domain.Fine{}
	err := scan(&f.ID, &f.Reference, &f.ClientID, &f.LoanID, &f.Type, &f.Amount, &f.Description, &f.Paid, &f.DueDate, &f.PaidDate, &f.CreatedBy, &f.CreatedOn)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *fineRepository) Create(ctx context.Context, f *domain.Fine) error {
	query := `INSERT INTO fines (reference, client_id, loan_id, type, amount, description, paid, due_date, created_by, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	f.CreatedOn = time.Now()
	return r.db.QueryRowContext(ctx, query, f.Reference, f.ClientID, f.LoanID, f.Type, f.Amount, f.Description, f.Paid, f.DueDate, f.CreatedBy, f.CreatedOn).Scan(&f.ID)
}

func (r *fineRepository) GetByID(ctx context.Context, id int32) (*domain.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE id = $1`
	f, err := scanFine(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("fine", id)
	}
	return f, err
}

// Update touches only the mutable accounting fields. A fine's client, loan,
// type and creation data are immutable once written.
func (r *fineRepository) Update(ctx context.Context, f *domain.Fine) error {
	query := `UPDATE fines SET amount = $1, description = $2, paid = $3, paid_date = $4 WHERE id = $5`
	_, err := r.db.ExecContext(ctx, query, f.Amount, f.Description, f.Paid, f.PaidDate, f.ID)
	return err
}

func (r *fineRepository) listFines(ctx context.Context, query string, args ...any) ([]domain.Fine, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fines []domain.Fine
	for rows.Next() {
		f, err := scanFine(rows.Scan)
		if err != nil {
			return nil, err
		}
		fines = append(fines, *f)
	}
	return fines, rows.Err()
}

func (r *fineRepository) ListUnpaidByClient(ctx context.Context, clientID int32) ([]domain.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE client_id = $1 AND paid = false ORDER BY due_date ASC`
	return r.listFines(ctx, query, clientID)
}

func (r *fineRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE paid = false AND due_date < $1 ORDER BY due_date ASC`
	return r.listFines(ctx, query, asOf)
}

func (r *fineRepository) TotalUnpaidAmount(ctx context.Context, clientID int32) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM fines WHERE client_id = $1 AND paid = false`
	err := r.db.QueryRowContext(ctx, query, clientID).Scan(&total)
	return total, err
}

func (r *fineRepository) HasUnpaid(ctx context.Context, clientID int32) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM fines WHERE client_id = $1 AND paid = false)`
	err := r.db.QueryRowContext(ctx, query, clientID).Scan(&exists)
	return exists, err
}

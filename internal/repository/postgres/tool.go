package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/repository"
)

type toolRepository struct {
	db DBTX
}

func NewToolRepository(db DBTX) repository.ToolRepository {
	return &toolRepository{db: db}
}

func (r *toolRepository) Create(ctx context.Context, t *domain.Tool) error {
	query := `INSERT INTO tools (name, category_id, initial_stock, current_stock, replacement_value, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	t.CreatedOn = time.Now()
	return r.db.QueryRowContext(ctx, query, t.Name, t.CategoryID, t.InitialStock, t.CurrentStock, t.ReplacementValue, t.Status, t.CreatedOn).Scan(&t.ID)
}

func (r *toolRepository) getByID(ctx context.Context, id int32, forUpdate bool) (*domain.Tool, error) {
	query := `SELECT id, name, category_id, initial_stock, current_stock, replacement_value, status, created_on FROM tools WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	t := &domain.Tool{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.CategoryID, &t.InitialStock, &t.CurrentStock, &t.ReplacementValue, &t.Status, &t.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("tool", id)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *toolRepository) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate locks the tool row for the surrounding transaction.
// All instance reservation and stock mutation for one tool funnels through
// this lock, which is what makes concurrent reservations safe.
func (r *toolRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Tool, error) {
	return r.getByID(ctx, id, true)
}

func (r *toolRepository) UpdateStock(ctx context.Context, id int32, currentStock int32) error {
	query := `UPDATE tools SET current_stock = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, currentStock, id)
	return err
}

func (r *toolRepository) UpdateStatus(ctx context.Context, id int32, status domain.ToolStatus) error {
	query := `UPDATE tools SET status = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

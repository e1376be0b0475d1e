package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/repository"
)

type kardexRepository struct {
	db DBTX
}

func NewKardexRepository(db DBTX) repository.KardexRepository {
	return &kardexRepository{db: db}
}

const kardexColumns = `id, tool_id, instance_id, type, quantity, stock_before, stock_after, COALESCE(description, ''), related_loan_id, created_by, created_on`

// Create appends one movement. There is deliberately no Update or Delete on
// this repository: the kardex is append-only.
func (r *kardexRepository) Create(ctx context.Context, m *domain.KardexMovement) error {
	query := `INSERT INTO kardex_movements (tool_id, instance_id, type, quantity, stock_before, stock_after, description, related_loan_id, created_by, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	m.CreatedOn = time.Now()
	return r.db.QueryRowContext(ctx, query, m.ToolID, m.InstanceID, m.Type, m.Quantity, m.StockBefore, m.StockAfter, m.Description, m.RelatedLoanID, m.CreatedBy, m.CreatedOn).Scan(&m.ID)
}

func (r *kardexRepository) listMovements(ctx context.Context, query string, args ...any) ([]domain.KardexMovement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []domain.KardexMovement
	for rows.Next() {
		var m domain.KardexMovement
		if err := rows.Scan(&m.ID, &m.ToolID, &m.InstanceID, &m.Type, &m.Quantity, &m.StockBefore, &m.StockAfter, &m.Description, &m.RelatedLoanID, &m.CreatedBy, &m.CreatedOn); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (r *kardexRepository) ListByTool(ctx context.Context, toolID int32) ([]domain.KardexMovement, error) {
	query := `SELECT ` + kardexColumns + ` FROM kardex_movements WHERE tool_id = $1 ORDER BY id DESC`
	return r.listMovements(ctx, query, toolID)
}

// ListByToolChronological returns movements oldest first, the order needed
// to replay a tool's stock from its INITIAL_STOCK entry.
func (r *kardexRepository) ListByToolChronological(ctx context.Context, toolID int32) ([]domain.KardexMovement, error) {
	query := `SELECT ` + kardexColumns + ` FROM kardex_movements WHERE tool_id = $1 ORDER BY id ASC`
	return r.listMovements(ctx, query, toolID)
}

func (r *kardexRepository) ListByDateRange(ctx context.Context, toolID int32, from, to time.Time) ([]domain.KardexMovement, error) {
	query := `SELECT ` + kardexColumns + ` FROM kardex_movements
	          WHERE tool_id = $1 AND created_on >= $2 AND created_on <= $3 ORDER BY id DESC`
	return r.listMovements(ctx, query, toolID, from, to)
}

func (r *kardexRepository) GetLastByTool(ctx context.Context, toolID int32) (*domain.KardexMovement, error) {
	query := `SELECT ` + kardexColumns + ` FROM kardex_movements WHERE tool_id = $1 ORDER BY id DESC LIMIT 1`
	m := &domain.KardexMovement{}
	err := r.db.QueryRowContext(ctx, query, toolID).Scan(&m.ID, &m.ToolID, &m.InstanceID, &m.Type, &m.Quantity, &m.StockBefore, &m.StockAfter, &m.Description, &m.RelatedLoanID, &m.CreatedBy, &m.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("kardex movement for tool", toolID)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

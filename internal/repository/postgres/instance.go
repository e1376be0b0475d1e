package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/repository"

	"github.com/lib/pq"
)

type instanceRepository struct {
	db DBTX
}

func NewInstanceRepository(db DBTX) repository.InstanceRepository {
	return &instanceRepository{db: db}
}

func (r *instanceRepository) CreateBatch(ctx context.Context, toolID int32, count int32) ([]domain.ToolInstance, error) {
	query := `INSERT INTO tool_instances (tool_id, status, created_on)
	          SELECT $1, $2, $3 FROM generate_series(1, $4)
	          RETURNING id, tool_id, status, created_on`
	rows, err := r.db.QueryContext(ctx, query, toolID, domain.InstanceStatusAvailable, time.Now(), count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []domain.ToolInstance
	for rows.Next() {
		var inst domain.ToolInstance
		if err := rows.Scan(&inst.ID, &inst.ToolID, &inst.Status, &inst.CreatedOn); err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}

func (r *instanceRepository) GetByID(ctx context.Context, id int32) (*domain.ToolInstance, error) {
	query := `SELECT id, tool_id, status, created_on FROM tool_instances WHERE id = $1`
	inst := &domain.ToolInstance{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&inst.ID, &inst.ToolID, &inst.Status, &inst.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("tool instance", id)
	}
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func (r *instanceRepository) ListByTool(ctx context.Context, toolID int32) ([]domain.ToolInstance, error) {
	query := `SELECT id, tool_id, status, created_on FROM tool_instances WHERE tool_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, toolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []domain.ToolInstance
	for rows.Next() {
		var inst domain.ToolInstance
		if err := rows.Scan(&inst.ID, &inst.ToolID, &inst.Status, &inst.CreatedOn); err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}

// SelectByStatusForUpdate picks up to limit instances in ascending id order
// and locks them. Ascending id is the documented selection policy so that
// repeated runs and audits are reproducible.
func (r *instanceRepository) SelectByStatusForUpdate(ctx context.Context, toolID int32, status domain.InstanceStatus, limit int32) ([]domain.ToolInstance, error) {
	query := `SELECT id, tool_id, status, created_on FROM tool_instances
	          WHERE tool_id = $1 AND status = $2 ORDER BY id ASC LIMIT $3 FOR UPDATE`
	rows, err := r.db.QueryContext(ctx, query, toolID, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []domain.ToolInstance
	for rows.Next() {
		var inst domain.ToolInstance
		if err := rows.Scan(&inst.ID, &inst.ToolID, &inst.Status, &inst.CreatedOn); err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}

func (r *instanceRepository) UpdateStatus(ctx context.Context, id int32, status domain.InstanceStatus) error {
	query := `UPDATE tool_instances SET status = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.NewNotFoundError("tool instance", id)
	}
	return nil
}

func (r *instanceRepository) UpdateStatusBatch(ctx context.Context, ids []int32, status domain.InstanceStatus) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE tool_instances SET status = $1 WHERE id = ANY($2)`
	_, err := r.db.ExecContext(ctx, query, status, pq.Array(ids))
	return err
}

func (r *instanceRepository) CountByStatus(ctx context.Context, toolID int32, status domain.InstanceStatus) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM tool_instances WHERE tool_id = $1 AND status = $2`
	err := r.db.QueryRowContext(ctx, query, toolID, status).Scan(&count)
	return count, err
}

func (r *instanceRepository) Stats(ctx context.Context, toolID int32) (domain.InstanceStats, error) {
	var stats domain.InstanceStats
	query := `SELECT status, count(*) FROM tool_instances WHERE tool_id = $1 GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query, toolID)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var status domain.InstanceStatus
		var count int32
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		switch status {
		case domain.InstanceStatusAvailable:
			stats.Available = count
		case domain.InstanceStatusLoaned:
			stats.Loaned = count
		case domain.InstanceStatusUnderRepair:
			stats.UnderRepair = count
		case domain.InstanceStatusDecommissioned:
			stats.Decommissioned = count
		}
	}
	return stats, rows.Err()
}

func (r *instanceRepository) Delete(ctx context.Context, id int32) error {
	query := `DELETE FROM tool_instances WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.NewNotFoundError("tool instance", id)
	}
	return nil
}

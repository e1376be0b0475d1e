package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/repository"
)

type damageRepository struct {
	db DBTX
}

func NewDamageRepository(db DBTX) repository.DamageRepository {
	return &damageRepository{db: db}
}

const damageColumns = `id, reference, loan_id, instance_id, type, COALESCE(description, ''), repair_cost, is_repairable, status, reported_by, assessed_by, reported_at, assessed_at, repair_started_at, repair_completed_at`

func scanDamage(scan func(dest ...any) error) (*domain.Damage, error) {
	d := &domain.Damage{}
	err := scan(&d.ID, &d.Reference, &d.LoanID, &d.InstanceID, &d.Type, &d.Description, &d.RepairCost, &d.IsRepairable, &d.Status, &d.ReportedBy, &d.AssessedBy, &d.ReportedAt, &d.AssessedAt, &d.RepairStartedAt, &d.RepairCompletedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *damageRepository) Create(ctx context.Context, d *domain.Damage) error {
	query := `INSERT INTO damages (reference, loan_id, instance_id, type, description, repair_cost, is_repairable, status, reported_by, reported_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	return r.db.QueryRowContext(ctx, query, d.Reference, d.LoanID, d.InstanceID, d.Type, d.Description, d.RepairCost, d.IsRepairable, d.Status, d.ReportedBy, d.ReportedAt).Scan(&d.ID)
}

func (r *damageRepository) GetByID(ctx context.Context, id int32) (*domain.Damage, error) {
	query := `SELECT ` + damageColumns + ` FROM damages WHERE id = $1`
	d, err := scanDamage(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("damage", id)
	}
	return d, err
}

func (r *damageRepository) Update(ctx context.Context, d *domain.Damage) error {
	query := `UPDATE damages SET type = $1, description = $2, repair_cost = $3, is_repairable = $4, status = $5, assessed_by = $6, assessed_at = $7, repair_started_at = $8, repair_completed_at = $9 WHERE id = $10`
	_, err := r.db.ExecContext(ctx, query, d.Type, d.Description, d.RepairCost, d.IsRepairable, d.Status, d.AssessedBy, d.AssessedAt, d.RepairStartedAt, d.RepairCompletedAt, d.ID)
	return err
}

func (r *damageRepository) listDamages(ctx context.Context, query string, args ...any) ([]domain.Damage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var damages []domain.Damage
	for rows.Next() {
		d, err := scanDamage(rows.Scan)
		if err != nil {
			return nil, err
		}
		damages = append(damages, *d)
	}
	return damages, rows.Err()
}

func (r *damageRepository) ListByStatus(ctx context.Context, status domain.DamageStatus) ([]domain.Damage, error) {
	query := `SELECT ` + damageColumns + ` FROM damages WHERE status = $1 ORDER BY reported_at ASC`
	return r.listDamages(ctx, query, status)
}

func (r *damageRepository) ListReportedBefore(ctx context.Context, cutoff time.Time) ([]domain.Damage, error) {
	query := `SELECT ` + damageColumns + ` FROM damages WHERE status = 'REPORTED' AND reported_at < $1 ORDER BY reported_at ASC`
	return r.listDamages(ctx, query, cutoff)
}

func (r *damageRepository) ListAssessedRepairableBefore(ctx context.Context, cutoff time.Time) ([]domain.Damage, error) {
	query := `SELECT ` + damageColumns + ` FROM damages WHERE status = 'ASSESSED' AND is_repairable = true AND assessed_at < $1 ORDER BY assessed_at ASC`
	return r.listDamages(ctx, query, cutoff)
}

func (r *damageRepository) ListInRepairSince(ctx context.Context, cutoff time.Time) ([]domain.Damage, error) {
	query := `SELECT ` + damageColumns + ` FROM damages WHERE status = 'REPAIR_IN_PROGRESS' AND repair_started_at < $1 ORDER BY repair_started_at ASC`
	return r.listDamages(ctx, query, cutoff)
}

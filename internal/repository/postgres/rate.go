package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/repository"
)

type rateRepository struct {
	db DBTX
}

func NewRateRepository(db DBTX) repository.RateRepository {
	return &rateRepository{db: db}
}

const rateColumns = `id, type, daily_amount, active, effective_from, effective_to, created_on`

func (r *rateRepository) Create(ctx context.Context, rate *domain.Rate) error {
	query := `INSERT INTO rates (type, daily_amount, active, effective_from, effective_to, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	rate.CreatedOn = time.Now()
	return r.db.QueryRowContext(ctx, query, rate.Type, rate.DailyAmount, rate.Active, rate.EffectiveFrom, rate.EffectiveTo, rate.CreatedOn).Scan(&rate.ID)
}

func (r *rateRepository) GetEffective(ctx context.Context, rateType domain.RateType, date time.Time) (*domain.Rate, error) {
	query := `SELECT ` + rateColumns + ` FROM rates
	          WHERE type = $1 AND active = true AND effective_from <= $2 AND (effective_to IS NULL OR effective_to >= $2)
	          ORDER BY effective_from DESC LIMIT 1`
	rate := &domain.Rate{}
	err := r.db.QueryRowContext(ctx, query, rateType, date).Scan(&rate.ID, &rate.Type, &rate.DailyAmount, &rate.Active, &rate.EffectiveFrom, &rate.EffectiveTo, &rate.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("rate", rateType)
	}
	if err != nil {
		return nil, err
	}
	return rate, nil
}

func (r *rateRepository) CloseOpenWindow(ctx context.Context, rateType domain.RateType, endDate time.Time) error {
	query := `UPDATE rates SET effective_to = $1 WHERE type = $2 AND effective_to IS NULL`
	_, err := r.db.ExecContext(ctx, query, endDate, rateType)
	return err
}

func (r *rateRepository) ListByType(ctx context.Context, rateType domain.RateType) ([]domain.Rate, error) {
	query := `SELECT ` + rateColumns + ` FROM rates WHERE type = $1 ORDER BY effective_from DESC`
	rows, err := r.db.QueryContext(ctx, query, rateType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []domain.Rate
	for rows.Next() {
		var rate domain.Rate
		if err := rows.Scan(&rate.ID, &rate.Type, &rate.DailyAmount, &rate.Active, &rate.EffectiveFrom, &rate.EffectiveTo, &rate.CreatedOn); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

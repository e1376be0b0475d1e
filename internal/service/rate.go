package service

import (
	"context"
	"time"

	"tooldepot-backend/internal/config"
	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/logger"
	"tooldepot-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type rateService struct {
	store repository.Store
	cfg   config.RateConfig
}

func NewRateService(store repository.Store, cfg config.RateConfig) RateService {
	return &rateService{store: store, cfg: cfg}
}

// Resolve returns the daily amount of the newest active rate window of the
// given type containing date. When no window covers the date the configured
// fallback policy decides: strict mode surfaces a validation error, default
// mode returns the configured amount with a warning. There is no implicit
// constant baked in.
func (s *rateService) Resolve(ctx context.Context, rateType domain.RateType, date time.Time) (decimal.Decimal, error) {
	rate, err := s.store.Rates().GetEffective(ctx, rateType, date)
	if err == nil {
		return rate.DailyAmount, nil
	}
	if !domain.IsNotFound(err) {
		return decimal.Zero, err
	}

	if s.cfg.FallbackMode == config.RateFallbackDefault {
		amount := s.configuredDefault(rateType)
		logger.Warn("No active rate window, using configured default",
			"rate_type", rateType, "date", date.Format("2006-01-02"), "amount", amount)
		return amount, nil
	}
	return decimal.Zero, domain.NewValidationError("rate_missing",
		"no active rate configured for type", string(rateType))
}

func (s *rateService) configuredDefault(rateType domain.RateType) decimal.Decimal {
	switch rateType {
	case domain.RateTypeRental:
		return s.cfg.DefaultRentalDaily
	case domain.RateTypeLateFee:
		return s.cfg.DefaultLateFeeDaily
	case domain.RateTypeRepair:
		return s.cfg.DefaultRepairRatePct
	default:
		return decimal.Zero
	}
}

// CalculateRepairCost applies the current repair rate percentage to a
// tool's replacement value.
func (s *rateService) CalculateRepairCost(ctx context.Context, replacementValue decimal.Decimal) (decimal.Decimal, error) {
	pct, err := s.Resolve(ctx, domain.RateTypeRepair, time.Now())
	if err != nil {
		return decimal.Zero, err
	}
	return replacementValue.Mul(pct).Div(decimal.NewFromInt(100)), nil
}

// CreateRate inserts a new open-ended rate window after closing the
// current one. Superseded windows keep their history; nothing is
// overwritten.
func (s *rateService) CreateRate(ctx context.Context, rateType domain.RateType, dailyAmount decimal.Decimal, effectiveFrom time.Time) (*domain.Rate, error) {
	if dailyAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.NewValidationError("rate_amount", "rate amount must be positive", dailyAmount)
	}

	rate := &domain.Rate{
		Type:          rateType,
		DailyAmount:   dailyAmount,
		Active:        true,
		EffectiveFrom: effectiveFrom,
	}
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		if err := st.Rates().CloseOpenWindow(ctx, rateType, effectiveFrom.Add(-24*time.Hour)); err != nil {
			return err
		}
		return st.Rates().Create(ctx, rate)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Rate window created", "rate_type", rateType, "amount", dailyAmount,
		"effective_from", effectiveFrom.Format("2006-01-02"))
	return rate, nil
}

func (s *rateService) History(ctx context.Context, rateType domain.RateType) ([]domain.Rate, error) {
	return s.store.Rates().ListByType(ctx, rateType)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RateType string

const (
	RateTypeRental  RateType = "RENTAL_RATE"
	RateTypeLateFee RateType = "LATE_FEE_RATE"
	RateTypeRepair  RateType = "REPAIR_RATE"
)

// Rate is one window of a versioned price time series. A new rate
// supersedes the open window by closing its EffectiveTo; history is never
// overwritten. For REPAIR_RATE the daily amount is a percentage of the
// tool's replacement value, not a currency amount.
type Rate struct {
	ID            int32           `json:"id"`
	Type          RateType        `json:"type"`
	DailyAmount   decimal.Decimal `json:"daily_amount"`
	Active        bool            `json:"active"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	CreatedOn     time.Time       `json:"created_on"`
}

// Covers reports whether the rate window contains the given date.
func (r *Rate) Covers(date time.Time) bool {
	if date.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveTo == nil || !date.After(*r.EffectiveTo)
}

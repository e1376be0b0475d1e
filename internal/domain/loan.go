package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "ACTIVE"
	LoanStatusReturned LoanStatus = "RETURNED"
	LoanStatusOverdue  LoanStatus = "OVERDUE"
	LoanStatusDamaged  LoanStatus = "DAMAGED"
)

// Loan records a client borrowing a quantity of one tool type.
// DailyRate is snapshotted from the rate table at creation time; cost and
// fine calculations always use the snapshot, never a re-resolved rate.
type Loan struct {
	ID               int32           `json:"id"`
	ClientID         int32           `json:"client_id"`
	ToolID           int32           `json:"tool_id"`
	Quantity         int32           `json:"quantity"`
	LoanDate         time.Time       `json:"loan_date"`
	AgreedReturnDate time.Time       `json:"agreed_return_date"`
	ActualReturnDate *time.Time      `json:"actual_return_date,omitempty"`
	DailyRate        decimal.Decimal `json:"daily_rate"`
	Status           LoanStatus      `json:"status"`
	CreatedBy        int32           `json:"created_by"`
	Notes            string          `json:"notes"`
	CreatedOn        time.Time       `json:"created_on"`
	UpdatedOn        time.Time       `json:"updated_on"`
}

// Terminal reports whether the loan has reached a final state. OVERDUE is
// terminal here: it is only assigned when a late loan is actually returned;
// still-out late loans stay ACTIVE and are detected by date comparison.
func (l *Loan) Terminal() bool {
	return l.Status != LoanStatusActive
}

// DaysLate returns the whole-day lateness of a return against the agreed
// date, zero when on time or early.
func (l *Loan) DaysLate(returnedAt time.Time) int32 {
	days := int32(returnedAt.Sub(l.AgreedReturnDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

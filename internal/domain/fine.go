package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type FineType string

const (
	FineTypeLateReturn      FineType = "LATE_RETURN"
	FineTypeDamageRepair    FineType = "DAMAGE_REPAIR"
	FineTypeToolReplacement FineType = "TOOL_REPLACEMENT"
)

// Fine is a monetary sanction against a client, always tied to a loan.
// Once a fine reaches a paid state it is never hard-deleted; cancellation
// zeroes the amount and marks it paid with an audit note instead.
type Fine struct {
	ID          int32           `json:"id"`
	Reference   string          `json:"reference"`
	ClientID    int32           `json:"client_id"`
	LoanID      int32           `json:"loan_id"`
	Type        FineType        `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Paid        bool            `json:"paid"`
	DueDate     time.Time       `json:"due_date"`
	PaidDate    *time.Time      `json:"paid_date,omitempty"`
	CreatedBy   int32           `json:"created_by"`
	CreatedOn   time.Time       `json:"created_on"`
}

// Overdue reports whether the fine is unpaid past its due date.
func (f *Fine) Overdue(now time.Time) bool {
	return !f.Paid && now.After(f.DueDate)
}

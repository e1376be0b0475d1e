package domain

import "time"

type MovementType string

const (
	MovementTypeInitialStock MovementType = "INITIAL_STOCK"
	MovementTypeLoan         MovementType = "LOAN"
	MovementTypeReturn       MovementType = "RETURN"
	MovementTypeRepair       MovementType = "REPAIR"
	MovementTypeDecommission MovementType = "DECOMMISSION"
	MovementTypeRestock      MovementType = "RESTOCK"
)

// KardexMovement is one entry of the per-tool append-only stock ledger.
// Entries are never updated or deleted once written; every entry carries
// the stock snapshot before and after the event it records.
type KardexMovement struct {
	ID            int32        `json:"id"`
	ToolID        int32        `json:"tool_id"`
	InstanceID    *int32       `json:"instance_id,omitempty"`
	Type          MovementType `json:"type"`
	Quantity      int32        `json:"quantity"`
	StockBefore   int32        `json:"stock_before"`
	StockAfter    int32        `json:"stock_after"`
	Description   string       `json:"description"`
	RelatedLoanID *int32       `json:"related_loan_id,omitempty"`
	CreatedBy     int32        `json:"created_by"`
	CreatedOn     time.Time    `json:"created_on"`
}

// MovementDelta returns the signed stock change a movement applies:
// +quantity for INITIAL_STOCK, RETURN and RESTOCK, -quantity for LOAN and
// DECOMMISSION, zero for REPAIR.
func MovementDelta(t MovementType, quantity int32) int32 {
	switch t {
	case MovementTypeInitialStock, MovementTypeReturn, MovementTypeRestock:
		return quantity
	case MovementTypeLoan, MovementTypeDecommission:
		return -quantity
	case MovementTypeRepair:
		return 0
	default:
		return 0
	}
}

// Consistent reports whether the movement's own snapshot obeys the delta
// rule stockAfter = stockBefore + delta(type, quantity).
func (m *KardexMovement) Consistent() bool {
	return m.StockAfter == m.StockBefore+MovementDelta(m.Type, m.Quantity)
}

// AuditReport combines the aggregate stock, the instance-pool breakdown
// and the most recent ledger snapshot for one tool. StockConsistent is
// reported as data and never auto-corrected.
type AuditReport struct {
	ToolID          int32           `json:"tool_id"`
	ToolName        string          `json:"tool_name"`
	AggregateStock  int32           `json:"aggregate_stock"`
	Instances       InstanceStats   `json:"instances"`
	LastMovement    *KardexMovement `json:"last_movement,omitempty"`
	StockConsistent bool            `json:"stock_consistent"`
	GeneratedOn     time.Time       `json:"generated_on"`
}

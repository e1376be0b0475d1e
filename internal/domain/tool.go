package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ToolStatus string

const (
	ToolStatusAvailable      ToolStatus = "AVAILABLE"
	ToolStatusLoaned         ToolStatus = "LOANED"
	ToolStatusUnderRepair    ToolStatus = "UNDER_REPAIR"
	ToolStatusDecommissioned ToolStatus = "DECOMMISSIONED"
)

// Tool is the aggregate for one tool type. CurrentStock counts the units
// physically in the depot (instances AVAILABLE or UNDER_REPAIR); loaned
// units leave the stock and come back on return, decommissioned units
// leave for good. It is mutated only through kardex appends so the ledger
// and the aggregate cannot drift inside a transaction.
type Tool struct {
	ID               int32           `json:"id"`
	Name             string          `json:"name"`
	CategoryID       int32           `json:"category_id"`
	InitialStock     int32           `json:"initial_stock"`
	CurrentStock     int32           `json:"current_stock"`
	ReplacementValue decimal.Decimal `json:"replacement_value"`
	Status           ToolStatus      `json:"status"`
	CreatedOn        time.Time       `json:"created_on"`
}

type InstanceStatus string

const (
	InstanceStatusAvailable      InstanceStatus = "AVAILABLE"
	InstanceStatusLoaned         InstanceStatus = "LOANED"
	InstanceStatusUnderRepair    InstanceStatus = "UNDER_REPAIR"
	InstanceStatusDecommissioned InstanceStatus = "DECOMMISSIONED"
)

// ToolInstance is one physical, individually trackable unit of a tool.
// Decommissioning is logical and irreversible.
type ToolInstance struct {
	ID        int32          `json:"id"`
	ToolID    int32          `json:"tool_id"`
	Status    InstanceStatus `json:"status"`
	CreatedOn time.Time      `json:"created_on"`
}

// InstanceStats is the per-status breakdown of a tool's instances.
type InstanceStats struct {
	Available      int32 `json:"available"`
	Loaned         int32 `json:"loaned"`
	UnderRepair    int32 `json:"under_repair"`
	Decommissioned int32 `json:"decommissioned"`
}

// Total counts all instances regardless of status.
func (s InstanceStats) Total() int32 {
	return s.Available + s.Loaned + s.UnderRepair + s.Decommissioned
}

// NonDecommissioned counts the instances still owned by the business,
// loaned ones included.
func (s InstanceStats) NonDecommissioned() int32 {
	return s.Available + s.Loaned + s.UnderRepair
}

// OnHand is the in-depot instance count that CurrentStock must equal at
// every mutation site.
func (s InstanceStats) OnHand() int32 {
	return s.Available + s.UnderRepair
}

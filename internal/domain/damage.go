package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DamageType string

const (
	DamageTypeMinor       DamageType = "MINOR"
	DamageTypeMajor       DamageType = "MAJOR"
	DamageTypeIrreparable DamageType = "IRREPARABLE"
)

type DamageStatus string

const (
	DamageStatusReported         DamageStatus = "REPORTED"
	DamageStatusAssessed         DamageStatus = "ASSESSED"
	DamageStatusRepairInProgress DamageStatus = "REPAIR_IN_PROGRESS"
	DamageStatusRepaired         DamageStatus = "REPAIRED"
	DamageStatusIrreparable      DamageStatus = "IRREPARABLE"
)

// Damage tracks one damaged instance from report through assessment and
// repair, or to irreparable decommission. Lifecycle transitions are driven
// exclusively by the damage service:
//
//	REPORTED -> ASSESSED -> REPAIR_IN_PROGRESS -> REPAIRED
//	REPORTED -> IRREPARABLE (terminal)
type Damage struct {
	ID                int32           `json:"id"`
	Reference         string          `json:"reference"`
	LoanID            int32           `json:"loan_id"`
	InstanceID        int32           `json:"instance_id"`
	Type              DamageType      `json:"type"`
	Description       string          `json:"description"`
	RepairCost        decimal.Decimal `json:"repair_cost"`
	IsRepairable      bool            `json:"is_repairable"`
	Status            DamageStatus    `json:"status"`
	ReportedBy        int32           `json:"reported_by"`
	AssessedBy        *int32          `json:"assessed_by,omitempty"`
	ReportedAt        time.Time       `json:"reported_at"`
	AssessedAt        *time.Time      `json:"assessed_at,omitempty"`
	RepairStartedAt   *time.Time      `json:"repair_started_at,omitempty"`
	RepairCompletedAt *time.Time      `json:"repair_completed_at,omitempty"`
}

// Terminal reports whether the damage can no longer transition.
func (d *Damage) Terminal() bool {
	return d.Status == DamageStatusRepaired || d.Status == DamageStatusIrreparable
}

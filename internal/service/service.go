package service

import (
	"context"
	"time"

	"tooldepot-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// InstanceService owns the pool of individually trackable tool units and
// validates every status transition.
type InstanceService interface {
	RegisterInstances(ctx context.Context, toolID, count int32) ([]domain.ToolInstance, error)
	AvailableCount(ctx context.Context, toolID int32) (int32, error)
	Reserve(ctx context.Context, toolID, quantity int32) ([]domain.ToolInstance, error)
	Release(ctx context.Context, instanceID int32, damaged bool) (*domain.ToolInstance, error)
	Decommission(ctx context.Context, instanceIDs []int32, decommissionedBy int32) error
	Repair(ctx context.Context, instanceID int32) (*domain.ToolInstance, error)
	Delete(ctx context.Context, instanceID, deletedBy int32) error
	Stats(ctx context.Context, toolID int32) (domain.InstanceStats, error)
}

// AppendMovementParams describes one stock-affecting event to record.
type AppendMovementParams struct {
	ToolID        int32
	InstanceID    *int32
	Type          domain.MovementType
	Quantity      int32
	Description   string
	RelatedLoanID *int32
	CreatedBy     int32
}

// KardexService is the append-only stock ledger per tool.
type KardexService interface {
	RegisterInitialStock(ctx context.Context, toolID, quantity, createdBy int32) (*domain.KardexMovement, error)
	Restock(ctx context.Context, toolID, quantity, createdBy int32) (*domain.KardexMovement, error)
	Append(ctx context.Context, params AppendMovementParams) (*domain.KardexMovement, error)
	HistoryByTool(ctx context.Context, toolID int32) ([]domain.KardexMovement, error)
	HistoryByDateRange(ctx context.Context, toolID int32, from, to time.Time) ([]domain.KardexMovement, error)
	AuditReport(ctx context.Context, toolID int32) (*domain.AuditReport, error)
	ReplayStock(ctx context.Context, toolID int32) (int32, error)
}

// RateService resolves effective rates and manages the versioned rate
// time series.
type RateService interface {
	Resolve(ctx context.Context, rateType domain.RateType, date time.Time) (decimal.Decimal, error)
	CalculateRepairCost(ctx context.Context, replacementValue decimal.Decimal) (decimal.Decimal, error)
	CreateRate(ctx context.Context, rateType domain.RateType, dailyAmount decimal.Decimal, effectiveFrom time.Time) (*domain.Rate, error)
	History(ctx context.Context, rateType domain.RateType) ([]domain.Rate, error)
}

// CreateFineParams describes one fine to levy against a client.
type CreateFineParams struct {
	ClientID    int32
	LoanID      int32
	Type        domain.FineType
	Amount      decimal.Decimal
	Description string
	DueDate     time.Time // zero value defaults to now + configured due days
	CreatedBy   int32
}

// FineService creates, pays and cancels fines, and maintains the derived
// client status after every mutation.
type FineService interface {
	Create(ctx context.Context, params CreateFineParams) (*domain.Fine, error)
	Pay(ctx context.Context, fineID int32) (*domain.Fine, error)
	Cancel(ctx context.Context, fineID int32, reason string, cancelledBy int32) (*domain.Fine, error)
	UnpaidByClient(ctx context.Context, clientID int32) ([]domain.Fine, error)
	OverdueFines(ctx context.Context) ([]domain.Fine, error)
	TotalUnpaid(ctx context.Context, clientID int32) (decimal.Decimal, error)
	RecomputeClientStatus(ctx context.Context, clientID int32) (domain.ClientStatus, error)
}

// AssessDamageParams carries the assessor's verdict on a reported damage.
type AssessDamageParams struct {
	DamageID     int32
	Type         domain.DamageType
	Description  string
	RepairCost   decimal.Decimal
	IsRepairable bool
	AssessedBy   int32
}

// DamageService drives a damage report through assessment and repair, or
// to irreparable decommission.
type DamageService interface {
	Report(ctx context.Context, loanID, instanceID int32, description string, reportedBy int32) (*domain.Damage, error)
	Assess(ctx context.Context, params AssessDamageParams) (*domain.Damage, error)
	StartRepair(ctx context.Context, damageID int32) (*domain.Damage, error)
	CompleteRepair(ctx context.Context, damageID, completedBy int32) (*domain.Damage, error)
	PendingAssessment(ctx context.Context) ([]domain.Damage, error)
	UnderRepair(ctx context.Context) ([]domain.Damage, error)
	Irreparable(ctx context.Context) ([]domain.Damage, error)
	Urgent(ctx context.Context) ([]domain.Damage, error)
	Stagnant(ctx context.Context) ([]domain.Damage, error)
	OverdueRepairs(ctx context.Context) ([]domain.Damage, error)
}

// CreateLoanParams describes one loan request.
type CreateLoanParams struct {
	ClientID         int32
	ToolID           int32
	Quantity         int32
	AgreedReturnDate time.Time
	Notes            string
	CreatedBy        int32
}

// LoanService is the top-level loan workflow: eligibility validation,
// reservation, rate snapshot, ledger entry, and the return path with fines.
type LoanService interface {
	CreateLoan(ctx context.Context, params CreateLoanParams) (*domain.Loan, error)
	ReturnTool(ctx context.Context, loanID int32, damaged bool, notes string, returnedBy int32) (*domain.Loan, error)
	GetLoan(ctx context.Context, loanID int32) (*domain.Loan, error)
	ListByClient(ctx context.Context, clientID int32, status domain.LoanStatus) ([]domain.Loan, error)
	OverdueLoans(ctx context.Context) ([]domain.Loan, error)
}

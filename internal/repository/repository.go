package repository

import (
	"context"
	"time"

	"tooldepot-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type ClientRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Client, error)
	// GetByIDForUpdate locks the client row for the duration of the
	// surrounding transaction. Status recomputation is serialized per client
	// through this lock.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Client, error)
	UpdateStatus(ctx context.Context, id int32, status domain.ClientStatus) error
	ListRestricted(ctx context.Context) ([]domain.Client, error)
	ListWithActiveLoans(ctx context.Context) ([]int32, error)
}

type ToolRepository interface {
	Create(ctx context.Context, tool *domain.Tool) error
	GetByID(ctx context.Context, id int32) (*domain.Tool, error)
	// GetByIDForUpdate locks the tool row; instance reservation and stock
	// mutation for one tool serialize on this lock.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Tool, error)
	UpdateStock(ctx context.Context, id int32, currentStock int32) error
	UpdateStatus(ctx context.Context, id int32, status domain.ToolStatus) error
}

type InstanceRepository interface {
	CreateBatch(ctx context.Context, toolID int32, count int32) ([]domain.ToolInstance, error)
	GetByID(ctx context.Context, id int32) (*domain.ToolInstance, error)
	ListByTool(ctx context.Context, toolID int32) ([]domain.ToolInstance, error)
	// SelectByStatusForUpdate returns up to limit instances of the tool in
	// the given status, ordered by ascending id, locked for update.
	SelectByStatusForUpdate(ctx context.Context, toolID int32, status domain.InstanceStatus, limit int32) ([]domain.ToolInstance, error)
	UpdateStatus(ctx context.Context, id int32, status domain.InstanceStatus) error
	UpdateStatusBatch(ctx context.Context, ids []int32, status domain.InstanceStatus) error
	CountByStatus(ctx context.Context, toolID int32, status domain.InstanceStatus) (int32, error)
	Stats(ctx context.Context, toolID int32) (domain.InstanceStats, error)
	Delete(ctx context.Context, id int32) error
}

type KardexRepository interface {
	Create(ctx context.Context, movement *domain.KardexMovement) error
	ListByTool(ctx context.Context, toolID int32) ([]domain.KardexMovement, error)
	ListByToolChronological(ctx context.Context, toolID int32) ([]domain.KardexMovement, error)
	ListByDateRange(ctx context.Context, toolID int32, from, to time.Time) ([]domain.KardexMovement, error)
	GetLastByTool(ctx context.Context, toolID int32) (*domain.KardexMovement, error)
}

type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id int32) (*domain.Loan, error)
	Update(ctx context.Context, loan *domain.Loan) error
	ListByClient(ctx context.Context, clientID int32, status domain.LoanStatus) ([]domain.Loan, error)
	CountActiveByClient(ctx context.Context, clientID int32) (int32, error)
	HasActiveLoanForTool(ctx context.Context, clientID, toolID int32) (bool, error)
	HasOverdueActiveLoan(ctx context.Context, clientID int32, asOf time.Time) (bool, error)
	ListOverdueActive(ctx context.Context, asOf time.Time) ([]domain.Loan, error)
}

type FineRepository interface {
	Create(ctx context.Context, fine *domain.Fine) error
	GetByID(ctx context.Context, id int32) (*domain.Fine, error)
	Update(ctx context.Context, fine *domain.Fine) error
	ListUnpaidByClient(ctx context.Context, clientID int32) ([]domain.Fine, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Fine, error)
	TotalUnpaidAmount(ctx context.Context, clientID int32) (decimal.Decimal, error)
	HasUnpaid(ctx context.Context, clientID int32) (bool, error)
}

type DamageRepository interface {
	Create(ctx context.Context, damage *domain.Damage) error
	GetByID(ctx context.Context, id int32) (*domain.Damage, error)
	Update(ctx context.Context, damage *domain.Damage) error
	ListByStatus(ctx context.Context, status domain.DamageStatus) ([]domain.Damage, error)
	ListReportedBefore(ctx context.Context, cutoff time.Time) ([]domain.Damage, error)
	ListAssessedRepairableBefore(ctx context.Context, cutoff time.Time) ([]domain.Damage, error)
	ListInRepairSince(ctx context.Context, cutoff time.Time) ([]domain.Damage, error)
}

type RateRepository interface {
	Create(ctx context.Context, rate *domain.Rate) error
	// GetEffective returns the newest active rate window of the given type
	// containing date, or a NotFoundError when none covers it.
	GetEffective(ctx context.Context, rateType domain.RateType, date time.Time) (*domain.Rate, error)
	// CloseOpenWindow stamps effective_to on the type's open-ended window.
	// History rows are never overwritten.
	CloseOpenWindow(ctx context.Context, rateType domain.RateType, endDate time.Time) error
	ListByType(ctx context.Context, rateType domain.RateType) ([]domain.Rate, error)
}

// Store bundles every repository together with transactional composition.
// ExecTx runs fn against a Store whose repositories share one database
// transaction; fn returning an error rolls everything back.
type Store interface {
	Clients() ClientRepository
	Tools() ToolRepository
	Instances() InstanceRepository
	Kardex() KardexRepository
	Loans() LoanRepository
	Fines() FineRepository
	Damages() DamageRepository
	Rates() RateRepository
	ExecTx(ctx context.Context, fn func(Store) error) error
}

package service

import (
	"context"
	"time"

	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockStore routes every repository to a mock and runs ExecTx callbacks
// inline, so service transactions execute against the same expectations.
type MockStore struct {
	ClientRepo   *MockClientRepo
	ToolRepo     *MockToolRepo
	InstanceRepo *MockInstanceRepo
	KardexRepo   *MockKardexRepo
	LoanRepo     *MockLoanRepo
	FineRepo     *MockFineRepo
	DamageRepo   *MockDamageRepo
	RateRepo     *MockRateRepo
}

func newMockStore() *MockStore {
	return &MockStore{
		ClientRepo:   new(MockClientRepo),
		ToolRepo:     new(MockToolRepo),
		InstanceRepo: new(MockInstanceRepo),
		KardexRepo:   new(MockKardexRepo),
		LoanRepo:     new(MockLoanRepo),
		FineRepo:     new(MockFineRepo),
		DamageRepo:   new(MockDamageRepo),
		RateRepo:     new(MockRateRepo),
	}
}

func (m *MockStore) Clients() repository.ClientRepository     { return m.ClientRepo }
func (m *MockStore) Tools() repository.ToolRepository         { return m.ToolRepo }
func (m *MockStore) Instances() repository.InstanceRepository { return m.InstanceRepo }
func (m *MockStore) Kardex() repository.KardexRepository      { return m.KardexRepo }
func (m *MockStore) Loans() repository.LoanRepository         { return m.LoanRepo }
func (m *MockStore) Fines() repository.FineRepository         { return m.FineRepo }
func (m *MockStore) Damages() repository.DamageRepository     { return m.DamageRepo }
func (m *MockStore) Rates() repository.RateRepository         { return m.RateRepo }

func (m *MockStore) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(m)
}

// MockClientRepo
type MockClientRepo struct {
	mock.Mock
}

func (m *MockClientRepo) GetByID(ctx context.Context, id int32) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockClientRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockClientRepo) UpdateStatus(ctx context.Context, id int32, status domain.ClientStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockClientRepo) ListRestricted(ctx context.Context) ([]domain.Client, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Client), args.Error(1)
}
func (m *MockClientRepo) ListWithActiveLoans(ctx context.Context) ([]int32, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int32), args.Error(1)
}

// MockToolRepo
type MockToolRepo struct {
	mock.Mock
}

func (m *MockToolRepo) Create(ctx context.Context, tool *domain.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}
func (m *MockToolRepo) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tool), args.Error(1)
}
func (m *MockToolRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Tool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tool), args.Error(1)
}
func (m *MockToolRepo) UpdateStock(ctx context.Context, id int32, currentStock int32) error {
	args := m.Called(ctx, id, currentStock)
	return args.Error(0)
}
func (m *MockToolRepo) UpdateStatus(ctx context.Context, id int32, status domain.ToolStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockInstanceRepo
type MockInstanceRepo struct {
	mock.Mock
}

func (m *MockInstanceRepo) CreateBatch(ctx context.Context, toolID int32, count int32) ([]domain.ToolInstance, error) {
	args := m.Called(ctx, toolID, count)
	return args.Get(0).([]domain.ToolInstance), args.Error(1)
}
func (m *MockInstanceRepo) GetByID(ctx context.Context, id int32) (*domain.ToolInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ToolInstance), args.Error(1)
}
func (m *MockInstanceRepo) ListByTool(ctx context.Context, toolID int32) ([]domain.ToolInstance, error) {
	args := m.Called(ctx, toolID)
	return args.Get(0).([]domain.ToolInstance), args.Error(1)
}
func (m *MockInstanceRepo) SelectByStatusForUpdate(ctx context.Context, toolID int32, status domain.InstanceStatus, limit int32) ([]domain.ToolInstance, error) {
	args := m.Called(ctx, toolID, status, limit)
	return args.Get(0).([]domain.ToolInstance), args.Error(1)
}
func (m *MockInstanceRepo) UpdateStatus(ctx context.Context, id int32, status domain.InstanceStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockInstanceRepo) UpdateStatusBatch(ctx context.Context, ids []int32, status domain.InstanceStatus) error {
	args := m.Called(ctx, ids, status)
	return args.Error(0)
}
func (m *MockInstanceRepo) CountByStatus(ctx context.Context, toolID int32, status domain.InstanceStatus) (int32, error) {
	args := m.Called(ctx, toolID, status)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockInstanceRepo) Stats(ctx context.Context, toolID int32) (domain.InstanceStats, error) {
	args := m.Called(ctx, toolID)
	return args.Get(0).(domain.InstanceStats), args.Error(1)
}
func (m *MockInstanceRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockKardexRepo
type MockKardexRepo struct {
	mock.Mock
}

func (m *MockKardexRepo) Create(ctx context.Context, movement *domain.KardexMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}
func (m *MockKardexRepo) ListByTool(ctx context.Context, toolID int32) ([]domain.KardexMovement, error) {
	args := m.Called(ctx, toolID)
	return args.Get(0).([]domain.KardexMovement), args.Error(1)
}
func (m *MockKardexRepo) ListByToolChronological(ctx context.Context, toolID int32) ([]domain.KardexMovement, error) {
	args := m.Called(ctx, toolID)
	return args.Get(0).([]domain.KardexMovement), args.Error(1)
}
func (m *MockKardexRepo) ListByDateRange(ctx context.Context, toolID int32, from, to time.Time) ([]domain.KardexMovement, error) {
	args := m.Called(ctx, toolID, from, to)
	return args.Get(0).([]domain.KardexMovement), args.Error(1)
}
func (m *MockKardexRepo) GetLastByTool(ctx context.Context, toolID int32) (*domain.KardexMovement, error) {
	args := m.Called(ctx, toolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KardexMovement), args.Error(1)
}

// MockLoanRepo
type MockLoanRepo struct {
	mock.Mock
}

func (m *MockLoanRepo) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}
func (m *MockLoanRepo) GetByID(ctx context.Context, id int32) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) Update(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}
func (m *MockLoanRepo) ListByClient(ctx context.Context, clientID int32, status domain.LoanStatus) ([]domain.Loan, error) {
	args := m.Called(ctx, clientID, status)
	return args.Get(0).([]domain.Loan), args.Error(1)
}
func (m *MockLoanRepo) CountActiveByClient(ctx context.Context, clientID int32) (int32, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockLoanRepo) HasActiveLoanForTool(ctx context.Context, clientID, toolID int32) (bool, error) {
	args := m.Called(ctx, clientID, toolID)
	return args.Bool(0), args.Error(1)
}
func (m *MockLoanRepo) HasOverdueActiveLoan(ctx context.Context, clientID int32, asOf time.Time) (bool, error) {
	args := m.Called(ctx, clientID, asOf)
	return args.Bool(0), args.Error(1)
}
func (m *MockLoanRepo) ListOverdueActive(ctx context.Context, asOf time.Time) ([]domain.Loan, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.Loan), args.Error(1)
}

// MockFineRepo
type MockFineRepo struct {
	mock.Mock
}

func (m *MockFineRepo) Create(ctx context.Context, fine *domain.Fine) error {
	args := m.Called(ctx, fine)
	return args.Error(0)
}
func (m *MockFineRepo) GetByID(ctx context.Context, id int32) (*domain.Fine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Fine), args.Error(1)
}
func (m *MockFineRepo) Update(ctx context.Context, fine *domain.Fine) error {
	args := m.Called(ctx, fine)
	return args.Error(0)
}
func (m *MockFineRepo) ListUnpaidByClient(ctx context.Context, clientID int32) ([]domain.Fine, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]domain.Fine), args.Error(1)
}
func (m *MockFineRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Fine, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.Fine), args.Error(1)
}
func (m *MockFineRepo) TotalUnpaidAmount(ctx context.Context, clientID int32) (decimal.Decimal, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockFineRepo) HasUnpaid(ctx context.Context, clientID int32) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1)
}

// MockDamageRepo
type MockDamageRepo struct {
	mock.Mock
}

func (m *MockDamageRepo) Create(ctx context.Context, damage *domain.Damage) error {
	args := m.Called(ctx, damage)
	return args.Error(0)
}
func (m *MockDamageRepo) GetByID(ctx context.Context, id int32) (*domain.Damage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Damage), args.Error(1)
}
func (m *MockDamageRepo) Update(ctx context.Context, damage *domain.Damage) error {
	args := m.Called(ctx, damage)
	return args.Error(0)
}
func (m *MockDamageRepo) ListByStatus(ctx context.Context, status domain.DamageStatus) ([]domain.Damage, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Damage), args.Error(1)
}
func (m *MockDamageRepo) ListReportedBefore(ctx context.Context, cutoff time.Time) ([]domain.Damage, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Damage), args.Error(1)
}
func (m *MockDamageRepo) ListAssessedRepairableBefore(ctx context.Context, cutoff time.Time) ([]domain.Damage, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Damage), args.Error(1)
}
func (m *MockDamageRepo) ListInRepairSince(ctx context.Context, cutoff time.Time) ([]domain.Damage, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Damage), args.Error(1)
}

// MockRateRepo
type MockRateRepo struct {
	mock.Mock
}

func (m *MockRateRepo) Create(ctx context.Context, rate *domain.Rate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}
func (m *MockRateRepo) GetEffective(ctx context.Context, rateType domain.RateType, date time.Time) (*domain.Rate, error) {
	args := m.Called(ctx, rateType, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rate), args.Error(1)
}
func (m *MockRateRepo) CloseOpenWindow(ctx context.Context, rateType domain.RateType, endDate time.Time) error {
	args := m.Called(ctx, rateType, endDate)
	return args.Error(0)
}
func (m *MockRateRepo) ListByType(ctx context.Context, rateType domain.RateType) ([]domain.Rate, error) {
	args := m.Called(ctx, rateType)
	return args.Get(0).([]domain.Rate), args.Error(1)
}

// MockRateService
type MockRateService struct {
	mock.Mock
}

func (m *MockRateService) Resolve(ctx context.Context, rateType domain.RateType, date time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, rateType, date)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockRateService) CalculateRepairCost(ctx context.Context, replacementValue decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, replacementValue)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockRateService) CreateRate(ctx context.Context, rateType domain.RateType, dailyAmount decimal.Decimal, effectiveFrom time.Time) (*domain.Rate, error) {
	args := m.Called(ctx, rateType, dailyAmount, effectiveFrom)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rate), args.Error(1)
}
func (m *MockRateService) History(ctx context.Context, rateType domain.RateType) ([]domain.Rate, error) {
	args := m.Called(ctx, rateType)
	return args.Get(0).([]domain.Rate), args.Error(1)
}

package service

import (
	"context"
	"testing"
	"time"

	"tooldepot-backend/internal/config"
	"tooldepot-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func damageTestConfig() config.DamageConfig {
	return config.DamageConfig{UrgentAfterDays: 3, StagnantAfterDays: 7, RepairDueDays: 14}
}

func TestDamageService_Report(t *testing.T) {
	ctx := context.Background()
	loanID := int32(7)
	instanceID := int32(11)
	toolID := int32(2)

	t.Run("Success", func(t *testing.T) {
		store := newMockStore()
		svc := NewDamageService(store, loanTestConfig(), damageTestConfig())

		store.LoanRepo.On("GetByID", ctx, loanID).Return(&domain.Loan{ID: loanID, ClientID: 1, ToolID: toolID}, nil)
		store.InstanceRepo.On("GetByID", ctx, instanceID).Return(&domain.ToolInstance{
			ID: instanceID, ToolID: toolID, Status: domain.InstanceStatusAvailable,
		}, nil)
		store.DamageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Damage")).Return(nil)
		store.InstanceRepo.On("UpdateStatus", ctx, instanceID, domain.InstanceStatusUnderRepair).Return(nil)

		damage, err := svc.Report(ctx, loanID, instanceID, "cracked housing", 99)
		assert.NoError(t, err)
		assert.Equal(t, domain.DamageStatusReported, damage.Status)
		assert.NotEmpty(t, damage.Reference)
		store.InstanceRepo.AssertCalled(t, "UpdateStatus", ctx, instanceID, domain.InstanceStatusUnderRepair)
	})

	t.Run("Rejects Loaned Instance", func(t *testing.T) {
		store := newMockStore()
		svc := NewDamageService(store, loanTestConfig(), damageTestConfig())

		store.LoanRepo.On("GetByID", ctx, loanID).Return(&domain.Loan{ID: loanID, ClientID: 1, ToolID: toolID}, nil)
		store.InstanceRepo.On("GetByID", ctx, instanceID).Return(&domain.ToolInstance{
			ID: instanceID, ToolID: toolID, Status: domain.InstanceStatusLoaned,
		}, nil)

		damage, err := svc.Report(ctx, loanID, instanceID, "cracked housing", 99)
		assert.Nil(t, damage)
		assert.True(t, domain.IsStateError(err))
		store.DamageRepo.AssertNotCalled(t, "Create", ctx, mock.Anything)
		store.InstanceRepo.AssertNotCalled(t, "UpdateStatus", ctx, instanceID, domain.InstanceStatusUnderRepair)
	})

	t.Run("Rejects Instance From Another Tool", func(t *testing.T) {
		store := newMockStore()
		svc := NewDamageService(store, loanTestConfig(), damageTestConfig())

		store.LoanRepo.On("GetByID", ctx, loanID).Return(&domain.Loan{ID: loanID, ToolID: toolID}, nil)
		store.InstanceRepo.On("GetByID", ctx, instanceID).Return(&domain.ToolInstance{
			ID: instanceID, ToolID: toolID + 1, Status: domain.InstanceStatusLoaned,
		}, nil)

		damage, err := svc.Report(ctx, loanID, instanceID, "cracked housing", 99)
		assert.Nil(t, damage)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("Rejects Decommissioned Instance", func(t *testing.T) {
		store := newMockStore()
		svc := NewDamageService(store, loanTestConfig(), damageTestConfig())

		store.LoanRepo.On("GetByID", ctx, loanID).Return(&domain.Loan{ID: loanID, ToolID: toolID}, nil)
		store.InstanceRepo.On("GetByID", ctx, instanceID).Return(&domain.ToolInstance{
			ID: instanceID, ToolID: toolID, Status: domain.InstanceStatusDecommissioned,
		}, nil)

		damage, err := svc.Report(ctx, loanID, instanceID, "cracked housing", 99)
		assert.Nil(t, damage)
		assert.True(t, domain.IsStateError(err))
	})
}

func TestDamageService_Assess(t *testing.T) {
	ctx := context.Background()
	damageID := int32(3)
	loanID := int32(7)
	instanceID := int32(11)
	toolID := int32(2)
	clientID := int32(1)

	reported := func() *domain.Damage {
		return &domain.Damage{
			ID: damageID, Reference: "ref-1", LoanID: loanID, InstanceID: instanceID,
			Status: domain.DamageStatusReported, ReportedBy: 99, ReportedAt: time.Now().AddDate(0, 0, -1),
		}
	}

	t.Run("Repairable Verdict Creates Repair Fine", func(t *testing.T) {
		store := newMockStore()
		svc := NewDamageService(store, loanTestConfig(), damageTestConfig())

		store.DamageRepo.On("GetByID", ctx, damageID).Return(reported(), nil)
		store.LoanRepo.On("GetByID", ctx, loanID).Return(&domain.Loan{ID: loanID, ClientID: clientID, ToolID: toolID}, nil)
		store.DamageRepo.On("Update", ctx, mock.AnythingOfType("*domain.Damage")).Return(nil)

		var fine *domain.Fine
		store.FineRepo.On("Create", ctx, mock.AnythingOfType("*domain.Fine")).
			Run(func(args mock.Arguments) {
				fine = args.Get(1).(*domain.Fine)
			}).Return(nil)
		store.ClientRepo.On("GetByIDForUpdate", ctx, clientID).Return(
			&domain.Client{ID: clientID, Status: domain.ClientStatusActive}, nil)
		store.FineRepo.On("HasUnpaid", ctx, clientID).Return(true, nil)
		store.LoanRepo.On("HasOverdueActiveLoan", ctx, clientID, mock.AnythingOfType("time.Time")).Return(false, nil)
		store.ClientRepo.On("UpdateStatus", ctx, clientID, domain.ClientStatusRestricted).Return(nil)

		damage, err := svc.Assess(ctx, AssessDamageParams{
			DamageID:     damageID,
			Type:         domain.DamageTypeMajor,
			Description:  "gearbox stripped",
			RepairCost:   decimal.NewFromInt(8000),
			IsRepairable: true,
			AssessedBy:   42,
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.DamageStatusAssessed, damage.Status)
		assert.True(t, damage.IsRepairable)
		assert.NotNil(t, damage.AssessedAt)
		assert.Equal(t, domain.FineTypeDamageRepair, fine.Type)
		assert.True(t, fine.Amount.Equal(decimal.NewFromInt(8000)))
	})

	t.Run("Repairable Verdict Requires Positive Cost", func(t *testing.T) {
		store := newMockStore()
		svc := NewDamageService(store, loanTestConfig(), damageTestConfig())

		store.DamageRepo.On("GetByID", ctx, damageID).Return(reported(), nil)
		store.LoanRepo.On("GetByID", ctx, loanID).Return(&domain.Loan{ID: loanID, ClientID: clientID, ToolID: toolID}, nil)

		damage, err := svc.Assess(ctx, AssessDamageParams{
			DamageID: damageID, Type: domain.DamageTypeMinor,
			RepairCost: decimal.Zero, IsRepairable: true, AssessedBy: 42,
		})
		assert.Nil(t, damage)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("Irreparable Verdict Decommissions And Bills Replacement", func(t *testing.T) {
		store := newMockStore()
		svc := NewDamageService(store, loanTestConfig(), damageTestConfig())

		tool := &domain.Tool{
			ID: toolID, Name: "Drill", CurrentStock: 5,
			ReplacementValue: decimal.NewFromInt(50000),
			Status:           domain.ToolStatusAvailable,
		}
		store.DamageRepo.On("GetByID", ctx, damageID).Return(reported(), nil)
		store.LoanRepo.On("GetByID", ctx, loanID).Return(&domain.Loan{ID: loanID, ClientID: clientID, ToolID: toolID}, nil)
		store.ToolRepo.On("GetByIDForUpdate", ctx, toolID).Return(tool, nil)
		store.DamageRepo.On("Update", ctx, mock.AnythingOfType("*domain.Damage")).Return(nil)
		store.InstanceRepo.On("UpdateStatus", ctx, instanceID, domain.InstanceStatusDecommissioned).Return(nil)

		var movement *domain.KardexMovement
		store.KardexRepo.On("Create", ctx, mock.AnythingOfType("*domain.KardexMovement")).
			Run(func(args mock.Arguments) {
				movement = args.Get(1).(*domain.KardexMovement)
			}).Return(nil)
		store.ToolRepo.On("UpdateStock", ctx, toolID, int32(4)).Return(nil)

		var fine *domain.Fine
		store.FineRepo.On("Create", ctx, mock.AnythingOfType("*domain.Fine")).
			Run(func(args mock.Arguments) {
				fine = args.Get(1).(*domain.Fine)
			}).Return(nil)
		store.ClientRepo.On("GetByIDForUpdate", ctx, clientID).Return(
			&domain.Client{ID: clientID, Status: domain.ClientStatusActive}, nil)
		store.FineRepo.On("HasUnpaid", ctx, clientID).Return(true, nil)
		store.LoanRepo.On("HasOverdueActiveLoan", ctx, clientID, mock.AnythingOfType("time.Time")).Return(false, nil)
		store.ClientRepo.On("UpdateStatus", ctx, clientID, domain.ClientStatusRestricted).Return(nil)

		damage, err := svc.Assess(ctx, AssessDamageParams{
			DamageID: damageID, Type: domain.DamageTypeIrreparable,
			Description: "frame snapped", IsRepairable: false, AssessedBy: 42,
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.DamageStatusIrreparable, damage.Status)
		assert.False(t, damage.IsRepairable)

		// Exactly one DECOMMISSION movement dropping stock by one unit.
		assert.Equal(t, domain.MovementTypeDecommission, movement.Type)
		assert.Equal(t, int32(1), movement.Quantity)
		assert.Equal(t, int32(5), movement.StockBefore)
		assert.Equal(t, int32(4), movement.StockAfter)
		store.KardexRepo.AssertNumberOfCalls(t, "Create", 1)

		// The client owes the full replacement value.
		assert.Equal(t, domain.FineTypeToolReplacement, fine.Type)
		assert.True(t, fine.Amount.Equal(decimal.NewFromInt(50000)))
	})

	t.Run("Assessed Case Can Only Escalate", func(t *testing.T) {
		store := newMockStore()
		svc := NewDamageService(store, loanTestConfig(), damageTestConfig())

		assessed := reported()
		assessed.Status = domain.DamageStatusAssessed
		assessed.IsRepairable = true
		store.DamageRepo.On("GetByID", ctx, damageID).Return(assessed, nil)

		damage, err := svc.Assess(ctx, AssessDamageParams{
			DamageID: damageID, Type: domain.DamageTypeMinor,
			RepairCost: decimal.NewFromInt(100), IsRepairable: true, AssessedBy: 42,
		})
		assert.Nil(t, damage)
		assert.True(t, domain.IsStateError(err))
	})

	t.Run("Rejects Terminal Case", func(t *testing.T) {
		store := newMockStore()
		svc := NewDamageService(store, loanTestConfig(), damageTestConfig())

		repaired := reported()
		repaired.Status = domain.DamageStatusRepaired
		store.DamageRepo.On("GetByID", ctx, damageID).Return(repaired, nil)

		damage, err := svc.Assess(ctx, AssessDamageParams{
			DamageID: damageID, Type: domain.DamageTypeIrreparable, AssessedBy: 42,
		})
		assert.Nil(t, damage)
		assert.True(t, domain.IsStateError(err))
	})
}

func TestDamageService_RepairLifecycle(t *testing.T) {
	ctx := context.Background()
	damageID := int32(3)
	instanceID := int32(11)
	toolID := int32(2)

	t.Run("StartRepair Writes Zero-Delta Movement", func(t *testing.T) {
		store := newMockStore()
		svc := NewDamageService(store, loanTestConfig(), damageTestConfig())

		assessed := &domain.Damage{
			ID: damageID, Reference: "ref-1", InstanceID: instanceID,
			Status: domain.DamageStatusAssessed, IsRepairable: true, ReportedBy: 99,
		}
		tool := &domain.Tool{ID: toolID, CurrentStock: 5}
		store.DamageRepo.On("GetByID", ctx, damageID).Return(assessed, nil)
		store.InstanceRepo.On("GetByID", ctx, instanceID).Return(&domain.ToolInstance{
			ID: instanceID, ToolID: toolID, Status: domain.InstanceStatusUnderRepair,
		}, nil)
		store.ToolRepo.On("GetByIDForUpdate", ctx, toolID).Return(tool, nil)
		store.DamageRepo.On("Update", ctx, assessed).Return(nil)

		var movement *domain.KardexMovement
		store.KardexRepo.On("Create", ctx, mock.AnythingOfType("*domain.KardexMovement")).
			Run(func(args mock.Arguments) {
				movement = args.Get(1).(*domain.KardexMovement)
			}).Return(nil)

		damage, err := svc.StartRepair(ctx, damageID)
		assert.NoError(t, err)
		assert.Equal(t, domain.DamageStatusRepairInProgress, damage.Status)
		assert.NotNil(t, damage.RepairStartedAt)

		assert.Equal(t, domain.MovementTypeRepair, movement.Type)
		assert.Equal(t, movement.StockBefore, movement.StockAfter)
		store.ToolRepo.AssertNotCalled(t, "UpdateStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StartRepair Rejects Unassessed Damage", func(t *testing.T) {
		store := newMockStore()
		svc := NewDamageService(store, loanTestConfig(), damageTestConfig())

		store.DamageRepo.On("GetByID", ctx, damageID).Return(&domain.Damage{
			ID: damageID, Status: domain.DamageStatusReported,
		}, nil)

		damage, err := svc.StartRepair(ctx, damageID)
		assert.Nil(t, damage)
		assert.True(t, domain.IsStateError(err))
	})

	t.Run("CompleteRepair Returns Instance To Pool", func(t *testing.T) {
		store := newMockStore()
		svc := NewDamageService(store, loanTestConfig(), damageTestConfig())

		inRepair := &domain.Damage{
			ID: damageID, InstanceID: instanceID,
			Status: domain.DamageStatusRepairInProgress, IsRepairable: true,
		}
		store.DamageRepo.On("GetByID", ctx, damageID).Return(inRepair, nil)
		store.DamageRepo.On("Update", ctx, inRepair).Return(nil)
		store.InstanceRepo.On("UpdateStatus", ctx, instanceID, domain.InstanceStatusAvailable).Return(nil)

		damage, err := svc.CompleteRepair(ctx, damageID, 42)
		assert.NoError(t, err)
		assert.Equal(t, domain.DamageStatusRepaired, damage.Status)
		assert.NotNil(t, damage.RepairCompletedAt)
		assert.True(t, damage.Terminal())
	})

	t.Run("CompleteRepair Rejects Other States", func(t *testing.T) {
		store := newMockStore()
		svc := NewDamageService(store, loanTestConfig(), damageTestConfig())

		store.DamageRepo.On("GetByID", ctx, damageID).Return(&domain.Damage{
			ID: damageID, Status: domain.DamageStatusAssessed,
		}, nil)

		damage, err := svc.CompleteRepair(ctx, damageID, 42)
		assert.Nil(t, damage)
		assert.True(t, domain.IsStateError(err))
	})
}

func TestDamageService_Urgent(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := NewDamageService(store, loanTestConfig(), damageTestConfig())

	old := domain.Damage{ID: 1, Status: domain.DamageStatusReported}
	stale := domain.Damage{ID: 2, Status: domain.DamageStatusAssessed, IsRepairable: true}
	store.DamageRepo.On("ListReportedBefore", ctx, mock.AnythingOfType("time.Time")).
		Return([]domain.Damage{old}, nil)
	store.DamageRepo.On("ListAssessedRepairableBefore", ctx, mock.AnythingOfType("time.Time")).
		Return([]domain.Damage{stale}, nil)

	urgent, err := svc.Urgent(ctx)
	assert.NoError(t, err)
	assert.Len(t, urgent, 2)
}

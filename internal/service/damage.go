package service

import (
	"context"
	"fmt"
	"time"

	"tooldepot-backend/internal/config"
	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/logger"
	"tooldepot-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type damageService struct {
	store   repository.Store
	loanCfg config.LoanConfig
	cfg     config.DamageConfig
}

func NewDamageService(store repository.Store, loanCfg config.LoanConfig, cfg config.DamageConfig) DamageService {
	return &damageService{store: store, loanCfg: loanCfg, cfg: cfg}
}

// Report opens a damage case for an instance of a loan's tool and moves
// the instance to UNDER_REPAIR. Instances still out on loan are rejected:
// the return (with damaged=true) brings the unit back into the depot as
// UNDER_REPAIR with its RETURN movement, and the report follows.
func (s *damageService) Report(ctx context.Context, loanID, instanceID int32, description string, reportedBy int32) (*domain.Damage, error) {
	loan, err := s.store.Loans().GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	inst, err := s.store.Instances().GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if inst.ToolID != loan.ToolID {
		return nil, domain.NewValidationError("damage_instance",
			fmt.Sprintf("instance %d does not belong to tool %d of loan %d", instanceID, loan.ToolID, loanID), instanceID)
	}
	if inst.Status == domain.InstanceStatusDecommissioned {
		return nil, domain.NewStateError("tool instance", instanceID, string(inst.Status), "decommissioned instances cannot be reported damaged")
	}
	if inst.Status == domain.InstanceStatusLoaned {
		return nil, domain.NewStateError("tool instance", instanceID, string(inst.Status), "return the loan with the damaged flag before reporting damage")
	}

	damage := &domain.Damage{
		Reference:   uuid.NewString(),
		LoanID:      loanID,
		InstanceID:  instanceID,
		Type:        domain.DamageTypeMinor, // provisional until assessed
		Description: description,
		RepairCost:  decimal.Zero,
		Status:      domain.DamageStatusReported,
		ReportedBy:  reportedBy,
		ReportedAt:  time.Now(),
	}
	err = s.store.ExecTx(ctx, func(st repository.Store) error {
		if err := st.Damages().Create(ctx, damage); err != nil {
			return err
		}
		if inst.Status != domain.InstanceStatusUnderRepair {
			return st.Instances().UpdateStatus(ctx, instanceID, domain.InstanceStatusUnderRepair)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Damage reported", "damage_id", damage.ID, "reference", damage.Reference,
		"loan_id", loanID, "instance_id", instanceID)
	return damage, nil
}

// Assess records the verdict on a reported damage. A repairable verdict
// levies a DAMAGE_REPAIR fine for the repair cost and parks the case in
// ASSESSED. An irreparable verdict decommissions the instance, writes the
// DECOMMISSION movement, and bills the client the tool's full replacement
// value, all in one transaction. Re-assessing an ASSESSED case is allowed
// only to escalate it to irreparable.
func (s *damageService) Assess(ctx context.Context, params AssessDamageParams) (*domain.Damage, error) {
	var damage *domain.Damage
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		damage, err = st.Damages().GetByID(ctx, params.DamageID)
		if err != nil {
			return err
		}

		irreparable := !params.IsRepairable || params.Type == domain.DamageTypeIrreparable
		switch damage.Status {
		case domain.DamageStatusReported:
		case domain.DamageStatusAssessed:
			if !irreparable {
				return domain.NewStateError("damage", params.DamageID, string(damage.Status), "damage is already assessed")
			}
		default:
			return domain.NewStateError("damage", params.DamageID, string(damage.Status), "only reported damages can be assessed")
		}

		loan, err := st.Loans().GetByID(ctx, damage.LoanID)
		if err != nil {
			return err
		}

		now := time.Now()
		damage.Type = params.Type
		damage.Description = params.Description
		damage.RepairCost = params.RepairCost
		damage.IsRepairable = params.IsRepairable && !irreparable
		damage.AssessedBy = &params.AssessedBy
		damage.AssessedAt = &now

		if irreparable {
			damage.Type = domain.DamageTypeIrreparable
			damage.Status = domain.DamageStatusIrreparable
			return s.handleIrreparable(ctx, st, damage, loan, params.AssessedBy, now)
		}

		if params.RepairCost.LessThanOrEqual(decimal.Zero) {
			return domain.NewValidationError("repair_cost", "repair cost must be positive for a repairable damage", params.RepairCost)
		}
		damage.Status = domain.DamageStatusAssessed
		if err := st.Damages().Update(ctx, damage); err != nil {
			return err
		}

		fine := newFine(loan.ClientID, loan.ID, domain.FineTypeDamageRepair, params.RepairCost,
			fmt.Sprintf("Repair of instance %d (damage %s)", damage.InstanceID, damage.Reference),
			now.AddDate(0, 0, s.loanCfg.FineDueDays), params.AssessedBy)
		if err := st.Fines().Create(ctx, fine); err != nil {
			return err
		}
		_, err = recomputeClientStatus(ctx, st, loan.ClientID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Damage assessed", "damage_id", damage.ID, "status", damage.Status, "type", damage.Type)
	return damage, nil
}

// handleIrreparable runs the terminal branch: the unit leaves the pool for
// good and the client owes the tool's replacement value.
func (s *damageService) handleIrreparable(ctx context.Context, st repository.Store, damage *domain.Damage, loan *domain.Loan, assessedBy int32, now time.Time) error {
	tool, err := st.Tools().GetByIDForUpdate(ctx, loan.ToolID)
	if err != nil {
		return err
	}

	if err := st.Damages().Update(ctx, damage); err != nil {
		return err
	}
	if err := st.Instances().UpdateStatus(ctx, damage.InstanceID, domain.InstanceStatusDecommissioned); err != nil {
		return err
	}

	instanceID := damage.InstanceID
	loanID := loan.ID
	if _, err := appendMovement(ctx, st, tool, AppendMovementParams{
		ToolID:        tool.ID,
		InstanceID:    &instanceID,
		Type:          domain.MovementTypeDecommission,
		Quantity:      1,
		Description:   fmt.Sprintf("Instance %d decommissioned, irreparable damage %s", damage.InstanceID, damage.Reference),
		RelatedLoanID: &loanID,
		CreatedBy:     assessedBy,
	}); err != nil {
		return err
	}

	fine := newFine(loan.ClientID, loan.ID, domain.FineTypeToolReplacement, tool.ReplacementValue,
		fmt.Sprintf("Replacement of %s, instance %d destroyed (damage %s)", tool.Name, damage.InstanceID, damage.Reference),
		now.AddDate(0, 0, s.loanCfg.FineDueDays), assessedBy)
	if err := st.Fines().Create(ctx, fine); err != nil {
		return err
	}
	_, err = recomputeClientStatus(ctx, st, loan.ClientID, now)
	return err
}

// StartRepair moves an assessed repairable damage into repair and records
// the zero-delta REPAIR movement.
func (s *damageService) StartRepair(ctx context.Context, damageID int32) (*domain.Damage, error) {
	var damage *domain.Damage
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		damage, err = st.Damages().GetByID(ctx, damageID)
		if err != nil {
			return err
		}
		if damage.Status != domain.DamageStatusAssessed {
			return domain.NewStateError("damage", damageID, string(damage.Status), "repair can only start on an assessed damage")
		}
		if !damage.IsRepairable {
			return domain.NewStateError("damage", damageID, string(damage.Status), "damage was assessed as not repairable")
		}

		inst, err := st.Instances().GetByID(ctx, damage.InstanceID)
		if err != nil {
			return err
		}
		tool, err := st.Tools().GetByIDForUpdate(ctx, inst.ToolID)
		if err != nil {
			return err
		}

		now := time.Now()
		damage.Status = domain.DamageStatusRepairInProgress
		damage.RepairStartedAt = &now
		if err := st.Damages().Update(ctx, damage); err != nil {
			return err
		}

		instanceID := damage.InstanceID
		_, err = appendMovement(ctx, st, tool, AppendMovementParams{
			ToolID:      tool.ID,
			InstanceID:  &instanceID,
			Type:        domain.MovementTypeRepair,
			Quantity:    1,
			Description: fmt.Sprintf("Repair started on instance %d (damage %s)", damage.InstanceID, damage.Reference),
			CreatedBy:   damage.ReportedBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Repair started", "damage_id", damage.ID, "instance_id", damage.InstanceID)
	return damage, nil
}

// CompleteRepair closes the case and returns the instance to the pool.
func (s *damageService) CompleteRepair(ctx context.Context, damageID, completedBy int32) (*domain.Damage, error) {
	var damage *domain.Damage
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		damage, err = st.Damages().GetByID(ctx, damageID)
		if err != nil {
			return err
		}
		if damage.Status != domain.DamageStatusRepairInProgress {
			return domain.NewStateError("damage", damageID, string(damage.Status), "only repairs in progress can be completed")
		}

		now := time.Now()
		damage.Status = domain.DamageStatusRepaired
		damage.RepairCompletedAt = &now
		if err := st.Damages().Update(ctx, damage); err != nil {
			return err
		}
		return st.Instances().UpdateStatus(ctx, damage.InstanceID, domain.InstanceStatusAvailable)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Repair completed", "damage_id", damage.ID, "instance_id", damage.InstanceID, "completed_by", completedBy)
	return damage, nil
}

func (s *damageService) PendingAssessment(ctx context.Context) ([]domain.Damage, error) {
	return s.store.Damages().ListByStatus(ctx, domain.DamageStatusReported)
}

func (s *damageService) UnderRepair(ctx context.Context) ([]domain.Damage, error) {
	return s.store.Damages().ListByStatus(ctx, domain.DamageStatusRepairInProgress)
}

func (s *damageService) Irreparable(ctx context.Context) ([]domain.Damage, error) {
	return s.store.Damages().ListByStatus(ctx, domain.DamageStatusIrreparable)
}

// Urgent returns reports waiting past the urgent threshold plus assessed
// repairable cases waiting past the stagnant threshold.
func (s *damageService) Urgent(ctx context.Context) ([]domain.Damage, error) {
	now := time.Now()
	reported, err := s.store.Damages().ListReportedBefore(ctx, now.AddDate(0, 0, -s.cfg.UrgentAfterDays))
	if err != nil {
		return nil, err
	}
	assessed, err := s.store.Damages().ListAssessedRepairableBefore(ctx, now.AddDate(0, 0, -s.cfg.StagnantAfterDays))
	if err != nil {
		return nil, err
	}
	return append(reported, assessed...), nil
}

func (s *damageService) Stagnant(ctx context.Context) ([]domain.Damage, error) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.StagnantAfterDays)
	return s.store.Damages().ListAssessedRepairableBefore(ctx, cutoff)
}

func (s *damageService) OverdueRepairs(ctx context.Context) ([]domain.Damage, error) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.RepairDueDays)
	return s.store.Damages().ListInRepairSince(ctx, cutoff)
}

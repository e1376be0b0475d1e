package service

import (
	"context"
	"fmt"

	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/repository"
)

type instanceService struct {
	store repository.Store
}

func NewInstanceService(store repository.Store) InstanceService {
	return &instanceService{store: store}
}

// RegisterInstances creates count AVAILABLE instances for a tool. Stock
// registration flows (initial stock, restock) call this inside their own
// transaction via the kardex service; the standalone entry point exists for
// pool administration.
func (s *instanceService) RegisterInstances(ctx context.Context, toolID, count int32) ([]domain.ToolInstance, error) {
	if count <= 0 {
		return nil, domain.NewValidationError("instance_count", "instance count must be positive", count)
	}
	if _, err := s.store.Tools().GetByID(ctx, toolID); err != nil {
		return nil, err
	}
	return s.store.Instances().CreateBatch(ctx, toolID, count)
}

func (s *instanceService) AvailableCount(ctx context.Context, toolID int32) (int32, error) {
	return s.store.Instances().CountByStatus(ctx, toolID, domain.InstanceStatusAvailable)
}

// Reserve atomically selects quantity AVAILABLE instances of the tool in
// ascending id order and flips them to LOANED. The tool row is locked
// first, so two concurrent reservations can never pick the same units.
func (s *instanceService) Reserve(ctx context.Context, toolID, quantity int32) ([]domain.ToolInstance, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("reserve_quantity", "reservation quantity must be positive", quantity)
	}

	var reserved []domain.ToolInstance
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		if _, err := st.Tools().GetByIDForUpdate(ctx, toolID); err != nil {
			return err
		}
		var err error
		reserved, err = reserveInstances(ctx, st, toolID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reserved, nil
}

// reserveInstances is the transactional body of a reservation; the caller
// must already hold the tool row lock.
func reserveInstances(ctx context.Context, st repository.Store, toolID, quantity int32) ([]domain.ToolInstance, error) {
	candidates, err := st.Instances().SelectByStatusForUpdate(ctx, toolID, domain.InstanceStatusAvailable, quantity)
	if err != nil {
		return nil, err
	}
	if int32(len(candidates)) < quantity {
		return nil, domain.NewValidationError("insufficient_availability",
			fmt.Sprintf("tool %d has %d available instances, %d requested", toolID, len(candidates), quantity),
			quantity)
	}

	ids := make([]int32, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ID
	}
	if err := st.Instances().UpdateStatusBatch(ctx, ids, domain.InstanceStatusLoaned); err != nil {
		return nil, err
	}
	for i := range candidates {
		candidates[i].Status = domain.InstanceStatusLoaned
	}
	return candidates, nil
}

// Release returns a LOANED instance to the pool, to AVAILABLE or to
// UNDER_REPAIR when the unit came back damaged.
func (s *instanceService) Release(ctx context.Context, instanceID int32, damaged bool) (*domain.ToolInstance, error) {
	inst, err := s.store.Instances().GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if inst.Status != domain.InstanceStatusLoaned {
		return nil, domain.NewStateError("tool instance", instanceID, string(inst.Status), "only loaned instances can be released")
	}

	target := domain.InstanceStatusAvailable
	if damaged {
		target = domain.InstanceStatusUnderRepair
	}
	if err := s.store.Instances().UpdateStatus(ctx, instanceID, target); err != nil {
		return nil, err
	}
	inst.Status = target
	return inst, nil
}

// Decommission permanently retires instances. The DECOMMISSION ledger
// entries and the stock decrement commit in the same transaction as the
// status flips.
func (s *instanceService) Decommission(ctx context.Context, instanceIDs []int32, decommissionedBy int32) error {
	if len(instanceIDs) == 0 {
		return domain.NewValidationError("decommission_ids", "no instances given to decommission", nil)
	}

	return s.store.ExecTx(ctx, func(st repository.Store) error {
		for _, id := range instanceIDs {
			inst, err := st.Instances().GetByID(ctx, id)
			if err != nil {
				return err
			}
			if inst.Status == domain.InstanceStatusDecommissioned {
				return domain.NewStateError("tool instance", id, string(inst.Status), "instance is already decommissioned")
			}
			// Loaned units are off-depot and already out of the stock
			// count; decommissioning one here would decrement twice.
			if inst.Status == domain.InstanceStatusLoaned {
				return domain.NewStateError("tool instance", id, string(inst.Status), "loaned instances cannot be decommissioned")
			}

			tool, err := st.Tools().GetByIDForUpdate(ctx, inst.ToolID)
			if err != nil {
				return err
			}
			if err := st.Instances().UpdateStatus(ctx, id, domain.InstanceStatusDecommissioned); err != nil {
				return err
			}
			instID := id
			if _, err := appendMovement(ctx, st, tool, AppendMovementParams{
				ToolID:      tool.ID,
				InstanceID:  &instID,
				Type:        domain.MovementTypeDecommission,
				Quantity:    1,
				Description: fmt.Sprintf("Instance %d decommissioned", id),
				CreatedBy:   decommissionedBy,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Repair moves an instance from UNDER_REPAIR back to AVAILABLE; any other
// source state is rejected.
func (s *instanceService) Repair(ctx context.Context, instanceID int32) (*domain.ToolInstance, error) {
	inst, err := s.store.Instances().GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if inst.Status != domain.InstanceStatusUnderRepair {
		return nil, domain.NewStateError("tool instance", instanceID, string(inst.Status), "only instances under repair can be repaired")
	}
	if err := s.store.Instances().UpdateStatus(ctx, instanceID, domain.InstanceStatusAvailable); err != nil {
		return nil, err
	}
	inst.Status = domain.InstanceStatusAvailable
	return inst, nil
}

// Delete physically removes an instance record and decrements the
// aggregate stock, recording a DECOMMISSION movement for the audit trail.
func (s *instanceService) Delete(ctx context.Context, instanceID, deletedBy int32) error {
	return s.store.ExecTx(ctx, func(st repository.Store) error {
		inst, err := st.Instances().GetByID(ctx, instanceID)
		if err != nil {
			return err
		}
		if inst.Status == domain.InstanceStatusLoaned {
			return domain.NewStateError("tool instance", instanceID, string(inst.Status), "loaned instances cannot be deleted")
		}

		tool, err := st.Tools().GetByIDForUpdate(ctx, inst.ToolID)
		if err != nil {
			return err
		}
		if err := st.Instances().Delete(ctx, instanceID); err != nil {
			return err
		}
		// Already-decommissioned instances no longer count toward stock.
		if inst.Status == domain.InstanceStatusDecommissioned {
			return nil
		}
		_, err = appendMovement(ctx, st, tool, AppendMovementParams{
			ToolID:      tool.ID,
			InstanceID:  &instanceID,
			Type:        domain.MovementTypeDecommission,
			Quantity:    1,
			Description: fmt.Sprintf("Instance %d deleted from pool", instanceID),
			CreatedBy:   deletedBy,
		})
		return err
	})
}

func (s *instanceService) Stats(ctx context.Context, toolID int32) (domain.InstanceStats, error) {
	return s.store.Instances().Stats(ctx, toolID)
}

package service

import (
	"context"
	"fmt"
	"time"

	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/logger"
	"tooldepot-backend/internal/repository"
)

type kardexService struct {
	store repository.Store
}

func NewKardexService(store repository.Store) KardexService {
	return &kardexService{store: store}
}

// RegisterInitialStock creates the tool's first instances and writes the
// INITIAL_STOCK movement, one atomic unit.
func (s *kardexService) RegisterInitialStock(ctx context.Context, toolID, quantity, createdBy int32) (*domain.KardexMovement, error) {
	return s.registerStock(ctx, toolID, quantity, createdBy, domain.MovementTypeInitialStock)
}

// Restock adds instances to an existing pool with a RESTOCK movement.
func (s *kardexService) Restock(ctx context.Context, toolID, quantity, createdBy int32) (*domain.KardexMovement, error) {
	return s.registerStock(ctx, toolID, quantity, createdBy, domain.MovementTypeRestock)
}

func (s *kardexService) registerStock(ctx context.Context, toolID, quantity, createdBy int32, movementType domain.MovementType) (*domain.KardexMovement, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("stock_quantity", "stock quantity must be positive", quantity)
	}

	var movement *domain.KardexMovement
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		tool, err := st.Tools().GetByIDForUpdate(ctx, toolID)
		if err != nil {
			return err
		}
		if movementType == domain.MovementTypeInitialStock && tool.CurrentStock != 0 {
			return domain.NewStateError("tool", toolID, string(tool.Status), "tool already has registered stock")
		}

		if _, err := st.Instances().CreateBatch(ctx, toolID, quantity); err != nil {
			return err
		}
		movement, err = appendMovement(ctx, st, tool, AppendMovementParams{
			ToolID:      toolID,
			Type:        movementType,
			Quantity:    quantity,
			Description: fmt.Sprintf("%d units registered", quantity),
			CreatedBy:   createdBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Stock registered", "tool_id", toolID, "type", movementType, "quantity", quantity)
	return movement, nil
}

// Append records a standalone movement. Business workflows (loan, return,
// damage) write their movements inside their own transactions; this entry
// point serves administrative corrections and restocks driven externally.
func (s *kardexService) Append(ctx context.Context, params AppendMovementParams) (*domain.KardexMovement, error) {
	var movement *domain.KardexMovement
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		tool, err := st.Tools().GetByIDForUpdate(ctx, params.ToolID)
		if err != nil {
			return err
		}
		movement, err = appendMovement(ctx, st, tool, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *kardexService) HistoryByTool(ctx context.Context, toolID int32) ([]domain.KardexMovement, error) {
	if _, err := s.store.Tools().GetByID(ctx, toolID); err != nil {
		return nil, err
	}
	return s.store.Kardex().ListByTool(ctx, toolID)
}

func (s *kardexService) HistoryByDateRange(ctx context.Context, toolID int32, from, to time.Time) ([]domain.KardexMovement, error) {
	if to.Before(from) {
		return nil, domain.NewValidationError("date_range", "range end precedes range start", to)
	}
	return s.store.Kardex().ListByDateRange(ctx, toolID, from, to)
}

// AuditReport combines the aggregate stock, the instance breakdown and the
// latest ledger snapshot. A stock mismatch is reported in the flag and
// logged, never corrected here: this layer cannot know which side is
// authoritative.
func (s *kardexService) AuditReport(ctx context.Context, toolID int32) (*domain.AuditReport, error) {
	tool, err := s.store.Tools().GetByID(ctx, toolID)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.Instances().Stats(ctx, toolID)
	if err != nil {
		return nil, err
	}

	last, err := s.store.Kardex().GetLastByTool(ctx, toolID)
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}

	report := &domain.AuditReport{
		ToolID:          tool.ID,
		ToolName:        tool.Name,
		AggregateStock:  tool.CurrentStock,
		Instances:       stats,
		LastMovement:    last,
		StockConsistent: tool.CurrentStock == stats.OnHand(),
		GeneratedOn:     time.Now(),
	}
	if !report.StockConsistent {
		logger.Error("Stock inconsistency detected", "tool_id", toolID,
			"aggregate_stock", tool.CurrentStock, "instance_count", stats.OnHand())
	}
	return report, nil
}

// ReplayStock folds the tool's full movement history from its first entry
// and returns the resulting stock. Matching CurrentStock is one of the
// audit guarantees of the append-only ledger.
func (s *kardexService) ReplayStock(ctx context.Context, toolID int32) (int32, error) {
	movements, err := s.store.Kardex().ListByToolChronological(ctx, toolID)
	if err != nil {
		return 0, err
	}

	var stock int32
	for i := range movements {
		m := &movements[i]
		if !m.Consistent() {
			return 0, domain.NewConsistencyError(toolID, m.StockBefore+domain.MovementDelta(m.Type, m.Quantity), m.StockAfter,
				fmt.Sprintf("movement %d violates the delta invariant (type=%s qty=%d)", m.ID, m.Type, m.Quantity))
		}
		stock += domain.MovementDelta(m.Type, m.Quantity)
	}
	return stock, nil
}

package service

import (
	"context"
	"time"

	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// appendMovement writes one kardex entry for a tool already locked by the
// caller and applies the entry's delta to the aggregate stock. The movement
// row and the stock update share the caller's transaction, so the ledger
// snapshot and CurrentStock cannot diverge. The tool struct is mutated in
// place so callers see the updated stock.
func appendMovement(ctx context.Context, st repository.Store, tool *domain.Tool, params AppendMovementParams) (*domain.KardexMovement, error) {
	if params.Quantity <= 0 {
		return nil, domain.NewValidationError("movement_quantity", "movement quantity must be positive", params.Quantity)
	}

	delta := domain.MovementDelta(params.Type, params.Quantity)
	after := tool.CurrentStock + delta
	if after < 0 {
		return nil, domain.NewValidationError("movement_stock", "movement would drive stock negative", after)
	}

	movement := &domain.KardexMovement{
		ToolID:        tool.ID,
		InstanceID:    params.InstanceID,
		Type:          params.Type,
		Quantity:      params.Quantity,
		StockBefore:   tool.CurrentStock,
		StockAfter:    after,
		Description:   params.Description,
		RelatedLoanID: params.RelatedLoanID,
		CreatedBy:     params.CreatedBy,
	}
	if err := st.Kardex().Create(ctx, movement); err != nil {
		return nil, err
	}

	if delta != 0 {
		if err := st.Tools().UpdateStock(ctx, tool.ID, after); err != nil {
			return nil, err
		}
		tool.CurrentStock = after
	}
	return movement, nil
}

// newFine builds a fine with a fresh human-facing reference code.
func newFine(clientID, loanID int32, fineType domain.FineType, amount decimal.Decimal, description string, dueDate time.Time, createdBy int32) *domain.Fine {
	return &domain.Fine{
		Reference:   uuid.NewString(),
		ClientID:    clientID,
		LoanID:      loanID,
		Type:        fineType,
		Amount:      amount,
		Description: description,
		Paid:        false,
		DueDate:     dueDate,
		CreatedBy:   createdBy,
	}
}

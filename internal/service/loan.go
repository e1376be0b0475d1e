package service

import (
	"context"
	"fmt"
	"time"

	"tooldepot-backend/internal/config"
	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/logger"
	"tooldepot-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type loanService struct {
	store repository.Store
	rates RateService
	cfg   config.LoanConfig
}

func NewLoanService(store repository.Store, rates RateService, cfg config.LoanConfig) LoanService {
	return &loanService{store: store, rates: rates, cfg: cfg}
}

// CreateLoan validates the full eligibility cascade, snapshots the current
// rental rate, reserves the instances, persists the loan and writes the
// LOAN movement. Everything after validation is one transaction; a failure
// at any step rolls back the reservation and the ledger entry together.
func (s *loanService) CreateLoan(ctx context.Context, params CreateLoanParams) (*domain.Loan, error) {
	logger.EnterMethod("CreateLoan", "client_id", params.ClientID, "tool_id", params.ToolID, "quantity", params.Quantity)

	if params.Quantity <= 0 {
		return nil, domain.NewValidationError("loan_quantity", "loan quantity must be positive", params.Quantity)
	}

	loanDate := time.Now()
	if !params.AgreedReturnDate.After(loanDate) {
		return nil, domain.NewValidationError("agreed_return_date",
			"agreed return date must be after the loan date", params.AgreedReturnDate.Format("2006-01-02"))
	}

	// Rate snapshot happens before any mutation; the loan keeps this rate
	// for its whole life.
	dailyRate, err := s.rates.Resolve(ctx, domain.RateTypeRental, loanDate)
	if err != nil {
		return nil, err
	}

	loan := &domain.Loan{
		ClientID:         params.ClientID,
		ToolID:           params.ToolID,
		Quantity:         params.Quantity,
		LoanDate:         loanDate,
		AgreedReturnDate: params.AgreedReturnDate,
		DailyRate:        dailyRate,
		Status:           domain.LoanStatusActive,
		CreatedBy:        params.CreatedBy,
		Notes:            params.Notes,
	}

	err = s.store.ExecTx(ctx, func(st repository.Store) error {
		if err := s.validateEligibility(ctx, st, params, loanDate); err != nil {
			return err
		}

		reserved, err := reserveInstances(ctx, st, params.ToolID, params.Quantity)
		if err != nil {
			return err
		}
		if err := st.Loans().Create(ctx, loan); err != nil {
			return err
		}

		tool, err := st.Tools().GetByIDForUpdate(ctx, params.ToolID)
		if err != nil {
			return err
		}
		firstInstance := reserved[0].ID
		_, err = appendMovement(ctx, st, tool, AppendMovementParams{
			ToolID:        params.ToolID,
			InstanceID:    &firstInstance,
			Type:          domain.MovementTypeLoan,
			Quantity:      params.Quantity,
			Description:   fmt.Sprintf("%d units loaned to client %d", params.Quantity, params.ClientID),
			RelatedLoanID: &loan.ID,
			CreatedBy:     params.CreatedBy,
		})
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("CreateLoan", err, "client_id", params.ClientID, "tool_id", params.ToolID)
		return nil, err
	}

	logger.Info("Loan created", "loan_id", loan.ID, "client_id", loan.ClientID,
		"tool_id", loan.ToolID, "quantity", loan.Quantity, "daily_rate", loan.DailyRate)
	return loan, nil
}

// validateEligibility runs the business-rule cascade in order; the first
// failing rule short-circuits with its own validation error. The tool row
// is locked here, so availability cannot change under a passing check.
func (s *loanService) validateEligibility(ctx context.Context, st repository.Store, params CreateLoanParams, loanDate time.Time) error {
	client, err := st.Clients().GetByIDForUpdate(ctx, params.ClientID)
	if err != nil {
		return err
	}
	if client.Status != domain.ClientStatusActive {
		return domain.NewValidationError("client_restricted", "client is restricted from new loans", client.ID)
	}

	hasOverdue, err := st.Loans().HasOverdueActiveLoan(ctx, params.ClientID, loanDate)
	if err != nil {
		return err
	}
	if hasOverdue {
		return domain.NewValidationError("client_overdue_loan", "client has an overdue active loan", client.ID)
	}

	hasUnpaid, err := st.Fines().HasUnpaid(ctx, params.ClientID)
	if err != nil {
		return err
	}
	if hasUnpaid {
		return domain.NewValidationError("client_unpaid_fines", "client has unpaid fines", client.ID)
	}

	tool, err := st.Tools().GetByIDForUpdate(ctx, params.ToolID)
	if err != nil {
		return err
	}
	if tool.Status != domain.ToolStatusAvailable {
		return domain.NewValidationError("tool_unavailable", "tool is not available for loan", string(tool.Status))
	}

	available, err := st.Instances().CountByStatus(ctx, params.ToolID, domain.InstanceStatusAvailable)
	if err != nil {
		return err
	}
	if available < params.Quantity {
		return domain.NewValidationError("insufficient_availability",
			fmt.Sprintf("tool %d has %d available instances, %d requested", params.ToolID, available, params.Quantity),
			params.Quantity)
	}

	activeCount, err := st.Loans().CountActiveByClient(ctx, params.ClientID)
	if err != nil {
		return err
	}
	if activeCount >= s.cfg.MaxActivePerClient {
		return domain.NewValidationError("max_active_loans",
			fmt.Sprintf("client already has %d active loans", activeCount), activeCount)
	}

	hasSameTool, err := st.Loans().HasActiveLoanForTool(ctx, params.ClientID, params.ToolID)
	if err != nil {
		return err
	}
	if hasSameTool {
		return domain.NewValidationError("duplicate_tool_loan", "client already has an active loan for this tool", params.ToolID)
	}

	if params.Quantity > tool.CurrentStock {
		return domain.NewValidationError("quantity_exceeds_stock",
			fmt.Sprintf("requested %d units, tool stock is %d", params.Quantity, tool.CurrentStock), params.Quantity)
	}
	return nil
}

// ReturnTool closes an active loan: instances come back to the pool (or
// into UNDER_REPAIR when damaged), late and damage fines are computed from
// the snapshot and current rates, the RETURN movement is written, and the
// client's status is recomputed. One transaction end to end.
func (s *loanService) ReturnTool(ctx context.Context, loanID int32, damaged bool, notes string, returnedBy int32) (*domain.Loan, error) {
	logger.EnterMethod("ReturnTool", "loan_id", loanID, "damaged", damaged)

	var loan *domain.Loan
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		loan, err = st.Loans().GetByID(ctx, loanID)
		if err != nil {
			return err
		}
		if loan.Status != domain.LoanStatusActive {
			return domain.NewStateError("loan", loanID, string(loan.Status), "only active loans can be returned")
		}

		tool, err := st.Tools().GetByIDForUpdate(ctx, loan.ToolID)
		if err != nil {
			return err
		}

		loaned, err := st.Instances().SelectByStatusForUpdate(ctx, loan.ToolID, domain.InstanceStatusLoaned, loan.Quantity)
		if err != nil {
			return err
		}
		target := domain.InstanceStatusAvailable
		if damaged {
			target = domain.InstanceStatusUnderRepair
		}
		ids := make([]int32, len(loaned))
		for i := range loaned {
			ids[i] = loaned[i].ID
		}
		if err := st.Instances().UpdateStatusBatch(ctx, ids, target); err != nil {
			return err
		}
		released := int32(len(ids))

		now := time.Now()
		daysLate := loan.DaysLate(now)
		if daysLate > 0 {
			lateRate, err := s.rates.Resolve(ctx, domain.RateTypeLateFee, now)
			if err != nil {
				return err
			}
			amount := lateRate.Mul(decimal.NewFromInt32(daysLate))
			fine := newFine(loan.ClientID, loan.ID, domain.FineTypeLateReturn, amount,
				fmt.Sprintf("Returned %d days late", daysLate),
				now.AddDate(0, 0, s.cfg.FineDueDays), returnedBy)
			if err := st.Fines().Create(ctx, fine); err != nil {
				return err
			}
		}
		if damaged {
			repairFee, err := s.rates.CalculateRepairCost(ctx, tool.ReplacementValue)
			if err != nil {
				return err
			}
			fine := newFine(loan.ClientID, loan.ID, domain.FineTypeDamageRepair, repairFee,
				fmt.Sprintf("Damage reported at return of loan %d", loan.ID),
				now.AddDate(0, 0, s.cfg.FineDueDays), returnedBy)
			if err := st.Fines().Create(ctx, fine); err != nil {
				return err
			}
		}

		loan.ActualReturnDate = &now
		switch {
		case damaged:
			loan.Status = domain.LoanStatusDamaged
		case daysLate > 0:
			loan.Status = domain.LoanStatusOverdue
		default:
			loan.Status = domain.LoanStatusReturned
		}
		if notes != "" {
			loan.Notes = notes
		}
		if err := st.Loans().Update(ctx, loan); err != nil {
			return err
		}

		// The movement records what physically came back, which matches
		// loan.Quantity unless units were decommissioned mid-loan.
		if released > 0 {
			if _, err := appendMovement(ctx, st, tool, AppendMovementParams{
				ToolID:        loan.ToolID,
				Type:          domain.MovementTypeReturn,
				Quantity:      released,
				Description:   fmt.Sprintf("%d units returned by client %d", released, loan.ClientID),
				RelatedLoanID: &loan.ID,
				CreatedBy:     returnedBy,
			}); err != nil {
				return err
			}
		}

		_, err = recomputeClientStatus(ctx, st, loan.ClientID, now)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("ReturnTool", err, "loan_id", loanID)
		return nil, err
	}

	logger.Info("Loan returned", "loan_id", loan.ID, "status", loan.Status, "damaged", damaged)
	return loan, nil
}

func (s *loanService) GetLoan(ctx context.Context, loanID int32) (*domain.Loan, error) {
	return s.store.Loans().GetByID(ctx, loanID)
}

func (s *loanService) ListByClient(ctx context.Context, clientID int32, status domain.LoanStatus) ([]domain.Loan, error) {
	return s.store.Loans().ListByClient(ctx, clientID, status)
}

// OverdueLoans lists active loans past their agreed return date.
func (s *loanService) OverdueLoans(ctx context.Context) ([]domain.Loan, error) {
	return s.store.Loans().ListOverdueActive(ctx, time.Now())
}

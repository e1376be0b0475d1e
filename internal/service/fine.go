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

type fineService struct {
	store repository.Store
	cfg   config.LoanConfig
}

func NewFineService(store repository.Store, cfg config.LoanConfig) FineService {
	return &fineService{store: store, cfg: cfg}
}

// Create levies a fine against a client. The due date defaults to the
// configured grace period when the caller leaves it zero. Creation and the
// client status recompute commit together.
func (s *fineService) Create(ctx context.Context, params CreateFineParams) (*domain.Fine, error) {
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.NewValidationError("fine_amount", "fine amount must be positive", params.Amount)
	}
	if _, err := s.store.Loans().GetByID(ctx, params.LoanID); err != nil {
		return nil, err
	}

	dueDate := params.DueDate
	if dueDate.IsZero() {
		dueDate = time.Now().AddDate(0, 0, s.cfg.FineDueDays)
	}

	fine := newFine(params.ClientID, params.LoanID, params.Type, params.Amount, params.Description, dueDate, params.CreatedBy)
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		if err := st.Fines().Create(ctx, fine); err != nil {
			return err
		}
		_, err := recomputeClientStatus(ctx, st, params.ClientID, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Fine created", "fine_id", fine.ID, "reference", fine.Reference,
		"client_id", fine.ClientID, "type", fine.Type, "amount", fine.Amount)
	return fine, nil
}

// Pay marks a fine paid, stamps the payment date and recomputes the
// client's status; paying the last unpaid fine lifts the restriction
// unless an overdue loan keeps it in place.
func (s *fineService) Pay(ctx context.Context, fineID int32) (*domain.Fine, error) {
	var fine *domain.Fine
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		fine, err = st.Fines().GetByID(ctx, fineID)
		if err != nil {
			return err
		}
		if fine.Paid {
			return domain.NewStateError("fine", fineID, "paid", "fine is already paid")
		}

		now := time.Now()
		fine.Paid = true
		fine.PaidDate = &now
		if err := st.Fines().Update(ctx, fine); err != nil {
			return err
		}
		_, err = recomputeClientStatus(ctx, st, fine.ClientID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Fine paid", "fine_id", fine.ID, "client_id", fine.ClientID, "amount", fine.Amount)
	return fine, nil
}

// Cancel voids an unpaid fine: the amount is zeroed, the fine is marked
// paid and an audit note is appended. A fine that reached a paid state is
// never cancelled or deleted.
func (s *fineService) Cancel(ctx context.Context, fineID int32, reason string, cancelledBy int32) (*domain.Fine, error) {
	var fine *domain.Fine
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		fine, err = st.Fines().GetByID(ctx, fineID)
		if err != nil {
			return err
		}
		if fine.Paid {
			return domain.NewStateError("fine", fineID, "paid", "paid fines cannot be cancelled")
		}

		now := time.Now()
		fine.Amount = decimal.Zero
		fine.Paid = true
		fine.PaidDate = &now
		fine.Description = fmt.Sprintf("%s [CANCELLED by user %d on %s: %s]",
			fine.Description, cancelledBy, now.Format("2006-01-02"), reason)
		if err := st.Fines().Update(ctx, fine); err != nil {
			return err
		}
		_, err = recomputeClientStatus(ctx, st, fine.ClientID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Fine cancelled", "fine_id", fine.ID, "client_id", fine.ClientID, "cancelled_by", cancelledBy)
	return fine, nil
}

func (s *fineService) UnpaidByClient(ctx context.Context, clientID int32) ([]domain.Fine, error) {
	return s.store.Fines().ListUnpaidByClient(ctx, clientID)
}

func (s *fineService) OverdueFines(ctx context.Context) ([]domain.Fine, error) {
	return s.store.Fines().ListOverdue(ctx, time.Now())
}

func (s *fineService) TotalUnpaid(ctx context.Context, clientID int32) (decimal.Decimal, error) {
	return s.store.Fines().TotalUnpaidAmount(ctx, clientID)
}

// RecomputeClientStatus re-derives one client's restriction flag in its
// own transaction. Mutating operations recompute inside their surrounding
// transaction; this entry point serves out-of-band callers like the
// nightly sweep.
func (s *fineService) RecomputeClientStatus(ctx context.Context, clientID int32) (domain.ClientStatus, error) {
	var status domain.ClientStatus
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		status, err = recomputeClientStatus(ctx, st, clientID, time.Now())
		return err
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

package service

import (
	"context"
	"time"

	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/repository"
)

// recomputeClientStatus re-derives a client's ACTIVE/RESTRICTED flag from
// its unpaid fines and overdue active loans. It locks the client row first,
// so concurrent fine and loan operations on the same client serialize here
// instead of racing on the status column. Must run inside a transaction.
func recomputeClientStatus(ctx context.Context, st repository.Store, clientID int32, now time.Time) (domain.ClientStatus, error) {
	client, err := st.Clients().GetByIDForUpdate(ctx, clientID)
	if err != nil {
		return "", err
	}

	hasUnpaid, err := st.Fines().HasUnpaid(ctx, clientID)
	if err != nil {
		return "", err
	}
	hasOverdue, err := st.Loans().HasOverdueActiveLoan(ctx, clientID, now)
	if err != nil {
		return "", err
	}

	status := domain.ClientStatusFor(hasUnpaid, hasOverdue)
	if status == client.Status {
		return status, nil
	}
	if err := st.Clients().UpdateStatus(ctx, clientID, status); err != nil {
		return "", err
	}
	return status, nil
}

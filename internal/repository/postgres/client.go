package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/repository"
)

type clientRepository struct {
	db DBTX
}

func NewClientRepository(db DBTX) repository.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) getByID(ctx context.Context, id int32, forUpdate bool) (*domain.Client, error) {
	query := `SELECT id, name, rut, COALESCE(phone, ''), COALESCE(email, ''), status FROM clients WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	c := &domain.Client{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Rut, &c.Phone, &c.Email, &c.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("client", id)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id int32) (*domain.Client, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate locks the client row until the surrounding transaction
// ends, serializing status recomputation per client.
func (r *clientRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Client, error) {
	return r.getByID(ctx, id, true)
}

func (r *clientRepository) UpdateStatus(ctx context.Context, id int32, status domain.ClientStatus) error {
	query := `UPDATE clients SET status = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func (r *clientRepository) ListRestricted(ctx context.Context) ([]domain.Client, error) {
	query := `SELECT id, name, rut, COALESCE(phone, ''), COALESCE(email, ''), status FROM clients WHERE status = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, domain.ClientStatusRestricted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Rut, &c.Phone, &c.Email, &c.Status); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// ListWithActiveLoans returns the ids of clients that currently hold at
// least one active loan, for the nightly restriction refresh.
func (r *clientRepository) ListWithActiveLoans(ctx context.Context) ([]int32, error) {
	query := `SELECT DISTINCT client_id FROM loans WHERE status = 'ACTIVE' ORDER BY client_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

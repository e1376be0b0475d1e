package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"tooldepot-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can run
// against the shared pool or inside a transaction without knowing which.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	q  DBTX

	clients   repository.ClientRepository
	tools     repository.ToolRepository
	instances repository.InstanceRepository
	kardex    repository.KardexRepository
	loans     repository.LoanRepository
	fines     repository.FineRepository
	damages   repository.DamageRepository
	rates     repository.RateRepository
}

func NewStore(db *sql.DB) *Store {
	return newStore(db, db)
}

func newStore(db *sql.DB, q DBTX) *Store {
	return &Store{
		db:        db,
		q:         q,
		clients:   NewClientRepository(q),
		tools:     NewToolRepository(q),
		instances: NewInstanceRepository(q),
		kardex:    NewKardexRepository(q),
		loans:     NewLoanRepository(q),
		fines:     NewFineRepository(q),
		damages:   NewDamageRepository(q),
		rates:     NewRateRepository(q),
	}
}

func (s *Store) Clients() repository.ClientRepository     { return s.clients }
func (s *Store) Tools() repository.ToolRepository         { return s.tools }
func (s *Store) Instances() repository.InstanceRepository { return s.instances }
func (s *Store) Kardex() repository.KardexRepository      { return s.kardex }
func (s *Store) Loans() repository.LoanRepository         { return s.loans }
func (s *Store) Fines() repository.FineRepository         { return s.fines }
func (s *Store) Damages() repository.DamageRepository     { return s.damages }
func (s *Store) Rates() repository.RateRepository         { return s.rates }

// ExecTx runs fn inside a database transaction. Any error from fn rolls the
// transaction back; nested calls reuse the transaction already in flight.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newStore(s.db, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

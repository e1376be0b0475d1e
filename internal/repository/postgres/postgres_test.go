package postgres

import (
	"context"
	"errors"
	"testing"

	"tooldepot-backend/internal/domain"
	"tooldepot-backend/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestStore_ExecTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits On Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()

		store := NewStore(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE tool_instances SET status").
			WithArgs(domain.InstanceStatusLoaned, int32(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = store.ExecTx(ctx, func(st repository.Store) error {
			return st.Instances().UpdateStatus(ctx, 11, domain.InstanceStatusLoaned)
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls Back On Error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()

		store := NewStore(db)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE tool_instances SET status").
			WithArgs(domain.InstanceStatusLoaned, int32(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		err = store.ExecTx(ctx, func(st repository.Store) error {
			if err := st.Instances().UpdateStatus(ctx, 11, domain.InstanceStatusLoaned); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nested Call Reuses Transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()

		store := NewStore(db)

		// One begin and one commit even though ExecTx is entered twice.
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE tool_instances SET status").
			WithArgs(domain.InstanceStatusLoaned, int32(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = store.ExecTx(ctx, func(st repository.Store) error {
			return st.ExecTx(ctx, func(inner repository.Store) error {
				return inner.Instances().UpdateStatus(ctx, 11, domain.InstanceStatusLoaned)
			})
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"artistevents/internal/domain"
)

func TestTransactor_WithinTx(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("commits row insert and counter adjustment together", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO rsvps`).
			WithArgs("ev-1", "user-1", true, false, ts).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("rsvp-1"))
		mock.ExpectExec(`UPDATE events`).
			WithArgs(1, "ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx := NewTransactor(db)
		rsvps := NewRSVPRepository(db)
		events := NewEventRepository(db)
		err = tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := rsvps.Create(ctx, domain.NewRSVP("ev-1", "user-1", true, ts)); err != nil {
				return err
			}
			return events.AdjustAttendeeCount(ctx, "ev-1", 1)
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when a step fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO rsvps`).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		tx := NewTransactor(db)
		rsvps := NewRSVPRepository(db)
		err = tx.WithinTx(ctx, func(ctx context.Context) error {
			return rsvps.Create(ctx, domain.NewRSVP("ev-1", "user-1", true, ts))
		})
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM rsvps`).
			WithArgs("ev-1", "user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx := NewTransactor(db)
		rsvps := NewRSVPRepository(db)
		err = tx.WithinTx(ctx, func(ctx context.Context) error {
			return tx.WithinTx(ctx, func(ctx context.Context) error {
				return rsvps.Delete(ctx, "ev-1", "user-1")
			})
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("serialization failure on commit is transient", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(&pq.Error{Code: "40001"})

		tx := NewTransactor(db)
		err = tx.WithinTx(ctx, func(ctx context.Context) error { return nil })
		require.ErrorIs(t, err, domain.ErrTransient)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure is returned", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

		tx := NewTransactor(db)
		called := false
		err = tx.WithinTx(ctx, func(ctx context.Context) error {
			called = true
			return nil
		})
		require.Error(t, err)
		require.False(t, called)
	})
}

package repository_test

import (
	"context"
	"testing"
	"time"

	"studio-booking/internal/model"
	"studio-booking/internal/repository"
	apperrors "studio-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSessionRepository(testDB)

	t.Run("Success", func(t *testing.T) {
		setupTestWithTruncate(t)

		notes := "mat class"
		session, err := repo.Create(ctx, &model.Session{
			StartsAt:  futureTime(t, 24),
			Capacity:  6,
			SpotsLeft: 6,
			Notes:     &notes,
		})
		require.NoError(t, err)
		assert.NotZero(t, session.ID)
		assert.Equal(t, 6, session.SpotsLeft)
		assert.False(t, session.Completed)
	})
}

func TestSessionRepository_StartsAtRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSessionRepository(testDB)

	t.Run("preserves the instant on a non-UTC host", func(t *testing.T) {
		setupTestWithTruncate(t)

		// timestamp 欄位沒有時區，掃描時必須綁回本地時區
		restore := time.Local
		time.Local = time.FixedZone("UTC+3", 3*60*60)
		defer func() { time.Local = restore }()

		startsAt := time.Now().Add(-time.Hour)
		created, err := repo.Create(ctx, &model.Session{
			StartsAt:  startsAt,
			Capacity:  5,
			SpotsLeft: 5,
		})
		require.NoError(t, err)

		loaded, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, loaded.StartsAt.Equal(startsAt))
		assert.True(t, loaded.IsPast(time.Now()))
	})
}

func TestSessionRepository_ListUpcoming(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSessionRepository(testDB)

	t.Run("orders by start time, keeps today's past sessions", func(t *testing.T) {
		setupTestWithTruncate(t)
		later := createTestSession(t, futureTime(t, 72), 5, 5)
		sooner := createTestSession(t, futureTime(t, 24), 5, 5)
		createTestSession(t, futureTime(t, -48), 5, 5) // yesterday, excluded

		today := time.Now().Truncate(24 * time.Hour)
		sessions, err := repo.ListUpcoming(ctx, time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local))
		require.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.Equal(t, sooner, sessions[0].ID)
		assert.Equal(t, later, sessions[1].ID)
	})
}

func TestSessionRepository_AdjustSpots(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSessionRepository(testDB)

	adjust := func(t *testing.T, id, delta int) error {
		t.Helper()
		tx, err := testDB.BeginTx(ctx, pgx.TxOptions{})
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		if err := repo.AdjustSpots(ctx, tx, id, delta); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}

	t.Run("moves by one inside bounds", func(t *testing.T) {
		setupTestWithTruncate(t)
		id := createTestSession(t, futureTime(t, 24), 5, 3)

		require.NoError(t, adjust(t, id, -1))
		require.NoError(t, adjust(t, id, 1))

		session, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 3, session.SpotsLeft)
	})

	t.Run("Failed - would drop below zero", func(t *testing.T) {
		setupTestWithTruncate(t)
		id := createTestSession(t, futureTime(t, 24), 5, 0)

		err := adjust(t, id, -1)
		assert.ErrorIs(t, err, apperrors.ErrCapacityBounds)
	})

	t.Run("Failed - would exceed capacity", func(t *testing.T) {
		setupTestWithTruncate(t)
		id := createTestSession(t, futureTime(t, 24), 5, 5)

		err := adjust(t, id, 1)
		assert.ErrorIs(t, err, apperrors.ErrCapacityBounds)
	})
}

func TestSessionRepository_DueSessions(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSessionRepository(testDB)

	t.Run("finds only uncompleted past sessions", func(t *testing.T) {
		setupTestWithTruncate(t)
		due := createTestSession(t, futureTime(t, -1), 5, 5)
		createTestSession(t, futureTime(t, 1), 5, 5)

		now := time.Now()

		hasDue, err := repo.HasDue(ctx, now)
		require.NoError(t, err)
		assert.True(t, hasDue)

		tx, err := testDB.BeginTx(ctx, pgx.TxOptions{})
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		sessions, err := repo.FindDueWithLock(ctx, tx, now)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, due, sessions[0].ID)

		require.NoError(t, repo.MarkCompleted(ctx, tx, due))
		require.NoError(t, tx.Commit(ctx))

		hasDue, err = repo.HasDue(ctx, now)
		require.NoError(t, err)
		assert.False(t, hasDue)
	})
}

func TestSessionRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSessionRepository(testDB)

	t.Run("cascades reservations", func(t *testing.T) {
		setupTestWithTruncate(t)
		memberID := createTestMember(t, "Ada Lovelace", 2)
		sessionID := createTestSession(t, futureTime(t, 24), 5, 4)
		reservationID := createTestReservation(t, memberID, "Ada Lovelace", sessionID, model.ReservationStatusActive)

		tx, err := testDB.BeginTx(ctx, pgx.TxOptions{})
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		require.NoError(t, repo.Delete(ctx, tx, sessionID))
		require.NoError(t, tx.Commit(ctx))

		reservationRepo := repository.NewReservationRepository(testDB)
		_, err = reservationRepo.FindByID(ctx, reservationID)
		assert.ErrorIs(t, err, apperrors.ErrReservationNotFound)
	})
}

func TestSessionRepository_DayUsage(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSessionRepository(testDB)

	t.Run("sums booked seats and capacity", func(t *testing.T) {
		setupTestWithTruncate(t)
		now := time.Now()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		createTestSession(t, dayStart.Add(10*time.Hour), 6, 4)  // 2 booked
		createTestSession(t, dayStart.Add(18*time.Hour), 8, 8)  // 0 booked
		createTestSession(t, dayStart.Add(30*time.Hour), 10, 0) // tomorrow, excluded

		booked, capacity, err := repo.DayUsage(ctx, dayStart, dayStart.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, 2, booked)
		assert.Equal(t, 14, capacity)
	})
}

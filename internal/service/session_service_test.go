package service_test

import (
	"context"
	"testing"
	"time"

	"studio-booking/internal/model"
	"studio-booking/internal/service"
	apperrors "studio-booking/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - spots start at capacity", func(t *testing.T) {
		env := setupEnv(t)
		notes := "bring your own mat"

		session, err := env.sessions.Create(ctx, service.CreateSessionParams{
			StartsAt: time.Now().Add(48 * time.Hour),
			Capacity: 8,
			Notes:    &notes,
		})
		require.NoError(t, err)
		assert.Equal(t, 8, session.Capacity)
		assert.Equal(t, 8, session.SpotsLeft)
		require.NotNil(t, session.Notes)
		assert.Equal(t, notes, *session.Notes)
	})

	t.Run("Success - zero capacity allowed", func(t *testing.T) {
		env := setupEnv(t)

		session, err := env.sessions.Create(ctx, service.CreateSessionParams{
			StartsAt: time.Now().Add(48 * time.Hour),
			Capacity: 0,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, session.SpotsLeft)
	})

	t.Run("Failed - ErrInvalidInput on negative capacity", func(t *testing.T) {
		env := setupEnv(t)

		_, err := env.sessions.Create(ctx, service.CreateSessionParams{
			StartsAt: time.Now().Add(48 * time.Hour),
			Capacity: -1,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Create invalidates the schedule cache", func(t *testing.T) {
		env := setupEnv(t)

		_, err := env.sessions.ListUpcoming(ctx)
		require.NoError(t, err)
		assert.True(t, env.scheduleCache.cached())

		_, err = env.sessions.Create(ctx, service.CreateSessionParams{
			StartsAt: time.Now().Add(48 * time.Hour),
			Capacity: 5,
		})
		require.NoError(t, err)
		assert.False(t, env.scheduleCache.cached())
	})
}

func TestSessionService_ListUpcoming(t *testing.T) {
	ctx := context.Background()

	t.Run("second call is served from cache", func(t *testing.T) {
		env := setupEnv(t)
		createTestSession(t, time.Now().Add(48*time.Hour), 5, 5)

		first, err := env.sessions.ListUpcoming(ctx)
		require.NoError(t, err)
		require.Len(t, first, 1)

		// bypass the service so the cache goes stale
		createTestSession(t, time.Now().Add(72*time.Hour), 5, 5)

		second, err := env.sessions.ListUpcoming(ctx)
		require.NoError(t, err)
		assert.Len(t, second, 1)
	})

	t.Run("earlier sessions today are still listed", func(t *testing.T) {
		env := setupEnv(t)
		now := time.Now()
		if now.Hour() < 1 {
			t.Skip("no room before midnight for an earlier-today session")
		}
		createTestSession(t, now.Add(-30*time.Minute), 5, 5)

		sessions, err := env.sessions.ListUpcoming(ctx)
		require.NoError(t, err)
		assert.Len(t, sessions, 1)
	})
}

func TestSessionService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - refunds attended and removes reservations", func(t *testing.T) {
		env := setupEnv(t)
		attendedMember := createTestMember(t, "Ada Lovelace", 0)
		activeMember := createTestMember(t, "Grace Hopper", 2)
		sessionID := createTestSession(t, time.Now().Add(48*time.Hour), 5, 3)
		attendedReservation := createTestReservation(t, attendedMember, "Ada Lovelace", sessionID, model.ReservationStatusAttended)
		activeReservation := createTestReservation(t, activeMember, "Grace Hopper", sessionID, model.ReservationStatusActive)

		require.NoError(t, env.sessions.Delete(ctx, sessionID))

		_, err := env.sessions.GetByID(ctx, sessionID)
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

		// attended got the credit back, active never paid one
		assert.Equal(t, 1, getMember(t, env, attendedMember).Credits)
		assert.Equal(t, 2, getMember(t, env, activeMember).Credits)

		// rows cascade with the session
		_, err = env.reservationRepo.FindByID(ctx, attendedReservation)
		assert.ErrorIs(t, err, apperrors.ErrReservationNotFound)
		_, err = env.reservationRepo.FindByID(ctx, activeReservation)
		assert.ErrorIs(t, err, apperrors.ErrReservationNotFound)
	})

	t.Run("refund tolerates a deleted member", func(t *testing.T) {
		env := setupEnv(t)
		memberID := createTestMember(t, "Ada Lovelace", 0)
		sessionID := createTestSession(t, time.Now().Add(48*time.Hour), 5, 4)
		createTestReservation(t, memberID, "Ada Lovelace", sessionID, model.ReservationStatusAttended)

		require.NoError(t, env.memberRepo.Delete(ctx, memberID))

		require.NoError(t, env.sessions.Delete(ctx, sessionID))
	})

	t.Run("Failed - ErrSessionPast", func(t *testing.T) {
		env := setupEnv(t)
		sessionID := createTestSession(t, time.Now().Add(-time.Hour), 5, 5)

		err := env.sessions.Delete(ctx, sessionID)
		assert.ErrorIs(t, err, apperrors.ErrSessionPast)
	})

	t.Run("Failed - ErrSessionNotFound", func(t *testing.T) {
		env := setupEnv(t)

		err := env.sessions.Delete(ctx, 999)
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})
}

func TestSessionService_Participants(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - all statuses included", func(t *testing.T) {
		env := setupEnv(t)
		memberID := createTestMember(t, "Ada Lovelace", 2)
		otherID := createTestMember(t, "Grace Hopper", 2)
		sessionID := createTestSession(t, time.Now().Add(48*time.Hour), 5, 3)
		createTestReservation(t, memberID, "Ada Lovelace", sessionID, model.ReservationStatusActive)
		createTestReservation(t, otherID, "Grace Hopper", sessionID, model.ReservationStatusCanceled)

		session, reservations, err := env.sessions.Participants(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, sessionID, session.ID)
		assert.Len(t, reservations, 2)
	})
}

func TestSessionService_AdminDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		env := setupEnv(t)
		memberID := createTestMember(t, "Ada Lovelace", 2)

		now := time.Now()
		noon := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())
		todayID := createTestSession(t, noon, 10, 7)
		createTestReservation(t, memberID, "Ada Lovelace", todayID, model.ReservationStatusActive)
		createTestSession(t, now.AddDate(0, 0, 2), 5, 5)
		createTestSession(t, now.AddDate(0, 0, -2), 5, 2)

		dashboard, err := env.sessions.AdminDashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, dashboard.TotalSessions)
		assert.Equal(t, 2, dashboard.UpcomingSessions)
		assert.Equal(t, 1, dashboard.ActiveReservations)
		assert.Equal(t, 3, dashboard.TodayBooked)
		assert.Equal(t, 10, dashboard.TodayCapacity)
	})
}

package repository

import (
	"context"
	"fmt"
	"time"

	"studio-booking/internal/model"
	apperrors "studio-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository interface {
	FindByID(ctx context.Context, id int) (*model.Reservation, error)
	FindActive(ctx context.Context, memberID int, sessionID int) (*model.Reservation, error)
	ListActiveByMember(ctx context.Context, memberID int) ([]*model.Reservation, error)
	ListBySession(ctx context.Context, sessionID int) ([]*model.Reservation, error)
	CountActive(ctx context.Context) (int, error)
	CountAttendedBetween(ctx context.Context, memberID int, from, to time.Time) (int, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.ReservationStatus) (*model.Reservation, error)
	ListBySessionWithLock(ctx context.Context, tx pgx.Tx, sessionID int) ([]*model.Reservation, error)
	MarkAttendedBySession(ctx context.Context, tx pgx.Tx, sessionID int) ([]int, error)
}

type ReservationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &ReservationRepositoryImpl{
		pool: pool,
	}
}

const reservationColumns = `id, reference, member_id, member_name, session_id, status, created_at, updated_at`

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var reservation model.Reservation
	err := row.Scan(
		&reservation.ID,
		&reservation.Reference,
		&reservation.MemberID,
		&reservation.MemberName,
		&reservation.SessionID,
		&reservation.Status,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *ReservationRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation) (*model.Reservation, error) {
	query := fmt.Sprintf(`
		INSERT INTO reservations (reference, member_id, member_name, session_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, reservationColumns)

	created, err := scanReservation(tx.QueryRow(ctx, query,
		reservation.Reference, reservation.MemberID, reservation.MemberName,
		reservation.SessionID, reservation.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	return created, nil
}

func (r *ReservationRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reservations
		WHERE id = $1
	`, reservationColumns)

	reservation, err := scanReservation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrReservationNotFound
		}
		return nil, err
	}

	return reservation, nil
}

func (r *ReservationRepositoryImpl) FindActive(ctx context.Context, memberID int, sessionID int) (*model.Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reservations
		WHERE member_id = $1 AND session_id = $2 AND status = $3
	`, reservationColumns)

	reservation, err := scanReservation(r.pool.QueryRow(ctx, query, memberID, sessionID, model.ReservationStatusActive))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrReservationNotFound
		}
		return nil, err
	}

	return reservation, nil
}

func (r *ReservationRepositoryImpl) ListActiveByMember(ctx context.Context, memberID int) ([]*model.Reservation, error) {
	// joined session orders the member dashboard by start time
	query := `
		SELECT r.id, r.reference, r.member_id, r.member_name, r.session_id, r.status,
		       r.created_at, r.updated_at,
		       s.id, s.starts_at, s.capacity, s.spots_left, s.notes, s.completed,
		       s.created_at, s.updated_at
		FROM reservations r
		JOIN sessions s ON s.id = r.session_id
		WHERE r.member_id = $1 AND r.status = $2
		ORDER BY s.starts_at ASC
	`

	rows, err := r.pool.Query(ctx, query, memberID, model.ReservationStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]*model.Reservation, 0)
	for rows.Next() {
		var reservation model.Reservation
		var session model.Session
		err := rows.Scan(
			&reservation.ID,
			&reservation.Reference,
			&reservation.MemberID,
			&reservation.MemberName,
			&reservation.SessionID,
			&reservation.Status,
			&reservation.CreatedAt,
			&reservation.UpdatedAt,
			&session.ID,
			&session.StartsAt,
			&session.Capacity,
			&session.SpotsLeft,
			&session.Notes,
			&session.Completed,
			&session.CreatedAt,
			&session.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		session.StartsAt = localWallClock(session.StartsAt)
		reservation.Session = &session
		reservations = append(reservations, &reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}

func (r *ReservationRepositoryImpl) ListBySession(ctx context.Context, sessionID int) ([]*model.Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reservations
		WHERE session_id = $1
		ORDER BY created_at ASC
	`, reservationColumns)

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReservations(rows)
}

func (r *ReservationRepositoryImpl) ListBySessionWithLock(ctx context.Context, tx pgx.Tx, sessionID int) ([]*model.Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reservations
		WHERE session_id = $1
		ORDER BY created_at ASC
		FOR UPDATE
	`, reservationColumns)

	rows, err := tx.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReservations(rows)
}

func collectReservations(rows pgx.Rows) ([]*model.Reservation, error) {
	reservations := make([]*model.Reservation, 0)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}

func (r *ReservationRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.ReservationStatus) (*model.Reservation, error) {
	query := fmt.Sprintf(`
		UPDATE reservations
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING %s
	`, reservationColumns)

	reservation, err := scanReservation(tx.QueryRow(ctx, query, status, time.Now().UTC(), id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}

	return reservation, nil
}

func (r *ReservationRepositoryImpl) MarkAttendedBySession(ctx context.Context, tx pgx.Tx, sessionID int) ([]int, error) {
	// settles every active reservation on the session and reports the
	// member ids owing a credit
	query := `
		UPDATE reservations
		SET status = $1, updated_at = $2
		WHERE session_id = $3 AND status = $4
		RETURNING member_id
	`

	rows, err := tx.Query(ctx, query,
		model.ReservationStatusAttended, time.Now().UTC(),
		sessionID, model.ReservationStatusActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberIDs := make([]int, 0)
	for rows.Next() {
		var memberID int
		if err := rows.Scan(&memberID); err != nil {
			return nil, err
		}
		memberIDs = append(memberIDs, memberID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return memberIDs, nil
}

func (r *ReservationRepositoryImpl) CountActive(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reservations
		WHERE status = $1
	`

	var count int
	err := r.pool.QueryRow(ctx, query, model.ReservationStatusActive).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *ReservationRepositoryImpl) CountAttendedBetween(ctx context.Context, memberID int, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reservations r
		JOIN sessions s ON s.id = r.session_id
		WHERE r.member_id = $1
		  AND r.status = $2
		  AND s.starts_at >= $3
		  AND s.starts_at < $4
	`

	var count int
	err := r.pool.QueryRow(ctx, query, memberID, model.ReservationStatusAttended, from, to).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

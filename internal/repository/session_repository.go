package repository

import (
	"context"
	"time"

	"studio-booking/internal/model"
	apperrors "studio-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) (*model.Session, error)
	ListAll(ctx context.Context) ([]*model.Session, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]*model.Session, error)
	ListMoveCandidates(ctx context.Context, from time.Time, excludeSessionID int) ([]*model.Session, error)
	FindByID(ctx context.Context, id int) (*model.Session, error)
	Count(ctx context.Context) (int, error)
	CountUpcoming(ctx context.Context, from time.Time) (int, error)
	DayUsage(ctx context.Context, dayStart, dayEnd time.Time) (booked int, capacity int, err error)
	HasDue(ctx context.Context, now time.Time) (bool, error)

	// Transaction methods
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Session, error)
	FindDueWithLock(ctx context.Context, tx pgx.Tx, now time.Time) ([]*model.Session, error)
	AdjustSpots(ctx context.Context, tx pgx.Tx, id int, delta int) error
	MarkCompleted(ctx context.Context, tx pgx.Tx, id int) error
	Delete(ctx context.Context, tx pgx.Tx, id int) error
}

type SessionRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &SessionRepositoryImpl{
		pool: pool,
	}
}

// localWallClock 重新綁回本地時區
// pgx 的 timestamp 編解碼捨棄時區：寫入存 wall clock，掃描標成 UTC。
// 不重綁的話，非 UTC 主機上掃出的 starts_at 與 time.Now() 比較會偏移。
func localWallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local)
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *model.Session) (*model.Session, error) {
	query := `
		INSERT INTO sessions (starts_at, capacity, spots_left, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, starts_at, capacity, spots_left, notes, completed, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		session.StartsAt, session.Capacity, session.SpotsLeft, session.Notes,
	).Scan(
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

	return session, nil
}

func (r *SessionRepositoryImpl) ListAll(ctx context.Context) ([]*model.Session, error) {
	query := `
		SELECT id, starts_at, capacity, spots_left, notes, completed, created_at, updated_at
		FROM sessions
		ORDER BY starts_at ASC
	`

	return r.querySessions(ctx, query)
}

func (r *SessionRepositoryImpl) ListUpcoming(ctx context.Context, from time.Time) ([]*model.Session, error) {
	query := `
		SELECT id, starts_at, capacity, spots_left, notes, completed, created_at, updated_at
		FROM sessions
		WHERE starts_at >= $1
		ORDER BY starts_at ASC
	`

	return r.querySessions(ctx, query, from)
}

func (r *SessionRepositoryImpl) ListMoveCandidates(ctx context.Context, from time.Time, excludeSessionID int) ([]*model.Session, error) {
	query := `
		SELECT id, starts_at, capacity, spots_left, notes, completed, created_at, updated_at
		FROM sessions
		WHERE starts_at >= $1 AND id != $2 AND spots_left > 0
		ORDER BY starts_at ASC
	`

	return r.querySessions(ctx, query, from, excludeSessionID)
}

func (r *SessionRepositoryImpl) querySessions(ctx context.Context, query string, args ...interface{}) ([]*model.Session, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

func scanSessions(rows pgx.Rows) ([]*model.Session, error) {
	sessions := make([]*model.Session, 0)
	for rows.Next() {
		var session model.Session
		err := rows.Scan(
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
		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *SessionRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Session, error) {
	query := `
		SELECT id, starts_at, capacity, spots_left, notes, completed, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`

	var session model.Session
	err := r.pool.QueryRow(ctx, query, id).Scan(
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
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, err
	}

	session.StartsAt = localWallClock(session.StartsAt)

	return &session, nil
}

func (r *SessionRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Session, error) {
	query := `
		SELECT id, starts_at, capacity, spots_left, notes, completed, created_at, updated_at
		FROM sessions
		WHERE id = $1
		FOR UPDATE
	`

	var session model.Session
	err := tx.QueryRow(ctx, query, id).Scan(
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
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, err
	}

	session.StartsAt = localWallClock(session.StartsAt)

	return &session, nil
}

func (r *SessionRepositoryImpl) FindDueWithLock(ctx context.Context, tx pgx.Tx, now time.Time) ([]*model.Session, error) {
	query := `
		SELECT id, starts_at, capacity, spots_left, notes, completed, created_at, updated_at
		FROM sessions
		WHERE completed = false AND starts_at < $1
		ORDER BY starts_at ASC
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *SessionRepositoryImpl) HasDue(ctx context.Context, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM sessions
			WHERE completed = false AND starts_at < $1
		)
	`

	var due bool
	err := r.pool.QueryRow(ctx, query, now).Scan(&due)
	if err != nil {
		return false, err
	}

	return due, nil
}

func (r *SessionRepositoryImpl) AdjustSpots(ctx context.Context, tx pgx.Tx, id int, delta int) error {
	// the WHERE guard keeps spots_left inside [0, capacity]
	query := `
		UPDATE sessions
		SET spots_left = spots_left + $1, updated_at = $2
		WHERE id = $3
		  AND spots_left + $1 >= 0
		  AND spots_left + $1 <= capacity
	`

	result, err := tx.Exec(ctx, query, delta, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrCapacityBounds
	}

	return nil
}

func (r *SessionRepositoryImpl) MarkCompleted(ctx context.Context, tx pgx.Tx, id int) error {
	// one-way flag, idempotent
	query := `
		UPDATE sessions
		SET completed = true, updated_at = $1
		WHERE id = $2
	`

	result, err := tx.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}

	return nil
}

func (r *SessionRepositoryImpl) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	// reservations go with the session via ON DELETE CASCADE
	query := `
		DELETE FROM sessions
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}

	return nil
}

func (r *SessionRepositoryImpl) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SessionRepositoryImpl) CountUpcoming(ctx context.Context, from time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE starts_at >= $1`, from).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SessionRepositoryImpl) DayUsage(ctx context.Context, dayStart, dayEnd time.Time) (int, int, error) {
	query := `
		SELECT COALESCE(SUM(capacity - spots_left), 0), COALESCE(SUM(capacity), 0)
		FROM sessions
		WHERE starts_at >= $1 AND starts_at < $2
	`

	var booked, capacity int
	err := r.pool.QueryRow(ctx, query, dayStart, dayEnd).Scan(&booked, &capacity)
	if err != nil {
		return 0, 0, err
	}

	return booked, capacity, nil
}

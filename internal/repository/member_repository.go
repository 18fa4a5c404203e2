package repository

import (
	"context"
	"errors"
	"time"

	"studio-booking/internal/model"
	apperrors "studio-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) (*model.Member, error)
	List(ctx context.Context) ([]*model.Member, error)
	FindByID(ctx context.Context, id int) (*model.Member, error)
	FindByName(ctx context.Context, name string) (*model.Member, error)
	AdjustCredits(ctx context.Context, id int, delta int) (*model.Member, error)
	Delete(ctx context.Context, id int) error

	// Transaction methods
	RefundCredit(ctx context.Context, tx pgx.Tx, id int) error
	DebitAttendance(ctx context.Context, tx pgx.Tx, memberIDs []int) error
}

type MemberRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &MemberRepositoryImpl{
		pool: pool,
	}
}

func (r *MemberRepositoryImpl) Create(ctx context.Context, member *model.Member) (*model.Member, error) {
	query := `
		INSERT INTO members (full_name, credits)
		VALUES ($1, $2)
		RETURNING id, full_name, credits, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		member.FullName, member.Credits,
	).Scan(
		&member.ID,
		&member.FullName,
		&member.Credits,
		&member.CreatedAt,
		&member.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrDuplicateMember
		}
		return nil, err
	}

	return member, nil
}

func (r *MemberRepositoryImpl) List(ctx context.Context) ([]*model.Member, error) {
	query := `
		SELECT id, full_name, credits, created_at, updated_at
		FROM members
		ORDER BY full_name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*model.Member, 0)
	for rows.Next() {
		var member model.Member
		err := rows.Scan(
			&member.ID,
			&member.FullName,
			&member.Credits,
			&member.CreatedAt,
			&member.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, &member)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *MemberRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Member, error) {
	query := `
		SELECT id, full_name, credits, created_at, updated_at
		FROM members
		WHERE id = $1
	`

	var member model.Member
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&member.ID,
		&member.FullName,
		&member.Credits,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepositoryImpl) FindByName(ctx context.Context, name string) (*model.Member, error) {
	query := `
		SELECT id, full_name, credits, created_at, updated_at
		FROM members
		WHERE lower(full_name) = lower($1)
	`

	var member model.Member
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&member.ID,
		&member.FullName,
		&member.Credits,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepositoryImpl) AdjustCredits(ctx context.Context, id int, delta int) (*model.Member, error) {
	// balance floors at zero, never an error
	query := `
		UPDATE members
		SET credits = GREATEST(0, credits + $1), updated_at = $2
		WHERE id = $3
		RETURNING id, full_name, credits, created_at, updated_at
	`

	var member model.Member
	err := r.pool.QueryRow(ctx, query, delta, time.Now().UTC(), id).Scan(
		&member.ID,
		&member.FullName,
		&member.Credits,
		&member.CreatedAt,
		&member.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, err
	}

	return &member, nil
}

func (r *MemberRepositoryImpl) Delete(ctx context.Context, id int) error {
	// reservations keep their member_id; the directory does not cascade
	query := `
		DELETE FROM members
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrMemberNotFound
	}

	return nil
}

func (r *MemberRepositoryImpl) RefundCredit(ctx context.Context, tx pgx.Tx, id int) error {
	query := `
		UPDATE members
		SET credits = credits + 1, updated_at = $1
		WHERE id = $2
	`

	result, err := tx.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrMemberNotFound
	}

	return nil
}

func (r *MemberRepositoryImpl) DebitAttendance(ctx context.Context, tx pgx.Tx, memberIDs []int) error {
	if len(memberIDs) == 0 {
		return nil
	}

	// members already at zero are skipped, not an error
	query := `
		UPDATE members
		SET credits = credits - 1, updated_at = $1
		WHERE id = ANY($2) AND credits > 0
	`

	_, err := tx.Exec(ctx, query, time.Now().UTC(), memberIDs)
	return err
}

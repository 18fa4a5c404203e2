package service

import (
	"context"
	"errors"
	"time"

	"studio-booking/internal/cache"
	"studio-booking/internal/model"
	"studio-booking/internal/repository"
	apperrors "studio-booking/pkg/app_errors"
	"studio-booking/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type BookingService interface {
	// Reserve 預約課程（佔用名額，點數於結算時扣除）
	Reserve(ctx context.Context, req model.CreateReservationRequest) (*model.Reservation, error)
	// Cancel 會員取消（開課前 24 小時關閉）
	Cancel(ctx context.Context, reservationID int, actorID int) error
	// Move 改期：原預約標記 moved，於目標時段建立新預約
	Move(ctx context.Context, reservationID int, targetSessionID int, actorID int) (*model.Reservation, error)
	// AdminCancelRefund 管理員取消並退還（attended 退點數、active 退名額）
	// 除 canceled 外任何狀態皆可取消，含 moved 與 no_show，不受狀態機限制。
	AdminCancelRefund(ctx context.Context, reservationID int) error
	// MarkNoShow 管理員將 attended 更正為 no_show（點數不退）
	MarkNoShow(ctx context.Context, reservationID int) error
	MoveCandidates(ctx context.Context, reservationID int) ([]*model.Session, error)
}

type BookingServiceImpl struct {
	pool            *pgxpool.Pool
	reservationRepo repository.ReservationRepository
	sessionRepo     repository.SessionRepository
	memberRepo      repository.MemberRepository
	scheduleCache   cache.RedisScheduleCache
	cancelCutoff    time.Duration
}

func NewBookingService(
	pool *pgxpool.Pool,
	reservationRepo repository.ReservationRepository,
	sessionRepo repository.SessionRepository,
	memberRepo repository.MemberRepository,
	scheduleCache cache.RedisScheduleCache,
	cancelCutoff time.Duration,
) BookingService {
	return &BookingServiceImpl{
		pool:            pool,
		reservationRepo: reservationRepo,
		sessionRepo:     sessionRepo,
		memberRepo:      memberRepo,
		scheduleCache:   scheduleCache,
		cancelCutoff:    cancelCutoff,
	}
}

func (s *BookingServiceImpl) Reserve(ctx context.Context, req model.CreateReservationRequest) (*model.Reservation, error) {
	member, err := s.memberRepo.FindByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}

	if member.Credits <= 0 {
		return nil, apperrors.ErrNoCredits
	}

	_, err = s.reservationRepo.FindActive(ctx, req.MemberID, req.SessionID)
	if err == nil {
		return nil, apperrors.ErrAlreadyBooked
	}
	if !errors.Is(err, apperrors.ErrReservationNotFound) {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// row lock closes the last-spot race between concurrent reservations
	session, err := s.sessionRepo.FindByIDWithLock(ctx, tx, req.SessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if session.Completed || session.IsPast(now) {
		return nil, apperrors.ErrSessionClosed
	}
	if session.SpotsLeft <= 0 {
		return nil, apperrors.ErrSessionFull
	}

	if err := s.sessionRepo.AdjustSpots(ctx, tx, session.ID, -1); err != nil {
		if errors.Is(err, apperrors.ErrCapacityBounds) {
			return nil, apperrors.ErrSessionFull
		}
		return nil, err
	}

	reservation := &model.Reservation{
		Reference:  uuid.New(),
		MemberID:   member.ID,
		MemberName: member.FullName,
		SessionID:  session.ID,
		Status:     model.ReservationStatusActive,
	}

	created, err := s.reservationRepo.Create(ctx, tx, reservation)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.invalidateSchedule(ctx)

	return created, nil
}

func (s *BookingServiceImpl) Cancel(ctx context.Context, reservationID int, actorID int) error {
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}

	if reservation.MemberID != actorID {
		return apperrors.ErrUnauthorized
	}
	if !reservation.IsActive() {
		return apperrors.ErrNotActive
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	session, err := s.sessionRepo.FindByIDWithLock(ctx, tx, reservation.SessionID)
	if err != nil {
		return err
	}

	now := time.Now()
	if session.StartsAt.Sub(now) < s.cancelCutoff {
		return apperrors.ErrTooLateToCancel
	}
	if session.IsPast(now) {
		return apperrors.ErrSessionPast
	}

	if _, err := s.reservationRepo.UpdateStatus(ctx, tx, reservation.ID, model.ReservationStatusCanceled); err != nil {
		return err
	}

	if err := s.sessionRepo.AdjustSpots(ctx, tx, session.ID, 1); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.invalidateSchedule(ctx)

	return nil
}

func (s *BookingServiceImpl) Move(ctx context.Context, reservationID int, targetSessionID int, actorID int) (*model.Reservation, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if reservation.MemberID != actorID {
		return nil, apperrors.ErrUnauthorized
	}
	if !reservation.IsActive() {
		return nil, apperrors.ErrNotActive
	}
	if reservation.SessionID == targetSessionID {
		return nil, apperrors.ErrAlreadyBooked
	}

	// 目標課堂已有有效預約時不可改期
	if _, err := s.reservationRepo.FindActive(ctx, reservation.MemberID, targetSessionID); err == nil {
		return nil, apperrors.ErrAlreadyBooked
	} else if !errors.Is(err, apperrors.ErrReservationNotFound) {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// lock both sessions in id order so concurrent moves cannot deadlock
	firstID, secondID := reservation.SessionID, targetSessionID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := s.sessionRepo.FindByIDWithLock(ctx, tx, firstID)
	if err != nil {
		return nil, err
	}
	second, err := s.sessionRepo.FindByIDWithLock(ctx, tx, secondID)
	if err != nil {
		return nil, err
	}
	target := second
	if first.ID == targetSessionID {
		target = first
	}

	now := time.Now()
	if target.IsPast(now) {
		return nil, apperrors.ErrTargetPast
	}
	if target.SpotsLeft <= 0 {
		return nil, apperrors.ErrTargetFull
	}

	// moved is a terminal audit marker; the member gets a fresh
	// reservation on the target session
	if _, err := s.reservationRepo.UpdateStatus(ctx, tx, reservation.ID, model.ReservationStatusMoved); err != nil {
		return nil, err
	}

	if err := s.sessionRepo.AdjustSpots(ctx, tx, reservation.SessionID, 1); err != nil {
		return nil, err
	}

	if err := s.sessionRepo.AdjustSpots(ctx, tx, target.ID, -1); err != nil {
		if errors.Is(err, apperrors.ErrCapacityBounds) {
			return nil, apperrors.ErrTargetFull
		}
		return nil, err
	}

	created, err := s.reservationRepo.Create(ctx, tx, &model.Reservation{
		Reference:  uuid.New(),
		MemberID:   reservation.MemberID,
		MemberName: reservation.MemberName,
		SessionID:  target.ID,
		Status:     model.ReservationStatusActive,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.invalidateSchedule(ctx)

	return created, nil
}

func (s *BookingServiceImpl) AdminCancelRefund(ctx context.Context, reservationID int) error {
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}

	// already canceled is a no-op, not a failure; every other status is
	// cancellable here, bypassing the member-facing transition map
	if reservation.Status == model.ReservationStatusCanceled {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	switch reservation.Status {
	case model.ReservationStatusAttended:
		// the credit was spent at settlement, give it back; a deleted
		// member simply has nowhere to receive it
		err := s.memberRepo.RefundCredit(ctx, tx, reservation.MemberID)
		if err != nil && !errors.Is(err, apperrors.ErrMemberNotFound) {
			return err
		}
	case model.ReservationStatusActive:
		session, err := s.sessionRepo.FindByIDWithLock(ctx, tx, reservation.SessionID)
		if err != nil {
			return err
		}
		if !session.Completed {
			if err := s.sessionRepo.AdjustSpots(ctx, tx, session.ID, 1); err != nil {
				return err
			}
		}
	}

	if _, err := s.reservationRepo.UpdateStatus(ctx, tx, reservation.ID, model.ReservationStatusCanceled); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.invalidateSchedule(ctx)

	return nil
}

func (s *BookingServiceImpl) MarkNoShow(ctx context.Context, reservationID int) error {
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}

	if !reservation.Status.CanTransitionTo(model.ReservationStatusNoShow) {
		return apperrors.ErrNotAttended
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := s.reservationRepo.UpdateStatus(ctx, tx, reservation.ID, model.ReservationStatusNoShow); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *BookingServiceImpl) MoveCandidates(ctx context.Context, reservationID int) ([]*model.Session, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	return s.sessionRepo.ListMoveCandidates(ctx, startOfDay(time.Now()), reservation.SessionID)
}

func (s *BookingServiceImpl) invalidateSchedule(ctx context.Context) {
	if err := s.scheduleCache.InvalidateUpcoming(ctx); err != nil {
		logger.WithComponent("booking").Warn("failed to invalidate schedule cache", zap.Error(err))
	}
}

package service

import (
	"context"
	"time"

	"studio-booking/internal/cache"
	"studio-booking/internal/repository"
	"studio-booking/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// sweepLockTTL bounds how long a crashed sweep can block the next one.
const sweepLockTTL = 10 * time.Second

type SettlementService interface {
	// Sweep 結算：關閉已開始的課程並結算出席與點數
	// 冪等，每個請求進入系統前執行一次。
	Sweep(ctx context.Context, now time.Time) error
}

type SettlementServiceImpl struct {
	pool            *pgxpool.Pool
	sessionRepo     repository.SessionRepository
	reservationRepo repository.ReservationRepository
	memberRepo      repository.MemberRepository
	scheduleCache   cache.RedisScheduleCache
}

func NewSettlementService(
	pool *pgxpool.Pool,
	sessionRepo repository.SessionRepository,
	reservationRepo repository.ReservationRepository,
	memberRepo repository.MemberRepository,
	scheduleCache cache.RedisScheduleCache,
) SettlementService {
	return &SettlementServiceImpl{
		pool:            pool,
		sessionRepo:     sessionRepo,
		reservationRepo: reservationRepo,
		memberRepo:      memberRepo,
		scheduleCache:   scheduleCache,
	}
}

func (s *SettlementServiceImpl) Sweep(ctx context.Context, now time.Time) error {
	// cheap existence probe first so the common case opens no transaction
	due, err := s.sessionRepo.HasDue(ctx, now)
	if err != nil {
		return err
	}
	if !due {
		return nil
	}

	log := logger.WithComponent("settlement")

	// only one entry runs the sweep at a time; losers skip, the winner's
	// commit is visible to them through the row locks below anyway
	locked, err := s.scheduleCache.AcquireSweepLock(ctx, sweepLockTTL)
	if err != nil {
		log.Warn("sweep lock unavailable, sweeping without it", zap.Error(err))
	} else if !locked {
		return nil
	} else {
		defer func() {
			if err := s.scheduleCache.ReleaseSweepLock(context.Background()); err != nil {
				log.Warn("failed to release sweep lock", zap.Error(err))
			}
		}()
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	sessions, err := s.sessionRepo.FindDueWithLock(ctx, tx, now)
	if err != nil {
		return err
	}

	for _, session := range sessions {
		if err := s.sessionRepo.MarkCompleted(ctx, tx, session.ID); err != nil {
			return err
		}

		memberIDs, err := s.reservationRepo.MarkAttendedBySession(ctx, tx, session.ID)
		if err != nil {
			return err
		}

		if err := s.memberRepo.DebitAttendance(ctx, tx, memberIDs); err != nil {
			return err
		}

		log.Info("session settled",
			zap.Int("session_id", session.ID),
			zap.Int("attended", len(memberIDs)),
		)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if err := s.scheduleCache.InvalidateUpcoming(ctx); err != nil {
		log.Warn("failed to invalidate schedule cache", zap.Error(err))
	}

	return nil
}

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

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CreateSessionParams struct {
	StartsAt time.Time
	Capacity int
	Notes    *string
}

type SessionService interface {
	// ListUpcoming 今天（含已開始）之後的課程，Redis 快取
	ListUpcoming(ctx context.Context) ([]*model.Session, error)
	ListAll(ctx context.Context) ([]*model.Session, error)
	GetByID(ctx context.Context, id int) (*model.Session, error)
	Create(ctx context.Context, params CreateSessionParams) (*model.Session, error)
	// Delete 刪除未開始的課程：attended 退點數、全部標記 canceled 後連同預約刪除
	Delete(ctx context.Context, id int) error
	Participants(ctx context.Context, sessionID int) (*model.Session, []*model.Reservation, error)
	AdminDashboard(ctx context.Context) (*model.AdminDashboard, error)
}

type SessionServiceImpl struct {
	pool            *pgxpool.Pool
	repo            repository.SessionRepository
	reservationRepo repository.ReservationRepository
	memberRepo      repository.MemberRepository
	scheduleCache   cache.RedisScheduleCache
	cacheTTL        time.Duration
}

func NewSessionService(
	pool *pgxpool.Pool,
	repo repository.SessionRepository,
	reservationRepo repository.ReservationRepository,
	memberRepo repository.MemberRepository,
	scheduleCache cache.RedisScheduleCache,
	cacheTTL time.Duration,
) SessionService {
	return &SessionServiceImpl{
		pool:            pool,
		repo:            repo,
		reservationRepo: reservationRepo,
		memberRepo:      memberRepo,
		scheduleCache:   scheduleCache,
		cacheTTL:        cacheTTL,
	}
}

func startOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (s *SessionServiceImpl) ListUpcoming(ctx context.Context) ([]*model.Session, error) {
	log := logger.WithComponent("session")

	cached, hit, err := s.scheduleCache.GetUpcoming(ctx)
	if err != nil {
		log.Warn("schedule cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	sessions, err := s.repo.ListUpcoming(ctx, startOfDay(time.Now()))
	if err != nil {
		return nil, err
	}

	if err := s.scheduleCache.SetUpcoming(ctx, sessions, s.cacheTTL); err != nil {
		log.Warn("schedule cache write failed", zap.Error(err))
	}

	return sessions, nil
}

func (s *SessionServiceImpl) ListAll(ctx context.Context) ([]*model.Session, error) {
	return s.repo.ListAll(ctx)
}

func (s *SessionServiceImpl) GetByID(ctx context.Context, id int) (*model.Session, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *SessionServiceImpl) Create(ctx context.Context, params CreateSessionParams) (*model.Session, error) {
	if params.Capacity < 0 {
		return nil, apperrors.ErrInvalidInput
	}

	session := &model.Session{
		StartsAt:  params.StartsAt,
		Capacity:  params.Capacity,
		SpotsLeft: params.Capacity,
		Notes:     params.Notes,
	}

	created, err := s.repo.Create(ctx, session)
	if err != nil {
		return nil, err
	}

	s.invalidateSchedule(ctx)

	return created, nil
}

func (s *SessionServiceImpl) Delete(ctx context.Context, id int) error {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if session.IsPast(time.Now()) {
		return apperrors.ErrSessionPast
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	reservations, err := s.reservationRepo.ListBySessionWithLock(ctx, tx, session.ID)
	if err != nil {
		return err
	}

	for _, reservation := range reservations {
		// attendance already cost a credit, return it before the rows go
		if reservation.Status == model.ReservationStatusAttended {
			err := s.memberRepo.RefundCredit(ctx, tx, reservation.MemberID)
			if err != nil && !errors.Is(err, apperrors.ErrMemberNotFound) {
				return err
			}
		}
		// every reservation ends canceled, whatever it was before
		if _, err := s.reservationRepo.UpdateStatus(ctx, tx, reservation.ID, model.ReservationStatusCanceled); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, tx, session.ID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.invalidateSchedule(ctx)

	return nil
}

func (s *SessionServiceImpl) Participants(ctx context.Context, sessionID int) (*model.Session, []*model.Reservation, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	reservations, err := s.reservationRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	return session, reservations, nil
}

func (s *SessionServiceImpl) AdminDashboard(ctx context.Context) (*model.AdminDashboard, error) {
	now := time.Now()
	today := startOfDay(now)

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	upcoming, err := s.repo.CountUpcoming(ctx, today)
	if err != nil {
		return nil, err
	}

	active, err := s.reservationRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	booked, capacity, err := s.repo.DayUsage(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	return &model.AdminDashboard{
		TotalSessions:      total,
		UpcomingSessions:   upcoming,
		ActiveReservations: active,
		TodayBooked:        booked,
		TodayCapacity:      capacity,
	}, nil
}

func (s *SessionServiceImpl) invalidateSchedule(ctx context.Context) {
	if err := s.scheduleCache.InvalidateUpcoming(ctx); err != nil {
		logger.WithComponent("session").Warn("failed to invalidate schedule cache", zap.Error(err))
	}
}

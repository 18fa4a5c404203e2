package service

import (
	"context"
	"errors"
	"time"

	"studio-booking/internal/model"
	"studio-booking/internal/repository"
	apperrors "studio-booking/pkg/app_errors"
)

type MemberService interface {
	// Register 建立會員，名稱正規化後不得重複（不分大小寫）
	Register(ctx context.Context, fullName string, credits int) (*model.Member, error)
	// Login 以姓名登入，只在這個邊界做不分大小寫比對
	Login(ctx context.Context, name string) (*model.Member, error)
	List(ctx context.Context) ([]*model.Member, error)
	GetByID(ctx context.Context, id int) (*model.Member, error)
	AdjustCredits(ctx context.Context, id int, delta int) (*model.Member, error)
	Delete(ctx context.Context, id int) error
	Dashboard(ctx context.Context, memberID int) (*model.MemberDashboard, error)
}

type MemberServiceImpl struct {
	repo            repository.MemberRepository
	reservationRepo repository.ReservationRepository
}

func NewMemberService(repo repository.MemberRepository, reservationRepo repository.ReservationRepository) MemberService {
	return &MemberServiceImpl{
		repo:            repo,
		reservationRepo: reservationRepo,
	}
}

func (s *MemberServiceImpl) Register(ctx context.Context, fullName string, credits int) (*model.Member, error) {
	canonical := model.CanonicalName(fullName)
	if canonical == "" {
		return nil, apperrors.ErrInvalidInput
	}

	if credits < 0 {
		credits = 0
	}

	_, err := s.repo.FindByName(ctx, canonical)
	if err == nil {
		return nil, apperrors.ErrDuplicateMember
	}
	if !errors.Is(err, apperrors.ErrMemberNotFound) {
		return nil, err
	}

	return s.repo.Create(ctx, &model.Member{
		FullName: canonical,
		Credits:  credits,
	})
}

func (s *MemberServiceImpl) Login(ctx context.Context, name string) (*model.Member, error) {
	canonical := model.CanonicalName(name)
	if canonical == "" {
		return nil, apperrors.ErrInvalidInput
	}

	return s.repo.FindByName(ctx, canonical)
}

func (s *MemberServiceImpl) List(ctx context.Context) ([]*model.Member, error) {
	return s.repo.List(ctx)
}

func (s *MemberServiceImpl) GetByID(ctx context.Context, id int) (*model.Member, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *MemberServiceImpl) AdjustCredits(ctx context.Context, id int, delta int) (*model.Member, error) {
	return s.repo.AdjustCredits(ctx, id, delta)
}

func (s *MemberServiceImpl) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *MemberServiceImpl) Dashboard(ctx context.Context, memberID int) (*model.MemberDashboard, error) {
	member, err := s.repo.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	active, err := s.reservationRepo.ListActiveByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	attended, err := s.reservationRepo.CountAttendedBetween(ctx, memberID, monthStart, nextMonth)
	if err != nil {
		return nil, err
	}

	return &model.MemberDashboard{
		Member:             member,
		ActiveReservations: active,
		MonthlyAttended:    attended,
	}, nil
}

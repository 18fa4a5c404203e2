package mocks

import (
	"context"

	"studio-booking/internal/model"

	"github.com/stretchr/testify/mock"
)

type MemberServiceMock struct {
	mock.Mock
}

func NewMemberServiceMock() *MemberServiceMock {
	return &MemberServiceMock{}
}

func (m *MemberServiceMock) Register(ctx context.Context, fullName string, credits int) (*model.Member, error) {
	args := m.Called(ctx, fullName, credits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MemberServiceMock) Login(ctx context.Context, name string) (*model.Member, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MemberServiceMock) List(ctx context.Context) ([]*model.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Member), args.Error(1)
}

func (m *MemberServiceMock) GetByID(ctx context.Context, id int) (*model.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MemberServiceMock) AdjustCredits(ctx context.Context, id int, delta int) (*model.Member, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MemberServiceMock) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MemberServiceMock) Dashboard(ctx context.Context, memberID int) (*model.MemberDashboard, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MemberDashboard), args.Error(1)
}

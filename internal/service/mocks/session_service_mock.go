package mocks

import (
	"context"

	"studio-booking/internal/model"
	"studio-booking/internal/service"

	"github.com/stretchr/testify/mock"
)

type SessionServiceMock struct {
	mock.Mock
}

func NewSessionServiceMock() *SessionServiceMock {
	return &SessionServiceMock{}
}

func (m *SessionServiceMock) ListUpcoming(ctx context.Context) ([]*model.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Session), args.Error(1)
}

func (m *SessionServiceMock) ListAll(ctx context.Context) ([]*model.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Session), args.Error(1)
}

func (m *SessionServiceMock) GetByID(ctx context.Context, id int) (*model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *SessionServiceMock) Create(ctx context.Context, params service.CreateSessionParams) (*model.Session, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *SessionServiceMock) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *SessionServiceMock) Participants(ctx context.Context, sessionID int) (*model.Session, []*model.Reservation, error) {
	args := m.Called(ctx, sessionID)
	var session *model.Session
	if args.Get(0) != nil {
		session = args.Get(0).(*model.Session)
	}
	var reservations []*model.Reservation
	if args.Get(1) != nil {
		reservations = args.Get(1).([]*model.Reservation)
	}
	return session, reservations, args.Error(2)
}

func (m *SessionServiceMock) AdminDashboard(ctx context.Context) (*model.AdminDashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminDashboard), args.Error(1)
}

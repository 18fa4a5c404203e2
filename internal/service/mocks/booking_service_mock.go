package mocks

import (
	"context"

	"studio-booking/internal/model"

	"github.com/stretchr/testify/mock"
)

type BookingServiceMock struct {
	mock.Mock
}

func NewBookingServiceMock() *BookingServiceMock {
	return &BookingServiceMock{}
}

func (m *BookingServiceMock) Reserve(ctx context.Context, req model.CreateReservationRequest) (*model.Reservation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *BookingServiceMock) Cancel(ctx context.Context, reservationID int, actorID int) error {
	args := m.Called(ctx, reservationID, actorID)
	return args.Error(0)
}

func (m *BookingServiceMock) Move(ctx context.Context, reservationID int, targetSessionID int, actorID int) (*model.Reservation, error) {
	args := m.Called(ctx, reservationID, targetSessionID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *BookingServiceMock) AdminCancelRefund(ctx context.Context, reservationID int) error {
	args := m.Called(ctx, reservationID)
	return args.Error(0)
}

func (m *BookingServiceMock) MarkNoShow(ctx context.Context, reservationID int) error {
	args := m.Called(ctx, reservationID)
	return args.Error(0)
}

func (m *BookingServiceMock) MoveCandidates(ctx context.Context, reservationID int) ([]*model.Session, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Session), args.Error(1)
}

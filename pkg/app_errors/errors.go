package apperrors

import "errors"

var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrReservationNotFound = errors.New("reservation not found")

	ErrDuplicateMember = errors.New("member name already registered")
	ErrSessionClosed   = errors.New("session is completed or in the past")
	ErrSessionFull     = errors.New("session has no spots left")
	ErrNoCredits       = errors.New("member has no credits left")
	ErrAlreadyBooked   = errors.New("member already booked this session")
	ErrNotActive       = errors.New("reservation is not active")
	ErrTooLateToCancel = errors.New("cancellation window has closed")
	ErrSessionPast     = errors.New("session is in the past")
	ErrTargetPast      = errors.New("target session is in the past")
	ErrTargetFull      = errors.New("target session has no spots left")
	ErrUnauthorized    = errors.New("reservation belongs to another member")
	ErrCapacityBounds  = errors.New("spots adjustment outside [0, capacity]")
	ErrNotAttended     = errors.New("reservation was not marked attended")

	ErrInvalidInput        = errors.New("invalid input")
	ErrInternalServerError = errors.New("internal server error")
)

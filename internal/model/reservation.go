package model

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus 預約狀態類型
type ReservationStatus string

const (
	ReservationStatusActive   ReservationStatus = "active"
	ReservationStatusCanceled ReservationStatus = "canceled"
	ReservationStatusMoved    ReservationStatus = "moved"
	ReservationStatusAttended ReservationStatus = "attended"
	ReservationStatusNoShow   ReservationStatus = "no_show"
)

// IsValid 驗證狀態是否有效
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationStatusActive, ReservationStatusCanceled, ReservationStatusMoved,
		ReservationStatusAttended, ReservationStatusNoShow:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
// canceled 可由 active 與 attended 進入（管理員退款）；moved 與 no_show 為終態。
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	transitions := map[ReservationStatus][]ReservationStatus{
		ReservationStatusActive:   {ReservationStatusAttended, ReservationStatusCanceled, ReservationStatusMoved},
		ReservationStatusAttended: {ReservationStatusCanceled, ReservationStatusNoShow},
		ReservationStatusCanceled: {},
		ReservationStatusMoved:    {},
		ReservationStatusNoShow:   {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// Reservation 預約模型
//
// MemberID is a soft reference: no foreign key, so deleting a member
// leaves its reservations untouched. MemberName is a display snapshot
// taken at booking time.
type Reservation struct {
	ID         int               `json:"id" db:"id"`
	Reference  uuid.UUID         `json:"reference" db:"reference"`
	MemberID   int               `json:"member_id" db:"member_id"`
	MemberName string            `json:"member_name" db:"member_name"`
	SessionID  int               `json:"session_id" db:"session_id"`
	Status     ReservationStatus `json:"status" db:"status"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" db:"updated_at"`

	Session *Session `json:"session,omitempty" db:"-"`
}

// IsActive 檢查預約是否仍佔用名額
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationStatusActive
}

// CreateReservationRequest 預約請求
type CreateReservationRequest struct {
	MemberID  int `json:"member_id" binding:"required"`
	SessionID int `json:"session_id" binding:"required"`
}

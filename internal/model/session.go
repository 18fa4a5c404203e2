package model

import "time"

// Session 課程時段模型
type Session struct {
	ID        int       `json:"id" db:"id"`
	StartsAt  time.Time `json:"starts_at" db:"starts_at"`
	Capacity  int       `json:"capacity" db:"capacity"`
	SpotsLeft int       `json:"spots_left" db:"spots_left"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	Completed bool      `json:"completed" db:"completed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsPast 檢查時段是否已開始
func (s *Session) IsPast(now time.Time) bool {
	return s.StartsAt.Before(now)
}

// IsBookable 檢查時段是否可預約
func (s *Session) IsBookable(now time.Time) bool {
	return !s.Completed && !s.IsPast(now) && s.SpotsLeft > 0
}

package model

import (
	"strings"
	"time"
)

type Member struct {
	ID        int       `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Credits   int       `json:"credits" db:"credits"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CanonicalName trims the name and collapses internal whitespace runs to
// single spaces. Stored casing is preserved; comparisons are done
// case-insensitively in the repository.
func CanonicalName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// MemberDashboard 會員儀表板
type MemberDashboard struct {
	Member             *Member        `json:"member"`
	ActiveReservations []*Reservation `json:"active_reservations"`
	MonthlyAttended    int            `json:"monthly_attended"`
}

// AdminDashboard 管理員儀表板
type AdminDashboard struct {
	TotalSessions      int `json:"total_sessions"`
	UpcomingSessions   int `json:"upcoming_sessions"`
	ActiveReservations int `json:"active_reservations"`
	TodayBooked        int `json:"today_booked"`
	TodayCapacity      int `json:"today_capacity"`
}

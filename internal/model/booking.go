package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// ValidBookingStatus reports whether s names a booking status.
func ValidBookingStatus(s string) bool {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a status change is allowed. Cancelled is
// terminal; confirmed can only be cancelled.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCancelled
	}
	return false
}

// Active reports whether the booking still holds its slot.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Booking represents a room reservation for a single date. Date is an ISO
// date (2006-01-02); StartTime and EndTime are wall-clock "15:04" strings
// interpreted as a half-open window.
type Booking struct {
	ID             int64         `gorm:"primaryKey" json:"id"`
	Reference      string        `gorm:"uniqueIndex;size:36;not null" json:"reference"`
	RoomID         int64         `gorm:"index:idx_bookings_room_date;not null" json:"roomId"`
	Date           string        `gorm:"index:idx_bookings_room_date;size:10;not null" json:"date"`
	StartTime      string        `gorm:"size:5;not null" json:"startTime"`
	EndTime        string        `gorm:"size:5;not null" json:"endTime"`
	UserID         int64         `gorm:"index;not null" json:"userId"`
	CourseID       *int64        `json:"courseId,omitempty"`
	Status         BookingStatus `gorm:"size:16;not null" json:"status"`
	ReminderSentAt *time.Time    `json:"-"`
	CreatedAt      time.Time     `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time     `gorm:"not null" json:"-"`

	// Associations
	Room Room `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

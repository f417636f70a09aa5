package model

import "time"

// Room represents a bookable campus room.
type Room struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`

	// Associations
	Maintenance []MaintenancePeriod `gorm:"foreignKey:RoomID" json:"maintenance"`
}

// MaintenancePeriod is an admin-declared date range during which the room is
// unbookable. StartDate and EndDate are inclusive ISO dates (2006-01-02).
type MaintenancePeriod struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	RoomID    int64  `gorm:"index;not null" json:"roomId"`
	StartDate string `gorm:"size:10;not null" json:"startDate"`
	EndDate   string `gorm:"size:10;not null" json:"endDate"`
}

// Covers reports whether the period contains the given ISO date. ISO dates
// compare correctly as strings.
func (m MaintenancePeriod) Covers(date string) bool {
	return m.StartDate <= date && date <= m.EndDate
}

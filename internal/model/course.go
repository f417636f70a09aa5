package model

// Course represents a taught course that timetable entries and lecturer
// bookings reference.
type Course struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Code string `gorm:"uniqueIndex;size:32;not null" json:"code"`
	Name string `gorm:"size:256;not null" json:"name"`
}

package model

import "time"

// TimetableEntry represents one recurring class session. Day is a weekday
// name ("Monday" .. "Sunday"); StartTime and EndTime are "15:04" strings
// interpreted as a half-open window.
type TimetableEntry struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	CourseCode string    `gorm:"index;size:32;not null" json:"courseCode"`
	Subject    string    `gorm:"size:256;not null" json:"subject"`
	RoomID     int64     `gorm:"index;not null" json:"roomId"`
	Day        string    `gorm:"size:16;not null" json:"day"`
	StartTime  string    `gorm:"size:5;not null" json:"startTime"`
	EndTime    string    `gorm:"size:5;not null" json:"endTime"`
	CreatedAt  time.Time `gorm:"not null" json:"-"`
	UpdatedAt  time.Time `gorm:"not null" json:"-"`

	// Associations
	Lecturers []User `gorm:"many2many:timetable_lecturers;" json:"lecturers"`
}

// Weekdays lists the accepted values for TimetableEntry.Day.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ValidWeekday reports whether day names a weekday.
func ValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

package model

import "time"

// Announcement is a portal-wide notice posted by an admin.
type Announcement struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:256;not null" json:"title"`
	Body      string    `gorm:"not null" json:"body"`
	AuthorID  int64     `gorm:"index;not null" json:"authorId"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

package models

import "time"

// Notification is delivered to a single recipient. Rows are created on post
// fan-out or when the mobile shell logs a client-side event, and the only
// permitted mutation is marking one read (false -> true, never back).
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:100" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

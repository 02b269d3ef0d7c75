package models

import "time"

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"` // follow is the only type produced here
	ActorID     int64     `json:"actor_id" gorm:"index"`
	RecipientID int64     `json:"recipient_id" gorm:"index"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

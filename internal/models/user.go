package models

import "time"

// User.ID is the Telegram user id, not independently generated.
type User struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`
	ExamDate    time.Time `gorm:"type:date;not null" json:"exam_date"`
	IsScheduled bool      `gorm:"not null;default:true" json:"is_scheduled"`
}

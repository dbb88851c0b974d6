package models

import "time"

// A user records at most one attempt per distinct answer. Re-selecting the
// same answer is a no-op; answering the same question with a different option
// is a new row.
type Attempt struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"not null;uniqueIndex:idx_attempt_unique" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
	AnswerID    uint      `gorm:"not null;uniqueIndex:idx_attempt_unique" json:"answer_id"`
	Answer      Answer    `gorm:"foreignKey:AnswerID" json:"-"`
	AttemptedAt time.Time `gorm:"autoCreateTime" json:"attempted_at"`
}

package models

import "time"

// The (text, explanation) pair is the sole deduplication key. Text alone is
// insufficient as some questions are similar, e.g. "Which of the following are false:".
type Question struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Text         string     `gorm:"type:text;not null;uniqueIndex:idx_question_dedup" json:"text"`
	Explanation  string     `gorm:"type:text;not null;uniqueIndex:idx_question_dedup" json:"explanation"`
	SourceFileID uint       `gorm:"not null;index" json:"source_file_id"`
	SourceFile   SourceFile `gorm:"foreignKey:SourceFileID" json:"-"`
	Answers      []Answer   `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

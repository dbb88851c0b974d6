package models

// Answer keys are small ordinals: A=0, B=1, up to E=4.
const MaxAnswerKey = 4

var answerLetters = [MaxAnswerKey + 1]string{"A", "B", "C", "D", "E"}

type Answer struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;uniqueIndex:idx_answer_key" json:"question_id"`
	Key        int    `gorm:"not null;uniqueIndex:idx_answer_key" json:"key"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"is_correct"`
}

// KeyLetter maps an answer key ordinal to its letter. Out-of-range keys
// return "?" rather than panicking; ingestion validates the range up front.
func KeyLetter(key int) string {
	if key < 0 || key > MaxAnswerKey {
		return "?"
	}
	return answerLetters[key]
}

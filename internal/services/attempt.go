package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/extrange/mcq-bot/internal/models"

	"gorm.io/gorm"
)

type AttemptService struct {
	db *gorm.DB
}

func NewAttemptService(db *gorm.DB) *AttemptService {
	return &AttemptService{db: db}
}

// Record stores an attempt for (userID, answerID). Recording the same pair
// again is a no-op: the unique constraint resolves concurrent duplicates and
// the original AttemptedAt is preserved on replay. Both the user and the
// answer must exist; otherwise the insert would die on the foreign keys.
func (s *AttemptService) Record(userID int64, answerID uint) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return err
	}

	var answer models.Answer
	if err := s.db.First(&answer, answerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("answer %d: %w", answerID, ErrNotFound)
		}
		return err
	}

	attempt := models.Attempt{UserID: userID, AnswerID: answerID}
	err := s.db.Create(&attempt).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// AttemptedCount returns the number of distinct questions (not attempts) for
// which the user holds at least one attempt. With onlyCorrect, only attempts
// on correct answers qualify.
func (s *AttemptService) AttemptedCount(userID int64, onlyCorrect bool) (int64, error) {
	query := s.db.Model(&models.Attempt{}).
		Joins("JOIN answers ON answers.id = attempts.answer_id").
		Where("attempts.user_id = ?", userID)
	if onlyCorrect {
		query = query.Where("answers.is_correct")
	}

	var count int64
	if err := query.Distinct("answers.question_id").Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return count, nil
}

// AttemptFilter composes optional, independent filters with AND semantics.
type AttemptFilter struct {
	UserID     *int64
	SourceFile string
	Since      *time.Time
}

type AttemptRow struct {
	UserID         int64     `json:"user_id"`
	IsCorrect      bool      `json:"is_correct"`
	SourceFilePath string    `json:"source_file_path"`
	AttemptedAt    time.Time `json:"attempted_at"`
}

// Rows returns a filtered attempt listing, used for admin-style reporting and
// "attempts since instant" windowed counts.
func (s *AttemptService) Rows(filter AttemptFilter) ([]AttemptRow, error) {
	query := s.db.Model(&models.Attempt{}).
		Select("attempts.user_id, answers.is_correct, source_files.path AS source_file_path, attempts.attempted_at").
		Joins("JOIN answers ON answers.id = attempts.answer_id").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Joins("JOIN source_files ON source_files.id = questions.source_file_id").
		Order("attempts.attempted_at")

	if filter.UserID != nil {
		query = query.Where("attempts.user_id = ?", *filter.UserID)
	}
	if filter.SourceFile != "" {
		query = query.Where("source_files.path = ?", filter.SourceFile)
	}
	if filter.Since != nil {
		query = query.Where("attempts.attempted_at >= ?", *filter.Since)
	}

	var rows []AttemptRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return rows, nil
}

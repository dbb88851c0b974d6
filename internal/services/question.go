package services

import (
	"errors"
	"fmt"

	"github.com/extrange/mcq-bot/internal/models"

	"gorm.io/gorm"
)

type QuestionService struct {
	db *gorm.DB
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{db: db}
}

// Count returns the total number of questions, optionally scoped to one
// source file. A scope matching zero questions returns 0, not an error.
func (s *QuestionService) Count(sourceFile string) (int64, error) {
	query := s.db.Model(&models.Question{})
	if sourceFile != "" {
		query = query.
			Joins("JOIN source_files ON source_files.id = questions.source_file_id").
			Where("source_files.path = ?", sourceFile)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

func (s *QuestionService) Get(questionID uint) (*models.Question, error) {
	var question models.Question
	err := s.db.
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("key") }).
		Preload("SourceFile").
		First(&question, questionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("question %d: %w", questionID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// GetByText returns the question with the given text, or nil if none exists.
// Used by the ingestion duplicate-detection path.
func (s *QuestionService) GetByText(text string) (*models.Question, error) {
	var question models.Question
	err := s.db.Preload("SourceFile").Where("text = ?", text).First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// RandomUnanswered returns a uniformly random question which the user has not
// yet answered correctly, optionally scoped to one source file. Questions
// answered incorrectly remain eligible for re-selection. Returns nil when
// every question in scope has been correctly attempted.
func (s *QuestionService) RandomUnanswered(userID int64, sourceFile string) (*models.Question, error) {
	correctlyAnswered := s.db.Model(&models.Attempt{}).
		Select("answers.question_id").
		Joins("JOIN answers ON answers.id = attempts.answer_id").
		Where("attempts.user_id = ? AND answers.is_correct", userID)

	query := s.db.
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("key") }).
		Preload("SourceFile").
		Where("questions.id NOT IN (?)", correctlyAnswered)

	if sourceFile != "" {
		query = query.
			Joins("JOIN source_files ON source_files.id = questions.source_file_id").
			Where("source_files.path = ?", sourceFile)
	}

	var question models.Question
	err := query.Order("RANDOM()").Take(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select random question: %w", err)
	}
	return &question, nil
}

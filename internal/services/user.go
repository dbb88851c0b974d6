package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/extrange/mcq-bot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// SetExamDate creates the user on first registration, or overwrites the exam
// date on re-registration.
func (s *UserService) SetExamDate(userID int64, examDate time.Time) (*models.User, error) {
	user := models.User{
		ID:          userID,
		ExamDate:    examDate,
		IsScheduled: true,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"exam_date": examDate}),
	}).Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("set exam date: %w", err)
	}

	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Get returns the user, failing with ErrNotFound if they have never
// registered an exam date.
func (s *UserService) Get(userID int64) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) All() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Scheduled returns users with nudges enabled. With excludePastExam, users
// whose exam date is not strictly in the future are filtered out.
func (s *UserService) Scheduled(excludePastExam bool) ([]models.User, error) {
	query := s.db.Where("is_scheduled")
	if excludePastExam {
		query = query.Where("exam_date > ?", time.Now())
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list scheduled users: %w", err)
	}
	return users, nil
}

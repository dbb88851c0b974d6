package services

import (
	"fmt"
	"math"
	"time"
)

// StatsService derives progress statistics and the daily pacing quota. It is
// a pure function of the repositories plus the configured local time zone;
// the zone is owned here so that day-boundary conversion happens in exactly
// one place.
type StatsService struct {
	questions *QuestionService
	attempts  *AttemptService
	users     *UserService
	loc       *time.Location
}

func NewStatsService(questions *QuestionService, attempts *AttemptService, users *UserService, loc *time.Location) *StatsService {
	return &StatsService{
		questions: questions,
		attempts:  attempts,
		users:     users,
		loc:       loc,
	}
}

type Stats struct {
	Total        int64 `json:"total"`
	Attempted    int64 `json:"attempted"`
	Correct      int64 `json:"correct"`
	DaysTillExam int   `json:"days_till_exam"`
}

// Stats returns the user's progress counts and whole days until their exam.
// DaysTillExam is negative once the exam has passed; callers must handle this.
func (s *StatsService) Stats(userID int64) (*Stats, error) {
	total, err := s.questions.Count("")
	if err != nil {
		return nil, err
	}
	attempted, err := s.attempts.AttemptedCount(userID, false)
	if err != nil {
		return nil, err
	}
	correct, err := s.attempts.AttemptedCount(userID, true)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Get(userID)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Total:        total,
		Attempted:    attempted,
		Correct:      correct,
		DaysTillExam: s.daysUntil(user.ExamDate),
	}, nil
}

// DailyTarget returns how many not-yet-attempted questions the user should
// complete per remaining day. Fails with ErrInvalidPacingWindow when the exam
// date is today or has passed, rather than producing a nonsensical quota.
func (s *StatsService) DailyTarget(userID int64) (int, error) {
	stats, err := s.Stats(userID)
	if err != nil {
		return 0, err
	}
	if stats.DaysTillExam <= 0 {
		return 0, fmt.Errorf("user %d: %w", userID, ErrInvalidPacingWindow)
	}

	remaining := float64(stats.Total - stats.Attempted)
	return int(math.Round(remaining / float64(stats.DaysTillExam))), nil
}

// AttemptedToday counts the user's attempts since the start of today in the
// configured local time zone.
func (s *StatsService) AttemptedToday(userID int64) (int, error) {
	start := s.StartOfToday()
	rows, err := s.attempts.Rows(AttemptFilter{UserID: &userID, Since: &start})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// StartOfToday returns midnight of the current local day as an absolute instant.
func (s *StatsService) StartOfToday() time.Time {
	now := time.Now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

func (s *StatsService) daysUntil(examDate time.Time) int {
	now := time.Now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	exam := time.Date(examDate.Year(), examDate.Month(), examDate.Day(), 0, 0, 0, 0, s.loc)
	// Rounded so DST transitions cannot skew the whole-day count.
	return int(math.Round(exam.Sub(today).Hours() / 24))
}

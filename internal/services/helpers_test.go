package services_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/extrange/mcq-bot/internal/database"
	"github.com/extrange/mcq-bot/internal/services"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB returns a fresh in-memory sqlite database migrated with the
// production schema, with foreign keys enforced as postgres would. The DSN is
// namespaced per test so parallel tests do not share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	database.AutoMigrate(db)
	return db
}

type testServices struct {
	db        *gorm.DB
	questions *services.QuestionService
	attempts  *services.AttemptService
	users     *services.UserService
	ingest    *services.IngestService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	db := newTestDB(t)
	questions := services.NewQuestionService(db)
	return &testServices{
		db:        db,
		questions: questions,
		attempts:  services.NewAttemptService(db),
		users:     services.NewUserService(db),
		ingest:    services.NewIngestService(db, questions),
	}
}

// registerUser creates a user with an exam date comfortably in the future.
func registerUser(t *testing.T, svc *testServices, userID int64) {
	t.Helper()
	_, err := svc.users.SetExamDate(userID, time.Now().AddDate(0, 0, 30))
	require.NoError(t, err)
}

// makeRows builds n valid records with five answers each; key 0 is correct.
func makeRows(n int) []services.ProcessedRow {
	rows := make([]services.ProcessedRow, 0, n)
	for i := 0; i < n; i++ {
		row := services.ProcessedRow{
			Question: services.QuestionInput{
				Text:        fmt.Sprintf("test question %d", i),
				Explanation: fmt.Sprintf("explanation %d", i),
			},
		}
		for j := 0; j <= 4; j++ {
			row.Answers = append(row.Answers, services.AnswerInput{
				Text:      fmt.Sprintf("answer %d for question %d", j, i),
				Key:       j,
				IsCorrect: j == 0,
			})
		}
		rows = append(rows, row)
	}
	return rows
}

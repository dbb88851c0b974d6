package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/extrange/mcq-bot/internal/database"
	"github.com/extrange/mcq-bot/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sampleJSON = `[
  {
    "question": {"text": "  2 + 2?  ", "explanation": "basic arithmetic"},
    "answers": [
      {"text": " 4 ", "key": 0, "is_correct": true},
      {"text": "5", "key": 1, "is_correct": false}
    ]
  },
  {
    "question": {"text": "Capital of France?", "explanation": ""},
    "answers": [
      {"text": "Paris", "key": 0, "is_correct": true},
      {"text": "Lyon", "key": 1, "is_correct": false}
    ]
  }
]`

func TestJSONParser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	rows, err := JSONParser{}.Parse(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2 + 2?", rows[0].Question.Text, "fields are whitespace-trimmed")
	assert.Equal(t, "4", rows[0].Answers[0].Text)
	assert.True(t, rows[0].Answers[0].IsCorrect)
	assert.Equal(t, 1, rows[0].Answers[1].Key)
}

func TestJSONParser_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := JSONParser{}.Parse(path)
	assert.Error(t, err)
}

func newTestIngest(t *testing.T) *services.IngestService {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	database.AutoMigrate(db)

	return services.NewIngestService(db, services.NewQuestionService(db))
}

func TestProcessFolder(t *testing.T) {
	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "paper1.json"), []byte(sampleJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "notes.txt"), []byte("ignored"), 0o644))

	pipeline := NewPipeline(newTestIngest(t), nil)
	summaries, err := pipeline.ProcessFolder(folder, "")
	require.NoError(t, err)

	require.Contains(t, summaries, "paper1", "JSON files are labeled by stem")
	assert.Equal(t, FileSummary{Total: 2, Added: 2}, summaries["paper1"])
	assert.Len(t, summaries, 1, "non-question files are ignored")
}

func TestProcessFolder_SkipsCSVWithoutParser(t *testing.T) {
	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "paper.csv"), []byte("a,b\n1,2\n"), 0o644))

	pipeline := NewPipeline(newTestIngest(t), nil)
	summaries, err := pipeline.ProcessFolder(folder, "")
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestProcessFolder_MalformedFileDoesNotAbort(t *testing.T) {
	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "bad.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "good.json"), []byte(sampleJSON), 0o644))

	pipeline := NewPipeline(newTestIngest(t), nil)
	summaries, err := pipeline.ProcessFolder(folder, "")
	require.NoError(t, err)

	assert.NotContains(t, summaries, "bad")
	assert.Contains(t, summaries, "good")
	assert.Equal(t, 2, summaries["good"].Added)
}

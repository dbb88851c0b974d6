package services_test

import (
	"testing"

	"github.com/extrange/mcq-bot/internal/models"
	"github.com/extrange/mcq-bot/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedQuestions ingests n generated records under label and returns the
// persisted questions with answers, ordered by insertion.
func seedQuestions(t *testing.T, svc *testServices, n int, label string) []models.Question {
	t.Helper()

	summary, err := svc.ingest.BulkAdd(makeRows(n), label)
	require.NoError(t, err)
	require.Len(t, summary.Added, n)

	var questions []models.Question
	require.NoError(t, svc.db.Preload("Answers").Order("id").Find(&questions).Error)
	return questions
}

// answerWithKey returns the answer of q holding the given key.
func answerWithKey(t *testing.T, q models.Question, key int) models.Answer {
	t.Helper()
	for _, a := range q.Answers {
		if a.Key == key {
			return a
		}
	}
	t.Fatalf("question %d has no answer with key %d", q.ID, key)
	return models.Answer{}
}

func TestCount_ScopedBySourceFile(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.ingest.BulkAdd(makeRows(3), "a")
	require.NoError(t, err)

	extra := makeRows(5)[3:]
	_, err = svc.ingest.BulkAdd(extra, "b")
	require.NoError(t, err)

	total, err := svc.questions.Count("")
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)

	scoped, err := svc.questions.Count("a")
	require.NoError(t, err)
	assert.EqualValues(t, 3, scoped)

	unknown, err := svc.questions.Count("no-such-file")
	require.NoError(t, err)
	assert.Zero(t, unknown)
}

func TestGet(t *testing.T) {
	svc := newTestServices(t)
	seeded := seedQuestions(t, svc, 1, "test")

	question, err := svc.questions.Get(seeded[0].ID)
	require.NoError(t, err)
	require.Len(t, question.Answers, 5)
	for i, a := range question.Answers {
		assert.Equal(t, i, a.Key, "answers must load in key order")
	}
	assert.Equal(t, "test", question.SourceFile.Path)
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.questions.Get(12345)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRandomUnanswered_ExcludesCorrectlyAnswered(t *testing.T) {
	svc := newTestServices(t)
	seeded := seedQuestions(t, svc, 2, "test")
	userID := int64(1)
	registerUser(t, svc, userID)

	correct := answerWithKey(t, seeded[0], 0)
	require.NoError(t, svc.attempts.Record(userID, correct.ID))

	// Random selection must never surface the correctly-answered question.
	for i := 0; i < 20; i++ {
		question, err := svc.questions.RandomUnanswered(userID, "")
		require.NoError(t, err)
		require.NotNil(t, question)
		assert.Equal(t, seeded[1].ID, question.ID)
	}
}

func TestRandomUnanswered_IncorrectStaysEligible(t *testing.T) {
	svc := newTestServices(t)
	seeded := seedQuestions(t, svc, 1, "test")
	userID := int64(1)
	registerUser(t, svc, userID)

	wrong := answerWithKey(t, seeded[0], 1)
	require.NoError(t, svc.attempts.Record(userID, wrong.ID))

	question, err := svc.questions.RandomUnanswered(userID, "")
	require.NoError(t, err)
	require.NotNil(t, question)
	assert.Equal(t, seeded[0].ID, question.ID)
}

func TestRandomUnanswered_NilWhenExhausted(t *testing.T) {
	svc := newTestServices(t)
	seeded := seedQuestions(t, svc, 2, "test")
	userID := int64(1)
	registerUser(t, svc, userID)

	for _, q := range seeded {
		require.NoError(t, svc.attempts.Record(userID, answerWithKey(t, q, 0).ID))
	}

	question, err := svc.questions.RandomUnanswered(userID, "")
	require.NoError(t, err)
	assert.Nil(t, question)
}

func TestRandomUnanswered_PerUserExclusion(t *testing.T) {
	svc := newTestServices(t)
	seeded := seedQuestions(t, svc, 1, "test")
	registerUser(t, svc, 2)

	// Another user's correct attempt must not shrink this user's pool.
	require.NoError(t, svc.attempts.Record(2, answerWithKey(t, seeded[0], 0).ID))

	question, err := svc.questions.RandomUnanswered(1, "")
	require.NoError(t, err)
	require.NotNil(t, question)
	assert.Equal(t, seeded[0].ID, question.ID)
}

func TestIngestAnswerFlow(t *testing.T) {
	svc := newTestServices(t)
	userID := int64(42)
	registerUser(t, svc, userID)

	summary, err := svc.ingest.BulkAdd([]services.ProcessedRow{{
		Question: services.QuestionInput{Text: "Q1", Explanation: "E1"},
		Answers: []services.AnswerInput{
			{Text: "a", Key: 0, IsCorrect: true},
			{Text: "b", Key: 1},
		},
	}}, "f1")
	require.NoError(t, err)
	require.Len(t, summary.Added, 1)

	count, err := svc.questions.Count("")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	question, err := svc.questions.RandomUnanswered(userID, "")
	require.NoError(t, err)
	require.NotNil(t, question)
	assert.Equal(t, "Q1", question.Text)

	require.NoError(t, svc.attempts.Record(userID, answerWithKey(t, *question, 0).ID))

	question, err = svc.questions.RandomUnanswered(userID, "")
	require.NoError(t, err)
	assert.Nil(t, question)
}

func TestRandomUnanswered_ScopedBySourceFile(t *testing.T) {
	svc := newTestServices(t)

	_, err := svc.ingest.BulkAdd(makeRows(1), "a")
	require.NoError(t, err)
	extra := makeRows(2)[1:]
	_, err = svc.ingest.BulkAdd(extra, "b")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		question, err := svc.questions.RandomUnanswered(1, "b")
		require.NoError(t, err)
		require.NotNil(t, question)
		assert.Equal(t, "b", question.SourceFile.Path)
	}

	question, err := svc.questions.RandomUnanswered(1, "no-such-file")
	require.NoError(t, err)
	assert.Nil(t, question)
}

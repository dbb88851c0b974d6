package telegram

import (
	"testing"

	"github.com/extrange/mcq-bot/internal/models"
	"github.com/extrange/mcq-bot/internal/services"

	"github.com/stretchr/testify/assert"
)

func sampleQuestion() *models.Question {
	return &models.Question{
		ID:          7,
		Text:        "What is the capital of France?",
		Explanation: "Paris has been the capital since 987.",
		SourceFile:  models.SourceFile{Path: "geography"},
		Answers: []models.Answer{
			{ID: 71, Key: 0, Text: "Paris", IsCorrect: true},
			{ID: 72, Key: 1, Text: "Lyon"},
			{ID: 73, Key: 2, Text: "Marseille"},
		},
	}
}

func TestFormatQuestion(t *testing.T) {
	got := FormatQuestion(sampleQuestion())

	want := "What is the capital of France?\n" +
		"\n<b>A.</b> Paris" +
		"\n<b>B.</b> Lyon" +
		"\n<b>C.</b> Marseille" +
		"\n\n<i>From geography</i>"
	assert.Equal(t, want, got)
}

func TestFormatVerdict_Correct(t *testing.T) {
	q := sampleQuestion()
	got := FormatVerdict(q, &q.Answers[0])

	assert.Equal(t, "Your answer: A✅\n\nParis has been the capital since 987.", got)
}

func TestFormatVerdict_Incorrect(t *testing.T) {
	q := sampleQuestion()
	got := FormatVerdict(q, &q.Answers[1])

	assert.Equal(t,
		"Your answer: B❌\nCorrect answer: A\n\nParis has been the capital since 987.",
		got)
}

func TestFormatVerdict_NoExplanation(t *testing.T) {
	q := sampleQuestion()
	q.Explanation = ""
	got := FormatVerdict(q, &q.Answers[0])

	assert.Equal(t, "Your answer: A✅", got)
}

func TestFormatQuestion_EscapesHTML(t *testing.T) {
	q := sampleQuestion()
	q.Text = "Treat if BP < 90 & HR > 120?"
	q.Answers[0].Text = "<immediately>"
	got := FormatQuestion(q)

	assert.Contains(t, got, "Treat if BP &lt; 90 &amp; HR &gt; 120?")
	assert.Contains(t, got, "<b>A.</b> &lt;immediately&gt;")
	assert.NotContains(t, got, "<immediately>")
}

func TestFormatVerdict_EscapesHTML(t *testing.T) {
	q := sampleQuestion()
	q.Explanation = "Escalate when BP < 90."
	got := FormatVerdict(q, &q.Answers[0])

	assert.Contains(t, got, "Escalate when BP &lt; 90.")
}

func TestFormatStats(t *testing.T) {
	got := FormatStats(&services.Stats{
		Total:        1029,
		Attempted:    4,
		Correct:      2,
		DaysTillExam: 20,
	})

	want := "Attempted: <b>4 of 1029</b> (0.4%)\n" +
		"Correct: <b>2 of 4</b> (50%)\n\n" +
		"Remaining: <b>1025</b>\n" +
		"Days till exam: <b>20</b>\n" +
		"Questions to do per day: <b>51</b>"
	assert.Equal(t, want, got)
}

func TestFormatStats_NoAttempts(t *testing.T) {
	got := FormatStats(&services.Stats{Total: 10, DaysTillExam: 0})

	want := "Attempted: <b>0 of 10</b> (0.0%)\n" +
		"Correct: <b>0 of 0</b> (0%)\n\n" +
		"Remaining: <b>10</b>\n" +
		"Days till exam: <b>0</b>"
	assert.Equal(t, want, got, "no per-day line when the exam is today or past")
}

func TestFormatNudge(t *testing.T) {
	assert.Equal(t,
		"20 days to your exam and you haven't done any questions today, time to do at least 51 questions today!",
		FormatNudge(0, 51, 20))

	assert.Equal(t,
		"You've done 3 questions today, 48 more to go!",
		FormatNudge(3, 51, 20))
}

func TestAnswerKeyboard(t *testing.T) {
	kb := AnswerKeyboard(sampleQuestion())

	if assert.Len(t, kb.InlineKeyboard, 1) {
		row := kb.InlineKeyboard[0]
		if assert.Len(t, row, 3) {
			assert.Equal(t, "A", row[0].Text)
			assert.Equal(t, "ans:7:71", row[0].CallbackData)
			assert.Equal(t, "C", row[2].Text)
			assert.Equal(t, "ans:7:73", row[2].CallbackData)
		}
	}
}

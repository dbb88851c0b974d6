package telegram

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/extrange/mcq-bot/internal/models"
	"github.com/extrange/mcq-bot/internal/services"
)

// FormatQuestion renders a question with lettered answer options and its
// source-file attribution, as HTML. Ingested text is escaped; content like
// "BP < 90" must not be taken for markup.
func FormatQuestion(question *models.Question) string {
	var b strings.Builder
	b.WriteString(html.EscapeString(question.Text))
	b.WriteString("\n")
	for _, ans := range question.Answers {
		fmt.Fprintf(&b, "\n<b>%s.</b> %s", models.KeyLetter(ans.Key), html.EscapeString(ans.Text))
	}
	fmt.Fprintf(&b, "\n\n<i>From %s</i>", html.EscapeString(question.SourceFile.Path))
	return b.String()
}

// FormatVerdict renders the feedback appended to a question message after the
// user picks an answer.
func FormatVerdict(question *models.Question, picked *models.Answer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your answer: %s", models.KeyLetter(picked.Key))
	if picked.IsCorrect {
		b.WriteString("✅")
	} else {
		b.WriteString("❌")
		for _, ans := range question.Answers {
			if ans.IsCorrect {
				fmt.Fprintf(&b, "\nCorrect answer: %s", models.KeyLetter(ans.Key))
				break
			}
		}
	}
	if question.Explanation != "" {
		b.WriteString("\n\n")
		b.WriteString(html.EscapeString(question.Explanation))
	}
	return b.String()
}

// FormatStats renders progress statistics:
//
//	Attempted: 4 of 1029 (0.4%)
//	Correct: 2 of 4 (50%)
//
//	Remaining: 1025
//	Days till exam: 20
//	Questions to do per day: 51
func FormatStats(stats *services.Stats) string {
	percentAttempted := 0.0
	percentCorrect := 0.0
	if stats.Total > 0 {
		percentAttempted = float64(stats.Attempted) / float64(stats.Total) * 100
	}
	if stats.Attempted > 0 {
		percentCorrect = float64(stats.Correct) / float64(stats.Attempted) * 100
	}
	remaining := stats.Total - stats.Attempted

	var b strings.Builder
	fmt.Fprintf(&b, "Attempted: <b>%d of %d</b> (%.1f%%)\n", stats.Attempted, stats.Total, percentAttempted)
	fmt.Fprintf(&b, "Correct: <b>%d of %d</b> (%d%%)\n\n", stats.Correct, stats.Attempted, int(math.Round(percentCorrect)))
	fmt.Fprintf(&b, "Remaining: <b>%d</b>\n", remaining)
	fmt.Fprintf(&b, "Days till exam: <b>%d</b>", stats.DaysTillExam)
	if stats.DaysTillExam > 0 {
		perDay := float64(remaining) / float64(stats.DaysTillExam)
		fmt.Fprintf(&b, "\nQuestions to do per day: <b>%.0f</b>", perDay)
	}
	return b.String()
}

// FormatNudge renders the scheduled reminder carrying the day's shortfall.
func FormatNudge(attemptedToday, target, daysTillExam int) string {
	if attemptedToday == 0 {
		return fmt.Sprintf(
			"%d days to your exam and you haven't done any questions today, time to do at least %d questions today!",
			daysTillExam, target)
	}
	return fmt.Sprintf("You've done %d questions today, %d more to go!",
		attemptedToday, target-attemptedToday)
}

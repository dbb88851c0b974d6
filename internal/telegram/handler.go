package telegram

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/extrange/mcq-bot/internal/models"
	"github.com/extrange/mcq-bot/internal/services"
)

type UpdateHandler struct {
	client      *Client
	questions   *services.QuestionService
	attempts    *services.AttemptService
	users       *services.UserService
	stats       *services.StatsService
	loc         *time.Location
	adminChatID int64
}

func NewUpdateHandler(
	client *Client,
	questions *services.QuestionService,
	attempts *services.AttemptService,
	users *services.UserService,
	stats *services.StatsService,
	loc *time.Location,
	adminChatID int64,
) *UpdateHandler {
	return &UpdateHandler{
		client:      client,
		questions:   questions,
		attempts:    attempts,
		users:       users,
		stats:       stats,
		loc:         loc,
		adminChatID: adminChatID,
	}
}

func (h *UpdateHandler) Handle(upd Update) {
	if upd.CallbackQuery != nil {
		h.handleCallback(upd.CallbackQuery)
		return
	}
	if upd.Message != nil {
		h.handleMessage(upd.Message)
	}
}

func (h *UpdateHandler) handleMessage(msg *Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case isCommand(msg, "start"):
		h.cmdStart(chatID)
	case isCommand(msg, "exam"):
		h.cmdExam(userID, chatID, text)
	case isCommand(msg, "question"):
		h.SendQuestion(userID, chatID)
	case isCommand(msg, "stats"):
		h.cmdStats(userID, chatID)
	case isCommand(msg, "admin"):
		h.cmdAdmin(chatID)
	default:
		h.client.SendMessage(chatID, "I didn't understand that. Try /question, /stats or /exam.", "", nil)
	}
}

func (h *UpdateHandler) cmdStart(chatID int64) {
	h.client.SendMessage(chatID,
		"Hi! Before we begin, please tell me your exam date with /exam your-exam-date.\n\nFor example: /exam 22 Oct 2026",
		"", nil)
}

func (h *UpdateHandler) cmdExam(userID, chatID int64, text string) {
	arg := extractCommandArgs(text)

	if arg == "" {
		var current string
		if user, err := h.users.Get(userID); err == nil {
			current = fmt.Sprintf("Your current exam date is %s.\n\n", user.ExamDate.Format("2006-01-02"))
		}
		h.client.SendMessage(chatID,
			current+"You can set or update your exam date with /exam your-exam-date.\n\nFor example: /exam 22-10-2026",
			"", nil)
		return
	}

	examDate, err := ParseExamDate(arg, h.loc)
	if err != nil {
		h.client.SendMessage(chatID,
			"Sorry, I couldn't understand that date. Try something like 1 Jan 2027 instead.", "", nil)
		return
	}

	if _, err := h.users.SetExamDate(userID, examDate); err != nil {
		log.Printf("set exam date for %d: %v", userID, err)
		h.client.SendMessage(chatID, "Oops, we encountered an error, please try again", "", nil)
		return
	}

	stats, err := h.stats.Stats(userID)
	if err != nil {
		log.Printf("stats for %d after registration: %v", userID, err)
		h.client.SendMessage(chatID, "Oops, we encountered an error, please try again", "", nil)
		return
	}

	h.client.SendMessage(chatID,
		fmt.Sprintf("I've set your exam date as %s, which is %d days from today. If that's not correct, just send me another date with /exam.",
			examDate.Format("2006-01-02"), stats.DaysTillExam),
		"", nil)
}

// SendQuestion sends a random question the user has not yet answered
// correctly, or a completion message when none remain. Also used by the
// "next" callback and reachable from a nudge's inline button. Users must
// register an exam date first; attempts reference the users table.
func (h *UpdateHandler) SendQuestion(userID, chatID int64) {
	if _, err := h.users.Get(userID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			h.client.SendMessage(chatID, "Set your exam date first with /exam your-exam-date.", "", nil)
			return
		}
		log.Printf("look up user %d: %v", userID, err)
		h.client.SendMessage(chatID, "Oops, we encountered an error, please try again", "", nil)
		return
	}

	question, err := h.questions.RandomUnanswered(userID, "")
	if err != nil {
		log.Printf("select question for %d: %v", userID, err)
		h.client.SendMessage(chatID, "Oops, we encountered an error, please try again", "", nil)
		return
	}
	if question == nil {
		h.client.SendMessage(chatID, "You have answered all questions!", "", nil)
		return
	}

	h.client.SendMessage(chatID, FormatQuestion(question), "HTML", AnswerKeyboard(question))
}

func (h *UpdateHandler) cmdStats(userID, chatID int64) {
	stats, err := h.stats.Stats(userID)
	if errors.Is(err, services.ErrNotFound) {
		h.client.SendMessage(chatID, "Set your exam date first with /exam your-exam-date.", "", nil)
		return
	}
	if err != nil {
		log.Printf("stats for %d: %v", userID, err)
		h.client.SendMessage(chatID, "Oops, we encountered an error, please try again", "", nil)
		return
	}

	h.client.SendMessage(chatID, FormatStats(stats), "HTML", nil)
}

func (h *UpdateHandler) cmdAdmin(chatID int64) {
	if h.adminChatID == 0 || chatID != h.adminChatID {
		return
	}

	users, err := h.users.All()
	if err != nil {
		log.Printf("admin listing: %v", err)
		return
	}

	var sections []string
	for _, user := range users {
		stats, err := h.stats.Stats(user.ID)
		if err != nil {
			log.Printf("admin stats for %d: %v", user.ID, err)
			continue
		}
		attemptedToday, err := h.stats.AttemptedToday(user.ID)
		if err != nil {
			log.Printf("admin attempted-today for %d: %v", user.ID, err)
			continue
		}
		sections = append(sections, fmt.Sprintf("User %d\n%s\nAttempted today: %d",
			user.ID, FormatStats(stats), attemptedToday))
	}

	if len(sections) == 0 {
		h.client.SendMessage(chatID, "No registered users yet.", "", nil)
		return
	}
	h.client.SendMessage(chatID, strings.Join(sections, "\n\n"), "HTML", nil)
}

func (h *UpdateHandler) handleCallback(cb *CallbackQuery) {
	userID := cb.From.ID

	if cb.Data == callbackNext {
		if cb.Message != nil {
			// Strip the button so it can't be pressed twice.
			h.client.EditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, cb.Message.Text, "", nil)
		}
		chatID := userID
		if cb.Message != nil {
			chatID = cb.Message.Chat.ID
		}
		h.SendQuestion(userID, chatID)
		h.client.AnswerCallbackQuery(cb.ID, "", false)
		return
	}

	if strings.HasPrefix(cb.Data, callbackAnswerPrefix) {
		h.onAnswer(cb)
		return
	}

	h.client.AnswerCallbackQuery(cb.ID, "Unknown action", true)
}

func (h *UpdateHandler) onAnswer(cb *CallbackQuery) {
	userID := cb.From.ID

	parts := strings.Split(cb.Data, ":")
	if len(parts) != 3 {
		h.client.AnswerCallbackQuery(cb.ID, "Invalid answer data", true)
		return
	}
	questionID, err1 := strconv.ParseUint(parts[1], 10, 64)
	answerID, err2 := strconv.ParseUint(parts[2], 10, 64)
	if err1 != nil || err2 != nil {
		h.client.AnswerCallbackQuery(cb.ID, "Invalid answer data", true)
		return
	}

	if _, err := h.users.Get(userID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			h.client.AnswerCallbackQuery(cb.ID, "Set your exam date first with /exam", true)
			return
		}
		log.Printf("look up user %d: %v", userID, err)
		h.client.AnswerCallbackQuery(cb.ID, "Oops, something went wrong, please try again", true)
		return
	}

	question, err := h.questions.Get(uint(questionID))
	if err != nil {
		log.Printf("answer callback for user %d: %v", userID, err)
		h.client.AnswerCallbackQuery(cb.ID, "Could not find that question", true)
		return
	}

	pickedIdx := -1
	for i := range question.Answers {
		if question.Answers[i].ID == uint(answerID) {
			pickedIdx = i
			break
		}
	}
	if pickedIdx < 0 {
		h.client.AnswerCallbackQuery(cb.ID, "Could not find that answer", true)
		return
	}
	pickedAnswer := &question.Answers[pickedIdx]

	if err := h.attempts.Record(userID, uint(answerID)); err != nil {
		log.Printf("record attempt user=%d answer=%d: %v", userID, answerID, err)
		h.client.AnswerCallbackQuery(cb.ID, "Oops, something went wrong, please try again", true)
		return
	}

	log.Printf("user %d answered %s for question %d",
		userID, models.KeyLetter(pickedAnswer.Key), question.ID)

	if cb.Message != nil {
		text := cb.Message.Text + "\n\n" + FormatVerdict(question, pickedAnswer)
		if err := h.client.EditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text, "HTML", NextQuestionKeyboard()); err != nil {
			log.Printf("edit answer msg: %v", err)
		}
	}

	h.client.AnswerCallbackQuery(cb.ID, "", false)
}

// ParseExamDate parses a handful of common date formats, day first.
func ParseExamDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{
		"2-1-2006",
		"2/1/2006",
		"2 Jan 2006",
		"2 January 2006",
		"Jan 2 2006",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func isCommand(msg *Message, cmd string) bool {
	for _, e := range msg.Entities {
		if e.Type == "bot_command" && e.Offset == 0 {
			cmdText := msg.Text[e.Offset : e.Offset+e.Length]
			cmdText = strings.Split(cmdText, "@")[0]
			return cmdText == "/"+cmd
		}
	}
	// Entities are absent when updates are replayed through the webhook by
	// other bots or tests; fall back to a prefix check.
	return strings.HasPrefix(msg.Text, "/"+cmd+" ") || strings.TrimSpace(msg.Text) == "/"+cmd
}

func extractCommandArgs(text string) string {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

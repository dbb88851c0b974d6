package telegram

import (
	"fmt"

	"github.com/extrange/mcq-bot/internal/models"
)

const (
	callbackAnswerPrefix = "ans:"
	callbackNext         = "next"
)

// AnswerKeyboard renders one lettered button per answer, in key order.
// The callback data round-trips the (question, answer) correlation pair.
func AnswerKeyboard(question *models.Question) *InlineKeyboardMarkup {
	var row []InlineKeyboardButton
	for _, ans := range question.Answers {
		row = append(row, InlineKeyboardButton{
			Text:         models.KeyLetter(ans.Key),
			CallbackData: fmt.Sprintf("%s%d:%d", callbackAnswerPrefix, question.ID, ans.ID),
		})
	}
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{row}}
}

func NextQuestionKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{{Text: "Next question", CallbackData: callbackNext}},
	}}
}

func NudgeKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{{Text: "I'm ready!", CallbackData: callbackNext}},
	}}
}

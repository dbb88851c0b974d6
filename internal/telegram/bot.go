package telegram

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Bot wires the client and update handler to a webhook. The webhook path
// carries a token-derived secret so the route is not guessable; Telegram's
// secret-token header is verified additionally when configured.
type Bot struct {
	Client  *Client
	Handler *UpdateHandler

	secret         string
	webhookBaseURL string
	webhookSecret  string
}

func NewBot(client *Client, handler *UpdateHandler, token, webhookBaseURL, webhookSecret string) *Bot {
	h := sha256.Sum256([]byte(token))
	return &Bot{
		Client:         client,
		Handler:        handler,
		secret:         fmt.Sprintf("%x", h[:16]),
		webhookBaseURL: webhookBaseURL,
		webhookSecret:  webhookSecret,
	}
}

// Start registers the webhook and the bot's command menu.
func (b *Bot) Start() error {
	webhookURL := fmt.Sprintf("%s/webhook/%s", b.webhookBaseURL, b.secret)
	if err := b.Client.SetWebhook(webhookURL, b.webhookSecret); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	err := b.Client.SetMyCommands([]BotCommand{
		{Command: "exam", Description: "Set your exam date"},
		{Command: "question", Description: "Start doing questions"},
		{Command: "stats", Description: "Show your stats"},
	})
	if err != nil {
		log.Printf("[Bot] failed to register commands: %v", err)
	}

	log.Printf("[Bot] webhook registered: %s", webhookURL)
	return nil
}

func (b *Bot) Stop() {
	if err := b.Client.DeleteWebhook(); err != nil {
		log.Printf("[Bot] delete webhook: %v", err)
	}
	log.Println("[Bot] stopped")
}

func (b *Bot) HandleWebhook(c *gin.Context) {
	if c.Param("secret") != b.secret {
		c.Status(http.StatusNotFound)
		return
	}

	if b.webhookSecret != "" {
		headerSecret := c.GetHeader("X-Telegram-Bot-Api-Secret-Token")
		if headerSecret != b.webhookSecret {
			c.Status(http.StatusUnauthorized)
			return
		}
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var upd Update
	if err := json.Unmarshal(body, &upd); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	go b.Handler.Handle(upd)

	c.Status(http.StatusOK)
}

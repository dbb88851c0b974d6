package main

import (
	"log"

	"github.com/extrange/mcq-bot/internal/config"
	"github.com/extrange/mcq-bot/internal/database"
	"github.com/extrange/mcq-bot/internal/handlers"
	"github.com/extrange/mcq-bot/internal/middleware"
	"github.com/extrange/mcq-bot/internal/scheduler"
	"github.com/extrange/mcq-bot/internal/services"
	"github.com/extrange/mcq-bot/internal/telegram"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// @title           MCQ Bot API
// @version         1.0
// @description     Reporting API for the spaced-practice MCQ Telegram bot
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	questionService := services.NewQuestionService(db)
	attemptService := services.NewAttemptService(db)
	userService := services.NewUserService(db)
	statsService := services.NewStatsService(questionService, attemptService, userService, cfg.Timezone)
	authService := services.NewAuthService(db, cfg.JWTSecret)

	authHandler := handlers.NewAuthHandler(authService)
	reportHandler := handlers.NewReportHandler(userService, attemptService, statsService)

	client := telegram.NewClient(cfg.BotToken)
	updateHandler := telegram.NewUpdateHandler(
		client, questionService, attemptService, userService, statsService,
		cfg.Timezone, cfg.AdminChatID,
	)
	bot := telegram.NewBot(client, updateHandler, cfg.BotToken, cfg.WebhookBaseURL, cfg.WebhookSecret)

	if cfg.WebhookBaseURL != "" {
		if err := bot.Start(); err != nil {
			log.Fatalf("failed to start bot: %v", err)
		}
		defer bot.Stop()
	} else {
		log.Println("WEBHOOK_BASE_URL not set, bot disabled")
	}

	nudger := scheduler.NewNudger(
		userService, statsService,
		&scheduler.TelegramSender{Client: client},
		cfg.NudgeTimes, cfg.Timezone,
	)
	nudger.Start()
	defer nudger.Stop()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.POST("/webhook/:secret", bot.HandleWebhook)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		reports := api.Group("/reports")
		reports.Use(middleware.JWTAuth(authService))
		{
			reports.GET("/users", reportHandler.ListUsers)
			reports.GET("/attempts", reportHandler.ListAttempts)
		}
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

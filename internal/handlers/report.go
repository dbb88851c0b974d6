package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/extrange/mcq-bot/internal/services"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	users    *services.UserService
	attempts *services.AttemptService
	stats    *services.StatsService
}

func NewReportHandler(users *services.UserService, attempts *services.AttemptService, stats *services.StatsService) *ReportHandler {
	return &ReportHandler{users: users, attempts: attempts, stats: stats}
}

type UserReport struct {
	UserID         int64          `json:"user_id"`
	JoinedAt       time.Time      `json:"joined_at"`
	ExamDate       string         `json:"exam_date"`
	IsScheduled    bool           `json:"is_scheduled"`
	Stats          services.Stats `json:"stats"`
	AttemptedToday int            `json:"attempted_today"`
}

// ListUsers godoc
// @Summary      Per-user progress report
// @Description  Stats and attempted-today counts for every registered user
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} UserReport
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/reports/users [get]
func (h *ReportHandler) ListUsers(c *gin.Context) {
	users, err := h.users.All()
	if err != nil {
		log.Printf("report users: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list users"})
		return
	}

	reports := make([]UserReport, 0, len(users))
	for _, user := range users {
		stats, err := h.stats.Stats(user.ID)
		if err != nil {
			log.Printf("report stats for %d: %v", user.ID, err)
			continue
		}
		attemptedToday, err := h.stats.AttemptedToday(user.ID)
		if err != nil {
			log.Printf("report attempted-today for %d: %v", user.ID, err)
			continue
		}
		reports = append(reports, UserReport{
			UserID:         user.ID,
			JoinedAt:       user.JoinedAt,
			ExamDate:       user.ExamDate.Format("2006-01-02"),
			IsScheduled:    user.IsScheduled,
			Stats:          *stats,
			AttemptedToday: attemptedToday,
		})
	}

	c.JSON(http.StatusOK, reports)
}

// ListAttempts godoc
// @Summary      Filtered attempt listing
// @Description  Attempt rows filtered by user, source file and/or start instant
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        user_id query int false "Telegram user id"
// @Param        source_file query string false "Source file path"
// @Param        since query string false "RFC3339 instant"
// @Success      200 {array} services.AttemptRow
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/reports/attempts [get]
func (h *ReportHandler) ListAttempts(c *gin.Context) {
	var filter services.AttemptFilter

	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
			return
		}
		filter.UserID = &userID
	}
	filter.SourceFile = c.Query("source_file")
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "since must be RFC3339"})
			return
		}
		filter.Since = &since
	}

	rows, err := h.attempts.Rows(filter)
	if err != nil {
		log.Printf("report attempts: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list attempts"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

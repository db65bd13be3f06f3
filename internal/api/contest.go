package api

import (
	"net/http"

	"referral-contest-bot/internal/service"
	"referral-contest-bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Read-only status surface for operators. All mutations go through the bot.
type contestRoutes struct {
	cs service.ContestServiceI
}

func NewContestRoutes(handler *gin.RouterGroup, cs service.ContestServiceI) {
	r := &contestRoutes{cs: cs}

	h := handler.Group("/contest")
	{
		h.GET("/status", r.GetStatus)
		h.GET("/leaderboard", r.GetLeaderboard)
		h.GET("/ws", r.StatusFeed)
	}
}

func (r *contestRoutes) GetStatus(c *gin.Context) {
	log := logger.Logger()

	settings, err := r.cs.Settings(c.Request.Context())
	if err != nil {
		log.Error("failed to get contest settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	participants, err := r.cs.Participants(c.Request.Context())
	if err != nil {
		log.Error("failed to get participants", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	summaries, err := r.cs.DrawSummaries(c.Request.Context())
	if err != nil {
		log.Error("failed to get draw summaries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	draws := make([]gin.H, len(summaries))
	for i, s := range summaries {
		draws[i] = gin.H{
			"draw_id":     s.DrawID,
			"user_ids":    s.UserIDs,
			"prizes":      s.Prizes,
			"selected_at": s.SelectedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"contest_date":     settings.ContestDate,
		"status":           settings.Status,
		"winners_selected": settings.WinnersSelected,
		"eligible_count":   len(participants),
		"draws":            draws,
	})
}

func (r *contestRoutes) GetLeaderboard(c *gin.Context) {
	log := logger.Logger()

	participants, err := r.cs.Leaderboard(c.Request.Context())
	if err != nil {
		log.Error("failed to get leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	out := make([]gin.H, len(participants))
	for i, p := range participants {
		out[i] = gin.H{
			"telegram_id":    p.TelegramID,
			"username":       p.Username,
			"first_name":     p.FirstName,
			"referral_count": p.ReferralCount,
		}
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": out})
}

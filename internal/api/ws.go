package api

import (
	"net/http"
	"time"

	"referral-contest-bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type statusMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

const statusInterval = 5 * time.Second

// StatusFeed pushes the contest status over a websocket every few seconds
// until the client goes away.
func (r *contestRoutes) StatusFeed(c *gin.Context) {
	log := logger.Logger()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn("websocket unexpected close", zap.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			settings, err := r.cs.Settings(c.Request.Context())
			if err != nil {
				log.Error("failed to get contest settings", zap.Error(err))
				continue
			}

			participants, err := r.cs.Participants(c.Request.Context())
			if err != nil {
				log.Error("failed to get participants", zap.Error(err))
				continue
			}

			out, err := json.Marshal(statusMessage{
				Type: "contest_status",
				Data: gin.H{
					"contest_date":     settings.ContestDate,
					"status":           settings.Status,
					"winners_selected": settings.WinnersSelected,
					"eligible_count":   len(participants),
				},
			})
			if err != nil {
				log.Error("failed to marshal status message", zap.Error(err))
				continue
			}

			if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
				log.Warn("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}

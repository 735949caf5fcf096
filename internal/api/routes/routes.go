package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/auditlens/auditlens/internal/api/handlers"
	"github.com/auditlens/auditlens/internal/api/middleware"
)

type Deps struct {
	Analysis *handlers.AnalysisHandler
	Chat     *handlers.ChatHandler
	WS       *handlers.WSHandler
	Health   *handlers.HealthHandler
	Log      *logrus.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestLogger(d.Log))

	r.GET("/health", d.Health.Check)

	api := r.Group("/api")
	api.POST("/analyze-media", d.Analysis.AnalyzeMedia)
	api.POST("/create-chat", d.Chat.Create)
	api.POST("/chat/:session_id/message", d.Chat.Message)

	// WebSocket
	r.GET("/ws/chat/:session_id", d.WS.ChatWS)
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-faqbot/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	api := router.Group("/api/v1")
	{
		api.POST("/answers", handler.Answer)
		api.GET("/categories", handler.Categories)
		api.POST("/sessions/:id/category", handler.SelectCategory)
		api.GET("/sessions/:id/history", handler.History)
		api.GET("/transcript", handler.Transcript)
		api.GET("/transcript.csv", handler.TranscriptCSV)
		api.POST("/transcript/export", handler.ExportTranscript)
	}

	router.POST("/telegram/webhook", handler.TelegramWebhook)

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

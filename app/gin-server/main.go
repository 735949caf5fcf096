package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/auditlens/auditlens/config"
	"github.com/auditlens/auditlens/internal/api/handlers"
	"github.com/auditlens/auditlens/internal/api/routes"
	"github.com/auditlens/auditlens/internal/logger"
	"github.com/auditlens/auditlens/internal/prompt"
	"github.com/auditlens/auditlens/internal/providers/llm"
	"github.com/auditlens/auditlens/internal/services"
	"github.com/auditlens/auditlens/internal/sessions"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	l := logger.New()

	prompts, err := config.LoadPrompts(cfg.PromptConfigPath, cfg.PromptConfigName)
	if err != nil {
		log.Fatalf("prompt config error: %v", err)
	}
	baseTemplate, promptVersion := prompts.AnalysisTemplate()
	builder := prompt.NewBuilder(baseTemplate, promptVersion)
	l.WithField("prompt_version", promptVersion).Info("prompt template loaded")

	ctx := context.Background()

	if cfg.GeminiAPIKey == "" {
		l.Warn("GEMINI_API_KEY is not set; analysis and chat calls will fail")
	}
	provider, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.AnalysisModel, cfg.ChatModel)
	if err != nil {
		log.Fatalf("gemini init error: %v", err)
	}
	defer provider.Close()

	var store sessions.Store
	if cfg.RedisAddr != "" {
		rdb, err := config.InitRedis(cfg.RedisAddr)
		if err != nil {
			log.Fatalf("redis init error: %v", err)
		}
		store = sessions.NewRedisStore(rdb, cfg.SessionTTL)
		l.Info("chat sessions backed by redis")
	} else {
		store = sessions.NewMemoryStore(cfg.SessionTTL)
		l.Info("chat sessions backed by process memory")
	}

	analysisSvc := services.NewAnalysisService(provider, builder, prompts, cfg.CallDelay, l)
	chatSvc := services.NewChatService(provider, store, l)

	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Analysis: handlers.NewAnalysisHandler(analysisSvc),
		Chat:     handlers.NewChatHandler(chatSvc),
		WS:       handlers.NewWSHandler(chatSvc),
		Health:   handlers.NewHealthHandler(cfg.GeminiAPIKey != ""),
		Log:      l,
	})

	l.WithField("port", cfg.Port).Info("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

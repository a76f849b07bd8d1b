package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/neural-trinity/chatverse/internal/animation"
	"github.com/neural-trinity/chatverse/internal/api"
	"github.com/neural-trinity/chatverse/internal/config"
	"github.com/neural-trinity/chatverse/internal/upstream"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	gemini, err := upstream.NewGemini(context.Background(), cfg.APIKey, cfg.Model)
	if err != nil {
		logger.Fatal("failed to initialize Gemini client",
			zap.Error(err),
			zap.String("model", cfg.Model))
	}

	anim := animation.NewClient(cfg.ManimURL, logger)

	handler := api.NewHandler(gemini, anim, logger, cfg.Username)

	http.HandleFunc("/api/chat", handler.HandleChat)
	http.HandleFunc("/api/animation-status", handler.HandleAnimationStatus)

	// Serve static files
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	logger.Info("Starting server", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, nil); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

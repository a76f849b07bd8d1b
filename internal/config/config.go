package config

import (
	"errors"
	"os"
)

// Config is assembled from the environment. The Gemini key is the only
// required value; everything else has a working default.
type Config struct {
	Addr     string
	DBPath   string
	APIKey   string
	Model    string
	ManimURL string
	Username string
}

func Load() (*Config, error) {
	cfg := &Config{
		Addr:     envOr("CHATVERSE_ADDR", ":8100"),
		DBPath:   envOr("CHATVERSE_DB", "chatverse.db"),
		APIKey:   os.Getenv("GEMINI_API_KEY"),
		Model:    envOr("GEMINI_MODEL", "gemini-2.0-flash-lite"),
		ManimURL: os.Getenv("MANIM_API_URL"),
		Username: envOr("CHATVERSE_USERNAME", "GaragaKarthikeya"),
	}

	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is missing, add it to .env")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

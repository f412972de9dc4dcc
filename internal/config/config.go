package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/MarcoRizz/Bot-spese-famigliari/internal/expense"
)

type Config struct {
	// Telegram
	BotToken   string
	WebhookURL string // empty means long polling

	// Ledger backends: Sheets when SheetID is set, otherwise Postgres.
	GoogleCredentials string
	SheetID           string
	DatabaseURL       string

	// Household
	Participants expense.Participants

	// Web server
	WebBind string
}

func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:          os.Getenv("BOT_TOKEN"),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		GoogleCredentials: os.Getenv("GOOGLE_CREDENTIALS"),
		SheetID:           os.Getenv("SHEET_ID"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		WebBind:           getEnvDefault("WEB_BIND", "0.0.0.0:10000"),
	}

	participants, err := parseParticipants(getEnvDefault("PARTICIPANTS", "Marco,Veronica"))
	if err != nil {
		return nil, err
	}
	cfg.Participants = participants

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.SheetID == "" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("either SHEET_ID or DATABASE_URL is required")
	}
	if cfg.SheetID != "" && cfg.GoogleCredentials == "" {
		return nil, fmt.Errorf("GOOGLE_CREDENTIALS is required when SHEET_ID is set")
	}

	return cfg, nil
}

// parseParticipants reads the household pair from "Name,Name".
func parseParticipants(raw string) (expense.Participants, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return expense.Participants{}, fmt.Errorf("PARTICIPANTS must be two comma-separated names, got %q", raw)
	}
	a := strings.TrimSpace(parts[0])
	b := strings.TrimSpace(parts[1])
	if a == "" || b == "" || a == b {
		return expense.Participants{}, fmt.Errorf("PARTICIPANTS must be two distinct names, got %q", raw)
	}
	return expense.Participants{a, b}, nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

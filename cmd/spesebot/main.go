package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MarcoRizz/Bot-spese-famigliari/internal/api"
	"github.com/MarcoRizz/Bot-spese-famigliari/internal/bot"
	"github.com/MarcoRizz/Bot-spese-famigliari/internal/config"
	"github.com/MarcoRizz/Bot-spese-famigliari/internal/flow"
	"github.com/MarcoRizz/Bot-spese-famigliari/internal/ledger"
	"github.com/MarcoRizz/Bot-spese-famigliari/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Pick the ledger backend
	var store ledger.Ledger
	if cfg.SheetID != "" {
		sheetsLedger, err := ledger.NewSheetsLedger(ctx, []byte(cfg.GoogleCredentials), cfg.SheetID)
		if err != nil {
			log.Fatalf("Failed to open sheets ledger: %v", err)
		}
		store = sheetsLedger
		log.Printf("Using Google Sheets ledger %s", cfg.SheetID)
	} else {
		pgLedger, err := ledger.NewPostgresLedger(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open postgres ledger: %v", err)
		}
		defer pgLedger.Close()
		store = pgLedger
		log.Println("Using Postgres ledger")
	}

	handler := flow.New(session.NewMemoryStore(), store, cfg.Participants)

	expenseBot, err := bot.New(cfg.BotToken, handler)
	if err != nil {
		log.Fatalf("Failed to create telegram bot: %v", err)
	}

	// Webhook delivery when a public URL is configured, polling otherwise
	var apiServer *api.API
	if cfg.WebhookURL != "" {
		if err := expenseBot.SetWebhook(cfg.WebhookURL); err != nil {
			log.Fatalf("Failed to set webhook: %v", err)
		}
		apiServer = api.New(cfg.WebBind, store, expenseBot.HandleWebhook)
	} else {
		apiServer = api.New(cfg.WebBind, store, nil)
		go expenseBot.Run(ctx)
	}

	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("API server error: %v", err)
		}
	}()

	// Wait for signal to stop
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down...")
}

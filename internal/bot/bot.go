// Package bot binds the expense flow to the Telegram transport.
package bot

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MarcoRizz/Bot-spese-famigliari/internal/flow"
	"github.com/MarcoRizz/Bot-spese-famigliari/internal/session"
)

type Bot struct {
	api  *tgbotapi.BotAPI
	flow *flow.Handler
}

func New(token string, fh *flow.Handler) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram session: %w", err)
	}

	b := &Bot{api: api, flow: fh}

	commands := []tgbotapi.BotCommand{
		{Command: "spesa", Description: "Registra una nuova spesa"},
		{Command: "elimina", Description: "Elimina l'ultima spesa salvata"},
		{Command: "visualizza", Description: "Mostra le ultime 10 spese"},
	}
	if _, err := api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		log.Printf("Failed to register bot commands: %v", err)
	}

	log.Printf("Telegram bot authorized as @%s", api.Self.UserName)
	return b, nil
}

// Run consumes updates over long polling until the context is done.
// Used when no webhook URL is configured.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			// Handlers serialize per (chat, user) themselves, so
			// updates for different keys may run concurrently.
			go b.handleUpdate(update)
		}
	}
}

// SetWebhook points Telegram at the given public URL.
func (b *Bot) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("failed to build webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}

// HandleWebhook is the HTTP endpoint Telegram posts updates to.
func (b *Bot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Failed to parse webhook update: %v", err)
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	go b.handleUpdate(*update)
	w.WriteHeader(http.StatusOK)
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(m *tgbotapi.Message) {
	ctx := context.Background()
	key := session.Key{ChatID: m.Chat.ID, UserID: m.From.ID}

	if m.IsCommand() {
		var reply *flow.Reply
		switch m.Command() {
		case "start", "help":
			reply = &flow.Reply{Text: "Comandi disponibili:\n" +
				"/spesa [importo categoria descrizione] - nuova spesa\n" +
				"/elimina - elimina l'ultima spesa\n" +
				"/visualizza - ultime 10 spese"}
		case "spesa":
			reply = b.flow.StartExpense(key, m.CommandArguments())
		case "elimina":
			reply = b.flow.DeleteLastPrompt(ctx)
		case "visualizza":
			reply = b.flow.ListRecent(ctx)
		}
		b.send(m.Chat.ID, reply)
		return
	}

	b.send(m.Chat.ID, b.flow.HandleText(key, strings.TrimSpace(m.Text)))
}

func (b *Bot) handleCallback(q *tgbotapi.CallbackQuery) {
	if q.Message == nil {
		return
	}

	action, ok := flow.ParseAction(q.Data)
	if !ok {
		log.Printf("Ignoring unknown callback payload %q", q.Data)
		b.answer(q.ID, "")
		return
	}

	key := session.Key{ChatID: q.Message.Chat.ID, UserID: q.From.ID}
	reply := b.flow.HandleAction(context.Background(), key, q.From.FirstName, action)

	if reply != nil && reply.Alert != "" {
		if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(q.ID, reply.Alert)); err != nil {
			log.Printf("Failed to answer callback with alert: %v", err)
		}
		return
	}

	b.answer(q.ID, "")
	if reply == nil {
		return
	}

	edit := tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID, reply.Text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if markup := keyboardMarkup(reply); markup != nil {
		edit.ReplyMarkup = markup
	}
	// Re-rendering an identical message makes Telegram complain; the
	// edit is always attempted and the error only logged.
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}
}

func (b *Bot) send(chatID int64, reply *flow.Reply) {
	if reply == nil {
		return
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup := keyboardMarkup(reply); markup != nil {
		msg.ReplyMarkup = *markup
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func keyboardMarkup(reply *flow.Reply) *tgbotapi.InlineKeyboardMarkup {
	if len(reply.Keyboard) == 0 {
		return nil
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(reply.Keyboard))
	for _, row := range reply.Keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Payload))
		}
		rows = append(rows, buttons)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcoRizz/Bot-spese-famigliari/internal/ledger"
)

// DeleteLastPrompt shows what the last ledger row is and asks for an
// explicit confirmation before anything is removed.
func (h *Handler) DeleteLastPrompt(ctx context.Context) *Reply {
	rows, err := h.ledger.ReadAll(ctx)
	if err != nil {
		return errorReply(&GatewayError{Op: "read", Err: err})
	}
	if len(rows) <= 1 {
		return &Reply{Text: "📭 Non ci sono spese da eliminare."}
	}

	last := rows[len(rows)-1]
	summary := fmt.Sprintf("💰 %s€ - %s (%s)",
		col(last, ledger.ColAmount), col(last, ledger.ColCategory), col(last, ledger.ColDate))

	return &Reply{
		Text: fmt.Sprintf("⚠️ *Sei sicuro di voler eliminare l'ultima spesa?*\n\n%s", summary),
		Keyboard: [][]Button{
			{
				{Label: "✅ Sì, elimina", Payload: "confirm_delete"},
				{Label: "❌ No, annulla", Payload: "back_to_menu"},
			},
		},
	}
}

// ConfirmDelete removes the ledger's current last row. The length is
// re-read right before deleting; a row appended in between moves the
// target, which the gateway contract accepts.
func (h *Handler) ConfirmDelete(ctx context.Context) *Reply {
	rows, err := h.ledger.ReadAll(ctx)
	if err != nil {
		return errorReply(&GatewayError{Op: "read", Err: err})
	}
	if len(rows) <= 1 {
		return &Reply{Text: "⚠️ Nulla da eliminare."}
	}

	last := rows[len(rows)-1]
	if err := h.ledger.DeleteRow(ctx, len(rows)); err != nil {
		return errorReply(&GatewayError{Op: "delete", Err: err})
	}
	return &Reply{Text: fmt.Sprintf("🗑️ Eliminata con successo: %s€", col(last, ledger.ColAmount))}
}

// ListRecent renders the 10 most recent rows, newest first, trusting
// the gateway's insertion order instead of re-sorting by date.
func (h *Handler) ListRecent(ctx context.Context) *Reply {
	rows, err := h.ledger.ReadAll(ctx)
	if err != nil {
		return errorReply(&GatewayError{Op: "read", Err: err})
	}
	if len(rows) <= 1 {
		return &Reply{Text: "📭 Il registro è vuoto."}
	}

	data := rows[1:]
	if len(data) > 10 {
		data = data[len(data)-10:]
	}

	var b strings.Builder
	b.WriteString("📋 *Ultimi 10 inserimenti:*\n\n")
	for i := len(data) - 1; i >= 0; i-- {
		row := data[i]
		fmt.Fprintf(&b, "📅 `%s` | 💰 *%s€*\n", col(row, ledger.ColDate), col(row, ledger.ColAmount))
		fmt.Fprintf(&b, "└ %s (da %s)\n\n", col(row, ledger.ColCategory), col(row, ledger.ColInsertedBy))
	}
	return &Reply{Text: b.String()}
}

// col reads a cell defensively: spreadsheet rows can come back short
// when trailing cells are empty.
func col(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

package flow

import (
	"fmt"
	"strings"

	"github.com/MarcoRizz/Bot-spese-famigliari/internal/expense"
)

// Button is one inline keyboard button, transport-neutral.
type Button struct {
	Label   string
	Payload string
}

// Reply is what a handler wants shown to the user. A nil Reply means
// the event was silently ignored. When Alert is set the text is shown
// as a popup on the pressed button instead of editing the message.
type Reply struct {
	Text     string
	Keyboard [][]Button
	Alert    string
}

func (h *Handler) renderDraft(d *expense.Draft) *Reply {
	paidPct := expense.SplitPercentages(d.PaidBy)
	refPct := expense.SplitPercentages(d.ReferTo)

	category := d.Category
	if category == "" {
		category = "❓"
	}
	description := d.Description
	if description == "" {
		description = "❓"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💰 *%.2f €*\n", d.Amount)
	fmt.Fprintf(&b, "📂 %s\n", category)
	fmt.Fprintf(&b, "📝 %s\n", description)
	fmt.Fprintf(&b, "📅 %s\n\n", d.Date.Format("02-01-2006"))
	fmt.Fprintf(&b, "💳 Pagato da: %s\n", h.splitNames(paidPct, false))
	fmt.Fprintf(&b, "👥 Riguarda: %s\n", h.splitNames(refPct, true))

	keyboard := [][]Button{
		{
			{Label: "📂 Categoria", Payload: "edit_cat"},
			{Label: "📅 Data", Payload: "edit_date"},
		},
		{
			{Label: "💳 Pagato", Payload: "edit_paid"},
			{Label: "👥 Riguarda", Payload: "edit_ref"},
		},
		{{Label: "📝 Descrizione", Payload: "edit_desc"}},
		{{Label: "✅ CONFERMA E SALVA", Payload: "confirm"}},
		{{Label: "❌ ANNULLA", Payload: "cancel"}},
	}

	return &Reply{Text: b.String(), Keyboard: keyboard}
}

// splitNames lists the participants with a nonzero share, in the
// configured order. For the refer-to line a full split collapses to
// "Entrambi".
func (h *Handler) splitNames(pct map[string]int, both bool) string {
	if both && pct[h.participants[0]] > 0 && pct[h.participants[1]] > 0 {
		return "Entrambi"
	}

	var names []string
	for _, name := range h.participants {
		if pct[name] > 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

func (h *Handler) categoryPicker() *Reply {
	var keyboard [][]Button
	for i := 0; i < len(expense.Categories); i += 3 {
		end := i + 3
		if end > len(expense.Categories) {
			end = len(expense.Categories)
		}
		var row []Button
		for _, cat := range expense.Categories[i:end] {
			row = append(row, Button{Label: cat, Payload: "cat:" + cat})
		}
		keyboard = append(keyboard, row)
	}
	keyboard = append(keyboard, []Button{{Label: "🔙 Indietro", Payload: "back"}})

	return &Reply{Text: "Seleziona categoria:", Keyboard: keyboard}
}

func (h *Handler) datePicker() *Reply {
	return &Reply{
		Text: "📅 Quando è avvenuta la spesa?\n(Oppure scrivi `GG-MM`)",
		Keyboard: [][]Button{
			{
				{Label: "Oggi", Payload: "set_date:today"},
				{Label: "Ieri", Payload: "set_date:yesterday"},
			},
			{{Label: "🔙 Indietro", Payload: "back"}},
		},
	}
}

func (h *Handler) participantPicker(question, prefix, equalLabel string) *Reply {
	return &Reply{
		Text: question,
		Keyboard: [][]Button{
			{
				{Label: h.participants[0], Payload: prefix + h.participants[0]},
				{Label: h.participants[1], Payload: prefix + h.participants[1]},
				{Label: equalLabel, Payload: prefix + "equal"},
			},
			{{Label: "🔙 Indietro", Payload: "back"}},
		},
	}
}

func (h *Handler) descriptionPrompt() *Reply {
	return &Reply{
		Text: "📝 Scrivi la descrizione della spesa:",
		Keyboard: [][]Button{
			{{Label: "🔙 Indietro", Payload: "back"}},
		},
	}
}

func (h *Handler) confirmedSummary(d *expense.Draft, insertedBy string) *Reply {
	var b strings.Builder
	b.WriteString("✅ *SPESA REGISTRATA*\n")
	b.WriteString("-------------------\n")
	fmt.Fprintf(&b, "💰 Importo: %.2f €\n", d.Amount)
	fmt.Fprintf(&b, "📂 Categoria: %s\n", d.Category)
	if d.Description != "" {
		fmt.Fprintf(&b, "📝 Descrizione: %s\n", d.Description)
	}
	fmt.Fprintf(&b, "📅 Data: %s\n", d.Date.Format("02-01-2006"))
	fmt.Fprintf(&b, "👤 Inserita da: %s", insertedBy)
	return &Reply{Text: b.String()}
}

// Package flow implements the draft-expense state machine: one draft
// per (chat, user), mutated by button actions and free text until it
// is confirmed into the ledger or cancelled.
package flow

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/MarcoRizz/Bot-spese-famigliari/internal/expense"
	"github.com/MarcoRizz/Bot-spese-famigliari/internal/ledger"
	"github.com/MarcoRizz/Bot-spese-famigliari/internal/session"
)

type Handler struct {
	store        session.Store
	ledger       ledger.Ledger
	participants expense.Participants
	now          func() time.Time
}

func New(store session.Store, l ledger.Ledger, participants expense.Participants) *Handler {
	return &Handler{
		store:        store,
		ledger:       l,
		participants: participants,
		now:          time.Now,
	}
}

// StartExpense opens a fresh draft for the key, discarding any draft
// already in progress there. The command argument is parsed best-effort
// for amount, category and description.
func (h *Handler) StartExpense(key session.Key, args string) *Reply {
	release := h.store.Acquire(key)
	defer release()

	parsed := expense.Parse(args)

	d := expense.NewDraft(h.participants, h.now())
	d.Amount = parsed.Amount
	d.Category = parsed.Category
	d.Description = parsed.Description

	h.store.Put(key, d)
	return h.renderDraft(d)
}

// HandleText routes a plain text message. With a pending-input flag the
// text fills that field; otherwise a bare number overwrites the amount.
// Without a draft the message is silently ignored.
func (h *Handler) HandleText(key session.Key, text string) *Reply {
	release := h.store.Acquire(key)
	defer release()

	d, ok := h.store.Get(key)
	if !ok {
		return nil
	}

	switch d.Pending {
	case expense.PendingDate:
		date, err := h.parseDayMonth(text)
		if err != nil {
			return errorReply(err)
		}
		d.Date = date
		d.Pending = expense.PendingNone
		return h.renderDraft(d)

	case expense.PendingDescription:
		d.Description = text
		d.Pending = expense.PendingNone
		return h.renderDraft(d)
	}

	// ParseFloat also accepts "inf" and "nan"; a draft amount must stay
	// a finite non-negative number.
	amount, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil || amount < 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return errorReply(&ValidationError{Msg: "❌ Importo non valido. Usa i numeri (es. 10.50)."})
	}
	d.Amount = amount
	return h.renderDraft(d)
}

// parseDayMonth reads "DD-MM" against the current year.
func (h *Handler) parseDayMonth(text string) (time.Time, error) {
	invalid := &ValidationError{Msg: "❌ Usa il formato GG-MM."}

	parts := strings.SplitN(strings.TrimSpace(text), "-", 2)
	if len(parts) != 2 {
		return time.Time{}, invalid
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return time.Time{}, invalid
	}

	now := h.now()
	date := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location())
	// time.Date normalizes overflow (32-01 becomes 01-02); reject it.
	if date.Day() != day || int(date.Month()) != month {
		return time.Time{}, invalid
	}
	return date, nil
}

// HandleAction applies one decoded button action. Delete-flow actions
// work without a session; everything else needs a live draft and is
// silently ignored when the session is gone (stale buttons).
func (h *Handler) HandleAction(ctx context.Context, key session.Key, userName string, a Action) *Reply {
	switch a.Kind {
	case KindConfirmDelete:
		return h.ConfirmDelete(ctx)
	case KindBackToMenu:
		return &Reply{Text: "Operazione annullata. La spesa è rimasta nel registro."}
	}

	release := h.store.Acquire(key)
	defer release()

	d, ok := h.store.Get(key)
	if !ok {
		return nil
	}

	switch a.Kind {
	case KindCancel:
		h.store.Delete(key)
		return &Reply{Text: "❌ Inserimento annullato."}

	case KindEditCategory:
		return h.categoryPicker()

	case KindSetCategory:
		if h.validCategory(a.Arg) {
			d.Category = a.Arg
		}
		return h.renderDraft(d)

	case KindEditDescription:
		d.Pending = expense.PendingDescription
		return h.descriptionPrompt()

	case KindEditDate:
		d.Pending = expense.PendingDate
		return h.datePicker()

	case KindSetDate:
		switch a.Arg {
		case "today":
			d.Date = h.now()
		case "yesterday":
			d.Date = h.now().AddDate(0, 0, -1)
		}
		d.Pending = expense.PendingNone
		return h.renderDraft(d)

	case KindEditPaidBy:
		return h.participantPicker("Chi ha pagato?", "paid:", "50/50")

	case KindSetPaidBy:
		if w, ok := h.weightsFor(a.Arg); ok {
			d.PaidBy = w
		}
		return h.renderDraft(d)

	case KindEditReferTo:
		return h.participantPicker("A chi si riferisce la spesa?", "ref:", "Entrambi")

	case KindSetReferTo:
		if w, ok := h.weightsFor(a.Arg); ok {
			d.ReferTo = w
		}
		return h.renderDraft(d)

	case KindBack:
		d.Pending = expense.PendingNone
		return h.renderDraft(d)

	case KindConfirm:
		return h.confirm(ctx, key, d, userName)
	}

	return nil
}

// confirm validates the draft, appends it and only then clears the
// session, so a failed append leaves the draft editable.
func (h *Handler) confirm(ctx context.Context, key session.Key, d *expense.Draft, userName string) *Reply {
	if d.Category == "" {
		return &Reply{Alert: "⚠️ Categoria obbligatoria!"}
	}

	row := ledger.Row{
		InsertedAt:  h.now(),
		Amount:      d.Amount,
		Category:    d.Category,
		Description: d.Description,
		Date:        d.Date,
		PaidBy:      d.PaidBy,
		ReferTo:     d.ReferTo,
		InsertedBy:  userName,
	}
	if err := h.ledger.Append(ctx, row); err != nil {
		return errorReply(&GatewayError{Op: "append", Err: err})
	}

	h.store.Delete(key)
	return h.confirmedSummary(d, userName)
}

func (h *Handler) validCategory(label string) bool {
	for _, cat := range expense.Categories {
		if cat == label {
			return true
		}
	}
	return false
}

func (h *Handler) weightsFor(arg string) (map[string]int, bool) {
	if arg == "equal" {
		return expense.EqualWeights(h.participants), true
	}
	if arg == h.participants[0] || arg == h.participants[1] {
		return expense.SingleWeights(h.participants, arg), true
	}
	return nil, false
}

package flow

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/MarcoRizz/Bot-spese-famigliari/internal/expense"
	"github.com/MarcoRizz/Bot-spese-famigliari/internal/ledger"
	"github.com/MarcoRizz/Bot-spese-famigliari/internal/session"
)

var (
	testParticipants = expense.Participants{"Marco", "Veronica"}
	testKey          = session.Key{ChatID: 10, UserID: 20}
	testNow          = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
)

func newTestHandler() (*Handler, *session.MemoryStore, *ledger.MemoryLedger) {
	store := session.NewMemoryStore()
	led := ledger.NewMemoryLedger()
	h := New(store, led, testParticipants)
	h.now = func() time.Time { return testNow }
	return h, store, led
}

func action(t *testing.T, payload string) Action {
	t.Helper()
	a, ok := ParseAction(payload)
	if !ok {
		t.Fatalf("ParseAction(%q) not recognized", payload)
	}
	return a
}

func TestStartExpensePopulatesDraft(t *testing.T) {
	h, store, _ := newTestHandler()

	reply := h.StartExpense(testKey, "15.50 Spesa groceries")
	if reply == nil {
		t.Fatal("StartExpense returned nil")
	}
	if !strings.Contains(reply.Text, "15.50 €") {
		t.Errorf("render missing amount: %q", reply.Text)
	}

	d, ok := store.Get(testKey)
	if !ok {
		t.Fatal("no draft stored")
	}
	if d.Amount != 15.50 || d.Category != "🛒Spesa" || d.Description != "groceries" {
		t.Errorf("draft = %+v", d)
	}
	if d.PaidBy["Marco"] != 1 || d.PaidBy["Veronica"] != 1 {
		t.Errorf("paid-by not equal split: %v", d.PaidBy)
	}
	if d.ReferTo["Marco"] != 1 || d.ReferTo["Veronica"] != 1 {
		t.Errorf("refer-to not equal split: %v", d.ReferTo)
	}
	if !d.Date.Equal(testNow) {
		t.Errorf("date = %v, want creation day", d.Date)
	}
}

func TestStartExpenseDiscardsPriorDraft(t *testing.T) {
	h, store, _ := newTestHandler()

	h.StartExpense(testKey, "10 Spesa")
	h.StartExpense(testKey, "7,50")

	d, _ := store.Get(testKey)
	if d.Amount != 7.50 || d.Category != "" {
		t.Errorf("old draft survived: %+v", d)
	}
}

func TestConfirmWithoutCategoryIsRejected(t *testing.T) {
	h, store, led := newTestHandler()
	h.StartExpense(testKey, "12")

	reply := h.HandleAction(context.Background(), testKey, "Marco", action(t, "confirm"))
	if reply == nil || reply.Alert == "" {
		t.Fatalf("expected alert reply, got %+v", reply)
	}
	if led.Appends() != 0 {
		t.Errorf("rejected confirm appended %d rows", led.Appends())
	}
	if _, ok := store.Get(testKey); !ok {
		t.Error("draft was cleared by a rejected confirm")
	}
}

func TestConfirmAppendsOnceAndClearsDraft(t *testing.T) {
	h, store, led := newTestHandler()
	ctx := context.Background()

	h.StartExpense(testKey, "12 cena")
	h.HandleAction(ctx, testKey, "Marco", action(t, "cat:🍕Ristorante"))

	reply := h.HandleAction(ctx, testKey, "Marco", action(t, "confirm"))
	if reply == nil || !strings.Contains(reply.Text, "SPESA REGISTRATA") {
		t.Fatalf("unexpected confirm reply: %+v", reply)
	}
	if led.Appends() != 1 {
		t.Fatalf("appends = %d, want 1", led.Appends())
	}
	if _, ok := store.Get(testKey); ok {
		t.Error("draft still present after confirm")
	}

	// A stale confirm on the destroyed draft is ignored, not re-appended.
	if got := h.HandleAction(ctx, testKey, "Marco", action(t, "confirm")); got != nil {
		t.Errorf("stale confirm returned %+v, want nil", got)
	}
	if led.Appends() != 1 {
		t.Errorf("stale confirm double-appended: %d rows", led.Appends())
	}

	rows, _ := led.ReadAll(ctx)
	if len(rows) != 2 {
		t.Fatalf("ledger rows = %d, want header + 1", len(rows))
	}
	row := rows[1]
	if row[ledger.ColAmount] != "12.00" || row[ledger.ColCategory] != "🍕Ristorante" ||
		row[ledger.ColDescription] != "cena" || row[ledger.ColInsertedBy] != "Marco" {
		t.Errorf("appended row = %v", row)
	}
}

func TestConfirmFailureKeepsDraft(t *testing.T) {
	h, store, led := newTestHandler()
	ctx := context.Background()

	h.StartExpense(testKey, "12 Spesa")
	led.Err = context.DeadlineExceeded

	reply := h.HandleAction(ctx, testKey, "Marco", action(t, "confirm"))
	if reply == nil || !strings.Contains(reply.Text, "Errore") {
		t.Fatalf("expected error reply, got %+v", reply)
	}
	if _, ok := store.Get(testKey); !ok {
		t.Fatal("draft lost after failed append")
	}

	// The gateway recovers and the same draft saves fine.
	led.Err = nil
	if reply := h.HandleAction(ctx, testKey, "Marco", action(t, "confirm")); reply == nil || reply.Alert != "" {
		t.Fatalf("confirm after recovery failed: %+v", reply)
	}
	if led.Appends() != 1 {
		t.Errorf("appends = %d, want 1", led.Appends())
	}
}

func TestCancelDestroysDraft(t *testing.T) {
	h, store, led := newTestHandler()

	h.StartExpense(testKey, "5")
	reply := h.HandleAction(context.Background(), testKey, "Marco", action(t, "cancel"))
	if reply == nil || !strings.Contains(reply.Text, "annullato") {
		t.Fatalf("unexpected cancel reply: %+v", reply)
	}
	if _, ok := store.Get(testKey); ok {
		t.Error("draft survived cancel")
	}
	if led.Appends() != 0 {
		t.Error("cancel appended a row")
	}
}

func TestStaleEditIsSilentlyIgnored(t *testing.T) {
	h, _, _ := newTestHandler()

	for _, payload := range []string{"edit_cat", "cat:🏠Casa", "edit_date", "paid:Marco", "back", "cancel"} {
		if reply := h.HandleAction(context.Background(), testKey, "Marco", action(t, payload)); reply != nil {
			t.Errorf("action %q without a draft returned %+v, want nil", payload, reply)
		}
	}
	if reply := h.HandleText(testKey, "12.50"); reply != nil {
		t.Errorf("text without a draft returned %+v, want nil", reply)
	}
}

func TestPaidBySingleThenEqualRoundTrip(t *testing.T) {
	h, store, _ := newTestHandler()
	ctx := context.Background()
	h.StartExpense(testKey, "9")

	h.HandleAction(ctx, testKey, "Marco", action(t, "paid:Veronica"))
	d, _ := store.Get(testKey)
	if d.PaidBy["Veronica"] != 1 || d.PaidBy["Marco"] != 0 {
		t.Fatalf("single split = %v", d.PaidBy)
	}

	h.HandleAction(ctx, testKey, "Marco", action(t, "paid:equal"))
	if d.PaidBy["Marco"] != 1 || d.PaidBy["Veronica"] != 1 {
		t.Errorf("equal split not restored: %v", d.PaidBy)
	}

	// Unknown names leave the weights alone.
	h.HandleAction(ctx, testKey, "Marco", action(t, "paid:Altro"))
	if d.PaidBy["Marco"] != 1 || d.PaidBy["Veronica"] != 1 {
		t.Errorf("unknown participant changed weights: %v", d.PaidBy)
	}
}

func TestDateEditing(t *testing.T) {
	h, store, _ := newTestHandler()
	ctx := context.Background()
	h.StartExpense(testKey, "9")

	// Opening the picker arms the pending flag for manual entry.
	reply := h.HandleAction(ctx, testKey, "Marco", action(t, "edit_date"))
	if reply == nil || !strings.Contains(reply.Text, "GG-MM") {
		t.Fatalf("unexpected picker reply: %+v", reply)
	}
	d, _ := store.Get(testKey)
	if d.Pending != expense.PendingDate {
		t.Fatalf("pending = %q, want date", d.Pending)
	}

	// Bad input re-prompts and leaves the state armed.
	if reply := h.HandleText(testKey, "not a date"); reply == nil || !strings.Contains(reply.Text, "GG-MM") {
		t.Fatalf("bad date input reply: %+v", reply)
	}
	if d.Pending != expense.PendingDate {
		t.Error("pending flag dropped on parse failure")
	}
	if reply := h.HandleText(testKey, "31-02"); reply == nil || !strings.Contains(reply.Text, "GG-MM") {
		t.Fatalf("impossible date accepted: %+v", reply)
	}

	// Valid DD-MM lands on the current year.
	h.HandleText(testKey, "05-02")
	want := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	if !d.Date.Equal(want) {
		t.Errorf("date = %v, want %v", d.Date, want)
	}
	if d.Pending != expense.PendingNone {
		t.Error("pending flag not cleared after valid date")
	}

	// Quick buttons.
	h.HandleAction(ctx, testKey, "Marco", action(t, "set_date:yesterday"))
	if !d.Date.Equal(testNow.AddDate(0, 0, -1)) {
		t.Errorf("yesterday = %v", d.Date)
	}
	h.HandleAction(ctx, testKey, "Marco", action(t, "set_date:today"))
	if !d.Date.Equal(testNow) {
		t.Errorf("today = %v", d.Date)
	}
}

func TestDescriptionEditing(t *testing.T) {
	h, store, _ := newTestHandler()
	ctx := context.Background()
	h.StartExpense(testKey, "9")

	h.HandleAction(ctx, testKey, "Marco", action(t, "edit_desc"))
	d, _ := store.Get(testKey)
	if d.Pending != expense.PendingDescription {
		t.Fatalf("pending = %q, want description", d.Pending)
	}

	h.HandleText(testKey, "cena fuori 2 persone")
	if d.Description != "cena fuori 2 persone" {
		t.Errorf("description = %q", d.Description)
	}
	if d.Pending != expense.PendingNone {
		t.Error("pending flag not cleared")
	}
}

func TestBackClearsPendingInput(t *testing.T) {
	h, store, _ := newTestHandler()
	ctx := context.Background()
	h.StartExpense(testKey, "9")

	h.HandleAction(ctx, testKey, "Marco", action(t, "edit_date"))
	h.HandleAction(ctx, testKey, "Marco", action(t, "back"))

	d, _ := store.Get(testKey)
	if d.Pending != expense.PendingNone {
		t.Errorf("pending = %q after back, want none", d.Pending)
	}
	// With the flag gone a bare number is an amount again.
	h.HandleText(testKey, "42")
	if d.Amount != 42 {
		t.Errorf("amount = %v, want 42", d.Amount)
	}
}

func TestBareNumberOverwritesAmount(t *testing.T) {
	h, store, _ := newTestHandler()
	h.StartExpense(testKey, "9")

	h.HandleText(testKey, "17,80")
	d, _ := store.Get(testKey)
	if d.Amount != 17.80 {
		t.Errorf("amount = %v, want 17.80", d.Amount)
	}

	// Non-numeric text without a pending flag gets a corrective prompt
	// and changes nothing. ParseFloat would happily read "inf" and
	// "nan", so those must be prompted away too.
	for _, text := range []string{"boh", "-3", "inf", "+Inf", "nan", "NaN"} {
		reply := h.HandleText(testKey, text)
		if reply == nil || !strings.Contains(reply.Text, "Importo non valido") {
			t.Fatalf("HandleText(%q) = %+v, want corrective prompt", text, reply)
		}
		if d.Amount != 17.80 {
			t.Errorf("HandleText(%q) changed amount to %v", text, d.Amount)
		}
	}
}

func TestDeleteLastOnEmptyLedger(t *testing.T) {
	h, _, led := newTestHandler()
	ctx := context.Background()

	reply := h.DeleteLastPrompt(ctx)
	if reply == nil || !strings.Contains(reply.Text, "Non ci sono spese") {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if len(reply.Keyboard) != 0 {
		t.Error("empty ledger prompt offered delete buttons")
	}

	if reply := h.ConfirmDelete(ctx); !strings.Contains(reply.Text, "Nulla da eliminare") {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if led.Deletes() != 0 {
		t.Errorf("deletes = %d, want 0", led.Deletes())
	}
}

func TestDeleteLastRemovesFinalRow(t *testing.T) {
	h, _, led := newTestHandler()
	ctx := context.Background()

	for _, args := range []string{"10 Spesa prima", "20 Bollette seconda"} {
		h.StartExpense(testKey, args)
		h.HandleAction(ctx, testKey, "Marco", action(t, "confirm"))
	}

	prompt := h.DeleteLastPrompt(ctx)
	if prompt == nil || !strings.Contains(prompt.Text, "20.00€") {
		t.Fatalf("prompt does not show the last row: %+v", prompt)
	}
	if len(prompt.Keyboard) == 0 {
		t.Fatal("prompt has no confirm/cancel buttons")
	}

	reply := h.ConfirmDelete(ctx)
	if reply == nil || !strings.Contains(reply.Text, "20.00€") {
		t.Fatalf("unexpected delete reply: %+v", reply)
	}

	rows, _ := led.ReadAll(ctx)
	if len(rows) != 2 || rows[1][ledger.ColAmount] != "10.00" {
		t.Errorf("ledger after delete = %v", rows)
	}
}

func TestListRecent(t *testing.T) {
	h, _, _ := newTestHandler()
	ctx := context.Background()

	if reply := h.ListRecent(ctx); !strings.Contains(reply.Text, "vuoto") {
		t.Fatalf("empty ledger reply: %+v", reply)
	}

	for i := 0; i < 12; i++ {
		h.StartExpense(testKey, "Spesa")
		h.HandleText(testKey, strconv.Itoa(i))
		h.HandleAction(ctx, testKey, "Marco", action(t, "confirm"))
	}

	reply := h.ListRecent(ctx)
	if strings.Count(reply.Text, "📅") != 10 {
		t.Errorf("listed %d rows, want 10", strings.Count(reply.Text, "📅"))
	}
	// Newest first: the last confirmed amount leads the listing.
	first := strings.Index(reply.Text, "*11.00€*")
	second := strings.Index(reply.Text, "*10.00€*")
	if first < 0 || second < 0 || first > second {
		t.Errorf("rows not newest-first:\n%s", reply.Text)
	}
	// The two oldest fell off.
	if strings.Contains(reply.Text, "*0.00€*") || strings.Contains(reply.Text, "*1.00€*") {
		t.Errorf("more than 10 rows listed:\n%s", reply.Text)
	}
}

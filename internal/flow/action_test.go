package flow

import (
	"testing"

	"github.com/MarcoRizz/Bot-spese-famigliari/internal/expense"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		payload  string
		wantKind Kind
		wantArg  string
		wantOk   bool
	}{
		{"edit_cat", KindEditCategory, "", true},
		{"cat:🛒Spesa", KindSetCategory, "🛒Spesa", true},
		{"edit_desc", KindEditDescription, "", true},
		{"edit_date", KindEditDate, "", true},
		{"set_date:today", KindSetDate, "today", true},
		{"set_date:yesterday", KindSetDate, "yesterday", true},
		{"edit_paid", KindEditPaidBy, "", true},
		{"paid:Marco", KindSetPaidBy, "Marco", true},
		{"paid:equal", KindSetPaidBy, "equal", true},
		{"edit_ref", KindEditReferTo, "", true},
		{"ref:equal", KindSetReferTo, "equal", true},
		{"confirm", KindConfirm, "", true},
		{"cancel", KindCancel, "", true},
		{"back", KindBack, "", true},
		{"confirm_delete", KindConfirmDelete, "", true},
		{"back_to_menu", KindBackToMenu, "", true},
		{"", 0, "", false},
		{"bogus", 0, "", false},
		{"cat", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, ok := ParseAction(tt.payload)
			if ok != tt.wantOk {
				t.Fatalf("ParseAction(%q) ok = %v, want %v", tt.payload, ok, tt.wantOk)
			}
			if !ok {
				return
			}
			if got.Kind != tt.wantKind || got.Arg != tt.wantArg {
				t.Errorf("ParseAction(%q) = %+v, want kind %v arg %q", tt.payload, got, tt.wantKind, tt.wantArg)
			}
		})
	}
}

func TestRenderKeyboardPayloadsParse(t *testing.T) {
	h, _, _ := newTestHandler()
	h.StartExpense(testKey, "10")

	replies := []*Reply{
		h.renderDraft(mustDraft(t, h)),
		h.categoryPicker(),
		h.datePicker(),
		h.participantPicker("Chi ha pagato?", "paid:", "50/50"),
		h.participantPicker("A chi si riferisce la spesa?", "ref:", "Entrambi"),
		h.descriptionPrompt(),
	}

	for _, reply := range replies {
		for _, row := range reply.Keyboard {
			for _, btn := range row {
				if _, ok := ParseAction(btn.Payload); !ok {
					t.Errorf("button %q emits unparseable payload %q", btn.Label, btn.Payload)
				}
			}
		}
	}
}

func mustDraft(t *testing.T, h *Handler) *expense.Draft {
	t.Helper()
	d, ok := h.store.Get(testKey)
	if !ok {
		t.Fatal("no draft")
	}
	return d
}

package flow

import "strings"

// Kind enumerates every button action the bot understands.
type Kind int

const (
	KindUnknown Kind = iota
	KindEditCategory
	KindSetCategory
	KindEditDescription
	KindEditDate
	KindSetDate
	KindEditPaidBy
	KindSetPaidBy
	KindEditReferTo
	KindSetReferTo
	KindConfirm
	KindCancel
	KindBack
	KindConfirmDelete
	KindBackToMenu
)

// Action is a callback payload decoded into its variant. The raw
// payload grammar ("cat:<label>", "paid:<name|equal>", ...) is owned
// here and parsed exactly once, at the transport boundary.
type Action struct {
	Kind Kind
	Arg  string
}

// ParseAction decodes a callback payload. Unknown payloads report
// ok=false and are ignored by the dispatcher.
func ParseAction(payload string) (Action, bool) {
	switch payload {
	case "edit_cat":
		return Action{Kind: KindEditCategory}, true
	case "edit_desc":
		return Action{Kind: KindEditDescription}, true
	case "edit_date":
		return Action{Kind: KindEditDate}, true
	case "edit_paid":
		return Action{Kind: KindEditPaidBy}, true
	case "edit_ref":
		return Action{Kind: KindEditReferTo}, true
	case "confirm":
		return Action{Kind: KindConfirm}, true
	case "cancel":
		return Action{Kind: KindCancel}, true
	case "back":
		return Action{Kind: KindBack}, true
	case "confirm_delete":
		return Action{Kind: KindConfirmDelete}, true
	case "back_to_menu":
		return Action{Kind: KindBackToMenu}, true
	}

	prefixes := []struct {
		prefix string
		kind   Kind
	}{
		{"cat:", KindSetCategory},
		{"set_date:", KindSetDate},
		{"paid:", KindSetPaidBy},
		{"ref:", KindSetReferTo},
	}
	for _, p := range prefixes {
		if strings.HasPrefix(payload, p.prefix) {
			return Action{Kind: p.kind, Arg: payload[len(p.prefix):]}, true
		}
	}

	return Action{}, false
}

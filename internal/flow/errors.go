package flow

import "fmt"

// ValidationError is bad user input: the draft is untouched and the
// user gets a corrective prompt.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// GatewayError is a ledger call that failed. The draft, if any, is
// kept so no unsaved work is lost; the failure is surfaced once with
// no retry.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// errorReply maps a typed error to the user-facing message for it.
func errorReply(err error) *Reply {
	switch e := err.(type) {
	case *ValidationError:
		return &Reply{Text: e.Msg}
	case *GatewayError:
		return &Reply{Text: fmt.Sprintf("❌ Errore: %v", e.Err)}
	default:
		return &Reply{Text: fmt.Sprintf("❌ Errore: %v", err)}
	}
}

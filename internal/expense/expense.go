package expense

import (
	"math"
	"time"
)

// Categories is the fixed set of spending categories, in menu order.
var Categories = []string{
	"🏠Casa",
	"🛒Spesa",
	"🍕Ristorante",
	"⚕️Salute",
	"✈️Viaggi",
	"🍿Tempo libero",
	"⚡Bollette",
	"🏃Sport",
	"🎁Regali",
	"👠Estetica",
	"🐕Curry",
	"✨Altro",
}

// PendingInput marks which field the next free-text message should fill.
type PendingInput string

const (
	PendingNone        PendingInput = ""
	PendingDate        PendingInput = "date"
	PendingDescription PendingInput = "description"
)

// Participants is the ordered pair of people sharing the ledger.
type Participants [2]string

// Draft is an in-progress expense being edited through the chat menu.
// It lives only in the session store and is never persisted as-is.
type Draft struct {
	Amount      float64
	Category    string
	Description string
	Date        time.Time
	PaidBy      map[string]int
	ReferTo     map[string]int
	Pending     PendingInput
}

// NewDraft returns a draft dated today with an equal split on both maps.
func NewDraft(p Participants, now time.Time) *Draft {
	return &Draft{
		Date:    now,
		PaidBy:  EqualWeights(p),
		ReferTo: EqualWeights(p),
	}
}

// EqualWeights gives every participant weight 1.
func EqualWeights(p Participants) map[string]int {
	return map[string]int{p[0]: 1, p[1]: 1}
}

// SingleWeights gives the chosen participant weight 1 and the other 0.
func SingleWeights(p Participants, chosen string) map[string]int {
	w := map[string]int{p[0]: 0, p[1]: 0}
	w[chosen] = 1
	return w
}

// SplitPercentages turns a weight map into integer percentages,
// rounding each entry independently. The results are not renormalized,
// so the sum may drift slightly from 100. A zero total maps every
// participant to 0.
func SplitPercentages(weights map[string]int) map[string]int {
	total := 0
	for _, w := range weights {
		total += w
	}

	pct := make(map[string]int, len(weights))
	for name, w := range weights {
		if total == 0 {
			pct[name] = 0
			continue
		}
		pct[name] = int(math.Round(float64(w) / float64(total) * 100))
	}
	return pct
}

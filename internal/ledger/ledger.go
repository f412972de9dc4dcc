package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Column layout of a ledger row. The first row returned by ReadAll is
// always the header.
const (
	ColTimestamp = iota
	ColAmount
	ColCategory
	ColDescription
	ColDate
	ColPaidBy
	ColReferTo
	ColInsertedBy
)

// Header is the first row of every ledger backend.
var Header = []string{
	"Timestamp", "Importo", "Categoria", "Descrizione",
	"Data", "Pagato_da", "Riferito_a", "Inserito_da",
}

// Row is one confirmed expense. Rows are immutable once appended;
// the only mutation the gateway allows is whole-row deletion.
type Row struct {
	InsertedAt  time.Time
	Amount      float64
	Category    string
	Description string
	Date        time.Time
	PaidBy      map[string]int
	ReferTo     map[string]int
	InsertedBy  string
}

// Values serializes the row in ledger column order.
func (r Row) Values() []string {
	paid, _ := json.Marshal(r.PaidBy)
	ref, _ := json.Marshal(r.ReferTo)
	return []string{
		r.InsertedAt.Format("2006-01-02 15:04:05"),
		fmt.Sprintf("%.2f", r.Amount),
		r.Category,
		r.Description,
		r.Date.Format("02-01-2006"),
		string(paid),
		string(ref),
		r.InsertedBy,
	}
}

// Ledger is the append-only record store of confirmed expenses.
// ReadAll returns the header row first, then data rows in insertion
// order. DeleteRow takes a 1-based index counting the header as row 1,
// matching spreadsheet row numbers. No atomicity is guaranteed between
// a ReadAll and a later DeleteRow.
type Ledger interface {
	Append(ctx context.Context, row Row) error
	ReadAll(ctx context.Context) ([][]string, error)
	DeleteRow(ctx context.Context, index int) error
}

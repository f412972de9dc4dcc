package ledger

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLedger keeps rows in memory. It backs tests and local runs
// without credentials; nothing survives the process.
type MemoryLedger struct {
	mu   sync.Mutex
	rows [][]string

	// Err, when set, is returned by every call. Lets tests exercise
	// gateway-failure paths.
	Err error

	appends int
	deletes int
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{rows: [][]string{append([]string(nil), Header...)}}
}

func (l *MemoryLedger) Append(ctx context.Context, row Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.appends++
	l.rows = append(l.rows, row.Values())
	return nil
}

func (l *MemoryLedger) ReadAll(ctx context.Context) ([][]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	out := make([][]string, len(l.rows))
	for i, r := range l.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (l *MemoryLedger) DeleteRow(ctx context.Context, index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	if index < 2 || index > len(l.rows) {
		return fmt.Errorf("row %d not found", index)
	}
	l.deletes++
	l.rows = append(l.rows[:index-1], l.rows[index:]...)
	return nil
}

// Appends reports how many rows were appended.
func (l *MemoryLedger) Appends() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appends
}

// Deletes reports how many rows were deleted.
func (l *MemoryLedger) Deletes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deletes
}

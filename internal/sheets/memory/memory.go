// Package memory is an in-process ledger used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "conti/internal/sheets"
)

type Ledger struct {
	mu   sync.Mutex
	rows []ports.Row
}

var _ ports.LedgerWriter = (*Ledger)(nil)

func New() *Ledger {
	return &Ledger{}
}

// Append stores the row and returns a synthetic row reference.
func (l *Ledger) Append(_ context.Context, r ports.Row) (string, error) {
	if r.ExpenseID == "" {
		return "", errors.New("ledger row requires an expense id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, r)
	return fmt.Sprintf("mem:%d", len(l.rows)), nil
}

// Rows returns a copy of every appended row in order.
func (l *Ledger) Rows() []ports.Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ports.Row(nil), l.rows...)
}

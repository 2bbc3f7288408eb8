// Package backend selects where the worker exports expense events.
package backend

import (
	"context"

	"conti/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the ledger instance and optional cleanup function
type Result struct {
	Ledger  sheets.LedgerWriter
	Cleanup CleanupFunc
}

// Factory creates ledgers based on configuration
type Factory interface {
	// CreateLedger creates a ledger instance based on the provided config
	CreateLedger(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for ledger creation
type Config struct {
	Type LedgerType

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// LedgerType represents the type of ledger
type LedgerType string

const (
	SheetsLedger LedgerType = "sheets"
	MemoryLedger LedgerType = "memory"
)

// String implements fmt.Stringer
func (t LedgerType) String() string {
	return string(t)
}

// IsValid returns true if the ledger type is valid
func (t LedgerType) IsValid() bool {
	switch t {
	case SheetsLedger, MemoryLedger:
		return true
	default:
		return false
	}
}

package backend

import (
	"context"
	"fmt"
	"log/slog"

	gsheet "conti/internal/sheets/google"
	"conti/internal/sheets/memory"
)

// headerEnsurer is implemented by ledgers that keep a header row.
type headerEnsurer interface {
	EnsureHeader(ctx context.Context) error
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	// sheets builds the Google client; tests replace it.
	sheets func(ctx context.Context, opts gsheet.Options) (*gsheet.Client, error)
}

// NewFactory creates a new ledger factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
		sheets: gsheet.New,
	}
}

// CreateLedger implements Factory.CreateLedger
func (f *DefaultFactory) CreateLedger(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SheetsLedger:
		return f.createSheetsLedger(ctx, config)
	case MemoryLedger:
		return f.createMemoryLedger()
	default:
		return nil, fmt.Errorf("unsupported ledger type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSheetsLedger(ctx context.Context, config Config) (*Result, error) {
	cli, err := f.sheets(ctx, gsheet.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	if err := ensureHeader(ctx, cli); err != nil {
		return nil, err
	}

	f.logger.Info("Initialized Google Sheets ledger", "spreadsheet_id", config.GoogleSpreadsheetID)

	return &Result{Ledger: cli}, nil
}

func (f *DefaultFactory) createMemoryLedger() (*Result, error) {
	f.logger.Info("Initialized memory ledger")
	return &Result{Ledger: memory.New()}, nil
}

func ensureHeader(ctx context.Context, h headerEnsurer) error {
	if err := h.EnsureHeader(ctx); err != nil {
		return fmt.Errorf("write ledger header: %w", err)
	}
	return nil
}

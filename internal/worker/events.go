package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conti/internal/amqp"
	"conti/internal/core"
	"conti/internal/metrics"
	"conti/internal/sheets"
	"conti/internal/storage"
)

// CardReconciler recomputes a card balance from its history.
type CardReconciler interface {
	RecomputeBalance(ctx context.Context, cardID string) (core.Money, error)
}

// EventWorker consumes domain events: expense events become ledger rows and
// every event reconciles the credit cards it names.
type EventWorker struct {
	store  *storage.SQLiteRepository
	ledger sheets.LedgerWriter
	cards  CardReconciler
	now    func() time.Time
}

// NewEventWorker builds a worker. A nil ledger disables the export.
func NewEventWorker(store *storage.SQLiteRepository, ledger sheets.LedgerWriter, cards CardReconciler) *EventWorker {
	return &EventWorker{
		store:  store,
		ledger: ledger,
		cards:  cards,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Handle implements amqp.Handler.
func (w *EventWorker) Handle(ctx context.Context, ev *amqp.Event) error {
	err := w.handle(ctx, ev)
	metrics.EventProcessed(string(ev.Type), err)
	return err
}

func (w *EventWorker) handle(ctx context.Context, ev *amqp.Event) error {
	slog.InfoContext(ctx, "Processing event",
		"type", ev.Type,
		"expense_id", ev.ExpenseID,
		"user_id", ev.UserID,
		"cards", len(ev.CreditCardIDs))

	switch ev.Type {
	case amqp.ExpenseCreated, amqp.ExpenseUpdated, amqp.ExpenseDeleted:
		if err := w.export(ctx, ev); err != nil {
			return fmt.Errorf("export expense %s: %w", ev.ExpenseID, err)
		}
	case amqp.RepaymentChanged:
	default:
		slog.WarnContext(ctx, "Ignoring unknown event type", "type", ev.Type)
		return nil
	}

	return w.reconcile(ctx, ev.CreditCardIDs)
}

func (w *EventWorker) reconcile(ctx context.Context, cardIDs []string) error {
	if w.cards == nil {
		return nil
	}
	for _, id := range cardIDs {
		bal, err := w.cards.RecomputeBalance(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			slog.DebugContext(ctx, "Card gone before reconciliation", "credit_card_id", id)
			continue
		}
		if err != nil {
			return fmt.Errorf("reconcile card %s: %w", id, err)
		}
		slog.DebugContext(ctx, "Reconciled card", "credit_card_id", id, "balance", bal.String())
	}
	return nil
}

func (w *EventWorker) export(ctx context.Context, ev *amqp.Event) error {
	if w.ledger == nil {
		return nil
	}
	e, err := w.store.GetExpenseIncludingDeleted(ctx, ev.ExpenseID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Expense missing, skipping ledger row", "expense_id", ev.ExpenseID)
		return nil
	}
	if err != nil {
		return err
	}

	row, err := w.row(ctx, ev, e)
	if err != nil {
		return err
	}
	ref, err := w.ledger.Append(ctx, row)
	metrics.LedgerAppend(err)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Appended ledger row", "expense_id", e.ID, "event", ev.Type, "ref", ref)
	return nil
}

// row resolves display names. Lookups that fail with ErrNotFound fall back
// to placeholders so a removed category never blocks the export.
func (w *EventWorker) row(ctx context.Context, ev *amqp.Event, e core.Expense) (sheets.Row, error) {
	recorded := ev.Timestamp
	if recorded.IsZero() {
		recorded = w.now()
	}
	r := sheets.Row{
		RecordedAt: recorded,
		Event:      string(ev.Type),
		ExpenseID:  e.ID,
		Date:       e.Date,
		Time:       e.Time,
		Amount:     e.Amount,
		Shared:     e.IsShared,
		Notes:      e.Notes,
		Category:   "Unknown",
	}

	if c, err := w.store.GetCategory(ctx, e.CategoryID); err == nil {
		r.Category = c.Name
	} else if !errors.Is(err, core.ErrNotFound) {
		return sheets.Row{}, err
	}
	if e.SubcategoryID != "" {
		if sc, err := w.store.GetSubcategory(ctx, e.SubcategoryID); err == nil {
			r.Subcategory = sc.Name
		} else if !errors.Is(err, core.ErrNotFound) {
			return sheets.Row{}, err
		}
	}
	if e.PaymentSourceID != "" {
		if ps, err := w.store.GetPaymentSource(ctx, e.PaymentSourceID); err == nil {
			r.PaymentSource = ps.Name
		} else if !errors.Is(err, core.ErrNotFound) {
			return sheets.Row{}, err
		}
	}
	if u, err := w.store.GetUser(ctx, e.UserID); err == nil {
		r.User = u.FullName
		if r.User == "" {
			r.User = u.Email
		}
	} else if !errors.Is(err, core.ErrNotFound) {
		return sheets.Row{}, err
	}
	return r, nil
}

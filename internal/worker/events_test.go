package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conti/internal/amqp"
	"conti/internal/core"
	"conti/internal/sheets"
	"conti/internal/sheets/memory"
	"conti/internal/storage"
)

var testNow = time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)

type fakeCards struct {
	calls []string
	err   map[string]error
}

func (f *fakeCards) RecomputeBalance(_ context.Context, id string) (core.Money, error) {
	f.calls = append(f.calls, id)
	if err := f.err[id]; err != nil {
		return core.Money{}, err
	}
	return core.Cents(100), nil
}

type failingLedger struct{}

func (failingLedger) Append(context.Context, sheets.Row) (string, error) {
	return "", errors.New("quota exceeded")
}

func newStore(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	store, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "conti.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedExpense(t *testing.T, store *storage.SQLiteRepository) core.Expense {
	t.Helper()
	ctx := context.Background()
	u := core.User{ID: uuid.NewString(), Email: "ana@example.com", FullName: "Ana", PasswordHash: "x", CreatedAt: testNow}
	require.NoError(t, store.CreateUser(ctx, u))
	e := core.Expense{
		ID:              uuid.NewString(),
		UserID:          u.ID,
		Amount:          core.Cents(4250),
		CategoryID:      "cat-food",
		SubcategoryID:   "sub-groceries",
		PaymentSourceID: "ps-savings",
		Date:            core.NewDate(2025, 3, 3),
		Notes:           "market",
		IsShared:        true,
		CreatedAt:       testNow,
		UpdatedAt:       testNow,
	}
	require.NoError(t, store.CreateExpense(ctx, e))
	return e
}

func TestEventWorker_ExportsExpenseEvents(t *testing.T) {
	store := newStore(t)
	e := seedExpense(t, store)
	ledger := memory.New()
	cards := &fakeCards{}
	w := NewEventWorker(store, ledger, cards)
	ctx := context.Background()

	ev := amqp.NewEvent(amqp.ExpenseCreated, e.UserID, e.ID, "card-1")
	require.NoError(t, w.Handle(ctx, ev))

	rows := ledger.Rows()
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "expense.created", r.Event)
	assert.Equal(t, e.ID, r.ExpenseID)
	assert.Equal(t, "Food & Dining", r.Category)
	assert.Equal(t, "Groceries", r.Subcategory)
	assert.Equal(t, "Savings Account", r.PaymentSource)
	assert.Equal(t, "Ana", r.User)
	assert.EqualValues(t, 4250, r.Amount.Cents)
	assert.True(t, r.Shared)
	assert.Equal(t, ev.Timestamp, r.RecordedAt)
	assert.Equal(t, []string{"card-1"}, cards.calls)

	require.NoError(t, store.SoftDeleteExpense(ctx, e.ID, e.UserID, testNow))
	require.NoError(t, w.Handle(ctx, amqp.NewEvent(amqp.ExpenseDeleted, e.UserID, e.ID)))
	rows = ledger.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "expense.deleted", rows[1].Event)
}

func TestEventWorker_MissingExpenseIsDropped(t *testing.T) {
	store := newStore(t)
	ledger := memory.New()
	w := NewEventWorker(store, ledger, nil)

	require.NoError(t, w.Handle(context.Background(), amqp.NewEvent(amqp.ExpenseUpdated, "u1", "missing")))
	assert.Empty(t, ledger.Rows())
}

func TestEventWorker_RepaymentOnlyReconciles(t *testing.T) {
	store := newStore(t)
	ledger := memory.New()
	cards := &fakeCards{err: map[string]error{"gone": core.ErrNotFound}}
	w := NewEventWorker(store, ledger, cards)

	ev := amqp.NewEvent(amqp.RepaymentChanged, "u1", "", "gone", "card-2")
	require.NoError(t, w.Handle(context.Background(), ev))
	assert.Empty(t, ledger.Rows())
	assert.Equal(t, []string{"gone", "card-2"}, cards.calls)
}

func TestEventWorker_Errors(t *testing.T) {
	store := newStore(t)
	e := seedExpense(t, store)
	ctx := context.Background()

	t.Run("ledger failure is returned for requeue", func(t *testing.T) {
		w := NewEventWorker(store, failingLedger{}, nil)
		err := w.Handle(ctx, amqp.NewEvent(amqp.ExpenseCreated, e.UserID, e.ID))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("reconcile failure is returned", func(t *testing.T) {
		cards := &fakeCards{err: map[string]error{"c1": errors.New("db locked")}}
		w := NewEventWorker(store, nil, cards)
		err := w.Handle(ctx, amqp.NewEvent(amqp.RepaymentChanged, e.UserID, "", "c1"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reconcile card c1")
	})

	t.Run("nil ledger skips export", func(t *testing.T) {
		w := NewEventWorker(store, nil, nil)
		assert.NoError(t, w.Handle(ctx, amqp.NewEvent(amqp.ExpenseCreated, e.UserID, e.ID)))
	})
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conti/internal/amqp"
	"conti/internal/core"
)

func TestCreditCardService_Repayments(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	ana := app.signUp(t, "ana@example.com", "Ana")
	bea := app.signUp(t, "bea@example.com", "Bea")

	_, err := app.cards.Create(ctx, ana.ID, core.CreditCardInput{CardName: "Bad", Last4: "12"})
	assert.ErrorIs(t, err, core.ErrValidation)

	card, err := app.cards.Create(ctx, ana.ID, core.CreditCardInput{
		CardName:       "Visa",
		Last4:          "4242",
		CreditLimit:    core.Cents(100000),
		OpeningBalance: core.Cents(5000),
	})
	require.NoError(t, err)
	assert.Equal(t, core.Cents(5000), card.CurrentBalance)

	in := expenseInput(2000, "2024-03-01")
	in.CreditCardID = card.ID
	_, err = app.expenses.Create(ctx, ana.ID, in)
	require.NoError(t, err)

	date := core.NewDate(2024, 3, 5)
	r, err := app.cards.AddRepayment(ctx, ana.ID, core.RepaymentInput{CreditCardID: card.ID, Amount: core.Cents(3000), PaymentDate: date})
	require.NoError(t, err)

	got, err := app.cards.Get(ctx, ana.ID, card.ID)
	require.NoError(t, err)
	assert.Equal(t, core.Cents(4000), got.CurrentBalance)

	_, err = app.cards.AddRepayment(ctx, bea.ID, core.RepaymentInput{CreditCardID: card.ID, Amount: core.Cents(1), PaymentDate: date})
	assert.ErrorIs(t, err, core.ErrNotFound, "cannot repay someone else's card")

	// Overpaying floors the balance at zero.
	_, err = app.cards.UpdateRepayment(ctx, ana.ID, r.ID, core.RepaymentInput{CreditCardID: card.ID, Amount: core.Cents(99999), PaymentDate: date})
	require.NoError(t, err)
	got, err = app.cards.Get(ctx, ana.ID, card.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.IsZero())

	_, err = app.cards.UpdateRepayment(ctx, bea.ID, r.ID, core.RepaymentInput{CreditCardID: card.ID, Amount: core.Cents(1), PaymentDate: date})
	assert.ErrorIs(t, err, core.ErrNotFound)

	list, err := app.cards.ListRepayments(ctx, ana.ID, card.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, app.cards.DeleteRepayment(ctx, ana.ID, r.ID))
	got, err = app.cards.Get(ctx, ana.ID, card.ID)
	require.NoError(t, err)
	assert.Equal(t, core.Cents(7000), got.CurrentBalance)

	assert.Contains(t, app.events.types(), amqp.RepaymentChanged)
}

func TestCreditCardService_UpdateAndDelete(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	ana := app.signUp(t, "ana@example.com", "Ana")
	bea := app.signUp(t, "bea@example.com", "Bea")

	card, err := app.cards.Create(ctx, ana.ID, core.CreditCardInput{CardName: "Visa", OpeningBalance: core.Cents(100)})
	require.NoError(t, err)
	in := expenseInput(900, "2024-03-01")
	in.CreditCardID = card.ID
	e, err := app.expenses.Create(ctx, ana.ID, in)
	require.NoError(t, err)

	updated, err := app.cards.Update(ctx, ana.ID, card.ID, core.CreditCardInput{CardName: "Visa Gold", OpeningBalance: core.Cents(1100)})
	require.NoError(t, err)
	assert.Equal(t, core.Cents(2000), updated.CurrentBalance)

	_, err = app.cards.Update(ctx, bea.ID, card.ID, core.CreditCardInput{CardName: "Mine"})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, app.cards.Delete(ctx, bea.ID, card.ID), core.ErrNotFound)

	require.NoError(t, app.cards.Delete(ctx, ana.ID, card.ID))
	cards, err := app.cards.List(ctx, ana.ID)
	require.NoError(t, err)
	assert.Empty(t, cards)

	kept, err := app.expenses.Get(ctx, ana.ID, e.ID)
	require.NoError(t, err)
	assert.Empty(t, kept.CreditCardID, "expense history survives card deletion")
}

func TestCreditCardService_RecomputeAll(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	ana := app.signUp(t, "ana@example.com", "Ana")

	card, err := app.cards.Create(ctx, ana.ID, core.CreditCardInput{CardName: "Visa", OpeningBalance: core.Cents(500)})
	require.NoError(t, err)
	_, err = app.cards.Create(ctx, ana.ID, core.CreditCardInput{CardName: "Amex"})
	require.NoError(t, err)

	// Drift the stored balance behind the service's back.
	require.NoError(t, app.store.SetCreditCardBalance(ctx, card.ID, core.Cents(123456), card.UpdatedAt))

	n, err := app.cards.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := app.cards.Get(ctx, ana.ID, card.ID)
	require.NoError(t, err)
	assert.Equal(t, core.Cents(500), got.CurrentBalance)
}

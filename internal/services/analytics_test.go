package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conti/internal/analytics"
	"conti/internal/core"
)

func TestAnalyticsService_Report(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	ana := app.signUp(t, "ana@example.com", "Ana")
	bea := app.signUp(t, "bea@example.com", "Bea")
	app.link(t, ana, bea)

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	app.analytics.now = func() time.Time { return now }

	card, err := app.cards.Create(ctx, ana.ID, core.CreditCardInput{CardName: "Visa", CreditLimit: core.Cents(10000)})
	require.NoError(t, err)

	shared := expenseInput(1000, "2024-03-02")
	shared.IsShared = true
	shared.CreditCardID = card.ID
	_, err = app.expenses.Create(ctx, ana.ID, shared)
	require.NoError(t, err)

	beaIn := expenseInput(3000, "2024-03-05")
	beaIn.CategoryID = "cat-bills"
	beaIn.PaymentSourceID = "ps-savings"
	_, err = app.expenses.Create(ctx, bea.ID, beaIn)
	require.NoError(t, err)

	_, err = app.expenses.Create(ctx, ana.ID, expenseInput(500, "2024-01-15"))
	require.NoError(t, err)

	r, err := app.analytics.Report(ctx, ana.ID, analytics.Filter{Period: analytics.PeriodMonth, Kind: analytics.KindAll})
	require.NoError(t, err)

	assert.Equal(t, core.Cents(4000), r.Stats.TotalSpending)
	assert.Equal(t, 2, r.Stats.ExpenseCount)
	assert.Equal(t, core.Cents(4500), r.AllTimeTotal)
	assert.Equal(t, core.Cents(4000), r.CurrentMonthTotal)

	require.Len(t, r.Categories, 2)
	assert.Equal(t, "Bills & Utilities", r.Categories[0].Name)
	assert.Equal(t, 75.0, r.Categories[0].Percentage)

	require.Len(t, r.Users, 2)
	assert.Equal(t, "Bea", r.Users[0].UserName)

	require.Len(t, r.CreditCards, 1)
	assert.Equal(t, core.Cents(1000), r.CreditCards[0].Spend)
	assert.Equal(t, 10.0, r.CreditCards[0].Utilization)

	require.Len(t, r.Shared.Members, 2)
	assert.Equal(t, core.Cents(500), r.Shared.Members[0].Net, "ana paid the whole shared expense")

	assert.Len(t, r.Trend, 10)
	assert.NotEmpty(t, r.PaymentSources)

	trends, err := app.analytics.Trends(ctx, bea.ID, analytics.Monthly, analytics.KindAll, core.Date{}, core.Date{})
	require.NoError(t, err)
	require.Len(t, trends, 3)
	assert.Equal(t, core.Cents(500), trends[0].Amount)
	assert.True(t, trends[1].Amount.IsZero())
	assert.Equal(t, core.Cents(4000), trends[2].Amount)
}

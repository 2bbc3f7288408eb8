package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conti/internal/core"
)

func TestCategoryDistribution(t *testing.T) {
	cats := []core.Category{
		{ID: "food", Name: "Food", Icon: "🍔", Color: "#ff0000"},
	}
	es := []core.Expense{
		exp("1", "u1", "food", 100, "2024-03-01"),
		exp("2", "u1", "gone", 300, "2024-03-01"),
	}

	got := CategoryDistribution(es, cats)
	require.Len(t, got, 2)

	assert.Equal(t, Slice{ID: "gone", Name: "Unknown", Icon: "💰", Color: "#999", Amount: core.Cents(300), Count: 1, Percentage: 75}, got[0])
	assert.Equal(t, Slice{ID: "food", Name: "Food", Icon: "🍔", Color: "#ff0000", Amount: core.Cents(100), Count: 1, Percentage: 25}, got[1])

	assert.Empty(t, CategoryDistribution(nil, cats))
}

func TestSubcategoryDistribution(t *testing.T) {
	subs := []core.Subcategory{{ID: "groceries", Name: "Groceries", Icon: "🛒", Color: "#00ff00"}}
	a := exp("1", "u1", "food", 100, "2024-03-01")
	a.SubcategoryID = "groceries"
	b := exp("2", "u1", "food", 900, "2024-03-01")

	got := SubcategoryDistribution([]core.Expense{a, b}, subs)
	require.Len(t, got, 1)
	assert.Equal(t, "Groceries", got[0].Name)
	assert.Equal(t, 100.0, got[0].Percentage)
}

func TestPaymentSourceDistribution(t *testing.T) {
	sources := []core.PaymentSource{{ID: "ps-savings", Name: "Savings", Type: core.SourceSavingsAccount, Icon: "🏦"}}
	a := exp("1", "u1", "food", 100, "2024-03-01")
	a.PaymentSourceID = "ps-savings"
	b := exp("2", "u1", "food", 100, "2024-03-01")
	c := exp("3", "u1", "food", 200, "2024-03-01")

	got := PaymentSourceDistribution([]core.Expense{a, b, c}, sources)
	require.Len(t, got, 2)
	assert.Equal(t, "Unassigned", got[0].Name)
	assert.Equal(t, core.Cents(300), got[0].Amount)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, "Savings", got[1].Name)
	assert.Equal(t, 25.0, got[1].Percentage)
}

func TestCreditCardSpend(t *testing.T) {
	cards := []core.CreditCard{
		{ID: "c1", CardName: "Zeta", CurrentBalance: core.Cents(5000), CreditLimit: core.Cents(20000)},
		{ID: "c2", CardName: "Alpha", CurrentBalance: core.Cents(100)},
		{ID: "c3", CardName: "Beta", CurrentBalance: core.Cents(0), CreditLimit: core.Cents(1000)},
	}
	a := exp("1", "u1", "food", 700, "2024-03-01")
	a.CreditCardID = "c1"
	b := exp("2", "u1", "food", 300, "2024-03-01")
	b.CreditCardID = "c1"
	c := exp("3", "u1", "food", 999, "2024-03-01")
	c.CreditCardID = "unknown"

	got := CreditCardSpend([]core.Expense{a, b, c}, cards)
	require.Len(t, got, 3)
	assert.Equal(t, "c1", got[0].CreditCardID)
	assert.Equal(t, core.Cents(1000), got[0].Spend)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, 25.0, got[0].Utilization)
	assert.Equal(t, "Alpha", got[1].CardName, "zero spend ordered by name")
	assert.Equal(t, 0.0, got[1].Utilization, "no limit means no utilization")
	assert.Equal(t, "Beta", got[2].CardName)
}

func TestUserComparison(t *testing.T) {
	es := []core.Expense{
		exp("1", "u1", "food", 100, "2024-03-01"),
		exp("2", "u2", "food", 300, "2024-03-01"),
	}
	got := UserComparison(es, map[string]string{"u2": "Bea"})
	require.Len(t, got, 2)
	assert.Equal(t, UserShare{UserID: "u2", UserName: "Bea", Total: core.Cents(300), Percentage: 75}, got[0])
	assert.Equal(t, "u1", got[1].UserName, "falls back to the id")
}

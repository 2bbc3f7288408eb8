// Package analytics derives spending statistics from an in-memory expense
// set. Every function is pure; callers load and authorize the data.
package analytics

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"conti/internal/core"
)

var hundred = decimal.NewFromInt(100)

func Total(es []core.Expense) core.Money {
	var total core.Money
	for _, e := range es {
		total = total.Add(e.Amount)
	}
	return total
}

// Average is the mean amount per expense, rounded to the cent.
func Average(es []core.Expense) core.Money {
	return divide(Total(es), len(es))
}

// DailyAverage spreads the total over the distinct dates that have spending.
func DailyAverage(es []core.Expense) core.Money {
	return divide(Total(es), len(GroupByDate(es)))
}

func divide(m core.Money, n int) core.Money {
	if n == 0 {
		return core.Money{}
	}
	return core.MoneyFromDecimal(m.Decimal().Div(decimal.NewFromInt(int64(n))))
}

// Percentage returns value as a percent of total rounded to two decimals,
// or 0 when total is zero.
func Percentage(value, total core.Money) float64 {
	if total.Cents == 0 {
		return 0
	}
	return value.Decimal().Div(total.Decimal()).Mul(hundred).Round(2).InexactFloat64()
}

func groupBy(es []core.Expense, key func(core.Expense) string) map[string]core.Money {
	out := make(map[string]core.Money)
	for _, e := range es {
		k := key(e)
		out[k] = out[k].Add(e.Amount)
	}
	return out
}

func GroupByCategory(es []core.Expense) map[string]core.Money {
	return groupBy(es, func(e core.Expense) string { return e.CategoryID })
}

func GroupByUser(es []core.Expense) map[string]core.Money {
	return groupBy(es, func(e core.Expense) string { return e.UserID })
}

// GroupByDate keys totals by YYYY-MM-DD.
func GroupByDate(es []core.Expense) map[string]core.Money {
	return groupBy(es, func(e core.Expense) string { return e.Date.String() })
}

type CategoryAmount struct {
	CategoryID string     `json:"category_id"`
	Amount     core.Money `json:"amount"`
}

// TopCategories returns the limit largest categories by amount. Ties are
// broken by id so the result is stable.
func TopCategories(es []core.Expense, limit int) []CategoryAmount {
	grouped := GroupByCategory(es)
	out := make([]CategoryAmount, 0, len(grouped))
	for id, amount := range grouped {
		out = append(out, CategoryAmount{CategoryID: id, Amount: amount})
	}
	slices.SortFunc(out, func(a, b CategoryAmount) int {
		if c := cmp.Compare(b.Amount.Cents, a.Amount.Cents); c != 0 {
			return c
		}
		return cmp.Compare(a.CategoryID, b.CategoryID)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type Stats struct {
	TotalSpending core.Money `json:"total_spending"`
	AverageDaily  core.Money `json:"average_daily"`
	CategoryCount int        `json:"category_count"`
	ExpenseCount  int        `json:"expense_count"`
}

func ComputeStats(es []core.Expense) Stats {
	return Stats{
		TotalSpending: Total(es),
		AverageDaily:  DailyAverage(es),
		CategoryCount: len(GroupByCategory(es)),
		ExpenseCount:  len(es),
	}
}

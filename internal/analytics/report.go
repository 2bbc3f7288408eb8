package analytics

import (
	"time"

	"conti/internal/core"
)

const topCategoryLimit = 5

// Dataset is everything a report is computed from. Expenses is the full
// visible set; the filter is applied by BuildReport.
type Dataset struct {
	Expenses       []core.Expense
	Categories     []core.Category
	Subcategories  []core.Subcategory
	PaymentSources []core.PaymentSource
	CreditCards    []core.CreditCard
	Partner        *core.Partner
	UserNames      map[string]string
}

type Report struct {
	Period            Period           `json:"period"`
	Kind              Kind             `json:"kind"`
	Start             core.Date        `json:"start"`
	End               core.Date        `json:"end"`
	Stats             Stats            `json:"stats"`
	AverageExpense    core.Money       `json:"average_expense"`
	CurrentMonthTotal core.Money       `json:"current_month_total"`
	AllTimeTotal      core.Money       `json:"all_time_total"`
	Categories        []Slice          `json:"categories"`
	TopCategories     []CategoryAmount `json:"top_categories"`
	Subcategories     []Slice          `json:"subcategories"`
	PaymentSources    []Slice          `json:"payment_sources"`
	CreditCards       []CardSpend      `json:"credit_cards"`
	Trend             []TrendPoint     `json:"trend"`
	Users             []UserShare      `json:"users"`
	Shared            SharedSplit      `json:"shared"`
}

func BuildReport(d Dataset, f Filter, now time.Time) Report {
	filtered := f.Apply(d.Expenses, now)
	start, end := f.Bounds(now)
	return Report{
		Period:            f.Period,
		Kind:              f.Kind,
		Start:             start,
		End:               end,
		Stats:             ComputeStats(filtered),
		AverageExpense:    Average(filtered),
		CurrentMonthTotal: CurrentMonthTotal(d.Expenses, now),
		AllTimeTotal:      Total(d.Expenses),
		Categories:        CategoryDistribution(filtered, d.Categories),
		TopCategories:     TopCategories(filtered, topCategoryLimit),
		Subcategories:     SubcategoryDistribution(filtered, d.Subcategories),
		PaymentSources:    PaymentSourceDistribution(filtered, d.PaymentSources),
		CreditCards:       CreditCardSpend(filtered, d.CreditCards),
		Trend:             DailyTrend(filtered, f.Period, now),
		Users:             UserComparison(filtered, d.UserNames),
		Shared:            Split(filtered, d.Partner),
	}
}

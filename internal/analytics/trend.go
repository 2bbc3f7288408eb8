package analytics

import (
	"fmt"
	"sort"
	"time"

	"conti/internal/core"
)

type TrendPoint struct {
	Date   core.Date  `json:"date"`
	Label  string     `json:"label"`
	Amount core.Money `json:"amount"`
}

// DailyTrend returns one zero-filled point per day from the first of the
// month to today for PeriodMonth. Other periods get one point per date
// with spending, oldest first.
func DailyTrend(es []core.Expense, period Period, now time.Time) []TrendPoint {
	grouped := GroupByDate(es)
	if period == PeriodMonth {
		today := core.DateOf(now)
		var out []TrendPoint
		for d := StartOfMonth(now); !d.After(today); d = d.AddDays(1) {
			out = append(out, TrendPoint{Date: d, Label: core.FormatShortDate(d), Amount: grouped[d.String()]})
		}
		return out
	}

	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		d, err := core.ParseDate(k)
		if err != nil {
			continue
		}
		out = append(out, TrendPoint{Date: d, Label: core.FormatShortDate(d), Amount: grouped[k]})
	}
	return out
}

type Granularity string

const (
	Daily   Granularity = "day"
	Weekly  Granularity = "week"
	Monthly Granularity = "month"
)

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly:
		return g, nil
	default:
		return "", fmt.Errorf("unknown granularity %q: %w", s, core.ErrValidation)
	}
}

// bucketStart maps d to the first day of its bucket. Weeks start on Monday.
func bucketStart(d core.Date, g Granularity) core.Date {
	switch g {
	case Weekly:
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDays(-offset)
	case Monthly:
		return core.NewDate(d.Year(), d.Month(), 1)
	default:
		return d
	}
}

func nextBucket(d core.Date, g Granularity) core.Date {
	switch g {
	case Weekly:
		return d.AddDays(7)
	case Monthly:
		return core.DateOf(d.AddDate(0, 1, 0))
	default:
		return d.AddDays(1)
	}
}

func bucketLabel(d core.Date, g Granularity) string {
	if g == Monthly {
		return core.FormatMonth(d)
	}
	return core.FormatShortDate(d)
}

// MaxTrendPoints caps the number of buckets one trend may span.
const MaxTrendPoints = 1000

// Buckets sums es into day, week or month buckets, zero-filling every
// bucket between the first and last one with spending. Spans wider than
// MaxTrendPoints buckets fail with core.ErrValidation.
func Buckets(es []core.Expense, g Granularity) ([]TrendPoint, error) {
	if len(es) == 0 {
		return nil, nil
	}
	sums := make(map[string]core.Money)
	var first, last core.Date
	for i, e := range es {
		b := bucketStart(e.Date, g)
		sums[b.String()] = sums[b.String()].Add(e.Amount)
		if i == 0 || b.Before(first) {
			first = b
		}
		if i == 0 || b.After(last) {
			last = b
		}
	}
	var out []TrendPoint
	for d := first; !d.After(last); d = nextBucket(d, g) {
		if len(out) == MaxTrendPoints {
			return nil, fmt.Errorf("trend from %s to %s exceeds %d %s buckets, narrow start and end: %w",
				first, last, MaxTrendPoints, g, core.ErrValidation)
		}
		out = append(out, TrendPoint{Date: d, Label: bucketLabel(d, g), Amount: sums[d.String()]})
	}
	return out, nil
}

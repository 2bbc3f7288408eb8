package analytics

import (
	"fmt"
	"time"

	"conti/internal/core"
)

type Period string

const (
	PeriodMonth  Period = "month"
	PeriodWeek   Period = "week"
	PeriodAll    Period = "all"
	PeriodCustom Period = "custom"
)

type Kind string

const (
	KindAll        Kind = "all"
	KindShared     Kind = "shared"
	KindIndividual Kind = "individual"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodMonth, nil
	case PeriodMonth, PeriodWeek, PeriodAll, PeriodCustom:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q: %w", s, core.ErrValidation)
	}
}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case "":
		return KindAll, nil
	case KindAll, KindShared, KindIndividual:
		return k, nil
	default:
		return "", fmt.Errorf("unknown expense kind %q: %w", s, core.ErrValidation)
	}
}

// Filter selects the expenses analytics are computed over.
type Filter struct {
	Period Period
	Kind   Kind
	// Start and End bound PeriodCustom, inclusive. Either may be zero.
	Start core.Date
	End   core.Date
}

// StartOfMonth is the first day of now's month.
func StartOfMonth(now time.Time) core.Date {
	return core.NewDate(now.Year(), int(now.Month()), 1)
}

// Bounds returns the inclusive date range f covers relative to now.
// Zero dates mean unbounded.
func (f Filter) Bounds(now time.Time) (start, end core.Date) {
	switch f.Period {
	case PeriodMonth:
		return StartOfMonth(now), core.Date{}
	case PeriodWeek:
		return core.DateOf(now).AddDays(-6), core.Date{}
	case PeriodCustom:
		return f.Start, f.End
	default:
		return core.Date{}, core.Date{}
	}
}

// Apply returns the expenses matching f, preserving order.
func (f Filter) Apply(es []core.Expense, now time.Time) []core.Expense {
	start, end := f.Bounds(now)
	out := make([]core.Expense, 0, len(es))
	for _, e := range es {
		switch f.Kind {
		case KindShared:
			if !e.IsShared {
				continue
			}
		case KindIndividual:
			if e.IsShared {
				continue
			}
		}
		if !start.IsZero() && e.Date.Before(start) {
			continue
		}
		if !end.IsZero() && e.Date.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// CurrentMonthTotal sums the expenses dated within now's calendar month.
func CurrentMonthTotal(es []core.Expense, now time.Time) core.Money {
	start := StartOfMonth(now)
	end := core.DateOf(start.AddDate(0, 1, -1))
	var total core.Money
	for _, e := range es {
		if !e.Date.Before(start) && !e.Date.After(end) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

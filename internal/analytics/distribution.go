package analytics

import (
	"cmp"
	"slices"

	"conti/internal/core"
)

const (
	unknownName  = "Unknown"
	unknownIcon  = "💰"
	unknownColor = "#999"
	unassigned   = "Unassigned"
)

// Slice is one labelled share of a total.
type Slice struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Icon       string     `json:"icon"`
	Color      string     `json:"color,omitempty"`
	Amount     core.Money `json:"amount"`
	Count      int        `json:"count"`
	Percentage float64    `json:"percentage"`
}

type label struct {
	name, icon, color string
}

// distribute groups es by key, labels each bucket and sorts by amount desc.
func distribute(es []core.Expense, key func(core.Expense) string, lookup func(id string) label) []Slice {
	var total core.Money
	byID := make(map[string]*Slice)
	var order []string
	for _, e := range es {
		id := key(e)
		s, ok := byID[id]
		if !ok {
			l := lookup(id)
			s = &Slice{ID: id, Name: l.name, Icon: l.icon, Color: l.color}
			byID[id] = s
			order = append(order, id)
		}
		s.Amount = s.Amount.Add(e.Amount)
		s.Count++
		total = total.Add(e.Amount)
	}
	out := make([]Slice, 0, len(order))
	for _, id := range order {
		s := byID[id]
		s.Percentage = Percentage(s.Amount, total)
		out = append(out, *s)
	}
	slices.SortStableFunc(out, func(a, b Slice) int {
		return cmp.Compare(b.Amount.Cents, a.Amount.Cents)
	})
	return out
}

// CategoryDistribution breaks es down by category. Categories missing from
// cats are labelled Unknown.
func CategoryDistribution(es []core.Expense, cats []core.Category) []Slice {
	byID := make(map[string]core.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	return distribute(es,
		func(e core.Expense) string { return e.CategoryID },
		func(id string) label {
			c, ok := byID[id]
			if !ok {
				return label{unknownName, unknownIcon, unknownColor}
			}
			return label{c.Name, c.Icon, c.Color}
		})
}

// SubcategoryDistribution breaks down the expenses that have a subcategory.
func SubcategoryDistribution(es []core.Expense, subs []core.Subcategory) []Slice {
	byID := make(map[string]core.Subcategory, len(subs))
	for _, s := range subs {
		byID[s.ID] = s
	}
	var tagged []core.Expense
	for _, e := range es {
		if e.SubcategoryID != "" {
			tagged = append(tagged, e)
		}
	}
	return distribute(tagged,
		func(e core.Expense) string { return e.SubcategoryID },
		func(id string) label {
			s, ok := byID[id]
			if !ok {
				return label{unknownName, unknownIcon, unknownColor}
			}
			return label{s.Name, s.Icon, s.Color}
		})
}

// PaymentSourceDistribution puts expenses without a payment source in an
// Unassigned bucket.
func PaymentSourceDistribution(es []core.Expense, sources []core.PaymentSource) []Slice {
	byID := make(map[string]core.PaymentSource, len(sources))
	for _, s := range sources {
		byID[s.ID] = s
	}
	return distribute(es,
		func(e core.Expense) string { return e.PaymentSourceID },
		func(id string) label {
			if id == "" {
				return label{unassigned, unknownIcon, unknownColor}
			}
			s, ok := byID[id]
			if !ok {
				return label{unknownName, unknownIcon, unknownColor}
			}
			return label{s.Name, s.Icon, ""}
		})
}

type CardSpend struct {
	CreditCardID string     `json:"credit_card_id"`
	CardName     string     `json:"card_name"`
	Last4        string     `json:"card_number_last4,omitempty"`
	Spend        core.Money `json:"spend"`
	Count        int        `json:"count"`
	Balance      core.Money `json:"balance"`
	Limit        core.Money `json:"credit_limit"`
	// Utilization is balance as a percent of the limit, 0 without a limit.
	Utilization float64 `json:"utilization"`
}

// CreditCardSpend reports spend within es for every card, including cards
// with no spend, ordered by spend desc then name.
func CreditCardSpend(es []core.Expense, cards []core.CreditCard) []CardSpend {
	idx := make(map[string]int, len(cards))
	out := make([]CardSpend, len(cards))
	for i, c := range cards {
		idx[c.ID] = i
		out[i] = CardSpend{
			CreditCardID: c.ID,
			CardName:     c.CardName,
			Last4:        c.Last4,
			Balance:      c.CurrentBalance,
			Limit:        c.CreditLimit,
			Utilization:  Percentage(c.CurrentBalance, c.CreditLimit),
		}
	}
	for _, e := range es {
		i, ok := idx[e.CreditCardID]
		if e.CreditCardID == "" || !ok {
			continue
		}
		out[i].Spend = out[i].Spend.Add(e.Amount)
		out[i].Count++
	}
	slices.SortStableFunc(out, func(a, b CardSpend) int {
		if c := cmp.Compare(b.Spend.Cents, a.Spend.Cents); c != 0 {
			return c
		}
		return cmp.Compare(a.CardName, b.CardName)
	})
	return out
}

type UserShare struct {
	UserID     string     `json:"user_id"`
	UserName   string     `json:"user_name"`
	Total      core.Money `json:"total_amount"`
	Percentage float64    `json:"percentage"`
}

// UserComparison totals spending per user. names maps user ids to display
// names; unknown users fall back to their id.
func UserComparison(es []core.Expense, names map[string]string) []UserShare {
	grouped := GroupByUser(es)
	total := Total(es)
	out := make([]UserShare, 0, len(grouped))
	for id, amount := range grouped {
		name, ok := names[id]
		if !ok {
			name = id
		}
		out = append(out, UserShare{UserID: id, UserName: name, Total: amount, Percentage: Percentage(amount, total)})
	}
	slices.SortFunc(out, func(a, b UserShare) int {
		if c := cmp.Compare(b.Total.Cents, a.Total.Cents); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return out
}

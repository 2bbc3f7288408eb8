package analytics

import (
	"cmp"
	"slices"

	"conti/internal/core"
)

type InvestmentTypeTotal struct {
	InvestmentTypeID string     `json:"investment_type_id"`
	Name             string     `json:"name"`
	Icon             string     `json:"icon"`
	Deposits         core.Money `json:"deposits"`
	Withdrawals      core.Money `json:"withdrawals"`
	Net              core.Money `json:"net"`
	Count            int        `json:"count"`
}

type InvestmentSummary struct {
	Types            []InvestmentTypeTotal `json:"types"`
	TotalDeposits    core.Money            `json:"total_deposits"`
	TotalWithdrawals core.Money            `json:"total_withdrawals"`
	Net              core.Money            `json:"net"`
}

// SummarizeInvestments totals deposits and withdrawals per type. Only
// types with at least one investment are listed, ordered by net desc.
func SummarizeInvestments(invs []core.Investment, types []core.InvestmentType) InvestmentSummary {
	names := make(map[string]core.InvestmentType, len(types))
	for _, t := range types {
		names[t.ID] = t
	}

	var sum InvestmentSummary
	byType := make(map[string]*InvestmentTypeTotal)
	var order []string
	for _, inv := range invs {
		t, ok := byType[inv.InvestmentTypeID]
		if !ok {
			it := names[inv.InvestmentTypeID]
			name := it.Name
			if name == "" {
				name = unknownName
			}
			t = &InvestmentTypeTotal{InvestmentTypeID: inv.InvestmentTypeID, Name: name, Icon: it.Icon}
			byType[inv.InvestmentTypeID] = t
			order = append(order, inv.InvestmentTypeID)
		}
		if inv.TransactionType == core.Withdrawal {
			t.Withdrawals = t.Withdrawals.Add(inv.Amount)
			sum.TotalWithdrawals = sum.TotalWithdrawals.Add(inv.Amount)
		} else {
			t.Deposits = t.Deposits.Add(inv.Amount)
			sum.TotalDeposits = sum.TotalDeposits.Add(inv.Amount)
		}
		t.Net = t.Net.Add(inv.Signed())
		t.Count++
	}
	sum.Net = sum.TotalDeposits.Sub(sum.TotalWithdrawals)

	sum.Types = make([]InvestmentTypeTotal, 0, len(order))
	for _, id := range order {
		sum.Types = append(sum.Types, *byType[id])
	}
	slices.SortStableFunc(sum.Types, func(a, b InvestmentTypeTotal) int {
		return cmp.Compare(b.Net.Cents, a.Net.Cents)
	})
	return sum
}

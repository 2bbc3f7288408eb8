package analytics

import "conti/internal/core"

// MemberSettlement describes one partner's position on shared expenses.
// Net is Paid minus Share: positive means the member is owed money.
type MemberSettlement struct {
	UserID string     `json:"user_id"`
	Paid   core.Money `json:"paid"`
	Share  core.Money `json:"share"`
	Net    core.Money `json:"net"`
}

type SharedSplit struct {
	SharedTotal     core.Money         `json:"shared_total"`
	IndividualTotal core.Money         `json:"individual_total"`
	SharedCount     int                `json:"shared_count"`
	IndividualCount int                `json:"individual_count"`
	SharedPercent   float64            `json:"shared_percentage"`
	Members         []MemberSettlement `json:"members,omitempty"`
}

// Split separates shared from individual spending. With an active
// partnership it also settles the shared expenses created by either
// member: each owes half (the creator takes the odd cent) and is credited
// with what they paid. Paid amounts come from the split fields when
// present, else paid_by_user_id, else the creator.
func Split(es []core.Expense, p *core.Partner) SharedSplit {
	var out SharedSplit
	paid := make(map[string]core.Money)
	share := make(map[string]core.Money)

	for _, e := range es {
		if !e.IsShared {
			out.IndividualTotal = out.IndividualTotal.Add(e.Amount)
			out.IndividualCount++
			continue
		}
		out.SharedTotal = out.SharedTotal.Add(e.Amount)
		out.SharedCount++

		if p == nil || !p.Has(e.UserID) {
			continue
		}
		creator, other := e.UserID, p.Other(e.UserID)
		mine, theirs := e.Amount.Half()
		share[creator] = share[creator].Add(mine)
		share[other] = share[other].Add(theirs)

		switch {
		case e.AmountPaidByUser != nil || e.AmountPaidByPartner != nil:
			if e.AmountPaidByUser != nil {
				paid[creator] = paid[creator].Add(*e.AmountPaidByUser)
			}
			if e.AmountPaidByPartner != nil {
				paid[other] = paid[other].Add(*e.AmountPaidByPartner)
			}
		case e.PaidByUserID == other:
			paid[other] = paid[other].Add(e.Amount)
		default:
			paid[creator] = paid[creator].Add(e.Amount)
		}
	}

	out.SharedPercent = Percentage(out.SharedTotal, out.SharedTotal.Add(out.IndividualTotal))
	if p != nil {
		for _, id := range p.Members() {
			out.Members = append(out.Members, MemberSettlement{
				UserID: id,
				Paid:   paid[id],
				Share:  share[id],
				Net:    paid[id].Sub(share[id]),
			})
		}
	}
	return out
}

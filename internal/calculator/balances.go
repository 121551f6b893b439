package calculator

import (
	"sort"

	"github.com/mmynk/splitledger/internal/models"
)

// ComputeBalances folds the group's events into a net balance per member name.
// Positive means the group owes the member, negative means the member owes
// the group.
//
// Algorithm:
// - Every member starts at zero
// - For each event the payer is credited the full amount
// - Each participant is debited amount / len(participants)
//
// A payer who is also a participant is both credited and debited, which nets
// out. No remainder redistribution is done; the resulting drift stays below
// SettlementThreshold.
func ComputeBalances(g *models.Group) map[string]float64 {
	balances := make(map[string]float64, len(g.Members))
	for _, m := range g.Members {
		balances[m.Name] = 0
	}

	for _, e := range g.Events {
		if len(e.Participants) == 0 {
			continue
		}
		s := share(e.Amount, len(e.Participants))

		balances[e.Payer.Name] += e.Amount
		for _, p := range e.Participants {
			balances[p.Name] -= s
		}
	}

	return balances
}

// MemberBalances returns paid/share totals per member, sorted by name.
// NetBalance matches ComputeBalances for the same member.
func MemberBalances(g *models.Group) []models.MemberBalance {
	byName := make(map[string]*models.MemberBalance, len(g.Members))
	get := func(name string) *models.MemberBalance {
		b, ok := byName[name]
		if !ok {
			b = &models.MemberBalance{MemberName: name}
			byName[name] = b
		}
		return b
	}
	for _, m := range g.Members {
		get(m.Name)
	}

	for _, e := range g.Events {
		if len(e.Participants) == 0 {
			continue
		}
		s := share(e.Amount, len(e.Participants))

		get(e.Payer.Name).TotalPaid += e.Amount
		for _, p := range e.Participants {
			get(p.Name).TotalShare += s
		}
	}

	result := make([]models.MemberBalance, 0, len(byName))
	for _, b := range byName {
		b.NetBalance = b.TotalPaid - b.TotalShare
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].MemberName < result[j].MemberName
	})
	return result
}

package calculator

import (
	"math"
	"sort"

	"github.com/mmynk/splitledger/internal/models"
)

// debtKey identifies a directed debt: from owes to.
type debtKey struct {
	from, to string
}

// PairwiseSettlements nets the debts between every pair of members and
// returns one settlement per pair that still owes something.
//
// The result is stable: events between two members never change the
// settlements between any other pair. It may contain more transfers than
// SimplifiedSettlements. Output is sorted by (From, To).
func PairwiseSettlements(g *models.Group) []models.Settlement {
	// debts[{A, B}] = total amount A owes B
	debts := make(map[debtKey]float64)
	for _, e := range g.Events {
		if len(e.Participants) == 0 {
			continue
		}
		s := share(e.Amount, len(e.Participants))
		for _, p := range e.Participants {
			if p.Name == e.Payer.Name {
				continue
			}
			debts[debtKey{from: p.Name, to: e.Payer.Name}] += s
		}
	}

	names := make([]string, len(g.Members))
	for i, m := range g.Members {
		names[i] = m.Name
	}
	sort.Strings(names)

	settlements := []models.Settlement{}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := names[i], names[j]
			net := debts[debtKey{from: a, to: b}] - debts[debtKey{from: b, to: a}]

			amount := Round2(math.Abs(net))
			if amount <= SettlementThreshold {
				continue
			}

			if net > 0 {
				settlements = append(settlements, models.Settlement{From: a, To: b, Amount: amount})
			} else {
				settlements = append(settlements, models.Settlement{From: b, To: a, Amount: amount})
			}
		}
	}

	sortSettlements(settlements)
	return settlements
}

// sortSettlements orders settlements by (From, To).
func sortSettlements(s []models.Settlement) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].From != s[j].From {
			return s[i].From < s[j].From
		}
		return s[i].To < s[j].To
	})
}

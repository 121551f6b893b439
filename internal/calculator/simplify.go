package calculator

import (
	"sort"

	"github.com/mmynk/splitledger/internal/models"
)

// party is a debtor or creditor with the amount still to move.
type party struct {
	name   string
	amount float64
}

// SimplifiedSettlements greedily matches the largest debtor with the largest
// creditor until every balance is cleared.
//
// It emits at most len(members)-1 transfers, but a single new event can
// reshuffle who pays whom across the whole group. The emitted amounts sum to
// the total positive balance, within rounding.
func SimplifiedSettlements(g *models.Group) []models.Settlement {
	balances := ComputeBalances(g)

	var debtors, creditors []party
	for name, bal := range balances {
		if bal < -SettlementThreshold {
			debtors = append(debtors, party{name: name, amount: -bal})
		} else if bal > SettlementThreshold {
			creditors = append(creditors, party{name: name, amount: bal})
		}
	}
	sortParties(debtors)
	sortParties(creditors)

	settlements := []models.Settlement{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		// Amount to settle is minimum of what debtor owes and creditor is owed
		amount := debtor.amount
		if creditor.amount < amount {
			amount = creditor.amount
		}

		if rounded := Round2(amount); rounded > SettlementThreshold {
			settlements = append(settlements, models.Settlement{
				From:   debtor.name,
				To:     creditor.name,
				Amount: rounded,
			})
		}

		debtor.amount -= amount
		creditor.amount -= amount

		if debtor.amount < SettlementThreshold {
			i++
		}
		if creditor.amount < SettlementThreshold {
			j++
		}
	}

	return settlements
}

// sortParties orders by amount descending, ties by name ascending.
func sortParties(p []party) {
	sort.Slice(p, func(i, j int) bool {
		if p[i].amount != p[j].amount {
			return p[i].amount > p[j].amount
		}
		return p[i].name < p[j].name
	})
}

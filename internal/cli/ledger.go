package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mmynk/splitledger/pkg/api"
)

// balanceEpsilon hides float noise when coloring balances.
const balanceEpsilon = 0.005

// BalanceTable renders a group's balance sheet: who paid, who consumed and
// the resulting net per member.
func BalanceTable(title string, balances []api.MemberBalance) Table {
	t := Table{
		Title:   title,
		Headers: []string{"Member", "Paid", "Share", "Net"},
		Styles:  make(map[[2]int]lipgloss.Style),
	}
	for i, b := range balances {
		t.Rows = append(t.Rows, []string{
			b.MemberName,
			FormatMoney(b.TotalPaid),
			FormatMoney(b.TotalShare),
			FormatSigned(b.NetBalance),
		})
		switch {
		case b.NetBalance > balanceEpsilon:
			t.Styles[[2]int{i, 3}] = creditStyle
		case b.NetBalance < -balanceEpsilon:
			t.Styles[[2]int{i, 3}] = debitStyle
		}
	}
	return t
}

// SettlementTable renders suggested transfers with their settled flag.
func SettlementTable(title string, settlements []api.Settlement) Table {
	t := Table{
		Title:   title,
		Headers: []string{"From", "To", "Amount", "Status"},
		Styles:  make(map[[2]int]lipgloss.Style),
	}
	for i, s := range settlements {
		status := "open"
		if s.Settled {
			status = "settled"
			t.Styles[[2]int{i, 3}] = creditStyle
		}
		t.Rows = append(t.Rows, []string{s.From, s.To, FormatMoney(s.Amount), status})
	}
	return t
}

// GroupTable lists groups with their member counts.
func GroupTable(groups []api.Group) Table {
	t := Table{Headers: []string{"Group", "ID", "Members", "Policy"}}
	for _, g := range groups {
		policy := "pairwise"
		if g.Simplify {
			policy = "simplified"
		}
		t.Rows = append(t.Rows, []string{g.Name, g.ID, itoa(len(g.Members)), policy})
	}
	return t
}

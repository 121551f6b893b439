package service

import (
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIMember(m models.Member) api.Member {
	return api.Member{ID: m.ID, Name: m.Name}
}

func toAPIGroup(g *models.Group) api.Group {
	members := make([]api.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = toAPIMember(m)
	}
	out := api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Members:   members,
		Simplify:  g.Simplify,
		CreatedAt: g.CreatedAt,
	}
	for _, e := range g.Events {
		out.Events = append(out.Events, toAPIEvent(e))
	}
	return out
}

func toAPIEvent(e models.Event) api.Event {
	return api.Event{
		ID:           e.ID,
		Kind:         e.Kind.String(),
		Description:  e.Description,
		Amount:       e.Amount,
		Payer:        e.Payer.Name,
		Participants: e.ParticipantNames(),
		CreatedAt:    e.CreatedAt,
		Category:     e.Category,
		Notes:        e.Notes,
	}
}

func toAPIRecord(r models.SettledRecord) api.SettledRecord {
	return api.SettledRecord{From: r.From, To: r.To, Amount: r.Amount, SettledAt: r.SettledAt}
}

func toAPISettlements(settlements []models.Settlement) []api.Settlement {
	out := make([]api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = api.Settlement{From: s.From, To: s.To, Amount: s.Amount, Settled: s.Settled}
	}
	return out
}

func toAPIBalances(balances []models.MemberBalance) []api.MemberBalance {
	out := make([]api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = api.MemberBalance{
			MemberName: b.MemberName,
			NetBalance: b.NetBalance,
			TotalPaid:  b.TotalPaid,
			TotalShare: b.TotalShare,
		}
	}
	return out
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

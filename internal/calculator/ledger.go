package calculator

import (
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// ComputeSettlements picks the resolver from the group's policy flag and
// annotates the result with the group's settled records.
func ComputeSettlements(g *models.Group) []models.Settlement {
	var settlements []models.Settlement
	if g.Simplify {
		settlements = SimplifiedSettlements(g)
	} else {
		settlements = PairwiseSettlements(g)
	}
	return Annotate(settlements, g.SettledRecords)
}

// RecordSettlementPayment builds the event and settled record for a payment
// from one member to another. Neither is appended to the group; the caller
// persists both.
func RecordSettlementPayment(g *models.Group, from, to string, amount float64, now time.Time) (models.Event, models.SettledRecord, error) {
	if from == to {
		return models.Event{}, models.SettledRecord{}, fmt.Errorf("%w: cannot settle with yourself", ErrInvalidSettlement)
	}
	if !(amount > 0) {
		return models.Event{}, models.SettledRecord{}, fmt.Errorf("%w: amount must be positive", ErrInvalidSettlement)
	}

	payer, ok := g.FindMember(from)
	if !ok {
		return models.Event{}, models.SettledRecord{}, fmt.Errorf("%w: %q", ErrMemberNotFound, from)
	}
	recipient, ok := g.FindMember(to)
	if !ok {
		return models.Event{}, models.SettledRecord{}, fmt.Errorf("%w: %q", ErrMemberNotFound, to)
	}

	event := models.Event{
		Kind:         models.KindSettlement,
		Description:  fmt.Sprintf("%s paid %s", from, to),
		Amount:       amount,
		Payer:        payer,
		Participants: []models.Member{recipient},
		CreatedAt:    now,
		Category:     models.SettlementCategory,
	}
	record := models.SettledRecord{
		From:      from,
		To:        to,
		Amount:    amount,
		SettledAt: now,
	}
	return event, record, nil
}

// RevokeSettlementRecord returns the group's settled records without any
// record for the (from, to) direction. The group itself is not modified.
func RevokeSettlementRecord(g *models.Group, from, to string) []models.SettledRecord {
	kept := make([]models.SettledRecord, 0, len(g.SettledRecords))
	for _, r := range g.SettledRecords {
		if r.From == from && r.To == to {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

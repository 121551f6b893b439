package calculator

import "github.com/mmynk/splitledger/internal/models"

// Annotate returns a copy of settlements with Settled set for every
// direction that has a settled record.
//
// Only the (From, To) pair is matched. A record keeps marking the pair as
// settled even if a later expense changes the amount owed.
func Annotate(settlements []models.Settlement, records []models.SettledRecord) []models.Settlement {
	paid := make(map[debtKey]bool, len(records))
	for _, r := range records {
		paid[debtKey{from: r.From, to: r.To}] = true
	}

	annotated := make([]models.Settlement, len(settlements))
	for i, s := range settlements {
		s.Settled = paid[debtKey{from: s.From, to: s.To}]
		annotated[i] = s
	}
	return annotated
}

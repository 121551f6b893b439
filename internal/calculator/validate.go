package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrMemberNotFound is returned when an event names someone outside the group.
	ErrMemberNotFound = errors.New("member not found")
	// ErrInvalidExpense is returned for non-positive amounts or empty participant lists.
	ErrInvalidExpense = errors.New("invalid expense")
	// ErrInvalidSettlement is returned for self-payments or non-positive amounts.
	ErrInvalidSettlement = errors.New("invalid settlement")
)

// ValidateExpense checks an expense against the group before it is folded
// into the event log. It resolves the names to members on success.
//
// The folding functions in this package assume every event passed this check.
func ValidateExpense(g *models.Group, payer string, participants []string, amount float64) (models.Member, []models.Member, error) {
	if !(amount > 0) {
		return models.Member{}, nil, fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	}
	if len(participants) == 0 {
		return models.Member{}, nil, fmt.Errorf("%w: must have at least one participant", ErrInvalidExpense)
	}

	payerMember, ok := g.FindMember(payer)
	if !ok {
		return models.Member{}, nil, fmt.Errorf("%w: payer %q", ErrMemberNotFound, payer)
	}

	members := make([]models.Member, 0, len(participants))
	seen := make(map[string]bool, len(participants))
	for _, name := range participants {
		m, ok := g.FindMember(name)
		if !ok {
			return models.Member{}, nil, fmt.Errorf("%w: participant %q", ErrMemberNotFound, name)
		}
		if seen[name] {
			return models.Member{}, nil, fmt.Errorf("%w: participant %q listed twice", ErrInvalidExpense, name)
		}
		seen[name] = true
		members = append(members, m)
	}

	return payerMember, members, nil
}

package models

import "time"

// SettlementCategory is the category stored on settlement payment events.
const SettlementCategory = "Settlement"

// EventKind discriminates the variants of Event.
type EventKind int

const (
	// KindExpense is a regular shared expense.
	KindExpense EventKind = iota
	// KindSettlement is a payment from one member to another.
	KindSettlement
)

// String returns the storage name of the kind.
func (k EventKind) String() string {
	if k == KindSettlement {
		return "settlement"
	}
	return "expense"
}

// ParseEventKind is the inverse of EventKind.String.
// Unknown values decode as KindExpense.
func ParseEventKind(s string) EventKind {
	if s == "settlement" {
		return KindSettlement
	}
	return KindExpense
}

// Event is a monetary event in a group's log.
//
// Both variants carry a payer, a participant list and an amount, so balance
// math folds them identically. A settlement payment has exactly one
// participant: the recipient.
type Event struct {
	// ID is unique within the group and assigned by storage.
	ID int64

	// Kind tells expenses and settlement payments apart.
	Kind EventKind

	// Description is free text (e.g., "Dinner", "Alice paid Bob").
	Description string

	// Amount is the full amount paid. Always positive.
	Amount float64

	// Payer is the member who paid the full amount.
	Payer Member

	// Participants share the amount equally. May include the payer.
	Participants []Member

	// CreatedAt is when the event was recorded.
	CreatedAt time.Time

	// Category is optional free text. Settlement payments use SettlementCategory.
	Category string

	// Notes is optional free text.
	Notes string
}

// IsSettlement reports whether the event is a settlement payment.
func (e Event) IsSettlement() bool {
	return e.Kind == KindSettlement
}

// Recipient returns the receiving member of a settlement payment.
func (e Event) Recipient() (Member, bool) {
	if !e.IsSettlement() || len(e.Participants) != 1 {
		return Member{}, false
	}
	return e.Participants[0], true
}

// ParticipantNames returns the participant names in order.
func (e Event) ParticipantNames() []string {
	names := make([]string, len(e.Participants))
	for i, p := range e.Participants {
		names[i] = p.Name
	}
	return names
}

// Clone returns a copy that shares no slices with e.
func (e Event) Clone() Event {
	e.Participants = append([]Member(nil), e.Participants...)
	return e
}

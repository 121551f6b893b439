package models

import "time"

// Settlement is a suggested transfer that reduces outstanding balances.
// From is never equal to To and Amount is always above the noise threshold.
type Settlement struct {
	// From is the name of the member who should pay.
	From string

	// To is the name of the member who should receive.
	To string

	// Amount is rounded to two decimals.
	Amount float64

	// Settled is true when a SettledRecord exists for the same direction.
	Settled bool
}

// SettledRecord marks that a directional transfer has already been paid.
// Only the (From, To) pair identifies a record; Amount and SettledAt are
// informational.
type SettledRecord struct {
	From      string
	To        string
	Amount    float64
	SettledAt time.Time
}

// MemberBalance is the balance summary for one group member.
type MemberBalance struct {
	MemberName string
	NetBalance float64 // Positive = owed money, Negative = owes money
	TotalPaid  float64 // Sum of amounts this member paid
	TotalShare float64 // Sum of the shares this member consumed
}

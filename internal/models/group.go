package models

// Group represents a pool of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Members is the list of participants in this group, ordered by ID.
	Members []Member

	// Events is the ordered log of expenses and settlement payments.
	Events []Event

	// Simplify selects the minimal-transaction settlement policy.
	// When false, settlements are computed pairwise.
	Simplify bool

	// SettledRecords marks directional transfers that were already paid.
	SettledRecords []SettledRecord

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is a named participant within exactly one group.
type Member struct {
	// ID is stable within the group and assigned by storage.
	ID int64

	// Name is unique within the group. Balances and settlements are keyed by it.
	Name string
}

// FindMember returns the member with the given name.
func (g *Group) FindMember(name string) (Member, bool) {
	for _, m := range g.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// FindEvent returns the index of the event with the given ID, or -1.
func (g *Group) FindEvent(eventID int64) int {
	for i, e := range g.Events {
		if e.ID == eventID {
			return i
		}
	}
	return -1
}

// HasEventsFor reports whether the named member paid for or took part in any event.
func (g *Group) HasEventsFor(name string) bool {
	for _, e := range g.Events {
		if e.Payer.Name == name {
			return true
		}
		for _, p := range e.Participants {
			if p.Name == name {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy of the group so callers can hand it to
// computations while the original keeps changing.
func (g *Group) Clone() *Group {
	c := *g
	c.Members = append([]Member(nil), g.Members...)
	c.SettledRecords = append([]SettledRecord(nil), g.SettledRecords...)
	c.Events = make([]Event, len(g.Events))
	for i, e := range g.Events {
		c.Events[i] = e.Clone()
	}
	return &c
}

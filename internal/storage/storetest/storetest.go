// Package storetest holds behaviour shared by every storage.Store
// implementation. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Run exercises a fresh store returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Store)
	}{
		{"CreateGroup assigns IDs", testCreateGroup},
		{"GetGroup missing", testGetGroupMissing},
		{"ListGroups in creation order", testListGroups},
		{"RenameGroup and SetSimplify", testRenameAndSimplify},
		{"DeleteGroup removes everything", testDeleteGroup},
		{"AddMember rejects duplicates", testAddMember},
		{"RemoveMember", testRemoveMember},
		{"Events round trip", testEvents},
		{"UpdateEvent keeps ID and timestamp", testUpdateEvent},
		{"DeleteEvent", testDeleteEvent},
		{"RecordSettlement and SetSettledRecords", testSettledRecords},
		{"Snapshots are isolated", testSnapshotIsolation},
		{"Users", testUsers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { s.Close() })
			tt.fn(t, s)
		})
	}
}

func newGroup(t *testing.T, s storage.Store, names ...string) *models.Group {
	t.Helper()
	g := &models.Group{Name: "Trip"}
	for _, n := range names {
		g.Members = append(g.Members, models.Member{Name: n})
	}
	require.NoError(t, s.CreateGroup(context.Background(), g))
	return g
}

func expense(g *models.Group, desc string, amount float64, payer string, participants ...string) *models.Event {
	e := &models.Event{
		Kind:        models.KindExpense,
		Description: desc,
		Amount:      amount,
	}
	e.Payer, _ = g.FindMember(payer)
	for _, p := range participants {
		m, _ := g.FindMember(p)
		e.Participants = append(e.Participants, m)
	}
	return e
}

func testCreateGroup(t *testing.T, s storage.Store) {
	g := newGroup(t, s, "Alice", "Bob")

	assert.NotEmpty(t, g.ID)
	assert.NotZero(t, g.CreatedAt)
	require.Len(t, g.Members, 2)
	assert.NotZero(t, g.Members[0].ID)
	assert.NotEqual(t, g.Members[0].ID, g.Members[1].ID)

	got, err := s.GetGroup(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip", got.Name)
	assert.False(t, got.Simplify)
	assert.Equal(t, g.Members, got.Members)
	assert.Empty(t, got.Events)
	assert.Empty(t, got.SettledRecords)
}

func testGetGroupMissing(t *testing.T, s storage.Store) {
	_, err := s.GetGroup(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testListGroups(t *testing.T, s storage.Store) {
	ctx := context.Background()
	first := newGroup(t, s, "Alice")
	second := newGroup(t, s, "Bob", "Charlie")

	groups, err := s.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, first.ID, groups[0].ID)
	assert.Equal(t, second.ID, groups[1].ID)
	assert.Len(t, groups[1].Members, 2)
}

func testRenameAndSimplify(t *testing.T, s storage.Store) {
	ctx := context.Background()
	g := newGroup(t, s, "Alice")

	require.NoError(t, s.RenameGroup(ctx, g.ID, "Ski trip"))
	require.NoError(t, s.SetSimplify(ctx, g.ID, true))

	got, err := s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ski trip", got.Name)
	assert.True(t, got.Simplify)

	assert.ErrorIs(t, s.RenameGroup(ctx, "nope", "x"), storage.ErrNotFound)
	assert.ErrorIs(t, s.SetSimplify(ctx, "nope", true), storage.ErrNotFound)
}

func testDeleteGroup(t *testing.T, s storage.Store) {
	ctx := context.Background()
	g := newGroup(t, s, "Alice", "Bob")
	require.NoError(t, s.AddEvent(ctx, g.ID, expense(g, "Dinner", 30, "Alice", "Alice", "Bob")))

	require.NoError(t, s.DeleteGroup(ctx, g.ID))

	_, err := s.GetGroup(ctx, g.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteGroup(ctx, g.ID), storage.ErrNotFound)
}

func testAddMember(t *testing.T, s storage.Store) {
	ctx := context.Background()
	g := newGroup(t, s, "Alice")

	m := &models.Member{Name: "Bob"}
	require.NoError(t, s.AddMember(ctx, g.ID, m))
	assert.NotZero(t, m.ID)

	err := s.AddMember(ctx, g.ID, &models.Member{Name: "Alice"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	err = s.AddMember(ctx, "nope", &models.Member{Name: "Zed"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	got, err := s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Member{g.Members[0], *m}, got.Members)
}

func testRemoveMember(t *testing.T, s storage.Store) {
	ctx := context.Background()
	g := newGroup(t, s, "Alice", "Bob")

	require.NoError(t, s.RemoveMember(ctx, g.ID, g.Members[1].ID))
	assert.ErrorIs(t, s.RemoveMember(ctx, g.ID, g.Members[1].ID), storage.ErrNotFound)

	got, err := s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Member{g.Members[0]}, got.Members)
}

func testEvents(t *testing.T, s storage.Store) {
	ctx := context.Background()
	g := newGroup(t, s, "Alice", "Bob", "Charlie")

	dinner := expense(g, "Dinner", 90, "Alice", "Charlie", "Alice", "Bob")
	dinner.Category = "Food"
	dinner.Notes = "tip included"
	require.NoError(t, s.AddEvent(ctx, g.ID, dinner))
	assert.NotZero(t, dinner.ID)
	assert.False(t, dinner.CreatedAt.IsZero())

	taxi := expense(g, "Taxi", 30, "Bob", "Bob", "Charlie")
	require.NoError(t, s.AddEvent(ctx, g.ID, taxi))
	assert.Greater(t, taxi.ID, dinner.ID)

	got, err := s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, got.Events, 2)

	e := got.Events[0]
	assert.Equal(t, dinner.ID, e.ID)
	assert.Equal(t, models.KindExpense, e.Kind)
	assert.Equal(t, "Dinner", e.Description)
	assert.InDelta(t, 90, e.Amount, 1e-9)
	assert.Equal(t, "Alice", e.Payer.Name)
	assert.Equal(t, []string{"Charlie", "Alice", "Bob"}, e.ParticipantNames())
	assert.Equal(t, "Food", e.Category)
	assert.Equal(t, "tip included", e.Notes)
	assert.WithinDuration(t, dinner.CreatedAt, e.CreatedAt, time.Millisecond)

	assert.Equal(t, "Taxi", got.Events[1].Description)
	assert.Empty(t, got.Events[1].Category)

	err = s.AddEvent(ctx, "nope", expense(g, "Lost", 1, "Alice", "Alice"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testUpdateEvent(t *testing.T, s storage.Store) {
	ctx := context.Background()
	g := newGroup(t, s, "Alice", "Bob")

	e := expense(g, "Dinner", 30, "Alice", "Alice", "Bob")
	require.NoError(t, s.AddEvent(ctx, g.ID, e))
	created := e.CreatedAt

	updated := expense(g, "Lunch", 12, "Bob", "Alice")
	updated.ID = e.ID
	require.NoError(t, s.UpdateEvent(ctx, g.ID, updated))

	got, err := s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, got.Events, 1)
	assert.Equal(t, e.ID, got.Events[0].ID)
	assert.Equal(t, "Lunch", got.Events[0].Description)
	assert.Equal(t, "Bob", got.Events[0].Payer.Name)
	assert.Equal(t, []string{"Alice"}, got.Events[0].ParticipantNames())
	assert.WithinDuration(t, created, got.Events[0].CreatedAt, time.Millisecond)

	missing := expense(g, "Ghost", 1, "Alice", "Alice")
	missing.ID = 9999
	assert.ErrorIs(t, s.UpdateEvent(ctx, g.ID, missing), storage.ErrNotFound)
}

func testDeleteEvent(t *testing.T, s storage.Store) {
	ctx := context.Background()
	g := newGroup(t, s, "Alice", "Bob")

	first := expense(g, "One", 10, "Alice", "Bob")
	second := expense(g, "Two", 20, "Bob", "Alice")
	require.NoError(t, s.AddEvent(ctx, g.ID, first))
	require.NoError(t, s.AddEvent(ctx, g.ID, second))

	require.NoError(t, s.DeleteEvent(ctx, g.ID, first.ID))
	assert.ErrorIs(t, s.DeleteEvent(ctx, g.ID, first.ID), storage.ErrNotFound)

	got, err := s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, got.Events, 1)
	assert.Equal(t, second.ID, got.Events[0].ID)
}

func testSettledRecords(t *testing.T, s storage.Store) {
	ctx := context.Background()
	g := newGroup(t, s, "Alice", "Bob")

	alice, _ := g.FindMember("Alice")
	bob, _ := g.FindMember("Bob")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	event := &models.Event{
		Kind:         models.KindSettlement,
		Description:  "Bob paid Alice",
		Amount:       15,
		Payer:        bob,
		Participants: []models.Member{alice},
		Category:     models.SettlementCategory,
		CreatedAt:    now,
	}
	record := models.SettledRecord{From: "Bob", To: "Alice", Amount: 15, SettledAt: now}
	require.NoError(t, s.RecordSettlement(ctx, g.ID, event, record))
	assert.NotZero(t, event.ID)

	got, err := s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, got.Events, 1)
	assert.True(t, got.Events[0].IsSettlement())
	assert.Equal(t, models.SettlementCategory, got.Events[0].Category)
	require.Len(t, got.SettledRecords, 1)
	assert.Equal(t, "Bob", got.SettledRecords[0].From)
	assert.Equal(t, "Alice", got.SettledRecords[0].To)
	assert.True(t, now.Equal(got.SettledRecords[0].SettledAt))

	require.NoError(t, s.SetSettledRecords(ctx, g.ID, nil))
	got, err = s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SettledRecords)
	assert.Len(t, got.Events, 1)

	assert.ErrorIs(t, s.SetSettledRecords(ctx, "nope", nil), storage.ErrNotFound)
}

func testSnapshotIsolation(t *testing.T, s storage.Store) {
	ctx := context.Background()
	g := newGroup(t, s, "Alice", "Bob")
	require.NoError(t, s.AddEvent(ctx, g.ID, expense(g, "Dinner", 30, "Alice", "Alice", "Bob")))

	snap, err := s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	snap.Name = "mutated"
	snap.Events[0].Participants[0].Name = "mutated"
	snap.Members = append(snap.Members, models.Member{Name: "Eve"})

	require.NoError(t, s.AddEvent(ctx, g.ID, expense(g, "Taxi", 10, "Bob", "Alice")))

	fresh, err := s.GetGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip", fresh.Name)
	assert.Equal(t, "Alice", fresh.Events[0].Participants[0].Name)
	assert.Len(t, fresh.Members, 2)
	assert.Len(t, fresh.Events, 2)
	assert.Len(t, snap.Events, 1)
}

func testUsers(t *testing.T, s storage.Store) {
	ctx := context.Background()
	user := models.NewUser("alice@example.com", "Alice", "hash")
	require.NoError(t, s.CreateUser(ctx, user))

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "Alice", byEmail.DisplayName)

	byID, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	dup := models.NewUser("alice@example.com", "Other", "hash")
	assert.ErrorIs(t, s.CreateUser(ctx, dup), storage.ErrAlreadyExists)

	_, err = s.GetUserByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

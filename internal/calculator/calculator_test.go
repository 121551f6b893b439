package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	alice   = models.Member{ID: 1, Name: "Alice"}
	bob     = models.Member{ID: 2, Name: "Bob"}
	charlie = models.Member{ID: 3, Name: "Charlie"}
	diana   = models.Member{ID: 4, Name: "Diana"}
)

func expense(amount float64, payer models.Member, participants ...models.Member) models.Event {
	return models.Event{
		Kind:         models.KindExpense,
		Description:  "expense",
		Amount:       amount,
		Payer:        payer,
		Participants: participants,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func payment(amount float64, from, to models.Member) models.Event {
	e := expense(amount, from, to)
	e.Kind = models.KindSettlement
	e.Category = models.SettlementCategory
	return e
}

func newGroup(members []models.Member, events ...models.Event) *models.Group {
	return &models.Group{ID: "g1", Name: "Test Group", Members: members, Events: events}
}

// threeWay is the two-expense scenario shared by the pairwise tests.
func threeWay() *models.Group {
	return newGroup(
		[]models.Member{alice, bob, charlie},
		expense(90, alice, alice, bob, charlie),
		expense(30, bob, alice, bob, charlie),
	)
}

func sum(values ...float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name  string
		group *models.Group
		want  map[string]float64
	}{
		{
			name:  "two-person equal split",
			group: newGroup([]models.Member{alice, bob}, expense(50, alice, alice, bob)),
			want:  map[string]float64{"Alice": 25, "Bob": -25},
		},
		{
			name:  "three-way split",
			group: newGroup([]models.Member{alice, bob, charlie}, expense(90, alice, alice, bob, charlie)),
			want:  map[string]float64{"Alice": 60, "Bob": -30, "Charlie": -30},
		},
		{
			name: "multiple expenses net out",
			group: newGroup([]models.Member{alice, bob},
				expense(50, alice, alice, bob),
				expense(30, bob, alice, bob),
			),
			want: map[string]float64{"Alice": 10, "Bob": -10},
		},
		{
			name:  "payer not among participants",
			group: newGroup([]models.Member{alice, bob, charlie}, expense(40, alice, bob, charlie)),
			want:  map[string]float64{"Alice": 40, "Bob": -20, "Charlie": -20},
		},
		{
			name: "settlement payment folds like an expense",
			group: newGroup([]models.Member{alice, bob},
				expense(50, alice, alice, bob),
				payment(25, bob, alice),
			),
			want: map[string]float64{"Alice": 0, "Bob": 0},
		},
		{
			name:  "no events",
			group: newGroup([]models.Member{alice, bob, charlie}),
			want:  map[string]float64{"Alice": 0, "Bob": 0, "Charlie": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalances(tt.group)
			require.Len(t, got, len(tt.want))
			for name, want := range tt.want {
				assert.InDelta(t, want, got[name], 1e-9, "balance for %s", name)
			}
		})
	}
}

func TestComputeBalances_ZeroSum(t *testing.T) {
	group := newGroup([]models.Member{alice, bob, charlie, diana},
		expense(100, alice, alice, bob, charlie),
		expense(33.33, bob, alice, bob, charlie, diana),
		expense(17.01, charlie, diana),
		expense(9.99, diana, alice, bob, charlie, diana),
		payment(12.5, bob, alice),
	)

	total := 0.0
	for _, b := range ComputeBalances(group) {
		total += b
	}
	assert.InDelta(t, 0, total, 1e-9)
}

func TestMemberBalances(t *testing.T) {
	group := newGroup([]models.Member{charlie, alice, bob},
		expense(90, alice, alice, bob, charlie),
		expense(30, bob, alice, bob, charlie),
	)

	got := MemberBalances(group)
	require.Len(t, got, 3)
	assert.Equal(t, "Alice", got[0].MemberName)
	assert.Equal(t, "Bob", got[1].MemberName)
	assert.Equal(t, "Charlie", got[2].MemberName)

	assert.InDelta(t, 90, got[0].TotalPaid, 1e-9)
	assert.InDelta(t, 40, got[0].TotalShare, 1e-9)

	balances := ComputeBalances(group)
	for _, b := range got {
		assert.InDelta(t, balances[b.MemberName], b.NetBalance, 1e-9, b.MemberName)
	}
}

func TestPairwiseSettlements(t *testing.T) {
	got := PairwiseSettlements(threeWay())

	assert.Equal(t, []models.Settlement{
		{From: "Bob", To: "Alice", Amount: 20},
		{From: "Charlie", To: "Alice", Amount: 30},
		{From: "Charlie", To: "Bob", Amount: 10},
	}, got)
}

func TestPairwiseSettlements_PaymentRemovesPair(t *testing.T) {
	group := threeWay()
	group.Events = append(group.Events, payment(20, bob, alice))

	got := PairwiseSettlements(group)

	assert.Equal(t, []models.Settlement{
		{From: "Charlie", To: "Alice", Amount: 30},
		{From: "Charlie", To: "Bob", Amount: 10},
	}, got)
}

func TestPairwiseSettlements_StableForUnrelatedPairs(t *testing.T) {
	before := PairwiseSettlements(threeWay())

	group := threeWay()
	group.Members = append(group.Members, diana)
	group.Events = append(group.Events, expense(44, diana, diana, bob))
	after := PairwiseSettlements(group)

	// Only pairs involving Diana changed.
	var unrelated []models.Settlement
	for _, s := range after {
		if s.From != "Diana" && s.To != "Diana" {
			unrelated = append(unrelated, s)
		}
	}
	assert.Equal(t, before, unrelated)
	assert.Contains(t, after, models.Settlement{From: "Bob", To: "Diana", Amount: 22})
}

func TestPairwiseSettlements_Threshold(t *testing.T) {
	tests := []struct {
		name   string
		events []models.Event
		want   int
	}{
		{
			name:   "exactly one cent is suppressed",
			events: []models.Event{expense(0.02, alice, alice, bob)},
			want:   0,
		},
		{
			name:   "two cents are emitted",
			events: []models.Event{expense(0.04, alice, alice, bob)},
			want:   1,
		},
		{
			name: "debts that cancel are omitted",
			events: []models.Event{
				expense(10, alice, alice, bob),
				expense(10, bob, alice, bob),
			},
			want: 0,
		},
		{
			name: "float drift below a cent is omitted",
			events: []models.Event{
				expense(10, alice, alice, bob, charlie),
				expense(10, bob, alice, bob, charlie),
				expense(10, charlie, alice, bob, charlie),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group := newGroup([]models.Member{alice, bob, charlie}, tt.events...)
			got := PairwiseSettlements(group)
			assert.Len(t, got, tt.want)
			for _, s := range got {
				assert.Greater(t, s.Amount, SettlementThreshold)
			}
		})
	}
}

func TestPairwiseSettlements_Empty(t *testing.T) {
	assert.Empty(t, PairwiseSettlements(newGroup([]models.Member{alice})))
	assert.Empty(t, PairwiseSettlements(newGroup([]models.Member{alice, bob, charlie})))
	assert.Empty(t, PairwiseSettlements(newGroup(nil)))
}

func TestPairwiseSettlements_Deterministic(t *testing.T) {
	forward := threeWay()
	reversed := threeWay()
	reversed.Members = []models.Member{charlie, bob, alice}

	want := PairwiseSettlements(forward)
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, PairwiseSettlements(reversed))
	}
}

func TestSimplifiedSettlements(t *testing.T) {
	got := SimplifiedSettlements(threeWay())

	// Balances: Alice +50, Bob -10, Charlie -40.
	assert.Equal(t, []models.Settlement{
		{From: "Charlie", To: "Alice", Amount: 40},
		{From: "Bob", To: "Alice", Amount: 10},
	}, got)
}

func TestSimplifiedSettlements_TieBreakByName(t *testing.T) {
	group := newGroup([]models.Member{diana, charlie, bob, alice},
		expense(40, alice, alice, bob, charlie, diana),
		expense(40, bob, alice, bob, charlie, diana),
	)

	got := SimplifiedSettlements(group)

	// Creditors Alice +20, Bob +20; debtors Charlie -20, Diana -20.
	assert.Equal(t, []models.Settlement{
		{From: "Charlie", To: "Alice", Amount: 20},
		{From: "Diana", To: "Bob", Amount: 20},
	}, got)
}

func TestSimplifiedSettlements_Conservation(t *testing.T) {
	groups := map[string]*models.Group{
		"three way": threeWay(),
		"uneven cents": newGroup([]models.Member{alice, bob, charlie, diana},
			expense(100, alice, alice, bob, charlie),
			expense(33.33, bob, alice, bob, charlie, diana),
			expense(17.01, charlie, diana),
			expense(9.99, diana, alice, bob, charlie, diana),
		),
		"single payer": newGroup([]models.Member{alice, bob, charlie, diana},
			expense(120, alice, alice, bob, charlie, diana),
		),
	}

	for name, group := range groups {
		t.Run(name, func(t *testing.T) {
			positive := 0.0
			for _, b := range ComputeBalances(group) {
				if b > 0 {
					positive += b
				}
			}

			got := SimplifiedSettlements(group)
			amounts := make([]float64, len(got))
			for i, s := range got {
				amounts[i] = s.Amount
				assert.NotEqual(t, s.From, s.To)
			}

			assert.InDelta(t, positive, sum(amounts...), 0.01)
			assert.LessOrEqual(t, len(got), len(group.Members)-1)
		})
	}
}

func TestSimplifiedSettlements_Empty(t *testing.T) {
	assert.Empty(t, SimplifiedSettlements(newGroup([]models.Member{alice, bob, charlie})))
}

func TestNoSelfSettlement(t *testing.T) {
	group := newGroup([]models.Member{alice, bob},
		expense(10, alice, alice),
		expense(20, bob, bob, alice),
	)
	for _, s := range append(PairwiseSettlements(group), SimplifiedSettlements(group)...) {
		assert.NotEqual(t, s.From, s.To)
	}
}

func TestAnnotate(t *testing.T) {
	settlements := PairwiseSettlements(threeWay())
	records := []models.SettledRecord{
		{From: "Charlie", To: "Bob", Amount: 3, SettledAt: time.Now()},
		{From: "Alice", To: "Charlie", Amount: 5, SettledAt: time.Now()},
	}

	got := Annotate(settlements, records)
	require.Len(t, got, 3)
	assert.False(t, got[0].Settled, "Bob->Alice has no record")
	assert.False(t, got[1].Settled, "Charlie->Alice has no record")
	assert.True(t, got[2].Settled, "Charlie->Bob matches regardless of amount")

	// Input is not modified.
	for _, s := range settlements {
		assert.False(t, s.Settled)
	}

	again := Annotate(got, records)
	assert.Equal(t, got, again)
}

func TestAnnotate_DirectionMatters(t *testing.T) {
	got := Annotate(
		[]models.Settlement{{From: "Bob", To: "Alice", Amount: 10}},
		[]models.SettledRecord{{From: "Alice", To: "Bob", Amount: 10}},
	)
	assert.False(t, got[0].Settled)
}

func TestComputeSettlements(t *testing.T) {
	group := threeWay()
	group.SettledRecords = []models.SettledRecord{{From: "Charlie", To: "Alice", Amount: 30}}

	pairwise := ComputeSettlements(group)
	require.Len(t, pairwise, 3)
	assert.True(t, pairwise[1].Settled)

	group.Simplify = true
	simplified := ComputeSettlements(group)
	assert.Equal(t, []models.Settlement{
		{From: "Charlie", To: "Alice", Amount: 40, Settled: true},
		{From: "Bob", To: "Alice", Amount: 10},
	}, simplified)
}

func TestComputeSettlements_EmptyGroup(t *testing.T) {
	group := newGroup([]models.Member{alice, bob})
	assert.Empty(t, ComputeSettlements(group))
	group.Simplify = true
	assert.Empty(t, ComputeSettlements(group))
}

func TestRecordSettlementPayment(t *testing.T) {
	group := threeWay()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	event, record, err := RecordSettlementPayment(group, "Bob", "Alice", 20, now)
	require.NoError(t, err)

	assert.Equal(t, models.KindSettlement, event.Kind)
	assert.True(t, event.IsSettlement())
	assert.Equal(t, "Bob paid Alice", event.Description)
	assert.Equal(t, models.SettlementCategory, event.Category)
	assert.Equal(t, bob, event.Payer)
	recipient, ok := event.Recipient()
	require.True(t, ok)
	assert.Equal(t, alice, recipient)
	assert.Equal(t, models.SettledRecord{From: "Bob", To: "Alice", Amount: 20, SettledAt: now}, record)

	// The group snapshot is untouched.
	assert.Len(t, group.Events, 2)
	assert.Empty(t, group.SettledRecords)

	group.Events = append(group.Events, event)
	group.SettledRecords = append(group.SettledRecords, record)
	got := ComputeSettlements(group)
	assert.Equal(t, []models.Settlement{
		{From: "Charlie", To: "Alice", Amount: 30},
		{From: "Charlie", To: "Bob", Amount: 10},
	}, got)
}

func TestRecordSettlementPayment_Errors(t *testing.T) {
	group := threeWay()
	now := time.Now()

	tests := []struct {
		name     string
		from, to string
		amount   float64
		wantErr  error
	}{
		{"self payment", "Bob", "Bob", 10, ErrInvalidSettlement},
		{"zero amount", "Bob", "Alice", 0, ErrInvalidSettlement},
		{"negative amount", "Bob", "Alice", -5, ErrInvalidSettlement},
		{"NaN amount", "Bob", "Alice", math.NaN(), ErrInvalidSettlement},
		{"unknown payer", "Zed", "Alice", 5, ErrMemberNotFound},
		{"unknown recipient", "Bob", "Zed", 5, ErrMemberNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := RecordSettlementPayment(group, tt.from, tt.to, tt.amount, now)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRevokeSettlementRecord(t *testing.T) {
	group := threeWay()
	group.SettledRecords = []models.SettledRecord{
		{From: "Bob", To: "Alice", Amount: 10},
		{From: "Charlie", To: "Bob", Amount: 5},
		{From: "Bob", To: "Alice", Amount: 10},
		{From: "Alice", To: "Bob", Amount: 1},
	}

	kept := RevokeSettlementRecord(group, "Bob", "Alice")

	assert.Equal(t, []models.SettledRecord{
		{From: "Charlie", To: "Bob", Amount: 5},
		{From: "Alice", To: "Bob", Amount: 1},
	}, kept)
	assert.Len(t, group.SettledRecords, 4)

	assert.Len(t, RevokeSettlementRecord(group, "Diana", "Alice"), 4)
}

func TestValidateExpense(t *testing.T) {
	group := threeWay()

	payer, participants, err := ValidateExpense(group, "Alice", []string{"Alice", "Charlie"}, 12)
	require.NoError(t, err)
	assert.Equal(t, alice, payer)
	assert.Equal(t, []models.Member{alice, charlie}, participants)

	tests := []struct {
		name         string
		payer        string
		participants []string
		amount       float64
		wantErr      error
	}{
		{"zero amount", "Alice", []string{"Bob"}, 0, ErrInvalidExpense},
		{"negative amount", "Alice", []string{"Bob"}, -1, ErrInvalidExpense},
		{"no participants", "Alice", nil, 10, ErrInvalidExpense},
		{"duplicate participant", "Alice", []string{"Bob", "Bob"}, 10, ErrInvalidExpense},
		{"unknown payer", "Zed", []string{"Bob"}, 10, ErrMemberNotFound},
		{"unknown participant", "Alice", []string{"Bob", "Zed"}, 10, ErrMemberNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ValidateExpense(group, tt.payer, tt.participants, tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{20, 20},
		{19.999999999, 20},
		{1.005, 1.01},
		{2.675, 2.68},
		{0.014, 0.01},
		{-1.005, -1.01},
		{33.333333, 33.33},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(tt.in), "Round2(%v)", tt.in)
	}
}

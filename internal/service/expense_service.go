package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService: the event log of a
// group and the balances and settlements computed from it.
type ExpenseService struct {
	store  storage.Store
	locks  *Locks
	logger *slog.Logger
	now    func() time.Time
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store, locks *Locks, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{
		store:  store,
		locks:  locks,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// buildExpense validates an expense against the group and returns the event.
func buildExpense(g *models.Group, description string, amount float64, payer string, participants []string) (models.Event, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return models.Event{}, invalid("description cannot be empty")
	}

	payerMember, members, err := calculator.ValidateExpense(g, payer, participants, amount)
	if err != nil {
		return models.Event{}, err
	}

	return models.Event{
		Kind:         models.KindExpense,
		Description:  description,
		Amount:       amount,
		Payer:        payerMember,
		Participants: members,
	}, nil
}

// CreateExpense appends an equally split expense to the group's log.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	s.logger.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"payer", req.Msg.Payer,
		"participants_count", len(req.Msg.Participants),
	)

	unlock := s.locks.Lock(req.Msg.GroupID)
	defer unlock()

	group, err := loadGroup(ctx, s.store, s.logger, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	event, err := buildExpense(group, req.Msg.Description, req.Msg.Amount, req.Msg.Payer, req.Msg.Participants)
	if err != nil {
		s.logger.Warn("CreateExpense rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	event.Category = strings.TrimSpace(req.Msg.Category)
	event.Notes = strings.TrimSpace(req.Msg.Notes)
	event.CreatedAt = s.now()

	if err := s.store.AddEvent(ctx, group.ID, &event); err != nil {
		s.logger.Error("CreateExpense failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Expense created", "group_id", group.ID, "event_id", event.ID)

	return connect.NewResponse(&api.CreateExpenseResponse{Event: toAPIEvent(event)}), nil
}

// UpdateExpense replaces an expense's fields. Settlement payments cannot be
// edited; delete them and settle again.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	s.logger.Info("UpdateExpense request received", "group_id", req.Msg.GroupID, "event_id", req.Msg.EventID)

	unlock := s.locks.Lock(req.Msg.GroupID)
	defer unlock()

	group, err := loadGroup(ctx, s.store, s.logger, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	i := group.FindEvent(req.Msg.EventID)
	if i < 0 {
		return nil, connect.NewError(connect.CodeNotFound, storage.ErrNotFound)
	}
	if group.Events[i].IsSettlement() {
		return nil, toConnectError(invalid("settlement payments cannot be edited"))
	}

	event, err := buildExpense(group, req.Msg.Description, req.Msg.Amount, req.Msg.Payer, req.Msg.Participants)
	if err != nil {
		return nil, toConnectError(err)
	}
	event.ID = req.Msg.EventID
	event.Category = strings.TrimSpace(req.Msg.Category)
	event.Notes = strings.TrimSpace(req.Msg.Notes)

	if err := s.store.UpdateEvent(ctx, group.ID, &event); err != nil {
		s.logger.Error("UpdateExpense failed", "group_id", group.ID, "event_id", event.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.UpdateExpenseResponse{Event: toAPIEvent(event)}), nil
}

// DeleteExpense removes an event. Removing a settlement payment also revokes
// the settled record of its pair.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	s.logger.Info("DeleteExpense request received", "group_id", req.Msg.GroupID, "event_id", req.Msg.EventID)

	unlock := s.locks.Lock(req.Msg.GroupID)
	defer unlock()

	group, err := loadGroup(ctx, s.store, s.logger, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	i := group.FindEvent(req.Msg.EventID)
	if i < 0 {
		return nil, connect.NewError(connect.CodeNotFound, storage.ErrNotFound)
	}
	event := group.Events[i]

	if err := s.store.DeleteEvent(ctx, group.ID, event.ID); err != nil {
		s.logger.Error("DeleteExpense failed", "group_id", group.ID, "event_id", event.ID, "error", err)
		return nil, toConnectError(err)
	}

	revoked := 0
	if recipient, ok := event.Recipient(); ok {
		revoked, err = s.revoke(ctx, group, event.Payer.Name, recipient.Name)
		if err != nil {
			return nil, toConnectError(err)
		}
	}

	s.logger.Info("Event deleted", "group_id", group.ID, "event_id", event.ID, "revoked_records", revoked)

	return connect.NewResponse(&api.DeleteExpenseResponse{RevokedRecords: revoked}), nil
}

// Settle records a payment between two members: a settlement event in the
// log plus a settled-pair record.
func (s *ExpenseService) Settle(ctx context.Context, req *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error) {
	s.logger.Info("Settle request received",
		"group_id", req.Msg.GroupID,
		"from", req.Msg.From,
		"to", req.Msg.To,
		"amount", req.Msg.Amount,
	)

	unlock := s.locks.Lock(req.Msg.GroupID)
	defer unlock()

	group, err := loadGroup(ctx, s.store, s.logger, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	from := strings.TrimSpace(req.Msg.From)
	to := strings.TrimSpace(req.Msg.To)
	event, record, err := calculator.RecordSettlementPayment(group, from, to, req.Msg.Amount, s.now())
	if err != nil {
		s.logger.Warn("Settle rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.RecordSettlement(ctx, group.ID, &event, record); err != nil {
		s.logger.Error("Settle failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Settlement recorded", "group_id", group.ID, "event_id", event.ID)

	return connect.NewResponse(&api.SettleResponse{
		Event:  toAPIEvent(event),
		Record: toAPIRecord(record),
	}), nil
}

// RevokeSettlement clears the settled flag of a pair without touching the
// event log.
func (s *ExpenseService) RevokeSettlement(ctx context.Context, req *connect.Request[api.RevokeSettlementRequest]) (*connect.Response[api.RevokeSettlementResponse], error) {
	s.logger.Info("RevokeSettlement request received", "group_id", req.Msg.GroupID, "from", req.Msg.From, "to", req.Msg.To)

	unlock := s.locks.Lock(req.Msg.GroupID)
	defer unlock()

	group, err := loadGroup(ctx, s.store, s.logger, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoke(ctx, group, strings.TrimSpace(req.Msg.From), strings.TrimSpace(req.Msg.To))
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RevokeSettlementResponse{RevokedRecords: revoked}), nil
}

// revoke persists the group's records minus the (from, to) pair and reports
// how many were removed.
func (s *ExpenseService) revoke(ctx context.Context, group *models.Group, from, to string) (int, error) {
	remaining := calculator.RevokeSettlementRecord(group, from, to)
	revoked := len(group.SettledRecords) - len(remaining)
	if revoked == 0 {
		return 0, nil
	}
	if err := s.store.SetSettledRecords(ctx, group.ID, remaining); err != nil {
		s.logger.Error("Revoking settled records failed", "group_id", group.ID, "error", err)
		return 0, err
	}
	return revoked, nil
}

// GetBalances returns every member's net balance with paid and share totals.
func (s *ExpenseService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	group, err := loadGroup(ctx, s.store, s.logger, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	balances := calculator.MemberBalances(group)

	s.logger.Debug("GetBalances successful",
		"group_id", group.ID,
		"events_count", len(group.Events),
		"members_count", len(balances),
	)

	return connect.NewResponse(&api.GetBalancesResponse{Balances: toAPIBalances(balances)}), nil
}

// GetSettlements returns the suggested transfers under the group's policy.
func (s *ExpenseService) GetSettlements(ctx context.Context, req *connect.Request[api.GetSettlementsRequest]) (*connect.Response[api.GetSettlementsResponse], error) {
	group, err := loadGroup(ctx, s.store, s.logger, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	settlements := calculator.ComputeSettlements(group)

	s.logger.Debug("GetSettlements successful",
		"group_id", group.ID,
		"simplify", group.Simplify,
		"settlements_count", len(settlements),
	)

	return connect.NewResponse(&api.GetSettlementsResponse{
		Simplify:    group.Simplify,
		Settlements: toAPISettlements(settlements),
	}), nil
}

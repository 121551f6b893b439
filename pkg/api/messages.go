package api

import "time"

// Member is a participant in a group's ledger.
type Member struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Group is the wire form of a group. Events are only set by GetGroup.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []Member `json:"members"`
	Simplify  bool     `json:"simplify"`
	CreatedAt int64    `json:"created_at"`
	Events    []Event  `json:"events,omitempty"`
}

// Event is an expense or settlement payment in a group's log.
type Event struct {
	ID           int64     `json:"id"`
	Kind         string    `json:"kind"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	Payer        string    `json:"payer"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	Category     string    `json:"category,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

// Settlement is a suggested transfer.
type Settlement struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	Amount  float64 `json:"amount"`
	Settled bool    `json:"settled"`
}

// SettledRecord marks a pair as paid.
type SettledRecord struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    float64   `json:"amount"`
	SettledAt time.Time `json:"settled_at"`
}

// MemberBalance is one row of a group's balance sheet.
type MemberBalance struct {
	MemberName string  `json:"member_name"`
	NetBalance float64 `json:"net_balance"`
	TotalPaid  float64 `json:"total_paid"`
	TotalShare float64 `json:"total_share"`
}

// User is a registered account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

// GroupService messages.

type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members,omitempty"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group Group `json:"group"`
}

type RenameGroupRequest struct {
	GroupID string `json:"group_id"`
	Name    string `json:"name"`
}

type RenameGroupResponse struct {
	Group Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

// ToggleSimplifyRequest flips the group's settlement policy, or sets it
// when Simplify is non-nil.
type ToggleSimplifyRequest struct {
	GroupID  string `json:"group_id"`
	Simplify *bool  `json:"simplify,omitempty"`
}

type ToggleSimplifyResponse struct {
	Simplify bool `json:"simplify"`
}

type AddMemberRequest struct {
	GroupID string `json:"group_id"`
	Name    string `json:"name"`
}

type AddMemberResponse struct {
	Member Member `json:"member"`
}

type RemoveMemberRequest struct {
	GroupID  string `json:"group_id"`
	MemberID int64  `json:"member_id"`
}

type RemoveMemberResponse struct{}

// ExpenseService messages.

type CreateExpenseRequest struct {
	GroupID      string   `json:"group_id"`
	Description  string   `json:"description"`
	Amount       float64  `json:"amount"`
	Payer        string   `json:"payer"`
	Participants []string `json:"participants"`
	Category     string   `json:"category,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

type CreateExpenseResponse struct {
	Event Event `json:"event"`
}

type UpdateExpenseRequest struct {
	GroupID      string   `json:"group_id"`
	EventID      int64    `json:"event_id"`
	Description  string   `json:"description"`
	Amount       float64  `json:"amount"`
	Payer        string   `json:"payer"`
	Participants []string `json:"participants"`
	Category     string   `json:"category,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

type UpdateExpenseResponse struct {
	Event Event `json:"event"`
}

type DeleteExpenseRequest struct {
	GroupID string `json:"group_id"`
	EventID int64  `json:"event_id"`
}

type DeleteExpenseResponse struct {
	// RevokedRecords counts settled-pair records removed with a settlement event.
	RevokedRecords int `json:"revoked_records"`
}

type SettleRequest struct {
	GroupID string  `json:"group_id"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	Amount  float64 `json:"amount"`
}

type SettleResponse struct {
	Event  Event         `json:"event"`
	Record SettledRecord `json:"record"`
}

type RevokeSettlementRequest struct {
	GroupID string `json:"group_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

type RevokeSettlementResponse struct {
	RevokedRecords int `json:"revoked_records"`
}

type GetBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type GetBalancesResponse struct {
	Balances []MemberBalance `json:"balances"`
}

type GetSettlementsRequest struct {
	GroupID string `json:"group_id"`
}

type GetSettlementsResponse struct {
	Simplify    bool         `json:"simplify"`
	Settlements []Settlement `json:"settlements"`
}

// AuthService messages.

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type CurrentUserRequest struct{}

type CurrentUserResponse struct {
	User User `json:"user"`
}

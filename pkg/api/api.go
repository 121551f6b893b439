// Package api defines the Connect services exposed by splitledger: the
// message types, procedure names, handler constructors and typed clients.
//
// Messages are plain structs carried by the JSON Codec, so both the Connect
// protocol and plain HTTP POSTs with a JSON body work against the server.
package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	GroupServiceName   = "splitledger.v1.GroupService"
	ExpenseServiceName = "splitledger.v1.ExpenseService"
	AuthServiceName    = "splitledger.v1.AuthService"
)

const (
	GroupServiceCreateGroupProcedure    = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceListGroupsProcedure     = "/" + GroupServiceName + "/ListGroups"
	GroupServiceGetGroupProcedure       = "/" + GroupServiceName + "/GetGroup"
	GroupServiceRenameGroupProcedure    = "/" + GroupServiceName + "/RenameGroup"
	GroupServiceDeleteGroupProcedure    = "/" + GroupServiceName + "/DeleteGroup"
	GroupServiceToggleSimplifyProcedure = "/" + GroupServiceName + "/ToggleSimplify"
	GroupServiceAddMemberProcedure      = "/" + GroupServiceName + "/AddMember"
	GroupServiceRemoveMemberProcedure   = "/" + GroupServiceName + "/RemoveMember"

	ExpenseServiceCreateExpenseProcedure    = "/" + ExpenseServiceName + "/CreateExpense"
	ExpenseServiceUpdateExpenseProcedure    = "/" + ExpenseServiceName + "/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure    = "/" + ExpenseServiceName + "/DeleteExpense"
	ExpenseServiceSettleProcedure           = "/" + ExpenseServiceName + "/Settle"
	ExpenseServiceRevokeSettlementProcedure = "/" + ExpenseServiceName + "/RevokeSettlement"
	ExpenseServiceGetBalancesProcedure      = "/" + ExpenseServiceName + "/GetBalances"
	ExpenseServiceGetSettlementsProcedure   = "/" + ExpenseServiceName + "/GetSettlements"

	AuthServiceRegisterProcedure    = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure       = "/" + AuthServiceName + "/Login"
	AuthServiceCurrentUserProcedure = "/" + AuthServiceName + "/CurrentUser"
)

// GroupServiceHandler is implemented by the group service.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	RenameGroup(context.Context, *connect.Request[RenameGroupRequest]) (*connect.Response[RenameGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error)
	ToggleSimplify(context.Context, *connect.Request[ToggleSimplifyRequest]) (*connect.Response[ToggleSimplifyResponse], error)
	AddMember(context.Context, *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error)
}

// ExpenseServiceHandler is implemented by the expense service.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	Settle(context.Context, *connect.Request[SettleRequest]) (*connect.Response[SettleResponse], error)
	RevokeSettlement(context.Context, *connect.Request[RevokeSettlementRequest]) (*connect.Response[RevokeSettlementResponse], error)
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	GetSettlements(context.Context, *connect.Request[GetSettlementsRequest]) (*connect.Response[GetSettlementsResponse], error)
}

// AuthServiceHandler is implemented by the auth service.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	CurrentUser(context.Context, *connect.Request[CurrentUserRequest]) (*connect.Response[CurrentUserResponse], error)
}

// route dispatches a service's procedures by exact path.
type route map[string]http.Handler

func (r route) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := r[req.URL.Path]; ok {
		h.ServeHTTP(w, req)
		return
	}
	http.NotFound(w, req)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}

// NewGroupServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + GroupServiceName + "/", route{
		GroupServiceCreateGroupProcedure:    connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...),
		GroupServiceListGroupsProcedure:     connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...),
		GroupServiceGetGroupProcedure:       connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...),
		GroupServiceRenameGroupProcedure:    connect.NewUnaryHandler(GroupServiceRenameGroupProcedure, svc.RenameGroup, opts...),
		GroupServiceDeleteGroupProcedure:    connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...),
		GroupServiceToggleSimplifyProcedure: connect.NewUnaryHandler(GroupServiceToggleSimplifyProcedure, svc.ToggleSimplify, opts...),
		GroupServiceAddMemberProcedure:      connect.NewUnaryHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts...),
		GroupServiceRemoveMemberProcedure:   connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...),
	}
}

// NewExpenseServiceHandler builds an HTTP handler for the expense service.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + ExpenseServiceName + "/", route{
		ExpenseServiceCreateExpenseProcedure:    connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...),
		ExpenseServiceUpdateExpenseProcedure:    connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...),
		ExpenseServiceDeleteExpenseProcedure:    connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...),
		ExpenseServiceSettleProcedure:           connect.NewUnaryHandler(ExpenseServiceSettleProcedure, svc.Settle, opts...),
		ExpenseServiceRevokeSettlementProcedure: connect.NewUnaryHandler(ExpenseServiceRevokeSettlementProcedure, svc.RevokeSettlement, opts...),
		ExpenseServiceGetBalancesProcedure:      connect.NewUnaryHandler(ExpenseServiceGetBalancesProcedure, svc.GetBalances, opts...),
		ExpenseServiceGetSettlementsProcedure:   connect.NewUnaryHandler(ExpenseServiceGetSettlementsProcedure, svc.GetSettlements, opts...),
	}
}

// NewAuthServiceHandler builds an HTTP handler for the auth service.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + AuthServiceName + "/", route{
		AuthServiceRegisterProcedure:    connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...),
		AuthServiceLoginProcedure:       connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...),
		AuthServiceCurrentUserProcedure: connect.NewUnaryHandler(AuthServiceCurrentUserProcedure, svc.CurrentUser, opts...),
	}
}

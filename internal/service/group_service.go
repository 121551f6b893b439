package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// maxMemberNameLength bounds member names, counted in characters.
const maxMemberNameLength = 100

var _ api.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService: groups, their members
// and the settlement policy flag.
type GroupService struct {
	store  storage.Store
	locks  *Locks
	logger *slog.Logger
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, locks *Locks, logger *slog.Logger) *GroupService {
	return &GroupService{store: store, locks: locks, logger: logger}
}

// validateMemberName trims a member name and enforces the length limit.
func validateMemberName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("member name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxMemberNameLength {
		return "", invalid("member name too long (max %d chars)", maxMemberNameLength)
	}
	return name, nil
}

// CreateGroup creates a new group, optionally with initial members.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	s.logger.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, toConnectError(invalid("group name cannot be empty"))
	}

	group := &models.Group{Name: name}
	seen := make(map[string]bool, len(req.Msg.Members))
	for _, raw := range req.Msg.Members {
		memberName, err := validateMemberName(raw)
		if err != nil {
			return nil, toConnectError(err)
		}
		if seen[memberName] {
			return nil, toConnectError(invalid("member %q listed twice", memberName))
		}
		seen[memberName] = true
		group.Members = append(group.Members, models.Member{Name: memberName})
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves all groups with their members.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		s.logger.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}

	s.logger.Debug("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// GetGroup retrieves a group with its full event log.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	group, err := loadGroup(ctx, s.store, s.logger, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("GetGroup successful", "group_id", group.ID, "events", len(group.Events))

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// RenameGroup changes a group's name.
func (s *GroupService) RenameGroup(ctx context.Context, req *connect.Request[api.RenameGroupRequest]) (*connect.Response[api.RenameGroupResponse], error) {
	s.logger.Info("RenameGroup request received", "group_id", req.Msg.GroupID, "name", req.Msg.Name)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, toConnectError(invalid("group name cannot be empty"))
	}
	if req.Msg.GroupID == "" {
		return nil, toConnectError(invalid("group_id required"))
	}

	if err := s.store.RenameGroup(ctx, req.Msg.GroupID, name); err != nil {
		s.logger.Error("RenameGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	group, err := loadGroup(ctx, s.store, s.logger, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	group.Events = nil

	return connect.NewResponse(&api.RenameGroupResponse{Group: toAPIGroup(group)}), nil
}

// DeleteGroup removes a group and everything in it.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	s.logger.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if req.Msg.GroupID == "" {
		return nil, toConnectError(invalid("group_id required"))
	}

	unlock := s.locks.Lock(req.Msg.GroupID)
	defer unlock()

	if err := s.store.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		s.logger.Error("DeleteGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Group deleted", "group_id", req.Msg.GroupID)

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// ToggleSimplify flips the settlement policy, or sets it when the request
// carries an explicit value.
func (s *GroupService) ToggleSimplify(ctx context.Context, req *connect.Request[api.ToggleSimplifyRequest]) (*connect.Response[api.ToggleSimplifyResponse], error) {
	if req.Msg.GroupID == "" {
		return nil, toConnectError(invalid("group_id required"))
	}

	unlock := s.locks.Lock(req.Msg.GroupID)
	defer unlock()

	group, err := loadGroup(ctx, s.store, s.logger, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	simplify := !group.Simplify
	if req.Msg.Simplify != nil {
		simplify = *req.Msg.Simplify
	}

	if err := s.store.SetSimplify(ctx, group.ID, simplify); err != nil {
		s.logger.Error("ToggleSimplify failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Settlement policy changed", "group_id", group.ID, "simplify", simplify)

	return connect.NewResponse(&api.ToggleSimplifyResponse{Simplify: simplify}), nil
}

// AddMember adds a uniquely named member to a group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	s.logger.Info("AddMember request received", "group_id", req.Msg.GroupID, "name", req.Msg.Name)

	name, err := validateMemberName(req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}

	unlock := s.locks.Lock(req.Msg.GroupID)
	defer unlock()

	member := &models.Member{Name: name}
	if err := s.store.AddMember(ctx, req.Msg.GroupID, member); err != nil {
		s.logger.Warn("AddMember failed", "group_id", req.Msg.GroupID, "name", name, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.AddMemberResponse{Member: toAPIMember(*member)}), nil
}

// RemoveMember deletes a member who appears in no event.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	s.logger.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID)

	unlock := s.locks.Lock(req.Msg.GroupID)
	defer unlock()

	group, err := loadGroup(ctx, s.store, s.logger, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	var member *models.Member
	for i := range group.Members {
		if group.Members[i].ID == req.Msg.MemberID {
			member = &group.Members[i]
			break
		}
	}
	if member == nil {
		return nil, connect.NewError(connect.CodeNotFound, storage.ErrNotFound)
	}
	if group.HasEventsFor(member.Name) {
		return nil, toConnectError(ErrMemberInUse)
	}

	if err := s.store.RemoveMember(ctx, group.ID, member.ID); err != nil {
		s.logger.Error("RemoveMember failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Member removed", "group_id", group.ID, "name", member.Name)

	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// loadGroup fetches a snapshot and maps lookup failures to Connect errors.
func loadGroup(ctx context.Context, store storage.GroupStore, logger *slog.Logger, groupID string) (*models.Group, error) {
	if groupID == "" {
		return nil, toConnectError(invalid("group_id required"))
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		logger.Warn("Group lookup failed", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}
	return group, nil
}

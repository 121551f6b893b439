// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when a group, member, event or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned for duplicate member names or emails.
	ErrAlreadyExists = errors.New("already exists")
)

// Store defines the interface for group and account storage.
// This abstraction allows swapping storage backends (SQLite, in-memory)
// without changing the service layer.
//
// Every read returns a snapshot the caller owns: mutating it never affects
// the store, and later writes never affect it.
type Store interface {
	GroupStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}

// GroupStore persists groups, their members, event logs and settled records.
type GroupStore interface {
	// CreateGroup persists a new group. ID and CreatedAt are populated by the
	// store; members on the group are inserted and receive IDs.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns the full group: members, events and settled records.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns every group with its members, ordered by creation.
	// Events and settled records are not loaded.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// RenameGroup changes a group's display name.
	RenameGroup(ctx context.Context, groupID, name string) error

	// SetSimplify changes the group's settlement policy.
	SetSimplify(ctx context.Context, groupID string, simplify bool) error

	// DeleteGroup removes a group with all its members, events and records.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddMember adds a member and populates its ID.
	// Returns ErrAlreadyExists if the name is taken within the group.
	AddMember(ctx context.Context, groupID string, member *models.Member) error

	// RemoveMember removes a member from the group.
	RemoveMember(ctx context.Context, groupID string, memberID int64) error

	// AddEvent appends an event to the group's log and populates its ID.
	// CreatedAt is set to now when zero.
	AddEvent(ctx context.Context, groupID string, event *models.Event) error

	// UpdateEvent replaces an existing event, keeping its ID and CreatedAt.
	UpdateEvent(ctx context.Context, groupID string, event *models.Event) error

	// DeleteEvent removes an event from the group's log.
	DeleteEvent(ctx context.Context, groupID string, eventID int64) error

	// RecordSettlement appends a settlement event and its settled record
	// as one unit.
	RecordSettlement(ctx context.Context, groupID string, event *models.Event, record models.SettledRecord) error

	// SetSettledRecords replaces the group's settled records.
	SetSettledRecords(ctx context.Context, groupID string, records []models.SettledRecord) error
}

// UserStore persists registered accounts.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrAlreadyExists for a taken email.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns ErrNotFound when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns ErrNotFound when no user has the ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

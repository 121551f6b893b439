// Package memory provides an in-process storage.Store used by tests and
// ephemeral servers.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps every group and user in maps guarded by a single RWMutex.
// Groups are cloned on the way in and out.
type Store struct {
	mu sync.RWMutex

	groups map[string]*models.Group
	order  []string

	usersByID    map[string]*models.User
	usersByEmail map[string]string

	nextMemberID int64
	nextEventID  int64
}

func New() *Store {
	return &Store{
		groups:       make(map[string]*models.Group),
		usersByID:    make(map[string]*models.User),
		usersByEmail: make(map[string]string),
	}
}

func (s *Store) Close() error { return nil }

// Group Store implementation
func (s *Store) CreateGroup(_ context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if _, exists := s.groups[group.ID]; exists {
		return fmt.Errorf("%w: group %s", storage.ErrAlreadyExists, group.ID)
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	seen := make(map[string]bool, len(group.Members))
	for _, m := range group.Members {
		if seen[m.Name] {
			return fmt.Errorf("%w: member %q", storage.ErrAlreadyExists, m.Name)
		}
		seen[m.Name] = true
	}
	for i := range group.Members {
		s.nextMemberID++
		group.Members[i].ID = s.nextMemberID
	}

	stored := group.Clone()
	stored.Events = nil
	stored.SettledRecords = nil
	s.groups[group.ID] = stored
	s.order = append(s.order, group.ID)
	return nil
}

func (s *Store) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, err := s.group(groupID)
	if err != nil {
		return nil, err
	}
	return g.Clone(), nil
}

func (s *Store) ListGroups(_ context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Group, 0, len(s.order))
	for _, id := range s.order {
		g := s.groups[id].Clone()
		g.Events = nil
		g.SettledRecords = nil
		result = append(result, g)
	}
	return result, nil
}

func (s *Store) RenameGroup(_ context.Context, groupID, name string) error {
	return s.update(groupID, func(g *models.Group) error {
		g.Name = name
		return nil
	})
}

func (s *Store) SetSimplify(_ context.Context, groupID string, simplify bool) error {
	return s.update(groupID, func(g *models.Group) error {
		g.Simplify = simplify
		return nil
	})
}

func (s *Store) DeleteGroup(_ context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.group(groupID); err != nil {
		return err
	}
	delete(s.groups, groupID)
	for i, id := range s.order {
		if id == groupID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) AddMember(_ context.Context, groupID string, member *models.Member) error {
	return s.update(groupID, func(g *models.Group) error {
		if _, exists := g.FindMember(member.Name); exists {
			return fmt.Errorf("%w: member %q", storage.ErrAlreadyExists, member.Name)
		}
		s.nextMemberID++
		member.ID = s.nextMemberID
		g.Members = append(g.Members, *member)
		return nil
	})
}

func (s *Store) RemoveMember(_ context.Context, groupID string, memberID int64) error {
	return s.update(groupID, func(g *models.Group) error {
		for i, m := range g.Members {
			if m.ID == memberID {
				g.Members = append(g.Members[:i], g.Members[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: member %d", storage.ErrNotFound, memberID)
	})
}

// Event Store implementation
func (s *Store) AddEvent(_ context.Context, groupID string, event *models.Event) error {
	return s.update(groupID, func(g *models.Group) error {
		s.appendEvent(g, event)
		return nil
	})
}

func (s *Store) UpdateEvent(_ context.Context, groupID string, event *models.Event) error {
	return s.update(groupID, func(g *models.Group) error {
		i := g.FindEvent(event.ID)
		if i < 0 {
			return fmt.Errorf("%w: event %d", storage.ErrNotFound, event.ID)
		}
		event.CreatedAt = g.Events[i].CreatedAt
		g.Events[i] = event.Clone()
		return nil
	})
}

func (s *Store) DeleteEvent(_ context.Context, groupID string, eventID int64) error {
	return s.update(groupID, func(g *models.Group) error {
		i := g.FindEvent(eventID)
		if i < 0 {
			return fmt.Errorf("%w: event %d", storage.ErrNotFound, eventID)
		}
		g.Events = append(g.Events[:i], g.Events[i+1:]...)
		return nil
	})
}

func (s *Store) RecordSettlement(_ context.Context, groupID string, event *models.Event, record models.SettledRecord) error {
	return s.update(groupID, func(g *models.Group) error {
		s.appendEvent(g, event)
		if record.SettledAt.IsZero() {
			record.SettledAt = time.Now().UTC()
		}
		g.SettledRecords = append(g.SettledRecords, record)
		return nil
	})
}

func (s *Store) SetSettledRecords(_ context.Context, groupID string, records []models.SettledRecord) error {
	return s.update(groupID, func(g *models.Group) error {
		g.SettledRecords = append([]models.SettledRecord(nil), records...)
		return nil
	})
}

// User Store implementation
func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[user.Email]; exists {
		return fmt.Errorf("%w: email %q", storage.ErrAlreadyExists, user.Email)
	}
	if _, exists := s.usersByID[user.ID]; exists {
		return fmt.Errorf("%w: user %s", storage.ErrAlreadyExists, user.ID)
	}
	u := *user
	s.usersByID[user.ID] = &u
	s.usersByEmail[user.Email] = user.ID
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u := *s.usersByID[id]
	return &u, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// group must be called with s.mu held.
func (s *Store) group(groupID string) (*models.Group, error) {
	g, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: group %s", storage.ErrNotFound, groupID)
	}
	return g, nil
}

// update applies fn to a working copy of the group and commits it only when
// fn succeeds, so a failed write leaves the stored group untouched.
func (s *Store) update(groupID string, fn func(g *models.Group) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.group(groupID)
	if err != nil {
		return err
	}
	working := g.Clone()
	if err := fn(working); err != nil {
		return err
	}
	s.groups[groupID] = working
	return nil
}

// appendEvent must be called with s.mu held.
func (s *Store) appendEvent(g *models.Group, event *models.Event) {
	s.nextEventID++
	event.ID = s.nextEventID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	g.Events = append(g.Events, event.Clone())
}

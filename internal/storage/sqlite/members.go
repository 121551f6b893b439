package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// AddMember inserts a member into an existing group.
func (s *SQLiteStore) AddMember(ctx context.Context, groupID string, member *models.Member) error {
	if err := groupExists(ctx, s.db, groupID); err != nil {
		return err
	}
	return insertMember(ctx, s.db, groupID, member)
}

// RemoveMember deletes a member from a group.
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID string, memberID int64) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM members WHERE id = ? AND group_id = ?",
		memberID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return expectAffected(result, "member", memberID)
}

func insertMember(ctx context.Context, q querier, groupID string, member *models.Member) error {
	result, err := q.ExecContext(ctx,
		"INSERT INTO members (group_id, name) VALUES (?, ?)",
		groupID, member.Name,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: member %q", storage.ErrAlreadyExists, member.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}

	member.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read member id: %w", err)
	}
	return nil
}

func listMembers(ctx context.Context, q querier, groupID string) ([]models.Member, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name FROM members WHERE group_id = ? ORDER BY id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

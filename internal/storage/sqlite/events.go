package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// AddEvent appends an event to a group's log.
func (s *SQLiteStore) AddEvent(ctx context.Context, groupID string, event *models.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := groupExists(ctx, tx, groupID); err != nil {
		return err
	}
	if err := insertEvent(ctx, tx, groupID, event); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateEvent replaces the fields and participants of an existing event.
func (s *SQLiteStore) UpdateEvent(ctx context.Context, groupID string, event *models.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE events SET kind = ?, description = ?, amount = ?, payer_id = ?, category = ?, notes = ?
		 WHERE id = ? AND group_id = ?`,
		event.Kind.String(), event.Description, event.Amount, event.Payer.ID,
		nullString(event.Category), nullString(event.Notes),
		event.ID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if err := expectAffected(result, "event", event.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM event_participants WHERE event_id = ?", event.ID); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, event); err != nil {
		return err
	}

	var createdAt string
	if err := tx.QueryRowContext(ctx, "SELECT created_at FROM events WHERE id = ?", event.ID).Scan(&createdAt); err != nil {
		return fmt.Errorf("failed to read event timestamp: %w", err)
	}
	if event.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return fmt.Errorf("failed to parse event timestamp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteEvent removes an event and its participant rows.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, groupID string, eventID int64) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM events WHERE id = ? AND group_id = ?",
		eventID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return expectAffected(result, "event", eventID)
}

// RecordSettlement appends a settlement event and its settled record in one transaction.
func (s *SQLiteStore) RecordSettlement(ctx context.Context, groupID string, event *models.Event, record models.SettledRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := groupExists(ctx, tx, groupID); err != nil {
		return err
	}
	if err := insertEvent(ctx, tx, groupID, event); err != nil {
		return err
	}
	if err := insertSettledRecord(ctx, tx, groupID, record); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetSettledRecords replaces every settled record of a group.
func (s *SQLiteStore) SetSettledRecords(ctx context.Context, groupID string, records []models.SettledRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := groupExists(ctx, tx, groupID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM settled_records WHERE group_id = ?", groupID); err != nil {
		return fmt.Errorf("failed to clear settled records: %w", err)
	}
	for _, r := range records {
		if err := insertSettledRecord(ctx, tx, groupID, r); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertEvent(ctx context.Context, q querier, groupID string, event *models.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO events (group_id, kind, description, amount, payer_id, created_at, category, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		groupID, event.Kind.String(), event.Description, event.Amount, event.Payer.ID,
		event.CreatedAt.UTC().Format(time.RFC3339Nano),
		nullString(event.Category), nullString(event.Notes),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	event.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read event id: %w", err)
	}

	return insertParticipants(ctx, q, event)
}

func insertParticipants(ctx context.Context, q querier, event *models.Event) error {
	for i, p := range event.Participants {
		_, err := q.ExecContext(ctx,
			"INSERT INTO event_participants (event_id, member_id, position) VALUES (?, ?, ?)",
			event.ID, p.ID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}

func insertSettledRecord(ctx context.Context, q querier, groupID string, record models.SettledRecord) error {
	settledAt := record.SettledAt
	if settledAt.IsZero() {
		settledAt = time.Now()
	}
	_, err := q.ExecContext(ctx,
		"INSERT INTO settled_records (group_id, from_name, to_name, amount, settled_at) VALUES (?, ?, ?, ?, ?)",
		groupID, record.From, record.To, record.Amount, settledAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert settled record: %w", err)
	}
	return nil
}

// listEvents loads a group's events in log order, resolving member IDs
// against the group's member list.
func listEvents(ctx context.Context, q querier, groupID string, members []models.Member) ([]models.Event, error) {
	byID := make(map[int64]models.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, kind, description, amount, payer_id, created_at, category, notes
		 FROM events WHERE group_id = ? ORDER BY id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	index := make(map[int64]int)
	for rows.Next() {
		var (
			e         models.Event
			kind      string
			payerID   int64
			createdAt string
			category  sql.NullString
			notes     sql.NullString
		)
		if err := rows.Scan(&e.ID, &kind, &e.Description, &e.Amount, &payerID, &createdAt, &category, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Kind = models.ParseEventKind(kind)
		e.Payer = byID[payerID]
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse event timestamp: %w", err)
		}
		if category.Valid {
			e.Category = category.String
		}
		if notes.Valid {
			e.Notes = notes.String
		}
		index[e.ID] = len(events)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	rows.Close()

	partRows, err := q.QueryContext(ctx,
		`SELECT ep.event_id, ep.member_id
		 FROM event_participants ep JOIN events e ON e.id = ep.event_id
		 WHERE e.group_id = ? ORDER BY ep.event_id, ep.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer partRows.Close()

	for partRows.Next() {
		var eventID, memberID int64
		if err := partRows.Scan(&eventID, &memberID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if i, ok := index[eventID]; ok {
			events[i].Participants = append(events[i].Participants, byID[memberID])
		}
	}
	if err := partRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return events, nil
}

func listSettledRecords(ctx context.Context, q querier, groupID string) ([]models.SettledRecord, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT from_name, to_name, amount, settled_at FROM settled_records WHERE group_id = ? ORDER BY id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settled records: %w", err)
	}
	defer rows.Close()

	var records []models.SettledRecord
	for rows.Next() {
		var (
			r         models.SettledRecord
			settledAt string
		)
		if err := rows.Scan(&r.From, &r.To, &r.Amount, &settledAt); err != nil {
			return nil, fmt.Errorf("failed to scan settled record: %w", err)
		}
		if r.SettledAt, err = time.Parse(time.RFC3339Nano, settledAt); err != nil {
			return nil, fmt.Errorf("failed to parse settled timestamp: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settled records: %w", err)
	}

	return records, nil
}

// nullString stores empty optional text as NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

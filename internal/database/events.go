package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const eventColumns = `id, user_id, title, description, significance, date, type, visibility, created_at, updated_at`

// CreateEvent inserts e and fills in its ID and timestamps.
func (db *DB) CreateEvent(ctx context.Context, e *CalendarEvent) error {
	if e.Visibility == "" {
		e.Visibility = VisibilityPublic
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO calendar_events (user_id, title, description, significance, date, type, visibility)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Title, e.Description, e.Significance, e.Date, string(e.Type), string(e.Visibility),
	)
	if err != nil {
		return fmt.Errorf("insert calendar event: %w", mapWriteError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("calendar event id: %w", err)
	}

	created, err := db.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	*e = *created
	return nil
}

// GetEvent returns the event with the given id.
func (db *DB) GetEvent(ctx context.Context, id int64) (*CalendarEvent, error) {
	row := db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM calendar_events WHERE id = ?`, id)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query calendar event %d: %w", id, err)
	}
	return e, nil
}

// ListEvents returns events ordered by date then id.
// Private events are only included for their owner (f.Viewer).
// Members-only events are excluded when f.Viewer is zero.
func (db *DB) ListEvents(ctx context.Context, f EventFilter) ([]CalendarEvent, error) {
	var where []string
	var args []any

	if f.Start != "" {
		where = append(where, "date >= ?")
		args = append(args, f.Start)
	}
	if f.End != "" {
		where = append(where, "date <= ?")
		args = append(args, f.End)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}

	if f.Viewer == 0 {
		where = append(where, "visibility = 'public'")
	} else {
		where = append(where, "(visibility != 'private' OR user_id = ?)")
		args = append(args, f.Viewer)
	}

	page := f.Page.normalize()
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY date ASC, id ASC LIMIT ? OFFSET ?`
	args = append(args, page.Limit, page.Offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query calendar events: %w", err)
	}
	defer rows.Close()

	events := []CalendarEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calendar event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// UpdateEvent overwrites the editable fields of e.
// Returns ErrForbidden if userID does not own the event.
func (db *DB) UpdateEvent(ctx context.Context, userID int64, e *CalendarEvent) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		if err := checkOwner(ctx, tx, "calendar_events", e.ID, userID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE calendar_events
			SET title = ?, description = ?, significance = ?, date = ?, type = ?, visibility = ?,
			    updated_at = datetime('now')
			WHERE id = ?`,
			e.Title, e.Description, e.Significance, e.Date, string(e.Type), string(e.Visibility), e.ID,
		)
		if err != nil {
			return fmt.Errorf("update calendar event: %w", err)
		}
		return nil
	})
}

// DeleteEvent removes an event owned by userID.
func (db *DB) DeleteEvent(ctx context.Context, userID, id int64) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		if err := checkOwner(ctx, tx, "calendar_events", id, userID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete calendar event: %w", err)
		}
		return nil
	})
}

func scanEvent(row interface{ Scan(...any) error }) (*CalendarEvent, error) {
	var e CalendarEvent
	var eventType, visibility string
	var createdAt, updatedAt sql.NullString

	err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.Significance,
		&e.Date, &eventType, &visibility, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	e.Type = EventType(eventType)
	e.Visibility = Visibility(visibility)
	e.CreatedAt = parseTimestamp(createdAt)
	e.UpdatedAt = parseTimestamp(updatedAt)
	return &e, nil
}

// checkOwner returns ErrNotFound if the row is missing and ErrForbidden
// if it belongs to someone else. table is always a package constant.
func checkOwner(ctx context.Context, tx *Tx, table string, id, userID int64) error {
	var owner int64
	err := tx.QueryRowContext(ctx, `SELECT user_id FROM `+table+` WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("query %s owner: %w", table, err)
	}
	if owner != userID {
		return ErrForbidden
	}
	return nil
}

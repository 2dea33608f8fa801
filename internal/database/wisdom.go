package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const wisdomColumns = `id, date, title, content, author, type, active, created_at`

// DefaultWisdom is inserted by SeedWisdom into an empty table.
var DefaultWisdom = []Wisdom{
	{Title: "Ubuntu", Content: "Umuntu ngumuntu ngabantu. A person is a person through other people.", Author: "Nguni proverb", Type: WisdomTypeWisdom},
	{Title: "Sankofa", Content: "It is not wrong to go back for that which you have forgotten.", Author: "Akan proverb", Type: WisdomTypeCulturalInsight},
	{Title: "The Lion's Story", Content: "Until the lion learns to write, tales of the hunt shall always glorify the hunter.", Author: "African proverb", Type: WisdomTypeDecolonialThought},
	{Title: "Walking Together", Content: "If you want to go fast, go alone. If you want to go far, go together.", Author: "African proverb", Type: WisdomTypeQuote},
	{Title: "The New Year", Content: "The cultural year begins at the spring equinox of the southern hemisphere, when the land wakes and planting starts.", Author: "Inzalo Yelanga", Type: WisdomTypeHistoricalFact},
	{Title: "Roots", Content: "A tree without roots cannot stand against the wind.", Author: "African proverb", Type: WisdomTypeWisdom},
	{Title: "Rebirth of the Sun", Content: "At the winter solstice the sun is reborn and the days begin to lengthen again.", Author: "Inzalo Yelanga", Type: WisdomTypeCulturalInsight},
}

// CreateWisdom inserts w. A pinned date must be unique.
func (db *DB) CreateWisdom(ctx context.Context, w *Wisdom) error {
	res, err := db.ExecContext(ctx, `
		INSERT INTO wisdom (date, title, content, author, type, active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		nullString(w.Date), w.Title, w.Content, w.Author, string(w.Type), w.Active,
	)
	if err != nil {
		if mapped := mapWriteError(err); errors.Is(mapped, ErrDuplicate) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert wisdom: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("wisdom id: %w", err)
	}

	row := db.QueryRowContext(ctx, `SELECT `+wisdomColumns+` FROM wisdom WHERE id = ?`, id)
	created, err := scanWisdom(row)
	if err != nil {
		return fmt.Errorf("query wisdom %d: %w", id, err)
	}
	*w = *created
	return nil
}

// SeedWisdom inserts DefaultWisdom when the table is empty and reports
// how many rows were added.
func (db *DB) SeedWisdom(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wisdom`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count wisdom: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	seed := make([]Wisdom, len(DefaultWisdom))
	copy(seed, DefaultWisdom)
	return db.ImportWisdom(ctx, seed)
}

// ImportWisdom inserts entries in a single transaction; any failure,
// including a duplicate pinned date, rolls back the whole batch.
// Entries are updated in place with their stored IDs.
func (db *DB) ImportWisdom(ctx context.Context, entries []Wisdom) (int, error) {
	err := db.WithTx(ctx, func(tx *Tx) error {
		for i := range entries {
			if err := tx.InsertWisdom(ctx, &entries[i]); err != nil {
				return fmt.Errorf("wisdom %d (%q): %w", i+1, entries[i].Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// InsertWisdom inserts w inside tx. A zero Type defaults to wisdom and
// entries are always stored active.
func (tx *Tx) InsertWisdom(ctx context.Context, w *Wisdom) error {
	if w.Type == "" {
		w.Type = WisdomTypeWisdom
	}
	w.Active = true

	res, err := tx.ExecContext(ctx, `
		INSERT INTO wisdom (date, title, content, author, type, active) VALUES (?, ?, ?, ?, ?, 1)`,
		nullString(w.Date), w.Title, w.Content, w.Author, string(w.Type),
	)
	if err != nil {
		return mapWriteError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("wisdom id: %w", err)
	}
	w.ID = id
	return nil
}

// WisdomForDate returns the entry pinned to date if there is one.
// Otherwise it picks from the active unpinned entries by
// days-since-Unix-epoch modulo their count, so a given date always
// yields the same entry while the set is unchanged.
func (db *DB) WisdomForDate(ctx context.Context, date time.Time) (*Wisdom, error) {
	day := date.Format("2006-01-02")

	row := db.QueryRowContext(ctx,
		`SELECT `+wisdomColumns+` FROM wisdom WHERE date = ? AND active = 1`, day)
	w, err := scanWisdom(row)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query pinned wisdom: %w", err)
	}

	var count int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM wisdom WHERE date IS NULL AND active = 1`,
	).Scan(&count); err != nil {
		return nil, fmt.Errorf("count wisdom: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	civil := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	days := civil.Unix() / 86400
	offset := int(((days % int64(count)) + int64(count)) % int64(count))

	row = db.QueryRowContext(ctx, `
		SELECT `+wisdomColumns+` FROM wisdom
		WHERE date IS NULL AND active = 1
		ORDER BY id LIMIT 1 OFFSET ?`, offset)
	w, err = scanWisdom(row)
	if err != nil {
		return nil, fmt.Errorf("query wisdom at %d: %w", offset, err)
	}
	return w, nil
}

func scanWisdom(row interface{ Scan(...any) error }) (*Wisdom, error) {
	var w Wisdom
	var date, createdAt sql.NullString
	var wisdomType string

	if err := row.Scan(&w.ID, &date, &w.Title, &w.Content, &w.Author, &wisdomType, &w.Active, &createdAt); err != nil {
		return nil, err
	}

	w.Date = stringPtr(date)
	w.Type = WisdomType(wisdomType)
	w.CreatedAt = parseTimestamp(createdAt)
	return &w, nil
}

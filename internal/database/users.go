package database

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
)

// apiKeyPrefix marks keys issued by this service.
const apiKeyPrefix = "iy_"

// CreateUser inserts a user with the default role.
// Returns ErrDuplicate if the username or email is taken.
func (db *DB) CreateUser(ctx context.Context, username string, email, displayName *string) (*User, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO users (username, email, display_name) VALUES (?, ?, ?)`,
		username, nullString(email), nullString(displayName),
	)
	if err != nil {
		if mapped := mapWriteError(err); errors.Is(mapped, ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}

	return db.GetUser(ctx, id)
}

// GetUser returns the user with the given id.
func (db *DB) GetUser(ctx context.Context, id int64) (*User, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, username, email, display_name, role, created_at
		FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user %d: %w", id, err)
	}
	return u, nil
}

// SetUserRole changes a user's role.
func (db *DB) SetUserRole(ctx context.Context, id int64, role Role) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid role %q", role)
	}

	res, err := db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), id)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return expectOneRow(res)
}

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var email, displayName, createdAt sql.NullString
	var role string

	if err := row.Scan(&u.ID, &u.Username, &email, &displayName, &role, &createdAt); err != nil {
		return nil, err
	}

	u.Email = stringPtr(email)
	u.DisplayName = stringPtr(displayName)
	u.Role = Role(role)
	u.CreatedAt = parseTimestamp(createdAt)
	return &u, nil
}

// =============================================================================
// API keys
// =============================================================================

// CreateAPIKey issues a new key for userID. The plaintext is only
// available on the returned value.
func (db *DB) CreateAPIKey(ctx context.Context, userID int64, name string) (*APIKeyWithPlaintext, error) {
	if _, err := db.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	plaintext, err := generateKey()
	if err != nil {
		return nil, err
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO api_keys (user_id, key_hash, name) VALUES (?, ?, ?)`,
		userID, hashKey(plaintext), name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert api key: %w", mapWriteError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("api key id: %w", err)
	}

	key, err := db.getAPIKey(ctx, id)
	if err != nil {
		return nil, err
	}

	return &APIKeyWithPlaintext{APIKey: *key, PlaintextKey: plaintext}, nil
}

// ListAPIKeys returns a user's keys, newest first.
func (db *DB) ListAPIKeys(ctx context.Context, userID int64) ([]APIKey, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, name, last_used_at, revoked_at, created_at
		FROM api_keys WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query api keys: %w", err)
	}
	defer rows.Close()

	keys := []APIKey{}
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, *k)
	}
	return keys, rows.Err()
}

// RevokeAPIKey marks a key unusable. Revoking twice is a no-op.
func (db *DB) RevokeAPIKey(ctx context.Context, userID, keyID int64) error {
	res, err := db.ExecContext(ctx, `
		UPDATE api_keys SET revoked_at = COALESCE(revoked_at, datetime('now'))
		WHERE id = ? AND user_id = ?`, keyID, userID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	return expectOneRow(res)
}

// AuthenticateAPIKey resolves a plaintext key to its user and records
// the use. Unknown and revoked keys return ErrNotFound.
func (db *DB) AuthenticateAPIKey(ctx context.Context, plaintext string) (*User, error) {
	var keyID, userID int64
	err := db.QueryRowContext(ctx, `
		SELECT id, user_id FROM api_keys
		WHERE key_hash = ? AND revoked_at IS NULL`, hashKey(plaintext),
	).Scan(&keyID, &userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query api key: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = datetime('now') WHERE id = ?`, keyID,
	); err != nil {
		return nil, fmt.Errorf("touch api key: %w", err)
	}

	return db.GetUser(ctx, userID)
}

func (db *DB) getAPIKey(ctx context.Context, id int64) (*APIKey, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, user_id, name, last_used_at, revoked_at, created_at
		FROM api_keys WHERE id = ?`, id)

	k, err := scanAPIKey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query api key %d: %w", id, err)
	}
	return k, nil
}

func scanAPIKey(row interface{ Scan(...any) error }) (*APIKey, error) {
	var k APIKey
	var lastUsed, revoked, createdAt sql.NullString

	if err := row.Scan(&k.ID, &k.UserID, &k.Name, &lastUsed, &revoked, &createdAt); err != nil {
		return nil, err
	}

	k.LastUsedAt = parseNullTimestamp(lastUsed)
	k.RevokedAt = parseNullTimestamp(revoked)
	k.CreatedAt = parseTimestamp(createdAt)
	return &k, nil
}

func generateKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return apiKeyPrefix + hex.EncodeToString(buf), nil
}

func hashKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// expectOneRow maps "no rows affected" to ErrNotFound.
func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const postSelect = `
	SELECT p.id, p.user_id, p.title, p.content, p.type, p.tags, p.created_at, p.updated_at,
	       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id)
	FROM community_posts p`

// CreatePost inserts p and fills in its ID and timestamps.
func (db *DB) CreatePost(ctx context.Context, p *CommunityPost) error {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO community_posts (user_id, title, content, type, tags)
		VALUES (?, ?, ?, ?, ?)`,
		p.UserID, p.Title, p.Content, string(p.Type), string(tags),
	)
	if err != nil {
		return fmt.Errorf("insert community post: %w", mapWriteError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("community post id: %w", err)
	}

	created, err := db.GetPost(ctx, id)
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

// GetPost returns a post with its like count.
func (db *DB) GetPost(ctx context.Context, id int64) (*CommunityPost, error) {
	row := db.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, id)

	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query community post %d: %w", id, err)
	}
	return p, nil
}

// ListPosts returns posts newest first, optionally filtered by type.
func (db *DB) ListPosts(ctx context.Context, postType PostType, page Page) ([]CommunityPost, error) {
	page = page.normalize()

	query := postSelect
	var args []any
	if postType != "" {
		query += ` WHERE p.type = ?`
		args = append(args, string(postType))
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`
	args = append(args, page.Limit, page.Offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query community posts: %w", err)
	}
	defer rows.Close()

	posts := []CommunityPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan community post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// DeletePost removes a post. Moderators may delete any post.
func (db *DB) DeletePost(ctx context.Context, user *User, id int64) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		err := checkOwner(ctx, tx, "community_posts", id, user.ID)
		if errors.Is(err, ErrForbidden) && user.CanModerate() {
			err = nil
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM community_posts WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete community post: %w", err)
		}
		return nil
	})
}

// ToggleLike likes the post for userID, or removes an existing like.
// It returns whether the post is now liked and the new like count.
func (db *DB) ToggleLike(ctx context.Context, postID, userID int64) (liked bool, count int, err error) {
	err = db.WithTx(ctx, func(tx *Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM community_posts WHERE id = ?`, postID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("query community post: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`, postID, userID)
		if err != nil {
			return fmt.Errorf("remove like: %w", err)
		}

		removed, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if removed == 0 {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO post_likes (post_id, user_id) VALUES (?, ?)`, postID, userID,
			); err != nil {
				return fmt.Errorf("add like: %w", err)
			}
			liked = true
		}

		return tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM post_likes WHERE post_id = ?`, postID,
		).Scan(&count)
	})
	return liked, count, err
}

func scanPost(row interface{ Scan(...any) error }) (*CommunityPost, error) {
	var p CommunityPost
	var postType, tags string
	var createdAt, updatedAt sql.NullString

	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &postType, &tags,
		&createdAt, &updatedAt, &p.Likes)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	p.Type = PostType(postType)
	p.CreatedAt = parseTimestamp(createdAt)
	p.UpdatedAt = parseTimestamp(updatedAt)
	return &p, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const articleColumns = `id, user_id, slug, title, summary, body, category, published, created_at, updated_at`

// CreateArticle inserts a. Returns ErrDuplicate if the slug is taken.
func (db *DB) CreateArticle(ctx context.Context, a *Article) error {
	res, err := db.ExecContext(ctx, `
		INSERT INTO articles (user_id, slug, title, summary, body, category, published)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Slug, a.Title, a.Summary, a.Body, a.Category, a.Published,
	)
	if err != nil {
		if mapped := mapWriteError(err); errors.Is(mapped, ErrDuplicate) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert article: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("article id: %w", err)
	}

	row := db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	created, err := scanArticle(row)
	if err != nil {
		return fmt.Errorf("query article %d: %w", id, err)
	}
	*a = *created
	return nil
}

// GetArticleBySlug returns the article with the given slug.
func (db *DB) GetArticleBySlug(ctx context.Context, slug string) (*Article, error) {
	row := db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = ?`, slug)

	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query article %q: %w", slug, err)
	}
	return a, nil
}

// ListArticles returns published articles newest first.
// An empty category matches all.
func (db *DB) ListArticles(ctx context.Context, category string, page Page) ([]Article, error) {
	page = page.normalize()

	query := `SELECT ` + articleColumns + ` FROM articles WHERE published = 1`
	var args []any
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, page.Limit, page.Offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	articles := []Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

// UpdateArticle overwrites the editable fields of the article at a.Slug.
// The slug itself is immutable.
func (db *DB) UpdateArticle(ctx context.Context, userID int64, a *Article) error {
	existing, err := db.GetArticleBySlug(ctx, a.Slug)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return ErrForbidden
	}

	_, err = db.ExecContext(ctx, `
		UPDATE articles
		SET title = ?, summary = ?, body = ?, category = ?, published = ?, updated_at = datetime('now')
		WHERE id = ?`,
		a.Title, a.Summary, a.Body, a.Category, a.Published, existing.ID,
	)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}

	updated, err := db.GetArticleBySlug(ctx, a.Slug)
	if err != nil {
		return err
	}
	*a = *updated
	return nil
}

// DeleteArticle removes an article. Moderators may delete any article.
func (db *DB) DeleteArticle(ctx context.Context, user *User, slug string) error {
	existing, err := db.GetArticleBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if existing.UserID != user.ID && !user.CanModerate() {
		return ErrForbidden
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, existing.ID); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

func scanArticle(row interface{ Scan(...any) error }) (*Article, error) {
	var a Article
	var createdAt, updatedAt sql.NullString

	err := row.Scan(&a.ID, &a.UserID, &a.Slug, &a.Title, &a.Summary, &a.Body,
		&a.Category, &a.Published, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	a.CreatedAt = parseTimestamp(createdAt)
	a.UpdatedAt = parseTimestamp(updatedAt)
	return &a, nil
}

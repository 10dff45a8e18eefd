// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mwenger0/cursora/internal/models"
)

// ContentFilter narrows ListContent results. Zero values mean no filter.
type ContentFilter struct {
	Difficulty  string
	ContentType string
}

// GetContent returns the content item with the given id, or ErrContentNotFound.
func (db *DB) GetContent(ctx context.Context, contentID string) (*models.Content, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `
		SELECT content_id, title, description, content_type, difficulty, tags,
		       duration_minutes, popularity_score, created_at
		FROM content
		WHERE content_id = ?`, contentID)

	content, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("content %q: %w", contentID, ErrContentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get content %q: %w", contentID, err)
	}
	return content, nil
}

// ListContent returns catalog items ordered by popularity descending,
// optionally filtered by difficulty and content type.
func (db *DB) ListContent(ctx context.Context, limit, offset int, filter ContentFilter) ([]models.Content, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT content_id, title, description, content_type, difficulty, tags,
		       duration_minutes, popularity_score, created_at
		FROM content
		WHERE 1=1`
	args := make([]any, 0, 4)

	if filter.Difficulty != "" {
		query += " AND difficulty = ?"
		args = append(args, filter.Difficulty)
	}
	if filter.ContentType != "" {
		query += " AND content_type = ?"
		args = append(args, filter.ContentType)
	}
	query += " ORDER BY popularity_score DESC, content_id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer closeRows(rows)

	var items []models.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list content rows: %w", err)
	}
	return items, nil
}

// CreateContent inserts a catalog item. Used by seeding and fixtures.
func (db *DB) CreateContent(ctx context.Context, content *models.Content) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO content (content_id, title, description, content_type, difficulty, tags,
		                     duration_minutes, popularity_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		content.ID, content.Title, content.Description, string(content.ContentType),
		string(content.Difficulty), joinTags(content.Tags), content.DurationMinutes,
		content.PopularityScore, content.CreatedAt)
	if err != nil {
		return fmt.Errorf("create content %q: %w", content.ID, err)
	}
	return nil
}

func scanContent(row rowScanner) (*models.Content, error) {
	var (
		content     models.Content
		description sql.NullString
		contentType sql.NullString
		difficulty  sql.NullString
		tags        sql.NullString
		duration    sql.NullInt64
	)

	err := row.Scan(&content.ID, &content.Title, &description, &contentType, &difficulty,
		&tags, &duration, &content.PopularityScore, &content.CreatedAt)
	if err != nil {
		return nil, err
	}

	content.Description = description.String
	content.ContentType = models.ContentType(contentType.String)
	content.Difficulty = models.Difficulty(difficulty.String)
	content.Tags = splitTags(tags.String)
	content.DurationMinutes = int(duration.Int64)
	return &content, nil
}

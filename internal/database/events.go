// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mwenger0/cursora/internal/logging"
	"github.com/mwenger0/cursora/internal/metrics"
	"github.com/mwenger0/cursora/internal/models"
)

// InsertEvent ingests one engagement event atomically: existence checks,
// the event insert, the user's last_active bump, and the content popularity
// recompute all run in a single transaction. The recompute is a full
// aggregate count (count(events)*0.01) executed inside the transaction, so
// interleaved ingestion for the same content id serializes on the store
// rather than racing a read-modify-write in the application.
//
// Returns ErrUserNotFound or ErrContentNotFound when a referenced id is
// absent; nothing is written in that case.
func (db *DB) InsertEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin event transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE user_id = ?", event.UserID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check user %q: %w", event.UserID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("user %q: %w", event.UserID, ErrUserNotFound)
	}

	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM content WHERE content_id = ?", event.ContentID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check content %q: %w", event.ContentID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("content %q: %w", event.ContentID, ErrContentNotFound)
	}

	stored := *event
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (event_id, user_id, content_id, event_type, value, session_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.UserID, stored.ContentID, string(stored.EventType),
		stored.Value, stored.SessionID, stored.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	_, err = tx.ExecContext(ctx, "UPDATE users SET last_active = ? WHERE user_id = ?",
		stored.Timestamp, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("update last_active for %q: %w", stored.UserID, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE content
		SET popularity_score = (SELECT COUNT(*) * 0.01 FROM events WHERE content_id = ?)
		WHERE content_id = ?`,
		stored.ContentID, stored.ContentID)
	if err != nil {
		return nil, fmt.Errorf("recompute popularity for %q: %w", stored.ContentID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit event transaction: %w", err)
	}

	metrics.RecordEventIngested(string(stored.EventType))
	logging.Ctx(ctx).Debug().
		Str("event_id", stored.ID).
		Str("user_id", stored.UserID).
		Str("content_id", stored.ContentID).
		Str("event_type", string(stored.EventType)).
		Msg("event ingested")

	return &stored, nil
}

// RecentEvents returns the newest events joined with user names and content
// titles for the activity feed.
func (db *DB) RecentEvents(ctx context.Context, limit int) ([]models.RecentEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT e.event_id, e.user_id, u.name, e.content_id, c.title, e.event_type, e.timestamp
		FROM events e
		JOIN users u ON e.user_id = u.user_id
		JOIN content c ON e.content_id = c.content_id
		ORDER BY e.timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer closeRows(rows)

	var events []models.RecentEvent
	for rows.Next() {
		var (
			ev        models.RecentEvent
			eventType string
		)
		if err := rows.Scan(&ev.EventID, &ev.UserID, &ev.UserName, &ev.ContentID,
			&ev.ContentTitle, &eventType, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("scan recent event: %w", err)
		}
		ev.EventType = models.EventType(eventType)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent events rows: %w", err)
	}
	return events, nil
}

// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwenger0/cursora/internal/logging"
	"github.com/mwenger0/cursora/internal/metrics"
	"github.com/mwenger0/cursora/internal/models"
	"github.com/mwenger0/cursora/internal/recommend"
)

// EngineDataProvider adapts the store to the recommendation engine's
// DataProvider interface.
type EngineDataProvider struct {
	db *DB
}

// Compile-time interface check.
var _ recommend.DataProvider = (*EngineDataProvider)(nil)

// NewEngineDataProvider creates a DataProvider backed by the store.
func NewEngineDataProvider(db *DB) *EngineDataProvider {
	return &EngineDataProvider{db: db}
}

// GetUserProfile returns the learner profile for scoring.
func (p *EngineDataProvider) GetUserProfile(ctx context.Context, userID string) (*models.User, error) {
	return p.db.GetUser(ctx, userID)
}

// GetUserHistory returns engagement counts grouped by content and event
// type. History rows referencing content that no longer exists are skipped,
// counted, and logged rather than surfaced as an error: the scoring path
// must tolerate them even though ingestion-time checks should prevent them.
func (p *EngineDataProvider) GetUserHistory(ctx context.Context, userID string) (recommend.History, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.db.conn.QueryContext(ctx, `
		SELECT e.content_id, e.event_type, COUNT(*) AS interactions,
		       (c.content_id IS NULL) AS dangling
		FROM events e
		LEFT JOIN content c ON e.content_id = c.content_id
		WHERE e.user_id = ?
		GROUP BY e.content_id, e.event_type, dangling`, userID)
	if err != nil {
		return nil, fmt.Errorf("get user history %q: %w", userID, err)
	}
	defer closeRows(rows)

	history := recommend.History{}
	danglingRows := 0
	for rows.Next() {
		var (
			contentID string
			eventType string
			count     int
			dangling  bool
		)
		if err := rows.Scan(&contentID, &eventType, &count, &dangling); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if dangling {
			danglingRows++
			continue
		}
		if history[contentID] == nil {
			history[contentID] = make(map[models.EventType]int)
		}
		history[contentID][models.EventType(eventType)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}

	if danglingRows > 0 {
		metrics.DanglingHistoryRows.Add(float64(danglingRows))
		logging.Ctx(ctx).Warn().
			Str("user_id", userID).
			Int("rows", danglingRows).
			Msg("skipped history rows referencing missing content")
	}

	return history, nil
}

// GetCatalog returns every catalog item as scoring candidates.
func (p *EngineDataProvider) GetCatalog(ctx context.Context) ([]models.Content, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.db.conn.QueryContext(ctx, `
		SELECT content_id, title, description, content_type, difficulty, tags,
		       duration_minutes, popularity_score, created_at
		FROM content`)
	if err != nil {
		return nil, fmt.Errorf("get catalog: %w", err)
	}
	defer closeRows(rows)

	var catalog []models.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		catalog = append(catalog, *content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog rows: %w", err)
	}
	return catalog, nil
}

// GetSimilarUsers returns up to limit peers ordered by shared-content count
// descending with user id ascending as the tie-break, excluding the user.
// A user with no events gets an empty peer list, never an error.
func (p *EngineDataProvider) GetSimilarUsers(ctx context.Context, userID string, limit int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.db.conn.QueryContext(ctx, `
		SELECT e2.user_id, COUNT(*) AS common_items
		FROM events e1
		JOIN events e2 ON e1.content_id = e2.content_id
		WHERE e1.user_id = ? AND e2.user_id != ?
		GROUP BY e2.user_id
		ORDER BY common_items DESC, e2.user_id ASC
		LIMIT ?`, userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get similar users %q: %w", userID, err)
	}
	defer closeRows(rows)

	var peers []string
	for rows.Next() {
		var (
			peerID string
			common int
		)
		if err := rows.Scan(&peerID, &common); err != nil {
			return nil, fmt.Errorf("scan peer row: %w", err)
		}
		peers = append(peers, peerID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("peer rows: %w", err)
	}
	return peers, nil
}

// GetPeerEndorsements returns the like/complete content sets for the given
// peers in one query, preserving peerIDs order in the result so the engine's
// first-match short-circuit stays reproducible.
func (p *EngineDataProvider) GetPeerEndorsements(ctx context.Context, peerIDs []string) ([]recommend.PeerEndorsements, error) {
	if len(peerIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(peerIDs)), ",")
	args := make([]any, len(peerIDs))
	for i, id := range peerIDs {
		args[i] = id
	}

	rows, err := p.db.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT DISTINCT user_id, content_id
		FROM events
		WHERE user_id IN (%s) AND event_type IN ('like', 'complete')`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("get peer endorsements: %w", err)
	}
	defer closeRows(rows)

	byPeer := make(map[string]map[string]struct{}, len(peerIDs))
	for rows.Next() {
		var peerID, contentID string
		if err := rows.Scan(&peerID, &contentID); err != nil {
			return nil, fmt.Errorf("scan endorsement row: %w", err)
		}
		if byPeer[peerID] == nil {
			byPeer[peerID] = make(map[string]struct{})
		}
		byPeer[peerID][contentID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("endorsement rows: %w", err)
	}

	endorsements := make([]recommend.PeerEndorsements, len(peerIDs))
	for i, peerID := range peerIDs {
		endorsements[i] = recommend.PeerEndorsements{
			UserID:     peerID,
			ContentIDs: byPeer[peerID],
		}
	}
	return endorsements, nil
}

// LogRecommendations persists served items as one transaction. Either every
// entry commits or none does; a failure is counted and surfaced to the
// engine, which decides whether the request fails (strict) or degrades.
func (p *EngineDataProvider) LogRecommendations(ctx context.Context, entries []models.RecommendationLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := p.db.conn.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecommendationLogFailures.Inc()
		return fmt.Errorf("begin log transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, entry := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recommendation_logs (log_id, user_id, content_id, score, model_version, reason_tags, timestamp, clicked)
			VALUES (?, ?, ?, ?, ?, ?, ?, FALSE)`,
			entry.ID, entry.UserID, entry.ContentID, entry.Score,
			entry.ModelVersion, joinTags(entry.ReasonTags), entry.Timestamp)
		if err != nil {
			metrics.RecommendationLogFailures.Inc()
			return fmt.Errorf("insert log entry %q: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecommendationLogFailures.Inc()
		return fmt.Errorf("commit log transaction: %w", err)
	}
	return nil
}

// RecommendationLogsForUser returns logged entries for one user, newest
// first. Used by tests and offline inspection.
func (db *DB) RecommendationLogsForUser(ctx context.Context, userID string) ([]models.RecommendationLogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT log_id, user_id, content_id, score, model_version, reason_tags, timestamp, clicked
		FROM recommendation_logs
		WHERE user_id = ?
		ORDER BY timestamp DESC, log_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("get recommendation logs %q: %w", userID, err)
	}
	defer closeRows(rows)

	var entries []models.RecommendationLogEntry
	for rows.Next() {
		var (
			entry models.RecommendationLogEntry
			tags  string
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.ContentID, &entry.Score,
			&entry.ModelVersion, &tags, &entry.Timestamp, &entry.Clicked); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entry.ReasonTags = splitTags(tags)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("log rows: %w", err)
	}
	return entries, nil
}

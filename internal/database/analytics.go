// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/mwenger0/cursora/internal/models"
)

// GetAnalyticsOverview returns system-wide engagement aggregates.
func (db *DB) GetAnalyticsOverview(ctx context.Context) (*models.AnalyticsOverview, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	overview := &models.AnalyticsOverview{
		EventDistribution: make(map[string]int64),
		PopularContent7d:  []models.PopularContent{},
	}

	row := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM content),
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(DISTINCT user_id) FROM events WHERE timestamp > NOW() - INTERVAL 1 DAY)`)
	if err := row.Scan(&overview.TotalUsers, &overview.TotalContent,
		&overview.TotalEvents, &overview.ActiveUsers24h); err != nil {
		return nil, fmt.Errorf("analytics totals: %w", err)
	}

	if err := db.fillEventDistribution(ctx, overview); err != nil {
		return nil, err
	}
	if err := db.fillPopularContent(ctx, overview); err != nil {
		return nil, err
	}

	// Engagement rate: share of event-active users with at least one
	// completion.
	var rate sql.NullFloat64
	row = db.conn.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT CASE WHEN event_type = 'complete' THEN user_id END) * 1.0 /
		       NULLIF(COUNT(DISTINCT user_id), 0)
		FROM events`)
	if err := row.Scan(&rate); err != nil {
		return nil, fmt.Errorf("engagement rate: %w", err)
	}
	overview.EngagementRate = rate.Float64

	return overview, nil
}

func (db *DB) fillEventDistribution(ctx context.Context, overview *models.AnalyticsOverview) error {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT event_type, COUNT(*)
		FROM events
		GROUP BY event_type`)
	if err != nil {
		return fmt.Errorf("event distribution: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var (
			eventType string
			count     int64
		)
		if err := rows.Scan(&eventType, &count); err != nil {
			return fmt.Errorf("scan event distribution: %w", err)
		}
		overview.EventDistribution[eventType] = count
	}
	return rows.Err()
}

func (db *DB) fillPopularContent(ctx context.Context, overview *models.AnalyticsOverview) error {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.content_id, c.title, c.content_type, COUNT(*) AS interactions
		FROM events e
		JOIN content c ON e.content_id = c.content_id
		WHERE e.timestamp > NOW() - INTERVAL 7 DAY
		GROUP BY c.content_id, c.title, c.content_type
		ORDER BY interactions DESC, c.content_id ASC
		LIMIT 10`)
	if err != nil {
		return fmt.Errorf("popular content: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var (
			item        models.PopularContent
			contentType string
		)
		if err := rows.Scan(&item.ContentID, &item.Title, &contentType, &item.EventCount); err != nil {
			return fmt.Errorf("scan popular content: %w", err)
		}
		item.ContentType = models.ContentType(contentType)
		overview.PopularContent7d = append(overview.PopularContent7d, item)
	}
	return rows.Err()
}

// GetUserAnalytics returns one learner's engagement summary, or
// ErrUserNotFound when the user id is absent.
func (db *DB) GetUserAnalytics(ctx context.Context, userID string) (*models.UserAnalytics, error) {
	if _, err := db.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	analytics := &models.UserAnalytics{
		UserID:          userID,
		PreferredTopics: []string{},
		ActivityTrend:   []models.DailyActivity{},
	}

	var avgQuiz sql.NullFloat64
	row := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM events WHERE user_id = ?),
			(SELECT COUNT(DISTINCT content_id) FROM events WHERE user_id = ? AND event_type = 'view'),
			(SELECT COUNT(DISTINCT content_id) FROM events WHERE user_id = ? AND event_type = 'complete'),
			(SELECT AVG(value) FROM events WHERE user_id = ? AND event_type = 'quiz_score')`,
		userID, userID, userID, userID)
	if err := row.Scan(&analytics.TotalEvents, &analytics.ContentViewed,
		&analytics.ContentDone, &avgQuiz); err != nil {
		return nil, fmt.Errorf("user analytics totals: %w", err)
	}
	if avgQuiz.Valid {
		analytics.AvgQuizScore = &avgQuiz.Float64
	}

	topics, err := db.preferredTopics(ctx, userID)
	if err != nil {
		return nil, err
	}
	analytics.PreferredTopics = topics

	trend, err := db.activityTrend(ctx, userID)
	if err != nil {
		return nil, err
	}
	analytics.ActivityTrend = trend

	return analytics, nil
}

// preferredTopics aggregates per-tag interaction counts over the user's
// events and returns the top five tags.
func (db *DB) preferredTopics(ctx context.Context, userID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.tags, COUNT(*) AS interactions
		FROM events e
		JOIN content c ON e.content_id = c.content_id
		WHERE e.user_id = ?
		GROUP BY c.tags
		ORDER BY interactions DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("preferred topics: %w", err)
	}
	defer closeRows(rows)

	tagCounts := make(map[string]int64)
	for rows.Next() {
		var (
			tags  sql.NullString
			count int64
		)
		if err := rows.Scan(&tags, &count); err != nil {
			return nil, fmt.Errorf("scan topic row: %w", err)
		}
		for _, tag := range splitTags(tags.String) {
			tagCounts[tag] += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("topic rows: %w", err)
	}

	topics := make([]string, 0, len(tagCounts))
	for tag := range tagCounts {
		topics = append(topics, tag)
	}
	sort.Slice(topics, func(i, j int) bool {
		if tagCounts[topics[i]] != tagCounts[topics[j]] {
			return tagCounts[topics[i]] > tagCounts[topics[j]]
		}
		return topics[i] < topics[j]
	})
	if len(topics) > 5 {
		topics = topics[:5]
	}
	return topics, nil
}

// activityTrend returns per-day event counts over the last seven days.
func (db *DB) activityTrend(ctx context.Context, userID string) ([]models.DailyActivity, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT CAST(CAST(timestamp AS DATE) AS VARCHAR) AS day, COUNT(*)
		FROM events
		WHERE user_id = ? AND timestamp > NOW() - INTERVAL 7 DAY
		GROUP BY day
		ORDER BY day`, userID)
	if err != nil {
		return nil, fmt.Errorf("activity trend: %w", err)
	}
	defer closeRows(rows)

	trend := []models.DailyActivity{}
	for rows.Next() {
		var day models.DailyActivity
		if err := rows.Scan(&day.Date, &day.Events); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		trend = append(trend, day)
	}
	return trend, rows.Err()
}

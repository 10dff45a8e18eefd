// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core tables and indexes.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// getTableCreationQueries returns the schema DDL in execution order.
//
// Tags and interests are stored comma-joined; reason_tags likewise. Events
// are append-only. popularity_score is derived (count(events)*0.01) and
// recomputed inside the event-ingestion transaction.
func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id     VARCHAR PRIMARY KEY,
			name        VARCHAR NOT NULL,
			email       VARCHAR,
			cohort_tag  VARCHAR,
			skill_level VARCHAR,
			interests   VARCHAR,
			created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_active TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS content (
			content_id       VARCHAR PRIMARY KEY,
			title            VARCHAR NOT NULL,
			description      VARCHAR,
			content_type     VARCHAR,
			difficulty       VARCHAR,
			tags             VARCHAR,
			duration_minutes INTEGER,
			popularity_score DOUBLE DEFAULT 0.0,
			created_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			event_id   VARCHAR PRIMARY KEY,
			user_id    VARCHAR NOT NULL,
			content_id VARCHAR NOT NULL,
			event_type VARCHAR NOT NULL,
			value      DOUBLE,
			session_id VARCHAR,
			timestamp  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS recommendation_logs (
			log_id        VARCHAR PRIMARY KEY,
			user_id       VARCHAR NOT NULL,
			content_id    VARCHAR NOT NULL,
			score         DOUBLE,
			model_version VARCHAR,
			reason_tags   VARCHAR,
			timestamp     TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			clicked       BOOLEAN DEFAULT FALSE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_user ON events(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_content ON events(content_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_recs_user ON recommendation_logs(user_id)`,
	}
}

// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package models

import (
	"time"
)

// Recommendation is a single scored catalog item as served to clients.
//
// ReasonTags explain the score in priority order: up to two matched
// interest tags first, then "popular_with_similar_users" when a peer
// endorsed the item, or "recommended_for_you" when nothing else applies.
// The list always holds between one and three entries.
type Recommendation struct {
	ContentID   string      `json:"content_id"`
	Title       string      `json:"title"`
	ContentType ContentType `json:"content_type"`
	Difficulty  Difficulty  `json:"difficulty"`
	Score       float64     `json:"score"`
	ReasonTags  []string    `json:"reason_tags"`
}

// RecommendationResponse is the payload of a recommendation request.
type RecommendationResponse struct {
	UserID          string           `json:"user_id"`
	Recommendations []Recommendation `json:"recommendations"`
	ModelVersion    string           `json:"model_version"`
	Strategy        string           `json:"strategy"`
	GeneratedAt     time.Time        `json:"generated_at"`
	LatencyMs       float64          `json:"latency_ms"`
}

// EventResponse acknowledges an ingested engagement event.
type EventResponse struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	ContentID string    `json:"content_id"`
	EventType EventType `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// RecentEvent is one row of the recent-activity feed, joined with the
// learner name and content title for display.
type RecentEvent struct {
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	ContentID    string    `json:"content_id"`
	ContentTitle string    `json:"content_title"`
	EventType    EventType `json:"event_type"`
	Timestamp    time.Time `json:"timestamp"`
}

// PopularContent is a catalog item ranked by recent engagement.
type PopularContent struct {
	ContentID   string      `json:"content_id"`
	Title       string      `json:"title"`
	ContentType ContentType `json:"content_type"`
	EventCount  int64       `json:"event_count"`
}

// AnalyticsOverview summarizes system-wide engagement.
type AnalyticsOverview struct {
	TotalUsers        int64            `json:"total_users"`
	TotalContent      int64            `json:"total_content"`
	TotalEvents       int64            `json:"total_events"`
	ActiveUsers24h    int64            `json:"active_users_24h"`
	EventDistribution map[string]int64 `json:"event_distribution"`
	PopularContent7d  []PopularContent `json:"popular_content_7d"`
	EngagementRate    float64          `json:"engagement_rate"`
}

// DailyActivity is one day of a user's activity trend.
type DailyActivity struct {
	Date   string `json:"date"`
	Events int64  `json:"events"`
}

// UserAnalytics summarizes one learner's engagement.
type UserAnalytics struct {
	UserID          string          `json:"user_id"`
	TotalEvents     int64           `json:"total_events"`
	ContentViewed   int64           `json:"content_viewed"`
	ContentDone     int64           `json:"content_completed"`
	AvgQuizScore    *float64        `json:"avg_quiz_score,omitempty"`
	PreferredTopics []string        `json:"preferred_topics"`
	ActivityTrend   []DailyActivity `json:"activity_trend_7d"`
}

// HealthStatus is the payload of the health endpoint.
type HealthStatus struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	TotalUsers   int64  `json:"total_users"`
	TotalContent int64  `json:"total_content"`
	TotalEvents  int64  `json:"total_events"`
}

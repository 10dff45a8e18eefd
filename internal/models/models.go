// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

// Package models defines the data structures shared across Cursora:
// learner profiles, catalog items, engagement events, and recommendation
// log entries, plus the API response shapes built from them.
package models

import (
	"time"
)

// SkillLevel is a learner's self-reported proficiency.
type SkillLevel string

// Valid skill levels.
const (
	SkillNovice       SkillLevel = "novice"
	SkillIntermediate SkillLevel = "intermediate"
	SkillExpert       SkillLevel = "expert"
)

// Valid reports whether the skill level is one of the known values.
// Unknown levels are tolerated throughout scoring (they fall back to a
// neutral difficulty factor) but rejected at write boundaries.
func (s SkillLevel) Valid() bool {
	switch s {
	case SkillNovice, SkillIntermediate, SkillExpert:
		return true
	}
	return false
}

// Difficulty is a catalog item's difficulty rating.
type Difficulty string

// Valid content difficulties.
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether the difficulty is one of the known values.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// ContentType is the kind of learning material a catalog item holds.
type ContentType string

// Valid content types.
const (
	ContentVideo    ContentType = "video"
	ContentArticle  ContentType = "article"
	ContentCourse   ContentType = "course"
	ContentTutorial ContentType = "tutorial"
	ContentQuiz     ContentType = "quiz"
	ContentProject  ContentType = "project"
)

// Valid reports whether the content type is one of the known values.
func (c ContentType) Valid() bool {
	switch c {
	case ContentVideo, ContentArticle, ContentCourse, ContentTutorial, ContentQuiz, ContentProject:
		return true
	}
	return false
}

// EventType is the kind of engagement a learner had with a catalog item.
type EventType string

// Valid event types.
const (
	EventView      EventType = "view"
	EventComplete  EventType = "complete"
	EventLike      EventType = "like"
	EventQuizScore EventType = "quiz_score"
	EventBookmark  EventType = "bookmark"
	EventShare     EventType = "share"
)

// Valid reports whether the event type is one of the known values.
func (e EventType) Valid() bool {
	switch e {
	case EventView, EventComplete, EventLike, EventQuizScore, EventBookmark, EventShare:
		return true
	}
	return false
}

// User is a learner profile.
//
// Interests are free-form topic tags matched against content tags during
// scoring. LastActive is bumped on every ingested event.
type User struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	SkillLevel SkillLevel `json:"skill_level"`
	Interests  []string   `json:"interests"`
	CohortTag  string     `json:"cohort_tag,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastActive *time.Time `json:"last_active,omitempty"`
}

// Content is a catalog item available for recommendation.
//
// PopularityScore is derived, not authored: it is recomputed as
// count(events)*0.01 inside the event-ingestion transaction, so a brand-new
// item starts at zero and grows with engagement.
type Content struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	ContentType     ContentType `json:"content_type"`
	Difficulty      Difficulty  `json:"difficulty"`
	Tags            []string    `json:"tags"`
	DurationMinutes int         `json:"duration_minutes"`
	PopularityScore float64     `json:"popularity_score"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Event is a single append-only engagement record.
//
// Value is only meaningful for quiz_score events (the score achieved);
// it is nil for every other event type.
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ContentID string    `json:"content_id"`
	EventType EventType `json:"event_type"`
	Value     *float64  `json:"value,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RecommendationLogEntry records one served recommendation for offline
// analysis. Clicked defaults to false and is never written by the engine;
// it exists for later attribution updates.
type RecommendationLogEntry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ContentID    string    `json:"content_id"`
	Score        float64   `json:"score"`
	ModelVersion string    `json:"model_version"`
	ReasonTags   []string  `json:"reason_tags"`
	Timestamp    time.Time `json:"timestamp"`
	Clicked      bool      `json:"clicked"`
}

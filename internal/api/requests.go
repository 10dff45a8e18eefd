// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

// HTTP request validation structs with go-playground/validator tags.
// These structs are used to validate incoming API request parameters
// before processing.

package api

// RecommendationsRequest represents the validated query parameters for
// GET /recommendations/user/{user_id}.
//
// Fields:
//   - K: Number of recommendations to return (1-50)
//   - Strategy: Scoring strategy (content_based, collaborative, hybrid)
type RecommendationsRequest struct {
	K        int    `validate:"min=1,max=50"`
	Strategy string `validate:"omitempty,oneof=content_based collaborative hybrid"`
}

// IngestEventRequest represents the request body for POST /events.
//
// Fields:
//   - UserID: Required ID of the user who produced the event
//   - ContentID: Required ID of the content the event refers to
//   - EventType: Required event kind
//   - Value: Optional numeric payload (quiz score percentage, 0-100)
//   - SessionID: Optional client session identifier
type IngestEventRequest struct {
	UserID    string   `json:"user_id" validate:"required"`
	ContentID string   `json:"content_id" validate:"required"`
	EventType string   `json:"event_type" validate:"required,oneof=view complete like quiz_score bookmark share"`
	Value     *float64 `json:"value" validate:"omitempty,gte=0,lte=100"`
	SessionID string   `json:"session_id"`
}

// ListRequest represents validated pagination parameters for list endpoints.
type ListRequest struct {
	Limit  int `validate:"min=1,max=500"`
	Offset int `validate:"min=0,max=1000000"`
}

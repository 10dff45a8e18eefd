// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mwenger0/cursora/internal/database"
)

// AnalyticsOverview returns platform-wide engagement analytics: totals,
// 24h active users, the event type distribution, the 7-day popularity
// leaderboard and the completion engagement rate.
func (h *Handler) AnalyticsOverview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	overview, err := h.db.GetAnalyticsOverview(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(overview)
}

// UserAnalytics returns per-user engagement analytics.
func (h *Handler) UserAnalytics(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("user_id is required")
		return
	}

	analytics, err := h.db.GetUserAnalytics(r.Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			rw.NotFound("user not found: " + sanitizeLogValue(userID))
			return
		}
		rw.DatabaseError(err)
		return
	}

	rw.Success(analytics)
}

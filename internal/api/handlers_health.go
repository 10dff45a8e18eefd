// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package api

import (
	"net/http"

	"github.com/mwenger0/cursora/internal/logging"
	"github.com/mwenger0/cursora/internal/models"
)

// Health reports service and database health plus catalog totals.
// The endpoint stays 200 with status "degraded" when the database is
// reachable but counting fails, and 503 when the database is down.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := models.HealthStatus{
		Status:   "healthy",
		Database: "connected",
	}

	if err := h.db.Ping(r.Context()); err != nil {
		logging.Error().Err(err).Msg("health check: database unreachable")
		status.Status = "unhealthy"
		status.Database = "disconnected"
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "database unreachable", status)
		return
	}

	users, content, events, err := h.db.Counts(r.Context())
	if err != nil {
		logging.Warn().Err(err).Msg("health check: counts query failed")
		status.Status = "degraded"
	} else {
		status.TotalUsers = users
		status.TotalContent = content
		status.TotalEvents = events
	}

	rw.Success(status)
}

// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/mwenger0/cursora/internal/database"
	"github.com/mwenger0/cursora/internal/models"
)

// IngestEvent records a single engagement event.
//
// The event is persisted together with its side effects (user last_active
// bump and content popularity recompute) in one transaction; the response
// reflects the stored event.
func (h *Handler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req IngestEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	event := &models.Event{
		UserID:    req.UserID,
		ContentID: req.ContentID,
		EventType: models.EventType(req.EventType),
		Value:     req.Value,
		SessionID: req.SessionID,
	}

	stored, err := h.db.InsertEvent(r.Context(), event)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrUserNotFound):
			rw.NotFound("user not found: " + sanitizeLogValue(req.UserID))
		case errors.Is(err, database.ErrContentNotFound):
			rw.NotFound("content not found: " + sanitizeLogValue(req.ContentID))
		default:
			rw.DatabaseError(err)
		}
		return
	}

	if h.wsHub != nil {
		h.wsHub.BroadcastEvent(stored)
	}

	rw.Created(models.EventResponse{
		EventID:   stored.ID,
		UserID:    stored.UserID,
		ContentID: stored.ContentID,
		EventType: stored.EventType,
		Timestamp: stored.Timestamp,
	})
}

// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package api

import (
	"net/http"

	"github.com/mwenger0/cursora/internal/database"
	"github.com/mwenger0/cursora/internal/logging"
	ws "github.com/mwenger0/cursora/internal/websocket"
)

const defaultListLimit = 100

// Users lists learners ordered by event volume.
//
// Query parameters:
//   - limit: page size (1-500, default 100)
//   - offset: page offset
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := ListRequest{
		Limit:  getIntParam(r, "limit", defaultListLimit),
		Offset: getIntParam(r, "offset", 0),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	users, err := h.db.ListUsers(r.Context(), req.Limit, req.Offset)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithPagination(users, &PaginationMeta{
		Count:   len(users),
		Offset:  req.Offset,
		Limit:   req.Limit,
		HasMore: len(users) == req.Limit,
	})
}

// Content lists catalog items ordered by popularity.
//
// Query parameters:
//   - limit: page size (1-500, default 100)
//   - offset: page offset
//   - difficulty: optional difficulty filter
//   - content_type: optional content type filter
func (h *Handler) Content(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := ListRequest{
		Limit:  getIntParam(r, "limit", defaultListLimit),
		Offset: getIntParam(r, "offset", 0),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	filter := database.ContentFilter{
		Difficulty:  r.URL.Query().Get("difficulty"),
		ContentType: r.URL.Query().Get("content_type"),
	}

	items, err := h.db.ListContent(r.Context(), req.Limit, req.Offset, filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithPagination(items, &PaginationMeta{
		Count:   len(items),
		Offset:  req.Offset,
		Limit:   req.Limit,
		HasMore: len(items) == req.Limit,
	})
}

// RecentEvents returns the most recent engagement events joined with
// learner names and content titles for display.
func (h *Handler) RecentEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit := getIntParam(r, "limit", 50)
	req := ListRequest{Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	events, err := h.db.RecentEvents(r.Context(), limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(events)
}

// WebSocket upgrades the connection and registers the client with the hub
// for real-time recommendation and event notifications.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket service unavailable")
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}

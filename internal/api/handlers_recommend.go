// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mwenger0/cursora/internal/database"
	"github.com/mwenger0/cursora/internal/logging"
	"github.com/mwenger0/cursora/internal/metrics"
	"github.com/mwenger0/cursora/internal/models"
	"github.com/mwenger0/cursora/internal/recommend"
)

// Recommendations serves a ranked recommendation list for a user.
//
// Query parameters:
//   - k: number of items to return (1-50, default 10)
//   - strategy: content_based, collaborative or hybrid (default hybrid)
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("user_id is required")
		return
	}

	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			rw.BadRequest("k must be an integer")
			return
		}
		k = parsed
	}

	strategyParam := r.URL.Query().Get("strategy")
	strategy, err := recommend.ParseStrategy(strategyParam)
	if err != nil {
		rw.BadRequest("unknown strategy: " + sanitizeLogValue(strategyParam))
		return
	}

	if k != 0 {
		req := RecommendationsRequest{K: k, Strategy: string(strategy)}
		if apiErr := validateRequest(&req); apiErr != nil {
			rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
			return
		}
	}

	ctx := r.Context()
	if h.config != nil && h.config.Recommend.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Recommend.QueryTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := h.engine.Recommend(ctx, recommend.Request{
		UserID:   userID,
		K:        k,
		Strategy: strategy,
	})
	if err != nil {
		switch {
		case errors.Is(err, database.ErrUserNotFound):
			rw.NotFound("user not found: " + sanitizeLogValue(userID))
		case errors.Is(err, recommend.ErrLoggingFailed):
			logging.Error().Err(err).Str("user_id", userID).Msg("recommendation logging failed")
			rw.Error(http.StatusInternalServerError, ErrCodeLoggingFailed, "failed to persist recommendations")
		default:
			rw.DatabaseError(err)
		}
		return
	}

	metrics.RecordRecommendation(string(result.Strategy), len(result.Items), time.Since(start))

	response := toRecommendationResponse(result)
	if h.wsHub != nil {
		h.wsHub.BroadcastRecommendation(response)
	}

	rw.Success(response)
}

// toRecommendationResponse converts an engine result into the API shape.
func toRecommendationResponse(result *recommend.Response) *models.RecommendationResponse {
	items := make([]models.Recommendation, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, models.Recommendation{
			ContentID:   item.Content.ID,
			Title:       item.Content.Title,
			ContentType: item.Content.ContentType,
			Difficulty:  item.Content.Difficulty,
			Score:       item.Score,
			ReasonTags:  item.ReasonTags,
		})
	}

	return &models.RecommendationResponse{
		UserID:          result.UserID,
		Recommendations: items,
		ModelVersion:    result.ModelVersion,
		Strategy:        string(result.Strategy),
		GeneratedAt:     time.Now().UTC(),
		LatencyMs:       result.LatencyMs,
	}
}

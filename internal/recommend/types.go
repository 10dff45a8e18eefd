// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

// Package recommend implements the learning-content recommendation engine:
// feature extraction, weighted scoring, peer-affinity lookup, ranking, and
// synchronous recommendation logging.
//
// The package depends on the rest of the application only through the
// DataProvider interface, which the database layer implements. This keeps
// the scoring logic testable with in-memory fixtures and avoids circular
// imports.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwenger0/cursora/internal/models"
)

// ModelVersion tags the scoring logic revision. It is stamped verbatim on
// every response and every recommendation log entry.
const ModelVersion = "v2.0.0"

// Strategy selects which scoring signals participate in a request.
//
// content_based skips the peer-affinity step. collaborative and hybrid both
// run every step including peer affinity; the content signals are never
// gated off for collaborative, so "collaborative" is not purely
// collaborative. That asymmetry is intentional and kept as-is.
type Strategy string

// Supported strategies.
const (
	StrategyContentBased  Strategy = "content_based"
	StrategyCollaborative Strategy = "collaborative"
	StrategyHybrid        Strategy = "hybrid"
)

// ErrUnknownStrategy is returned by ParseStrategy for unrecognized input.
var ErrUnknownStrategy = errors.New("unknown strategy")

// ParseStrategy parses a strategy string. Empty input selects hybrid.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyContentBased, StrategyCollaborative, StrategyHybrid:
		return Strategy(s), nil
	case "":
		return StrategyHybrid, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// String returns the strategy as a plain string.
func (s Strategy) String() string { return string(s) }

// UsesPeerSignal reports whether the peer-affinity step runs.
func (s Strategy) UsesPeerSignal() bool {
	return s == StrategyCollaborative || s == StrategyHybrid
}

// Request is a recommendation request.
type Request struct {
	// UserID identifies the learner. Must exist in the catalog store.
	UserID string

	// K is the number of items requested. Zero applies the configured
	// default; values are clamped to [1, MaxK].
	K int

	// Strategy selects the signal mix. Zero value means hybrid.
	Strategy Strategy
}

// ScoredContent is one scored, rank-ordered candidate.
type ScoredContent struct {
	Content    models.Content
	Score      float64
	ReasonTags []string
}

// Response is the result of a recommendation request.
type Response struct {
	UserID   string
	Items    []ScoredContent
	Strategy Strategy

	// ModelVersion is the scoring revision that produced this response.
	ModelVersion string

	// LatencyMs is the end-to-end pipeline time in milliseconds.
	LatencyMs float64
}

// History is a user's engagement history: content id -> event type -> count.
type History map[string]map[models.EventType]int

// Completed reports whether the user has a complete event on the content.
// Completed items are excluded from scoring entirely.
func (h History) Completed(contentID string) bool {
	events, ok := h[contentID]
	if !ok {
		return false
	}
	return events[models.EventComplete] > 0
}

// PeerEndorsements holds, for one peer, the set of content ids the peer has
// liked or completed. The engine receives these as an ordered slice (same
// order as the peer list) so the first-match short-circuit is reproducible.
type PeerEndorsements struct {
	UserID     string
	ContentIDs map[string]struct{}
}

// Endorses reports whether this peer liked or completed the content.
func (p PeerEndorsements) Endorses(contentID string) bool {
	_, ok := p.ContentIDs[contentID]
	return ok
}

// DataProvider is the engine's view of the catalog store.
// The database layer implements it.
type DataProvider interface {
	// GetUserProfile returns the learner profile.
	// Returns an error wrapping the store's not-found sentinel when the
	// user does not exist.
	GetUserProfile(ctx context.Context, userID string) (*models.User, error)

	// GetUserHistory returns the user's engagement history grouped by
	// content and event type. An empty history is not an error.
	GetUserHistory(ctx context.Context, userID string) (History, error)

	// GetCatalog returns every catalog item.
	GetCatalog(ctx context.Context) ([]models.Content, error)

	// GetSimilarUsers returns up to limit peer user ids ordered by
	// shared-content count descending, user id ascending on ties. The
	// requesting user is excluded. Empty when the user has no events.
	GetSimilarUsers(ctx context.Context, userID string, limit int) ([]string, error)

	// GetPeerEndorsements returns the like/complete content sets for the
	// given peers, in the same order as peerIDs.
	GetPeerEndorsements(ctx context.Context, peerIDs []string) ([]PeerEndorsements, error)

	// LogRecommendations persists the served items as a single atomic
	// batch. Either every entry is written or none is.
	LogRecommendations(ctx context.Context, entries []models.RecommendationLogEntry) error
}

// ErrLoggingFailed wraps a failed recommendation log write. Under strict
// logging the whole request fails with this error.
var ErrLoggingFailed = errors.New("recommendation logging failed")

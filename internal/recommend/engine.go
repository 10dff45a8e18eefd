// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mwenger0/cursora/internal/metrics"
	"github.com/mwenger0/cursora/internal/models"
)

// Reason tags attached to scored items.
const (
	// ReasonPopularWithPeers marks items endorsed by a similar user.
	ReasonPopularWithPeers = "popular_with_similar_users"

	// ReasonFallback is used when no scoring signal produced a tag.
	ReasonFallback = "recommended_for_you"
)

// Engine runs the recommendation pipeline: fetch profile and history, score
// every non-completed catalog item, rank, log, respond. It is safe for
// concurrent use; the only shared mutable state is the jitter RNG, which is
// mutex-guarded.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	provider DataProvider

	// rng produces the exploration jitter. Guarded by rngMu because
	// rand.Rand is not safe for concurrent use.
	rng   *rand.Rand
	rngMu sync.Mutex

	// now is the clock; replaced in tests to pin recency decay.
	now func() time.Time
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, provider DataProvider, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("data provider is required")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		config:   cfg.Clone(),
		logger:   logger.With().Str("component", "recommend").Logger(),
		provider: provider,
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // exploration jitter, not security-sensitive
		now:      time.Now,
	}, nil
}

// Recommend runs the full pipeline for one request. The returned items are
// already durably logged when the call succeeds (strict mode); under lenient
// logging a failed log write is reported and the response served anyway.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	req = e.prepareRequest(req)

	logger := e.logger.With().
		Str("user_id", req.UserID).
		Str("strategy", req.Strategy.String()).
		Int("k", req.K).
		Logger()
	logger.Debug().Msg("processing recommendation request")

	user, err := e.provider.GetUserProfile(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}

	history, err := e.provider.GetUserHistory(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user history: %w", err)
	}

	catalog, err := e.provider.GetCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("get catalog: %w", err)
	}

	endorsements, err := e.fetchPeerEndorsements(ctx, req)
	if err != nil {
		return nil, err
	}

	scored := e.scoreCandidates(user, catalog, history, endorsements, req.Strategy)
	metrics.CandidatesScored.Observe(float64(len(scored)))

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > req.K {
		scored = scored[:req.K]
	}

	if err := e.logServed(ctx, req.UserID, scored); err != nil {
		if e.config.StrictLogging {
			return nil, err
		}
		logger.Warn().Err(err).Msg("serving without audit trail")
	}

	resp := &Response{
		UserID:       req.UserID,
		Items:        scored,
		Strategy:     req.Strategy,
		ModelVersion: ModelVersion,
		LatencyMs:    float64(time.Since(start).Microseconds()) / 1000.0,
	}

	logger.Debug().
		Int("candidates", len(catalog)).
		Int("returned", len(scored)).
		Float64("latency_ms", resp.LatencyMs).
		Msg("recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults and clamps K to [1, MaxK].
func (e *Engine) prepareRequest(req Request) Request {
	if req.Strategy == "" {
		req.Strategy = StrategyHybrid
	}
	if req.K <= 0 {
		req.K = e.config.DefaultK
	}
	if req.K > e.config.MaxK {
		req.K = e.config.MaxK
	}
	return req
}

// fetchPeerEndorsements resolves the ordered peer list and their endorsed
// content sets. It returns nil when the strategy carries no peer signal or
// the user has no peers yet.
func (e *Engine) fetchPeerEndorsements(ctx context.Context, req Request) ([]PeerEndorsements, error) {
	if !req.Strategy.UsesPeerSignal() {
		return nil, nil
	}

	peers, err := e.provider.GetSimilarUsers(ctx, req.UserID, e.config.PeerLimit)
	if err != nil {
		return nil, fmt.Errorf("get similar users: %w", err)
	}
	if len(peers) == 0 {
		return nil, nil
	}

	endorsements, err := e.provider.GetPeerEndorsements(ctx, peers)
	if err != nil {
		return nil, fmt.Errorf("get peer endorsements: %w", err)
	}
	return endorsements, nil
}

// scoreCandidates scores every catalog item the user has not completed.
func (e *Engine) scoreCandidates(
	user *models.User,
	catalog []models.Content,
	history History,
	endorsements []PeerEndorsements,
	strategy Strategy,
) []ScoredContent {
	now := e.now()
	scored := make([]ScoredContent, 0, len(catalog))

	for _, content := range catalog {
		if history.Completed(content.ID) {
			continue
		}
		score, reasons := e.scoreCandidate(user, content, endorsements, strategy, now)
		scored = append(scored, ScoredContent{
			Content:    content,
			Score:      score,
			ReasonTags: reasons,
		})
	}

	return scored
}

// scoreCandidate computes the weighted score and reason tags for one item.
// Contribution order matters: the recency decay multiplies only the summed
// contributions, the jitter lands after it, and the clamp comes last.
func (e *Engine) scoreCandidate(
	user *models.User,
	content models.Content,
	endorsements []PeerEndorsements,
	strategy Strategy,
	now time.Time,
) (float64, []string) {
	score := 0.0
	var reasons []string

	overlap, matched := TagOverlap(user.Interests, content.Tags)
	if overlap > 0 {
		if overlap > e.config.MaxTagOverlap {
			overlap = e.config.MaxTagOverlap
		}
		score += float64(overlap) * e.config.Weights.TagOverlap
		reasons = append(reasons, matched...)
	}

	score += DifficultyFactor(user.SkillLevel, content.Difficulty) * e.config.Weights.Difficulty
	score += content.PopularityScore * e.config.Weights.Popularity

	if strategy.UsesPeerSignal() && peerEndorsed(endorsements, content.ID) {
		score += e.config.Weights.PeerAffinity
		reasons = append(reasons, ReasonPopularWithPeers)
	}

	recency := 1.0 - AgeDays(content.CreatedAt, now)/e.config.RecencyHorizonDays
	if recency < e.config.RecencyFloor {
		recency = e.config.RecencyFloor
	}
	score *= recency

	score += e.jitter()
	if score > 1.0 {
		score = 1.0
	}

	if len(reasons) == 0 {
		reasons = []string{ReasonFallback}
	}
	if len(reasons) > e.config.MaxReasonTags {
		reasons = reasons[:e.config.MaxReasonTags]
	}

	return score, reasons
}

// peerEndorsed walks the ordered peer list and stops at the first peer with
// a like or complete on the content. The first-match ordering is part of the
// contract: it keeps results reproducible for a fixed peer list even though
// the matching peer is not necessarily the strongest one.
func peerEndorsed(endorsements []PeerEndorsements, contentID string) bool {
	for _, peer := range endorsements {
		if peer.Endorses(contentID) {
			return true
		}
	}
	return false
}

// jitter draws one exploration noise sample in [0, JitterMax).
func (e *Engine) jitter() float64 {
	if e.config.JitterMax == 0 {
		return 0
	}
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Float64() * e.config.JitterMax
}

// logServed persists the served items as one atomic batch before the
// response is returned. A zero-item response writes nothing.
func (e *Engine) logServed(ctx context.Context, userID string, items []ScoredContent) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now()
	entries := make([]models.RecommendationLogEntry, len(items))
	for i, item := range items {
		entries[i] = models.RecommendationLogEntry{
			ID:           uuid.New().String(),
			UserID:       userID,
			ContentID:    item.Content.ID,
			Score:        item.Score,
			ModelVersion: ModelVersion,
			ReasonTags:   item.ReasonTags,
			Timestamp:    now,
		}
	}

	if err := e.provider.LogRecommendations(ctx, entries); err != nil {
		return fmt.Errorf("%w: %v", ErrLoggingFailed, err)
	}
	return nil
}

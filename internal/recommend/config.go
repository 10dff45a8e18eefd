// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package recommend

import (
	"fmt"
)

// Weights defines the contribution of each scoring signal. Unlike typical
// ensemble weights these are NOT normalized: each signal adds its weighted
// contribution directly and the total is clamped to 1.0 at the end.
type Weights struct {
	// TagOverlap is applied per overlapping tag (capped by MaxTagOverlap).
	TagOverlap float64 `json:"tag_overlap"`

	// Difficulty is applied to the skill/difficulty lookup factor.
	Difficulty float64 `json:"difficulty"`

	// Popularity is applied to the content popularity score.
	Popularity float64 `json:"popularity"`

	// PeerAffinity is the flat bonus added when a peer endorsed the item.
	PeerAffinity float64 `json:"peer_affinity"`
}

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines the scoring signal contributions.
	Weights Weights `json:"weights"`

	// MaxTagOverlap caps how many overlapping tags count toward the
	// tag-overlap contribution.
	MaxTagOverlap int `json:"max_tag_overlap"`

	// MaxReasonTags caps the reason tags attached to one item.
	MaxReasonTags int `json:"max_reason_tags"`

	// JitterMax bounds the uniform exploration noise [0, JitterMax).
	JitterMax float64 `json:"jitter_max"`

	// RecencyFloor is the lowest multiplier recency decay can apply.
	RecencyFloor float64 `json:"recency_floor"`

	// RecencyHorizonDays is the age at which decay would reach zero
	// without the floor.
	RecencyHorizonDays float64 `json:"recency_horizon_days"`

	// PeerLimit is the number of similar users consulted.
	PeerLimit int `json:"peer_limit"`

	// DefaultK is the result count when the request does not specify one.
	DefaultK int `json:"default_k"`

	// MaxK is the hard upper bound on the result count.
	MaxK int `json:"max_k"`

	// StrictLogging fails the request when the log write fails. When
	// false the response is served without a guaranteed audit trail.
	StrictLogging bool `json:"strict_logging"`

	// Seed fixes the jitter RNG for reproducible tests.
	// Zero seeds from the current time.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns the production configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			TagOverlap:   0.3,
			Difficulty:   0.2,
			Popularity:   0.15,
			PeerAffinity: 0.2,
		},
		MaxTagOverlap:      3,
		MaxReasonTags:      3,
		JitterMax:          0.1,
		RecencyFloor:       0.5,
		RecencyHorizonDays: 365,
		PeerLimit:          10,
		DefaultK:           10,
		MaxK:               50,
		StrictLogging:      true,
		Seed:               0,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Weights.TagOverlap < 0 || c.Weights.Difficulty < 0 ||
		c.Weights.Popularity < 0 || c.Weights.PeerAffinity < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", c.Weights)
	}
	if c.MaxTagOverlap < 1 {
		return fmt.Errorf("max_tag_overlap must be at least 1, got %d", c.MaxTagOverlap)
	}
	if c.MaxReasonTags < 1 {
		return fmt.Errorf("max_reason_tags must be at least 1, got %d", c.MaxReasonTags)
	}
	if c.JitterMax < 0 {
		return fmt.Errorf("jitter_max must be non-negative, got %f", c.JitterMax)
	}
	if c.RecencyFloor < 0 || c.RecencyFloor > 1 {
		return fmt.Errorf("recency_floor must be in [0, 1], got %f", c.RecencyFloor)
	}
	if c.RecencyHorizonDays <= 0 {
		return fmt.Errorf("recency_horizon_days must be positive, got %f", c.RecencyHorizonDays)
	}
	if c.PeerLimit < 1 {
		return fmt.Errorf("peer_limit must be at least 1, got %d", c.PeerLimit)
	}
	if c.DefaultK < 1 || c.MaxK < 1 || c.DefaultK > c.MaxK {
		return fmt.Errorf("invalid k bounds: default_k=%d max_k=%d", c.DefaultK, c.MaxK)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

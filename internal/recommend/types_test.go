// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package recommend

import (
	"errors"
	"testing"

	"github.com/mwenger0/cursora/internal/models"
)

func TestParseStrategy(t *testing.T) {
	for _, valid := range []string{"content_based", "collaborative", "hybrid"} {
		got, err := ParseStrategy(valid)
		if err != nil {
			t.Errorf("ParseStrategy(%q) returned error: %v", valid, err)
		}
		if got.String() != valid {
			t.Errorf("ParseStrategy(%q) = %q", valid, got)
		}
	}

	got, err := ParseStrategy("")
	if err != nil || got != StrategyHybrid {
		t.Errorf("ParseStrategy(\"\") = %q, %v; want hybrid default", got, err)
	}

	if _, err := ParseStrategy("magic"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("ParseStrategy(\"magic\") err = %v, want ErrUnknownStrategy", err)
	}
}

func TestStrategyUsesPeerSignal(t *testing.T) {
	if StrategyContentBased.UsesPeerSignal() {
		t.Error("content_based must not use the peer signal")
	}
	if !StrategyCollaborative.UsesPeerSignal() {
		t.Error("collaborative must use the peer signal")
	}
	if !StrategyHybrid.UsesPeerSignal() {
		t.Error("hybrid must use the peer signal")
	}
}

func TestHistoryCompleted(t *testing.T) {
	h := History{
		"c1": {models.EventComplete: 1},
		"c2": {models.EventView: 3, models.EventLike: 1},
	}

	if !h.Completed("c1") {
		t.Error("c1 should be completed")
	}
	if h.Completed("c2") {
		t.Error("c2 has no complete event")
	}
	if h.Completed("c3") {
		t.Error("c3 is not in history")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	mutations := []func(*Config){
		func(c *Config) { c.Weights.TagOverlap = -1 },
		func(c *Config) { c.MaxTagOverlap = 0 },
		func(c *Config) { c.MaxReasonTags = 0 },
		func(c *Config) { c.JitterMax = -0.1 },
		func(c *Config) { c.RecencyFloor = 1.5 },
		func(c *Config) { c.RecencyHorizonDays = 0 },
		func(c *Config) { c.PeerLimit = 0 },
		func(c *Config) { c.DefaultK = 100 },
	}

	for i, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("mutation %d not rejected", i)
		}
	}
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Weights.TagOverlap = 0.9
	if cfg.Weights.TagOverlap == 0.9 {
		t.Error("Clone shares state with the original")
	}
}

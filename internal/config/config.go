// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

// Package config defines and loads Cursora's runtime configuration.
// Configuration is layered defaults -> YAML file -> environment variables,
// with environment variables taking highest priority.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Cursora server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Seed      SeedConfig      `koanf:"seed"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB file path; ":memory:" runs fully in-memory.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads is the DuckDB thread count; 0 lets DuckDB decide.
	Threads int `koanf:"threads"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	// StrictLogging fails a recommendation request when the served items
	// cannot be logged. Disable only when serving matters more than the
	// audit trail.
	StrictLogging bool `koanf:"strict_logging"`
	// Seed fixes the jitter RNG for reproducible runs; 0 seeds from time.
	Seed int64 `koanf:"seed"`
	// QueryTimeout bounds one full recommendation pipeline run.
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// SeedConfig controls sample-data generation at startup.
type SeedConfig struct {
	Enabled bool `koanf:"enabled"`
	Users   int  `koanf:"users"`
	Content int  `koanf:"content"`
	Events  int  `koanf:"events"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("server.rate_limit_reqs must not be negative, got %d", c.Server.RateLimitReqs)
	}
	if c.Recommend.QueryTimeout <= 0 {
		return fmt.Errorf("recommend.query_timeout must be positive, got %s", c.Recommend.QueryTimeout)
	}
	if c.Seed.Enabled {
		if c.Seed.Users < 1 || c.Seed.Content < 1 {
			return fmt.Errorf("seed requires at least one user and one content item")
		}
		if c.Seed.Events < 0 {
			return fmt.Errorf("seed.events must not be negative, got %d", c.Seed.Events)
		}
	}
	return nil
}

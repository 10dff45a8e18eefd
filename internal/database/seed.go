// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/mwenger0/cursora/internal/config"
	"github.com/mwenger0/cursora/internal/logging"
	"github.com/mwenger0/cursora/internal/models"
)

var seedInterestsPool = []string{
	"python", "javascript", "machine-learning", "web-dev",
	"data-science", "cloud", "devops", "ai",
}

var seedContentTitles = []string{
	"Introduction to Python Programming",
	"Advanced JavaScript Patterns",
	"Machine Learning Fundamentals",
	"React for Beginners",
	"Docker and Kubernetes",
	"Data Structures and Algorithms",
	"Web Development Bootcamp",
	"TensorFlow Deep Learning",
	"System Design Interview Prep",
	"Cloud Computing with AWS",
	"Python Data Science",
	"Node.js Backend Development",
	"Vue.js Complete Guide",
	"DevOps Best Practices",
	"Natural Language Processing",
	"Computer Vision with OpenCV",
	"SQL Database Mastery",
	"MongoDB NoSQL Basics",
	"REST API Design",
	"GraphQL Fundamentals",
}

// Seed populates the store with sample users, content, and events. It is a
// no-op when any user already exists, so restarts never duplicate data.
func (db *DB) Seed(ctx context.Context, cfg *config.SeedConfig) error {
	users, _, _, err := db.Counts(ctx)
	if err != nil {
		return fmt.Errorf("check seed state: %w", err)
	}
	if users > 0 {
		logging.Debug().Msg("database already seeded, skipping")
		return nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // sample data only
	now := time.Now()

	skills := []models.SkillLevel{models.SkillNovice, models.SkillIntermediate, models.SkillExpert}
	cohorts := []string{"beginner", "intermediate", "advanced"}
	contentTypes := []models.ContentType{
		models.ContentVideo, models.ContentArticle, models.ContentCourse,
		models.ContentTutorial, models.ContentQuiz, models.ContentProject,
	}
	difficulties := []models.Difficulty{
		models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced,
	}
	eventTypes := []models.EventType{
		models.EventView, models.EventComplete, models.EventLike,
		models.EventQuizScore, models.EventBookmark, models.EventShare,
	}

	for i := 1; i <= cfg.Users; i++ {
		user := &models.User{
			ID:         fmt.Sprintf("user_%d", i),
			Name:       fmt.Sprintf("User %d", i),
			Email:      fmt.Sprintf("user%d@example.com", i),
			CohortTag:  cohorts[rng.Intn(len(cohorts))],
			SkillLevel: skills[rng.Intn(len(skills))],
			Interests:  sampleTags(rng, 2+rng.Intn(3)),
			CreatedAt:  now.AddDate(0, 0, -(1 + rng.Intn(365))),
		}
		if err := db.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("seed user %d: %w", i, err)
		}
	}

	for i := 1; i <= cfg.Content; i++ {
		// Use every curated title once before repeating at random.
		var title string
		if i <= len(seedContentTitles) {
			title = seedContentTitles[i-1]
		} else {
			title = seedContentTitles[rng.Intn(len(seedContentTitles))]
		}
		content := &models.Content{
			ID:              fmt.Sprintf("content_%d", i),
			Title:           title,
			Description:     fmt.Sprintf("Comprehensive guide to %s", title),
			ContentType:     contentTypes[rng.Intn(len(contentTypes))],
			Difficulty:      difficulties[rng.Intn(len(difficulties))],
			Tags:            sampleTags(rng, 1+rng.Intn(3)),
			DurationMinutes: 10 + rng.Intn(231),
			PopularityScore: rng.Float64(),
			CreatedAt:       now.AddDate(0, 0, -rng.Intn(365)),
		}
		if err := db.CreateContent(ctx, content); err != nil {
			return fmt.Errorf("seed content %d: %w", i, err)
		}
	}

	if err := db.seedEvents(ctx, cfg, rng, eventTypes, now); err != nil {
		return err
	}

	logging.Info().
		Int("users", cfg.Users).
		Int("content", cfg.Content).
		Int("events", cfg.Events).
		Msg("database seeded with sample data")
	return nil
}

// seedEvents inserts raw sample events directly, bypassing the ingestion
// transaction; seed popularity is already randomized, not derived.
func (db *DB) seedEvents(ctx context.Context, cfg *config.SeedConfig, rng *rand.Rand, eventTypes []models.EventType, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i := 0; i < cfg.Events; i++ {
		eventType := eventTypes[rng.Intn(len(eventTypes))]
		var value *float64
		if eventType == models.EventQuizScore {
			v := float64(60 + rng.Intn(41))
			value = &v
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (event_id, user_id, content_id, event_type, value, session_id, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(),
			fmt.Sprintf("user_%d", 1+rng.Intn(cfg.Users)),
			fmt.Sprintf("content_%d", 1+rng.Intn(cfg.Content)),
			string(eventType),
			value,
			fmt.Sprintf("session_%d", 1+rng.Intn(1000)),
			now.Add(-time.Duration(1+rng.Intn(720))*time.Hour))
		if err != nil {
			return fmt.Errorf("seed event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	return nil
}

// sampleTags draws n distinct tags from the interest pool.
func sampleTags(rng *rand.Rand, n int) []string {
	perm := rng.Perm(len(seedInterestsPool))
	if n > len(perm) {
		n = len(perm)
	}
	tags := make([]string, n)
	for i := 0; i < n; i++ {
		tags[i] = seedInterestsPool[perm[i]]
	}
	return tags
}

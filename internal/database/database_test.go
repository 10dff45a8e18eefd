// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwenger0/cursora/internal/config"
	"github.com/mwenger0/cursora/internal/models"
)

// setupTestDB creates an in-memory store for one test.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func seedUser(t *testing.T, db *DB, id string, skill models.SkillLevel, interests ...string) {
	t.Helper()
	require.NoError(t, db.CreateUser(context.Background(), &models.User{
		ID:         id,
		Name:       "Learner " + id,
		Email:      id + "@example.com",
		SkillLevel: skill,
		Interests:  interests,
		CreatedAt:  time.Now().AddDate(0, 0, -30),
	}))
}

func seedContent(t *testing.T, db *DB, id string, difficulty models.Difficulty, tags ...string) {
	t.Helper()
	require.NoError(t, db.CreateContent(context.Background(), &models.Content{
		ID:          id,
		Title:       "Item " + id,
		ContentType: models.ContentVideo,
		Difficulty:  difficulty,
		Tags:        tags,
		CreatedAt:   time.Now().AddDate(0, 0, -10),
	}))
}

func ingest(t *testing.T, db *DB, userID, contentID string, eventType models.EventType) *models.Event {
	t.Helper()
	stored, err := db.InsertEvent(context.Background(), &models.Event{
		UserID:    userID,
		ContentID: contentID,
		EventType: eventType,
	})
	require.NoError(t, err)
	return stored
}

func TestGetUserNotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRoundtrip(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "user_1", models.SkillNovice, "python", "cloud")

	user, err := db.GetUser(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, "user_1", user.ID)
	assert.Equal(t, models.SkillNovice, user.SkillLevel)
	assert.Equal(t, []string{"python", "cloud"}, user.Interests)
	assert.Nil(t, user.LastActive)
}

func TestInsertEventChecksReferences(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "user_1", models.SkillNovice)
	seedContent(t, db, "content_1", models.DifficultyBeginner)

	_, err := db.InsertEvent(context.Background(), &models.Event{
		UserID: "ghost", ContentID: "content_1", EventType: models.EventView,
	})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = db.InsertEvent(context.Background(), &models.Event{
		UserID: "user_1", ContentID: "ghost", EventType: models.EventView,
	})
	assert.ErrorIs(t, err, ErrContentNotFound)

	// Nothing was written by the failed attempts.
	_, _, events, err := db.Counts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, events)
}

func TestInsertEventUpdatesDerivedState(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "user_1", models.SkillNovice)
	seedContent(t, db, "content_1", models.DifficultyBeginner)

	stored := ingest(t, db, "user_1", "content_1", models.EventView)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.Timestamp.IsZero())

	user, err := db.GetUser(context.Background(), "user_1")
	require.NoError(t, err)
	require.NotNil(t, user.LastActive)

	content, err := db.GetContent(context.Background(), "content_1")
	require.NoError(t, err)
	assert.InDelta(t, 0.01, content.PopularityScore, 1e-9)

	ingest(t, db, "user_1", "content_1", models.EventLike)
	content, err = db.GetContent(context.Background(), "content_1")
	require.NoError(t, err)
	assert.InDelta(t, 0.02, content.PopularityScore, 1e-9)
}

func TestListContentFilters(t *testing.T) {
	db := setupTestDB(t)
	seedContent(t, db, "c1", models.DifficultyBeginner, "python")
	seedContent(t, db, "c2", models.DifficultyAdvanced, "cloud")

	items, err := db.ListContent(context.Background(), 10, 0, ContentFilter{Difficulty: "advanced"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c2", items[0].ID)

	items, err = db.ListContent(context.Background(), 10, 0, ContentFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRecentEvents(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "user_1", models.SkillNovice)
	seedContent(t, db, "content_1", models.DifficultyBeginner)
	ingest(t, db, "user_1", "content_1", models.EventView)

	events, err := db.RecentEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Learner user_1", events[0].UserName)
	assert.Equal(t, "Item content_1", events[0].ContentTitle)
	assert.Equal(t, models.EventView, events[0].EventType)
}

func TestProviderGetUserHistory(t *testing.T) {
	db := setupTestDB(t)
	provider := NewEngineDataProvider(db)
	seedUser(t, db, "user_1", models.SkillNovice)
	seedContent(t, db, "content_1", models.DifficultyBeginner)

	ingest(t, db, "user_1", "content_1", models.EventView)
	ingest(t, db, "user_1", "content_1", models.EventView)
	ingest(t, db, "user_1", "content_1", models.EventComplete)

	history, err := provider.GetUserHistory(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, 2, history["content_1"][models.EventView])
	assert.True(t, history.Completed("content_1"))
}

func TestProviderSkipsDanglingHistoryRows(t *testing.T) {
	db := setupTestDB(t)
	provider := NewEngineDataProvider(db)
	seedUser(t, db, "user_1", models.SkillNovice)

	// Write an orphan event directly, bypassing ingestion checks.
	_, err := db.conn.ExecContext(context.Background(), `
		INSERT INTO events (event_id, user_id, content_id, event_type, timestamp)
		VALUES ('e1', 'user_1', 'deleted_content', 'view', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	history, err := provider.GetUserHistory(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestProviderSimilarUsersOrdering(t *testing.T) {
	db := setupTestDB(t)
	provider := NewEngineDataProvider(db)

	for _, id := range []string{"user_1", "user_2", "user_3", "user_4"} {
		seedUser(t, db, id, models.SkillNovice)
	}
	for _, id := range []string{"c1", "c2", "c3"} {
		seedContent(t, db, id, models.DifficultyBeginner)
	}

	// user_1 touches c1..c3; user_2 shares 2 items, user_3 and user_4
	// share 1 each (tie broken by user id ascending).
	for _, c := range []string{"c1", "c2", "c3"} {
		ingest(t, db, "user_1", c, models.EventView)
	}
	ingest(t, db, "user_2", "c1", models.EventView)
	ingest(t, db, "user_2", "c2", models.EventView)
	ingest(t, db, "user_4", "c3", models.EventView)
	ingest(t, db, "user_3", "c1", models.EventView)

	peers, err := provider.GetSimilarUsers(context.Background(), "user_1", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"user_2", "user_3", "user_4"}, peers)
}

func TestProviderSimilarUsersEmptyWithoutEvents(t *testing.T) {
	db := setupTestDB(t)
	provider := NewEngineDataProvider(db)
	seedUser(t, db, "user_1", models.SkillNovice)

	peers, err := provider.GetSimilarUsers(context.Background(), "user_1", 10)
	require.NoError(t, err)
	assert.Empty(t, peers)
}

func TestProviderPeerEndorsementsOrder(t *testing.T) {
	db := setupTestDB(t)
	provider := NewEngineDataProvider(db)

	for _, id := range []string{"user_1", "user_2"} {
		seedUser(t, db, id, models.SkillNovice)
	}
	seedContent(t, db, "c1", models.DifficultyBeginner)

	ingest(t, db, "user_2", "c1", models.EventLike)
	ingest(t, db, "user_1", "c1", models.EventView) // view does not endorse

	endorsements, err := provider.GetPeerEndorsements(context.Background(), []string{"user_1", "user_2"})
	require.NoError(t, err)
	require.Len(t, endorsements, 2)

	assert.Equal(t, "user_1", endorsements[0].UserID)
	assert.False(t, endorsements[0].Endorses("c1"))
	assert.Equal(t, "user_2", endorsements[1].UserID)
	assert.True(t, endorsements[1].Endorses("c1"))
}

func TestLogRecommendationsRoundtrip(t *testing.T) {
	db := setupTestDB(t)
	provider := NewEngineDataProvider(db)
	seedUser(t, db, "user_1", models.SkillNovice)

	entries := []models.RecommendationLogEntry{
		{ID: "log_1", UserID: "user_1", ContentID: "c1", Score: 0.8,
			ModelVersion: "v2.0.0", ReasonTags: []string{"python", "recommended_for_you"},
			Timestamp: time.Now()},
		{ID: "log_2", UserID: "user_1", ContentID: "c2", Score: 0.5,
			ModelVersion: "v2.0.0", ReasonTags: []string{"recommended_for_you"},
			Timestamp: time.Now()},
	}
	require.NoError(t, provider.LogRecommendations(context.Background(), entries))

	logged, err := db.RecommendationLogsForUser(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, logged, 2)
	assert.Equal(t, "v2.0.0", logged[0].ModelVersion)
	assert.False(t, logged[0].Clicked)
}

func TestLogRecommendationsAtomic(t *testing.T) {
	db := setupTestDB(t)
	provider := NewEngineDataProvider(db)

	ts := time.Now()
	entries := []models.RecommendationLogEntry{
		{ID: "dup", UserID: "user_1", ContentID: "c1", Score: 0.8, ModelVersion: "v2.0.0", Timestamp: ts},
		{ID: "dup", UserID: "user_1", ContentID: "c2", Score: 0.5, ModelVersion: "v2.0.0", Timestamp: ts},
	}
	// The duplicate primary key fails the batch; the first insert must
	// roll back with it.
	require.Error(t, provider.LogRecommendations(context.Background(), entries))

	logged, err := db.RecommendationLogsForUser(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Empty(t, logged)
}

func TestAnalyticsOverview(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "user_1", models.SkillNovice)
	seedUser(t, db, "user_2", models.SkillExpert)
	seedContent(t, db, "c1", models.DifficultyBeginner)

	ingest(t, db, "user_1", "c1", models.EventView)
	ingest(t, db, "user_1", "c1", models.EventComplete)
	ingest(t, db, "user_2", "c1", models.EventView)

	overview, err := db.GetAnalyticsOverview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), overview.TotalUsers)
	assert.Equal(t, int64(1), overview.TotalContent)
	assert.Equal(t, int64(3), overview.TotalEvents)
	assert.Equal(t, int64(2), overview.ActiveUsers24h)
	assert.Equal(t, int64(2), overview.EventDistribution["view"])
	require.Len(t, overview.PopularContent7d, 1)
	assert.Equal(t, int64(3), overview.PopularContent7d[0].EventCount)
	// One of two event-active users completed something.
	assert.InDelta(t, 0.5, overview.EngagementRate, 1e-9)
}

func TestUserAnalytics(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "user_1", models.SkillNovice)
	seedContent(t, db, "c1", models.DifficultyBeginner, "python", "ai")

	ingest(t, db, "user_1", "c1", models.EventView)
	ingest(t, db, "user_1", "c1", models.EventComplete)
	score := 90.0
	_, err := db.InsertEvent(context.Background(), &models.Event{
		UserID: "user_1", ContentID: "c1", EventType: models.EventQuizScore, Value: &score,
	})
	require.NoError(t, err)

	analytics, err := db.GetUserAnalytics(context.Background(), "user_1")
	require.NoError(t, err)

	assert.Equal(t, int64(3), analytics.TotalEvents)
	assert.Equal(t, int64(1), analytics.ContentViewed)
	assert.Equal(t, int64(1), analytics.ContentDone)
	require.NotNil(t, analytics.AvgQuizScore)
	assert.InDelta(t, 90.0, *analytics.AvgQuizScore, 1e-9)
	assert.ElementsMatch(t, []string{"python", "ai"}, analytics.PreferredTopics)
	assert.NotEmpty(t, analytics.ActivityTrend)
}

func TestUserAnalyticsNotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetUserAnalytics(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.SeedConfig{Enabled: true, Users: 5, Content: 8, Events: 20}

	require.NoError(t, db.Seed(context.Background(), cfg))
	users, content, events, err := db.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), users)
	assert.Equal(t, int64(8), content)
	assert.Equal(t, int64(20), events)

	// Second call must not duplicate anything.
	require.NoError(t, db.Seed(context.Background(), cfg))
	users2, content2, events2, err := db.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, users, users2)
	assert.Equal(t, content, content2)
	assert.Equal(t, events, events2)
}

func TestSeedUsesCuratedTitlesInOrder(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.SeedConfig{Enabled: true, Users: 2, Content: 25, Events: 0}

	require.NoError(t, db.Seed(context.Background(), cfg))

	// The first items cycle through the curated titles in order before the
	// remainder repeats at random.
	first, err := db.GetContent(context.Background(), "content_1")
	require.NoError(t, err)
	assert.Equal(t, seedContentTitles[0], first.Title)

	last, err := db.GetContent(context.Background(), fmt.Sprintf("content_%d", len(seedContentTitles)))
	require.NoError(t, err)
	assert.Equal(t, seedContentTitles[len(seedContentTitles)-1], last.Title)

	extra, err := db.GetContent(context.Background(), "content_25")
	require.NoError(t, err)
	assert.Contains(t, seedContentTitles, extra.Title)
}

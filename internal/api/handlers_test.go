// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwenger0/cursora/internal/config"
	"github.com/mwenger0/cursora/internal/database"
	"github.com/mwenger0/cursora/internal/logging"
	"github.com/mwenger0/cursora/internal/models"
	"github.com/mwenger0/cursora/internal/recommend"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "error",
		Format: "console",
		Output: io.Discard,
	})
}

// newTestServer builds a full in-memory stack: DuckDB store, scoring
// engine with a fixed seed and the Chi router, without a WebSocket hub.
func newTestServer(t *testing.T) (*httptest.Server, *database.DB) {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	engineCfg := recommend.DefaultConfig()
	engineCfg.Seed = 42
	engine, err := recommend.NewEngine(engineCfg, database.NewEngineDataProvider(db), logging.NewTestLogger(io.Discard))
	require.NoError(t, err)

	handler := NewHandler(db, engine, nil, nil)
	router := NewRouter(handler, NewChiMiddleware(nil))

	srv := httptest.NewServer(router.SetupChi())
	t.Cleanup(srv.Close)
	return srv, db
}

func seedFixtures(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, db.CreateUser(ctx, &models.User{
		ID: "user_1", Name: "Asha", Email: "asha@example.com",
		SkillLevel: models.SkillNovice, Interests: []string{"python", "cloud"},
		CreatedAt: time.Now().AddDate(0, 0, -60),
	}))
	require.NoError(t, db.CreateUser(ctx, &models.User{
		ID: "user_2", Name: "Ben", Email: "ben@example.com",
		SkillLevel: models.SkillExpert, Interests: []string{"security"},
		CreatedAt: time.Now().AddDate(0, 0, -30),
	}))

	for i, c := range []models.Content{
		{ID: "c1", Title: "Python Basics", ContentType: models.ContentCourse,
			Difficulty: models.DifficultyBeginner, Tags: []string{"python"}, DurationMinutes: 60},
		{ID: "c2", Title: "Cloud Fundamentals", ContentType: models.ContentVideo,
			Difficulty: models.DifficultyBeginner, Tags: []string{"cloud"}, DurationMinutes: 30},
		{ID: "c3", Title: "Security Deep Dive", ContentType: models.ContentArticle,
			Difficulty: models.DifficultyAdvanced, Tags: []string{"security"}, DurationMinutes: 45},
	} {
		c.CreatedAt = time.Now().AddDate(0, 0, -(i + 1))
		content := c
		require.NoError(t, db.CreateContent(ctx, &content))
	}
}

func getJSON(t *testing.T, srv *httptest.Server, path string) (*http.Response, APIResponse) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func postJSON(t *testing.T, srv *httptest.Server, path string, payload interface{}) (*http.Response, APIResponse) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := getJSON(t, srv, "/api/v1/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)

	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "connected", data["database"])
}

func TestUsersEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	seedFixtures(t, db)

	resp, body := getJSON(t, srv, "/api/v1/users")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, body.Success)

	users, ok := body.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, users, 2)
	require.NotNil(t, body.Meta)
	require.NotNil(t, body.Meta.Pagination)
	assert.Equal(t, 2, body.Meta.Pagination.Count)
}

func TestUsersEndpointRejectsBadLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := getJSON(t, srv, "/api/v1/users?limit=9999")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)
}

func TestContentEndpointWithFilter(t *testing.T) {
	srv, db := newTestServer(t)
	seedFixtures(t, db)

	resp, body := getJSON(t, srv, "/api/v1/content?difficulty=advanced")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	items, ok := body.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "c3", item["content_id"])
}

func TestIngestEventEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	seedFixtures(t, db)

	resp, body := postJSON(t, srv, "/api/v1/events", map[string]interface{}{
		"user_id":    "user_1",
		"content_id": "c1",
		"event_type": "view",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, body.Success)

	data := body.Data.(map[string]interface{})
	assert.NotEmpty(t, data["event_id"])
	assert.Equal(t, "view", data["event_type"])
}

func TestIngestEventValidation(t *testing.T) {
	srv, db := newTestServer(t)
	seedFixtures(t, db)

	tests := []struct {
		name    string
		payload map[string]interface{}
		status  int
	}{
		{"missing user", map[string]interface{}{"content_id": "c1", "event_type": "view"}, http.StatusBadRequest},
		{"bad event type", map[string]interface{}{"user_id": "user_1", "content_id": "c1", "event_type": "watched"}, http.StatusBadRequest},
		{"value out of range", map[string]interface{}{"user_id": "user_1", "content_id": "c1", "event_type": "quiz_score", "value": 150.0}, http.StatusBadRequest},
		{"unknown user", map[string]interface{}{"user_id": "ghost", "content_id": "c1", "event_type": "view"}, http.StatusNotFound},
		{"unknown content", map[string]interface{}{"user_id": "user_1", "content_id": "ghost", "event_type": "view"}, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := postJSON(t, srv, "/api/v1/events", tc.payload)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
		})
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	seedFixtures(t, db)

	resp, body := getJSON(t, srv, "/api/v1/recommendations/user/user_1?k=2&strategy=content_based")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, body.Success)

	data := body.Data.(map[string]interface{})
	assert.Equal(t, "user_1", data["user_id"])
	assert.Equal(t, "v2.0.0", data["model_version"])
	assert.Equal(t, "content_based", data["strategy"])

	recs, ok := data["recommendations"].([]interface{})
	require.True(t, ok)
	assert.Len(t, recs, 2)

	first := recs[0].(map[string]interface{})
	assert.NotEmpty(t, first["content_id"])
	assert.NotEmpty(t, first["reason_tags"])
}

func TestRecommendationsEndpointDefaults(t *testing.T) {
	srv, db := newTestServer(t)
	seedFixtures(t, db)

	// No k or strategy: hybrid with default K, capped by catalog size.
	resp, body := getJSON(t, srv, "/api/v1/recommendations/user/user_1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body.Data.(map[string]interface{})
	assert.Equal(t, "hybrid", data["strategy"])
	recs := data["recommendations"].([]interface{})
	assert.Len(t, recs, 3)
}

func TestRecommendationsEndpointErrors(t *testing.T) {
	srv, db := newTestServer(t)
	seedFixtures(t, db)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"non-integer k", "/api/v1/recommendations/user/user_1?k=abc", http.StatusBadRequest},
		{"k too large", "/api/v1/recommendations/user/user_1?k=51", http.StatusBadRequest},
		{"k zero is invalid", "/api/v1/recommendations/user/user_1?k=-1", http.StatusBadRequest},
		{"unknown strategy", "/api/v1/recommendations/user/user_1?strategy=magic", http.StatusBadRequest},
		{"unknown user", "/api/v1/recommendations/user/ghost", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := getJSON(t, srv, tc.path)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.False(t, body.Success)
		})
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv, db := newTestServer(t)
	seedFixtures(t, db)

	_, err := db.InsertEvent(context.Background(), &models.Event{
		UserID: "user_1", ContentID: "c1", EventType: models.EventComplete,
	})
	require.NoError(t, err)

	resp, body := getJSON(t, srv, "/api/v1/analytics/overview")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	overview := body.Data.(map[string]interface{})
	assert.Equal(t, float64(2), overview["total_users"])
	assert.Equal(t, float64(1), overview["total_events"])

	resp, body = getJSON(t, srv, "/api/v1/analytics/users/user_1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	userStats := body.Data.(map[string]interface{})
	assert.Equal(t, float64(1), userStats["total_events"])

	resp, _ = getJSON(t, srv, "/api/v1/analytics/users/ghost")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecentEventsEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	seedFixtures(t, db)

	_, err := db.InsertEvent(context.Background(), &models.Event{
		UserID: "user_1", ContentID: "c1", EventType: models.EventView,
	})
	require.NoError(t, err)

	resp, body := getJSON(t, srv, "/api/v1/events/recent?limit=10")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	events := body.Data.([]interface{})
	require.Len(t, events, 1)
	event := events[0].(map[string]interface{})
	assert.Equal(t, "Asha", event["user_name"])
	assert.Equal(t, "Python Basics", event["content_title"])
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRecommendationLoggingPersists(t *testing.T) {
	srv, db := newTestServer(t)
	seedFixtures(t, db)

	resp, _ := getJSON(t, srv, "/api/v1/recommendations/user/user_1?k=3")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	logged, err := db.RecommendationLogsForUser(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Len(t, logged, 3)
	assert.Equal(t, recommend.ModelVersion, logged[0].ModelVersion)
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"socialgraph/api/handlers"
	"socialgraph/api/middleware"
	"socialgraph/api/routes"
	"socialgraph/db"
	"socialgraph/models"
	"socialgraph/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-0123456789"

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	database, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), "error")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})

	profiles := services.NewProfileService(database, nil)
	h := handlers.NewHandlers(
		services.NewFriendService(database, profiles, nil),
		services.NewMessageService(database, nil),
		profiles,
	)
	return routes.NewRouter(h, middleware.AuthMiddleware(testSecret, true))
}

func doRequest(r *gin.Engine, method, path string, userID int64, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(userID, 10))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerProfile(t *testing.T, r *gin.Engine, username string) models.ProfileSummary {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/internal/v1/profiles", 0, map[string]string{"username": username})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var profile models.ProfileSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	return profile
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestFriendshipFlow(t *testing.T) {
	r := setupRouter(t)
	alice := registerProfile(t, r, "alice")
	bob := registerProfile(t, r, "bob")

	w := doRequest(r, http.MethodPost, "/api/v1/requests", alice.ID, map[string]string{"to_user": "bob"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "sent", decode(t, w)["outcome"])

	w = doRequest(r, http.MethodGet, "/api/v1/requests", bob.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var requests models.RequestsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &requests))
	assert.Equal(t, "bob", requests.Username)
	assert.Equal(t, []models.ProfileSummary{alice}, requests.Incoming)
	assert.Empty(t, requests.Outgoing)

	w = doRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/requests/%d", alice.ID), bob.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User alice wants to add you as a friend", decode(t, w)["message"])

	w = doRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/requests/%d", alice.ID), bob.ID, map[string]string{"choice": "accept"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "You have accepted the friend request from alice", decode(t, w)["message"])

	w = doRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/friends/%d", bob.ID), alice.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"username": "bob", "status": "friends"}, decode(t, w))

	w = doRequest(r, http.MethodGet, "/api/v1/friends", alice.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var friends models.FriendsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &friends))
	assert.Equal(t, alice, friends.User)
	assert.Equal(t, []models.ProfileSummary{bob}, friends.Friends)

	w = doRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/friends/%d/messages", bob.ID), alice.ID, map[string]string{"text": "hi"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/friends/%d/messages", alice.ID), bob.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var messages struct {
		Messages []string `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &messages))
	require.Len(t, messages.Messages, 1)
	assert.True(t, strings.HasSuffix(messages.Messages[0], "|alice: hi"))

	w = doRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/friends/%d", alice.ID), bob.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User alice was deleted from your friends list", decode(t, w)["message"])

	w = doRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/friends/%d", alice.ID), bob.ID, nil)
	assert.Equal(t, "none", decode(t, w)["status"])
}

func TestReciprocalRequestOverHTTP(t *testing.T) {
	r := setupRouter(t)
	alice := registerProfile(t, r, "alice")
	bob := registerProfile(t, r, "bob")

	w := doRequest(r, http.MethodPost, "/api/v1/requests", alice.ID, map[string]string{"to_user": "bob"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/requests", bob.ID, map[string]string{"to_user": "alice"})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "accepted", body["outcome"])
	assert.Equal(t, "User alice added to friends", body["message"])

	w = doRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/friends/%d", bob.ID), alice.ID, nil)
	assert.Equal(t, "friends", decode(t, w)["status"])
}

func TestErrorMapping(t *testing.T) {
	r := setupRouter(t)
	alice := registerProfile(t, r, "alice")
	bob := registerProfile(t, r, "bob")
	carol := registerProfile(t, r, "carol")

	w := doRequest(r, http.MethodPost, "/api/v1/requests", alice.ID, map[string]string{"to_user": "carol"})
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name       string
		method     string
		path       string
		userID     int64
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"unknown user", http.MethodPost, "/api/v1/requests", alice.ID, map[string]string{"to_user": "nobody"}, http.StatusNotFound, "NOT_FOUND"},
		{"request to self", http.MethodPost, "/api/v1/requests", alice.ID, map[string]string{"to_user": "alice"}, http.StatusBadRequest, "INVALID_TARGET"},
		{"duplicate request", http.MethodPost, "/api/v1/requests", alice.ID, map[string]string{"to_user": "carol"}, http.StatusConflict, "DUPLICATE_REQUEST"},
		{"missing body field", http.MethodPost, "/api/v1/requests", alice.ID, map[string]string{}, http.StatusBadRequest, "INVALID_INPUT"},
		{"no such request", http.MethodPost, fmt.Sprintf("/api/v1/requests/%d", bob.ID), alice.ID, map[string]string{"choice": "accept"}, http.StatusBadRequest, "NO_SUCH_REQUEST"},
		{"bad choice", http.MethodPost, fmt.Sprintf("/api/v1/requests/%d", alice.ID), carol.ID, map[string]string{"choice": "later"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"unfriend stranger", http.MethodDelete, fmt.Sprintf("/api/v1/friends/%d", bob.ID), alice.ID, nil, http.StatusBadRequest, "NOT_FRIENDS"},
		{"unfriend self", http.MethodDelete, fmt.Sprintf("/api/v1/friends/%d", alice.ID), alice.ID, nil, http.StatusBadRequest, "INVALID_TARGET"},
		{"message stranger", http.MethodPost, fmt.Sprintf("/api/v1/friends/%d/messages", bob.ID), alice.ID, map[string]string{"text": "hi"}, http.StatusBadRequest, "NOT_FRIENDS"},
		{"unknown profile", http.MethodGet, "/api/v1/profiles/9999", alice.ID, nil, http.StatusNotFound, "NOT_FOUND"},
		{"bad id", http.MethodGet, "/api/v1/friends/abc", alice.ID, nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"username taken", http.MethodPost, "/internal/v1/profiles", 0, map[string]string{"username": "alice"}, http.StatusConflict, "USERNAME_TAKEN"},
		{"bad username", http.MethodPost, "/internal/v1/profiles", 0, map[string]string{"username": "a b"}, http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, tt.method, tt.path, tt.userID, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			body := decode(t, w)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}

	w = doRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/requests/%d", alice.ID), carol.ID, map[string]string{"choice": "accept"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(r, http.MethodPost, fmt.Sprintf("/api/v1/requests/%d", alice.ID), carol.ID, map[string]string{"choice": "accept"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_FRIENDS", decode(t, w)["code"])
}

func TestAuthRequired(t *testing.T) {
	r := setupRouter(t)
	alice := registerProfile(t, r, "alice")

	w := doRequest(r, http.MethodGet, "/api/v1/friends", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", decode(t, w)["code"])

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/friends", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := middleware.GenerateToken(alice.ID, testSecret, time.Hour)
	require.NoError(t, err)
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/friends", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode(t, w)["user"].(map[string]interface{})["username"])
}

func TestHealthAndMetrics(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/health", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = doRequest(r, http.MethodGet, "/metrics", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestRequestIDEchoed(t *testing.T) {
	r := setupRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))

	w = doRequest(r, http.MethodGet, "/health", 0, nil)
	assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)
}

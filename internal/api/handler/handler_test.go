package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ordercleanup/backend/internal/api/handler"
	"ordercleanup/backend/internal/cleanup"
	"ordercleanup/backend/internal/config"
	"ordercleanup/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router  *gin.Engine
	gate    *cleanup.ReadinessGate
	cleaner *MockCleaner
	storage *MockStorage
}

func newFixture(ready bool, opts handler.RouterOptions) *fixture {
	gate := cleanup.NewReadinessGate()
	if ready {
		gate.SetConnection(stubPlatform{connected: true})
	}
	cleaner := new(MockCleaner)
	store := new(MockStorage)
	wait := cleanup.WaitOptions{Timeout: 200 * time.Millisecond, PollInterval: 5 * time.Millisecond}
	h := handler.NewHandler(gate, cleaner, store, wait)
	return &fixture{
		router:  handler.NewRouter(h, opts),
		gate:    gate,
		cleaner: cleaner,
		storage: store,
	}
}

func (f *fixture) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func successResult(criteria models.MatchCriteria) models.OperationResult {
	return models.OperationResult{
		Success:         true,
		DeletedCount:    1,
		MessagesChecked: 12,
		DeletedMessages: []models.DeletionOutcome{{
			MessageID: "111",
			Content:   "Order ORD-1 shipped",
			Author:    "Shop Notifications",
			Timestamp: "2025-03-14T09:30:00Z",
			Reason:    "Order ID found in message content",
		}},
		SearchCriteria: criteria,
	}
}

func TestRoot(t *testing.T) {
	f := newFixture(false, handler.RouterOptions{})

	w := f.do(http.MethodGet, "/", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, config.ServiceName, body["service"])
	assert.Contains(t, body["endpoints"], "POST /delete-discord-message")
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name  string
		ready bool
		want  string
	}{
		{"bot ready", true, "ready"},
		{"bot not ready", false, "not_ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.ready, handler.RouterOptions{})

			w := f.do(http.MethodGet, "/health", "", nil)

			assert.Equal(t, http.StatusOK, w.Code)
			body := decode(t, w)
			assert.Equal(t, "healthy", body["status"])
			assert.Equal(t, tt.want, body["discord_bot_status"])
			_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
			assert.NoError(t, err)
		})
	}
}

func TestDeleteDiscordMessage_NotReady(t *testing.T) {
	f := newFixture(false, handler.RouterOptions{})

	w := f.do(http.MethodPost, "/delete-discord-message", `{"channel_id": 123, "order_id": "ORD-1"}`, nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.EqualValues(t, 0, body["deleted_count"])
	assert.Contains(t, body["error"], "not ready")
	f.cleaner.AssertNotCalled(t, "SearchAndDelete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteDiscordMessage_BecomesReadyWhileWaiting(t *testing.T) {
	f := newFixture(false, handler.RouterOptions{})
	criteria := models.MatchCriteria{OrderID: "ORD-1"}
	f.cleaner.On("SearchAndDelete", mock.Anything, "123", criteria, config.HTTPDefaultLimit).Return(successResult(criteria))
	f.storage.On("SaveDeletionRecord", mock.Anything).Return(nil)
	f.storage.On("PublishDeletionEvent", mock.Anything).Return(nil)

	time.AfterFunc(5*time.Millisecond, func() {
		f.gate.SetConnection(stubPlatform{connected: true})
	})
	w := f.do(http.MethodPost, "/delete-discord-message", `{"channel_id": 123, "order_id": "ORD-1"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	f.cleaner.AssertExpectations(t)
}

func TestDeleteDiscordMessage_Success(t *testing.T) {
	f := newFixture(true, handler.RouterOptions{})
	criteria := models.MatchCriteria{OrderID: "ORD-1", Title: "Blue Hoodie", Variant: "XL"}
	f.cleaner.On("SearchAndDelete", mock.Anything, "123456789012345678", criteria, config.HTTPDefaultLimit).
		Return(successResult(criteria))
	f.storage.On("SaveDeletionRecord", mock.MatchedBy(func(r *models.DeletionRecord) bool {
		return r.OrderID == "ORD-1" &&
			r.ChannelID == "123456789012345678" &&
			r.DeletedCount == 1 &&
			len(r.MessageIDs) == 1 && r.MessageIDs[0] == "111" &&
			r.RequestID == "req-42"
	})).Return(nil)
	f.storage.On("PublishDeletionEvent", mock.MatchedBy(func(e models.DeletionEvent) bool {
		return e.OrderID == "ORD-1" && e.RequestID == "req-42"
	})).Return(nil)

	w := f.do(http.MethodPost, "/delete-discord-message",
		`{"channel_id": 123456789012345678, "order_id": " ORD-1 ", "title": "Blue Hoodie", "variant": "XL"}`,
		map[string]string{"X-Request-ID": "req-42"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	var got models.OperationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, 1, got.DeletedCount)
	assert.Equal(t, 12, got.MessagesChecked)
	assert.Equal(t, criteria, got.SearchCriteria)
	require.Len(t, got.DeletedMessages, 1)
	assert.Equal(t, "111", got.DeletedMessages[0].MessageID)

	f.cleaner.AssertExpectations(t)
	f.storage.AssertExpectations(t)
}

func TestDeleteDiscordMessage_FailedResultIsStill200(t *testing.T) {
	f := newFixture(true, handler.RouterOptions{})
	criteria := models.MatchCriteria{OrderID: "ORD-1"}
	f.cleaner.On("SearchAndDelete", mock.Anything, "42", criteria, config.HTTPDefaultLimit).Return(models.OperationResult{
		Success:        false,
		SearchCriteria: criteria,
		Error:          "Channel 42 not found",
	})
	f.storage.On("SaveDeletionRecord", mock.Anything).Return(nil)
	f.storage.On("PublishDeletionEvent", mock.Anything).Return(nil)

	w := f.do(http.MethodPost, "/delete-discord-message", `{"channel_id": 42, "order_id": "ORD-1"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Channel 42 not found", body["error"])
}

func TestDeleteDiscordMessage_StorageErrorsDoNotFailRequest(t *testing.T) {
	f := newFixture(true, handler.RouterOptions{})
	criteria := models.MatchCriteria{OrderID: "ORD-1"}
	f.cleaner.On("SearchAndDelete", mock.Anything, "7", criteria, config.HTTPDefaultLimit).Return(successResult(criteria))
	f.storage.On("SaveDeletionRecord", mock.Anything).Return(errors.New("db down"))
	f.storage.On("PublishDeletionEvent", mock.Anything).Return(errors.New("redis down"))

	w := f.do(http.MethodPost, "/delete-discord-message", `{"channel_id": 7, "order_id": "ORD-1"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	f.storage.AssertExpectations(t)
}

func TestDeleteDiscordMessage_LimitClamped(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"default", `{"channel_id": 1, "order_id": "A"}`, config.HTTPDefaultLimit},
		{"explicit", `{"channel_id": 1, "order_id": "A", "limit": 250}`, 250},
		{"above max", `{"channel_id": 1, "order_id": "A", "limit": 5000}`, config.HTTPMaxLimit},
		{"zero", `{"channel_id": 1, "order_id": "A", "limit": 0}`, 1},
		{"negative", `{"channel_id": 1, "order_id": "A", "limit": -3}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(true, handler.RouterOptions{})
			criteria := models.MatchCriteria{OrderID: "A"}
			f.cleaner.On("SearchAndDelete", mock.Anything, "1", criteria, tt.want).Return(successResult(criteria))
			f.storage.On("SaveDeletionRecord", mock.Anything).Return(nil)
			f.storage.On("PublishDeletionEvent", mock.Anything).Return(nil)

			w := f.do(http.MethodPost, "/delete-discord-message", tt.body, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			f.cleaner.AssertExpectations(t)
		})
	}
}

func TestDeleteDiscordMessage_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"channel_id": `},
		{"missing channel", `{"order_id": "ORD-1"}`},
		{"non-positive channel", `{"channel_id": -5, "order_id": "ORD-1"}`},
		{"channel as string", `{"channel_id": "abc", "order_id": "ORD-1"}`},
		{"missing order id", `{"channel_id": 1}`},
		{"blank order id", `{"channel_id": 1, "order_id": "   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(true, handler.RouterOptions{})

			w := f.do(http.MethodPost, "/delete-discord-message", tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode(t, w)["error"], "Invalid request")
			f.cleaner.AssertNotCalled(t, "SearchAndDelete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDeleteDiscordMessage_PanicBecomes500(t *testing.T) {
	f := newFixture(true, handler.RouterOptions{})
	f.cleaner.On("SearchAndDelete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("boom") }).
		Return(models.OperationResult{})

	w := f.do(http.MethodPost, "/delete-discord-message", `{"channel_id": 1, "order_id": "A"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error: boom", decode(t, w)["detail"])
}

func TestDeleteDiscordMessage_RequiresToken(t *testing.T) {
	valid, err := handler.GenerateToken([]byte(testSecret), "ops", time.Hour)
	require.NoError(t, err)
	foreign, err := handler.GenerateToken([]byte("other-secret"), "ops", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic " + valid, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(true, handler.RouterOptions{JWTSecret: testSecret})
			criteria := models.MatchCriteria{OrderID: "A"}
			f.cleaner.On("SearchAndDelete", mock.Anything, "1", criteria, config.HTTPDefaultLimit).Return(successResult(criteria))
			f.storage.On("SaveDeletionRecord", mock.Anything).Return(nil)
			f.storage.On("PublishDeletionEvent", mock.Anything).Return(nil)

			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := f.do(http.MethodPost, "/delete-discord-message", `{"channel_id": 1, "order_id": "A"}`, headers)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHealth_NotBehindToken(t *testing.T) {
	f := newFixture(true, handler.RouterOptions{JWTSecret: testSecret})

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/", "", nil).Code)
}

func TestDeleteDiscordMessage_RateLimited(t *testing.T) {
	f := newFixture(true, handler.RouterOptions{RateLimit: 0.01, RateBurst: 1})
	criteria := models.MatchCriteria{OrderID: "A"}
	f.cleaner.On("SearchAndDelete", mock.Anything, "1", criteria, config.HTTPDefaultLimit).Return(successResult(criteria)).Once()
	f.storage.On("SaveDeletionRecord", mock.Anything).Return(nil)
	f.storage.On("PublishDeletionEvent", mock.Anything).Return(nil)

	first := f.do(http.MethodPost, "/delete-discord-message", `{"channel_id": 1, "order_id": "A"}`, nil)
	second := f.do(http.MethodPost, "/delete-discord-message", `{"channel_id": 1, "order_id": "A"}`, nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	f.cleaner.AssertNumberOfCalls(t, "SearchAndDelete", 1)
}

func TestRequestID_GeneratedWhenMissing(t *testing.T) {
	f := newFixture(false, handler.RouterOptions{})

	w := f.do(http.MethodGet, "/health", "", nil)

	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

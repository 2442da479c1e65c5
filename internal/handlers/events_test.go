package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jwebster45206/dialog-engine/internal/services/events"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client
}

func readEvent(t *testing.T, conn *websocket.Conn) events.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var e events.Event
	require.NoError(t, conn.ReadJSON(&e))
	return e
}

func TestEventsHandler_RelaysGameEvents(t *testing.T) {
	client := setupTestRedis(t)
	server := httptest.NewServer(NewEventsHandler(client, testLogger()))
	defer server.Close()

	gameID := uuid.New()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/events/gamestate/" + gameID.String()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	hello := readEvent(t, conn)
	assert.Equal(t, events.EventTypeConnected, hello.Type)
	assert.Equal(t, gameID.String(), hello.GameID)

	// Events for another game are not relayed.
	other := events.NewBroadcaster(client, uuid.New(), testLogger())
	defer other.Close()
	require.NoError(t, other.PublishGameStateUpdated(context.Background(), 9, nil))

	b := events.NewBroadcaster(client, gameID, testLogger())
	defer b.Close()
	require.NoError(t, b.PublishGameStateUpdated(context.Background(), 2, map[string]bool{"met_farmer": true}))

	e := readEvent(t, conn)
	assert.Equal(t, events.EventTypeGameStateUpdated, e.Type)
	assert.Equal(t, gameID.String(), e.GameID)
	assert.EqualValues(t, 2, e.Data["sessions"])
}

func TestEventsHandler_BadRequests(t *testing.T) {
	client := setupTestRedis(t)
	h := NewEventsHandler(client, testLogger())

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"wrong method", http.MethodPost, "/v1/events/gamestate/" + uuid.NewString(), http.StatusMethodNotAllowed},
		{"wrong path", http.MethodGet, "/v1/events/" + uuid.NewString(), http.StatusBadRequest},
		{"bad id", http.MethodGet, "/v1/events/gamestate/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), `"error"`)
		})
	}
}

func TestEventsHandler_NotAWebSocket(t *testing.T) {
	client := setupTestRedis(t)
	server := httptest.NewServer(NewEventsHandler(client, testLogger()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/events/gamestate/" + uuid.NewString())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

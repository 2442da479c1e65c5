package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/dialog-engine/pkg/dialog"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSurface struct{}

func (nopSurface) SetText(string)  {}
func (nopSurface) SetVisible(bool) {}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
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
	return client, mr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func receive(t *testing.T, ch <-chan *redis.Message) Event {
	t.Helper()
	select {
	case msg := <-ch:
		var e Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &e))
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBroadcaster_DialogLifecycle(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()
	gameID := uuid.New()

	sub := client.Subscribe(ctx, Channel(gameID))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	ch := sub.Channel()

	b := NewBroadcaster(client, gameID, testLogger())
	defer b.Close()
	farmer := dialog.NewSpeaker("farmer", "Farmer", nopSurface{}, nopSurface{}, nil)
	coord := dialog.NewCoordinator(nil, nil, dialog.Options{}, testLogger())
	coord.AddListener(b)

	require.True(t, coord.StartSingleSpeaker([]string{"Howdy."}, farmer, nil))

	started := receive(t, ch)
	assert.Equal(t, EventTypeSessionStarted, started.Type)
	assert.Equal(t, gameID.String(), started.GameID)
	assert.Equal(t, "single_speaker", started.Data["mode"])
	assert.Equal(t, "Farmer", started.Data["starter"])

	line := receive(t, ch)
	assert.Equal(t, EventTypeLineStarted, line.Type)
	assert.Equal(t, started.SessionID, line.SessionID)
	assert.Equal(t, "Howdy.", line.Data["sentence"])

	coord.AdvanceOrSkip()
	coord.AdvanceOrSkip()

	ended := receive(t, ch)
	assert.Equal(t, EventTypeSessionEnded, ended.Type)
	assert.Equal(t, started.SessionID, ended.SessionID)
}

func TestBroadcaster_PublishGameStateUpdated(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()
	gameID := uuid.New()

	sub := client.Subscribe(ctx, Channel(gameID))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	b := NewBroadcaster(client, gameID, testLogger())
	defer b.Close()
	flags := map[string]bool{"met_farmer": true}
	require.NoError(t, b.PublishGameStateUpdated(ctx, 2, flags))
	flags["met_farmer"] = false

	e := receive(t, sub.Channel())
	assert.Equal(t, EventTypeGameStateUpdated, e.Type)
	assert.EqualValues(t, 2, e.Data["sessions"])
	assert.Equal(t, map[string]any{"met_farmer": true}, e.Data["flags"])
}

func TestBroadcaster_PublishFailureDoesNotPanic(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	b := NewBroadcaster(client, uuid.New(), testLogger())
	assert.NotPanics(t, func() {
		require.NoError(t, b.PublishGameStateUpdated(context.Background(), 1, nil))
		b.SessionEnded(dialog.Session{ID: uuid.New(), Mode: dialog.ModeConversation})
		b.Close()
	})
}

func TestBroadcaster_FullQueueDropsWithoutBlocking(t *testing.T) {
	client, _ := setupTestRedis(t)

	// No publisher running, so nothing drains the queue.
	b := newBroadcaster(client, uuid.New(), testLogger(), 1)
	session := dialog.Session{ID: uuid.New(), Mode: dialog.ModeConversation}

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.SessionStarted(session)
		b.SessionEnded(session)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener callback blocked on a full queue")
	}

	assert.Len(t, b.queue, 1)
	assert.ErrorIs(t, b.PublishGameStateUpdated(context.Background(), 1, nil), ErrQueueFull)
}

func TestBroadcaster_CloseFlushesQueue(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()
	gameID := uuid.New()

	sub := client.Subscribe(ctx, Channel(gameID))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	ch := sub.Channel()

	b := NewBroadcaster(client, gameID, testLogger())
	for i := range 3 {
		require.NoError(t, b.PublishGameStateUpdated(ctx, i, nil))
	}
	b.Close()
	b.Close()

	for i := range 3 {
		e := receive(t, ch)
		assert.EqualValues(t, i, e.Data["sessions"])
	}

	assert.ErrorIs(t, b.PublishGameStateUpdated(ctx, 4, nil), ErrBroadcasterClosed)
	assert.NotPanics(t, func() {
		b.SessionEnded(dialog.Session{ID: uuid.New(), Mode: dialog.ModeConversation})
	})
}

func TestBroadcaster_CanceledContext(t *testing.T) {
	client, _ := setupTestRedis(t)
	b := NewBroadcaster(client, uuid.New(), testLogger())
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.PublishGameStateUpdated(ctx, 1, nil), context.Canceled)
}

package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jwebster45206/dialog-engine/internal/game"
	"github.com/jwebster45206/dialog-engine/internal/services/events"
	gamestorage "github.com/jwebster45206/dialog-engine/internal/storage"
	"github.com/jwebster45206/dialog-engine/pkg/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastingStorage_CloseStopsBroadcasters(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	rs, err := gamestorage.NewRedisStorage("redis://"+mr.Addr(), "", log)
	require.NoError(t, err)
	bs := &broadcastingStorage{RedisStorage: rs, log: log}
	assert.Equal(t, "redis", bs.Name())

	s, err := scenario.Load(filepath.Join("..", "..", "data", "scenarios", "veggie_village.json"))
	require.NoError(t, err)
	w, err := game.New(s, nil, bs, game.Options{}, log)
	require.NoError(t, err)
	bs.attach(w)
	require.Len(t, bs.broadcasters, 1)
	b := bs.broadcasters[0]

	require.NoError(t, w.Save(context.Background()))
	require.NoError(t, bs.Close())

	assert.Empty(t, bs.broadcasters)
	assert.ErrorIs(t, b.PublishGameStateUpdated(context.Background(), 1, nil), events.ErrBroadcasterClosed)
}

func TestBroadcastingStorage_DeliversSavedState(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	rs, err := gamestorage.NewRedisStorage("redis://"+mr.Addr(), "", log)
	require.NoError(t, err)
	bs := &broadcastingStorage{RedisStorage: rs, log: log}
	defer func() {
		_ = bs.Close()
	}()

	s, err := scenario.Load(filepath.Join("..", "..", "data", "scenarios", "veggie_village.json"))
	require.NoError(t, err)
	w, err := game.New(s, nil, bs, game.Options{}, log)
	require.NoError(t, err)
	bs.attach(w)

	ctx := context.Background()
	sub := rs.Client().Subscribe(ctx, events.Channel(w.State.ID))
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	w.State.Sessions = 3
	require.NoError(t, w.Save(ctx))

	select {
	case msg := <-sub.Channel():
		var e events.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &e))
		assert.Equal(t, events.EventTypeGameStateUpdated, e.Type)
		assert.EqualValues(t, 3, e.Data["sessions"])
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state update")
	}

	gs, err := bs.LoadGameState(ctx, w.State.ID)
	require.NoError(t, err)
	require.NotNil(t, gs)
	assert.Equal(t, 3, gs.Sessions)
}

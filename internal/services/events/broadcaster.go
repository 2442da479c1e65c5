package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dialog-engine/pkg/dialog"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeConnected        EventType = "connected"
	EventTypeSessionStarted   EventType = "dialog.session_started"
	EventTypeLineStarted      EventType = "dialog.line_started"
	EventTypeSessionEnded     EventType = "dialog.session_ended"
	EventTypeGameStateUpdated EventType = "game.state_updated"
)

const (
	publishTimeout = 500 * time.Millisecond
	queueSize      = 64
)

var (
	ErrBroadcasterClosed = errors.New("broadcaster closed")
	ErrQueueFull         = errors.New("event queue full")
)

// Event represents a generic event structure
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	GameID    string         `json:"game_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Channel returns the pub/sub channel for a game
func Channel(gameID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", gameID.String())
}

// Broadcaster publishes dialog events for one game to Redis Pub/Sub. It
// implements dialog.Listener. Events are queued and published by a background
// goroutine so the game loop never waits on Redis; when the queue is full the
// event is dropped.
type Broadcaster struct {
	redisClient *redis.Client
	gameID      uuid.UUID
	logger      *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

var _ dialog.Listener = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster and starts its publisher.
// Call Close to flush queued events.
func NewBroadcaster(redisClient *redis.Client, gameID uuid.UUID, logger *slog.Logger) *Broadcaster {
	b := newBroadcaster(redisClient, gameID, logger, queueSize)
	go b.run()
	return b
}

func newBroadcaster(redisClient *redis.Client, gameID uuid.UUID, logger *slog.Logger, size int) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		gameID:      gameID,
		logger:      logger,
		queue:       make(chan Event, size),
		done:        make(chan struct{}),
	}
}

// Close stops accepting events and waits for the queued ones to be published.
// It is safe to call more than once.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	<-b.done
}

func (b *Broadcaster) run() {
	defer close(b.done)
	for event := range b.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		_ = b.publishToGame(ctx, event)
		cancel()
	}
}

func (b *Broadcaster) SessionStarted(s dialog.Session) {
	b.publish(Event{
		Type:      EventTypeSessionStarted,
		SessionID: s.ID.String(),
		Data: map[string]any{
			"mode":    s.Mode.String(),
			"starter": s.Starter.String(),
		},
	})
}

func (b *Broadcaster) LineStarted(s dialog.Session, line dialog.Line) {
	b.publish(Event{
		Type:      EventTypeLineStarted,
		SessionID: s.ID.String(),
		Data: map[string]any{
			"speaker":  line.Speaker.String(),
			"sentence": line.Sentence,
		},
	})
}

func (b *Broadcaster) SessionEnded(s dialog.Session) {
	b.publish(Event{
		Type:      EventTypeSessionEnded,
		SessionID: s.ID.String(),
		Data: map[string]any{
			"mode": s.Mode.String(),
		},
	})
}

// PublishGameStateUpdated queues a game.state_updated event. It reports
// ErrQueueFull or ErrBroadcasterClosed when the event is dropped.
func (b *Broadcaster) PublishGameStateUpdated(ctx context.Context, sessions int, flags map[string]bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.enqueue(Event{
		Type: EventTypeGameStateUpdated,
		Data: map[string]any{
			"sessions": sessions,
			"flags":    maps.Clone(flags),
		},
	})
}

func (b *Broadcaster) publish(event Event) {
	if err := b.enqueue(event); err != nil {
		b.logger.Warn("Dropping event", "error", err, "event_type", event.Type, "session_id", event.SessionID)
	}
}

// enqueue hands an event to the publisher without blocking.
func (b *Broadcaster) enqueue(event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBroadcasterClosed
	}

	select {
	case b.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// publishToGame publishes an event to the game-specific channel
func (b *Broadcaster) publishToGame(ctx context.Context, event Event) error {
	channel := Channel(b.gameID)
	event.GameID = b.gameID.String()

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"session_id", event.SessionID,
	)
	return nil
}

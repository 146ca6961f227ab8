// Package events publishes the outcome of every content mutation so admin
// clients can show success and error notifications.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/folio-works/portfolio-backend/internal/logger"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	channel = "portfolio:events"
)

// Event is a single mutation outcome.
type Event struct {
	Op        string    `json:"op"`
	Status    string    `json:"status"`
	Resource  string    `json:"resource"`
	ID        string    `json:"id,omitempty"`
	Message   string    `json:"message"`
	Refs      []string  `json:"refs,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Success builds a success event.
func Success(resource, op, id, message string) Event {
	return Event{Op: op, Status: StatusSuccess, Resource: resource, ID: id, Message: message}
}

// Failure builds an error event from err.
func Failure(resource, op, id string, err error) Event {
	return Event{Op: op, Status: StatusError, Resource: resource, ID: id, Message: err.Error()}
}

// Publisher accepts events. Publishing never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Bus is a Publisher that can also be subscribed to.
type Bus interface {
	Publisher
	// Subscribe returns a channel of events and a function that ends the
	// subscription.
	Subscribe(ctx context.Context) (<-chan Event, func())
}

// stamp fills the timestamp and, for admin requests, the acting admin.
func stamp(ctx context.Context, e Event) Event {
	if e.Actor == "" {
		e.Actor = logger.AdminUID(ctx)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return e
}

func logEvent(log *zap.Logger, e Event) {
	fields := []zap.Field{
		zap.String("resource", e.Resource),
		zap.String("op", e.Op),
		zap.String("id", e.ID),
		zap.String("message", e.Message),
	}
	if e.Actor != "" {
		fields = append(fields, zap.String("admin_uid", e.Actor))
	}
	if e.Status == StatusError {
		log.Warn("mutation failed", fields...)
		return
	}
	log.Info("mutation succeeded", fields...)
}

// RedisBus fans events out through Redis pub/sub so every instance's
// subscribers see them.
type RedisBus struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisBus(client *redis.Client, log *zap.Logger) *RedisBus {
	return &RedisBus{client: client, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, e Event) {
	e = stamp(ctx, e)
	logEvent(b.log, e)

	data, err := json.Marshal(e)
	if err != nil {
		b.log.Warn("failed to encode event", zap.Error(err))
		return
	}
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		b.log.Warn("failed to publish event", zap.Error(err))
	}
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Event, func()) {
	sub := b.client.Subscribe(ctx, channel)
	out := make(chan Event, 16)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				b.log.Warn("dropping undecodable event", zap.Error(err))
				continue
			}
			select {
			case out <- e:
			default:
			}
		}
	}()

	return out, func() { _ = sub.Close() }
}

// MemoryBus delivers events to subscribers of this process only. Slow
// subscribers miss events rather than block publishers.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
	log  *zap.Logger
}

func NewMemoryBus(log *zap.Logger) *MemoryBus {
	return &MemoryBus{subs: make(map[chan Event]struct{}), log: log}
}

func (b *MemoryBus) Publish(ctx context.Context, e Event) {
	e = stamp(ctx, e)
	logEvent(b.log, e)

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (b *MemoryBus) Subscribe(_ context.Context) (<-chan Event, func()) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

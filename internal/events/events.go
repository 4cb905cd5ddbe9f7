// Package events pushes package change notifications through Redis pub/sub
// so open dashboards refresh without polling. Delivery is best effort and
// eventually consistent; a missed message only costs a manual refresh.
package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"colistrack/internal/cache"
	"colistrack/internal/model"
)

// Event kinds.
const (
	KindCreated      = "created"
	KindUpdated      = "updated"
	KindDeleted      = "deleted"
	KindHistoryAdded = "history_added"
)

// PackageEvent is the message published on every package mutation.
type PackageEvent struct {
	Kind           string          `json:"kind"`
	PackageID      string          `json:"package_id"`
	UserTrackingID string          `json:"user_tracking_id,omitempty"`
	Snapshot       json.RawMessage `json:"snapshot,omitempty"`
	At             time.Time       `json:"at"`
}

// PackageChannel names the channel carrying changes to a single package.
func PackageChannel(packageID string) string {
	return "colis.package." + packageID
}

// UserChannel names the channel carrying changes to all packages owned by a
// tracking identifier.
func UserChannel(userTrackingID string) string {
	return "colis.user." + userTrackingID
}

// Publisher pushes package events. Implementations must never block a
// mutation on a failed publish.
type Publisher interface {
	PublishPackageEvent(ctx context.Context, event PackageEvent)
}

// Bus is a Redis-backed Publisher with a subscribe side for live views.
type Bus struct {
	cache *cache.Client
	log   *zap.Logger
}

var _ Publisher = (*Bus)(nil)

// NewBus creates an event bus over the shared Redis client.
func NewBus(cache *cache.Client, log *zap.Logger) *Bus {
	return &Bus{cache: cache, log: log}
}

// PublishPackageEvent fans the event out to the per-package channel and,
// when an owner is known, the per-owner channel. Errors are logged and
// swallowed: notifications never fail the mutation that caused them.
func (b *Bus) PublishPackageEvent(ctx context.Context, event PackageEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		b.log.Error("marshal package event", zap.Error(err))
		return
	}

	channels := []string{PackageChannel(event.PackageID)}
	if event.UserTrackingID != "" {
		channels = append(channels, UserChannel(event.UserTrackingID))
	}
	for _, channel := range channels {
		if err := b.cache.Publish(ctx, channel, payload); err != nil {
			b.log.Warn("publish package event",
				zap.String("channel", channel),
				zap.Error(err))
		}
	}
}

// Subscribe registers a handler for events on a channel and returns a cancel
// function that unsubscribes and stops the delivery goroutine. Malformed
// payloads are dropped.
func (b *Bus) Subscribe(ctx context.Context, channel string, handler func(PackageEvent)) (cancel func()) {
	sub := b.cache.Subscribe(ctx, channel)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event PackageEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.log.Warn("drop malformed package event", zap.Error(err))
					continue
				}
				handler(event)
			}
		}
	}()

	return func() {
		_ = sub.Close()
		<-done
	}
}

// SnapshotOf serializes a package for embedding in an event. A nil package
// (deletes) yields nil.
func SnapshotOf(pkg *model.Package) json.RawMessage {
	if pkg == nil {
		return nil
	}
	payload, err := json.Marshal(pkg)
	if err != nil {
		return nil
	}
	return payload
}

// NopPublisher discards events; used in tests.
type NopPublisher struct{}

// PublishPackageEvent implements Publisher.
func (NopPublisher) PublishPackageEvent(ctx context.Context, event PackageEvent) {}

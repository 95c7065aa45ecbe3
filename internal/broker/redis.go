// internal/broker/redis.go
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultChannel is the shared pub/sub channel every server process subscribes to.
const DefaultChannel = "gambit_events"

// DefaultSettlementQueue is the Redis list downstream notifiers consume.
const DefaultSettlementQueue = "gambit_settlements"

// Connect initializes a Redis client and verifies connectivity.
func Connect(addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Redis implements Broker over Redis pub/sub and a list-backed queue.
type Redis struct {
	rdb     *redis.Client
	channel string
	queue   string
	log     *logrus.Logger
}

func NewRedis(rdb *redis.Client, channel, queue string, log *logrus.Logger) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	if queue == "" {
		queue = DefaultSettlementQueue
	}
	return &Redis{rdb: rdb, channel: channel, queue: queue, log: log}
}

// Publish sends the event to every subscribed process. Fire-and-forget beyond
// the quick network send.
func (b *Redis) Publish(ctx context.Context, ev Event) error {
	data, err := ev.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal event %s for game %s: %w", ev.Type, ev.GameID, err)
	}
	if err := b.rdb.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %q: %w", b.channel, err)
	}
	return nil
}

// Subscribe opens a pub/sub subscription and decodes events onto the returned
// channel until stop is called or the context ends.
func (b *Redis) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	ps := b.rdb.Subscribe(ctx, b.channel)
	// force the subscription to be established before returning
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %q: %w", b.channel, err)
	}
	out := make(chan Event, 64)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.WithError(err).Warn("dropping undecodable event payload")
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	stop := func() { _ = ps.Close() }
	return out, stop, nil
}

// EnqueueSettlement pushes a finished-game settlement onto the notifier queue.
func (b *Redis) EnqueueSettlement(ctx context.Context, s Settlement) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement for game %s: %w", s.GameID, err)
	}
	if err := b.rdb.RPush(ctx, b.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to list %q: %w", b.queue, err)
	}
	return nil
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Danilov210/Trip-Planner/internal/models"
)

const bodyField = "body"

// backlogID is the XREADGROUP id that reads the consumer's own pending
// entries (delivered earlier but never acknowledged) instead of new
// ones.
const backlogID = "0"

// RedisBroker carries Job messages on a Redis stream. Publishing XADDs
// to the stream; workers consume through a consumer group, so each
// entry is delivered to one group member and stays pending until it is
// acknowledged (at-least-once).
//
// The client is long-lived: dialed once at process startup and closed
// at shutdown, never reopened per operation.
type RedisBroker struct {
	client *redis.Client
	topic  string

	mu      sync.Mutex
	drained map[string]bool // consumer -> own backlog fully re-read
}

// NewRedisBroker dials Redis, retrying a fixed number of times with a
// fixed delay on transient unavailability before giving up. A failure
// here is fatal to the caller, not retried per message.
func NewRedisBroker(addr, topic string, retries int, delay time.Duration) (*RedisBroker, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		if err = rdb.Ping(context.Background()).Err(); err == nil {
			return &RedisBroker{client: rdb, topic: topic, drained: make(map[string]bool)}, nil
		}
		slog.Warn("broker not available, retrying", "attempt", attempt, "retries", retries, "error", err)
		time.Sleep(delay)
	}
	rdb.Close()
	return nil, fmt.Errorf("broker not available after %d retries: %w", retries, err)
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}

// Publish appends one Job message to the stream.
func (b *RedisBroker) Publish(ctx context.Context, msg models.JobMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal job message: %w", err)
	}
	return b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.topic,
		Values: map[string]interface{}{bodyField: body},
	}).Err()
}

// EnsureGroup creates the consumer group at the start of the stream if
// it does not exist yet.
func (b *RedisBroker) EnsureGroup(ctx context.Context, group string) error {
	err := b.client.XGroupCreateMkStream(ctx, b.topic, group, "0").Err()
	if err != nil && strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}

// Delivery is one received Job message plus the handle needed to
// acknowledge it.
type Delivery struct {
	Msg     models.JobMessage
	EntryID string
}

// Consume blocks until one entry is delivered to this consumer, or the
// context is cancelled.
//
// The first reads for a consumer use id "0", which re-delivers entries
// this consumer received on a previous run but never acknowledged.
// That re-read is the crash-recovery path: a worker that died mid-job
// picks the job up again on restart. Only once the backlog is empty
// does the consumer switch to ">" for new entries. Consumer names must
// therefore be stable across restarts, which they are (worker-0..N-1).
func (b *RedisBroker) Consume(ctx context.Context, group, consumer string) (Delivery, error) {
	for {
		id := b.nextReadID(consumer)
		streams, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: consumer,
			Streams:  []string{b.topic, id},
			Count:    1,
			Block:    0,
		}).Result()
		if err != nil {
			return Delivery{}, err
		}
		if len(streams) == 0 || len(streams[0].Messages) == 0 {
			// A backlog read returns immediately; an empty one means the
			// pending entries from the previous run are all handled.
			b.markDrained(consumer)
			continue
		}

		entry := streams[0].Messages[0]
		raw, ok := entry.Values[bodyField].(string)
		if !ok {
			// Malformed entry: acknowledge so it is not redelivered forever.
			b.client.XAck(ctx, b.topic, group, entry.ID)
			return Delivery{}, fmt.Errorf("stream entry %s has no %s field", entry.ID, bodyField)
		}

		var msg models.JobMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			b.client.XAck(ctx, b.topic, group, entry.ID)
			return Delivery{}, fmt.Errorf("unmarshal stream entry %s: %w", entry.ID, err)
		}
		return Delivery{Msg: msg, EntryID: entry.ID}, nil
	}
}

// nextReadID returns the XREADGROUP id for this consumer's next read:
// the backlog id until the consumer's pending entries from a previous
// run are drained, new entries afterwards.
func (b *RedisBroker) nextReadID(consumer string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drained[consumer] {
		return ">"
	}
	return backlogID
}

func (b *RedisBroker) markDrained(consumer string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drained[consumer] = true
}

// Ack commits a processed entry to the group.
func (b *RedisBroker) Ack(ctx context.Context, group, entryID string) error {
	return b.client.XAck(ctx, b.topic, group, entryID).Err()
}

package relayer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a durable work queue backed by a Redis list plus a set
// for dedup, so a relayer restart neither loses in-flight work nor
// reprocesses an already-queued log twice (§4.4).
type RedisQueue struct {
	rdb    *redis.Client
	stream string
	seen   string
}

func NewRedisQueue(rdb *redis.Client, name string) *RedisQueue {
	return &RedisQueue{
		rdb:    rdb,
		stream: "relayer:queue:" + name,
		seen:   "relayer:seen:" + name,
	}
}

// Enqueue pushes item onto the queue unless its Key() has already been
// seen, making indexer restarts idempotent.
func (q *RedisQueue) Enqueue(ctx context.Context, item WorkItem) error {
	added, err := q.rdb.SAdd(ctx, q.seen, item.Key()).Result()
	if err != nil {
		return fmt.Errorf("relayer: queue dedup check: %w", err)
	}
	if added == 0 {
		return nil // already queued
	}
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("relayer: marshal work item: %w", err)
	}
	return q.rdb.LPush(ctx, q.stream, b).Err()
}

// Dequeue blocks up to timeout for the next WorkItem. Returns
// (WorkItem{}, false, nil) on timeout with no error.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (WorkItem, bool, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.stream).Result()
	if err == redis.Nil {
		return WorkItem{}, false, nil
	}
	if err != nil {
		return WorkItem{}, false, fmt.Errorf("relayer: dequeue: %w", err)
	}
	// res[0] is the key name, res[1] is the payload.
	var item WorkItem
	if err := json.Unmarshal([]byte(res[1]), &item); err != nil {
		return WorkItem{}, false, fmt.Errorf("relayer: unmarshal work item: %w", err)
	}
	return item, true, nil
}

// Requeue pushes a failed item back for a later retry, without touching
// the dedup set (it's still "seen").
func (q *RedisQueue) Requeue(ctx context.Context, item WorkItem) error {
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("relayer: marshal work item: %w", err)
	}
	return q.rdb.LPush(ctx, q.stream, b).Err()
}

// Package counter accumulates crate download counts in Redis and drains
// them to a durable sink in batches, keeping the download endpoint off the
// database hot path.
package counter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter records download hits and drains accumulated totals.
type Counter interface {
	// Increment adds one download for the version id.
	Increment(ctx context.Context, versionID int64) error
	// Drain atomically takes all accumulated totals, leaving the
	// counters reset. The caller persists the returned map.
	Drain(ctx context.Context) (map[int64]int64, error)
	// Restore re-adds drained totals that could not be persisted so
	// they are retried on the next drain.
	Restore(ctx context.Context, totals map[int64]int64) error
}

// RedisCounter implements Counter on a Redis hash, one field per version.
type RedisCounter struct {
	client *redis.Client
	key    string
}

// NewRedis builds a RedisCounter. key names the backing hash.
func NewRedis(client *redis.Client, key string) *RedisCounter {
	if key == "" {
		key = "downloads:pending"
	}
	return &RedisCounter{client: client, key: key}
}

func (c *RedisCounter) Increment(ctx context.Context, versionID int64) error {
	field := strconv.FormatInt(versionID, 10)
	if err := c.client.HIncrBy(ctx, c.key, field, 1).Err(); err != nil {
		return fmt.Errorf("counter: increment version %d: %w", versionID, err)
	}
	return nil
}

// drainScript reads the whole hash and deletes it in one step so hits
// arriving during a drain land in the next batch instead of being lost.
var drainScript = redis.NewScript(`
local vals = redis.call('HGETALL', KEYS[1])
redis.call('DEL', KEYS[1])
return vals
`)

func (c *RedisCounter) Drain(ctx context.Context) (map[int64]int64, error) {
	raw, err := drainScript.Run(ctx, c.client, []string{c.key}).Slice()
	if err != nil {
		return nil, fmt.Errorf("counter: drain: %w", err)
	}

	out := make(map[int64]int64, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		field, ok := raw[i].(string)
		if !ok {
			continue
		}
		value, ok := raw[i+1].(string)
		if !ok {
			continue
		}

		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		out[id] = n
	}
	return out, nil
}

func (c *RedisCounter) Restore(ctx context.Context, totals map[int64]int64) error {
	pipe := c.client.Pipeline()
	for id, n := range totals {
		pipe.HIncrBy(ctx, c.key, strconv.FormatInt(id, 10), n)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("counter: restore %d totals: %w", len(totals), err)
	}
	return nil
}

// Sink persists drained totals.
type Sink interface {
	AddDownloads(ctx context.Context, totals map[int64]int64) error
}

// Flusher drains a Counter into a Sink on a fixed interval.
type Flusher struct {
	counter  Counter
	sink     Sink
	interval time.Duration
	onError  func(error)
	done     chan struct{}
	stopped  chan struct{}
}

// NewFlusher builds a Flusher. onError observes flush failures and may be
// nil.
func NewFlusher(counter Counter, sink Sink, interval time.Duration, onError func(error)) *Flusher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Flusher{
		counter:  counter,
		sink:     sink,
		interval: interval,
		onError:  onError,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start runs the flush loop until Close is called.
func (f *Flusher) Start() {
	go func() {
		defer close(f.stopped)

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				f.flush()
			case <-f.done:
				// final drain so counts accumulated since the last
				// tick survive shutdown
				f.flush()
				return
			}
		}
	}()
}

func (f *Flusher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	totals, err := f.counter.Drain(ctx)
	if err != nil {
		f.report(err)
		return
	}
	if len(totals) == 0 {
		return
	}

	if err := f.sink.AddDownloads(ctx, totals); err != nil {
		f.report(fmt.Errorf("counter: persist %d totals: %w", len(totals), err))

		// put the drained counts back so a transient sink failure does
		// not lose them
		if rerr := f.counter.Restore(ctx, totals); rerr != nil {
			f.report(rerr)
		}
	}
}

func (f *Flusher) report(err error) {
	if f.onError != nil {
		f.onError(err)
	}
}

// Close stops the loop after one final flush.
func (f *Flusher) Close() error {
	close(f.done)
	<-f.stopped
	return nil
}

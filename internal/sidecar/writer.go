// Package sidecar performs the optional secondary Redis writes that ride
// along with the primary publish: key persistence, a per-session index, a
// per-day counter, and a capped archive stream. Every write is fire and
// forget; a failure here must never fail the publish.
package sidecar

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/krsfer/claude-hooks-sub000/internal/envelope"
	"github.com/krsfer/claude-hooks-sub000/internal/logutil"
)

const (
	writeTimeout = 2 * time.Second
	streamMaxLen = 10000
)

// Writer issues the secondary writes over a shared Redis client.
type Writer struct {
	client redis.UniversalClient
	ttl    time.Duration
	stream string
	now    func() time.Time
}

// Options configure the writer.
type Options struct {
	Client redis.UniversalClient
	TTL    time.Duration
	Stream string
	Now    func() time.Time
}

// New creates a sidecar writer.
func New(opts Options) *Writer {
	w := &Writer{
		client: opts.Client,
		ttl:    opts.TTL,
		stream: opts.Stream,
		now:    opts.Now,
	}
	if w.ttl <= 0 {
		w.ttl = 24 * time.Hour
	}
	if w.stream == "" {
		w.stream = "hooks:stream"
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

// Record performs all secondary writes for one published envelope.
func (w *Writer) Record(ctx context.Context, env envelope.Envelope, encoded []byte) {
	if w == nil || w.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	key := persistKey(env.SessionKey, env.Sequence)
	if err := w.client.Set(ctx, key, encoded, w.ttl).Err(); err != nil {
		w.report("persist", key, err)
	}

	idx := indexKey(env.SessionKey)
	if err := w.client.ZAdd(ctx, idx, redis.Z{
		Score:  float64(env.Sequence),
		Member: env.ID,
	}).Err(); err != nil {
		w.report("index", idx, err)
	}

	day := dayKey(w.now())
	if err := w.client.Incr(ctx, day).Err(); err != nil {
		w.report("counter", day, err)
	}

	if err := w.client.XAdd(ctx, &redis.XAddArgs{
		Stream: w.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"data": encoded,
		},
	}).Err(); err != nil {
		w.report("stream", w.stream, err)
	}
}

func persistKey(sessionKey string, sequence int64) string {
	return fmt.Sprintf("hook:%s:%d", sessionKey, sequence)
}

func indexKey(sessionKey string) string {
	return "hook:index:" + sessionKey
}

func dayKey(t time.Time) string {
	return "hook:count:" + t.UTC().Format("2006-01-02")
}

func (w *Writer) report(write, key string, err error) {
	logutil.Debug("sidecar write failed", map[string]interface{}{
		"write": write,
		"key":   key,
		"error": err.Error(),
	})
}

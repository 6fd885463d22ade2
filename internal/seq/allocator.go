// Package seq assigns per-session sequence numbers across independent
// short-lived processes. State lives in a flat counter file guarded by a
// lock directory; directory creation is atomic on every filesystem the
// publisher targets, which makes it a portable advisory mutex.
package seq

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/krsfer/claude-hooks-sub000/internal/logutil"
	"github.com/krsfer/claude-hooks-sub000/internal/metrics"
)

const (
	// DefaultLockAttempts and DefaultLockInterval bound lock acquisition to
	// roughly half a second before the timestamp fallback kicks in.
	DefaultLockAttempts = 5
	DefaultLockInterval = 100 * time.Millisecond

	// fallbackModulus truncates the nanosecond clock to nine digits so the
	// fallback value stays well inside int64 arithmetic downstream.
	fallbackModulus = 1_000_000_000
)

// Allocator hands out sequence numbers keyed by session. Safe for use from
// concurrent processes sharing the same counter file.
type Allocator struct {
	path         string
	lockAttempts int
	lockInterval time.Duration
	now          func() time.Time
}

// Option customizes an Allocator.
type Option func(*Allocator)

// WithLockRetry overrides the lock acquisition bound.
func WithLockRetry(attempts int, interval time.Duration) Option {
	return func(a *Allocator) {
		if attempts > 0 {
			a.lockAttempts = attempts
		}
		if interval > 0 {
			a.lockInterval = interval
		}
	}
}

// WithClock overrides the clock used for the fallback value.
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates an allocator over the given counter file. The file is created
// on first allocation.
func New(counterFile string, opts ...Option) *Allocator {
	a := &Allocator{
		path:         counterFile,
		lockAttempts: DefaultLockAttempts,
		lockInterval: DefaultLockInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate returns the next sequence number for the session. Under an
// uncontended lock the value increments by exactly 1 per call. When the lock
// cannot be acquired within the retry bound the allocator returns a
// timestamp-derived value instead: callers never block past the bound and
// never see an error from contention, at the cost of a gap in the sequence.
// The fallback can, in rare cases, collide with or undercut a previously
// issued counter value for the same session; consumers treat sequence as a
// display-ordering hint, not an identifier.
func (a *Allocator) Allocate(sessionKey string) (int64, error) {
	if sessionKey == "" {
		return 0, errors.New("session key is required")
	}

	if !a.acquireLock() {
		metrics.ObserveLockFallback()
		seq := a.fallback()
		logutil.Debug("sequence lock contended, using timestamp fallback", map[string]interface{}{
			"session":  sessionKey,
			"sequence": seq,
		})
		return seq, nil
	}
	// Release unconditionally so a failed write can never deadlock future
	// callers.
	defer a.releaseLock()

	next := a.nextForSession(sessionKey)
	if err := a.rewrite(sessionKey, next); err != nil {
		logutil.Error("counter file rewrite failed", err, map[string]interface{}{
			"session": sessionKey,
		})
	}
	return next, nil
}

// nextForSession reads the counter file and computes the successor value for
// the session. Must be called with the lock held.
func (a *Allocator) nextForSession(sessionKey string) int64 {
	data, err := os.ReadFile(a.path)
	if err != nil {
		// Absent or unreadable file: the session starts fresh.
		return 1
	}
	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found || key != sessionKey {
			continue
		}
		current, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || current < 0 {
			// Corrupt record: treat the session as starting fresh.
			return 1
		}
		return current + 1
	}
	return 1
}

// rewrite persists the new counter with remove-old-line, append-new-line
// semantics: the updated content lands in a temp file that is renamed over
// the original, so a concurrent reader sees either the old complete file or
// the new one, never a torn record.
func (a *Allocator) rewrite(sessionKey string, counter int64) error {
	var kept []string
	if data, err := os.ReadFile(a.path); err == nil {
		prefix := sessionKey + ":"
		for _, line := range strings.Split(string(data), "\n") {
			if line == "" || strings.HasPrefix(line, prefix) {
				continue
			}
			kept = append(kept, line)
		}
	}
	kept = append(kept, fmt.Sprintf("%s:%d", sessionKey, counter))

	tmp, err := os.CreateTemp(filepath.Dir(a.path), ".counters-*")
	if err != nil {
		return fmt.Errorf("create temp counter file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(strings.Join(kept, "\n") + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write counter file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close counter file: %w", err)
	}
	if err := os.Rename(tmpName, a.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace counter file: %w", err)
	}
	return nil
}

func (a *Allocator) lockDir() string {
	return a.path + ".lock"
}

func (a *Allocator) acquireLock() bool {
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return false
	}
	for attempt := 0; attempt < a.lockAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(a.lockInterval)
		}
		err := os.Mkdir(a.lockDir(), 0o755)
		if err == nil {
			return true
		}
		if !os.IsExist(err) {
			return false
		}
	}
	return false
}

func (a *Allocator) releaseLock() {
	_ = os.Remove(a.lockDir())
}

// fallback derives a positive value from the high-resolution clock.
func (a *Allocator) fallback() int64 {
	seq := a.now().UnixNano() % fallbackModulus
	if seq <= 0 {
		seq = 1
	}
	return seq
}

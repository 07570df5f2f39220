// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package views counts post views. A view is committed only after the
// reader has stayed on the post for a dwell period; navigating away
// before then cancels the pending count. Each session counts a given
// post at most once, enforced with a marker key in Valkey.
package views

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultDwell is how long a reader must stay on a post before the
// view is committed.
const DefaultDwell = 10 * time.Second

// Counter commits a single view for a post. *store.PostStore satisfies
// this.
type Counter interface {
	IncrementViews(postID string) error
}

// Tracker debounces view counting. Schedule arms a timer per
// (session, post) pair; if the pair is not cancelled before the dwell
// period elapses, the view is committed once and the pair is marked in
// Valkey so later visits in the same session do not count again.
type Tracker struct {
	counter Counter
	client  *redis.Client
	dwell   time.Duration
	ttl     time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

// NewTracker creates a Tracker committing views through counter and
// keeping session markers in client with the given lifetime. A zero
// dwell uses DefaultDwell.
func NewTracker(counter Counter, client *redis.Client, dwell, markerTTL time.Duration, logger *slog.Logger) *Tracker {
	if dwell <= 0 {
		dwell = DefaultDwell
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		counter: counter,
		client:  client,
		dwell:   dwell,
		ttl:     markerTTL,
		logger:  logger,
		pending: make(map[string]*time.Timer),
	}
}

func markerKey(sessionID, postID string) string {
	return fmt.Sprintf("viewed:%s:%s", sessionID, postID)
}

// Schedule arms a deferred view count for the given session and post.
// It returns immediately. Call Cancel with the same pair when the
// reader navigates away before the dwell period elapses.
//
// Scheduling a pair that is already pending, or already marked as
// viewed for this session, is a no-op. Counting failures are logged
// and swallowed; views are best-effort and must never surface to the
// reader.
func (t *Tracker) Schedule(ctx context.Context, sessionID, postID string) {
	if sessionID == "" || postID == "" {
		return
	}

	viewed, err := t.client.Exists(ctx, markerKey(sessionID, postID)).Result()
	if err != nil {
		t.logger.Warn("view marker check failed", "post", postID, "error", err)
		return
	}
	if viewed > 0 {
		return
	}

	key := sessionID + "\x00" + postID

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if _, ok := t.pending[key]; ok {
		return
	}
	t.pending[key] = time.AfterFunc(t.dwell, func() {
		t.commit(sessionID, postID, key)
	})
}

// Cancel discards a pending view for the pair. Safe to call whether or
// not anything is pending.
func (t *Tracker) Cancel(sessionID, postID string) {
	key := sessionID + "\x00" + postID

	t.mu.Lock()
	timer, ok := t.pending[key]
	if ok {
		delete(t.pending, key)
	}
	t.mu.Unlock()

	if ok {
		timer.Stop()
	}
}

func (t *Tracker) commit(sessionID, postID, key string) {
	t.mu.Lock()
	_, ok := t.pending[key]
	if ok {
		delete(t.pending, key)
	}
	closed := t.closed
	t.mu.Unlock()
	if !ok || closed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Mark first. If the increment then fails we lose one view, which
	// beats double counting on a retry.
	set, err := t.client.SetNX(ctx, markerKey(sessionID, postID), "1", t.ttl).Result()
	if err != nil {
		t.logger.Warn("view marker set failed", "post", postID, "error", err)
		return
	}
	if !set {
		return
	}

	if err := t.counter.IncrementViews(postID); err != nil {
		t.logger.Warn("view count failed", "post", postID, "error", err)
	}
}

// Close cancels all pending views. The tracker accepts no further
// schedules afterwards.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	timers := make([]*time.Timer, 0, len(t.pending))
	for _, timer := range t.pending {
		timers = append(timers, timer)
	}
	t.pending = make(map[string]*time.Timer)
	t.mu.Unlock()

	for _, timer := range timers {
		timer.Stop()
	}
}

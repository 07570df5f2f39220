// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package live delivers comment updates to connected readers. Each
// subscriber receives the full newest-first comment set for its post
// on every change, never deltas. Change notifications travel through
// Valkey pub/sub so every instance behind the load balancer fans out
// to its own subscribers.
package live

import (
	"context"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"curiousblogs/internal/models"
)

const changeChannel = "comments:changed"

// Lister fetches the current comment set for a post.
// *store.CommentStore satisfies this.
type Lister interface {
	ListByPost(postID string) ([]models.Comment, error)
}

// Subscription is one reader's live view of a post's comments. C
// carries the full re-sorted set on every change, starting with an
// initial snapshot. Done is closed when the subscription ends; receive
// from C and Done together. Call Cancel when the reader disconnects.
type Subscription struct {
	C    <-chan []models.Comment
	Done <-chan struct{}

	ch     chan []models.Comment
	done   chan struct{}
	detach func()
	once   sync.Once
}

// Cancel detaches the subscription. Idempotent.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.detach()
		close(s.done)
	})
}

// Hub tracks comment subscriptions per post and fans out fresh
// snapshots when a post's comments change.
type Hub struct {
	lister Lister
	client *redis.Client
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	closed bool

	pubsub *redis.PubSub
	quit   chan struct{}
}

// NewHub creates a Hub and starts listening for change notifications
// from other instances. Call Close on shutdown.
func NewHub(lister Lister, client *redis.Client, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		lister: lister,
		client: client,
		logger: logger,
		subs:   make(map[string]map[*Subscription]struct{}),
		quit:   make(chan struct{}),
	}
	h.pubsub = client.Subscribe(context.Background(), changeChannel)
	go h.listen()
	return h
}

// Subscribe attaches a live view for the post. The initial snapshot is
// fetched asynchronously and arrives on C like any other update.
func (h *Hub) Subscribe(postID string) *Subscription {
	ch := make(chan []models.Comment, 1)
	done := make(chan struct{})
	sub := &Subscription{C: ch, Done: done, ch: ch, done: done}
	sub.detach = func() {
		h.mu.Lock()
		if set, ok := h.subs[postID]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, postID)
			}
		}
		h.mu.Unlock()
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.once.Do(func() { close(done) })
		return sub
	}
	set, ok := h.subs[postID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[postID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	go h.push(postID, sub)
	return sub
}

// Notify announces that a post's comments changed. Local subscribers
// get a fresh snapshot and the change is published so other instances
// do the same.
func (h *Hub) Notify(ctx context.Context, postID string) {
	h.fanout(postID)
	if err := h.client.Publish(ctx, changeChannel, postID).Err(); err != nil {
		h.logger.Warn("comment change publish failed", "post", postID, "error", err)
	}
}

// listen refetches and fans out whenever another instance announces a
// change. Messages published by this instance arrive here too; the
// extra local fanout is harmless, subscribers just see the same
// snapshot twice.
func (h *Hub) listen() {
	ch := h.pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.fanout(msg.Payload)
		case <-h.quit:
			return
		}
	}
}

func (h *Hub) fanout(postID string) {
	h.mu.Lock()
	if len(h.subs[postID]) == 0 {
		h.mu.Unlock()
		return
	}
	targets := make([]*Subscription, 0, len(h.subs[postID]))
	for sub := range h.subs[postID] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	comments, err := h.lister.ListByPost(postID)
	if err != nil {
		h.logger.Warn("comment refetch failed", "post", postID, "error", err)
		return
	}

	for _, sub := range targets {
		sub.send(comments)
	}
}

// push delivers the initial snapshot to a new subscriber.
func (h *Hub) push(postID string, sub *Subscription) {
	comments, err := h.lister.ListByPost(postID)
	if err != nil {
		h.logger.Warn("comment snapshot failed", "post", postID, "error", err)
		return
	}
	sub.send(comments)
}

// send delivers latest-wins: a slow receiver keeps only the newest
// snapshot instead of backing up the hub.
func (s *Subscription) send(comments []models.Comment) {
	for {
		select {
		case <-s.done:
			return
		case s.ch <- comments:
			return
		default:
			// Buffer full with a stale snapshot. Drop it and retry.
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// Close detaches every subscriber and stops the pub/sub listener.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var all []*Subscription
	for _, set := range h.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	h.subs = make(map[string]map[*Subscription]struct{})
	h.mu.Unlock()

	close(h.quit)
	h.pubsub.Close()
	for _, sub := range all {
		sub.once.Do(func() { close(sub.done) })
	}
}

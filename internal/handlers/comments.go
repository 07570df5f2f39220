// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"curiousblogs/internal/cache"
	"curiousblogs/internal/live"
	"curiousblogs/internal/middleware"
	"curiousblogs/internal/models"
	"curiousblogs/internal/render"
	"curiousblogs/internal/session"
	"curiousblogs/internal/store"
	"curiousblogs/internal/views"
)

// Comments groups the handlers for reader interaction on a post: the
// comment form, the live comment stream, and the deferred view count
// beacons.
type Comments struct {
	renderer     *render.Renderer
	postStore    *store.PostStore
	authorStore  *store.AuthorStore
	commentStore *store.CommentStore
	hub          *live.Hub
	tracker      *views.Tracker
	sessions     *session.Store
	pageCache    *cache.PageCache
	baseURL      string

	upgrader websocket.Upgrader
}

// NewComments creates a new Comments handler group.
func NewComments(renderer *render.Renderer, postStore *store.PostStore, authorStore *store.AuthorStore, commentStore *store.CommentStore, hub *live.Hub, tracker *views.Tracker, sessions *session.Store, pageCache *cache.PageCache, baseURL string) *Comments {
	return &Comments{
		renderer:     renderer,
		postStore:    postStore,
		authorStore:  authorStore,
		commentStore: commentStore,
		hub:          hub,
		tracker:      tracker,
		sessions:     sessions,
		pageCache:    pageCache,
		baseURL:      baseURL,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// findPublished resolves the post a reader interaction targets, or
// writes a 404 and returns nil.
func (c *Comments) findPublished(w http.ResponseWriter, r *http.Request) *models.Post {
	id := chi.URLParam(r, "id")
	post, err := c.postStore.FindPublished(id)
	if err != nil {
		slog.Error("find post failed", "post", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if post == nil {
		http.NotFound(w, r)
		return nil
	}
	return post
}

// Submit handles the comment form. An empty message re-renders the
// post page with the input preserved; a valid one is stored, fanned
// out to live subscribers, and the reader lands back on the comments.
func (c *Comments) Submit(w http.ResponseWriter, r *http.Request) {
	post := c.findPublished(w, r)
	if post == nil {
		return
	}

	name := r.FormValue("name")
	message := r.FormValue("message")

	var userID *uuid.UUID
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.IsAuthenticated() {
		userID = sess.UserID
	}

	_, err := c.commentStore.Add(post.ID, name, message, userID)
	if errors.Is(err, store.ErrEmptyMessage) {
		data := postPageData(c.postStore, c.authorStore, c.commentStore, c.baseURL, post, &postForm{
			Name:    name,
			Message: message,
			Error:   "Please write a message before posting.",
		})
		c.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "post", data)
		return
	}
	if err != nil {
		slog.Error("add comment failed", "post", post.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	c.pageCache.Invalidate(r.Context(), cache.PostKey(post.ID))
	c.hub.Notify(r.Context(), post.ID)

	http.Redirect(w, r, "/blog/"+post.ID+"#comments", http.StatusSeeOther)
}

// Stream upgrades to a websocket and pushes the full newest-first
// comment set whenever the post's comments change, starting with an
// initial snapshot.
func (c *Comments) Stream(w http.ResponseWriter, r *http.Request) {
	post := c.findPublished(w, r)
	if post == nil {
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "post", post.ID, "error", err)
		return
	}
	defer conn.Close()

	sub := c.hub.Subscribe(post.ID)
	defer sub.Cancel()

	// Read pump: discard client frames, detect disconnect.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Cancel()
				return
			}
		}
	}()

	for {
		select {
		case comments := <-sub.C:
			if comments == nil {
				comments = []models.Comment{}
			}
			if err := conn.WriteJSON(comments); err != nil {
				return
			}
		case <-sub.Done:
			return
		}
	}
}

// ArmView arms the deferred view count for this reader and post. The
// count commits only if the reader is still here when the dwell period
// elapses and this session has not viewed the post before.
func (c *Comments) ArmView(w http.ResponseWriter, r *http.Request) {
	post := c.findPublished(w, r)
	if post == nil {
		return
	}

	sess, err := c.sessions.Ensure(r.Context(), w, r)
	if err != nil {
		slog.Warn("session ensure failed", "post", post.ID, "error", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	c.tracker.Schedule(r.Context(), sess.ID, post.ID)
	w.WriteHeader(http.StatusNoContent)
}

// CancelView discards a pending view count when the reader navigates
// away before the dwell period.
func (c *Comments) CancelView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := c.sessions.Get(r.Context(), r)
	if err == nil && sess != nil {
		c.tracker.Cancel(sess.ID, id)
	}
	w.WriteHeader(http.StatusNoContent)
}

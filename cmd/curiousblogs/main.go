// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the CuriousBlogs server.
// It loads configuration, connects to services, sets up routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"curiousblogs/internal/cache"
	"curiousblogs/internal/config"
	"curiousblogs/internal/database"
	"curiousblogs/internal/handlers"
	"curiousblogs/internal/live"
	"curiousblogs/internal/render"
	"curiousblogs/internal/router"
	"curiousblogs/internal/session"
	"curiousblogs/internal/storage"
	"curiousblogs/internal/store"
	"curiousblogs/internal/views"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"base_url", cfg.BaseURL,
	)

	// Connect to PostgreSQL and run pending migrations.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey: sessions, page cache, view markers, and the
	// comment fanout channel all live there.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Data stores.
	userStore := store.NewUserStore(db)
	authorStore := store.NewAuthorStore(db)
	postStore := store.NewPostStore(db)
	categoryStore := store.NewCategoryStore(db)
	commentStore := store.NewCommentStore(db)
	contactStore := store.NewContactStore(db)
	subscriberStore := store.NewSubscriberStore(db)

	// Connect to S3-compatible object storage (optional; the app works
	// without it, uploads are just disabled).
	var storageClient *storage.Client
	if cfg.HasStorage() {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, thumbnail uploads disabled")
	}

	// L2 page cache: full rendered pages in Valkey.
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	// Deferred view counting. Markers live as long as sessions do, so
	// a session counts each post once.
	tracker := views.NewTracker(postStore, valkeyClient, views.DefaultDwell, sessionStore.TTL(), logger)
	defer tracker.Close()

	// Live comment fanout across instances.
	hub := live.NewHub(commentStore, valkeyClient, logger)
	defer hub.Close()

	// Handler groups.
	publicHandlers := handlers.NewPublic(renderer, postStore, authorStore, commentStore, pageCache, cfg.BaseURL)
	commentHandlers := handlers.NewComments(renderer, postStore, authorStore, commentStore, hub, tracker, sessionStore, pageCache, cfg.BaseURL)
	formHandlers := handlers.NewForms(renderer, contactStore, subscriberStore)
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore, authorStore)
	adminHandlers := handlers.NewAdmin(renderer, postStore, categoryStore, pageCache, storageClient)
	authorHandlers := handlers.NewAuthor(renderer, postStore, categoryStore, storageClient)

	submitLimiter := router.DefaultSubmitLimiter()
	defer submitLimiter.Stop()

	r := router.New(router.Deps{
		Sessions:      sessionStore,
		Public:        publicHandlers,
		Comments:      commentHandlers,
		Forms:         formHandlers,
		Auth:          authHandlers,
		Admin:         adminHandlers,
		Author:        authorHandlers,
		SubmitLimiter: submitLimiter,
	})

	// WriteTimeout is generous because comment stream sockets stay
	// open; gorilla manages its own deadlines after the upgrade.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"log/slog"
	"os"

	"irms/cli/internal/auth"
	"irms/cli/internal/backend"
	"irms/cli/internal/config"
	"irms/cli/internal/logging"
	"irms/cli/internal/router"
	"irms/cli/internal/storage"
)

// app is the per-invocation wiring shared by the commands: one session, one
// authenticated HTTP client and one router guarded by that session.
type app struct {
	cfg    config.Config
	log    *slog.Logger
	store  storage.Store
	sess   *auth.Session
	svc    *auth.Service
	router *router.Router

	unsubscribe func()
}

// newApp loads configuration, opens token storage and restores the session.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newAppWithConfig(ctx, cfg)
}

func newAppWithConfig(ctx context.Context, cfg config.Config) (*app, error) {
	level := cfg.LogLevel
	if verbose || cfg.Verbose {
		level = "debug"
	}
	log := logging.New(level, os.Stderr)

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	log.Debug("token storage opened", "backend", cfg.Storage.Backend)

	sess, err := auth.Restore(ctx, store, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	client := auth.NewHTTPClient(sess, cfg.HTTPTimeout())
	svc := auth.NewService(sess, backend.New(cfg.BaseURL, cfg.Endpoints, client), log)

	routes := router.DefaultRoutes()
	if err := router.ValidateLoginPath(routes, cfg.LoginPath); err != nil {
		_ = store.Close()
		return nil, err
	}
	r, err := router.New(routes, router.WithLogger(log))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	r.BeforeEach(router.RequireAuth(sess, cfg.LoginPath))

	a := &app{cfg: cfg, log: log, store: store, sess: sess, svc: svc, router: r}
	a.unsubscribe = sess.Subscribe(func(st auth.State) {
		log.Debug("session changed", "logged_in", st.LoggedIn(), "user", st.User.Name())
	})
	return a, nil
}

func (a *app) close() {
	a.unsubscribe()
	if err := a.store.Close(); err != nil {
		a.log.Debug("close token storage", "error", logging.Mask(err.Error()))
	}
}

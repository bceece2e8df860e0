// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth holds the client's authentication state and the operations that
// change it.
//
// A Session is the single source of truth for the access token and the cached
// user profile. It is built once per process with Restore and shared by
// pointer: the request interceptor reads its token on every dispatch, the
// navigation guard reads IsLoggedIn, and Service mutates it through Login,
// FetchUser and Logout. The token and its durable copy are always written and
// cleared together, and the profile never outlives the token it was fetched
// with.
package auth

import (
	"context"
	"log/slog"
	"sync"

	"irms/cli/internal/backend"
	apperrors "irms/cli/internal/errors"
	"irms/cli/internal/storage"
)

// State is a point-in-time copy of a Session.
type State struct {
	Token string
	User  *backend.Profile
}

// LoggedIn reports whether the snapshot holds a token.
func (s State) LoggedIn() bool { return s.Token != "" }

// Session is the process-wide authentication state.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *backend.Profile
	// gen changes with every token change so late profile responses can be
	// matched against the token they were requested with.
	gen uint64

	store storage.Store
	log   *slog.Logger

	obsMu     sync.Mutex
	observers map[int]func(State)
	nextObs   int
}

// Restore builds a Session seeded from the token persisted in store.
// The restored state is optimistic: a stale token counts as logged in until a
// profile fetch proves otherwise.
func Restore(ctx context.Context, store storage.Store, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	tok, err := store.Get(ctx, storage.KeyToken)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.StorageUnavailable, "read persisted token", err)
	}
	log.Debug("session restored", "logged_in", tok != "")
	return &Session{
		token:     tok,
		store:     store,
		log:       log,
		observers: make(map[int]func(State)),
	}, nil
}

// Token returns the current access token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the cached profile, or nil.
func (s *Session) User() *backend.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyProfile(s.user)
}

// IsLoggedIn reports whether a token is present. It is derived on every call.
func (s *Session) IsLoggedIn() bool {
	return s.Token() != ""
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Token: s.token, User: copyProfile(s.user)}
}

// Subscribe registers fn to be called with the new state after every
// mutation. Calls happen on the mutating goroutine, outside the session lock.
// The returned function removes the observer.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

// Logout clears the token and profile and removes the persisted token.
// The in-memory state is cleared even when storage fails; the storage error
// is returned. Logging out twice is harmless.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	err := s.clearLocked(ctx)
	s.mu.Unlock()

	s.notify()
	if err != nil {
		return apperrors.Wrap(apperrors.StorageUnavailable, "remove persisted token", err)
	}
	return nil
}

// setToken persists tok and then makes it current, dropping any profile
// cached for the previous token. On storage failure nothing changes.
func (s *Session) setToken(ctx context.Context, tok string) error {
	s.mu.Lock()
	if err := s.store.Set(ctx, storage.KeyToken, tok); err != nil {
		s.mu.Unlock()
		return apperrors.Wrap(apperrors.StorageUnavailable, "persist token", err)
	}
	s.token = tok
	s.user = nil
	s.gen++
	s.mu.Unlock()

	s.notify()
	return nil
}

// current returns the token together with its generation.
func (s *Session) current() (string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.gen
}

// setUser caches p if the token has not changed since generation gen.
func (s *Session) setUser(gen uint64, p *backend.Profile) bool {
	s.mu.Lock()
	if s.gen != gen || s.token == "" {
		s.mu.Unlock()
		return false
	}
	s.user = copyProfile(p)
	s.mu.Unlock()

	s.notify()
	return true
}

// invalidate performs the logout transition if the token has not changed
// since generation gen. It reports whether the transition happened.
func (s *Session) invalidate(ctx context.Context, gen uint64) bool {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return false
	}
	if err := s.clearLocked(ctx); err != nil {
		s.log.Warn("remove persisted token", "error", err)
	}
	s.mu.Unlock()

	s.notify()
	return true
}

// clearLocked removes the persisted token and clears the fields.
// Callers hold s.mu.
func (s *Session) clearLocked(ctx context.Context) error {
	err := s.store.Remove(ctx, storage.KeyToken)
	if s.token != "" {
		s.gen++
	}
	s.token = ""
	s.user = nil
	return err
}

func (s *Session) notify() {
	s.obsMu.Lock()
	fns := make([]func(State), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()
	if len(fns) == 0 {
		return
	}

	st := s.Snapshot()
	for _, fn := range fns {
		fn(st)
	}
}

func copyProfile(p *backend.Profile) *backend.Profile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

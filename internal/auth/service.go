// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"errors"
	"log/slog"

	"irms/cli/internal/backend"
	apperrors "irms/cli/internal/errors"
	"irms/cli/internal/logging"
)

// Service centralizes authentication-related operations against the backend
// and the shared Session.
type Service struct {
	sess *Session
	be   backend.API
	log  *slog.Logger
}

// NewService constructs an auth Service. be should send its requests through
// a client built with NewHTTPClient(sess, ...) so the profile call carries the
// session token.
func NewService(sess *Session, be backend.API, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{sess: sess, be: be, log: log}
}

// Session returns the state this service mutates.
func (s *Service) Session() *Session { return s.sess }

// Login exchanges username and password for a token, persists it, makes it
// current and then fetches the profile.
//
// Exchange failures are returned as credential_exchange_failed with the
// original error (a *backend.StatusError or a transport error) still in the
// chain. A profile failure after a successful exchange is not an error here:
// FetchUser turns it into a logout, so callers check IsLoggedIn afterwards.
func (s *Service) Login(ctx context.Context, username, password string) error {
	tok, err := s.be.ExchangeToken(ctx, username, password)
	if err != nil {
		s.log.Debug("token exchange failed", "username", username, "error", logging.Mask(err.Error()))
		return apperrors.Wrap(apperrors.CredentialExchangeFailed, "exchange credentials", err)
	}
	if err := s.sess.setToken(ctx, tok); err != nil {
		return err
	}
	s.log.Debug("token stored", "username", username)

	s.FetchUser(ctx)
	return nil
}

// FetchUser loads the profile for the current token and caches it.
//
// It never returns an error: any failure (rejected or expired token, network
// error, bad payload) is treated as an invalidated session and performs the
// same transition as Logout. A result that arrives after the token changed is
// discarded.
//
// One deliberate exception: when the caller cancels ctx (context.Canceled)
// the failure says nothing about the token, so the session is left as is.
// Deadlines and timeouts still log out.
// It reports whether a profile is now cached.
func (s *Service) FetchUser(ctx context.Context) bool {
	tok, gen := s.sess.current()
	if tok == "" {
		s.sess.invalidate(ctx, gen)
		return false
	}

	p, err := s.be.GetProfile(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return false
		}
		invalidated := s.sess.invalidate(context.WithoutCancel(ctx), gen)
		s.log.Debug("session invalidated",
			"kind", apperrors.SessionInvalidated,
			"applied", invalidated,
			"error", logging.Mask(err.Error()))
		return false
	}

	if !s.sess.setUser(gen, p) {
		s.log.Debug("discarding profile for superseded token", "username", p.Username)
		return false
	}
	return true
}

// Logout clears the session locally. There is no remote call.
func (s *Service) Logout(ctx context.Context) error {
	return s.sess.Logout(ctx)
}

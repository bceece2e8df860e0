// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating with the IRMS service.
// It defines the API contract for the two calls the session layer depends on:
// exchanging credentials for an access token and fetching the current profile.
package backend

import "context"

// API defines backend operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide mocks for tests.
type API interface {
	// ExchangeToken trades a username and password for an access token using
	// the OAuth2 password grant.
	ExchangeToken(ctx context.Context, username, password string) (accessToken string, err error)
	// GetProfile retrieves the profile of the user owning the bearer token the
	// transport attaches to the request.
	GetProfile(ctx context.Context) (*Profile, error)
}

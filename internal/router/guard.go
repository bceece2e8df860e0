// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package router

import (
	"fmt"
	"net/url"

	apperrors "irms/cli/internal/errors"
)

// RedirectParam is the query parameter carrying the originally requested path.
const RedirectParam = "redirect"

// LoginState is the read-only view of the session the guard needs.
type LoginState interface {
	IsLoggedIn() bool
}

// RequireAuth returns a guard that sends navigation to a route marked
// RequiresAuth to loginPath while session is logged out, keeping the
// requested full path in the "redirect" query parameter. It never mutates
// the session.
func RequireAuth(session LoginState, loginPath string) Guard {
	return func(to, _ Location) *Redirect {
		if !to.Route.RequiresAuth || session.IsLoggedIn() {
			return nil
		}
		return &Redirect{
			Destination: loginPath,
			Query:       url.Values{RedirectParam: []string{to.FullPath()}},
		}
	}
}

// ValidateLoginPath checks that loginPath is in routes and reachable while
// logged out, so RequireAuth redirects always land somewhere.
func ValidateLoginPath(routes []Route, loginPath string) error {
	for _, r := range routes {
		if r.Path != loginPath {
			continue
		}
		if r.RequiresAuth {
			return apperrors.New(apperrors.GuardMisconfigured, fmt.Sprintf("login route %q itself requires authentication", loginPath))
		}
		return nil
	}
	return apperrors.New(apperrors.GuardMisconfigured, fmt.Sprintf("login path %q is not a registered route", loginPath))
}

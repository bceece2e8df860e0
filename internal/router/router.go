// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package router

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	apperrors "irms/cli/internal/errors"
)

const defaultMaxRedirects = 5

// Router holds the route table, the registered guards and the current location.
type Router struct {
	mu      sync.Mutex
	routes  []Route
	byPath  map[string]Route
	guards  []Guard
	current Location

	maxRedirects int
	log          *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithMaxRedirects bounds how many guard redirects one Push may follow.
func WithMaxRedirects(n int) Option {
	return func(r *Router) { r.maxRedirects = n }
}

// WithLogger sets the logger used for navigation tracing.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.log = l }
}

// New validates routes and builds a Router positioned at "/" (or the first
// route when "/" is not registered).
func New(routes []Route, opts ...Option) (*Router, error) {
	if len(routes) == 0 {
		return nil, apperrors.New(apperrors.GuardMisconfigured, "route table is empty")
	}
	r := &Router{
		byPath:       make(map[string]Route, len(routes)),
		maxRedirects: defaultMaxRedirects,
		log:          slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	for _, rt := range routes {
		if !strings.HasPrefix(rt.Path, "/") {
			return nil, apperrors.New(apperrors.GuardMisconfigured, fmt.Sprintf("route %q: path %q must start with /", rt.Name, rt.Path))
		}
		if _, dup := r.byPath[rt.Path]; dup {
			return nil, apperrors.New(apperrors.GuardMisconfigured, fmt.Sprintf("duplicate route path %q", rt.Path))
		}
		r.byPath[rt.Path] = rt
		r.routes = append(r.routes, rt)
	}

	start, ok := r.byPath["/"]
	if !ok {
		start = r.routes[0]
	}
	r.current = Location{Route: start, Path: start.Path, Query: url.Values{}}
	return r, nil
}

// BeforeEach registers a guard. Guards run in registration order; the first
// redirect wins.
func (r *Router) BeforeEach(g Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guards = append(r.guards, g)
}

// Routes returns a copy of the route table.
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Current returns the current location.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Resolve matches rawPath (path plus optional query) against the table.
func (r *Router) Resolve(rawPath string) (Location, error) {
	u, err := url.Parse(rawPath)
	if err != nil {
		return Location{}, apperrors.Wrap(apperrors.RouteNotFound, fmt.Sprintf("parse %q", rawPath), err)
	}
	if u.IsAbs() || u.Host != "" {
		return Location{}, apperrors.New(apperrors.RouteNotFound, fmt.Sprintf("%q is not an application path", rawPath))
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	rt, ok := r.byPath[p]
	if !ok {
		return Location{}, apperrors.New(apperrors.RouteNotFound, fmt.Sprintf("no route matches %q", p))
	}
	return Location{Route: rt, Path: p, Query: u.Query()}, nil
}

// Push navigates to rawPath. Guards run once per navigation attempt, in
// order and before the target becomes current, stopping at the first
// redirect. A redirect starts a new attempt at the redirect target; a redirect to an unknown path or a chain
// longer than the redirect limit is reported as guard_misconfigured and
// leaves the current location unchanged.
func (r *Router) Push(rawPath string) (Location, error) {
	to, err := r.Resolve(rawPath)
	if err != nil {
		return Location{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	from := r.current
	for hops := 0; ; hops++ {
		redirect := r.runGuards(to, from)
		if redirect == nil {
			r.current = to
			r.log.Debug("navigated", "to", to.FullPath(), "redirects", hops)
			return to, nil
		}
		if hops >= r.maxRedirects {
			return Location{}, apperrors.New(apperrors.GuardMisconfigured,
				fmt.Sprintf("navigation to %q exceeded %d redirects", rawPath, r.maxRedirects))
		}
		r.log.Debug("navigation redirected", "from", to.FullPath(), "to", redirect.FullPath())

		next, err := r.Resolve(redirect.FullPath())
		if err != nil {
			return Location{}, apperrors.Wrap(apperrors.GuardMisconfigured,
				fmt.Sprintf("guard redirected %q to an unknown destination", to.FullPath()), err)
		}
		to = next
	}
}

func (r *Router) runGuards(to, from Location) *Redirect {
	for _, g := range r.guards {
		if redirect := g(to, from); redirect != nil {
			return redirect
		}
	}
	return nil
}

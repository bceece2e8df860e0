// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package router resolves navigation targets against the application's route
// table and runs navigation guards before a target becomes current.
package router

import (
	"net/url"
)

// Route is one entry of the route table.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
}

// Location is a resolved navigation target.
type Location struct {
	Route Route
	Path  string
	Query url.Values
}

// FullPath returns the path with its encoded query, e.g. "/login?redirect=%2Fprofile".
func (l Location) FullPath() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

// Redirect tells the router to navigate somewhere else instead.
type Redirect struct {
	Destination string
	Query       url.Values
}

// FullPath returns the redirect target with its encoded query.
func (r Redirect) FullPath() string {
	if len(r.Query) == 0 {
		return r.Destination
	}
	return r.Destination + "?" + r.Query.Encode()
}

// Guard runs before a navigation completes. It returns nil to let the
// navigation proceed, or a Redirect.
type Guard func(to, from Location) *Redirect

// Route names of the default table.
const (
	RouteHome    = "home"
	RouteExplore = "explore"
	RouteProfile = "profile"
	RouteLogin   = "login"
	RouteSignup  = "signup"
)

// DefaultRoutes returns the application's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Name: RouteHome, Path: "/"},
		{Name: RouteExplore, Path: "/explore"},
		{Name: RouteProfile, Path: "/profile", RequiresAuth: true},
		{Name: RouteLogin, Path: "/login"},
		{Name: RouteSignup, Path: "/signup"},
	}
}

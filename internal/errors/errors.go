// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so the CLI can decide how to present a failure
// without parsing error strings.
//
// Wrapped errors keep the underlying cause reachable through errors.As/errors.Is.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// CredentialExchangeFailed indicates the remote service rejected or never
	// answered a username/password token exchange.
	CredentialExchangeFailed Kind = "credential_exchange_failed"
	// SessionInvalidated indicates the profile fetch rejected the current token.
	// It is logged, never returned to callers.
	SessionInvalidated Kind = "session_invalidated"
	// StorageUnavailable indicates durable token storage could not be read or written.
	StorageUnavailable Kind = "storage_unavailable"
	// GuardMisconfigured indicates a navigation guard redirects to a destination
	// that cannot be reached.
	GuardMisconfigured Kind = "guard_misconfigured"
	// RouteNotFound indicates no route matches a navigation target.
	RouteNotFound Kind = "route_not_found"
	// ConfigInvalid indicates the loaded configuration cannot be used.
	ConfigInvalid Kind = "config_invalid"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// Is reports whether target is an *E of the same kind.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err's chain contains an *E of the given kind.
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, &E{Kind: kind})
}

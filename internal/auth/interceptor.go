// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies the token to attach at dispatch time.
type TokenSource interface {
	Token() string
}

// BearerTransport is an http.RoundTripper that adds
// "Authorization: Bearer <token>" to every request while a token is present.
// The token is read when the request is dispatched, so a request sent after
// Logout never carries the old token. Requests are cloned, never modified.
type BearerTransport struct {
	Source TokenSource
	Base   http.RoundTripper
}

// NewBearerTransport wraps base (http.DefaultTransport when nil).
func NewBearerTransport(src TokenSource, base http.RoundTripper) *BearerTransport {
	return &BearerTransport{Source: src, Base: base}
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := t.Source.Token()
	if tok == "" {
		return t.base().RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+tok)
	return t.base().RoundTrip(r)
}

func (t *BearerTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// NewHTTPClient returns the shared client every backend call goes through.
// Redirects are followed only while they stay on the original host; a
// redirect elsewhere is returned to the caller as the response, so the token
// is never sent to another host.
func NewHTTPClient(src TokenSource, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:       timeout,
		Transport:     NewBearerTransport(src, nil),
		CheckRedirect: sameHostRedirects,
	}
}

const maxRedirects = 10

func sameHostRedirects(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if !strings.EqualFold(req.URL.Host, via[0].URL.Host) {
		return http.ErrUseLastResponse
	}
	return nil
}

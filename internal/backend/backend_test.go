// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"irms/cli/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEndpoints = config.Endpoints{Token: "/token", Profile: "/users/me"}

func TestExchangeToken_SendsPasswordGrantForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostForm.Get("username"))
		assert.Equal(t, "secret", r.PostForm.Get("password"))
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok123","token_type":"bearer"}`))
	}))
	defer srv.Close()

	api := New(srv.URL+"/", testEndpoints, srv.Client())
	tok, err := api.ExchangeToken(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok123", tok)
}

func TestExchangeToken_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "invalid credentials", status: http.StatusUnauthorized, body: `{"detail":"Incorrect username or password"}`, wantStatus: http.StatusUnauthorized},
		{name: "validation error", status: http.StatusUnprocessableEntity, body: `{"detail":"field required"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "missing token", status: http.StatusOK, body: `{"token_type":"bearer"}`},
		{name: "not json", status: http.StatusOK, body: `tok123`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, testEndpoints, srv.Client()).ExchangeToken(context.Background(), "alice", "wrong")
			require.Error(t, err)

			var se *StatusError
			if tt.wantStatus == 0 {
				assert.False(t, errors.As(err, &se))
				return
			}
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.wantStatus, se.StatusCode)
			assert.Contains(t, se.Error(), "token exchange failed")
		})
	}
}

func TestGetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/me", r.URL.Path)
		_, _ = w.Write([]byte(`{"user_id":7,"username":"alice","created_at":"2025-03-01T10:20:30.123456"}`))
	}))
	defer srv.Close()

	p, err := New(srv.URL, testEndpoints, srv.Client()).GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, p.UserID)
	assert.Equal(t, "alice", p.Name())
	assert.Equal(t, time.Date(2025, 3, 1, 10, 20, 30, 123456000, time.UTC), p.CreatedAt.Time)
}

func TestGetProfile_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Could not validate credentials"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New(srv.URL, testEndpoints, srv.Client()).GetProfile(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.Unauthorized())
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{in: `"2025-03-01T10:20:30Z"`, want: time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{in: `"2025-03-01T10:20:30"`, want: time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{in: `"2025-03-01 10:20:30"`, want: time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{in: `null`, want: time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
		})
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestExtractAccessToken(t *testing.T) {
	assert.Equal(t, "a", extractAccessToken(map[string]any{"access_token": " a "}))
	assert.Equal(t, "b", extractAccessToken(map[string]any{"accessToken": "b"}))
	assert.Equal(t, "c", extractAccessToken(map[string]any{"token": "c"}))
	assert.Equal(t, "", extractAccessToken(map[string]any{"access_token": 12}))
}

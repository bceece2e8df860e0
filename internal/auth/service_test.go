// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"irms/cli/internal/backend"
	"irms/cli/internal/config"
	apperrors "irms/cli/internal/errors"
	"irms/cli/internal/logging"
	"irms/cli/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) ExchangeToken(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (m *mockAPI) GetProfile(ctx context.Context) (*backend.Profile, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(*backend.Profile)
	return p, args.Error(1)
}

// failingStore wraps a Store and fails selected operations.
type failingStore struct {
	storage.Store
	failGet, failSet, failRemove bool
}

var errDisk = errors.New("disk on fire")

func (f *failingStore) Get(ctx context.Context, key string) (string, error) {
	if f.failGet {
		return "", errDisk
	}
	return f.Store.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errDisk
	}
	return f.Store.Set(ctx, key, value)
}

func (f *failingStore) Remove(ctx context.Context, key string) error {
	if f.failRemove {
		return errDisk
	}
	return f.Store.Remove(ctx, key)
}

var alice = &backend.Profile{UserID: 1, Username: "alice"}

func newTestSession(t *testing.T, store storage.Store) *Session {
	t.Helper()
	sess, err := Restore(context.Background(), store, logging.Discard())
	require.NoError(t, err)
	return sess
}

func persisted(t *testing.T, store storage.Store) string {
	t.Helper()
	v, err := store.Get(context.Background(), storage.KeyToken)
	require.NoError(t, err)
	return v
}

func TestLogin_StoresTokenThenFetchesUser(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	sess := newTestSession(t, store)
	api := &mockAPI{}
	svc := NewService(sess, api, logging.Discard())

	api.On("ExchangeToken", mock.Anything, "alice", "secret").Return("tok123", nil).Once()
	api.On("GetProfile", mock.Anything).Run(func(mock.Arguments) {
		// The token is visible in state and storage before the profile fetch starts.
		assert.Equal(t, "tok123", sess.Token())
		assert.Equal(t, "tok123", persisted(t, store))
	}).Return(alice, nil).Once()

	require.NoError(t, svc.Login(ctx, "alice", "secret"))

	assert.True(t, sess.IsLoggedIn())
	assert.Equal(t, "tok123", sess.Token())
	assert.Equal(t, sess.Token(), persisted(t, store))
	assert.Equal(t, alice, sess.User())
	api.AssertExpectations(t)
}

func TestLogin_ExchangeFailurePropagates(t *testing.T) {
	store := storage.NewMemory()
	sess := newTestSession(t, store)
	api := &mockAPI{}
	svc := NewService(sess, api, logging.Discard())

	rejected := &backend.StatusError{Op: "token exchange", StatusCode: http.StatusUnauthorized}
	api.On("ExchangeToken", mock.Anything, "alice", "wrong").Return("", rejected).Once()

	err := svc.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.CredentialExchangeFailed))

	var se *backend.StatusError
	require.True(t, errors.As(err, &se))
	assert.Same(t, rejected, se)

	assert.False(t, sess.IsLoggedIn())
	assert.Empty(t, persisted(t, store))
	api.AssertNotCalled(t, "GetProfile", mock.Anything)
}

func TestLogin_PersistFailureLeavesSessionUnchanged(t *testing.T) {
	store := &failingStore{Store: storage.NewMemory()}
	sess := newTestSession(t, store)
	api := &mockAPI{}
	svc := NewService(sess, api, logging.Discard())

	store.failSet = true
	api.On("ExchangeToken", mock.Anything, "alice", "secret").Return("tok123", nil).Once()

	err := svc.Login(context.Background(), "alice", "secret")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.StorageUnavailable))
	assert.False(t, sess.IsLoggedIn())
	api.AssertNotCalled(t, "GetProfile", mock.Anything)
}

func TestLogin_ProfileFailureEndsLoggedOut(t *testing.T) {
	store := storage.NewMemory()
	sess := newTestSession(t, store)
	api := &mockAPI{}
	svc := NewService(sess, api, logging.Discard())

	api.On("ExchangeToken", mock.Anything, "alice", "secret").Return("tok123", nil).Once()
	api.On("GetProfile", mock.Anything).Return(nil, errors.New("connection reset")).Once()

	require.NoError(t, svc.Login(context.Background(), "alice", "secret"))
	assert.False(t, sess.IsLoggedIn())
	assert.Nil(t, sess.User())
	assert.Empty(t, persisted(t, store))
}

func TestFetchUser_FailureInvalidatesSession(t *testing.T) {
	failures := map[string]error{
		"unauthorized": &backend.StatusError{Op: "get profile", StatusCode: http.StatusUnauthorized},
		"server error": &backend.StatusError{Op: "get profile", StatusCode: http.StatusInternalServerError},
		"network":      errors.New("dial tcp: connection refused"),
		"deadline":     context.DeadlineExceeded,
	}

	for name, failure := range failures {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewMemory()
			require.NoError(t, store.Set(ctx, storage.KeyToken, "stale"))
			sess := newTestSession(t, store)
			api := &mockAPI{}
			svc := NewService(sess, api, logging.Discard())
			require.True(t, sess.IsLoggedIn())

			api.On("GetProfile", mock.Anything).Return(nil, failure).Once()

			assert.False(t, svc.FetchUser(ctx))
			assert.Empty(t, sess.Token())
			assert.Nil(t, sess.User())
			assert.Empty(t, persisted(t, store))
		})
	}
}

func TestFetchUser_WithoutTokenSkipsNetwork(t *testing.T) {
	sess := newTestSession(t, storage.NewMemory())
	api := &mockAPI{}
	svc := NewService(sess, api, logging.Discard())

	assert.False(t, svc.FetchUser(context.Background()))
	assert.False(t, sess.IsLoggedIn())
	api.AssertNotCalled(t, "GetProfile", mock.Anything)
}

func TestFetchUser_CanceledLeavesSession(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, storage.KeyToken, "tok123"))
	sess := newTestSession(t, store)
	api := &mockAPI{}
	svc := NewService(sess, api, logging.Discard())

	api.On("GetProfile", mock.Anything).Return(nil, context.Canceled).Once()

	assert.False(t, svc.FetchUser(ctx))
	assert.Equal(t, "tok123", sess.Token())
	assert.Equal(t, "tok123", persisted(t, store))
}

func TestFetchUser_DiscardsProfileForSupersededToken(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, storage.KeyToken, "tok123"))
	sess := newTestSession(t, store)
	api := &mockAPI{}
	svc := NewService(sess, api, logging.Discard())

	// Logout lands while the profile request is in flight.
	api.On("GetProfile", mock.Anything).Run(func(mock.Arguments) {
		require.NoError(t, sess.Logout(ctx))
	}).Return(alice, nil).Once()

	assert.False(t, svc.FetchUser(ctx))
	assert.False(t, sess.IsLoggedIn())
	assert.Nil(t, sess.User(), "no profile without a token")
}

func TestFetchUser_StaleFailureDoesNotClearNewLogin(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, storage.KeyToken, "old"))
	sess := newTestSession(t, store)
	api := &mockAPI{}
	svc := NewService(sess, api, logging.Discard())

	api.On("GetProfile", mock.Anything).Run(func(mock.Arguments) {
		require.NoError(t, sess.setToken(ctx, "new"))
	}).Return(nil, &backend.StatusError{Op: "get profile", StatusCode: http.StatusUnauthorized}).Once()

	assert.False(t, svc.FetchUser(ctx))
	assert.Equal(t, "new", sess.Token())
	assert.Equal(t, "new", persisted(t, store))
}

func TestLoginThenLogout(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	sess := newTestSession(t, store)
	api := &mockAPI{}
	svc := NewService(sess, api, logging.Discard())

	api.On("ExchangeToken", mock.Anything, "alice", "secret").Return("tok123", nil)
	api.On("GetProfile", mock.Anything).Return(alice, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Login(ctx, "alice", "secret"))
		require.True(t, sess.IsLoggedIn())

		require.NoError(t, svc.Logout(ctx))
		assert.False(t, sess.IsLoggedIn())
		assert.Nil(t, sess.User())
		assert.Empty(t, persisted(t, store))
	}
}

// End to end over HTTP: the profile call is authenticated only by the
// interceptor installed on the shared client.
func TestService_OverHTTP(t *testing.T) {
	var (
		mu          sync.Mutex
		profileAuth []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			if r.FormValue("password") != "secret" {
				http.Error(w, `{"detail":"Incorrect username or password"}`, http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"tok123","token_type":"bearer"}`))
		case "/users/me":
			mu.Lock()
			profileAuth = append(profileAuth, r.Header.Get("Authorization"))
			mu.Unlock()
			if r.Header.Get("Authorization") != "Bearer tok123" {
				http.Error(w, `{"detail":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"user_id":1,"username":"alice","created_at":"2025-01-02T03:04:05"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	store := storage.NewMemory()
	sess := newTestSession(t, store)
	api := backend.New(srv.URL, config.Endpoints{Token: "/token", Profile: "/users/me"}, NewHTTPClient(sess, 5*time.Second))
	svc := NewService(sess, api, logging.Discard())

	err := svc.Login(ctx, "alice", "wrong")
	require.Error(t, err)
	var se *backend.StatusError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.Unauthorized())

	require.NoError(t, svc.Login(ctx, "alice", "secret"))
	assert.Equal(t, "tok123", persisted(t, store))
	require.NotNil(t, sess.User())
	assert.Equal(t, "alice", sess.User().Username)

	require.NoError(t, svc.Logout(ctx))
	assert.False(t, svc.FetchUser(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Bearer tok123"}, profileAuth)
}

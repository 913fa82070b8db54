package common

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, cfg ClientConfig) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL
	return NewClient(cfg)
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		w.Write([]byte(`{"success":true,"data":{"ok":true}}`))
	}, ClientConfig{Tokens: NewMemoryTokenStore(Tokens{AccessToken: "abc"})})

	var out Envelope[map[string]bool]
	require.NoError(t, client.Get(context.Background(), "/admin/dashboard", nil, &out))
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.True(t, out.Data["ok"])
}

func TestClientOmitsAuthorizationWithoutToken(t *testing.T) {
	var header []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Values("Authorization")
		w.Write([]byte(`{"success":true}`))
	}, ClientConfig{})

	require.NoError(t, client.Get(context.Background(), "/admin/dashboard", nil, nil))
	assert.Empty(t, header)
}

func TestClientPrefersContextTokenStore(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true}`))
	}, ClientConfig{Tokens: NewMemoryTokenStore(Tokens{AccessToken: "default"})})

	ctx := WithTokenStore(context.Background(), NewMemoryTokenStore(Tokens{AccessToken: "session"}))
	require.NoError(t, client.Get(ctx, "/admin/users", nil, nil))
	assert.Equal(t, "Bearer session", gotAuth)
}

func TestClientDecodesErrorPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"success":false,"message":"upstream node down"}`))
	}, ClientConfig{})

	err := client.Get(context.Background(), "/admin/funds/all", nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream node down", apiErr.Message)
	assert.Equal(t, ClassApplication, Classify(err))
}

func TestClientKeepsRawErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`gateway exploded`))
	}, ClientConfig{})

	err := client.Get(context.Background(), "/admin/users", nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "gateway exploded", apiErr.Message)
	assert.Equal(t, []byte("gateway exploded"), apiErr.Body)
}

func TestClientTreatsSuccessFalseAsFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"rate out of range"}`))
	}, ClientConfig{})

	err := client.Put(context.Background(), "/admin/settings/roi", map[string]float64{"rate": 1}, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.Status)
	assert.Equal(t, "rate out of range", Message(err))
}

func TestClientPassesForbiddenThrough(t *testing.T) {
	store := NewMemoryTokenStore(Tokens{AccessToken: "abc"})
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, ClientConfig{Tokens: store, OnUnauthorized: func(context.Context) { called = true }})

	err := client.Get(context.Background(), "/admin/users", nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.False(t, called)
	_, ok := store.Tokens(context.Background())
	assert.True(t, ok, "403 must not clear credentials")
}

func TestClientUnauthorizedLogsOut(t *testing.T) {
	store := NewMemoryTokenStore(Tokens{AccessToken: "stale", RefreshToken: "r"})
	var redirects int32
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"jwt expired"}`))
	}, ClientConfig{Tokens: store, OnUnauthorized: func(context.Context) { atomic.AddInt32(&redirects, 1) }})

	err := client.Get(context.Background(), "/admin/deposit-history", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, ErrRefreshUnavailable)
	assert.Equal(t, ClassAuth, Classify(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&redirects))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retry without a refresh")
	_, ok := store.Tokens(context.Background())
	assert.False(t, ok)
}

func TestClientUnauthorizedOnLoginRouteIsPlainError(t *testing.T) {
	store := NewMemoryTokenStore(Tokens{})
	redirected := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"invalid credentials"}`))
	}, ClientConfig{Tokens: store, OnUnauthorized: func(context.Context) { redirected = true }})

	err := client.Post(context.Background(), "/admin/login", map[string]string{"email": "a"}, nil)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "invalid credentials", Message(err))
	assert.False(t, redirected)
}

type stubRefresher struct {
	calls int32
	delay time.Duration
	err   error
}

func (s *stubRefresher) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	atomic.AddInt32(&s.calls, 1)
	time.Sleep(s.delay)
	if s.err != nil {
		return Tokens{}, s.err
	}
	return Tokens{AccessToken: "fresh", RefreshToken: refreshToken}, nil
}

func TestClientQueuesCallersBehindOneRefresh(t *testing.T) {
	store := NewMemoryTokenStore(Tokens{AccessToken: "stale", RefreshToken: "r"})
	refresher := &stubRefresher{delay: 50 * time.Millisecond}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"success":true,"data":1}`))
	}, ClientConfig{Tokens: store, Refresher: refresher})

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out Envelope[int]
			errs[i] = client.Get(context.Background(), "/admin/users", url.Values{"page": {"1"}}, &out)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&refresher.calls), int32(5))
	tokens, ok := store.Tokens(context.Background())
	require.True(t, ok)
	assert.Equal(t, "fresh", tokens.AccessToken)
}

func TestClientFlushesQueueWithRefreshFailure(t *testing.T) {
	store := NewMemoryTokenStore(Tokens{AccessToken: "stale", RefreshToken: "r"})
	refresher := &stubRefresher{delay: 100 * time.Millisecond, err: errors.New("refresh rejected")}
	var redirects int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, ClientConfig{Tokens: store, Refresher: refresher, OnUnauthorized: func(context.Context) {
		atomic.AddInt32(&redirects, 1)
	}})

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Get(context.Background(), "/admin/income-history", nil, nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
	assert.GreaterOrEqual(t, atomic.LoadInt32(&redirects), int32(1))
	_, ok := store.Tokens(context.Background())
	assert.False(t, ok)
}

func TestClassifyNetworkError(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	err := client.Get(context.Background(), "/admin/dashboard", nil, nil)
	require.Error(t, err)
	assert.Equal(t, ClassNetwork, Classify(err))
}

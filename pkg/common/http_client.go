package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const DefaultTimeout = 60 * time.Second

// Refresher exchanges a refresh token for a new pair. The admin API has no
// refresh endpoint today, so the console runs without one.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
}

type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	LoginPath string
	Tokens    TokenStore
	Refresher Refresher
	// OnUnauthorized runs once per failed refresh, after credentials were
	// cleared. The console uses it to send the operator back to login.
	OnUnauthorized func(ctx context.Context)
	HTTPClient     *http.Client
}

// Client is the authenticated JSON client for the admin API.
type Client struct {
	baseURL        string
	http           *http.Client
	loginPath      string
	tokens         TokenStore
	refresher      Refresher
	onUnauthorized func(ctx context.Context)

	mu      sync.Mutex
	flights map[TokenStore]*flight
}

// flight is one refresh attempt; callers that hit a 401 while it runs wait
// on it instead of starting their own.
type flight struct {
	waiters []chan error
}

func NewClient(cfg ClientConfig) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = NewMemoryTokenStore(Tokens{})
	}
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/admin/login"
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		http:           hc,
		loginPath:      loginPath,
		tokens:         tokens,
		refresher:      cfg.Refresher,
		onUnauthorized: cfg.OnUnauthorized,
		flights:        map[TokenStore]*flight{},
	}
}

func (c *Client) LoginPath() string { return c.loginPath }

// Store returns the token store in effect for ctx.
func (c *Client) Store(ctx context.Context) TokenStore {
	if s := tokenStoreFrom(ctx); s != nil {
		return s
	}
	return c.tokens
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one request and decodes the body into out. A 401 outside the
// login path goes through the refresh queue and, if that succeeds, the
// request is retried once.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	err := c.send(ctx, method, path, query, body, out)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || c.isLoginPath(path) {
		return err
	}
	if err := c.refresh(ctx); err != nil {
		return err
	}
	return c.send(ctx, method, path, query, body, out)
}

func (c *Client) isLoginPath(path string) bool {
	return strings.HasPrefix(path, c.loginPath)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if t, ok := c.Store(ctx).Tokens(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+t.AccessToken)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).Msg("admin api")

	return decodeResponse(resp.StatusCode, raw, out)
}

func decodeResponse(status int, raw []byte, out interface{}) error {
	if status < 200 || status >= 300 {
		apiErr := &APIError{Status: status, Body: raw}
		var h envelopeHeader
		if err := json.Unmarshal(raw, &h); err == nil {
			apiErr.Message = h.text()
		} else if len(raw) > 0 && len(raw) < 512 {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if len(raw) == 0 {
		return nil
	}

	var h envelopeHeader
	if err := json.Unmarshal(raw, &h); err == nil && h.Success != nil && !*h.Success {
		return &APIError{Status: status, Message: h.text(), Body: raw}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// refresh either joins the attempt in flight for this token store or runs
// a new one. Failure clears credentials and fires OnUnauthorized.
func (c *Client) refresh(ctx context.Context) error {
	store := c.Store(ctx)

	c.mu.Lock()
	if f, ok := c.flights[store]; ok {
		ch := make(chan error, 1)
		f.waiters = append(f.waiters, ch)
		c.mu.Unlock()
		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f := &flight{}
	c.flights[store] = f
	c.mu.Unlock()

	err := c.runRefresh(ctx, store)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	c.mu.Lock()
	delete(c.flights, store)
	waiters := f.waiters
	c.mu.Unlock()
	for _, ch := range waiters {
		ch <- err
	}

	if err != nil {
		log.Warn().Err(err).Msg("authorization failed, credentials cleared")
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
	}
	return err
}

func (c *Client) runRefresh(ctx context.Context, store TokenStore) error {
	old, _ := store.Tokens(ctx)
	if err := store.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("clear credentials")
	}
	if c.refresher == nil || old.RefreshToken == "" {
		return ErrRefreshUnavailable
	}
	fresh, err := c.refresher.Refresh(ctx, old.RefreshToken)
	if err != nil {
		return err
	}
	return store.Save(ctx, fresh)
}

package console

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"admin-console/pkg/common"
)

const (
	tokenCookie   = "token"
	refreshCookie = "refreshToken"
)

// cookieStore keeps the operator's tokens in two HttpOnly cookies. It lives
// for one request; writes are mirrored in memory so a refresh is visible to
// the retried call within the same request.
type cookieStore struct {
	c      *gin.Context
	secure bool
	maxAge int

	mu     sync.Mutex
	loaded bool
	tokens common.Tokens
}

func newCookieStore(c *gin.Context, secure bool, ttl time.Duration) *cookieStore {
	return &cookieStore{c: c, secure: secure, maxAge: int(ttl.Seconds())}
}

func (s *cookieStore) Tokens(context.Context) (common.Tokens, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.tokens.AccessToken, _ = s.c.Cookie(tokenCookie)
		s.tokens.RefreshToken, _ = s.c.Cookie(refreshCookie)
		s.loaded = true
	}
	return s.tokens, s.tokens.AccessToken != ""
}

func (s *cookieStore) Save(_ context.Context, t common.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens, s.loaded = t, true
	s.set(tokenCookie, t.AccessToken, s.maxAge)
	if t.RefreshToken != "" {
		s.set(refreshCookie, t.RefreshToken, s.maxAge)
	}
	return nil
}

func (s *cookieStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens, s.loaded = common.Tokens{}, true
	s.set(tokenCookie, "", -1)
	s.set(refreshCookie, "", -1)
	return nil
}

func (s *cookieStore) set(name, value string, maxAge int) {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(name, value, maxAge, "/", "", s.secure, true)
}

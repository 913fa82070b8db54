// Package console serves the operator console: an HTML shell plus a JSON
// API driving one pages.Workspace per browser session.
package console

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"admin-console/internal/config"
	"admin-console/internal/pages"
	"admin-console/internal/services"
	"admin-console/internal/worker"
	"admin-console/pkg/common"
	"admin-console/pkg/csvexport"
	"admin-console/pkg/validation"
)

const (
	wsKey     = "workspace"
	sessIDKey = "session_id"
	loginURL  = "/login"
)

type Options struct {
	Config *config.Config
	Client *common.Client
	Deps   pages.Deps
	// Queue is nil when no Redis is configured; export jobs then return 503.
	Queue worker.Enqueuer
	Runs  *services.ExportRunService
}

type Server struct {
	cfg      *config.Config
	client   *common.Client
	auth     *services.AuthService
	deps     pages.Deps
	queue    worker.Enqueuer
	runs     *services.ExportRunService
	sessions *Sessions
}

func NewServer(opts Options) *Server {
	s := &Server{
		cfg:    opts.Config,
		client: opts.Client,
		auth:   services.NewAuthService(opts.Client),
		deps:   opts.Deps,
		queue:  opts.Queue,
		runs:   opts.Runs,
	}
	s.sessions = NewSessions(opts.Config.SessionTTL, opts.Config.MaxSessions, func() *pages.Workspace {
		return pages.NewWorkspace(s.deps)
	})
	return s
}

// Router builds the gin engine with every console route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), s.bind())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome To Admin Console"})
	})
	r.GET("/", s.requireLogin(), s.index)
	r.GET(loginURL, s.loginPage)

	api := r.Group("/api")
	api.POST("/login", s.login)
	api.POST("/logout", s.logout)

	authed := api.Group("", s.requireLogin())
	authed.GET("/session", s.session)
	authed.GET("/notifications", s.notifications)
	authed.GET("/dashboard", s.dashboard)

	authed.GET("/lists/:name", s.withList(s.listView))
	authed.POST("/lists/:name/filters", s.withList(s.listFilters))
	authed.POST("/lists/:name/page", s.withList(s.listPage))
	authed.POST("/lists/:name/sort", s.withList(s.listSort))
	authed.POST("/lists/:name/refresh", s.withList(s.listRefresh))
	authed.GET("/lists/:name/export", s.withList(s.listExport))
	authed.POST("/lists/:name/export-jobs", s.withList(s.listExportJob))
	authed.GET("/export-runs", s.exportRuns)

	authed.GET("/users/:id", s.userDetail)
	authed.POST("/users/:id/block", s.userBlock(true))
	authed.POST("/users/:id/unblock", s.userBlock(false))
	authed.GET("/users/:id/network", s.userNetwork)
	authed.POST("/users/:id/network/page", s.userNetworkPage)

	authed.GET("/treasury", s.treasuryView)
	authed.POST("/treasury/form", s.treasuryForm)
	authed.POST("/treasury/dialog", s.treasuryDialog)
	authed.POST("/treasury/balance", s.treasuryAction(func(ctx context.Context, p *pages.TreasuryPage) error { return p.LookupBalance(ctx) }))
	authed.POST("/treasury/all", s.treasuryAction(func(ctx context.Context, p *pages.TreasuryPage) error { return p.LookupAll(ctx) }))
	authed.POST("/treasury/check", s.treasuryAction(func(ctx context.Context, p *pages.TreasuryPage) error { return p.CheckSweep(ctx) }))
	authed.POST("/treasury/sweep", s.treasuryAction(func(ctx context.Context, p *pages.TreasuryPage) error { return p.Sweep(ctx) }))
	authed.POST("/treasury/sweep-all", s.treasuryAction(func(ctx context.Context, p *pages.TreasuryPage) error { return p.SweepAll(ctx) }))

	authed.GET("/roi", s.roiView)
	authed.POST("/roi", s.roiSubmit)

	authed.GET("/trades/summary", s.tradeSummary)
	authed.POST("/trades", s.tradeCreate)
	authed.POST("/trades/dialog", s.tradeDialog)

	authed.POST("/deposits/credit", s.creditSubmit)
	authed.GET("/audit", s.auditLog)

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-Id", id)
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), id))

		c.Next()

		evt := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = log.Error()
		}
		evt.Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("console request")
	}
}

// bind attaches the cookie token store to the request context. Page state
// is only attached behind requireLogin.
func (s *Server) bind() gin.HandlerFunc {
	return func(c *gin.Context) {
		store := newCookieStore(c, s.cfg.CookieSecure, s.cfg.SessionTTL)
		c.Request = c.Request.WithContext(common.WithTokenStore(c.Request.Context(), store))
		c.Next()
	}
}

func (s *Server) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.auth.LoggedIn(c.Request.Context()) {
			s.unauthorized(c)
			return
		}
		raw, _ := c.Cookie(sessionCookie)
		id, ws := s.sessions.Get(raw)
		if id != raw {
			s.setSessionCookie(c, id)
		}
		c.Set(wsKey, ws)
		c.Set(sessIDKey, id)
		c.Next()
	}
}

// startSession replaces whatever page state the browser had with a fresh
// workspace.
func (s *Server) startSession(c *gin.Context) {
	s.endSession(c)
	id, _ := s.sessions.Get("")
	s.setSessionCookie(c, id)
}

func (s *Server) endSession(c *gin.Context) {
	if id := c.GetString(sessIDKey); id != "" {
		s.sessions.Drop(id)
	}
	if raw, err := c.Cookie(sessionCookie); err == nil && raw != "" {
		s.sessions.Drop(raw)
	}
}

func (s *Server) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, int(s.cfg.SessionTTL.Seconds()), "/", "", s.cfg.CookieSecure, true)
}

func (s *Server) unauthorized(c *gin.Context) {
	if wantsHTML(c) {
		c.Redirect(http.StatusFound, loginURL)
		c.Abort()
		return
	}
	res := common.NewErrorResponse(common.ErrUnauthorized.Error(), nil, http.StatusUnauthorized)
	res.Redirect = loginURL
	c.AbortWithStatusJSON(http.StatusUnauthorized, res)
}

func wantsHTML(c *gin.Context) bool {
	return !strings.HasPrefix(c.Request.URL.Path, "/api/") &&
		strings.Contains(c.GetHeader("Accept"), "text/html")
}

func workspace(c *gin.Context) *pages.Workspace {
	return c.MustGet(wsKey).(*pages.Workspace)
}

// fail writes the response for a failed action. The toast for it, if any,
// was already queued by the page.
func (s *Server) fail(c *gin.Context, err error) {
	switch common.Classify(err) {
	case common.ClassAuth:
		_ = s.client.Store(c.Request.Context()).Clear(c.Request.Context())
		s.endSession(c)
		s.unauthorized(c)
		return
	case common.ClassValidation:
		var v *validation.Error
		var fields []validation.FieldError
		if errors.As(err, &v) {
			fields = v.Fields
		}
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity,
			common.NewErrorResponse(err.Error(), gin.H{"fieldErrors": fields}, http.StatusUnprocessableEntity))
		return
	case common.ClassApplication:
		status := http.StatusBadRequest
		var apiErr *common.APIError
		if errors.As(err, &apiErr) && apiErr.Status >= http.StatusBadRequest {
			status = apiErr.Status
		}
		c.AbortWithStatusJSON(status, common.NewErrorResponse(common.Message(err), nil, status))
		return
	}
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, common.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, csvexport.ErrExportBusy):
		status = http.StatusConflict
	}
	c.AbortWithStatusJSON(status, common.NewErrorResponse(common.Message(err), nil, status))
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, common.NewSuccessResponse(data, ""))
}

package console

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"admin-console/internal/pages"
	"admin-console/internal/services"
	"admin-console/internal/worker"
	"admin-console/pkg/common"
	"admin-console/pkg/validation"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	res, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.startSession(c)
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"admin": res.Admin}, "Logged in"))
}

func (s *Server) logout(c *gin.Context) {
	_ = s.auth.Logout(c.Request.Context())
	s.endSession(c)
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"redirect": loginURL}, "Logged out"))
}

func (s *Server) session(c *gin.Context) {
	ok(c, gin.H{"lists": workspace(c).ListNames()})
}

func (s *Server) notifications(c *gin.Context) {
	ok(c, workspace(c).Toasts.Drain())
}

func (s *Server) dashboard(c *gin.Context) {
	d := workspace(c).Dashboard
	if err := d.Load(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, d.View())
}

// withList resolves :name to a listing page of the session workspace.
func (s *Server) withList(h func(*gin.Context, pages.Lister)) gin.HandlerFunc {
	return func(c *gin.Context) {
		l, found := workspace(c).List(c.Param("name"))
		if !found {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("unknown list "+c.Param("name"), nil, http.StatusNotFound))
			return
		}
		h(c, l)
	}
}

// respond writes the page snapshot. A failed load still returns the
// snapshot when the failure is not auth or validation, so the last good
// rows stay on screen.
func (s *Server) respond(c *gin.Context, l pages.Lister, err error) {
	switch common.Classify(err) {
	case common.ClassNone, common.ClassNetwork, common.ClassApplication:
		ok(c, l.Snapshot())
	default:
		s.fail(c, err)
	}
}

func (s *Server) listView(c *gin.Context, l pages.Lister) {
	var err error
	if c.Query("refresh") == "true" || l.Status() == pages.StatusIdle {
		err = l.Mount(c.Request.Context())
	}
	s.respond(c, l, err)
}

type FiltersRequest struct {
	Filters map[string]string `json:"filters"`
	// Apply reloads from page 1; otherwise each value is set one at a time.
	Apply bool `json:"apply"`
	Clear bool `json:"clear"`
}

func (s *Server) listFilters(c *gin.Context, l pages.Lister) {
	var req FiltersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	ctx := c.Request.Context()
	var err error
	switch {
	case req.Clear:
		err = l.ClearFilters(ctx)
	case req.Apply:
		err = l.ApplyFilters(ctx, req.Filters)
	default:
		for k, v := range req.Filters {
			if err = l.SetFilter(ctx, k, v); err != nil {
				break
			}
		}
	}
	s.respond(c, l, err)
}

func (s *Server) listPage(c *gin.Context, l pages.Lister) {
	var req struct {
		Page int `json:"page"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	s.respond(c, l, l.GoTo(c.Request.Context(), req.Page))
}

func (s *Server) listSort(c *gin.Context, l pages.Lister) {
	var req struct {
		Column string `json:"column" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	s.respond(c, l, l.ToggleSort(c.Request.Context(), req.Column))
}

func (s *Server) listRefresh(c *gin.Context, l pages.Lister) {
	s.respond(c, l, l.Refresh(c.Request.Context()))
}

// listExport buffers the whole CSV so a failure mid-way sends an error
// instead of a truncated file.
func (s *Server) listExport(c *gin.Context, l pages.Lister) {
	var buf bytes.Buffer
	rows, err := l.Export(c.Request.Context(), &buf)
	if err != nil {
		s.fail(c, err)
		return
	}
	name := fmt.Sprintf("%s-%s.csv", l.Name(), time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Header("X-Export-Rows", strconv.Itoa(rows))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) listExportJob(c *gin.Context, l pages.Lister) {
	if s.queue == nil {
		s.fail(c, fmt.Errorf("background exports: %w", common.ErrNotConfigured))
		return
	}
	if _, err := services.ParseHistoryKind(l.Name()); err != nil {
		s.fail(c, validation.New("list", err.Error()))
		return
	}
	job, err := worker.EnqueueExport(c.Request.Context(), s.queue, worker.ExportJob{
		Kind:    l.Name(),
		Filters: l.Filters(),
		Trigger: "console",
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, common.NewSuccessResponse(job, "Export queued"))
}

func (s *Server) exportRuns(c *gin.Context) {
	runs, err := s.runs.Recent(c.Request.Context(), queryInt(c, "limit", 20))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, runs)
}

func (s *Server) userDetail(c *gin.Context) {
	u, err := workspace(c).Users.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, u)
}

func (s *Server) userBlock(blocked bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		users := workspace(c).Users
		if err := users.SetBlocked(c.Request.Context(), c.Param("id"), blocked); err != nil {
			s.fail(c, err)
			return
		}
		ok(c, users.View())
	}
}

func (s *Server) userNetwork(c *gin.Context) {
	p := workspace(c).Network(c.Param("id"))
	var err error
	if p.Status() == pages.StatusIdle || c.Query("refresh") == "true" {
		err = p.Mount(c.Request.Context())
	}
	s.respond(c, p, err)
}

func (s *Server) userNetworkPage(c *gin.Context) {
	var req struct {
		Page int `json:"page"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	p := workspace(c).Network(c.Param("id"))
	s.respond(c, p, p.GoTo(c.Request.Context(), req.Page))
}

func (s *Server) treasuryView(c *gin.Context) {
	ok(c, workspace(c).Treasury.View())
}

type TreasuryForm struct {
	Chain       *string `json:"chain"`
	Source      *string `json:"source"`
	Destination *string `json:"destination"`
}

func (s *Server) treasuryForm(c *gin.Context) {
	var req TreasuryForm
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	p := workspace(c).Treasury
	if req.Chain != nil {
		if err := p.SetChain(*req.Chain); err != nil {
			s.fail(c, err)
			return
		}
	}
	if req.Source != nil {
		p.SetSource(*req.Source)
	}
	if req.Destination != nil {
		p.SetDestination(*req.Destination)
	}
	ok(c, p.View())
}

func (s *Server) treasuryDialog(c *gin.Context) {
	var req struct {
		Open bool `json:"open"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	p := workspace(c).Treasury
	if req.Open {
		p.OpenDialog()
	} else {
		p.CloseDialog()
	}
	ok(c, p.View())
}

func (s *Server) treasuryAction(run func(context.Context, *pages.TreasuryPage) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := workspace(c).Treasury
		if err := run(c.Request.Context(), p); err != nil {
			s.fail(c, err)
			return
		}
		ok(c, p.View())
	}
}

func (s *Server) roiView(c *gin.Context) {
	p := workspace(c).ROI
	if err := p.Load(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, p.View())
}

type ROIRequest struct {
	Rate          string `json:"rate"`
	ApplyToActive bool   `json:"applyToActive"`
}

func (s *Server) roiSubmit(c *gin.Context) {
	var req ROIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	p := workspace(c).ROI
	if err := p.Submit(c.Request.Context(), req.Rate, req.ApplyToActive); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, p.View())
}

func (s *Server) tradeSummary(c *gin.Context) {
	card := workspace(c).TradeSummary
	if err := card.Load(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, card.View())
}

func (s *Server) tradeDialog(c *gin.Context) {
	var req struct {
		Open bool `json:"open"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	d := workspace(c).TradeDialog
	if req.Open {
		d.Open()
	} else {
		d.Close()
	}
	ok(c, d.View())
}

func (s *Server) tradeCreate(c *gin.Context) {
	var form pages.TradeForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	trade, err := workspace(c).TradeDialog.Submit(c.Request.Context(), form)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(trade, "Trade data created"))
}

func (s *Server) creditSubmit(c *gin.Context) {
	var form pages.CreditForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	dep, err := workspace(c).Credit.Submit(c.Request.Context(), form)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(dep, "Deposit credited"))
}

func (s *Server) auditLog(c *gin.Context) {
	entries, err := s.deps.Audit.Recent(c.Request.Context(), queryInt(c, "limit", 50))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, entries)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

package pages

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"admin-console/internal/notify"
	"admin-console/internal/services"
	"admin-console/pkg/validation"
)

const (
	MinROIRate = 0.1
	MaxROIRate = 100.0
)

type ROIView struct {
	Status     Status          `json:"status"`
	Rate       decimal.Decimal `json:"rate"`
	Saving     bool            `json:"saving"`
	FieldError string          `json:"fieldError,omitempty"`
	Updated    int             `json:"updatedInvestments"`
}

// ROIPage reads and updates the platform default daily ROI rate.
type ROIPage struct {
	settings *services.SettingsService
	notifier notify.Notifier
	alerts   notify.Notifier
	audit    *services.AuditService

	mu         sync.Mutex
	status     Status
	rate       decimal.Decimal
	saving     bool
	fieldError string
	updated    int
}

func NewROIPage(settings *services.SettingsService, n, alerts notify.Notifier, audit *services.AuditService) *ROIPage {
	return &ROIPage{
		settings: settings,
		notifier: notify.OrDiscard(n),
		alerts:   notify.OrDiscard(alerts),
		audit:    audit,
		status:   StatusIdle,
	}
}

func (p *ROIPage) Load(ctx context.Context) error {
	p.mu.Lock()
	p.status = StatusLoading
	p.mu.Unlock()

	res, err := p.settings.ROI(ctx)
	p.mu.Lock()
	if err != nil {
		p.status = StatusError
		p.mu.Unlock()
		surface(ctx, p.notifier, "roi", "load", err)
		return err
	}
	p.rate = res.Data.Rate
	p.status = StatusLoaded
	p.mu.Unlock()
	return nil
}

// ParseRate checks that text is a number within the accepted range.
func ParseRate(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if err := validation.Var("rate", text, "required,numeric"); err != nil {
		return 0, err
	}
	rate, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, validation.New("rate", "rate must be a number")
	}
	tag := fmt.Sprintf("gte=%g,lte=%g", MinROIRate, MaxROIRate)
	if err := validation.Var("rate", rate, tag); err != nil {
		return 0, err
	}
	return rate, nil
}

// Submit validates rateText and, if valid, sends it. With cascade the
// backend also rewrites the rate of every active investment.
func (p *ROIPage) Submit(ctx context.Context, rateText string, cascade bool) error {
	rate, err := ParseRate(rateText)
	if err != nil {
		p.mu.Lock()
		p.fieldError = err.Error()
		p.mu.Unlock()
		return err
	}

	p.mu.Lock()
	p.saving = true
	p.fieldError = ""
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.saving = false
		p.mu.Unlock()
	}()

	res, err := p.settings.UpdateROI(ctx, rate, cascade)
	p.audit.Record(ctx, "settings.roi", "roi", map[string]interface{}{"rate": rate, "applyToActive": cascade}, err)
	if err != nil {
		surface(ctx, p.notifier, "roi", "submit", err)
		return err
	}

	p.mu.Lock()
	p.rate = res.Data.Rate
	p.updated = res.Data.UpdatedInvestments
	p.status = StatusLoaded
	p.mu.Unlock()

	msg := fmt.Sprintf("ROI rate updated to %s%%", res.Data.Rate.String())
	p.notifier.Notify(ctx, notify.LevelSuccess, msg)
	p.alerts.Notify(ctx, notify.LevelInfo, msg)
	if cascade && res.Data.UpdatedInvestments > 0 {
		p.notifier.Notify(ctx, notify.LevelInfo,
			fmt.Sprintf("Updated %d active investments", res.Data.UpdatedInvestments))
	}
	return nil
}

func (p *ROIPage) View() ROIView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ROIView{
		Status:     p.status,
		Rate:       p.rate,
		Saving:     p.saving,
		FieldError: p.fieldError,
		Updated:    p.updated,
	}
}

package pages

import (
	"context"
	"sync"

	"admin-console/internal/models"
	"admin-console/internal/notify"
	"admin-console/pkg/common"
)

// CardFetch loads a single envelope.
type CardFetch[T any] func(ctx context.Context) (*common.Envelope[T], error)

type CardView[T any] struct {
	Status Status `json:"status"`
	Data   T      `json:"data"`
	Error  string `json:"error,omitempty"`
}

// Card holds one read-only value, such as the dashboard metrics or the
// trade summary. A failed load keeps the last good value.
type Card[T any] struct {
	name     string
	fetch    CardFetch[T]
	notifier notify.Notifier

	mu     sync.Mutex
	status Status
	data   T
	err    string
	gen    uint64
}

func NewCard[T any](name string, fetch CardFetch[T], n notify.Notifier) *Card[T] {
	return &Card[T]{name: name, fetch: fetch, notifier: notify.OrDiscard(n), status: StatusIdle}
}

func (c *Card[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.status = StatusLoading
	c.mu.Unlock()

	res, err := c.fetch(ctx)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.status = StatusError
		c.err = common.Message(err)
		c.mu.Unlock()
		surface(ctx, c.notifier, c.name, "load", err)
		return err
	}
	c.data = res.Data
	c.status = StatusLoaded
	c.err = ""
	c.mu.Unlock()
	return nil
}

func (c *Card[T]) View() CardView[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CardView[T]{Status: c.status, Data: c.data, Error: c.err}
}

// SummaryCard is the trade summary shown above the trade data table.
type SummaryCard = Card[models.TradeSummary]

// DashboardView adds the rendered metric cards to the raw stats.
type DashboardView struct {
	CardView[models.DashboardStats]
	Metrics []models.Metric `json:"metrics"`
}

type DashboardPage struct {
	*Card[models.DashboardStats]
}

func NewDashboardPage(fetch CardFetch[models.DashboardStats], n notify.Notifier) *DashboardPage {
	return &DashboardPage{Card: NewCard("dashboard", fetch, n)}
}

func (d *DashboardPage) View() DashboardView {
	v := d.Card.View()
	out := DashboardView{CardView: v, Metrics: []models.Metric{}}
	if v.Status == StatusLoaded {
		out.Metrics = v.Data.Metrics()
	}
	return out
}

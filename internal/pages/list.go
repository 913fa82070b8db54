package pages

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sync"

	"admin-console/internal/notify"
	"admin-console/pkg/common"
	"admin-console/pkg/csvexport"
	"admin-console/pkg/validation"
)

// ListFetch loads one page of a listing for the given query.
type ListFetch[T any] func(ctx context.Context, q url.Values) (*common.Page[T], error)

// RawFetch is the untyped form of a listing used by exports.
type RawFetch func(ctx context.Context, q url.Values) (*common.Page[json.RawMessage], error)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

type Sort struct {
	Column string    `json:"column"`
	Order  SortOrder `json:"order"`
}

type ListConfig struct {
	Name     string
	PageSize int
	// AutoRefetch pages reload on every filter change instead of waiting
	// for ApplyFilters.
	AutoRefetch bool
	// ZeroBasedUI pages number their pager from 0; the service still gets 1-based pages.
	ZeroBasedUI bool
	Filters     []string
	Sortable    []string
	DefaultSort Sort
}

// ListView is a render snapshot of a ListPage.
type ListView[T any] struct {
	Name       string            `json:"name"`
	Status     Status            `json:"status"`
	Filters    map[string]string `json:"filters"`
	FilterKeys []string          `json:"filterKeys"`
	Sort       Sort              `json:"sort"`
	Sortable   []string          `json:"sortable"`
	Page       int               `json:"page"`
	ZeroBased  bool              `json:"zeroBased"`
	Rows       []T               `json:"rows"`
	Pagination common.Pagination `json:"pagination"`
	Error      string            `json:"error,omitempty"`
	Exporting  bool              `json:"exporting"`
	CanExport  bool              `json:"canExport"`
}

// ListPage is the fetch/filter/sort/paginate state machine shared by every
// listing screen. Only the most recently started fetch may write state; a
// response that lands after a newer fetch began is dropped.
type ListPage[T any] struct {
	cfg      ListConfig
	fetch    ListFetch[T]
	raw      RawFetch
	notifier notify.Notifier
	exporter *csvexport.Exporter

	mu         sync.Mutex
	status     Status
	filters    map[string]string
	sort       Sort
	page       int
	rows       []T
	pagination common.Pagination
	lastErr    string
	gen        uint64
}

func NewListPage[T any](cfg ListConfig, fetch ListFetch[T], n notify.Notifier) *ListPage[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.DefaultSort.Column != "" && cfg.DefaultSort.Order == "" {
		cfg.DefaultSort.Order = SortAsc
	}
	filters := make(map[string]string, len(cfg.Filters))
	for _, k := range cfg.Filters {
		filters[k] = ""
	}
	return &ListPage[T]{
		cfg:      cfg,
		fetch:    fetch,
		notifier: notify.OrDiscard(n),
		status:   StatusIdle,
		filters:  filters,
		sort:     cfg.DefaultSort,
		page:     1,
	}
}

// WithExport enables CSV export through raw, paging with exp.
func (p *ListPage[T]) WithExport(raw RawFetch, exp *csvexport.Exporter) *ListPage[T] {
	p.raw = raw
	p.exporter = exp
	return p
}

func (p *ListPage[T]) Name() string { return p.cfg.Name }

func (p *ListPage[T]) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Mount performs the initial load.
func (p *ListPage[T]) Mount(ctx context.Context) error {
	return p.load(ctx)
}

// Refresh reloads the current page with the current filters.
func (p *ListPage[T]) Refresh(ctx context.Context) error {
	return p.load(ctx)
}

// SetFilter stores a filter value. Pages with AutoRefetch reload from page 1
// right away; others wait for ApplyFilters. Only configured filter keys are
// accepted.
func (p *ListPage[T]) SetFilter(ctx context.Context, key, value string) error {
	p.mu.Lock()
	if _, known := p.filters[key]; !known {
		p.mu.Unlock()
		return validation.New("filter", fmt.Sprintf("%s: unknown filter %q", p.cfg.Name, key))
	}
	p.filters[key] = value
	auto := p.cfg.AutoRefetch
	if auto {
		p.page = 1
	}
	p.mu.Unlock()
	if !auto {
		return nil
	}
	return p.load(ctx)
}

// ApplyFilters merges filters into the filter set and reloads from page 1.
// Keys the page does not filter on are ignored.
func (p *ListPage[T]) ApplyFilters(ctx context.Context, filters map[string]string) error {
	p.mu.Lock()
	for k, v := range filters {
		if _, known := p.filters[k]; known {
			p.filters[k] = v
		}
	}
	p.page = 1
	p.mu.Unlock()
	return p.load(ctx)
}

// StageFilters stores filters without loading, even on AutoRefetch pages.
// An unknown key rejects the whole set.
func (p *ListPage[T]) StageFilters(filters map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k := range filters {
		if _, known := p.filters[k]; !known {
			return validation.New("filter", fmt.Sprintf("%s: unknown filter %q", p.cfg.Name, k))
		}
	}
	for k, v := range filters {
		p.filters[k] = v
	}
	return nil
}

// ListQuery sets filters, sort and page in one step.
type ListQuery struct {
	Filters map[string]string
	// Sort is left as is when Column is empty.
	Sort Sort
	// UIPage is numbered as the pager shows it; 0 means the first page.
	UIPage int
}

// Open applies q and loads once. Nothing is changed or sent when q names
// an unknown filter or an unsortable column.
func (p *ListPage[T]) Open(ctx context.Context, q ListQuery) error {
	if q.Sort.Column != "" && !p.sortable(q.Sort.Column) {
		return validation.New("sort", fmt.Sprintf("%s: column %q is not sortable", p.cfg.Name, q.Sort.Column))
	}
	if err := p.StageFilters(q.Filters); err != nil {
		return err
	}
	page := q.UIPage
	if p.cfg.ZeroBasedUI {
		page++
	}
	if page < 1 {
		page = 1
	}
	p.mu.Lock()
	if q.Sort.Column != "" {
		if q.Sort.Order != SortDesc {
			q.Sort.Order = SortAsc
		}
		p.sort = q.Sort
	}
	p.page = page
	p.mu.Unlock()
	return p.load(ctx)
}

// ClearFilters empties every filter and reloads from page 1.
func (p *ListPage[T]) ClearFilters(ctx context.Context) error {
	p.mu.Lock()
	for k := range p.filters {
		p.filters[k] = ""
	}
	p.page = 1
	p.mu.Unlock()
	return p.load(ctx)
}

// GoTo loads the page numbered as the pager shows it.
func (p *ListPage[T]) GoTo(ctx context.Context, uiPage int) error {
	page := uiPage
	if p.cfg.ZeroBasedUI {
		page = uiPage + 1
	}
	if page < 1 {
		page = 1
	}
	p.mu.Lock()
	p.page = page
	p.mu.Unlock()
	return p.load(ctx)
}

// ToggleSort flips the direction of the active column, or makes column the
// active one in ascending order and returns to page 1.
func (p *ListPage[T]) ToggleSort(ctx context.Context, column string) error {
	if !p.sortable(column) {
		return validation.New("sort", fmt.Sprintf("%s: column %q is not sortable", p.cfg.Name, column))
	}
	p.mu.Lock()
	if p.sort.Column == column {
		if p.sort.Order == SortAsc {
			p.sort.Order = SortDesc
		} else {
			p.sort.Order = SortAsc
		}
	} else {
		p.sort = Sort{Column: column, Order: SortAsc}
		p.page = 1
	}
	p.mu.Unlock()
	return p.load(ctx)
}

// SetSort makes column the active sort in the given order and reloads from
// page 1.
func (p *ListPage[T]) SetSort(ctx context.Context, sort Sort) error {
	if !p.sortable(sort.Column) {
		return validation.New("sort", fmt.Sprintf("%s: column %q is not sortable", p.cfg.Name, sort.Column))
	}
	if sort.Order != SortDesc {
		sort.Order = SortAsc
	}
	p.mu.Lock()
	p.sort = sort
	p.page = 1
	p.mu.Unlock()
	return p.load(ctx)
}

func (p *ListPage[T]) sortable(column string) bool {
	for _, c := range p.cfg.Sortable {
		if c == column {
			return true
		}
	}
	return false
}

// query must be called with mu held.
func (p *ListPage[T]) query() url.Values {
	q := common.QueryFromFilters(p.filters)
	if p.sort.Column != "" {
		q.Set("sortBy", p.sort.Column)
		q.Set("sortOrder", string(p.sort.Order))
	}
	return q
}

func (p *ListPage[T]) load(ctx context.Context) error {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.status = StatusLoading
	q := common.PageQuery(p.query(), p.page, p.cfg.PageSize)
	p.mu.Unlock()

	res, err := p.fetch(ctx, q)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return nil
	}
	if err != nil {
		p.status = StatusError
		p.lastErr = common.Message(err)
		p.mu.Unlock()
		surface(ctx, p.notifier, p.cfg.Name, "fetch", err)
		return err
	}
	p.rows = res.Data
	p.pagination = res.Pagination
	if res.Pagination.Page > 0 {
		p.page = res.Pagination.Page
	}
	p.status = StatusLoaded
	p.lastErr = ""
	p.mu.Unlock()
	return nil
}

// Export writes every row matching the current filters and sort as CSV.
// The table itself is left untouched.
func (p *ListPage[T]) Export(ctx context.Context, w io.Writer) (int, error) {
	if p.raw == nil || p.exporter == nil {
		return 0, fmt.Errorf("%s: %w", p.cfg.Name, common.ErrNotConfigured)
	}
	p.mu.Lock()
	base := p.query()
	p.mu.Unlock()

	n, err := p.exporter.Run(ctx, p.ExportFetch(base), w)
	if err != nil {
		surface(ctx, p.notifier, p.cfg.Name, "export", err)
		return 0, err
	}
	p.notifier.Notify(ctx, notify.LevelSuccess, fmt.Sprintf("Exported %d %s rows", n, p.cfg.Name))
	return n, nil
}

// ExportFetch adapts the raw listing to the exporter's paging callback.
func (p *ListPage[T]) ExportFetch(base url.Values) csvexport.FetchFunc {
	return func(ctx context.Context, page, limit int) ([]json.RawMessage, error) {
		q := url.Values{}
		for k, v := range base {
			q[k] = append([]string(nil), v...)
		}
		res, err := p.raw(ctx, common.PageQuery(q, page, limit))
		if err != nil {
			return nil, err
		}
		return res.Data, nil
	}
}

// Filters returns a copy of the current filter values.
func (p *ListPage[T]) Filters() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.filters))
	for k, v := range p.filters {
		out[k] = v
	}
	return out
}

// Snapshot is View for callers that do not know T.
func (p *ListPage[T]) Snapshot() interface{} { return p.View() }

func (p *ListPage[T]) View() ListView[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	filters := make(map[string]string, len(p.filters))
	for k, v := range p.filters {
		filters[k] = v
	}
	uiPage := p.page
	if p.cfg.ZeroBasedUI {
		uiPage--
	}
	rows := p.rows
	if rows == nil {
		rows = []T{}
	}
	return ListView[T]{
		Name:       p.cfg.Name,
		Status:     p.status,
		Filters:    filters,
		FilterKeys: p.cfg.Filters,
		Sort:       p.sort,
		Sortable:   p.cfg.Sortable,
		Page:       uiPage,
		ZeroBased:  p.cfg.ZeroBasedUI,
		Rows:       rows,
		Pagination: p.pagination,
		Error:      p.lastErr,
		Exporting:  p.exporter != nil && p.exporter.Busy(),
		CanExport:  p.raw != nil && p.exporter != nil,
	}
}

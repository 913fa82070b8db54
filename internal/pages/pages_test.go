package pages

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-console/internal/notify"
	"admin-console/internal/services"
	"admin-console/pkg/common"
)

type call struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]interface{}
}

// fakeAPI serves canned replies per path and records every request.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []call
	status map[string]int
	reply  map[string]string
	// byPage, when set, picks the reply body by the page query parameter.
	byPage func(page string) string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *common.Client) {
	t.Helper()
	api := &fakeAPI{status: map[string]int{}, reply: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	client := common.NewClient(common.ClientConfig{
		BaseURL: srv.URL,
		Tokens:  common.NewMemoryTokenStore(common.Tokens{AccessToken: "tok"}),
	})
	return api, client
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	c := call{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &c.Body)
	}
	a.mu.Lock()
	a.calls = append(a.calls, c)
	status, body := a.status[r.URL.Path], a.reply[r.URL.Path]
	if a.byPage != nil {
		body = a.byPage(c.Query.Get("page"))
	}
	a.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	if body == "" {
		body = `{"success":true,"data":{}}`
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func (a *fakeAPI) set(path string, status int, body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status[path] = status
	a.reply[path] = body
}

func (a *fakeAPI) requests() []call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]call(nil), a.calls...)
}

func newTestWorkspace(t *testing.T) (*fakeAPI, *Workspace, *notify.Toasts) {
	api, client := newFakeAPI(t)
	alerts := notify.NewToasts(0)
	ws := NewWorkspace(Deps{
		Dashboard:      services.NewDashboardService(client),
		Users:          services.NewUserService(client),
		Network:        services.NewNetworkService(client),
		History:        services.NewHistoryService(client),
		Funds:          services.NewFundService(client),
		Settings:       services.NewSettingsService(client),
		Deposits:       services.NewDepositService(client),
		Trades:         services.NewTradeService(client),
		Alerts:         alerts,
		PageSize:       20,
		ExportPageSize: 2,
	})
	return api, ws, alerts
}

func TestWithdrawalsFilterAndPageQuery(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/withdrawal-history", 200, `{"success":true,
		"data":[{"id":"w9","uid":"U1","status":"PENDING","amount":"40"}],
		"pagination":{"page":2,"limit":20,"total":21,"totalPages":2}}`)
	ctx := context.Background()

	require.NoError(t, ws.Withdrawals.SetFilter(ctx, "status", "PENDING"))
	assert.Empty(t, api.requests(), "filter change alone must not fetch on this page")

	require.NoError(t, ws.Withdrawals.ApplyFilters(ctx, nil))
	require.NoError(t, ws.Withdrawals.GoTo(ctx, 2))

	reqs := api.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, url.Values{"status": {"PENDING"}, "page": {"2"}, "limit": {"20"}}, reqs[1].Query)

	view := ws.Withdrawals.View()
	assert.Equal(t, StatusLoaded, view.Status)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "w9", view.Rows[0].ID)
	assert.Equal(t, common.Pagination{Page: 2, Limit: 20, Total: 21, TotalPages: 2}, view.Pagination)
	assert.Equal(t, 2, view.Page)
}

func TestEmptyFiltersAreNotSent(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/deposit-history", 200, `{"success":true,"data":[]}`)
	require.NoError(t, ws.Deposits.ApplyFilters(context.Background(), map[string]string{
		"status": "", "uid": "U7", "chain": "",
	}))
	q := api.requests()[0].Query
	assert.Equal(t, "U7", q.Get("uid"))
	_, hasStatus := q["status"]
	_, hasChain := q["chain"]
	assert.False(t, hasStatus)
	assert.False(t, hasChain)
}

func TestUnknownFilterKeysAreIgnored(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/deposit-history", 200, `{"success":true,"data":[]}`)
	ctx := context.Background()

	require.NoError(t, ws.Deposits.ApplyFilters(ctx, map[string]string{
		"uid": "U7", "sortBy": "password", "sortOrder": "asc",
	}))
	q := api.requests()[0].Query
	assert.Equal(t, "U7", q.Get("uid"))
	assert.Empty(t, q.Get("sortBy"))
	assert.Empty(t, q.Get("sortOrder"))
	assert.NotContains(t, ws.Deposits.Filters(), "sortBy")

	err := ws.Deposits.SetFilter(ctx, "sortBy", "password")
	assert.Equal(t, common.ClassValidation, common.Classify(err))
	assert.Len(t, api.requests(), 1)
}

func TestFailureKeepsRowsAndNotifiesOnce(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	ctx := context.Background()
	api.set("/admin/income-history", 200, `{"success":true,"data":[{"id":"i1","type":"DAILY_ROI","amount":"1"}],
		"pagination":{"page":1,"limit":20,"total":1,"totalPages":1}}`)
	require.NoError(t, ws.Income.Mount(ctx))

	api.set("/admin/income-history", 502, `{"success":false,"message":"bad gateway"}`)
	require.Error(t, ws.Income.GoTo(ctx, 2))

	view := ws.Income.View()
	assert.Equal(t, StatusError, view.Status)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "i1", view.Rows[0].ID)
	assert.Equal(t, "bad gateway", view.Error)

	toasts := ws.Toasts.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelError, toasts[0].Level)
	assert.Equal(t, "bad gateway", toasts[0].Message)
}

func TestUnauthorizedFetchDoesNotToast(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/users", 401, `{"success":false,"message":"jwt expired"}`)
	err := ws.Users.Mount(context.Background())
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Empty(t, ws.Toasts.Drain())
}

func TestToggleSort(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/users", 200, `{"success":true,"data":[],"pagination":{"page":3,"limit":20,"total":100,"totalPages":5}}`)
	ctx := context.Background()

	require.NoError(t, ws.Users.GoTo(ctx, 3))
	assert.Equal(t, Sort{Column: "createdAt", Order: SortDesc}, ws.Users.View().Sort)

	require.NoError(t, ws.Users.ToggleSort(ctx, "createdAt"))
	last := api.requests()[1].Query
	assert.Equal(t, "asc", last.Get("sortOrder"))
	assert.Equal(t, "3", last.Get("page"), "flipping direction keeps the page")

	require.NoError(t, ws.Users.ToggleSort(ctx, "email"))
	last = api.requests()[2].Query
	assert.Equal(t, "email", last.Get("sortBy"))
	assert.Equal(t, "asc", last.Get("sortOrder"))
	assert.Equal(t, "1", last.Get("page"))

	assert.Error(t, ws.Users.ToggleSort(ctx, "password"))
}

func TestSetSort(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/deposit-history", 200, `{"success":true,"data":[]}`)
	ctx := context.Background()

	require.NoError(t, ws.Deposits.SetSort(ctx, Sort{Column: "amount", Order: SortDesc}))
	q := api.requests()[0].Query
	assert.Equal(t, "amount", q.Get("sortBy"))
	assert.Equal(t, "desc", q.Get("sortOrder"))

	err := ws.Deposits.SetSort(ctx, Sort{Column: "uid"})
	assert.Equal(t, common.ClassValidation, common.Classify(err))
	assert.Len(t, api.requests(), 1)
}

func TestUsersRefetchOnFilterChange(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/users", 200, `{"success":true,"data":[]}`)
	require.NoError(t, ws.Users.SetFilter(context.Background(), "search", "alice"))
	reqs := api.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "alice", reqs[0].Query.Get("search"))
}

func TestOpenAppliesEverythingInOneLoad(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/users", 200, `{"success":true,"data":[]}`)
	ctx := context.Background()

	err := ws.Users.Open(ctx, ListQuery{
		Filters: map[string]string{"search": "bob", "status": "ACTIVE"},
		Sort:    Sort{Column: "email", Order: SortDesc},
		UIPage:  3,
	})
	require.NoError(t, err)
	reqs := api.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "bob", reqs[0].Query.Get("search"))
	assert.Equal(t, "ACTIVE", reqs[0].Query.Get("status"))
	assert.Equal(t, "email", reqs[0].Query.Get("sortBy"))
	assert.Equal(t, "3", reqs[0].Query.Get("page"))

	err = ws.Users.Open(ctx, ListQuery{Filters: map[string]string{"search": "eve", "sortBy": "x"}})
	assert.Equal(t, common.ClassValidation, common.Classify(err))
	assert.Equal(t, "bob", ws.Users.Filters()["search"])
	assert.Len(t, api.requests(), 1)
}

func TestStageFiltersDoesNotLoad(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	require.NoError(t, ws.Users.StageFilters(map[string]string{"search": "bob"}))
	assert.Equal(t, "bob", ws.Users.Filters()["search"])
	assert.Empty(t, api.requests())
}

func TestTradesPagerIsZeroBased(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/trade-data", 200, `{"success":true,"data":[],"pagination":{"page":1,"limit":20,"total":0,"totalPages":0}}`)
	require.NoError(t, ws.Trades.GoTo(context.Background(), 0))
	assert.Equal(t, "1", api.requests()[0].Query.Get("page"))
	assert.Equal(t, 0, ws.Trades.View().Page)
}

func TestSupersededFetchIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fetch := func(ctx context.Context, q url.Values) (*common.Page[string], error) {
		if q.Get("uid") == "slow" {
			close(started)
			<-release
			return &common.Page[string]{Data: []string{"stale"}}, nil
		}
		return &common.Page[string]{Data: []string{"fresh"}}, nil
	}
	page := NewListPage(ListConfig{Name: "t", Filters: []string{"uid"}}, fetch, nil)

	done := make(chan error, 1)
	go func() { done <- page.ApplyFilters(context.Background(), map[string]string{"uid": "slow"}) }()
	<-started
	require.NoError(t, page.ApplyFilters(context.Background(), map[string]string{"uid": "fast"}))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"fresh"}, page.View().Rows)
}

func TestExportCollectsAllPages(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.byPage = func(page string) string {
		if page == "1" {
			return `{"success":true,"data":[{"uid":"U1","note":"a, b"},{"uid":"U2","note":"c"}]}`
		}
		return `{"success":true,"data":[{"uid":"U3","note":"d"}]}`
	}
	require.NoError(t, ws.Deposits.SetFilter(context.Background(), "status", "COMPLETED"))

	var out writerBuf
	n, err := ws.Deposits.Export(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "uid,note\nU1,\"a, b\"\nU2,c\nU3,d\n", out.String())

	reqs := api.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "2", reqs[0].Query.Get("limit"))
	assert.Equal(t, "COMPLETED", reqs[1].Query.Get("status"))
	assert.Equal(t, "2", reqs[1].Query.Get("page"))

	assert.Empty(t, ws.Deposits.View().Rows, "export leaves the table alone")
	toasts := ws.Toasts.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelSuccess, toasts[0].Level)
}

type writerBuf struct{ b []byte }

func (w *writerBuf) Write(p []byte) (int, error) { w.b = append(w.b, p...); return len(p), nil }
func (w *writerBuf) String() string              { return string(w.b) }

func TestTradesHaveNoExport(t *testing.T) {
	_, ws, _ := newTestWorkspace(t)
	_, err := ws.Trades.Export(context.Background(), &writerBuf{})
	assert.ErrorIs(t, err, common.ErrNotConfigured)
	assert.False(t, ws.Trades.View().CanExport)
}

package pages

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"sync"

	"admin-console/internal/models"
	"admin-console/internal/notify"
	"admin-console/internal/services"
	"admin-console/pkg/common"
	"admin-console/pkg/csvexport"
)

// Deps is everything a Workspace needs to build its pages.
type Deps struct {
	Dashboard *services.DashboardService
	Users     *services.UserService
	Network   *services.NetworkService
	History   *services.HistoryService
	Funds     *services.FundService
	Settings  *services.SettingsService
	Deposits  *services.DepositService
	Trades    *services.TradeService
	Audit     *services.AuditService
	// Alerts receives operational events (sweeps, ROI changes, credits).
	Alerts         notify.Notifier
	PageSize       int
	ExportPageSize int
}

// Workspace is the full set of page states for one operator session.
type Workspace struct {
	Toasts       *notify.Toasts
	Dashboard    *DashboardPage
	Users        *UsersPage
	Deposits     *ListPage[models.Deposit]
	Withdrawals  *ListPage[models.Withdrawal]
	Income       *ListPage[models.IncomeRecord]
	Trades       *ListPage[models.Trade]
	TradeSummary *SummaryCard
	TradeDialog  *TradeDialog
	Treasury     *TreasuryPage
	ROI          *ROIPage
	Credit       *CreditDialog

	deps         Deps
	mu           sync.Mutex
	network      map[string]*NetworkPage
	networkOrder []string
}

// maxNetworkPages bounds the downline pages kept per workspace; the oldest
// opened one is dropped first.
const maxNetworkPages = 32

var historyFilters = map[services.HistoryKind][]string{
	services.KindDeposits:    {"status", "uid", "chain", "from", "to"},
	services.KindWithdrawals: {"status", "uid", "chain", "from", "to"},
	services.KindIncome:      {"type", "uid", "from", "to"},
}

func historyConfig(kind services.HistoryKind, pageSize int) ListConfig {
	return ListConfig{
		Name:     string(kind),
		PageSize: pageSize,
		Filters:  historyFilters[kind],
		Sortable: []string{"createdAt", "amount"},
	}
}

func rawHistory(h *services.HistoryService, kind services.HistoryKind) RawFetch {
	return func(ctx context.Context, q url.Values) (*common.Page[json.RawMessage], error) {
		return h.Raw(ctx, kind, q)
	}
}

func NewWorkspace(d Deps) *Workspace {
	toasts := notify.NewToasts(0)
	w := &Workspace{Toasts: toasts, deps: d, network: map[string]*NetworkPage{}}

	w.Dashboard = NewDashboardPage(d.Dashboard.Stats, toasts)
	w.Users = NewUsersPage(d.Users, d.PageSize, toasts, d.Audit)

	w.Deposits = NewListPage(historyConfig(services.KindDeposits, d.PageSize), d.History.Deposits, toasts).
		WithExport(rawHistory(d.History, services.KindDeposits), csvexport.New(d.ExportPageSize))
	w.Withdrawals = NewListPage(historyConfig(services.KindWithdrawals, d.PageSize), d.History.Withdrawals, toasts).
		WithExport(rawHistory(d.History, services.KindWithdrawals), csvexport.New(d.ExportPageSize))
	w.Income = NewListPage(historyConfig(services.KindIncome, d.PageSize), d.History.Income, toasts).
		WithExport(rawHistory(d.History, services.KindIncome), csvexport.New(d.ExportPageSize))

	w.Trades = NewListPage(ListConfig{
		Name:        "trades",
		PageSize:    d.PageSize,
		ZeroBasedUI: true,
		Filters:     []string{"pair", "status", "direction"},
	}, d.Trades.List, toasts)
	w.TradeSummary = NewCard("trade-summary", d.Trades.Summary, toasts)
	w.TradeDialog = NewTradeDialog(d.Trades, w.TradeSummary, toasts, d.Audit)
	w.TradeDialog.OnCreated = func(ctx context.Context) { _ = w.Trades.Refresh(ctx) }

	w.Treasury = NewTreasuryPage(d.Funds, toasts, d.Alerts, d.Audit)
	w.ROI = NewROIPage(d.Settings, toasts, d.Alerts, d.Audit)
	w.Credit = NewCreditDialog(d.Deposits, toasts, d.Alerts, d.Audit)
	w.Credit.OnCredited = func(ctx context.Context) { _ = w.Deposits.Refresh(ctx) }
	return w
}

// Lists returns the listing pages by name.
func (w *Workspace) Lists() map[string]Lister {
	return map[string]Lister{
		w.Users.Name():       w.Users,
		w.Deposits.Name():    w.Deposits,
		w.Withdrawals.Name(): w.Withdrawals,
		w.Income.Name():      w.Income,
		w.Trades.Name():      w.Trades,
	}
}

func (w *Workspace) List(name string) (Lister, bool) {
	l, ok := w.Lists()[name]
	return l, ok
}

// ListNames returns the listing page names in a stable order.
func (w *Workspace) ListNames() []string {
	names := make([]string, 0, 5)
	for n := range w.Lists() {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Network returns the downline page for uid, creating it on first use.
func (w *Workspace) Network(uid string) *NetworkPage {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.network[uid]; ok {
		return p
	}
	if len(w.networkOrder) >= maxNetworkPages {
		delete(w.network, w.networkOrder[0])
		w.networkOrder = w.networkOrder[1:]
	}
	p := NewNetworkPage(w.deps.Network, uid, w.deps.PageSize, w.Toasts)
	w.network[uid] = p
	w.networkOrder = append(w.networkOrder, uid)
	return p
}

package pages

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"admin-console/internal/models"
	"admin-console/internal/notify"
	"admin-console/internal/services"
	"admin-console/pkg/common"
	"admin-console/pkg/validation"
)

// Treasury action names, used as loading-flag keys.
const (
	ActionBalance  = "balance"
	ActionAll      = "all"
	ActionCheck    = "check"
	ActionSweep    = "sweep"
	ActionSweepAll = "sweepAll"
)

type TreasuryView struct {
	Chain       models.Chain         `json:"chain"`
	Chains      []models.Chain       `json:"chains"`
	Source      string               `json:"source"`
	Destination string               `json:"destination"`
	Balance     *models.FundBalance  `json:"balance,omitempty"`
	Balances    []models.FundBalance `json:"balances"`
	Check       *models.SweepCheck   `json:"check,omitempty"`
	LastSweep   *models.SweepResult  `json:"lastSweep,omitempty"`
	DialogOpen  bool                 `json:"dialogOpen"`
	Loading     map[string]bool      `json:"loading"`
	FieldErrors map[string]string    `json:"fieldErrors"`
}

// TreasuryPage drives balance lookups, sweep checks and sweeps. Check and
// sweep are independent: a sweep never requires or invalidates a check.
type TreasuryPage struct {
	funds    *services.FundService
	notifier notify.Notifier
	alerts   notify.Notifier
	audit    *services.AuditService

	mu          sync.Mutex
	chain       models.Chain
	source      string
	destination string
	balance     *models.FundBalance
	balances    []models.FundBalance
	check       *models.SweepCheck
	lastSweep   *models.SweepResult
	dialogOpen  bool
	loading     map[string]bool
	fieldErrors map[string]string
}

// NewTreasuryPage builds the page. alerts receives sweep outcomes for the
// operations channel and may be nil.
func NewTreasuryPage(funds *services.FundService, n, alerts notify.Notifier, audit *services.AuditService) *TreasuryPage {
	return &TreasuryPage{
		funds:       funds,
		notifier:    notify.OrDiscard(n),
		alerts:      notify.OrDiscard(alerts),
		audit:       audit,
		chain:       models.ChainBSC,
		loading:     map[string]bool{},
		fieldErrors: map[string]string{},
	}
}

func (p *TreasuryPage) SetChain(s string) error {
	c, ok := models.ParseChain(s)
	if !ok {
		return validation.New("chain", fmt.Sprintf("chain must be one of %v", models.AllChains()))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if c != p.chain {
		p.chain = c
		p.balances = nil
		p.balance = nil
	}
	return nil
}

func (p *TreasuryPage) SetSource(addr string) {
	p.mu.Lock()
	p.source = addr
	delete(p.fieldErrors, "source")
	p.mu.Unlock()
}

func (p *TreasuryPage) SetDestination(addr string) {
	p.mu.Lock()
	p.destination = addr
	delete(p.fieldErrors, "destination")
	p.mu.Unlock()
}

func (p *TreasuryPage) OpenDialog() {
	p.mu.Lock()
	p.dialogOpen = true
	p.mu.Unlock()
}

func (p *TreasuryPage) CloseDialog() {
	p.mu.Lock()
	p.dialogOpen = false
	p.mu.Unlock()
}

// begin flags action as loading and returns the chain and addresses as
// they were when the action started.
func (p *TreasuryPage) begin(action string) (models.Chain, string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading[action] = true
	return p.chain, p.source, p.destination
}

func (p *TreasuryPage) end(action string) {
	p.mu.Lock()
	p.loading[action] = false
	p.mu.Unlock()
}

// invalid records field errors from err. It reports whether err was a
// validation failure.
func (p *TreasuryPage) invalid(err error) bool {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return false
	}
	p.mu.Lock()
	for _, f := range verr.Fields {
		p.fieldErrors[f.Field] = f.Message
	}
	p.mu.Unlock()
	return true
}

func (p *TreasuryPage) LookupBalance(ctx context.Context) error {
	chain, source, _ := p.begin(ActionBalance)
	defer p.end(ActionBalance)
	if err := validation.Address("source", source, chain.IsTron()); err != nil {
		p.invalid(err)
		return err
	}
	res, err := p.funds.Balance(ctx, chain, source)
	if err != nil {
		surface(ctx, p.notifier, "treasury", ActionBalance, err)
		return err
	}
	p.mu.Lock()
	p.balance = &res.Data
	p.mu.Unlock()
	return nil
}

func (p *TreasuryPage) LookupAll(ctx context.Context) error {
	chain, _, _ := p.begin(ActionAll)
	defer p.end(ActionAll)
	res, err := p.funds.AllBalances(ctx, chain)
	if err != nil {
		surface(ctx, p.notifier, "treasury", ActionAll, err)
		return err
	}
	p.mu.Lock()
	p.balances = res.Data
	p.mu.Unlock()
	return nil
}

func (p *TreasuryPage) CheckSweep(ctx context.Context) error {
	chain, source, _ := p.begin(ActionCheck)
	defer p.end(ActionCheck)
	if err := validation.Address("source", source, chain.IsTron()); err != nil {
		p.invalid(err)
		return err
	}
	res, err := p.funds.CheckSweep(ctx, chain, source)
	if err != nil {
		surface(ctx, p.notifier, "treasury", ActionCheck, err)
		return err
	}
	p.mu.Lock()
	p.check = &res.Data
	p.mu.Unlock()
	level := notify.LevelInfo
	if !res.Data.CanSweep {
		level = notify.LevelWarning
	}
	if res.Data.Message != "" {
		p.notifier.Notify(ctx, level, res.Data.Message)
	}
	return nil
}

// Sweep moves one source address to the destination.
func (p *TreasuryPage) Sweep(ctx context.Context) error {
	chain, source, dest := p.begin(ActionSweep)
	defer p.end(ActionSweep)
	if err := joinFieldErrors(
		validation.Address("source", source, chain.IsTron()),
		validation.Address("destination", dest, chain.IsTron()),
	); err != nil {
		p.invalid(err)
		return err
	}
	res, err := p.funds.SweepAddress(ctx, chain, source, dest)
	p.audit.Record(ctx, "funds.sweep_address", source, map[string]string{
		"chain": string(chain), "address": source, "destinationAddress": dest,
	}, err)
	if err != nil {
		surface(ctx, p.notifier, "treasury", ActionSweep, err)
		p.alerts.Notify(ctx, notify.LevelError, fmt.Sprintf("Sweep of %s on %s failed: %v", common.ShortAddress(source), chain, err))
		return err
	}
	msg := fmt.Sprintf("Swept %s on %s to %s", common.ShortAddress(source), chain, common.ShortAddress(dest))
	if res.Data.TxHash != "" {
		msg += " (tx " + res.Data.TxHash + ")"
	}
	p.finishSweep(ctx, &res.Data, msg)
	return nil
}

// SweepAll moves every deposit address on the selected chain to the
// destination.
func (p *TreasuryPage) SweepAll(ctx context.Context) error {
	chain, _, dest := p.begin(ActionSweepAll)
	defer p.end(ActionSweepAll)
	if err := validation.Address("destination", dest, chain.IsTron()); err != nil {
		p.invalid(err)
		return err
	}
	res, err := p.funds.SweepAll(ctx, chain, dest)
	p.audit.Record(ctx, "funds.sweep_all", string(chain), map[string]string{
		"chain": string(chain), "destinationAddress": dest,
	}, err)
	if err != nil {
		surface(ctx, p.notifier, "treasury", ActionSweepAll, err)
		p.alerts.Notify(ctx, notify.LevelError, fmt.Sprintf("Sweep-all on %s failed: %v", chain, err))
		return err
	}
	msg := fmt.Sprintf("Swept %d addresses on %s to %s, total %s USDT",
		res.Data.Swept, chain, common.ShortAddress(dest), res.Data.TotalAmount.StringFixed(2))
	if res.Data.Failed > 0 {
		msg += fmt.Sprintf(", %d failed", res.Data.Failed)
	}
	p.finishSweep(ctx, &res.Data, msg)
	return nil
}

func (p *TreasuryPage) finishSweep(ctx context.Context, res *models.SweepResult, msg string) {
	p.mu.Lock()
	p.lastSweep = res
	p.dialogOpen = false
	p.source = ""
	p.destination = ""
	p.fieldErrors = map[string]string{}
	p.mu.Unlock()
	p.notifier.Notify(ctx, notify.LevelSuccess, msg)
	p.alerts.Notify(ctx, notify.LevelSuccess, msg)
}

func (p *TreasuryPage) View() TreasuryView {
	p.mu.Lock()
	defer p.mu.Unlock()
	loading := make(map[string]bool, len(p.loading))
	for k, v := range p.loading {
		loading[k] = v
	}
	fieldErrors := make(map[string]string, len(p.fieldErrors))
	for k, v := range p.fieldErrors {
		fieldErrors[k] = v
	}
	balances := p.balances
	if balances == nil {
		balances = []models.FundBalance{}
	}
	return TreasuryView{
		Chain:       p.chain,
		Chains:      models.AllChains(),
		Source:      p.source,
		Destination: p.destination,
		Balance:     p.balance,
		Balances:    balances,
		Check:       p.check,
		LastSweep:   p.lastSweep,
		DialogOpen:  p.dialogOpen,
		Loading:     loading,
		FieldErrors: fieldErrors,
	}
}

// joinFieldErrors merges validation errors into one.
func joinFieldErrors(errs ...error) error {
	out := &validation.Error{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		var verr *validation.Error
		if !errors.As(err, &verr) {
			return err
		}
		out.Fields = append(out.Fields, verr.Fields...)
	}
	if len(out.Fields) == 0 {
		return nil
	}
	return out
}

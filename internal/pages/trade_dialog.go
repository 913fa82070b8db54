package pages

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"admin-console/internal/models"
	"admin-console/internal/notify"
	"admin-console/internal/services"
	"admin-console/pkg/validation"
)

// TradeForm is the dummy-trade form as the operator typed it.
type TradeForm struct {
	Pair       string `json:"pair" form:"pair" validate:"required"`
	Direction  string `json:"direction" form:"direction" validate:"required,oneof=UP DOWN"`
	Amount     string `json:"amount" form:"amount" validate:"required,nonneg"`
	NetAmount  string `json:"netAmount" form:"netAmount" validate:"required,nonneg"`
	Fee        string `json:"fee" form:"fee" validate:"required,nonneg"`
	EntryPrice string `json:"entryPrice" form:"entryPrice" validate:"required,nonneg"`
	ExitPrice  string `json:"exitPrice" form:"exitPrice" validate:"required,nonneg"`
	Payout     string `json:"payout" form:"payout" validate:"required,nonneg"`
	Status     string `json:"status" form:"status" validate:"required,oneof=OPEN WIN LOSS"`
	StartTime  string `json:"startTime" form:"startTime" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	ExpiryTime string `json:"expiryTime" form:"expiryTime" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	UserID     string `json:"userId,omitempty" form:"userId"`
	IsDummy    *bool  `json:"isDummy,omitempty" form:"isDummy"`
}

var numericTradeFields = map[string]bool{
	"amount": true, "netAmount": true, "fee": true,
	"entryPrice": true, "exitPrice": true, "payout": true,
}

// Payload returns only the fields that were filled in, keyed by their JSON
// names. Numeric fields are sent as JSON numbers.
func (f TradeForm) Payload() map[string]interface{} {
	out := map[string]interface{}{}
	v := reflect.ValueOf(f)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		switch fv := v.Field(i); fv.Kind() {
		case reflect.String:
			s := strings.TrimSpace(fv.String())
			if s == "" {
				continue
			}
			if numericTradeFields[name] {
				out[name] = jsonNumber(s)
			} else {
				out[name] = s
			}
		case reflect.Ptr:
			if !fv.IsNil() {
				out[name] = fv.Elem().Interface()
			}
		}
	}
	return out
}

// Trimmed returns f with surrounding blanks removed from every text field,
// so a value of only spaces counts as missing.
func (f TradeForm) Trimmed() TradeForm {
	v := reflect.ValueOf(&f).Elem()
	for i := 0; i < v.NumField(); i++ {
		if fv := v.Field(i); fv.Kind() == reflect.String {
			fv.SetString(strings.TrimSpace(fv.String()))
		}
	}
	return f
}

// jsonNumber sends a validated amount as a JSON number in canonical form.
func jsonNumber(s string) interface{} {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return json.Number(d.String())
}

type TradeDialogView struct {
	Open        bool              `json:"open"`
	Saving      bool              `json:"saving"`
	Form        TradeForm         `json:"form"`
	FieldErrors map[string]string `json:"fieldErrors"`
}

// TradeDialog creates dummy trades and refreshes the trade summary after a
// successful create.
type TradeDialog struct {
	trades   *services.TradeService
	summary  *SummaryCard
	notifier notify.Notifier
	audit    *services.AuditService
	// OnCreated runs after a successful create, e.g. to reload the trade list.
	OnCreated func(ctx context.Context)

	mu          sync.Mutex
	open        bool
	saving      bool
	form        TradeForm
	fieldErrors map[string]string
}

func NewTradeDialog(trades *services.TradeService, summary *SummaryCard, n notify.Notifier, audit *services.AuditService) *TradeDialog {
	return &TradeDialog{
		trades:      trades,
		summary:     summary,
		notifier:    notify.OrDiscard(n),
		audit:       audit,
		fieldErrors: map[string]string{},
	}
}

func (d *TradeDialog) Open() {
	d.mu.Lock()
	d.open = true
	d.mu.Unlock()
}

func (d *TradeDialog) Close() {
	d.mu.Lock()
	d.open = false
	d.mu.Unlock()
}

// Submit validates form and creates the trade. Invalid forms never reach
// the network; their messages are kept per field.
func (d *TradeDialog) Submit(ctx context.Context, form TradeForm) (*models.Trade, error) {
	form = form.Trimmed()
	d.mu.Lock()
	d.form = form
	d.fieldErrors = map[string]string{}
	d.mu.Unlock()

	if err := validation.Struct(form); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			d.mu.Lock()
			for _, f := range verr.Fields {
				d.fieldErrors[f.Field] = f.Message
			}
			d.mu.Unlock()
		}
		return nil, err
	}

	d.mu.Lock()
	d.saving = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.saving = false
		d.mu.Unlock()
	}()

	payload := form.Payload()
	res, err := d.trades.Create(ctx, payload)
	d.audit.Record(ctx, "trade.create", form.Pair, payload, err)
	if err != nil {
		surface(ctx, d.notifier, "trades", "create", err)
		return nil, err
	}

	d.mu.Lock()
	d.form = TradeForm{}
	d.open = false
	d.mu.Unlock()

	d.notifier.Notify(ctx, notify.LevelSuccess, "Trade data created")
	if d.summary != nil {
		_ = d.summary.Load(ctx)
	}
	if d.OnCreated != nil {
		d.OnCreated(ctx)
	}
	return &res.Data, nil
}

func (d *TradeDialog) View() TradeDialogView {
	d.mu.Lock()
	defer d.mu.Unlock()
	fieldErrors := make(map[string]string, len(d.fieldErrors))
	for k, v := range d.fieldErrors {
		fieldErrors[k] = v
	}
	return TradeDialogView{Open: d.open, Saving: d.saving, Form: d.form, FieldErrors: fieldErrors}
}

package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"admin-console/internal/models"
	"admin-console/internal/notify"
	"admin-console/internal/services"
	"admin-console/pkg/validation"
)

// CreditForm books a synthetic deposit for a user.
type CreditForm struct {
	UID      string `json:"uid" form:"uid" validate:"required"`
	Amount   string `json:"amount" form:"amount" validate:"required,decimal"`
	Currency string `json:"currency" form:"currency" validate:"omitempty,oneof=USDT"`
	Note     string `json:"note" form:"note" validate:"max=200"`
}

func (f CreditForm) credit() (models.DepositCredit, error) {
	if err := validation.Struct(f); err != nil {
		return models.DepositCredit{}, err
	}
	amount, _ := decimal.NewFromString(strings.TrimSpace(f.Amount))
	if !amount.IsPositive() {
		return models.DepositCredit{}, validation.New("amount", "amount must be greater than 0")
	}
	currency := f.Currency
	if currency == "" {
		currency = "USDT"
	}
	return models.DepositCredit{
		UID:      strings.TrimSpace(f.UID),
		Amount:   amount,
		Currency: currency,
		Note:     strings.TrimSpace(f.Note),
	}, nil
}

type CreditDialogView struct {
	Saving      bool              `json:"saving"`
	Form        CreditForm        `json:"form"`
	FieldErrors map[string]string `json:"fieldErrors"`
	Last        *models.Deposit   `json:"last,omitempty"`
}

type CreditDialog struct {
	deposits *services.DepositService
	notifier notify.Notifier
	alerts   notify.Notifier
	audit    *services.AuditService
	// OnCredited runs after a successful credit, e.g. to reload the deposit list.
	OnCredited func(ctx context.Context)

	mu          sync.Mutex
	saving      bool
	form        CreditForm
	fieldErrors map[string]string
	last        *models.Deposit
}

func NewCreditDialog(deposits *services.DepositService, n, alerts notify.Notifier, audit *services.AuditService) *CreditDialog {
	return &CreditDialog{
		deposits:    deposits,
		notifier:    notify.OrDiscard(n),
		alerts:      notify.OrDiscard(alerts),
		audit:       audit,
		fieldErrors: map[string]string{},
	}
}

func (d *CreditDialog) Submit(ctx context.Context, form CreditForm) (*models.Deposit, error) {
	d.mu.Lock()
	d.form = form
	d.fieldErrors = map[string]string{}
	d.mu.Unlock()

	credit, err := form.credit()
	if err != nil {
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

	res, err := d.deposits.CreditUser(ctx, credit)
	d.audit.Record(ctx, "deposit.credit", credit.UID, credit, err)
	if err != nil {
		surface(ctx, d.notifier, "deposits", "credit", err)
		return nil, err
	}

	d.mu.Lock()
	d.form = CreditForm{}
	d.last = &res.Data
	d.mu.Unlock()

	msg := fmt.Sprintf("Credited %s %s to %s", credit.Amount.String(), credit.Currency, credit.UID)
	d.notifier.Notify(ctx, notify.LevelSuccess, msg)
	d.alerts.Notify(ctx, notify.LevelInfo, msg)
	if d.OnCredited != nil {
		d.OnCredited(ctx)
	}
	return &res.Data, nil
}

func (d *CreditDialog) View() CreditDialogView {
	d.mu.Lock()
	defer d.mu.Unlock()
	fieldErrors := make(map[string]string, len(d.fieldErrors))
	for k, v := range d.fieldErrors {
		fieldErrors[k] = v
	}
	return CreditDialogView{Saving: d.saving, Form: d.form, FieldErrors: fieldErrors, Last: d.last}
}

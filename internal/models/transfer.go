package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	StatusPending    TransferStatus = "PENDING"
	StatusProcessing TransferStatus = "PROCESSING"
	StatusCompleted  TransferStatus = "COMPLETED"
	StatusFailed     TransferStatus = "FAILED"
	StatusRejected   TransferStatus = "REJECTED"
)

// Tone is the colour family the console uses for a status chip.
func (s TransferStatus) Tone() string {
	switch s {
	case StatusCompleted:
		return "success"
	case StatusPending, StatusProcessing:
		return "warning"
	case StatusFailed, StatusRejected:
		return "error"
	default:
		return "default"
	}
}

type Deposit struct {
	ID        string          `json:"id"`
	UID       string          `json:"uid"`
	Chain     Chain           `json:"chain"`
	Address   string          `json:"address"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    TransferStatus  `json:"status"`
	TxHash    string          `json:"txHash,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Withdrawal struct {
	ID        string          `json:"id"`
	UID       string          `json:"uid"`
	Chain     Chain           `json:"chain"`
	Address   string          `json:"address"`
	Amount    decimal.Decimal `json:"amount"`
	Fee       decimal.Decimal `json:"fee"`
	Currency  string          `json:"currency"`
	Status    TransferStatus  `json:"status"`
	TxHash    string          `json:"txHash,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type IncomeType string

const (
	IncomeReferralBonus IncomeType = "REFERRAL_BONUS"
	IncomeLevel         IncomeType = "LEVEL_INCOME"
	IncomeDailyROI      IncomeType = "DAILY_ROI"
	IncomeBonus         IncomeType = "BONUS"
)

type IncomeRecord struct {
	ID          string          `json:"id"`
	UID         string          `json:"uid"`
	Type        IncomeType      `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	FromUID     string          `json:"fromUid,omitempty"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// DepositCredit is the body of an admin-issued synthetic deposit.
type DepositCredit struct {
	UID       string          `json:"uid"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency,omitempty"`
	Reference string          `json:"reference"`
	Note      string          `json:"note,omitempty"`
}

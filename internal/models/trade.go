package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TradeDirection string

const (
	DirectionUp   TradeDirection = "UP"
	DirectionDown TradeDirection = "DOWN"
)

type TradeStatus string

const (
	TradeOpen TradeStatus = "OPEN"
	TradeWin  TradeStatus = "WIN"
	TradeLoss TradeStatus = "LOSS"
)

type Trade struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId,omitempty"`
	Pair       string          `json:"pair"`
	Direction  TradeDirection  `json:"direction"`
	Amount     decimal.Decimal `json:"amount"`
	NetAmount  decimal.Decimal `json:"netAmount"`
	Fee        decimal.Decimal `json:"fee"`
	EntryPrice decimal.Decimal `json:"entryPrice"`
	ExitPrice  decimal.Decimal `json:"exitPrice"`
	Payout     decimal.Decimal `json:"payout"`
	Status     TradeStatus     `json:"status"`
	StartTime  time.Time       `json:"startTime"`
	ExpiryTime time.Time       `json:"expiryTime"`
	IsDummy    bool            `json:"isDummy"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// TradeSummary feeds the cards above the trade data table.
type TradeSummary struct {
	TotalTrades int             `json:"totalTrades"`
	DummyTrades int             `json:"dummyTrades"`
	OpenTrades  int             `json:"openTrades"`
	Wins        int             `json:"wins"`
	Losses      int             `json:"losses"`
	TotalVolume decimal.Decimal `json:"totalVolume"`
	TotalPayout decimal.Decimal `json:"totalPayout"`
}

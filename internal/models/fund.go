package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Chain string

const (
	ChainBSC     Chain = "BSC"
	ChainETH     Chain = "ETH"
	ChainPolygon Chain = "POLYGON"
	ChainTron    Chain = "TRON"
)

// AllChains is the fixed set the treasury page can sweep on.
func AllChains() []Chain {
	return []Chain{ChainBSC, ChainETH, ChainPolygon, ChainTron}
}

func ParseChain(s string) (Chain, bool) {
	c := Chain(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllChains() {
		if c == known {
			return c, true
		}
	}
	return "", false
}

func (c Chain) IsTron() bool { return c == ChainTron }

type FundBalance struct {
	Address        string          `json:"address"`
	UID            string          `json:"uid,omitempty"`
	Chain          Chain           `json:"chain"`
	USDT           decimal.Decimal `json:"usdtBalance"`
	Native         decimal.Decimal `json:"nativeBalance"`
	NativeCurrency string          `json:"nativeCurrency,omitempty"`
}

// SweepCheck is the backend's answer to "can this address be swept now".
type SweepCheck struct {
	CanSweep      bool            `json:"canSweep"`
	RequiredGas   decimal.Decimal `json:"requiredGas"`
	NativeBalance decimal.Decimal `json:"nativeBalance"`
	GasInUSDT     decimal.Decimal `json:"gasInUsdt"`
	USDTBalance   decimal.Decimal `json:"usdtBalance"`
	Message       string          `json:"message"`
}

type SweepResult struct {
	TxHash      string          `json:"txHash,omitempty"`
	Swept       int             `json:"swept"`
	Failed      int             `json:"failed"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Message     string          `json:"message,omitempty"`
}

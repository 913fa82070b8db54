package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ROISetting struct {
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updatedAt,omitempty"`
}

type ROIUpdate struct {
	Rate          float64 `json:"rate"`
	ApplyToActive bool    `json:"applyToActive"`
}

// ROIUpdateResult is what the backend returns after a rate change; the rate
// may have been normalised server-side.
type ROIUpdateResult struct {
	Rate               decimal.Decimal `json:"rate"`
	UpdatedInvestments int             `json:"updatedInvestments"`
}

type DashboardStats struct {
	TotalUsers       int             `json:"totalUsers"`
	ActiveUsers      int             `json:"activeUsers"`
	BlockedUsers     int             `json:"blockedUsers"`
	TotalDeposits    decimal.Decimal `json:"totalDeposits"`
	TotalWithdrawals decimal.Decimal `json:"totalWithdrawals"`
	PendingDeposits  int             `json:"pendingDeposits"`
	PendingWithdraws int             `json:"pendingWithdrawals"`
	TotalInvested    decimal.Decimal `json:"totalInvested"`
	TotalIncomePaid  decimal.Decimal `json:"totalIncomePaid"`
	TreasuryBalance  decimal.Decimal `json:"treasuryBalance"`
}

// Metric is one card on the dashboard.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func (d DashboardStats) Metrics() []Metric {
	return []Metric{
		{Label: "Total users", Value: itoa(d.TotalUsers)},
		{Label: "Active users", Value: itoa(d.ActiveUsers)},
		{Label: "Blocked users", Value: itoa(d.BlockedUsers)},
		{Label: "Total deposits", Value: d.TotalDeposits.StringFixed(2)},
		{Label: "Total withdrawals", Value: d.TotalWithdrawals.StringFixed(2)},
		{Label: "Pending deposits", Value: itoa(d.PendingDeposits)},
		{Label: "Pending withdrawals", Value: itoa(d.PendingWithdraws)},
		{Label: "Total invested", Value: d.TotalInvested.StringFixed(2)},
		{Label: "Income paid", Value: d.TotalIncomePaid.StringFixed(2)},
		{Label: "Treasury balance", Value: d.TreasuryBalance.StringFixed(2)},
	}
}

func itoa(n int) string { return decimal.NewFromInt(int64(n)).String() }

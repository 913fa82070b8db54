package pages

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-console/internal/models"
	"admin-console/internal/notify"
	"admin-console/pkg/common"
	"admin-console/pkg/validation"
)

const (
	evmSource   = "0x52908400098527886E0F7030069857D2E4169EE7"
	evmTreasury = "0x8617E340B3D01FA5F11F306F4090FD50E238070D"
)

func TestSweepAllWithoutDestinationSendsNothing(t *testing.T) {
	api, ws, alerts := newTestWorkspace(t)

	err := ws.Treasury.SweepAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, common.ClassValidation, common.Classify(err))
	assert.Empty(t, api.requests())
	assert.Equal(t, "destination is required", ws.Treasury.View().FieldErrors["destination"])
	assert.Equal(t, 0, alerts.Len())
	assert.False(t, ws.Treasury.View().Loading[ActionSweepAll])
}

func TestSweepRequiresBothAddresses(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	ws.Treasury.SetDestination("not-an-address")

	err := ws.Treasury.Sweep(context.Background())
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "source is required", verr.Field("source"))
	assert.Equal(t, "destination is not a valid EVM address", verr.Field("destination"))
	assert.Empty(t, api.requests())
}

func TestTronChainChecksTronAddresses(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	require.NoError(t, ws.Treasury.SetChain("tron"))
	ws.Treasury.SetDestination(evmTreasury)
	assert.Error(t, ws.Treasury.SweepAll(context.Background()))
	assert.Empty(t, api.requests())

	assert.Error(t, ws.Treasury.SetChain("SOL"))
	assert.Equal(t, models.ChainTron, ws.Treasury.View().Chain)
}

func TestSweepSuccessClosesDialogAndClearsAddresses(t *testing.T) {
	api, ws, alerts := newTestWorkspace(t)
	api.set("/admin/funds/sweep-address", 200, `{"success":true,"data":{"txHash":"0xabc","swept":1,"totalAmount":"25"}}`)
	ws.Treasury.OpenDialog()
	ws.Treasury.SetSource(evmSource)
	ws.Treasury.SetDestination(evmTreasury)

	require.NoError(t, ws.Treasury.Sweep(context.Background()))

	view := ws.Treasury.View()
	assert.False(t, view.DialogOpen)
	assert.Empty(t, view.Source)
	assert.Empty(t, view.Destination)
	require.NotNil(t, view.LastSweep)
	assert.Equal(t, "0xabc", view.LastSweep.TxHash)

	reqs := api.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, map[string]interface{}{
		"chain": "BSC", "address": evmSource, "destinationAddress": evmTreasury,
	}, reqs[0].Body)
	assert.Equal(t, 1, alerts.Len())
}

func TestSweepFailureKeepsDialogOpen(t *testing.T) {
	api, ws, alerts := newTestWorkspace(t)
	api.set("/admin/funds/sweep-all", 500, `{"success":false,"message":"hot wallet locked"}`)
	ws.Treasury.OpenDialog()
	ws.Treasury.SetDestination(evmTreasury)

	require.Error(t, ws.Treasury.SweepAll(context.Background()))
	view := ws.Treasury.View()
	assert.True(t, view.DialogOpen)
	assert.Equal(t, evmTreasury, view.Destination)

	toasts := ws.Toasts.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, "hot wallet locked", toasts[0].Message)
	assert.Equal(t, notify.LevelError, alerts.Drain()[0].Level)
}

func TestCheckSweepIsIndependentOfSweep(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/funds/check-sweep", 200, `{"success":true,"data":{"canSweep":false,"requiredGas":"0.002",
		"nativeBalance":"0","gasInUsdt":"1.2","usdtBalance":"40","message":"insufficient BNB for gas"}}`)
	api.set("/admin/funds/sweep-address", 200, `{"success":true,"data":{"swept":1}}`)
	ctx := context.Background()
	ws.Treasury.SetSource(evmSource)
	ws.Treasury.SetDestination(evmTreasury)

	require.NoError(t, ws.Treasury.CheckSweep(ctx))
	check := ws.Treasury.View().Check
	require.NotNil(t, check)
	assert.False(t, check.CanSweep)
	assert.Equal(t, "1.2", check.GasInUSDT.String())

	require.NoError(t, ws.Treasury.Sweep(ctx))
	assert.NotNil(t, ws.Treasury.View().Check, "a sweep does not clear the last check")
}

func TestLookupAllUsesSelectedChain(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/funds/all", 200, `{"success":true,"data":[{"address":"0x1","chain":"POLYGON","usdtBalance":"3"}]}`)
	require.NoError(t, ws.Treasury.SetChain("POLYGON"))
	require.NoError(t, ws.Treasury.LookupAll(context.Background()))
	assert.Equal(t, "POLYGON", api.requests()[0].Query.Get("chain"))
	assert.Len(t, ws.Treasury.View().Balances, 1)
}

func TestROIRejectsOutOfRangeWithoutRequest(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	for _, text := range []string{"0.05", "100.01", "abc", "", "-3"} {
		err := ws.ROI.Submit(context.Background(), text, false)
		assert.Error(t, err, text)
		assert.Equal(t, common.ClassValidation, common.Classify(err), text)
	}
	assert.Empty(t, api.requests())
	assert.NotEmpty(t, ws.ROI.View().FieldError)
}

func TestROIBoundsAreInclusive(t *testing.T) {
	for _, text := range []string{"0.1", "100", " 2.5 "} {
		_, err := ParseRate(text)
		assert.NoError(t, err, text)
	}
}

func TestROISubmitUsesServerRateAndReportsCascade(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/settings/roi", 200, `{"success":true,"data":{"rate":"1.5","updatedInvestments":12}}`)

	require.NoError(t, ws.ROI.Submit(context.Background(), "1.499", true))
	assert.Equal(t, "1.5", ws.ROI.View().Rate.String())
	assert.Equal(t, map[string]interface{}{"rate": 1.499, "applyToActive": true}, api.requests()[0].Body)

	toasts := ws.Toasts.Drain()
	require.Len(t, toasts, 2)
	assert.Equal(t, notify.LevelSuccess, toasts[0].Level)
	assert.Equal(t, notify.LevelInfo, toasts[1].Level)
	assert.Equal(t, "Updated 12 active investments", toasts[1].Message)
}

func TestROINoCascadeNoticeWithoutFlag(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/settings/roi", 200, `{"success":true,"data":{"rate":"2","updatedInvestments":12}}`)
	require.NoError(t, ws.ROI.Submit(context.Background(), "2", false))
	assert.Len(t, ws.Toasts.Drain(), 1)
}

func validTradeForm() TradeForm {
	return TradeForm{
		Pair:       "BTC/USDT",
		Direction:  "UP",
		Amount:     "100",
		NetAmount:  "98",
		Fee:        "2",
		EntryPrice: "64000.5",
		ExitPrice:  "64100",
		Payout:     "180",
		Status:     "WIN",
		StartTime:  "2026-10-01T10:00:00Z",
		ExpiryTime: "2026-10-01T10:05:00Z",
	}
}

func TestTradeDialogRejectsNegativeEntryPrice(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	form := validTradeForm()
	form.EntryPrice = "-1"

	_, err := ws.TradeDialog.Submit(context.Background(), form)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "entryPrice must be ≥ 0", verr.Field("entryPrice"))
	assert.Equal(t, "entryPrice must be ≥ 0", ws.TradeDialog.View().FieldErrors["entryPrice"])
	assert.Empty(t, api.requests())
}

func TestTradeDialogRejectsBadEnumsAndTimes(t *testing.T) {
	_, ws, _ := newTestWorkspace(t)
	form := validTradeForm()
	form.Direction = "LEFT"
	form.Status = ""
	form.ExpiryTime = "tomorrow"

	_, err := ws.TradeDialog.Submit(context.Background(), form)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "direction must be one of UP, DOWN", verr.Field("direction"))
	assert.Equal(t, "status is required", verr.Field("status"))
	assert.Equal(t, "expiryTime must be a valid timestamp", verr.Field("expiryTime"))
}

func TestTradeDialogRejectsBlankPair(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	form := validTradeForm()
	form.Pair = "   "
	form.Direction = " UP "

	_, err := ws.TradeDialog.Submit(context.Background(), form)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pair is required", verr.Field("pair"))
	assert.Empty(t, verr.Field("direction"))
	assert.Empty(t, api.requests())
}

func TestTradeDialogSendsOnlyFilledFields(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/trade-data", 200, `{"success":true,"data":{"id":"t1","pair":"BTC/USDT"}}`)
	api.set("/admin/trade-data/summary", 200, `{"success":true,"data":{"totalTrades":9,"dummyTrades":4}}`)
	ws.TradeDialog.Open()

	trade, err := ws.TradeDialog.Submit(context.Background(), validTradeForm())
	require.NoError(t, err)
	assert.Equal(t, "t1", trade.ID)

	reqs := api.requests()
	require.GreaterOrEqual(t, len(reqs), 2)
	body := reqs[0].Body
	assert.Equal(t, "BTC/USDT", body["pair"])
	assert.Equal(t, 64000.5, body["entryPrice"])
	assert.NotContains(t, body, "userId")
	assert.NotContains(t, body, "isDummy")

	assert.Equal(t, "/admin/trade-data/summary", reqs[1].Path)
	assert.Equal(t, 9, ws.TradeSummary.View().Data.TotalTrades)

	view := ws.TradeDialog.View()
	assert.False(t, view.Open)
	assert.Equal(t, TradeForm{}, view.Form)
}

func TestTradePayloadKeepsExplicitFlags(t *testing.T) {
	dummy := true
	form := validTradeForm()
	form.UserID = "U5"
	form.IsDummy = &dummy
	payload := form.Payload()
	assert.Equal(t, "U5", payload["userId"])
	assert.Equal(t, true, payload["isDummy"])
}

func TestCreditDialog(t *testing.T) {
	api, ws, alerts := newTestWorkspace(t)

	_, err := ws.Credit.Submit(context.Background(), CreditForm{UID: "U1", Amount: "0"})
	require.Error(t, err)
	assert.Equal(t, "amount must be greater than 0", ws.Credit.View().FieldErrors["amount"])
	_, err = ws.Credit.Submit(context.Background(), CreditForm{Amount: "ten"})
	require.Error(t, err)
	assert.Empty(t, api.requests())

	api.set("/admin/deposit/user", 200, `{"success":true,"data":{"id":"d1","uid":"U1","status":"COMPLETED","amount":"50"}}`)
	api.set("/admin/deposit-history", 200, `{"success":true,"data":[]}`)
	dep, err := ws.Credit.Submit(context.Background(), CreditForm{UID: "U1", Amount: "50", Note: "promo"})
	require.NoError(t, err)
	assert.Equal(t, "d1", dep.ID)

	body := api.requests()[0].Body
	assert.Equal(t, "USDT", body["currency"])
	assert.Equal(t, "promo", body["note"])
	assert.Equal(t, "/admin/deposit-history", api.requests()[1].Path, "deposit list reloads")
	assert.Equal(t, 1, alerts.Len())
}

func TestDashboardMetrics(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/dashboard", 200, `{"success":true,"data":{"totalUsers":10,"blockedUsers":1,"totalDeposits":"1234.5"}}`)

	assert.Empty(t, ws.Dashboard.View().Metrics)
	require.NoError(t, ws.Dashboard.Load(context.Background()))
	view := ws.Dashboard.View()
	assert.Equal(t, StatusLoaded, view.Status)
	assert.Contains(t, view.Metrics, models.Metric{Label: "Total deposits", Value: "1234.50"})
	assert.Contains(t, view.Metrics, models.Metric{Label: "Total users", Value: "10"})
}

func TestBlockUserReloads(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/user/42/block", 200, `{"success":true,"data":{"id":"42","isBlocked":true}}`)
	api.set("/admin/users", 200, `{"success":true,"data":[{"id":"42","isBlocked":true}]}`)

	require.NoError(t, ws.Users.SetBlocked(context.Background(), "42", true))
	reqs := api.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "PUT", reqs[0].Method)
	assert.Equal(t, "/admin/users", reqs[1].Path)
	assert.Equal(t, "BLOCKED", ws.Users.View().Rows[0].Status())
}

func TestNetworkPagesAreCachedPerUID(t *testing.T) {
	api, ws, _ := newTestWorkspace(t)
	api.set("/admin/users/U1/network", 200, `{"success":true,"data":[{"uid":"U2","level":1}]}`)
	p := ws.Network("U1")
	assert.Same(t, p, ws.Network("U1"))
	require.NoError(t, p.Mount(context.Background()))
	assert.Equal(t, 1, p.View().Rows[0].Level)
	assert.Equal(t, "/admin/users/U1/network", api.requests()[0].Path)
}

func TestNetworkPagesAreBounded(t *testing.T) {
	_, ws, _ := newTestWorkspace(t)
	first := ws.Network("U0")
	for i := 1; i <= maxNetworkPages; i++ {
		ws.Network(fmt.Sprintf("U%d", i))
	}
	assert.Len(t, ws.network, maxNetworkPages)
	assert.NotSame(t, first, ws.Network("U0"))
	assert.Len(t, ws.network, maxNetworkPages)
}

package order

import (
	"testing"
	"time"

	"github.com/raykavin/aegis/config"
	"github.com/raykavin/aegis/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteAmountForThreeWayMin(t *testing.T) {
	// freeUSD=1000, positionSizePercent=15% -> 150; maxOrderSizeUSD=500;
	// pairAllocationPercent=50% -> 500. The smallest of the three wins.
	got := quoteAmountFor(d("1000"), 15, d("500"), d("50"))
	assert.True(t, got.Equal(d("150")), got.String())
}

func TestQuoteAmountForCappedByMaxOrderSize(t *testing.T) {
	got := quoteAmountFor(d("100000"), 50, d("500"), d("100"))
	assert.True(t, got.Equal(d("500")), got.String())
}

func TestBuildVolatilityMetricsDerivesATRPercent(t *testing.T) {
	ind := core.Indicators{CurrentPrice: 100, ATR14: 2}
	vm := buildVolatilityMetrics(ind)
	assert.InDelta(t, 2.0, vm.ATRPercentOfPrice, 0.0001)
}

func TestFilterBySymbolKeepsOnlyMatches(t *testing.T) {
	trades := []core.TradeRecord{
		{Symbol: "BTCUSDT"},
		{Symbol: "ETHUSDT"},
		{Symbol: "BTCUSDT"},
	}
	out := filterBySymbol(trades, "BTCUSDT")
	require.Len(t, out, 2)
	for _, tr := range out {
		assert.Equal(t, "BTCUSDT", tr.Symbol)
	}
}

func TestDailyPnLUSDSumsOnlySellsSinceMidnight(t *testing.T) {
	exch := &fakeExchange{}
	posStore := newFakePositionStore()
	tradeStore := &fakeTradeStore{}
	e := newTestEngine(exch, posStore, tradeStore, &fakeNotifier{})

	today := time.Now().Truncate(24 * time.Hour)
	winAmount := d("25")
	loseAmount := d("-10")
	tradeStore.trades = []core.TradeRecord{
		{Timestamp: today.Add(time.Hour), Action: core.SideTypeSell, PnLUSD: &winAmount},
		{Timestamp: today.Add(2 * time.Hour), Action: core.SideTypeSell, PnLUSD: &loseAmount},
		{Timestamp: today.Add(-time.Hour), Action: core.SideTypeSell, PnLUSD: &winAmount}, // before cutoff
		{Timestamp: today.Add(3 * time.Hour), Action: core.SideTypeBuy},                   // not a sell
	}

	total, err := e.dailyPnLUSD()
	require.NoError(t, err)
	assert.True(t, total.Equal(d("15")), total.String())
}

func TestOnBuyFilledPersistsPositionAndTradeHistory(t *testing.T) {
	exch := &fakeExchange{}
	posStore := newFakePositionStore()
	tradeStore := &fakeTradeStore{}
	notifier := &fakeNotifier{}
	e := newTestEngine(exch, posStore, tradeStore, notifier)

	signal := core.StrategySignal{Strategy: core.StrategyMomentum}
	verdict := core.AIVerdict{
		Signal:     core.SideTypeBuy,
		Confidence: 0.8,
		Parameters: core.VerdictParameters{PositionSizePercent: 5, StopLossPercent: 2, TakeProfitPercent: 4, RiskRewardRatio: 2},
	}
	result := core.BuyResult{OrderID: "buy-1", FilledQuantity: d("2"), FillPrice: d("50")}

	e.onBuyFilled(&config.Snapshot{}, "ETHUSDT", signal, verdict, result)

	assert.Equal(t, 1, e.openPositionCount())
	require.Len(t, tradeStore.trades, 1)
	assert.Equal(t, core.ExitStrategyEntry, tradeStore.trades[0].Reason)
	require.Len(t, tradeStore.orders, 1)
	assert.Contains(t, notifier.notified[0], "BUY ETHUSDT")
}

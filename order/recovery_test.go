package order

import (
	"context"
	"testing"

	"github.com/raykavin/aegis/config"
	"github.com/raykavin/aegis/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngineWithConfig(exch *fakeExchange, posStore *fakePositionStore, tradeStore *fakeTradeStore, snap *config.Snapshot) *Engine {
	e := New(exch, nil, nil, nil, posStore, tradeStore, &fakeNotifier{}, testLogger())
	e.configs = config.NewTestStore(snap)
	return e
}

func TestLoadAndReconcileKeepsMatchedPosition(t *testing.T) {
	posStore := newFakePositionStore()
	pos := &core.Position{
		Symbol: "BTCUSDT", Quantity: d("1"), EntryPrice: d("100"),
		HighestPriceSeen: d("100"), AIStopLossPercent: d("2"), AITakeProfitPercent: d("4"),
	}
	require.NoError(t, posStore.SaveAll(map[string]*core.Position{"BTCUSDT": pos}))

	exch := &fakeExchange{
		tickerPrice: d("105"),
		balances:    map[string]decimal.Decimal{"BTC": d("1")},
	}
	tradeStore := &fakeTradeStore{}
	snap := &config.Snapshot{Pairs: []config.PairConfig{{Symbol: "BTCUSDT", Enabled: true}}}
	e := newTestEngineWithConfig(exch, posStore, tradeStore, snap)

	report, err := e.LoadAndReconcile(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, 1, e.openPositionCount())
}

func TestLoadAndReconcileOrphansMissingBalance(t *testing.T) {
	posStore := newFakePositionStore()
	pos := &core.Position{
		Symbol: "BTCUSDT", Quantity: d("1"), EntryPrice: d("100"),
		HighestPriceSeen: d("100"), AIStopLossPercent: d("2"), AITakeProfitPercent: d("4"),
	}
	require.NoError(t, posStore.SaveAll(map[string]*core.Position{"BTCUSDT": pos}))

	exch := &fakeExchange{
		tickerPrice: d("105"),
		balances:    map[string]decimal.Decimal{}, // no BTC balance at all
	}
	tradeStore := &fakeTradeStore{}
	snap := &config.Snapshot{Pairs: []config.PairConfig{{Symbol: "BTCUSDT", Enabled: true}}}
	e := newTestEngineWithConfig(exch, posStore, tradeStore, snap)

	report, err := e.LoadAndReconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSDT"}, report.Orphaned)
	assert.Equal(t, 0, e.openPositionCount())
	require.Len(t, tradeStore.trades, 1)
	assert.Equal(t, core.ExitManual, tradeStore.trades[0].Reason)
}

func TestLoadAndReconcileFlagsUntrackedBalance(t *testing.T) {
	posStore := newFakePositionStore()
	exch := &fakeExchange{
		tickerPrice: d("1"),
		balances:    map[string]decimal.Decimal{"ETH": d("3")},
	}
	tradeStore := &fakeTradeStore{}
	snap := &config.Snapshot{Pairs: []config.PairConfig{{Symbol: "ETHUSDT", Enabled: true}}}
	e := newTestEngineWithConfig(exch, posStore, tradeStore, snap)

	report, err := e.LoadAndReconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ETHUSDT"}, report.Untracked)
}

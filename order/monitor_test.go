package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raykavin/aegis/config"
	"github.com/raykavin/aegis/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(exch *fakeExchange, posStore *fakePositionStore, tradeStore *fakeTradeStore, notifier *fakeNotifier) *Engine {
	return New(exch, nil, nil, nil, posStore, tradeStore, notifier, testLogger())
}

func d(v string) decimal.Decimal {
	dec, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return dec
}

func TestPurgePositionRemovesAndRecordsNoSell(t *testing.T) {
	exch := &fakeExchange{}
	posStore := newFakePositionStore()
	tradeStore := &fakeTradeStore{}
	notifier := &fakeNotifier{}
	e := newTestEngine(exch, posStore, tradeStore, notifier)

	pos := &core.Position{Symbol: "DOGEUSDT", Quantity: d("10"), EntryPrice: d("0.10"), HighestPriceSeen: d("0.10"), State: core.PositionOpen}
	require.NoError(t, e.putPosition(pos))

	e.purgePosition(pos, d("0.05"), core.ExitDustPurge)

	assert.Equal(t, 0, e.openPositionCount())
	assert.Equal(t, 0, exch.sellCalls, "dust purge never attempts a sell")
	require.Len(t, tradeStore.trades, 1)
	assert.Equal(t, core.ExitDustPurge, tradeStore.trades[0].Reason)
	assert.Contains(t, notifier.notified[0], "DUST_PURGE")
}

func TestExitPositionSuccessClosesAndRecordsPnL(t *testing.T) {
	exch := &fakeExchange{
		sellResult: core.SellResult{OrderID: "o1", FillPrice: d("120")},
	}
	posStore := newFakePositionStore()
	tradeStore := &fakeTradeStore{}
	notifier := &fakeNotifier{}
	e := newTestEngine(exch, posStore, tradeStore, notifier)

	pos := &core.Position{Symbol: "BTCUSDT", Quantity: d("1"), EntryPrice: d("100"), HighestPriceSeen: d("120"), State: core.PositionOpen}
	require.NoError(t, e.putPosition(pos))

	e.exitPosition(context.Background(), pos, d("120"), core.ExitTakeProfit)

	assert.Equal(t, 0, e.openPositionCount())
	assert.Equal(t, 1, exch.sellCalls)
	require.Len(t, tradeStore.trades, 1)
	require.NotNil(t, tradeStore.trades[0].PnLUSD)
	assert.True(t, tradeStore.trades[0].PnLUSD.Equal(d("20")))
	require.Len(t, tradeStore.orders, 1)
}

func TestExitPositionVolumeMinimumReclassifiesAsDust(t *testing.T) {
	exch := &fakeExchange{sellErr: core.ErrVolumeMinimumNotMet}
	posStore := newFakePositionStore()
	tradeStore := &fakeTradeStore{}
	notifier := &fakeNotifier{}
	e := newTestEngine(exch, posStore, tradeStore, notifier)

	pos := &core.Position{Symbol: "SHIBUSDT", Quantity: d("1000"), EntryPrice: d("0.001"), HighestPriceSeen: d("0.001"), State: core.PositionOpen}
	require.NoError(t, e.putPosition(pos))

	e.exitPosition(context.Background(), pos, d("0.0005"), core.ExitStopLoss)

	assert.Equal(t, 0, e.openPositionCount())
	require.Len(t, tradeStore.trades, 1)
	assert.Equal(t, core.ExitDustPurge, tradeStore.trades[0].Reason)
}

func TestExitPositionExhaustionReopensAndAlertsCritical(t *testing.T) {
	exch := &fakeExchange{sellErr: errors.New("exchange unavailable")}
	posStore := newFakePositionStore()
	tradeStore := &fakeTradeStore{}
	notifier := &fakeNotifier{}
	e := newTestEngine(exch, posStore, tradeStore, notifier)

	pos := &core.Position{Symbol: "ETHUSDT", Quantity: d("1"), EntryPrice: d("2000"), HighestPriceSeen: d("2000"), State: core.PositionOpen}
	require.NoError(t, e.putPosition(pos))

	// A near-immediate deadline makes the retry loop bail out after its
	// first failed attempt instead of actually sleeping through the
	// 3/6/9/12/15s backoff table.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	e.exitPosition(ctx, pos, d("1900"), core.ExitStopLoss)

	assert.Equal(t, 1, e.openPositionCount(), "position remains open for the next tick to retry")
	assert.NotEmpty(t, notifier.criticals)
	assert.Empty(t, tradeStore.trades, "no terminal trade record until a sell actually fills or is reclassified as dust")
}

func TestCheckTrailingStopArmsAndExits(t *testing.T) {
	exch := &fakeExchange{}
	posStore := newFakePositionStore()
	tradeStore := &fakeTradeStore{}
	e := newTestEngine(exch, posStore, tradeStore, &fakeNotifier{})

	risk := config.StrategyRisk{
		TrailingStop: config.TrailingStop{Enabled: true, ActivationPercent: d("5"), DistancePercent: d("3")},
	}
	pos := &core.Position{Symbol: "BTCUSDT", EntryPrice: d("100"), HighestPriceSeen: d("106")}

	// 5% above entry: armed, but price hasn't pulled back 3% off the high yet.
	_, armed, exit := e.checkTrailingStop(pos, risk, d("105"))
	assert.True(t, armed)
	assert.False(t, exit)

	// Engine persists the armed state between ticks (setTrailingArmed);
	// simulate that here before checking the next tick's price.
	pos.TrailingStopArmed = armed

	// Price falls to exactly highest*(1-3%) = 102.82: exit triggers even
	// though the instantaneous profit (2.82%) is now below the 5%
	// activation threshold, because arming is sticky once tripped.
	exitPrice, armed, exit := e.checkTrailingStop(pos, risk, d("102.82"))
	assert.True(t, armed)
	assert.True(t, exit)
	assert.True(t, exitPrice.Equal(d("102.82")))
}

func TestMonitorDustPurgesBelowMinOrderValue(t *testing.T) {
	exch := &fakeExchange{tickerPrice: d("0.0000001")}
	posStore := newFakePositionStore()
	tradeStore := &fakeTradeStore{}
	notifier := &fakeNotifier{}
	e := newTestEngine(exch, posStore, tradeStore, notifier)

	pos := &core.Position{Symbol: "PEPEUSDT", Quantity: d("100"), EntryPrice: d("0.00001"), HighestPriceSeen: d("0.00001"), State: core.PositionOpen}
	require.NoError(t, e.putPosition(pos))

	e.runMonitor(context.Background(), &config.Snapshot{}, "PEPEUSDT", pos)

	assert.Equal(t, 0, e.openPositionCount())
	require.Len(t, tradeStore.trades, 1)
	assert.Equal(t, core.ExitDustPurge, tradeStore.trades[0].Reason)
}

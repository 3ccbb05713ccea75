package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/raykavin/aegis/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestTradeStore(t *testing.T) *SQLTradeStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trades.db")
	store, err := OpenSQLTradeStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLTradeStoreAppendAndRecent(t *testing.T) {
	store := openTestTradeStore(t)

	for i := range 3 {
		rec := &core.TradeRecord{
			Timestamp: time.Now().Add(time.Duration(i) * time.Minute),
			Symbol:    "BTCUSDT",
			Action:    core.SideTypeBuy,
			Quantity:  decimal.NewFromFloat(0.01),
			Price:     decimal.NewFromFloat(50000),
			Reason:    core.ExitStrategyEntry,
			Strategy:  core.StrategyScalping,
		}
		require.NoError(t, store.AppendTrade(rec))
	}

	recent, err := store.RecentTrades(2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestSQLTradeStoreOrderLifecycle(t *testing.T) {
	store := openTestTradeStore(t)

	order := &core.Order{
		ExchangeID: "12345",
		Symbol:     "BTCUSDT",
		Side:       core.SideTypeBuy,
		Type:       core.OrderTypeMarket,
		Quantity:   decimal.NewFromFloat(0.01),
		Price:      decimal.NewFromFloat(50000),
		Status:     core.OrderStatusNew,
	}
	require.NoError(t, store.CreateOrder(order))

	order.Status = core.OrderStatusFilled
	require.NoError(t, store.UpdateOrder(order))
}

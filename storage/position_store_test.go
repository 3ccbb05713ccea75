package storage

import (
	"testing"
	"time"

	"github.com/raykavin/aegis/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuntPositionStoreRoundTrip(t *testing.T) {
	store, err := OpenBuntPositionStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	empty, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, empty)

	p := &core.Position{
		Symbol:            "BTCUSDT",
		Quantity:          decimal.NewFromFloat(0.01),
		EntryPrice:        decimal.NewFromFloat(50000),
		EntryTime:         time.Now(),
		Strategy:          core.StrategyScalping,
		HighestPriceSeen:  decimal.NewFromFloat(50000),
		AIStopLossPercent: decimal.NewFromFloat(2),
	}

	require.NoError(t, store.SaveAll(map[string]*core.Position{"BTCUSDT": p}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "BTCUSDT", loaded[0].Symbol)
	assert.True(t, loaded[0].Quantity.Equal(p.Quantity))
}

func TestBuntPositionStoreSaveAllOverwritesSnapshot(t *testing.T) {
	store, err := OpenBuntPositionStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	p1 := &core.Position{Symbol: "A", Quantity: decimal.NewFromInt(1)}
	p2 := &core.Position{Symbol: "B", Quantity: decimal.NewFromInt(2)}

	require.NoError(t, store.SaveAll(map[string]*core.Position{"A": p1}))
	require.NoError(t, store.SaveAll(map[string]*core.Position{"B": p2}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "B", loaded[0].Symbol)
}

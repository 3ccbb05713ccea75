package exchange

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatQuantityRoundsDownToStepSize(t *testing.T) {
	b := &Binance{symbols: map[string]symbolInfo{
		"BTCUSDT": {baseAsset: "BTC", quoteAsset: "USDT", stepSize: 0.00010000},
	}}

	got := b.formatQuantity("BTCUSDT", decimal.NewFromFloat(0.123456))
	assert.Equal(t, "0.1234", got)
}

func TestFormatQuantityUnknownSymbolPassesThrough(t *testing.T) {
	b := &Binance{symbols: map[string]symbolInfo{}}
	got := b.formatQuantity("UNKNOWN", decimal.NewFromFloat(1.5))
	assert.Equal(t, "1.5", got)
}

func TestFormatQuoteAmountUsesTickSizeDecimalPlaces(t *testing.T) {
	b := &Binance{symbols: map[string]symbolInfo{
		"BTCUSDT": {tickSize: 0.01},
	}}
	got := b.formatQuoteAmount("BTCUSDT", decimal.NewFromFloat(123.456))
	assert.Equal(t, "123.46", got)
}

package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// BuyResult is the outcome of a successful market_buy call.
type BuyResult struct {
	OrderID         string
	FilledQuantity  decimal.Decimal
	FillPrice       decimal.Decimal
}

// SellResult is the outcome of a successful market_sell call.
type SellResult struct {
	OrderID   string
	FillPrice decimal.Decimal
}

// Exchange is the typed wrapper over a single spot exchange. Every method
// performs exactly one round-trip and applies no internal retry; retries
// are an engine policy. Implementations must enforce a per-call timeout.
type Exchange interface {
	// FetchTicker returns the latest trade price for symbol.
	FetchTicker(ctx context.Context, symbol string) (decimal.Decimal, error)

	// FetchOHLCV returns up to limit candles, newest-last.
	FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]Candle, error)

	// FetchBalance returns free balance per asset.
	FetchBalance(ctx context.Context) (map[string]decimal.Decimal, error)

	// MarketBuy submits a market buy for quoteAmountUSD notional.
	MarketBuy(ctx context.Context, symbol string, quoteAmountUSD decimal.Decimal) (BuyResult, error)

	// MarketSell submits a market sell for baseQuantity units of the base asset.
	MarketSell(ctx context.Context, symbol string, baseQuantity decimal.Decimal) (SellResult, error)
}

// Package exchange implements the core.Exchange adapter against Binance
// spot, narrowed to the five operations the trading engine needs (no
// OCO/limit/stop orders, no websocket candle subscription).
package exchange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/raykavin/aegis/core"
	"github.com/shopspring/decimal"
)

// symbolInfo is the precision/lot-size metadata needed to format order
// quantities the way Binance's LOT_SIZE filter requires.
type symbolInfo struct {
	baseAsset  string
	quoteAsset string
	stepSize   float64
	tickSize   float64
}

// Binance wraps a go-binance spot client behind core.Exchange. Every
// exported call applies its own context.WithTimeout; the adapter performs
// no retries of its own — retries are a trading engine policy.
type Binance struct {
	client      *binance.Client
	callTimeout time.Duration
	symbols     map[string]symbolInfo
}

// New constructs the adapter and primes the symbol precision table from
// the exchange info endpoint.
func New(ctx context.Context, apiKey, apiSecret string, callTimeout time.Duration, testnet bool) (*Binance, error) {
	if testnet {
		binance.UseTestnet = true
	}

	client := binance.NewClient(apiKey, apiSecret)

	if err := client.NewPingService().Do(ctx); err != nil {
		return nil, fmt.Errorf("binance ping failed: %w", err)
	}

	info, err := client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance exchange info failed: %w", err)
	}

	symbols := make(map[string]symbolInfo, len(info.Symbols))
	for _, s := range info.Symbols {
		si := symbolInfo{baseAsset: s.BaseAsset, quoteAsset: s.QuoteAsset}
		for _, f := range s.Filters {
			switch f["filterType"] {
			case string(binance.SymbolFilterTypeLotSize):
				si.stepSize, _ = strconv.ParseFloat(fmt.Sprint(f["stepSize"]), 64)
			case string(binance.SymbolFilterTypePriceFilter):
				si.tickSize, _ = strconv.ParseFloat(fmt.Sprint(f["tickSize"]), 64)
			}
		}
		symbols[s.Symbol] = si
	}

	return &Binance{client: client, callTimeout: callTimeout, symbols: symbols}, nil
}

func (b *Binance) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, b.callTimeout)
}

// FetchTicker returns the latest trade price for symbol.
func (b *Binance) FetchTicker(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ctx, cancel := b.ctx(ctx)
	defer cancel()

	prices, err := b.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, classifyError(err)
	}
	if len(prices) == 0 {
		return decimal.Zero, fmt.Errorf("binance: no price returned for %s", symbol)
	}
	return decimal.NewFromString(prices[0].Price)
}

// FetchOHLCV returns the last limit completed candles, newest-last.
func (b *Binance) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]core.Candle, error) {
	ctx, cancel := b.ctx(ctx)
	defer cancel()

	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(timeframe).
		Limit(limit + 1). // +1 to discard the still-forming candle
		Do(ctx)
	if err != nil {
		return nil, classifyError(err)
	}

	candles := make([]core.Candle, 0, len(klines))
	for i, k := range klines {
		if i == len(klines)-1 {
			break // still-forming candle
		}
		candle, err := toCandle(symbol, k)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// FetchBalance returns free balances for every non-zero asset.
func (b *Binance) FetchBalance(ctx context.Context) (map[string]decimal.Decimal, error) {
	ctx, cancel := b.ctx(ctx)
	defer cancel()

	account, err := b.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, classifyError(err)
	}

	balances := make(map[string]decimal.Decimal, len(account.Balances))
	for _, bal := range account.Balances {
		free, err := decimal.NewFromString(bal.Free)
		if err != nil {
			continue
		}
		if free.IsZero() {
			continue
		}
		balances[bal.Asset] = free
	}
	return balances, nil
}

// MarketBuy spends quoteAmount of the quote asset buying symbol at market.
func (b *Binance) MarketBuy(ctx context.Context, symbol string, quoteAmount decimal.Decimal) (core.BuyResult, error) {
	ctx, cancel := b.ctx(ctx)
	defer cancel()

	order, err := b.client.NewCreateOrderService().
		Symbol(symbol).
		Side(binance.SideTypeBuy).
		Type(binance.OrderTypeMarket).
		QuoteOrderQty(b.formatQuoteAmount(symbol, quoteAmount)).
		NewOrderRespType(binance.NewOrderRespTypeFULL).
		Do(ctx)
	if err != nil {
		return core.BuyResult{}, classifyError(err)
	}

	cost, err := decimal.NewFromString(order.CummulativeQuoteQuantity)
	if err != nil {
		return core.BuyResult{}, fmt.Errorf("binance: parse cost: %w", err)
	}
	filledQty, err := decimal.NewFromString(order.ExecutedQuantity)
	if err != nil {
		return core.BuyResult{}, fmt.Errorf("binance: parse quantity: %w", err)
	}
	if filledQty.IsZero() {
		return core.BuyResult{}, core.ErrVolumeMinimumNotMet
	}

	return core.BuyResult{
		OrderID:        strconv.FormatInt(order.OrderID, 10),
		FilledQuantity: filledQty,
		FillPrice:      cost.Div(filledQty),
	}, nil
}

// MarketSell liquidates baseQuantity of symbol's base asset at market.
func (b *Binance) MarketSell(ctx context.Context, symbol string, baseQuantity decimal.Decimal) (core.SellResult, error) {
	ctx, cancel := b.ctx(ctx)
	defer cancel()

	order, err := b.client.NewCreateOrderService().
		Symbol(symbol).
		Side(binance.SideTypeSell).
		Type(binance.OrderTypeMarket).
		Quantity(b.formatQuantity(symbol, baseQuantity)).
		NewOrderRespType(binance.NewOrderRespTypeFULL).
		Do(ctx)
	if err != nil {
		return core.SellResult{}, classifyError(err)
	}

	cost, err := decimal.NewFromString(order.CummulativeQuoteQuantity)
	if err != nil {
		return core.SellResult{}, fmt.Errorf("binance: parse cost: %w", err)
	}
	filledQty, err := decimal.NewFromString(order.ExecutedQuantity)
	if err != nil {
		return core.SellResult{}, fmt.Errorf("binance: parse quantity: %w", err)
	}
	if filledQty.IsZero() {
		return core.SellResult{}, core.ErrVolumeMinimumNotMet
	}

	return core.SellResult{
		OrderID:   strconv.FormatInt(order.OrderID, 10),
		FillPrice: cost.Div(filledQty),
	}, nil
}

func (b *Binance) formatQuantity(symbol string, v decimal.Decimal) string {
	info, ok := b.symbols[symbol]
	if !ok || info.stepSize == 0 {
		return v.String()
	}
	step := decimal.NewFromFloat(info.stepSize)
	rounded := v.Div(step).Floor().Mul(step)
	return rounded.String()
}

func (b *Binance) formatQuoteAmount(symbol string, v decimal.Decimal) string {
	info, ok := b.symbols[symbol]
	if !ok || info.tickSize == 0 {
		return v.StringFixed(8)
	}
	places := int32(0)
	for tick := info.tickSize; tick < 1 && places < 8; tick *= 10 {
		places++
	}
	return v.StringFixed(places)
}

func toCandle(symbol string, k *binance.Kline) (core.Candle, error) {
	openTime := time.UnixMilli(k.OpenTime)

	open, err := decimal.NewFromString(k.Open)
	if err != nil {
		return core.Candle{}, err
	}
	high, err := decimal.NewFromString(k.High)
	if err != nil {
		return core.Candle{}, err
	}
	low, err := decimal.NewFromString(k.Low)
	if err != nil {
		return core.Candle{}, err
	}
	closeP, err := decimal.NewFromString(k.Close)
	if err != nil {
		return core.Candle{}, err
	}
	volume, err := decimal.NewFromString(k.Volume)
	if err != nil {
		return core.Candle{}, err
	}

	return core.Candle{
		Pair:     symbol,
		Time:     openTime,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closeP,
		Volume:   volume,
		Complete: true,
	}, nil
}

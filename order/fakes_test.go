package order

import (
	"context"
	"sync"
	"time"

	"github.com/raykavin/aegis/core"
	"github.com/raykavin/aegis/logger"
	noopzerolog "github.com/raykavin/aegis/logger/zerolog"
	"github.com/shopspring/decimal"
)

// fakeExchange is a fully scriptable core.Exchange test double.
type fakeExchange struct {
	mu sync.Mutex

	tickerPrice decimal.Decimal
	tickerErr   error

	candles    []core.Candle
	candlesErr error

	balances map[string]decimal.Decimal
	balErr   error

	buyResult core.BuyResult
	buyErr    error
	buyCalls  int

	sellResult core.SellResult
	sellErr    error
	sellCalls  int
}

func (f *fakeExchange) FetchTicker(context.Context, string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickerPrice, f.tickerErr
}

func (f *fakeExchange) FetchOHLCV(context.Context, string, string, int) ([]core.Candle, error) {
	return f.candles, f.candlesErr
}

func (f *fakeExchange) FetchBalance(context.Context) (map[string]decimal.Decimal, error) {
	return f.balances, f.balErr
}

func (f *fakeExchange) MarketBuy(context.Context, string, decimal.Decimal) (core.BuyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buyCalls++
	return f.buyResult, f.buyErr
}

func (f *fakeExchange) MarketSell(context.Context, string, decimal.Decimal) (core.SellResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sellCalls++
	return f.sellResult, f.sellErr
}

// fakePositionStore is an in-memory core.PositionStore.
type fakePositionStore struct {
	mu      sync.Mutex
	saved   map[string]*core.Position
	saveErr error
}

func newFakePositionStore() *fakePositionStore {
	return &fakePositionStore{saved: make(map[string]*core.Position)}
}

func (f *fakePositionStore) Load() ([]core.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Position, 0, len(f.saved))
	for _, p := range f.saved {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePositionStore) SaveAll(positions map[string]*core.Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = make(map[string]*core.Position, len(positions))
	for k, v := range positions {
		cp := *v
		f.saved[k] = &cp
	}
	return nil
}

func (f *fakePositionStore) Close() error { return nil }

// fakeTradeStore is an in-memory core.TradeStore.
type fakeTradeStore struct {
	mu     sync.Mutex
	trades []core.TradeRecord
	orders []core.Order
}

func (f *fakeTradeStore) AppendTrade(record *core.TradeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trades = append(f.trades, *record)
	return nil
}

func (f *fakeTradeStore) RecentTrades(limit int) ([]core.TradeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.trades) {
		limit = len(f.trades)
	}
	return append([]core.TradeRecord{}, f.trades[len(f.trades)-limit:]...), nil
}

func (f *fakeTradeStore) TradesSince(since time.Time) ([]core.TradeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.TradeRecord
	for _, t := range f.trades {
		if !t.Timestamp.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTradeStore) CreateOrder(order *core.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeTradeStore) UpdateOrder(order *core.Order) error { return nil }

func (f *fakeTradeStore) Close() error { return nil }

// fakeNotifier records every alert sent.
type fakeNotifier struct {
	mu        sync.Mutex
	notified  []string
	criticals []string
	errors    []error
}

func (f *fakeNotifier) Notify(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, message)
}

func (f *fakeNotifier) OnCritical(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.criticals = append(f.criticals, message)
}

func (f *fakeNotifier) OnError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, err)
}

func testLogger() logger.Logger {
	l, err := noopzerolog.NewZerolog("error", "2006-01-02 15:04:05", false, false)
	if err != nil {
		panic(err)
	}
	return l
}

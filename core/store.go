package core

import "time"

// PositionStore persists the currently-open position set. Every mutating
// call rewrites the full snapshot atomically; readers never observe a torn
// state.
type PositionStore interface {
	// Load returns every persisted position, including ones that fail
	// invariant validation (the caller quarantines those).
	Load() ([]Position, error)

	// SaveAll atomically rewrites the full position snapshot.
	SaveAll(positions map[string]*Position) error

	Close() error
}

// TradeStore is the append-only trade-history and order-audit sink.
type TradeStore interface {
	AppendTrade(record *TradeRecord) error
	RecentTrades(limit int) ([]TradeRecord, error)

	// TradesSince returns every trade (BUY and SELL) recorded at or after
	// since; the caller sums the SELL rows to derive
	// PortfolioContext.DailyPnLUSD.
	TradesSince(since time.Time) ([]TradeRecord, error)

	CreateOrder(order *Order) error
	UpdateOrder(order *Order) error

	Close() error
}

package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is an append-only trade-history log entry. Rows are never
// mutated once written; a position's destruction appends exactly one
// terminal TradeRecord.
type TradeRecord struct {
	ID         uint `gorm:"primaryKey"`
	Timestamp  time.Time
	Symbol     string
	Action     SideType // BUY or SELL
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Reason     ExitReason

	PnLUSD     *decimal.Decimal // sell only
	PnLPercent *decimal.Decimal // sell only

	Strategy      StrategyName
	AIConfidence  *float64 // entry only
	OrderID       string
}

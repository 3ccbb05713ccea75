package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType is restricted to market orders; limit/OCO/stop ladders are
// out of scope.
type OrderType string

const OrderTypeMarket OrderType = "MARKET"

// OrderStatusType mirrors the exchange's fill status vocabulary.
type OrderStatusType string

const (
	OrderStatusNew             OrderStatusType = "NEW"
	OrderStatusFilled          OrderStatusType = "FILLED"
	OrderStatusPartiallyFilled OrderStatusType = "PARTIALLY_FILLED"
	OrderStatusRejected        OrderStatusType = "REJECTED"
)

// Order is the audit-trail record of one exchange order submission.
// Positions and TradeRecords reference an Order by ExchangeID; the Order
// itself persists separately (additive bookkeeping, see SPEC_FULL.md §3).
type Order struct {
	ID         uint `gorm:"primaryKey"`
	ExchangeID string
	Symbol     string
	Side       SideType
	Type       OrderType
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Status     OrderStatusType
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Bounds on the AI's autonomous risk parameters.
var (
	MinStopLossPercent = decimal.NewFromFloat(0.5)
	MaxStopLossPercent = decimal.NewFromFloat(5.0)

	MinTakeProfitPercent = decimal.NewFromFloat(1.0)
	MaxTakeProfitPercent = decimal.NewFromFloat(15.0)

	MinPositionSizePercent = decimal.NewFromFloat(1.0)
	MaxPositionSizePercent = decimal.NewFromFloat(20.0)

	// MinOrderValueUSD is the dust floor: below this notional a position
	// cannot be sold and must be purged instead.
	MinOrderValueUSD = decimal.NewFromFloat(1.00)
)

// PositionState is the per-position lifecycle state machine.
type PositionState string

const (
	PositionOpen    PositionState = "OPEN"
	PositionClosing PositionState = "CLOSING"
	PositionClosed  PositionState = "CLOSED"
)

// ExitReason tags why a position (or a purge) terminated.
type ExitReason string

const (
	ExitStrategyEntry ExitReason = "STRATEGY_ENTRY" // not a real exit; used on TradeRecord for BUY rows
	ExitTakeProfit     ExitReason = "TAKE_PROFIT"
	ExitStopLoss       ExitReason = "STOP_LOSS"
	ExitTrailingStop   ExitReason = "TRAILING_STOP"
	ExitDustPurge      ExitReason = "DUST_PURGE"
	ExitManual         ExitReason = "MANUAL"
	ExitStrategyExit   ExitReason = "STRATEGY_EXIT"
)

// Position is the central stateful entity: at most one per symbol.
type Position struct {
	Symbol   string
	Quantity decimal.Decimal // base asset units

	EntryPrice decimal.Decimal
	EntryTime  time.Time

	Strategy StrategyName
	TradeID  string

	AIPositionSizePercent decimal.Decimal
	AIStopLossPercent     decimal.Decimal
	AITakeProfitPercent   decimal.Decimal
	AIRiskRewardRatio     decimal.Decimal

	HighestPriceSeen  decimal.Decimal
	TrailingStopArmed bool

	State PositionState

	// RetryExhausted flags CLOSING_RETRY_EXHAUSTED on the control plane
	// read path.
	RetryExhausted bool
}

// NotionalValue returns quantity * currentPrice.
func (p Position) NotionalValue(currentPrice decimal.Decimal) decimal.Decimal {
	return p.Quantity.Mul(currentPrice)
}

// IsDust reports whether the position's notional value has fallen below the
// minimum order value and must be purged.
func (p Position) IsDust(currentPrice decimal.Decimal) bool {
	return p.NotionalValue(currentPrice).LessThan(MinOrderValueUSD)
}

// ProfitPercent returns (currentPrice-entryPrice)/entryPrice * 100.
func (p Position) ProfitPercent(currentPrice decimal.Decimal) decimal.Decimal {
	if p.EntryPrice.IsZero() {
		return decimal.Zero
	}
	return currentPrice.Sub(p.EntryPrice).Div(p.EntryPrice).Mul(decimal.NewFromInt(100))
}

// ClampAIParameters clamps AI-proposed risk parameters into the allowed
// invariant ranges, substituting the supplied strategy defaults for any
// zero (absent/legacy) field.
func (p *Position) ClampAIParameters(defaultSL, defaultTP, defaultSize decimal.Decimal) {
	if p.AIStopLossPercent.IsZero() {
		p.AIStopLossPercent = defaultSL
	}
	if p.AITakeProfitPercent.IsZero() {
		p.AITakeProfitPercent = defaultTP
	}
	if p.AIPositionSizePercent.IsZero() {
		p.AIPositionSizePercent = defaultSize
	}

	p.AIStopLossPercent = clamp(p.AIStopLossPercent, MinStopLossPercent, MaxStopLossPercent)
	p.AITakeProfitPercent = clamp(p.AITakeProfitPercent, MinTakeProfitPercent, MaxTakeProfitPercent)
	p.AIPositionSizePercent = clamp(p.AIPositionSizePercent, MinPositionSizePercent, MaxPositionSizePercent)
}

func clamp(v, min, max decimal.Decimal) decimal.Decimal {
	if v.LessThan(min) {
		return min
	}
	if v.GreaterThan(max) {
		return max
	}
	return v
}

// Validate checks the Position invariants. It is used on startup load
// (quarantine on failure) and as a post-tick testable property.
func (p Position) Validate(currentPrice decimal.Decimal) error {
	if p.Quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s quantity %s <= 0", ErrInvariantViolation, p.Symbol, p.Quantity)
	}
	if p.AIStopLossPercent.LessThan(MinStopLossPercent) || p.AIStopLossPercent.GreaterThan(MaxStopLossPercent) {
		return fmt.Errorf("%w: %s stop_loss_percent %s out of [%s,%s]",
			ErrInvariantViolation, p.Symbol, p.AIStopLossPercent, MinStopLossPercent, MaxStopLossPercent)
	}
	if p.AITakeProfitPercent.LessThan(MinTakeProfitPercent) || p.AITakeProfitPercent.GreaterThan(MaxTakeProfitPercent) {
		return fmt.Errorf("%w: %s take_profit_percent %s out of [%s,%s]",
			ErrInvariantViolation, p.Symbol, p.AITakeProfitPercent, MinTakeProfitPercent, MaxTakeProfitPercent)
	}
	if p.HighestPriceSeen.LessThan(p.EntryPrice) {
		return fmt.Errorf("%w: %s highest_price_seen %s < entry_price %s",
			ErrInvariantViolation, p.Symbol, p.HighestPriceSeen, p.EntryPrice)
	}
	return nil
}

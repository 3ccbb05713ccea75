package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raykavin/aegis/config"
	"github.com/raykavin/aegis/core"
	"github.com/shopspring/decimal"
)

// priceRetryAttempts/priceRetryDelay bound the current-price fetch: retry
// up to 3 times with a 2s delay before giving up on the tick.
const priceRetryAttempts = 3
const priceRetryDelay = 2 * time.Second

// runMonitor is the per-position exit pipeline, run once per open position
// per tick.
func (e *Engine) runMonitor(ctx context.Context, snap *config.Snapshot, symbol string, pos *core.Position) {
	currentPrice, err := e.fetchPriceWithRetry(ctx, symbol)
	if err != nil {
		e.log.WithField("symbol", symbol).WithError(err).Warn("monitor skipped: price unavailable")
		return
	}

	if pos.IsDust(currentPrice) {
		e.purgePosition(pos, currentPrice, core.ExitDustPurge)
		return
	}

	if currentPrice.GreaterThan(pos.HighestPriceSeen) {
		pos = e.updateHighestPrice(pos, currentPrice)
	}

	profitPercentDec := pos.ProfitPercent(currentPrice)
	holdMinutes := time.Since(pos.EntryTime).Minutes()
	risk := snap.RiskDefaultsFor(pos.Strategy)

	if exitPrice, armed, ok := e.checkTrailingStop(pos, risk, currentPrice); ok {
		e.exitPosition(ctx, pos, exitPrice, core.ExitTrailingStop)
		return
	} else if armed != pos.TrailingStopArmed {
		pos = e.setTrailingArmed(pos, armed)
	}

	if profitPercentDec.LessThanOrEqual(pos.AIStopLossPercent.Neg()) {
		e.exitPosition(ctx, pos, currentPrice, core.ExitStopLoss)
		return
	}

	if profitPercentDec.GreaterThanOrEqual(pos.AITakeProfitPercent) {
		e.exitPosition(ctx, pos, currentPrice, core.ExitTakeProfit)
		return
	}

	if canStrategyExit(pos.Strategy) {
		ind, _, err := e.computeIndicators(ctx, symbol)
		profitPercent, _ := profitPercentDec.Float64()
		if err == nil && e.evaluator.CheckExit(pos.Strategy, ind, profitPercent, holdMinutes) {
			e.exitPosition(ctx, pos, currentPrice, core.ExitStrategyExit)
			return
		}
	}
}

// canStrategyExit reports whether strategy declares a strategy-level exit;
// only momentum and mean_reversion do.
func canStrategyExit(name core.StrategyName) bool {
	return name == core.StrategyMomentum || name == core.StrategyMeanReversion
}

func (e *Engine) fetchPriceWithRetry(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var lastErr error
	for attempt := 0; attempt < priceRetryAttempts; attempt++ {
		price, err := e.exchange.FetchTicker(ctx, symbol)
		if err == nil {
			return price, nil
		}
		lastErr = err
		if attempt < priceRetryAttempts-1 {
			if sleepErr := sleepCtx(ctx, priceRetryDelay); sleepErr != nil {
				return decimal.Zero, sleepErr
			}
		}
	}
	return decimal.Zero, fmt.Errorf("%w: %v", core.ErrRetryExhausted, lastErr)
}

// updateHighestPrice mutates and persists the monotonically non-decreasing
// highest_price_seen field. Returns the updated position so the caller's
// local view stays consistent.
func (e *Engine) updateHighestPrice(pos *core.Position, currentPrice decimal.Decimal) *core.Position {
	updated := *pos
	updated.HighestPriceSeen = currentPrice
	if err := e.putPosition(&updated); err != nil {
		e.log.WithField("symbol", pos.Symbol).WithError(err).Error("highest_price_seen persist failed")
	}
	return &updated
}

func (e *Engine) setTrailingArmed(pos *core.Position, armed bool) *core.Position {
	updated := *pos
	updated.TrailingStopArmed = armed
	if err := e.putPosition(&updated); err != nil {
		e.log.WithField("symbol", pos.Symbol).WithError(err).Error("trailing_stop_armed persist failed")
	}
	return &updated
}

// checkTrailingStop returns (exitPrice, newArmedState, shouldExit). Only
// strategies that declare the trailing stop enabled (default
// macd_supertrend) participate.
func (e *Engine) checkTrailingStop(pos *core.Position, risk config.StrategyRisk, currentPrice decimal.Decimal) (decimal.Decimal, bool, bool) {
	if !risk.TrailingStop.Enabled {
		return decimal.Zero, pos.TrailingStopArmed, false
	}

	activation := risk.TrailingStop.ActivationPercent
	if activation.IsZero() {
		activation = decimal.NewFromFloat(5.0)
	}
	distance := risk.TrailingStop.DistancePercent
	if distance.IsZero() {
		distance = decimal.NewFromFloat(3.0)
	}

	armed := pos.TrailingStopArmed || pos.ProfitPercent(currentPrice).GreaterThanOrEqual(activation)
	if !armed {
		return decimal.Zero, false, false
	}

	trailingStopPrice := pos.HighestPriceSeen.Mul(decimal.NewFromInt(1).Sub(distance.Div(decimal.NewFromInt(100))))
	if currentPrice.LessThanOrEqual(trailingStopPrice) {
		return currentPrice, armed, true
	}
	return decimal.Zero, armed, false
}

// purgePosition implements the dust-purge path: no sell order is
// attempted, the position is simply dropped and a DUST_PURGE record is
// written.
func (e *Engine) purgePosition(pos *core.Position, currentPrice decimal.Decimal, reason core.ExitReason) {
	if err := e.dropPosition(pos.Symbol); err != nil {
		e.notifyCritical(fmt.Sprintf("%s: dust purge persist failed: %v", pos.Symbol, err))
		return
	}

	if err := e.tradeStore.AppendTrade(&core.TradeRecord{
		Timestamp: time.Now(),
		Symbol:    pos.Symbol,
		Action:    core.SideTypeSell,
		Quantity:  pos.Quantity,
		Price:     currentPrice,
		Reason:    reason,
		Strategy:  pos.Strategy,
	}); err != nil {
		e.notifyCritical(fmt.Sprintf("%s: dust purge trade record write failed: %v", pos.Symbol, err))
	}

	e.notify(fmt.Sprintf("DUST_PURGE %s qty=%s price=%s", pos.Symbol, pos.Quantity, currentPrice))
}

// exitPosition drives the OPEN -> CLOSING -> {CLOSED, OPEN} state machine
// around the retrying sell execution.
func (e *Engine) exitPosition(ctx context.Context, pos *core.Position, referencePrice decimal.Decimal, reason core.ExitReason) {
	closing := *pos
	closing.State = core.PositionClosing
	if err := e.putPosition(&closing); err != nil {
		e.log.WithField("symbol", pos.Symbol).WithError(err).Error("closing-state persist failed")
	}

	result, err := e.executeSellWithRetry(ctx, pos.Symbol, pos.Quantity)
	if err != nil {
		if errors.Is(err, core.ErrVolumeMinimumNotMet) {
			e.purgePosition(pos, referencePrice, core.ExitDustPurge)
			return
		}

		// Non-terminal failure: CLOSING -> OPEN, next tick retries.
		reopened := *pos
		reopened.State = core.PositionOpen
		reopened.RetryExhausted = true
		if putErr := e.putPosition(&reopened); putErr != nil {
			e.log.WithField("symbol", pos.Symbol).WithError(putErr).Error("reopen-after-failed-exit persist failed")
		}
		e.notifyCritical(fmt.Sprintf("%s: sell retries exhausted, position remains open: %v", pos.Symbol, err))
		return
	}

	pnlUSD := result.FillPrice.Sub(pos.EntryPrice).Mul(pos.Quantity)
	pnlPercent := pos.ProfitPercent(result.FillPrice)

	if err := e.dropPosition(pos.Symbol); err != nil {
		e.notifyCritical(fmt.Sprintf("%s: exit persist failed: %v", pos.Symbol, err))
		return
	}

	if err := e.tradeStore.CreateOrder(&core.Order{
		ExchangeID: result.OrderID,
		Symbol:     pos.Symbol,
		Side:       core.SideTypeSell,
		Type:       core.OrderTypeMarket,
		Quantity:   pos.Quantity,
		Price:      result.FillPrice,
		Status:     core.OrderStatusFilled,
	}); err != nil {
		e.log.WithError(err).Error("order audit write failed")
	}

	if err := e.tradeStore.AppendTrade(&core.TradeRecord{
		Timestamp:  time.Now(),
		Symbol:     pos.Symbol,
		Action:     core.SideTypeSell,
		Quantity:   pos.Quantity,
		Price:      result.FillPrice,
		Reason:     reason,
		PnLUSD:     &pnlUSD,
		PnLPercent: &pnlPercent,
		Strategy:   pos.Strategy,
		OrderID:    result.OrderID,
	}); err != nil {
		e.notifyCritical(fmt.Sprintf("%s: trade history write failed after exit: %v", pos.Symbol, err))
	}

	e.notify(fmt.Sprintf("SELL %s qty=%s price=%s reason=%s pnl=%s%%", pos.Symbol, pos.Quantity, result.FillPrice, reason, pnlPercent.StringFixed(2)))
}

// executeSellWithRetry retries the market sell up to 5 times on a
// 3s/6s/9s/12s/15s backoff, re-fetching price each attempt. The "volume
// minimum not met" business error is terminal and propagates unwrapped so
// the caller can reclassify as dust.
func (e *Engine) executeSellWithRetry(ctx context.Context, symbol string, quantity decimal.Decimal) (core.SellResult, error) {
	var lastErr error

	for attempt, delay := range exitDelays {
		result, err := e.exchange.MarketSell(ctx, symbol, quantity)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, core.ErrVolumeMinimumNotMet) {
			return core.SellResult{}, err
		}
		lastErr = err
		e.log.WithField("symbol", symbol).WithField("attempt", attempt+1).WithError(err).Warn("market sell attempt failed")

		if attempt < len(exitDelays)-1 {
			if sleepErr := sleepCtx(ctx, delay); sleepErr != nil {
				return core.SellResult{}, sleepErr
			}
		}
		if _, priceErr := e.exchange.FetchTicker(ctx, symbol); priceErr != nil {
			e.log.WithField("symbol", symbol).WithError(priceErr).Debug("price re-fetch before sell retry failed")
		}
	}

	return core.SellResult{}, fmt.Errorf("%w: %v", core.ErrRetryExhausted, lastErr)
}

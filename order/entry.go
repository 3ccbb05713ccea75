package order

import (
	"context"
	"fmt"
	"time"

	"github.com/raykavin/aegis/ai"
	"github.com/raykavin/aegis/config"
	"github.com/raykavin/aegis/core"
	"github.com/shopspring/decimal"
)

// runEntry is the per-symbol entry pipeline. It is only ever invoked for a
// symbol with no open position, serialized by the tick scheduler's
// in-flight guard.
func (e *Engine) runEntry(ctx context.Context, snap *config.Snapshot, symbol string) {
	if e.openPositionCount() >= snap.Limits.MaxTotalPositions {
		e.log.WithField("symbol", symbol).Debug("entry skipped: max_total_positions reached")
		return
	}

	ind, _, err := e.computeIndicators(ctx, symbol)
	if err != nil {
		e.log.WithField("symbol", symbol).WithError(err).Warn("entry skipped: indicator computation failed")
		return
	}

	order := snap.StrategyOrderFor(symbol)
	signal, found := e.evaluator.Evaluate(order, ind, time.Now())
	if !found {
		return // no candidate; nothing to log
	}

	// Global AI gate, logged at CRITICAL once per tick that had a
	// candidate. Checked here, after a candidate is known to exist, so the
	// alert fires only when a real opportunity was structurally refused
	// rather than on every quiet tick.
	if !snap.AIEnsembleEnabled {
		e.notifyCritical(fmt.Sprintf("%s: %s candidate refused, ai_ensemble_enabled=false", symbol, signal.Strategy))
		return
	}

	perStrategyCap, hasCap := snap.Limits.MaxPositionsPerStrategy[signal.Strategy]
	if hasCap && e.countByStrategy(signal.Strategy) >= perStrategyCap {
		e.log.WithField("symbol", symbol).WithField("strategy", signal.Strategy).Debug("entry skipped: per-strategy cap reached")
		return
	}

	dailyPnL, err := e.dailyPnLUSD()
	if err != nil {
		e.log.WithError(err).Warn("daily pnl lookup failed, using zero")
	}
	portfolio := e.buildPortfolioContext(snap, dailyPnL)
	volatility := buildVolatilityMetrics(ind)

	candles, err := e.exchange.FetchOHLCV(ctx, symbol, "1h", 100)
	if err != nil {
		e.log.WithField("symbol", symbol).WithError(err).Warn("entry skipped: candle fetch for AI snapshot failed")
		return
	}
	recentTrades, err := e.tradeStore.RecentTrades(20)
	if err != nil {
		e.log.WithError(err).Warn("recent trades lookup failed")
	}

	snapshot := &ai.MarketSnapshot{
		Symbol:       symbol,
		CurrentPrice: ind.CurrentPrice,
		Candles:      candles,
		Indicators:   ind,
		Portfolio:    portfolio,
		Volatility:   volatility,
		RecentTrades: filterBySymbol(recentTrades, symbol),
	}

	verdict, err := e.ensemble.Evaluate(ctx, snapshot, snap.AIMinConfidence)
	if err != nil {
		e.log.WithField("symbol", symbol).WithField("reason", err).Debug("entry skipped: ai verdict rejected")
		return
	}

	freeUSD, err := e.freeQuoteBalance(ctx, symbol)
	if err != nil {
		e.log.WithField("symbol", symbol).WithError(err).Warn("entry skipped: balance fetch failed")
		return
	}

	pairCfg, _ := snap.PairFor(symbol)
	quoteAmount := quoteAmountFor(freeUSD, verdict.Parameters.PositionSizePercent, snap.Limits.MaxOrderSizeUSD, pairCfg.AllocationPercent)

	if quoteAmount.LessThan(snap.Limits.MinOrderValueUSD) {
		e.log.WithField("symbol", symbol).WithField("quote_amount", quoteAmount).Debug("entry skipped: below min order value")
		return
	}

	if e.totalExposureUSD().Add(quoteAmount).GreaterThan(snap.Limits.MaxTotalExposureUSD) {
		e.log.WithField("symbol", symbol).Debug("entry skipped: max_total_exposure_usd would be exceeded")
		return
	}

	e.executeBuyWithRetry(ctx, snap, symbol, signal, verdict, quoteAmount)
}

// quoteAmountFor takes the smallest of the size-percent allocation, the
// per-order cap, and the per-pair allocation cap.
func quoteAmountFor(freeUSD decimal.Decimal, positionSizePercent float64, maxOrderSizeUSD, pairAllocationPercent decimal.Decimal) decimal.Decimal {
	bySize := freeUSD.Mul(decimal.NewFromFloat(positionSizePercent)).Div(decimal.NewFromInt(100))
	byAllocation := freeUSD.Mul(pairAllocationPercent).Div(decimal.NewFromInt(100))
	return decimal.Min(bySize, maxOrderSizeUSD, byAllocation)
}

// freeQuoteBalance fetches the exchange balance and returns the free amount
// of symbol's quote asset.
func (e *Engine) freeQuoteBalance(ctx context.Context, symbol string) (decimal.Decimal, error) {
	balances, err := e.exchange.FetchBalance(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	quote := core.QuoteAssetOf(symbol)
	return balances[quote], nil
}

// executeBuyWithRetry submits the market buy with a 3-attempt, 3s/6s/9s
// exponential backoff.
func (e *Engine) executeBuyWithRetry(ctx context.Context, snap *config.Snapshot, symbol string, signal core.StrategySignal, verdict core.AIVerdict, quoteAmount decimal.Decimal) {
	b := entryBackoff()
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		result, err := e.exchange.MarketBuy(ctx, symbol, quoteAmount)
		if err == nil {
			e.onBuyFilled(snap, symbol, signal, verdict, result)
			return
		}
		lastErr = err
		e.log.WithField("symbol", symbol).WithField("attempt", attempt+1).WithError(err).Warn("market buy attempt failed")

		if attempt < 2 {
			if sleepErr := sleepCtx(ctx, b.Duration()); sleepErr != nil {
				lastErr = sleepErr
				break
			}
		}
	}

	e.notifyCritical(fmt.Sprintf("%s: buy retries exhausted: %v", symbol, lastErr))
}

func (e *Engine) onBuyFilled(snap *config.Snapshot, symbol string, signal core.StrategySignal, verdict core.AIVerdict, result core.BuyResult) {
	risk := snap.RiskDefaultsFor(signal.Strategy)

	pos := &core.Position{
		Symbol:                symbol,
		Quantity:              result.FilledQuantity,
		EntryPrice:            result.FillPrice,
		EntryTime:             time.Now(),
		Strategy:              signal.Strategy,
		TradeID:               result.OrderID,
		AIPositionSizePercent: decimal.NewFromFloat(verdict.Parameters.PositionSizePercent),
		AIStopLossPercent:     decimal.NewFromFloat(verdict.Parameters.StopLossPercent),
		AITakeProfitPercent:   decimal.NewFromFloat(verdict.Parameters.TakeProfitPercent),
		AIRiskRewardRatio:     decimal.NewFromFloat(verdict.Parameters.RiskRewardRatio),
		HighestPriceSeen:      result.FillPrice,
		State:                 core.PositionOpen,
	}
	pos.ClampAIParameters(risk.StopLossPercent, risk.TakeProfitPercent, risk.PositionSizePercent)

	if err := e.putPosition(pos); err != nil {
		e.notifyCritical(fmt.Sprintf("%s: position persist failed after fill: %v", symbol, err))
	}

	if err := e.tradeStore.CreateOrder(&core.Order{
		ExchangeID: result.OrderID,
		Symbol:     symbol,
		Side:       core.SideTypeBuy,
		Type:       core.OrderTypeMarket,
		Quantity:   result.FilledQuantity,
		Price:      result.FillPrice,
		Status:     core.OrderStatusFilled,
	}); err != nil {
		e.log.WithError(err).Error("order audit write failed")
	}

	confidence := verdict.Confidence
	if err := e.tradeStore.AppendTrade(&core.TradeRecord{
		Timestamp:    pos.EntryTime,
		Symbol:       symbol,
		Action:       core.SideTypeBuy,
		Quantity:     result.FilledQuantity,
		Price:        result.FillPrice,
		Reason:       core.ExitStrategyEntry,
		Strategy:     signal.Strategy,
		AIConfidence: &confidence,
		OrderID:      result.OrderID,
	}); err != nil {
		e.notifyCritical(fmt.Sprintf("%s: trade history write failed after fill: %v", symbol, err))
	}

	e.notify(fmt.Sprintf("BUY %s qty=%s price=%s strategy=%s confidence=%.2f", symbol, result.FilledQuantity, result.FillPrice, signal.Strategy, verdict.Confidence))
}

func (e *Engine) dailyPnLUSD() (decimal.Decimal, error) {
	since := time.Now().Truncate(24 * time.Hour)
	trades, err := e.tradeStore.TradesSince(since)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, t := range trades {
		if t.Action == core.SideTypeSell && t.PnLUSD != nil {
			total = total.Add(*t.PnLUSD)
		}
	}
	return total, nil
}

func filterBySymbol(trades []core.TradeRecord, symbol string) []core.TradeRecord {
	out := make([]core.TradeRecord, 0, len(trades))
	for _, t := range trades {
		if t.Symbol == symbol {
			out = append(out, t)
		}
	}
	return out
}

package order

import (
	"fmt"

	"github.com/raykavin/aegis/config"
	"github.com/raykavin/aegis/core"
	"github.com/shopspring/decimal"
)

// putPosition installs a new or updated position under the map lock and
// persists the full snapshot before returning, so a durable write precedes
// any caller-visible acknowledgement of the mutation.
func (e *Engine) putPosition(p *core.Position) error {
	e.mu.Lock()
	e.positions[p.Symbol] = p
	snapshot := e.snapshotPositionsLocked()
	e.mu.Unlock()

	if err := e.positionStore.SaveAll(snapshot); err != nil {
		return fmt.Errorf("persist position %s: %w", p.Symbol, err)
	}
	return nil
}

// dropPosition removes symbol from the open set and persists the
// resulting snapshot.
func (e *Engine) dropPosition(symbol string) error {
	e.mu.Lock()
	delete(e.positions, symbol)
	snapshot := e.snapshotPositionsLocked()
	e.mu.Unlock()

	if err := e.positionStore.SaveAll(snapshot); err != nil {
		return fmt.Errorf("persist position removal %s: %w", symbol, err)
	}
	return nil
}

// snapshotPositionsLocked returns a shallow copy of the positions map.
// Callers must hold e.mu.
func (e *Engine) snapshotPositionsLocked() map[string]*core.Position {
	out := make(map[string]*core.Position, len(e.positions))
	for k, v := range e.positions {
		cp := *v
		out[k] = &cp
	}
	return out
}

func (e *Engine) openPositionCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.positions)
}

func (e *Engine) countByStrategy(strategy core.StrategyName) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := 0
	for _, p := range e.positions {
		if p.Strategy == strategy {
			n++
		}
	}
	return n
}

// buildPortfolioContext derives the PortfolioContext snapshot from the
// current position map and the last realized daily P&L (supplied by the
// caller, since it requires a trade-history query).
func (e *Engine) buildPortfolioContext(snap *config.Snapshot, dailyPnLUSD decimal.Decimal) core.PortfolioContext {
	e.mu.RLock()
	defer e.mu.RUnlock()

	perStrategy := make(map[core.StrategyName]int, len(e.positions))
	symbols := make([]string, 0, len(e.positions))
	total := decimal.Zero
	for symbol, p := range e.positions {
		perStrategy[p.Strategy]++
		symbols = append(symbols, symbol)
		total = total.Add(p.Quantity.Mul(p.EntryPrice))
	}

	return core.PortfolioContext{
		OpenPositions:    len(e.positions),
		MaxPositions:     snap.Limits.MaxTotalPositions,
		PerStrategyCount: perStrategy,
		TotalExposureUSD: total,
		DailyPnLUSD:      dailyPnLUSD,
		SymbolsHeld:      symbols,
	}
}

// totalExposureUSD sums quantity*entryPrice across every open position,
// used by the entry pipeline's exposure gate.
func (e *Engine) totalExposureUSD() decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	total := decimal.Zero
	for _, p := range e.positions {
		total = total.Add(p.Quantity.Mul(p.EntryPrice))
	}
	return total
}

// buildVolatilityMetrics derives the VolatilityMetrics snapshot from the
// just-computed indicators.
func buildVolatilityMetrics(ind core.Indicators) core.VolatilityMetrics {
	atrPercent := 0.0
	if ind.CurrentPrice != 0 {
		atrPercent = ind.ATR14 / ind.CurrentPrice * 100
	}
	return core.VolatilityMetrics{
		ATRAbsolute:          ind.ATR14,
		ATRPercentOfPrice:    atrPercent,
		Regime:               core.ClassifyRegime(atrPercent),
		AvgDailyRangePercent: atrPercent,
	}
}

package order

import (
	"context"

	"github.com/raykavin/aegis/core"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
)

// reconciliationProgressThreshold is the position-set size above which the
// recovery loop reports progress with a visible bar rather than logging
// silently.
const reconciliationProgressThreshold = 20

// LoadAndReconcile runs crash recovery: load the persisted position
// snapshot, validate every record, compare it against live exchange
// balances, and populate the in-memory position set with only what
// survives both checks. Call this once before Start.
func (e *Engine) LoadAndReconcile(ctx context.Context) (core.ReconciliationReport, error) {
	loaded, err := e.positionStore.Load()
	if err != nil {
		return core.ReconciliationReport{}, err
	}

	balances, err := e.exchange.FetchBalance(ctx)
	if err != nil {
		return core.ReconciliationReport{}, err
	}

	var bar *progressbar.ProgressBar
	if len(loaded) > reconciliationProgressThreshold {
		bar = progressbar.Default(int64(len(loaded)))
	}

	report := core.ReconciliationReport{}
	validated := make(map[string]*core.Position, len(loaded))

	for i := range loaded {
		pos := loaded[i]

		price, priceErr := e.exchange.FetchTicker(ctx, pos.Symbol)
		if priceErr != nil {
			e.log.WithField("symbol", pos.Symbol).WithError(priceErr).Warn("recovery: price unavailable, position quarantined this run")
			if bar != nil {
				_ = bar.Add(1)
			}
			continue
		}

		if validateErr := pos.Validate(price); validateErr != nil {
			e.log.WithField("symbol", pos.Symbol).WithError(validateErr).Error("recovery: position failed invariant validation, quarantined")
			if bar != nil {
				_ = bar.Add(1)
			}
			continue
		}

		base, _ := core.SplitAssetQuote(pos.Symbol)
		held, ok := balances[base]
		if !ok || held.LessThan(pos.Quantity.Mul(decimal.NewFromFloat(0.99))) {
			// Orphaned: the exchange no longer shows a matching balance.
			// Close with reason MANUAL and record the loss as unknown rather
			// than guess at the fill price (see DESIGN.md).
			report.Orphaned = append(report.Orphaned, pos.Symbol)
			if appendErr := e.tradeStore.AppendTrade(&core.TradeRecord{
				Timestamp: pos.EntryTime,
				Symbol:    pos.Symbol,
				Action:    core.SideTypeSell,
				Quantity:  pos.Quantity,
				Price:     price,
				Reason:    core.ExitManual,
				Strategy:  pos.Strategy,
			}); appendErr != nil {
				e.log.WithField("symbol", pos.Symbol).WithError(appendErr).Error("recovery: orphaned-position trade record write failed")
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			continue
		}

		cp := pos
		validated[pos.Symbol] = &cp
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	for _, p := range e.configs.Snapshot().Pairs {
		if !p.Enabled {
			continue
		}
		if _, tracked := validated[p.Symbol]; tracked {
			continue
		}
		base, _ := core.SplitAssetQuote(p.Symbol)
		if held, ok := balances[base]; ok && held.GreaterThan(decimal.Zero) {
			report.Untracked = append(report.Untracked, p.Symbol)
		}
	}

	e.mu.Lock()
	e.positions = validated
	e.mu.Unlock()

	if err := e.positionStore.SaveAll(validated); err != nil {
		return report, err
	}

	if !report.Clean() {
		e.log.WithField("untracked", report.Untracked).WithField("orphaned", report.Orphaned).Warn("crash recovery found discrepancies between persisted positions and exchange balances")
	}

	return report, nil
}

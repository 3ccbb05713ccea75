// Package strategy implements the four rule-based entry strategies and the
// Evaluator that runs them in per-pair configured order. A Strategy is a
// pure function of (indicators, now); it never performs I/O and never
// mutates a Position. Exit suggestions (momentum, mean_reversion) are a
// secondary signal consulted by the Trading Engine's monitor pipeline
// alongside the AI-set take-profit/stop-loss — strategies never execute
// trades themselves.
package strategy

import (
	"time"

	"github.com/raykavin/aegis/core"
)

// Strategy is the per-strategy contract.
type Strategy interface {
	Name() core.StrategyName

	// MinHoldMinutes gates the strategy-level exit (step 8 of the monitor
	// pipeline). The monitor's trailing-stop, stop-loss and take-profit
	// checks do not consult it.
	MinHoldMinutes() int

	// TrailingStopDefaultEnabled reports whether this strategy enables the
	// trailing stop by default (macd_supertrend does).
	TrailingStopDefaultEnabled() bool

	// Entry evaluates the BUY condition.
	Entry(ind core.Indicators, now time.Time) bool

	// Exit evaluates the strategy's own SELL suggestion. Strategies that
	// declare no strategy-level exit (scalping, macd_supertrend) always
	// return false.
	Exit(ind core.Indicators, profitPercent float64, holdMinutes float64) bool
}

// Evaluator runs a per-pair ordered list of strategies and returns the first
// BUY candidate, or reports none.
type Evaluator struct {
	registry map[core.StrategyName]Strategy
}

// NewEvaluator registers the four built-in strategies.
func NewEvaluator() *Evaluator {
	e := &Evaluator{registry: make(map[core.StrategyName]Strategy)}
	for _, s := range []Strategy{
		NewScalping(),
		NewMomentum(),
		NewMeanReversion(),
		NewMACDSupertrend(),
	} {
		e.registry[s.Name()] = s
	}
	return e
}

// Strategy returns the registered implementation for name.
func (e *Evaluator) Strategy(name core.StrategyName) (Strategy, bool) {
	s, ok := e.registry[name]
	return s, ok
}

// Evaluate runs order (the pair's configured strategy list) in sequence and
// returns the first BUY candidate. Tie-breaking is implicit in list order:
// the earliest strategy to fire wins and tags the position.
func (e *Evaluator) Evaluate(order []core.StrategyName, ind core.Indicators, now time.Time) (core.StrategySignal, bool) {
	for _, name := range order {
		s, ok := e.registry[name]
		if !ok {
			continue
		}
		if s.Entry(ind, now) {
			return core.StrategySignal{
				Strategy:   name,
				Side:       core.SideTypeBuy,
				Price:      ind.CurrentPrice,
				DetectedAt: now,
			}, true
		}
	}
	return core.StrategySignal{}, false
}

// CheckExit evaluates the named strategy's own SELL suggestion, gated by its
// minimum hold time.
func (e *Evaluator) CheckExit(name core.StrategyName, ind core.Indicators, profitPercent, holdMinutes float64) bool {
	s, ok := e.registry[name]
	if !ok {
		return false
	}
	if holdMinutes < float64(s.MinHoldMinutes()) {
		return false
	}
	return s.Exit(ind, profitPercent, holdMinutes)
}

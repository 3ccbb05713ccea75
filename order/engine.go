// Package order implements the trading engine: the tick scheduler, the
// entry and monitor pipelines, crash recovery, and the position lifecycle
// state machine, built around a per-symbol position map and the mutex
// discipline that keeps tick work and control-plane reads from colliding.
package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raykavin/aegis/ai"
	"github.com/raykavin/aegis/config"
	"github.com/raykavin/aegis/core"
	"github.com/raykavin/aegis/indicator"
	"github.com/raykavin/aegis/logger"
	"github.com/raykavin/aegis/strategy"
)

// Status is the engine's coarse run state.
type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
)

// maxConcurrentSymbols bounds per-tick fan-out.
const maxConcurrentSymbols = 8

// Engine is the Trading Engine.
type Engine struct {
	exchange      core.Exchange
	ensemble      *ai.Ensemble
	evaluator     *strategy.Evaluator
	configs       *config.Store
	positionStore core.PositionStore
	tradeStore    core.TradeStore
	notifier      core.Notifier
	log           logger.Logger

	mu         sync.RWMutex
	positions  map[string]*core.Position
	crossovers map[string]*int64 // per-symbol MACD crossover carry (indicator.Compute)

	inFlight *inFlightGuard

	statusMu sync.Mutex
	status   Status
	ticker   *time.Ticker
	finish   chan struct{}
}

// New constructs an Engine with an empty position set. Call LoadAndReconcile
// before Start to populate it from persisted state.
func New(
	exchange core.Exchange,
	ensemble *ai.Ensemble,
	evaluator *strategy.Evaluator,
	configs *config.Store,
	positionStore core.PositionStore,
	tradeStore core.TradeStore,
	notifier core.Notifier,
	log logger.Logger,
) *Engine {
	return &Engine{
		exchange:      exchange,
		ensemble:      ensemble,
		evaluator:     evaluator,
		configs:       configs,
		positionStore: positionStore,
		tradeStore:    tradeStore,
		notifier:      notifier,
		log:           log,
		positions:     make(map[string]*core.Position),
		crossovers:    make(map[string]*int64),
		inFlight:      newInFlightGuard(),
		status:        StatusStopped,
	}
}

// Start begins the tick scheduler. Starting requires the AI ensemble gate
// be enabled.
func (e *Engine) Start() {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	if e.status == StatusRunning {
		return
	}
	if !e.configs.Snapshot().AIEnsembleEnabled {
		e.log.Error("refusing to start: ai_ensemble_enabled is false")
		return
	}

	e.status = StatusRunning
	e.finish = make(chan struct{})
	e.ticker = time.NewTicker(e.configs.Snapshot().TickInterval)

	go e.loop(e.ticker, e.finish)
	e.notify("Trading engine started.")
}

// Stop cancels future ticks but does not force-close open positions (spec
// §6 "stop cancels ticks but does not force-close positions").
func (e *Engine) Stop() {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	if e.status != StatusRunning {
		return
	}
	e.status = StatusStopped
	close(e.finish)
	e.notify("Trading engine stopped.")
}

func (e *Engine) loop(ticker *time.Ticker, finish chan struct{}) {
	for {
		select {
		case <-ticker.C:
			e.runTick()
		case <-finish:
			ticker.Stop()
			return
		}
	}
}

// Status reports the engine's run state. The read takes statusMu, so it
// waits while Start or Stop holds that lock.
func (e *Engine) Status() string {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	return string(e.status)
}

// Positions returns a snapshot of every open position.
func (e *Engine) Positions() []core.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]core.Position, 0, len(e.positions))
	for _, p := range e.positions {
		out = append(out, *p)
	}
	return out
}

// RecentTrades delegates to the trade store.
func (e *Engine) RecentTrades(limit int) []core.TradeRecord {
	trades, err := e.tradeStore.RecentTrades(limit)
	if err != nil {
		e.log.WithError(err).Error("recent trades query failed")
		return nil
	}
	return trades
}

// SetNotifier wires the alerting sink after construction, breaking the
// construction cycle between the engine and notifiers that need a handle
// back onto the engine's control plane (e.g. Telegram's /status,
// /positions, /start and /stop commands).
func (e *Engine) SetNotifier(notifier core.Notifier) {
	e.notifier = notifier
}

// UpdateConfig is a no-op validation pass-through: config.Store already owns
// the atomic swap; this exists to satisfy the control-plane write RPC (spec
// §6) without the engine needing to re-derive validation.
func (e *Engine) UpdateConfig(snap *config.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil config snapshot")
	}
	return nil
}

func (e *Engine) notify(message string) {
	e.log.Info(message)
	if e.notifier != nil {
		e.notifier.Notify(message)
	}
}

func (e *Engine) notifyError(err error) {
	e.log.WithError(err).Error("engine error")
	if e.notifier != nil {
		e.notifier.OnError(err)
	}
}

func (e *Engine) notifyCritical(message string) {
	e.log.WithField("critical", true).Error("CRITICAL: " + message)
	if e.notifier != nil {
		e.notifier.OnCritical(message)
	}
}

// runTick performs one full entry+monitor sweep bounded by the configured
// tick deadline, a soft wall-clock budget: if exceeded, the late tick is
// skipped and logged rather than left to run indefinitely.
func (e *Engine) runTick() {
	snap := e.configs.Snapshot()
	ctx, cancel := context.WithTimeout(context.Background(), snap.TickDeadline)
	defer cancel()

	symbols := enabledSymbols(snap)

	var wg sync.WaitGroup
	tokens := make(chan struct{}, maxConcurrentSymbols)

	for _, symbol := range symbols {
		if !e.inFlight.tryAcquire(symbol) {
			e.log.WithField("symbol", symbol).Debug("symbol already has an in-flight operation, skipping this tick")
			continue
		}

		wg.Add(1)
		tokens <- struct{}{}
		go func(symbol string) {
			defer wg.Done()
			defer func() { <-tokens }()
			defer e.inFlight.release(symbol)
			e.runSymbolTick(ctx, snap, symbol)
		}(symbol)
	}

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		e.log.WithField("deadline", snap.TickDeadline.String()).Warn("tick deadline exceeded; abandoning outstanding work, results discarded on arrival")
	}
}

func (e *Engine) runSymbolTick(ctx context.Context, snap *config.Snapshot, symbol string) {
	e.mu.RLock()
	pos, open := e.positions[symbol]
	e.mu.RUnlock()

	if open {
		e.runMonitor(ctx, snap, symbol, pos)
		return
	}
	e.runEntry(ctx, snap, symbol)
}

func enabledSymbols(snap *config.Snapshot) []string {
	out := make([]string, 0, len(snap.Pairs))
	for _, p := range snap.Pairs {
		if p.Enabled {
			out = append(out, p.Symbol)
		}
	}
	return out
}

// computeIndicators fetches the candle window for symbol and derives
// core.Indicators, carrying the per-symbol MACD crossover timestamp forward
// (indicator.Compute is pure; the Engine owns the carried state).
func (e *Engine) computeIndicators(ctx context.Context, symbol string) (core.Indicators, []core.Candle, error) {
	candles, err := e.exchange.FetchOHLCV(ctx, symbol, "1h", 100)
	if err != nil {
		return core.Indicators{}, nil, fmt.Errorf("fetch ohlcv %s: %w", symbol, err)
	}

	e.mu.Lock()
	prev := e.crossovers[symbol]
	ind := indicator.Compute(candles, prev)
	e.crossovers[symbol] = ind.MACDCrossoverAt
	e.mu.Unlock()

	return ind, candles, nil
}

// Package config loads and validates the engine's configuration and exposes
// it as an immutable, hot-reloadable snapshot.
package config

import (
	"time"

	"github.com/raykavin/aegis/core"
	"github.com/shopspring/decimal"
)

// TrailingStop is the per-strategy trailing-stop configuration.
type TrailingStop struct {
	Enabled           bool
	ActivationPercent decimal.Decimal
	DistancePercent   decimal.Decimal
}

// StrategyRisk is the per-strategy risk table row.
type StrategyRisk struct {
	Enabled             bool
	StopLossPercent     decimal.Decimal
	TakeProfitPercent   decimal.Decimal
	PositionSizePercent decimal.Decimal
	MinHoldMinutes      int
	TrailingStop        TrailingStop
}

// PairConfig is the per-pair enablement and allocation row.
type PairConfig struct {
	Symbol            string
	Enabled           bool
	AllocationPercent decimal.Decimal
	Strategies        []core.StrategyName
}

// AIWeights must sum to 1.0 within tolerance.
type AIWeights struct {
	Sentiment float64
	Technical float64
	Macro     float64
	LLM       float64
}

// Sum returns the total of the four weights.
func (w AIWeights) Sum() float64 {
	return w.Sentiment + w.Technical + w.Macro + w.LLM
}

// AIModelEnabled toggles individual scorers independently of the ensemble
// gate.
type AIModelEnabled struct {
	Sentiment bool
	Technical bool
	Macro     bool
	LLM       bool
}

// Limits are the global exposure and sizing limits.
type Limits struct {
	MaxTotalPositions                int
	MaxPositionsPerStrategy          map[core.StrategyName]int
	MaxOrderSizeUSD                  decimal.Decimal
	MaxTotalExposureUSD              decimal.Decimal
	MinOrderValueUSD                 decimal.Decimal
	ProfitProtectionThresholdPercent decimal.Decimal // hook point; see §9
}

// Snapshot is the validated, immutable configuration in force for a tick.
// Hot reload installs a new Snapshot behind a single atomic swap; in-flight
// tick work keeps running against the Snapshot it started with.
type Snapshot struct {
	AIEnsembleEnabled bool
	AIMinConfidence   float64
	AIWeights         AIWeights
	AIModelEnabled    AIModelEnabled

	Limits     Limits
	Strategies map[core.StrategyName]StrategyRisk
	Pairs      []PairConfig

	TickInterval        time.Duration
	TickDeadline        time.Duration
	ExchangeCallTimeout time.Duration
	LLMTimeout          time.Duration

	// AIModelURL / AIModelName configure the language-model validator's
	// HTTP endpoint.
	AIModelURL  string
	AIModelName string
}

// StrategyOrderFor returns the enabled strategy list for a symbol, in the
// order the evaluator should try them.
func (s *Snapshot) StrategyOrderFor(symbol string) []core.StrategyName {
	for _, p := range s.Pairs {
		if p.Symbol == symbol && p.Enabled {
			return p.Strategies
		}
	}
	return nil
}

// PairFor returns the pair config for symbol, if configured and enabled.
func (s *Snapshot) PairFor(symbol string) (PairConfig, bool) {
	for _, p := range s.Pairs {
		if p.Symbol == symbol {
			return p, p.Enabled
		}
	}
	return PairConfig{}, false
}

// RiskDefaultsFor returns the per-strategy risk defaults, substituting the
// global stop/take-profit fallbacks when a strategy has no row. The
// fallback row enables the trailing stop for macd_supertrend only.
func (s *Snapshot) RiskDefaultsFor(name core.StrategyName) StrategyRisk {
	if r, ok := s.Strategies[name]; ok {
		return r
	}
	return StrategyRisk{
		Enabled:             true,
		StopLossPercent:     decimal.NewFromFloat(2.0),
		TakeProfitPercent:   decimal.NewFromFloat(4.0),
		PositionSizePercent: decimal.NewFromFloat(5.0),
		MinHoldMinutes:      5,
		TrailingStop:        TrailingStop{Enabled: name == core.StrategyMACDSupertrend},
	}
}

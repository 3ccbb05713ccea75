// Package ai implements the AI ensemble: four concurrent scoring models
// whose weighted vote produces a single gated core.AIVerdict.
package ai

import (
	"context"
	"time"

	"github.com/raykavin/aegis/core"
)

// MarketSnapshot is the input bundle handed to every Scorer for one symbol
// on one tick.
type MarketSnapshot struct {
	Symbol       string
	CurrentPrice float64
	Candles      []core.Candle
	Indicators   core.Indicators
	Portfolio    core.PortfolioContext
	Volatility   core.VolatilityMetrics
	RecentTrades []core.TradeRecord

	// Macro scalars, injected by the caller; a zero value means "no feed
	// configured" and the macro scorer falls back to neutral.
	VIX   float64
	DXY   float64
	Yield10Y float64
	Gold  float64
}

// ScoreResult is one scorer's opinion, optionally carrying autonomous risk
// parameters (only the language-model validator populates Parameters).
type ScoreResult struct {
	Side       core.SideType
	Confidence float64
	Reasoning  string
	Parameters *core.VerdictParameters
}

// Scorer is implemented by each of the four sub-models plus the two
// alternate (unwired-by-default) implementations.
type Scorer interface {
	Name() string
	Weight() float64
	Enabled() bool
	Score(ctx context.Context, snap *MarketSnapshot) (ScoreResult, error)
}

// neutralHold builds a HOLD result at the given confidence for a scorer with
// no opinion; the ensemble uses it in place of a scorer that returned an
// error. Disabled scorers are not run at all, and a failed language-model
// call (API error, empty reply, parse failure) yields fallbackVerdict (HOLD
// at 0.0) instead.
func neutralHold(confidence float64) ScoreResult {
	return ScoreResult{Side: core.SideTypeHold, Confidence: confidence}
}

// clampConfidence keeps a scorer's self-reported confidence inside [0,1]
// regardless of what an external model returns.
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// scoreTimeout is the per-scorer context deadline used by scorers that do
// not have their own configured timeout (sentiment, technical, macro).
const scoreTimeout = 5 * time.Second

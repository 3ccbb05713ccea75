package core

import "github.com/shopspring/decimal"

// VolatilityRegime is a coarse label for market volatility used by the AI to
// size stops and targets.
type VolatilityRegime string

const (
	RegimeLow    VolatilityRegime = "LOW"
	RegimeNormal VolatilityRegime = "NORMAL"
	RegimeHigh   VolatilityRegime = "HIGH"
)

// PortfolioContext is the derived snapshot passed to the AI ensemble
// describing current exposure.
type PortfolioContext struct {
	OpenPositions      int
	MaxPositions        int
	PerStrategyCount    map[StrategyName]int
	TotalExposureUSD    decimal.Decimal
	DailyPnLUSD         decimal.Decimal
	SymbolsHeld         []string
}

// VolatilityMetrics is the derived snapshot of a symbol's recent volatility.
type VolatilityMetrics struct {
	ATRAbsolute        float64
	ATRPercentOfPrice   float64
	Regime              VolatilityRegime
	AvgDailyRangePercent float64
}

// ClassifyRegime buckets an ATR-percent-of-price reading into a regime
// using coarse, hand-tuned bands rather than a statistically fitted model.
func ClassifyRegime(atrPercentOfPrice float64) VolatilityRegime {
	switch {
	case atrPercentOfPrice < 1.5:
		return RegimeLow
	case atrPercentOfPrice > 4.0:
		return RegimeHigh
	default:
		return RegimeNormal
	}
}

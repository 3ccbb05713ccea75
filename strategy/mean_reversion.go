package strategy

import (
	"time"

	"github.com/raykavin/aegis/core"
)

// MeanReversion buys oversold excursions below the lower Bollinger band and
// exits on a reversion back toward the middle band or on either profit target.
type MeanReversion struct{}

func NewMeanReversion() *MeanReversion { return &MeanReversion{} }

func (r *MeanReversion) Name() core.StrategyName { return core.StrategyMeanReversion }

func (r *MeanReversion) MinHoldMinutes() int { return 5 }

func (r *MeanReversion) TrailingStopDefaultEnabled() bool { return false }

func (r *MeanReversion) Entry(ind core.Indicators, _ time.Time) bool {
	if ind.CurrentPrice < ind.BollingerLower {
		return true
	}
	if ind.BollingerLower == 0 {
		return false
	}
	withinHalfPercent := (ind.CurrentPrice-ind.BollingerLower)/ind.BollingerLower <= 0.005
	return ind.RSI14 < 35 && withinHalfPercent
}

func (r *MeanReversion) Exit(ind core.Indicators, profitPercent, holdMinutes float64) bool {
	if holdMinutes < 5 {
		return false
	}
	if ind.CurrentPrice >= ind.BollingerMiddle && profitPercent >= 1.5 {
		return true
	}
	if ind.CurrentPrice > ind.BollingerUpper {
		return true
	}
	return profitPercent >= 2.5
}

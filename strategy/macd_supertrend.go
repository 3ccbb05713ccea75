package strategy

import (
	"time"

	"github.com/raykavin/aegis/core"
)

// macdCrossoverWindow is the "within 30 minutes of real time" freshness
// bound on the MACD bullish crossover event.
const macdCrossoverWindow = 30 * 60

// MACDSupertrend requires confluence of a fresh MACD crossover, trend
// confirmation from Supertrend, elevated volume, and non-overbought/
// trending-enough RSI/ADX readings. It has no strategy-level exit; its
// discipline is trailing-stop-only.
type MACDSupertrend struct{}

func NewMACDSupertrend() *MACDSupertrend { return &MACDSupertrend{} }

func (m *MACDSupertrend) Name() core.StrategyName { return core.StrategyMACDSupertrend }

func (m *MACDSupertrend) MinHoldMinutes() int { return 60 }

func (m *MACDSupertrend) TrailingStopDefaultEnabled() bool { return true }

func (m *MACDSupertrend) Entry(ind core.Indicators, now time.Time) bool {
	if !ind.MACDBullishCrossover(now.Unix(), macdCrossoverWindow) {
		return false
	}
	if ind.CurrentPrice <= ind.SupertrendValue {
		return false
	}
	if ind.VolumeRatio < 1.5 {
		return false
	}
	if ind.RSI14 >= 70 {
		return false
	}
	return ind.ADX14 > 20
}

// Exit: no strategy-level exit; trailing-stop discipline owns it entirely.
func (m *MACDSupertrend) Exit(core.Indicators, float64, float64) bool { return false }

package strategy

import (
	"time"

	"github.com/raykavin/aegis/core"
)

// Momentum buys a widening SMA5/SMA20 spread and exits once SMA5 has fallen
// 0.3% below SMA20 (after an 8-minute hold), as a secondary signal alongside
// the AI-set targets.
type Momentum struct{}

func NewMomentum() *Momentum { return &Momentum{} }

func (m *Momentum) Name() core.StrategyName { return core.StrategyMomentum }

func (m *Momentum) MinHoldMinutes() int { return 8 }

func (m *Momentum) TrailingStopDefaultEnabled() bool { return false }

func (m *Momentum) Entry(ind core.Indicators, _ time.Time) bool {
	if ind.SMA20 == 0 {
		return false
	}
	spread := (ind.SMA5 - ind.SMA20) / ind.SMA20
	return ind.SMA5 > ind.SMA20 && ind.CurrentPrice > ind.SMA5 && spread >= 0.0015
}

func (m *Momentum) Exit(ind core.Indicators, _ float64, holdMinutes float64) bool {
	if ind.SMA20 == 0 || holdMinutes < 8 {
		return false
	}
	spread := (ind.SMA5 - ind.SMA20) / ind.SMA20
	return spread <= -0.003
}

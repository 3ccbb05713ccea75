package strategy

import (
	"time"

	"github.com/raykavin/aegis/core"
)

// Scalping targets quick ~1.2% reversions off SMA10.
type Scalping struct{}

func NewScalping() *Scalping { return &Scalping{} }

func (s *Scalping) Name() core.StrategyName { return core.StrategyScalping }

func (s *Scalping) MinHoldMinutes() int { return 3 }

func (s *Scalping) TrailingStopDefaultEnabled() bool { return false }

func (s *Scalping) Entry(ind core.Indicators, _ time.Time) bool {
	return ind.CurrentPrice <= ind.SMA10*(1-0.008)
}

// Exit: scalping has no strategy-level exit; the AI-set take-profit/
// stop-loss own the exit entirely.
func (s *Scalping) Exit(core.Indicators, float64, float64) bool { return false }

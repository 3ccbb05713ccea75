package ai

import (
	"context"

	"github.com/raykavin/aegis/core"
)

// macroRegime is the coarse label the macro scorer derives from its
// injected scalars before mapping it to a side and confidence.
type macroRegime string

const (
	regimeBull    macroRegime = "bull"
	regimeBear    macroRegime = "bear"
	regimeNeutral macroRegime = "neutral"
)

// MacroScorer (weight default 0.15) consumes VIX, dollar index, the 10-year
// yield and gold, all injected on MarketSnapshot. A zero-valued snapshot
// (no feed configured) yields a neutral HOLD.
type MacroScorer struct {
	weight float64
	on     bool
}

func NewMacroScorer(weight float64, enabled bool) *MacroScorer {
	return &MacroScorer{weight: weight, on: enabled}
}

func (m *MacroScorer) Name() string    { return "macro" }
func (m *MacroScorer) Weight() float64 { return m.weight }
func (m *MacroScorer) Enabled() bool   { return m.on }

func (m *MacroScorer) Score(_ context.Context, snap *MarketSnapshot) (ScoreResult, error) {
	if snap.VIX == 0 && snap.DXY == 0 && snap.Yield10Y == 0 && snap.Gold == 0 {
		return neutralHold(0.5), nil
	}

	regime, riskAppetite := classifyMacro(snap.VIX, snap.DXY, snap.Yield10Y)

	switch regime {
	case regimeBull:
		return ScoreResult{Side: core.SideTypeBuy, Confidence: clampConfidence(riskAppetite)}, nil
	case regimeBear:
		return ScoreResult{Side: core.SideTypeSell, Confidence: clampConfidence(1 - riskAppetite)}, nil
	default:
		return neutralHold(0.5), nil
	}
}

// classifyMacro derives a bull/bear/neutral regime and a [0,1]
// risk-appetite score from the injected scalars. Thresholds are hand-tuned
// coarse bands, the same idiom as core.ClassifyRegime for volatility.
func classifyMacro(vix, dxy, yield10y float64) (macroRegime, float64) {
	riskAppetite := 0.5

	switch {
	case vix > 0 && vix < 15:
		riskAppetite += 0.2
	case vix > 0 && vix > 30:
		riskAppetite -= 0.3
	}

	switch {
	case dxy > 0 && dxy < 100:
		riskAppetite += 0.1
	case dxy > 105:
		riskAppetite -= 0.1
	}

	switch {
	case yield10y > 0 && yield10y < 3.5:
		riskAppetite += 0.1
	case yield10y > 5:
		riskAppetite -= 0.1
	}

	riskAppetite = clampConfidence(riskAppetite)

	switch {
	case riskAppetite >= 0.65:
		return regimeBull, riskAppetite
	case riskAppetite <= 0.35:
		return regimeBear, riskAppetite
	default:
		return regimeNeutral, riskAppetite
	}
}

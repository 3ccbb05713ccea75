package ai

import (
	"context"

	"github.com/raykavin/aegis/core"
)

// TechnicalScorer (weight default 0.35) is a closed-form rule set over
// indicator values already computed by the indicator library; it performs
// no I/O and cannot fail.
type TechnicalScorer struct {
	weight float64
	on     bool
}

func NewTechnicalScorer(weight float64, enabled bool) *TechnicalScorer {
	return &TechnicalScorer{weight: weight, on: enabled}
}

func (t *TechnicalScorer) Name() string    { return "technical" }
func (t *TechnicalScorer) Weight() float64 { return t.weight }
func (t *TechnicalScorer) Enabled() bool   { return t.on }

func (t *TechnicalScorer) Score(_ context.Context, snap *MarketSnapshot) (ScoreResult, error) {
	ind := snap.Indicators

	bullishVotes := 0
	bearishVotes := 0
	totalVotes := 0

	totalVotes++
	switch {
	case ind.RSI14 < 30:
		bullishVotes++
	case ind.RSI14 > 70:
		bearishVotes++
	}

	totalVotes++
	if ind.MACDLine > ind.MACDSignal {
		bullishVotes++
	} else {
		bearishVotes++
	}

	totalVotes++
	switch {
	case ind.ADX14 > 25 && ind.SupertrendDirection == core.TrendBullish:
		bullishVotes++
	case ind.ADX14 > 25 && ind.SupertrendDirection == core.TrendBearish:
		bearishVotes++
	}

	totalVotes++
	if ind.VolumeRatio > 1.5 {
		if ind.SupertrendDirection == core.TrendBullish {
			bullishVotes++
		} else {
			bearishVotes++
		}
	}

	if bullishVotes == 0 && bearishVotes == 0 {
		return neutralHold(0.5), nil
	}

	if bullishVotes >= bearishVotes {
		return ScoreResult{
			Side:       core.SideTypeBuy,
			Confidence: clampConfidence(float64(bullishVotes) / float64(totalVotes)),
		}, nil
	}
	return ScoreResult{
		Side:       core.SideTypeSell,
		Confidence: clampConfidence(float64(bearishVotes) / float64(totalVotes)),
	}, nil
}

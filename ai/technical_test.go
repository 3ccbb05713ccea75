package ai

import (
	"context"
	"testing"

	"github.com/raykavin/aegis/core"
	"github.com/stretchr/testify/assert"
)

func TestTechnicalScorerBullishOversoldAndUptrend(t *testing.T) {
	s := NewTechnicalScorer(0.35, true)
	snap := &MarketSnapshot{
		Indicators: core.Indicators{
			RSI14:               25,
			MACDLine:            0.5,
			MACDSignal:          0.2,
			ADX14:               30,
			SupertrendDirection: core.TrendBullish,
			VolumeRatio:         2.0,
		},
	}

	result, err := s.Score(context.Background(), snap)
	assert.NoError(t, err)
	assert.Equal(t, core.SideTypeBuy, result.Side)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestTechnicalScorerSellsWhenOnlyMACDIsBearish(t *testing.T) {
	s := NewTechnicalScorer(0.35, true)
	snap := &MarketSnapshot{
		Indicators: core.Indicators{
			RSI14:               50,
			MACDLine:            -0.1,
			MACDSignal:          0.1,
			ADX14:               10,
			SupertrendDirection: core.TrendBearish,
			VolumeRatio:         1.0,
		},
	}

	result, err := s.Score(context.Background(), snap)
	assert.NoError(t, err)
	assert.Equal(t, core.SideTypeSell, result.Side)
}

func TestMacroScorerNoFeedConfiguredIsNeutral(t *testing.T) {
	s := NewMacroScorer(0.15, true)
	result, err := s.Score(context.Background(), &MarketSnapshot{})
	assert.NoError(t, err)
	assert.Equal(t, core.SideTypeHold, result.Side)
	assert.Equal(t, 0.5, result.Confidence)
}

func TestMacroScorerLowVIXIsBullish(t *testing.T) {
	s := NewMacroScorer(0.15, true)
	result, err := s.Score(context.Background(), &MarketSnapshot{VIX: 12, DXY: 98, Yield10Y: 3.0})
	assert.NoError(t, err)
	assert.Equal(t, core.SideTypeBuy, result.Side)
}

func TestSentimentScorerFallsBackWithoutSource(t *testing.T) {
	s := NewSentimentScorer(nil, 0.20, true)
	result, err := s.Score(context.Background(), &MarketSnapshot{})
	assert.NoError(t, err)
	assert.Equal(t, core.SideTypeHold, result.Side)
	assert.Equal(t, 0.5, result.Confidence)
}

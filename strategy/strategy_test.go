package strategy

import (
	"testing"
	"time"

	"github.com/raykavin/aegis/core"
	"github.com/stretchr/testify/assert"
)

func TestMomentumEntry(t *testing.T) {
	m := NewMomentum()

	ind := core.Indicators{CurrentPrice: 101, SMA5: 100.5, SMA20: 100}
	assert.True(t, m.Entry(ind, time.Now()))

	flat := core.Indicators{CurrentPrice: 100.2, SMA5: 100.05, SMA20: 100}
	assert.False(t, m.Entry(flat, time.Now()))
}

func TestMomentumExitRequiresHold(t *testing.T) {
	m := NewMomentum()
	ind := core.Indicators{SMA5: 99, SMA20: 100}

	assert.False(t, m.Exit(ind, 0, 5))
	assert.True(t, m.Exit(ind, 0, 8))
}

func TestMeanReversionEntryBelowLowerBand(t *testing.T) {
	r := NewMeanReversion()
	ind := core.Indicators{CurrentPrice: 9.9, BollingerLower: 10}
	assert.True(t, r.Entry(ind, time.Now()))
}

func TestMeanReversionEntryRSINearLowerBand(t *testing.T) {
	r := NewMeanReversion()
	ind := core.Indicators{CurrentPrice: 10.02, BollingerLower: 10, RSI14: 30}
	assert.True(t, r.Entry(ind, time.Now()))
}

func TestMeanReversionExitAtProfitTarget(t *testing.T) {
	r := NewMeanReversion()
	ind := core.Indicators{CurrentPrice: 10, BollingerMiddle: 9.5, BollingerUpper: 11}
	assert.True(t, r.Exit(ind, 1.5, 10))
	assert.False(t, r.Exit(ind, 1.4, 10))
}

func TestScalpingEntryThreshold(t *testing.T) {
	s := NewScalping()
	ind := core.Indicators{CurrentPrice: 99.1, SMA10: 100}
	assert.True(t, s.Entry(ind, time.Now()))

	ind.CurrentPrice = 99.5
	assert.False(t, s.Entry(ind, time.Now()))
}

func TestMACDSupertrendRequiresFreshCrossover(t *testing.T) {
	m := NewMACDSupertrend()
	now := time.Now()
	staleTS := now.Add(-time.Hour).Unix()

	ind := core.Indicators{
		CurrentPrice:        105,
		SupertrendValue:     100,
		VolumeRatio:         2,
		RSI14:               50,
		ADX14:               25,
		MACDCrossoverAt:     &staleTS,
	}
	assert.False(t, m.Entry(ind, now))

	freshTS := now.Add(-time.Minute).Unix()
	ind.MACDCrossoverAt = &freshTS
	assert.True(t, m.Entry(ind, now))
}

func TestEvaluatorTieBreaksOnConfigOrder(t *testing.T) {
	e := NewEvaluator()
	ind := core.Indicators{CurrentPrice: 100.6, SMA10: 102, SMA5: 100.5, SMA20: 100}

	order := []core.StrategyName{core.StrategyMomentum, core.StrategyScalping}
	signal, ok := e.Evaluate(order, ind, time.Now())
	assert.True(t, ok)
	assert.Equal(t, core.StrategyMomentum, signal.Strategy)
}

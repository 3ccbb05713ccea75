// Package indicator implements pure, referentially transparent functions
// over closed-over price windows. No function in this package performs I/O
// or suspends; all state (the MACD crossover timestamp) is threaded in and
// out explicitly by the caller rather than held internally.
package indicator

import (
	"github.com/raykavin/aegis/core"
	"gonum.org/v1/gonum/stat"
)

const (
	supertrendATRPeriod = 10
	supertrendFactor    = 3.0
)

// Compute derives a core.Indicators record from a candle window (oldest
// first). prevMACDCrossoverAt is the previously tracked bullish-crossover
// timestamp (unix seconds), or nil; Compute returns the updated value to be
// carried forward by the caller (the Trading Engine's per-symbol state).
func Compute(candles []core.Candle, prevMACDCrossoverAt *int64) core.Indicators {
	if len(candles) == 0 {
		return core.Indicators{}
	}

	closes := core.Closes(candles)
	highs := core.Highs(candles)
	lows := core.Lows(candles)
	volumes := core.Volumes(candles)

	last := len(closes) - 1
	out := core.Indicators{CurrentPrice: closes[last]}

	out.SMA5 = lastOf(SMA(closes, 5))
	out.SMA10 = lastOf(SMA(closes, 10))
	out.SMA20 = lastOf(SMA(closes, 20))

	upper, middle, lower := BB(closes, 20, 2.0, TypeSMA)
	out.BollingerUpper = lastOf(upper)
	out.BollingerMiddle = lastOf(middle)
	out.BollingerLower = lastOf(lower)
	out.BollingerWidth = out.BollingerUpper - out.BollingerLower

	out.RSI14 = RSI14(closes)

	macdLine, signalLine, _ := MACD(closes, 12, 26, 9)
	out.MACDLine = lastOf(macdLine)
	out.MACDSignal = lastOf(signalLine)
	out.MACDCrossoverAt = macdCrossoverAt(candles, macdLine, signalLine, prevMACDCrossoverAt)

	out.ATR14 = lastOf(ATR(highs, lows, closes, 14))

	st := SuperTrend(highs, lows, closes, supertrendATRPeriod, supertrendFactor)
	out.SupertrendValue = lastOf(st)
	if out.CurrentPrice > out.SupertrendValue {
		out.SupertrendDirection = core.TrendBullish
	} else {
		out.SupertrendDirection = core.TrendBearish
	}

	out.ADX14 = lastOf(ADX(highs, lows, closes, 14))

	out.VolumeRatio, out.VolumeZScore = volumeRegime(volumes)

	return out
}

// RSI14 applies Wilder smoothing over 14 periods, returning the spec's
// neutral 50 fallback for windows shorter than 14.
func RSI14(closes []float64) float64 {
	if len(closes) < 14 {
		return 50
	}
	return lastOf(RSI(closes, 14))
}

func lastOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

// macdCrossoverAt detects whether the final bar is a bullish MACD/signal
// crossover and, if so, returns its timestamp; otherwise it carries forward
// the previous timestamp (the caller discards it once outside the 30-minute
// window via core.Indicators.MACDBullishCrossover).
func macdCrossoverAt(candles []core.Candle, macdLine, signalLine []float64, prev *int64) *int64 {
	n := len(macdLine)
	if n < 2 || len(signalLine) < 2 {
		return prev
	}

	macd := Series[float64](macdLine)
	signal := Series[float64](signalLine)
	if CrossedAbove(macd, signal) {
		ts := candles[len(candles)-1].Time.Unix()
		return &ts
	}
	return prev
}

// volumeRegime returns the current-vs-mean ratio and z-score over the
// trailing 20-period window.
func volumeRegime(volumes []float64) (ratio, zscore float64) {
	if len(volumes) == 0 {
		return 1, 0
	}
	window := volumes
	if len(window) > 20 {
		window = window[len(window)-20:]
	}

	mean, std := stat.MeanStdDev(window, nil)
	current := volumes[len(volumes)-1]

	if mean == 0 {
		return 1, 0
	}
	ratio = current / mean
	if std == 0 {
		return ratio, 0
	}
	zscore = (current - mean) / std
	return ratio, zscore
}

package indicator

import "github.com/markcheno/go-talib"

// SuperTrend derives the trend-following band that macd_supertrend uses as
// its entry/exit confirmation line.
//
//   - high, low, close: OHLC price series
//   - atrPeriod: lookback for the underlying Average True Range
//   - factor: ATR multiplier widening the band off the median price
func SuperTrend(high, low, close []float64, atrPeriod int, factor float64) []float64 {
	candleCount := len(close)
	if candleCount == 0 {
		return []float64{}
	}

	atr := talib.Atr(high, low, close, atrPeriod)

	basicUpper := make([]float64, candleCount)
	basicLower := make([]float64, candleCount)
	trendUpper := make([]float64, candleCount)
	trendLower := make([]float64, candleCount)
	line := make([]float64, candleCount)

	// i starts at 1: every step reads the previous bar's finalized band.
	for i := 1; i < candleCount; i++ {
		median := (high[i] + low[i]) / 2.0
		basicUpper[i] = median + atr[i]*factor
		basicLower[i] = median - atr[i]*factor

		if basicUpper[i] < trendUpper[i-1] || close[i-1] > trendUpper[i-1] {
			trendUpper[i] = basicUpper[i]
		} else {
			trendUpper[i] = trendUpper[i-1]
		}

		if basicLower[i] > trendLower[i-1] || close[i-1] < trendLower[i-1] {
			trendLower[i] = basicLower[i]
		} else {
			trendLower[i] = trendLower[i-1]
		}

		switch {
		case trendUpper[i-1] == line[i-1] && close[i] > trendUpper[i]:
			line[i] = trendLower[i] // flip down-trend to up-trend
		case trendUpper[i-1] == line[i-1]:
			line[i] = trendUpper[i] // down-trend holds
		case close[i] < trendLower[i]:
			line[i] = trendUpper[i] // flip up-trend to down-trend
		default:
			line[i] = trendLower[i] // up-trend holds
		}
	}

	return line
}

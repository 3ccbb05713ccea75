package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is an immutable OHLCV record for one (symbol, timeframe) bucket.
type Candle struct {
	Pair   string
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal

	// Complete is false for the currently-forming candle of a live feed.
	Complete bool
}

// GetPair returns the trading pair identifier for the candle.
func (c Candle) GetPair() string { return c.Pair }

// GetTime returns the timestamp of the candle.
func (c Candle) GetTime() time.Time { return c.Time }

// Closes extracts the close prices of a candle slice, oldest first, as
// float64 for consumption by the indicator library.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i], _ = c.Close.Float64()
	}
	return out
}

// Highs extracts the high prices of a candle slice as float64.
func Highs(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i], _ = c.High.Float64()
	}
	return out
}

// Lows extracts the low prices of a candle slice as float64.
func Lows(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i], _ = c.Low.Float64()
	}
	return out
}

// Volumes extracts the volumes of a candle slice as float64.
func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i], _ = c.Volume.Float64()
	}
	return out
}

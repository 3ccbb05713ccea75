package metric

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean is the arithmetic mean of values, for use as a metric.Bootstrap
// measure function.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Payoff is the ratio of average win to average loss across a set of
// percent-return trade results.
func Payoff(values []float64) float64 {
	wins, losses := partitionTradeResults(values)
	if len(losses) == 0 {
		return 10
	}

	avgWin := stat.Mean(wins, nil)
	avgLoss := stat.Mean(losses, nil)
	if avgLoss == 0 {
		return 10
	}

	return math.Abs(avgWin / avgLoss)
}

// ProfitFactor is the ratio of summed wins to summed losses.
func ProfitFactor(values []float64) float64 {
	var totalWins, totalLosses float64
	for _, v := range values {
		if v >= 0 {
			totalWins += v
		} else {
			totalLosses += v
		}
	}

	if totalLosses == 0 {
		return 10
	}
	return math.Abs(totalWins / totalLosses)
}

func partitionTradeResults(values []float64) (wins, losses []float64) {
	for _, v := range values {
		if v >= 0 {
			wins = append(wins, v)
		} else {
			losses = append(losses, math.Abs(v))
		}
	}
	return wins, losses
}

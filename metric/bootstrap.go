package metric

import (
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// BootstrapInterval is a resampled confidence interval for a performance
// statistic (win rate, average PnL, Sharpe, ...) over a trade history.
type BootstrapInterval struct {
	Lower  float64
	Upper  float64
	StdDev float64
	Mean   float64
}

// Bootstrap resamples values with replacement resampleCount times, applies
// statistic to each resample, and reports the confidence interval of the
// resulting distribution at the requested confidence level (e.g. 0.95).
func Bootstrap(values []float64, statistic func([]float64) float64, resampleCount int, confidence float64) BootstrapInterval {
	if len(values) == 0 {
		return BootstrapInterval{}
	}

	resampled := resample(values, statistic, resampleCount)
	sort.Float64s(resampled)

	tail := 1 - confidence
	mean, stdDev := stat.MeanStdDev(resampled, nil)
	upper := stat.Quantile(1-tail/2, stat.LinInterp, resampled, nil)
	lower := stat.Quantile(tail/2, stat.LinInterp, resampled, nil)

	return BootstrapInterval{
		Lower:  lower,
		Upper:  upper,
		StdDev: stdDev,
		Mean:   mean,
	}
}

// resample draws resampleCount bootstrap samples (each the size of values,
// drawn with replacement) and reduces each through statistic.
func resample(values []float64, statistic func([]float64) float64, resampleCount int) []float64 {
	out := make([]float64, 0, resampleCount)

	for i := 0; i < resampleCount; i++ {
		sample := make([]float64, len(values))
		for j := range sample {
			sample[j] = lo.Sample(values)
		}
		out = append(out, statistic(sample))
	}

	return out
}

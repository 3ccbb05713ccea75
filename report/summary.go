// Package report renders trading performance from closed trades: a
// per-symbol/aggregate table, a return-distribution histogram, and
// bootstrap confidence intervals.
package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/aegis/core"
	"github.com/raykavin/aegis/metric"
)

// symbolSummary accumulates the closed SELL trades for one symbol.
type symbolSummary struct {
	Symbol    string
	Win       []float64 // percent returns, winners
	Lose      []float64 // percent returns, losers (stored as-is, signed)
	ProfitUSD float64
	VolumeUSD float64
}

func (s symbolSummary) trades() int { return len(s.Win) + len(s.Lose) }

func (s symbolSummary) winPercentage() float64 {
	if s.trades() == 0 {
		return 0
	}
	return float64(len(s.Win)) / float64(s.trades()) * 100
}

func (s symbolSummary) returns() []float64 {
	out := make([]float64, 0, s.trades())
	out = append(out, s.Win...)
	out = append(out, s.Lose...)
	return out
}

// Summary is the full report over a set of closed trades: per-symbol and
// aggregate statistics, a return-distribution histogram, and bootstrap
// confidence intervals for return, payoff and profit factor.
type Summary struct {
	bySymbol map[string]*symbolSummary
	order    []string
}

// BuildSummary partitions closed SELL trades by symbol. Trades missing a
// PnLPercent (no realized result, e.g. a still-malformed legacy row) are
// skipped.
func BuildSummary(trades []core.TradeRecord) Summary {
	s := Summary{bySymbol: make(map[string]*symbolSummary)}
	for _, t := range trades {
		if t.Action != core.SideTypeSell || t.PnLPercent == nil {
			continue
		}

		acc, ok := s.bySymbol[t.Symbol]
		if !ok {
			acc = &symbolSummary{Symbol: t.Symbol}
			s.bySymbol[t.Symbol] = acc
			s.order = append(s.order, t.Symbol)
		}

		pct, _ := t.PnLPercent.Float64()
		usd := 0.0
		if t.PnLUSD != nil {
			usd, _ = t.PnLUSD.Float64()
		}
		notional, _ := t.Quantity.Mul(t.Price).Float64()

		if pct >= 0 {
			acc.Win = append(acc.Win, pct)
		} else {
			acc.Lose = append(acc.Lose, pct)
		}
		acc.ProfitUSD += usd
		acc.VolumeUSD += notional
	}
	sort.Strings(s.order)
	return s
}

// WriteTable renders the per-symbol/aggregate table via tablewriter.
func (s Summary) WriteTable(w io.Writer) {
	buf := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buf)
	table.SetHeader([]string{"Symbol", "Trades", "Win", "Loss", "% Win", "Payoff", "Pr Fact.", "Profit USD", "Volume USD"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	var totalWins, totalLoses int
	var totalProfit, totalVolume float64

	for _, symbol := range s.order {
		acc := s.bySymbol[symbol]
		returns := acc.returns()
		table.Append([]string{
			symbol,
			strconv.Itoa(acc.trades()),
			strconv.Itoa(len(acc.Win)),
			strconv.Itoa(len(acc.Lose)),
			fmt.Sprintf("%.1f %%", acc.winPercentage()),
			fmt.Sprintf("%.3f", metric.Payoff(returns)),
			fmt.Sprintf("%.3f", metric.ProfitFactor(returns)),
			fmt.Sprintf("%.2f", acc.ProfitUSD),
			fmt.Sprintf("%.2f", acc.VolumeUSD),
		})

		totalWins += len(acc.Win)
		totalLoses += len(acc.Lose)
		totalProfit += acc.ProfitUSD
		totalVolume += acc.VolumeUSD
	}

	totalTrades := totalWins + totalLoses
	winPct := 0.0
	if totalTrades > 0 {
		winPct = float64(totalWins) / float64(totalTrades) * 100
	}
	table.SetFooter([]string{
		"TOTAL",
		strconv.Itoa(totalTrades),
		strconv.Itoa(totalWins),
		strconv.Itoa(totalLoses),
		fmt.Sprintf("%.1f %%", winPct),
		"",
		"",
		fmt.Sprintf("%.2f", totalProfit),
		fmt.Sprintf("%.2f", totalVolume),
	})
	table.Render()

	fmt.Fprintln(w, buf.String())
}

// WriteHistogram renders the aggregate return-distribution histogram across
// every symbol, via aybabtme/uniplot/histogram.
func (s Summary) WriteHistogram(w io.Writer) {
	var all []float64
	for _, symbol := range s.order {
		all = append(all, s.bySymbol[symbol].returns()...)
	}
	if len(all) == 0 {
		return
	}

	fmt.Fprintln(w, "------ RETURN DISTRIBUTION -------")
	hist := histogram.Hist(15, all)
	_ = histogram.Fprint(w, hist, histogram.Linear(10))
	fmt.Fprintln(w)
}

// WriteConfidenceIntervals renders a 95% bootstrap confidence interval per
// symbol for return, payoff and profit factor, via metric.Bootstrap.
func (s Summary) WriteConfidenceIntervals(w io.Writer) {
	const bootstrapSamples = 10000
	const confidence = 0.95

	fmt.Fprintln(w, "------ CONFIDENCE INTERVAL (95%) -------")
	for _, symbol := range s.order {
		returns := s.bySymbol[symbol].returns()
		if len(returns) == 0 {
			continue
		}

		returnInterval := metric.Bootstrap(returns, metric.Mean, bootstrapSamples, confidence)
		payoffInterval := metric.Bootstrap(returns, metric.Payoff, bootstrapSamples, confidence)
		profitFactorInterval := metric.Bootstrap(returns, metric.ProfitFactor, bootstrapSamples, confidence)

		fmt.Fprintf(w, "| %s |\n", symbol)
		fmt.Fprintf(w, "RETURN:      %.2f%% (%.2f%% ~ %.2f%%)\n",
			returnInterval.Mean, returnInterval.Lower, returnInterval.Upper)
		fmt.Fprintf(w, "PAYOFF:      %.2f (%.2f ~ %.2f)\n",
			payoffInterval.Mean, payoffInterval.Lower, payoffInterval.Upper)
		fmt.Fprintf(w, "PROF.FACTOR: %.2f (%.2f ~ %.2f)\n",
			profitFactorInterval.Mean, profitFactorInterval.Lower, profitFactorInterval.Upper)
	}
	fmt.Fprintln(w)
}

// WriteAll renders the table, histogram and confidence intervals in sequence.
func (s Summary) WriteAll(w io.Writer) {
	s.WriteTable(w)
	s.WriteHistogram(w)
	s.WriteConfidenceIntervals(w)
}

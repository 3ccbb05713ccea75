package core

import "strings"

// knownQuoteAssets is checked longest-first so "USDT" matches before "USD"
// on a symbol like "BTCUSDT".
var knownQuoteAssets = []string{"USDT", "BUSD", "USDC", "USD", "BTC", "ETH"}

// SplitAssetQuote splits a concatenated exchange symbol such as "BTCUSDT"
// into its base and quote assets by matching against a small table of known
// quote suffixes. The engine only ever needs the quote side, to read the
// free balance an entry order will spend.
func SplitAssetQuote(symbol string) (asset, quote string) {
	for _, q := range knownQuoteAssets {
		if strings.HasSuffix(symbol, q) && len(symbol) > len(q) {
			return symbol[:len(symbol)-len(q)], q
		}
	}
	return symbol, ""
}

// QuoteAssetOf returns just the quote asset of symbol (e.g. "USDT" for
// "BTCUSDT"), or "" if no known quote suffix matches.
func QuoteAssetOf(symbol string) string {
	_, quote := SplitAssetQuote(symbol)
	return quote
}

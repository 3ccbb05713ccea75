package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAssetQuote(t *testing.T) {
	cases := []struct {
		symbol    string
		wantAsset string
		wantQuote string
	}{
		{"BTCUSDT", "BTC", "USDT"},
		{"ETHUSDT", "ETH", "USDT"},
		{"BNBBUSD", "BNB", "BUSD"},
		{"ETHBTC", "ETH", "BTC"},
		{"UNKNOWN", "UNKNOWN", ""},
	}

	for _, c := range cases {
		asset, quote := SplitAssetQuote(c.symbol)
		assert.Equal(t, c.wantAsset, asset, c.symbol)
		assert.Equal(t, c.wantQuote, quote, c.symbol)
	}
}

func TestQuoteAssetOf(t *testing.T) {
	assert.Equal(t, "USDT", QuoteAssetOf("BTCUSDT"))
	assert.Equal(t, "", QuoteAssetOf("???"))
}

package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPriceLowPrecisionToken(t *testing.T) {
	p := decimal.NewFromFloat(0.0000004)
	assert.Equal(t, "$0.00000040", Price(p))
}

func TestPriceOrdinaryToken(t *testing.T) {
	p := decimal.NewFromFloat(27453.12)
	assert.Equal(t, "$27453.12", Price(p))
}

func TestPriceZero(t *testing.T) {
	assert.Equal(t, "$0.00", Price(decimal.Zero))
}

package exchange

import (
	"errors"
	"strings"

	"github.com/adshao/go-binance/v2/common"
	"github.com/raykavin/aegis/core"
)

// classifyError maps a go-binance API error onto the engine's sentinel
// taxonomy so the trading engine's retry policy can decide whether a
// failure is worth retrying without parsing exchange-specific error
// strings itself.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == -1013 || strings.Contains(strings.ToLower(apiErr.Message), "min_notional") ||
			strings.Contains(strings.ToLower(apiErr.Message), "lot_size"):
			return core.ErrVolumeMinimumNotMet
		}
	}

	return err
}

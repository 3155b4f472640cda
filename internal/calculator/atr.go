package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"PriceCycle/internal/model"
)

// CalculateATR returns the latest Wilder-smoothed Average True Range.
// Requires more than period bars.
func CalculateATR(bars []model.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) <= period {
		return 0, fmt.Errorf("not enough data for ATR(%d): %d bars", period, len(bars))
	}
	highs, lows, closes := extractHLC(bars)
	atr := talib.Atr(highs, lows, closes, period)
	last := atr[len(atr)-1]
	if math.IsNaN(last) || last <= 0 {
		return 0, fmt.Errorf("ATR(%d) is not positive: %v", period, last)
	}
	return last, nil
}

func extractHLC(bars []model.Bar) (highs, lows, closes []float64) {
	highs = make([]float64, len(bars))
	lows = make([]float64, len(bars))
	closes = make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
	}
	return highs, lows, closes
}

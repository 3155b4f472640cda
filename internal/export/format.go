package export

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price renders v rounded half away from zero to two decimals.
func Price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Date renders a bar timestamp as a calendar date.
func Date(t time.Time) string {
	return t.Format(time.DateOnly)
}

// ATR renders an ATR value, or "-" when unavailable.
func ATR(v float64) string {
	if v <= 0 {
		return "-"
	}
	return Price(v)
}

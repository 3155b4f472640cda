package calculator

import (
	"math"
	"testing"
	"time"

	"PriceCycle/internal/model"
)

func flatBars(n int, rng float64) []model.Bar {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = model.Bar{
			Time:  start.AddDate(0, 0, i),
			Open:  100,
			High:  100 + rng/2,
			Low:   100 - rng/2,
			Close: 100,
		}
	}
	return bars
}

func TestCalculateATR_ConstantRange(t *testing.T) {
	atr, err := CalculateATR(flatBars(30, 4), 14)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(atr-4) > 1e-9 {
		t.Errorf("expected ATR 4, got %v", atr)
	}
}

func TestCalculateATR_GapCountsInTrueRange(t *testing.T) {
	bars := flatBars(20, 2)
	// Gap up on the last bar: true range is high - previous close.
	last := &bars[len(bars)-1]
	last.Open, last.High, last.Low, last.Close = 110, 111, 109, 110
	atr, err := CalculateATR(bars, 5)
	if err != nil {
		t.Fatal(err)
	}
	// Wilder: (2*4 + 11) / 5
	if math.Abs(atr-3.8) > 1e-9 {
		t.Errorf("expected ATR 3.8, got %v", atr)
	}
}

func TestCalculateATR_InsufficientData(t *testing.T) {
	if _, err := CalculateATR(flatBars(14, 2), 14); err == nil {
		t.Error("expected error with period bars only")
	}
	if _, err := CalculateATR(flatBars(30, 2), 0); err == nil {
		t.Error("expected error for zero period")
	}
}

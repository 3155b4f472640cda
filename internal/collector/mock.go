package collector

import (
	"context"
	"fmt"
	"time"

	"PriceCycle/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price      float64
	DailyData  map[string][]model.Bar
	WeeklyData map[string][]model.Bar
	Errors     map[string]error
	Now        time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, symbol string, g model.Granularity, count int) ([]model.Bar, error) {
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	data := m.WeeklyData
	step := 7
	if g == model.Daily {
		data = m.DailyData
		step = 1
	}
	if bars, ok := data[symbol]; ok {
		if len(bars) > count {
			bars = bars[len(bars)-count:]
		}
		return bars, nil
	}
	if m.Price <= 0 {
		return nil, fmt.Errorf("mock: no data for %s", symbol)
	}
	return generateMockBars(m.Price, count, step, m.Now), nil
}

func generateMockBars(basePrice float64, count, stepDays int, now time.Time) []model.Bar {
	if now.IsZero() {
		now = time.Now()
	}
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:   now.AddDate(0, 0, -(count-i)*stepDays),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

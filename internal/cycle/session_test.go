package cycle

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"PriceCycle/internal/model"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func testPair() model.BarPair {
	return model.BarPair{
		Previous: model.Bar{Time: time.Date(2025, 6, 2, 0, 0, 0, 0, ist), Close: 100},
		Latest:   model.Bar{Time: time.Date(2025, 6, 9, 0, 0, 0, 0, ist), Close: 110},
	}
}

func TestSelectReference_DayTimeRule(t *testing.T) {
	s := DefaultSession()
	pair := testPair()
	// 2025-06-11 is a Wednesday.
	tests := []struct {
		name     string
		now      time.Time
		price    float64
		wantLast bool
	}{
		{"wednesday noon", time.Date(2025, 6, 11, 12, 0, 0, 0, ist), 100, false},
		{"monday open", time.Date(2025, 6, 9, 9, 15, 0, 0, ist), 100, false},
		{"thursday late", time.Date(2025, 6, 12, 23, 59, 59, 0, ist), 100, false},
		{"friday before close", time.Date(2025, 6, 13, 15, 29, 59, 0, ist), 100, false},
		{"friday at close", time.Date(2025, 6, 13, 15, 30, 0, 0, ist), 110, true},
		{"friday evening", time.Date(2025, 6, 13, 20, 0, 0, 0, ist), 110, true},
		{"saturday midnight", time.Date(2025, 6, 14, 0, 0, 0, 0, ist), 110, true},
		{"sunday afternoon", time.Date(2025, 6, 15, 14, 0, 0, 0, ist), 110, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, bar, err := s.SelectReference(pair, tt.now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if price != tt.price {
				t.Errorf("price = %v, want %v", price, tt.price)
			}
			want := pair.Previous
			if tt.wantLast {
				want = pair.Latest
			}
			if !bar.Time.Equal(want.Time) || bar.Close != want.Close {
				t.Errorf("bar = %+v, want %+v", bar, want)
			}
		})
	}
}

func TestSelectReference_ConvertsToExchangeZone(t *testing.T) {
	s := DefaultSession()
	// Friday 10:00 UTC is Friday 15:30 IST.
	now := time.Date(2025, 6, 13, 10, 0, 0, 0, time.UTC)
	price, _, err := s.SelectReference(testPair(), now)
	if err != nil {
		t.Fatal(err)
	}
	if price != 110 {
		t.Errorf("expected latest close once converted to IST, got %v", price)
	}

	// Friday 14:00 UTC-5 is already Saturday in IST.
	ny := time.FixedZone("EST", -5*3600)
	if !s.WeekSettled(time.Date(2025, 6, 13, 14, 0, 0, 0, ny)) {
		t.Error("expected week to be settled on IST Saturday")
	}
}

func TestSelectReference_NilLocationUsesCallerZone(t *testing.T) {
	s := DefaultSession()
	s.Location = nil
	now := time.Date(2025, 6, 13, 10, 0, 0, 0, time.UTC)
	price, _, err := s.SelectReference(testPair(), now)
	if err != nil {
		t.Fatal(err)
	}
	if price != 100 {
		t.Errorf("expected previous close at Friday 10:00 local, got %v", price)
	}
}

func TestSelectReference_InvalidData(t *testing.T) {
	s := DefaultSession()
	now := time.Date(2025, 6, 14, 12, 0, 0, 0, ist)

	mutate := func(f func(p *model.BarPair)) model.BarPair {
		p := testPair()
		f(&p)
		return p
	}
	tests := []struct {
		name string
		pair model.BarPair
	}{
		{"nan close", mutate(func(p *model.BarPair) { p.Latest.Close = math.NaN() })},
		{"inf close", mutate(func(p *model.BarPair) { p.Previous.Close = math.Inf(1) })},
		{"zero close", mutate(func(p *model.BarPair) { p.Previous.Close = 0 })},
		{"negative close", mutate(func(p *model.BarPair) { p.Latest.Close = -5 })},
		{"missing time", mutate(func(p *model.BarPair) { p.Previous.Time = time.Time{} })},
		{"out of order", mutate(func(p *model.BarPair) { p.Previous, p.Latest = p.Latest, p.Previous })},
		{"same time", mutate(func(p *model.BarPair) { p.Previous.Time = p.Latest.Time })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.SelectReference(tt.pair, now)
			if !errors.Is(err, ErrDataUnavailable) {
				t.Fatalf("expected ErrDataUnavailable, got %v", err)
			}
		})
	}
}

func TestLatestPair(t *testing.T) {
	p := testPair()
	older := model.Bar{Time: p.Previous.Time.AddDate(0, 0, -7), Close: 90}

	pair, err := LatestPair([]model.Bar{older, p.Previous, p.Latest})
	if err != nil {
		t.Fatal(err)
	}
	if pair.Previous.Close != 100 || pair.Latest.Close != 110 {
		t.Errorf("unexpected pair: %+v", pair)
	}

	for _, bars := range [][]model.Bar{nil, {p.Latest}} {
		if _, err := LatestPair(bars); !errors.Is(err, ErrDataUnavailable) {
			t.Errorf("%d bars: expected ErrDataUnavailable, got %v", len(bars), err)
		}
	}
}

func TestSelectReference_Deterministic(t *testing.T) {
	s := DefaultSession()
	pair := testPair()
	now := time.Date(2025, 6, 13, 15, 30, 0, 0, ist)
	wantPrice, wantBar, _ := s.SelectReference(pair, now)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			price, bar, err := s.SelectReference(pair, now)
			if err != nil || price != wantPrice || bar != wantBar {
				t.Errorf("run diverged: %v %+v %v", price, bar, err)
			}
		}()
	}
	wg.Wait()
}

package model

import "time"

// CycleReport is everything computed for one symbol in one pass.
type CycleReport struct {
	Symbol     string
	Reference  float64
	BarUsed    Bar
	Settled    bool // true when the latest weekly bar was used
	Levels     LevelSet
	ATR        float64 // 0 when unavailable
	ATRPeriod  int
	ComputedAt time.Time
}

// HasATR reports whether a volatility value was computed.
func (r *CycleReport) HasATR() bool { return r.ATR > 0 }

// ScanResult is one symbol's outcome in a scan. Exactly one of Report and Err is set.
type ScanResult struct {
	Symbol string
	Report *CycleReport
	Err    error
}

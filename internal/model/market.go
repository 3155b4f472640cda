package model

import "time"

// Granularity is the period length of a bar.
type Granularity string

const (
	Daily  Granularity = "daily"
	Weekly Granularity = "weekly"
)

// Bar represents a single completed candlestick. Time is the period timestamp.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// BarPair holds the two most recent bars of one instrument, oldest first.
type BarPair struct {
	Previous Bar
	Latest   Bar
}

// LevelSet is the output of the cycle level generator.
// Resistances[i] and Supports[i] are derived from Steps[0..i].
type LevelSet struct {
	Reference   float64   `json:"reference"`
	Steps       []float64 `json:"steps"`
	Resistances []float64 `json:"resistances"`
	Supports    []float64 `json:"supports"`
}

// Len returns the number of levels on each side.
func (ls LevelSet) Len() int { return len(ls.Steps) }

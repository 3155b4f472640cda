package recorder

import (
	"time"

	"PriceCycle/internal/model"
)

// ScanRun summarizes one scan over the symbol universe.
type ScanRun struct {
	ID         string
	Trigger    string // "CRON", "MANUAL", "CLI"
	Steps      []float64
	StartedAt  time.Time
	FinishedAt time.Time
	Symbols    int
	Failed     int
}

// LevelSnapshot is a persisted CycleReport.
type LevelSnapshot struct {
	RunID       string
	Symbol      string
	BarTime     time.Time
	Settled     bool
	Reference   float64
	ATR         float64
	Steps       []float64
	Resistances []float64
	Supports    []float64
	ComputedAt  time.Time
}

// SnapshotFromReport flattens a report for storage.
func SnapshotFromReport(runID string, r *model.CycleReport) *LevelSnapshot {
	return &LevelSnapshot{
		RunID:       runID,
		Symbol:      r.Symbol,
		BarTime:     r.BarUsed.Time,
		Settled:     r.Settled,
		Reference:   r.Reference,
		ATR:         r.ATR,
		Steps:       r.Levels.Steps,
		Resistances: r.Levels.Resistances,
		Supports:    r.Levels.Supports,
		ComputedAt:  r.ComputedAt,
	}
}

// Recorder persists computed levels for later lookup.
type Recorder interface {
	RecordScan(run *ScanRun) error
	RecordLevels(snap *LevelSnapshot) error
	History(symbol string, limit int) ([]LevelSnapshot, error)
	Close() error
}

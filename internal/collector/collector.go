package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"PriceCycle/internal/calculator"
	"PriceCycle/internal/cycle"
	"PriceCycle/internal/model"
)

// Only the last two weekly bars matter for the reference close.
const weeklyBarCount = 2

// Collector fetches bars for a symbol and turns them into a CycleReport.
type Collector struct {
	Fetcher   Fetcher
	Session   cycle.Session
	ATRPeriod int // 0 disables ATR
	Now       func() time.Time
	logger    zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, session cycle.Session, atrPeriod int, logger zerolog.Logger) *Collector {
	return &Collector{
		Fetcher:   fetcher,
		Session:   session,
		ATRPeriod: atrPeriod,
		Now:       time.Now,
		logger:    logger.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

// Analyze computes the cycle levels of symbol for steps at the current time.
// Errors match cycle.ErrInvalidSteps or cycle.ErrDataUnavailable.
func (c *Collector) Analyze(ctx context.Context, symbol string, steps []float64) (*model.CycleReport, error) {
	if err := cycle.ValidateSteps(steps); err != nil {
		return nil, err
	}

	weekly, err := c.Fetcher.Fetch(ctx, symbol, model.Weekly, weeklyBarCount)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch weekly bars for %s: %w", cycle.ErrDataUnavailable, symbol, err)
	}
	pair, err := cycle.LatestPair(weekly)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	now := c.Now()
	ref, bar, err := c.Session.SelectReference(pair, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}
	levels, err := cycle.GenerateLevels(ref, steps)
	if err != nil {
		return nil, err
	}

	report := &model.CycleReport{
		Symbol:     symbol,
		Reference:  ref,
		BarUsed:    bar,
		Settled:    bar.Time.Equal(pair.Latest.Time),
		Levels:     levels,
		ComputedAt: now,
	}
	if c.ATRPeriod > 0 {
		c.attachATR(ctx, report)
	}

	c.logger.Debug().
		Str("symbol", symbol).
		Float64("reference", ref).
		Time("bar", bar.Time).
		Bool("settled", report.Settled).
		Msg("levels computed")
	return report, nil
}

// attachATR adds daily ATR to report. Failure only costs the ATR column.
func (c *Collector) attachATR(ctx context.Context, report *model.CycleReport) {
	daily, err := c.Fetcher.Fetch(ctx, report.Symbol, model.Daily, c.ATRPeriod*3)
	if err != nil {
		c.logger.Warn().Err(err).Str("symbol", report.Symbol).Msg("daily fetch for ATR failed")
		return
	}
	atr, err := calculator.CalculateATR(daily, c.ATRPeriod)
	if err != nil {
		c.logger.Warn().Err(err).Str("symbol", report.Symbol).Msg("ATR calculation failed")
		return
	}
	report.ATR = atr
	report.ATRPeriod = c.ATRPeriod
}

// Scan analyzes every symbol with at most concurrency requests in flight.
// Results keep the order of symbols; one symbol failing never affects another.
func (c *Collector) Scan(ctx context.Context, symbols []string, steps []float64, concurrency int) []model.ScanResult {
	results := make([]model.ScanResult, len(symbols))
	if concurrency <= 0 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			results[i].Symbol = sym
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			report, err := c.Analyze(ctx, sym, steps)
			if err != nil {
				c.logger.Warn().Err(err).Str("symbol", sym).Msg("scan: symbol skipped")
				results[i].Err = err
				return nil
			}
			results[i].Report = report
			return nil
		})
	}
	_ = g.Wait()

	c.logger.Info().
		Int("symbols", len(symbols)).
		Int("failed", CountFailed(results)).
		Msg("scan finished")
	return results
}

// CountFailed returns how many scan results carry an error.
func CountFailed(results []model.ScanResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

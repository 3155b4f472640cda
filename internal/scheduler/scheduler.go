package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"PriceCycle/internal/collector"
	"PriceCycle/internal/cycle"
	"PriceCycle/internal/model"
	"PriceCycle/internal/notifier"
	"PriceCycle/internal/recorder"
)

// Scan triggers stored with each run.
const (
	TriggerCron   = "CRON"
	TriggerManual = "MANUAL"
	TriggerCLI    = "CLI"
)

// Sender delivers a formatted message. *notifier.TelegramNotifier implements it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options configures a Scheduler.
type Options struct {
	Symbols       []string
	Presets       cycle.Presets
	DefaultPreset string
	Concurrency   int
	Location      *time.Location
}

// Scheduler runs the weekly scan on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  Sender // nil disables notifications
	Recorder  recorder.Recorder
	opts      Options
	ctx       context.Context
	logger    zerolog.Logger
}

// NewScheduler creates a new Scheduler. Cron expressions are evaluated in opts.Location.
func NewScheduler(ctx context.Context, col *collector.Collector, n Sender, rec recorder.Recorder, opts Options, logger zerolog.Logger) *Scheduler {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		opts:      opts,
		ctx:       ctx,
		logger:    logger.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the weekly scan task.
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) scanTask() {
	steps, err := s.opts.Presets.Steps(s.opts.DefaultPreset)
	if err != nil {
		s.logger.Error().Err(err).Msg("scan: default preset unusable")
		return
	}
	results := s.RunScan(s.ctx, TriggerCron, s.opts.Symbols, steps)
	s.trySend(notifier.FormatScanSummary(results))
}

// RunScan analyzes symbols with steps, records every report and the run
// itself, and returns the per-symbol results.
func (s *Scheduler) RunScan(ctx context.Context, trigger string, symbols []string, steps []float64) []model.ScanResult {
	run := &recorder.ScanRun{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Steps:     steps,
		StartedAt: time.Now(),
		Symbols:   len(symbols),
	}
	log := s.logger.With().Str("run_id", run.ID).Str("trigger", trigger).Logger()
	log.Info().Int("symbols", len(symbols)).Msg("scan started")

	results := s.Collector.Scan(ctx, symbols, steps, s.opts.Concurrency)
	for _, r := range results {
		if r.Report == nil {
			continue
		}
		if err := s.Recorder.RecordLevels(recorder.SnapshotFromReport(run.ID, r.Report)); err != nil {
			log.Error().Err(err).Str("symbol", r.Symbol).Msg("record levels")
		}
	}

	run.FinishedAt = time.Now()
	run.Failed = collector.CountFailed(results)
	if err := s.Recorder.RecordScan(run); err != nil {
		log.Error().Err(err).Msg("record scan run")
	}
	log.Info().Int("failed", run.Failed).Dur("took", run.FinishedAt.Sub(run.StartedAt)).Msg("scan done")
	return results
}

// HandleCommand processes a chat command and returns a reply.
//
//	/levels SYMBOL [preset | a,b,c]
//	/scan [preset | a,b,c]
//	/presets
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return s.help()
	}
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "/levels":
		if len(args) == 0 {
			return "Usage: /levels SYMBOL [preset | steps]"
		}
		steps, err := s.resolveSteps(args[1:])
		if err != nil {
			return "❌ " + err.Error()
		}
		symbol := strings.ToUpper(args[0])
		report, err := s.Collector.Analyze(ctx, symbol, steps)
		if err != nil {
			if errors.Is(err, cycle.ErrDataUnavailable) {
				return fmt.Sprintf("❌ Could not fetch weekly close for %s", symbol)
			}
			return "❌ " + err.Error()
		}
		if err := s.Recorder.RecordLevels(recorder.SnapshotFromReport("", report)); err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("record levels")
		}
		return notifier.FormatLevelsReport(report)
	case "/scan":
		steps, err := s.resolveSteps(args)
		if err != nil {
			return "❌ " + err.Error()
		}
		return notifier.FormatScanSummary(s.RunScan(ctx, TriggerManual, s.opts.Symbols, steps))
	case "/presets":
		return notifier.FormatPresets(s.opts.Presets)
	default:
		return s.help()
	}
}

// resolveSteps rejoins args so both "30, 60" and "30 60" parse as a step list.
func (s *Scheduler) resolveSteps(args []string) ([]float64, error) {
	if len(args) == 0 {
		return s.opts.Presets.Steps(s.opts.DefaultPreset)
	}
	return s.opts.Presets.Resolve(strings.Join(args, ","))
}

func (s *Scheduler) help() string {
	return "Available commands:\n" +
		"• /levels SYMBOL [preset | steps]\n" +
		"• /scan [preset | steps]\n" +
		"• /presets"
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.ctx, text, 3); err != nil {
		s.logger.Error().Err(err).Msg("send notification")
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"PriceCycle/internal/api"
	"PriceCycle/internal/collector"
	"PriceCycle/internal/config"
	"PriceCycle/internal/cycle"
	"PriceCycle/internal/export"
	"PriceCycle/internal/logger"
	"PriceCycle/internal/notifier"
	"PriceCycle/internal/recorder"
	"PriceCycle/internal/scheduler"
)

const usage = `usage: pricecycle <command> [flags]

commands:
  levels   compute cycle levels for one symbol
  scan     compute cycle levels for the configured symbol universe
  serve    run the weekly scan on schedule, the HTTP API and Telegram commands
`

type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	collector *collector.Collector
	recorder  recorder.Recorder
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one command and returns the process exit code. All cleanup is
// deferred here so it runs before main exits.
func run(argv []string) int {
	if len(argv) < 1 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	cmd, args := argv[0], argv[1:]
	switch cmd {
	case "levels", "scan", "serve":
	default:
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	log := logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Pretty)
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation")
		return 1
	}

	a, err := newApp(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("init")
		return 1
	}
	defer func() {
		if err := a.recorder.Close(); err != nil {
			log.Warn().Err(err).Msg("close recorder")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "levels":
		err = a.runLevels(ctx, args, os.Stdout)
	case "scan":
		err = a.runScan(ctx, args, os.Stdout)
	case "serve":
		err = a.runServe(ctx)
	}
	if errors.Is(err, flag.ErrHelp) {
		return 2
	}
	if err != nil {
		log.Error().Err(err).Str("command", cmd).Msg("command failed")
		return 1
	}
	return 0
}

func newApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	session, err := cfg.Session()
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.DataSource.TimeoutSeconds) * time.Second
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, timeout, session.Location)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Exchange.Suffix, cfg.Proxy, timeout)
	}
	log.Info().Str("source", fetcher.Name()).Str("timezone", cfg.Exchange.Timezone).Msg("data source ready")

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	return &app{
		cfg:       cfg,
		log:       log,
		collector: collector.NewCollector(fetcher, session, cfg.ATRPeriod(), log),
		recorder:  rec,
	}, nil
}

// stepsFromFlags resolves -steps over -preset over the configured default.
func (a *app) stepsFromFlags(preset, steps string) ([]float64, error) {
	if steps != "" {
		return cycle.ParseSteps(steps)
	}
	if preset == "" {
		preset = a.cfg.Cycle.DefaultPreset
	}
	return a.cfg.Presets().Steps(preset)
}

func (a *app) runLevels(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("levels", flag.ContinueOnError)
	symbol := fs.String("symbol", "", "symbol or index, e.g. RELIANCE or NIFTY")
	preset := fs.String("preset", "", "step preset name")
	steps := fs.String("steps", "", "custom comma-separated steps, e.g. 25,50,75,100")
	csvPath := fs.String("csv", "", "also write levels to this CSV file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *symbol == "" {
		return errors.New("-symbol is required")
	}

	st, err := a.stepsFromFlags(*preset, *steps)
	if err != nil {
		return err
	}
	report, err := a.collector.Analyze(ctx, strings.ToUpper(*symbol), st)
	if err != nil {
		return err
	}
	if err := a.recorder.RecordLevels(recorder.SnapshotFromReport("", report)); err != nil {
		a.log.Warn().Err(err).Msg("record levels")
	}

	fmt.Fprint(out, export.RenderReport(report))
	if *csvPath != "" {
		return writeFile(*csvPath, func(w io.Writer) error { return export.WriteLevelsCSV(w, report.Levels) })
	}
	return nil
}

func (a *app) runScan(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	preset := fs.String("preset", "", "step preset name")
	steps := fs.String("steps", "", "custom comma-separated steps")
	symbols := fs.String("symbols", "", "comma-separated symbols, defaults to the configured universe")
	csvPath := fs.String("csv", "", "write all levels to this CSV file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := a.stepsFromFlags(*preset, *steps)
	if err != nil {
		return err
	}
	universe := a.cfg.Symbols
	if *symbols != "" {
		universe = splitSymbols(*symbols)
	}

	sched := scheduler.NewScheduler(ctx, a.collector, nil, a.recorder, a.schedulerOptions(), a.log)
	results := sched.RunScan(ctx, scheduler.TriggerCLI, universe, st)

	fmt.Fprint(out, export.RenderScan(results))
	if *csvPath != "" {
		return writeFile(*csvPath, func(w io.Writer) error { return export.WriteScanCSV(w, results) })
	}
	return nil
}

func (a *app) runServe(ctx context.Context) error {
	var sender scheduler.Sender
	var tn *notifier.TelegramNotifier
	if a.cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy, a.log)
		sender = tn
	} else {
		a.log.Warn().Msg("telegram not configured, scan reports are only recorded")
	}

	sched := scheduler.NewScheduler(ctx, a.collector, sender, a.recorder, a.schedulerOptions(), a.log)
	if err := sched.Register(a.cfg.Scan.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		a.log.Info().Msg("telegram polling started")
	}

	srv := api.New(a.collector, a.recorder, a.cfg.Presets(), a.cfg.Cycle.DefaultPreset,
		time.Duration(a.cfg.API.TimeoutSeconds)*time.Second, a.log)
	srv.Start(a.cfg.API.Port)

	a.log.Info().Msg("PriceCycle is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	a.log.Info().Msg("shutdown signal received, stopping...")
	if err := srv.Stop(context.Background()); err != nil {
		a.log.Error().Err(err).Msg("stop API server")
	}
	return nil
}

func (a *app) schedulerOptions() scheduler.Options {
	loc, _ := a.cfg.Location()
	return scheduler.Options{
		Symbols:       a.cfg.Symbols,
		Presets:       a.cfg.Presets(),
		DefaultPreset: a.cfg.Cycle.DefaultPreset,
		Concurrency:   a.cfg.Scan.Concurrency,
		Location:      loc,
	}
}

func splitSymbols(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

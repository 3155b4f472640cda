package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"PriceCycle/internal/collector"
	"PriceCycle/internal/cycle"
	"PriceCycle/internal/export"
	"PriceCycle/internal/model"
	"PriceCycle/internal/recorder"
)

// Server exposes cycle levels over HTTP.
type Server struct {
	collector     *collector.Collector
	recorder      recorder.Recorder
	presets       cycle.Presets
	defaultPreset string
	timeout       time.Duration
	logger        zerolog.Logger
	router        chi.Router
	server        *http.Server
}

// New creates a Server and builds its routes.
func New(col *collector.Collector, rec recorder.Recorder, presets cycle.Presets, defaultPreset string, timeout time.Duration, logger zerolog.Logger) *Server {
	s := &Server{
		collector:     col,
		recorder:      rec,
		presets:       presets,
		defaultPreset: defaultPreset,
		timeout:       timeout,
		logger:        logger.With().Str("component", "api").Logger(),
	}
	s.setupRouter()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/presets", s.handlePresets)
		r.Get("/levels/{symbol}", s.handleLevels)
		r.Get("/history/{symbol}", s.handleHistory)
	})

	s.router = r
}

// Start listens on port in the background.
func (s *Server) Start(port int) {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  s.timeout,
		WriteTimeout: s.timeout + 5*time.Second,
	}
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("API server error")
		}
	}()
	s.logger.Info().Int("port", port).Msg("API server started")
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"source":    s.collector.Fetcher.Name(),
		"timestamp": time.Now(),
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"default": s.defaultPreset,
		"presets": s.presets,
	})
}

// levelsResponse is the JSON form of a CycleReport. Levels are unrounded.
type levelsResponse struct {
	Symbol     string         `json:"symbol"`
	Reference  float64        `json:"reference"`
	BarDate    string         `json:"bar_date"`
	Settled    bool           `json:"settled"`
	ATR        *float64       `json:"atr,omitempty"`
	ATRPeriod  int            `json:"atr_period,omitempty"`
	Levels     model.LevelSet `json:"levels"`
	ComputedAt time.Time      `json:"computed_at"`
}

func toLevelsResponse(r *model.CycleReport) levelsResponse {
	resp := levelsResponse{
		Symbol:     r.Symbol,
		Reference:  r.Reference,
		BarDate:    export.Date(r.BarUsed.Time),
		Settled:    r.Settled,
		Levels:     r.Levels,
		ComputedAt: r.ComputedAt,
	}
	if r.HasATR() {
		atr := r.ATR
		resp.ATR = &atr
		resp.ATRPeriod = r.ATRPeriod
	}
	return resp
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	q := r.URL.Query()

	var steps []float64
	var err error
	switch {
	case q.Get("steps") != "":
		steps, err = cycle.ParseSteps(q.Get("steps"))
	case q.Get("preset") != "":
		steps, err = s.presets.Steps(q.Get("preset"))
	default:
		steps, err = s.presets.Steps(s.defaultPreset)
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.collector.Analyze(r.Context(), symbol, steps)
	switch {
	case errors.Is(err, cycle.ErrInvalidSteps):
		s.writeError(w, http.StatusBadRequest, err)
		return
	case errors.Is(err, cycle.ErrDataUnavailable):
		s.writeError(w, http.StatusBadGateway, err)
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	if err := s.recorder.RecordLevels(recorder.SnapshotFromReport("", report)); err != nil {
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("record levels")
	}

	if q.Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", symbol+"_price_cycles.csv"))
		if err := export.WriteLevelsCSV(w, report.Levels); err != nil {
			s.logger.Error().Err(err).Msg("write csv")
		}
		return
	}
	s.writeJSON(w, http.StatusOK, toLevelsResponse(report))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("limit must be between 1 and 500"))
			return
		}
		limit = n
	}
	hist, err := s.recorder.History(symbol, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	type entry struct {
		RunID       string    `json:"run_id,omitempty"`
		BarDate     string    `json:"bar_date"`
		Settled     bool      `json:"settled"`
		Reference   float64   `json:"reference"`
		ATR         float64   `json:"atr,omitempty"`
		Steps       []float64 `json:"steps"`
		Resistances []float64 `json:"resistances"`
		Supports    []float64 `json:"supports"`
		ComputedAt  time.Time `json:"computed_at"`
	}
	out := make([]entry, 0, len(hist))
	for _, h := range hist {
		out = append(out, entry{
			RunID: h.RunID, BarDate: export.Date(h.BarTime), Settled: h.Settled,
			Reference: h.Reference, ATR: h.ATR, Steps: h.Steps,
			Resistances: h.Resistances, Supports: h.Supports, ComputedAt: h.ComputedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"history": out,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"PriceCycle/internal/collector"
	"PriceCycle/internal/cycle"
	"PriceCycle/internal/model"
	"PriceCycle/internal/recorder"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func setupTestAPI(t *testing.T) *Server {
	t.Helper()
	f := &collector.MockFetcher{
		WeeklyData: map[string][]model.Bar{
			"INFY": {
				{Time: time.Date(2025, 6, 2, 0, 0, 0, 0, ist), Close: 1000},
				{Time: time.Date(2025, 6, 9, 0, 0, 0, 0, ist), Close: 1100},
			},
		},
		Errors: map[string]error{"DOWN": errors.New("unreachable")},
	}
	col := collector.NewCollector(f, cycle.DefaultSession(), 0, zerolog.Nop())
	// Saturday: the latest bar is settled.
	col.Now = func() time.Time { return time.Date(2025, 6, 14, 9, 0, 0, 0, ist) }

	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "api.db"), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rec.Close() })

	return New(col, rec, cycle.DefaultPresets(), "medium", 5*time.Second, zerolog.Nop())
}

func do(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := do(t, setupTestAPI(t), "/api/v1/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["status"] != "ok" || body["source"] != "mock" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestPresets(t *testing.T) {
	w := do(t, setupTestAPI(t), "/api/v1/presets")
	var body struct {
		Default string            `json:"default"`
		Presets map[string]string `json:"presets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Default != "medium" || body.Presets["large"] != "300,600,900,1200,1500" {
		t.Errorf("unexpected presets: %+v", body)
	}
}

func TestLevels_JSON(t *testing.T) {
	w := do(t, setupTestAPI(t), "/api/v1/levels/infy?steps=50,10")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type %s", ct)
	}
	var body levelsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Symbol != "INFY" || body.Reference != 1100 || !body.Settled || body.BarDate != "2025-06-09" {
		t.Errorf("unexpected body: %+v", body)
	}
	if !reflect.DeepEqual(body.Levels.Resistances, []float64{1150, 1160}) ||
		!reflect.DeepEqual(body.Levels.Supports, []float64{1050, 1040}) {
		t.Errorf("unexpected levels: %+v", body.Levels)
	}
	if body.ATR != nil {
		t.Error("ATR should be omitted when unavailable")
	}
}

func TestLevels_PresetAndCSV(t *testing.T) {
	w := do(t, setupTestAPI(t), "/api/v1/levels/INFY?preset=small&format=csv")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "INFY_price_cycles.csv") {
		t.Errorf("disposition %q", w.Header().Get("Content-Disposition"))
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 6 || lines[0] != "Level,Resistance,Support" || lines[1] != "1,1103.00,1097.00" {
		t.Errorf("unexpected csv:\n%s", w.Body.String())
	}
}

func TestLevels_Errors(t *testing.T) {
	s := setupTestAPI(t)
	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/levels/INFY?steps=abc", http.StatusBadRequest},
		{"/api/v1/levels/INFY?steps=,,", http.StatusBadRequest},
		{"/api/v1/levels/INFY?preset=huge", http.StatusBadRequest},
		{"/api/v1/levels/DOWN", http.StatusBadGateway},
		{"/api/v1/levels/UNKNOWN", http.StatusBadGateway},
		{"/api/v1/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := do(t, s, tt.path)
		if w.Code != tt.status {
			t.Errorf("%s: status %d, want %d (%s)", tt.path, w.Code, tt.status, w.Body.String())
		}
	}
}

func TestHistory(t *testing.T) {
	s := setupTestAPI(t)
	do(t, s, "/api/v1/levels/INFY")
	do(t, s, "/api/v1/levels/INFY?preset=small")

	w := do(t, s, "/api/v1/history/infy?limit=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var body struct {
		Symbol  string `json:"symbol"`
		History []struct {
			Reference   float64   `json:"reference"`
			Resistances []float64 `json:"resistances"`
		} `json:"history"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Symbol != "INFY" || len(body.History) != 1 || body.History[0].Reference != 1100 {
		t.Errorf("unexpected history: %+v", body)
	}

	if w := do(t, s, "/api/v1/history/INFY?limit=0"); w.Code != http.StatusBadRequest {
		t.Errorf("limit=0: status %d", w.Code)
	}
}

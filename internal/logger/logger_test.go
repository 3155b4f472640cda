package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNew_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", false)

	log.Info().Msg("hidden")
	log.Warn().Str("symbol", "INFY").Msg("shown")

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "shown" || entry["symbol"] != "INFY" || entry["level"] != "warn" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNew_BadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "loud", false)
	log.Debug().Msg("debug")
	if buf.Len() != 0 {
		t.Errorf("debug should be filtered at info, got %q", buf.String())
	}
	log.Info().Msg("info")
	if buf.Len() == 0 {
		t.Error("info should be written")
	}
}

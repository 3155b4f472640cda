package main

import (
	"os"
	"path/filepath"
	"testing"
)

func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "levels.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	body := "database:\n  sqlite_path: " + dbPath + "\nlogging:\n  level: error\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", cfgPath)
	for _, k := range []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DATA_BASE_URL", "SQLITE_PATH", "EXCHANGE_TZ", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	return dbPath
}

func TestRun_Usage(t *testing.T) {
	testEnv(t)
	tests := []struct {
		name string
		argv []string
	}{
		{"no command", nil},
		{"unknown command", []string{"bogus"}},
		{"help flag", []string{"levels", "-h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := run(tt.argv); code != 2 {
				t.Errorf("run(%v) = %d, want 2", tt.argv, code)
			}
		})
	}
}

func TestRun_FailedCommandClosesRecorder(t *testing.T) {
	dbPath := testEnv(t)

	if code := run([]string{"levels"}); code != 1 {
		t.Fatalf("run without -symbol = %d, want 1", code)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database not created: %v", err)
	}
	// SQLite removes the WAL file once the last connection is closed.
	if _, err := os.Stat(dbPath + "-wal"); !os.IsNotExist(err) {
		t.Errorf("WAL file still present, recorder was not closed: %v", err)
	}
}

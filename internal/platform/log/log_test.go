package log_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"worktime/internal/platform/log"
)

func TestSetupWritesToRotatingFile(t *testing.T) {
	t.Setenv("APP_ENV", "")
	dir := t.TempDir()
	closer, err := log.Setup(log.Options{Dir: dir, Level: "debug"})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	log.Info(log.Fields{"module": "presence"}, "verdict ready")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one log file, got %d", len(entries))
	}
	raw, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), "verdict ready") {
		t.Fatalf("expected message in log file, got %q", string(raw))
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if _, err := log.Setup(log.Options{Level: "loud"}); err == nil {
		t.Fatalf("expected level parse error")
	}
}

func TestErrorWithTraceIDKeepsRequestID(t *testing.T) {
	if _, err := log.Setup(log.Options{}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	got := log.ErrorWithTraceID(log.Fields{log.RequestIDKey: "req-1"}, "submit failed")
	if got != "req-1" {
		t.Fatalf("expected request id as trace id, got %q", got)
	}
	if generated := log.ErrorWithTraceID(nil, "submit failed"); generated == "" {
		t.Fatalf("expected generated trace id")
	}
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"worktime/internal/platform/config"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Office.Latitude != -6.1421841 || cfg.Office.Longitude != 106.8164501 {
		t.Fatalf("unexpected office %+v", cfg.Office)
	}
	if cfg.Office.RadiusMeters != 200 || cfg.Office.MaxAccuracyMeters != 80 || cfg.Office.MaxFixAgeMillis != 120000 {
		t.Fatalf("unexpected thresholds %+v", cfg.Office)
	}
	if cfg.Geocode.URL != "http://localhost:8000/api/reverse-geocode" {
		t.Fatalf("unexpected geocode url %q", cfg.Geocode.URL)
	}
	if cfg.DBPath != filepath.Join(dir, "worktime.db") {
		t.Fatalf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.Schedule.OvertimeStartHour != 18 {
		t.Fatalf("unexpected overtime hour %d", cfg.Schedule.OvertimeStartHour)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	content := `office:
  latitude: -6.2
  longitude: 106.8
  radius_m: 150
  max_accuracy_m: 50
  max_fix_age_ms: 60000
schedule:
  work_start: "08:00:00"
  late_tolerance_minutes: 15
backend:
  base_url: https://absen.example.com
driver:
  binary: bin/simdevice
  enabled: true
`
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WORKTIME_OFFICE_RADIUS", "300")
	t.Setenv("WORKTIME_CSRF_TOKEN", "tok")

	cfg, err := config.Load(dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Office.RadiusMeters != 300 {
		t.Fatalf("expected env radius override, got %v", cfg.Office.RadiusMeters)
	}
	if cfg.Office.MaxAccuracyMeters != 50 || cfg.Schedule.LateToleranceMinutes != 15 {
		t.Fatalf("expected file values, got %+v %+v", cfg.Office, cfg.Schedule)
	}
	if cfg.Backend.CSRFToken != "tok" {
		t.Fatalf("expected csrf token from env")
	}
	if cfg.Geocode.URL != "https://absen.example.com/api/reverse-geocode" {
		t.Fatalf("unexpected geocode url %q", cfg.Geocode.URL)
	}
	if cfg.Driver.Binary != filepath.Join(dir, "bin", "simdevice") {
		t.Fatalf("expected driver binary resolved against data dir, got %q", cfg.Driver.Binary)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte("office:\n  latitude: 120\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(dir, ""); err == nil {
		t.Fatalf("expected validation error for latitude")
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if _, err := config.Load(dir, filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for explicit missing file")
	}
	if _, err := config.Load("", ""); err == nil {
		t.Fatalf("expected error for empty data dir")
	}
}

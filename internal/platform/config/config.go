package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const FileName = "worktime.yaml"

type Config struct {
	DataDir  string `yaml:"-" validate:"required"`
	DBPath   string `yaml:"-" validate:"required"`
	PhotoDir string `yaml:"-"`
	LogDir   string `yaml:"-"`
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`

	Office   Office   `yaml:"office"`
	Schedule Schedule `yaml:"schedule"`
	Backend  Backend  `yaml:"backend"`
	Geocode  Geocode  `yaml:"geocode"`
	Driver   Driver   `yaml:"driver"`
	Shell    Shell    `yaml:"shell"`
}

type Office struct {
	Latitude          float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude         float64 `yaml:"longitude" validate:"gte=-180,lte=180"`
	RadiusMeters      float64 `yaml:"radius_m" validate:"gt=0"`
	MaxAccuracyMeters float64 `yaml:"max_accuracy_m" validate:"gt=0"`
	MaxFixAgeMillis   int64   `yaml:"max_fix_age_ms" validate:"gt=0"`
}

type Schedule struct {
	WorkStart            string `yaml:"work_start" validate:"omitempty,datetime=15:04:05"`
	LateToleranceMinutes int    `yaml:"late_tolerance_minutes" validate:"gte=0"`
	OvertimeStartHour    int    `yaml:"overtime_start_hour" validate:"gte=0,lte=23"`
}

type Backend struct {
	BaseURL        string `yaml:"base_url" validate:"required,url"`
	CSRFToken      string `yaml:"csrf_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gt=0"`
}

type Geocode struct {
	URL           string  `yaml:"url" validate:"required,url"`
	UserAgent     string  `yaml:"user_agent"`
	RatePerSecond float64 `yaml:"rate_per_second" validate:"gt=0"`
}

type Driver struct {
	Name         string   `yaml:"name"`
	Version      string   `yaml:"version"`
	Binary       string   `yaml:"binary"`
	SHA256       string   `yaml:"sha256"`
	Enabled      bool     `yaml:"enabled"`
	Capabilities []string `yaml:"capabilities" validate:"dive,oneof=location camera"`
}

type Shell struct {
	Origin string `yaml:"origin" validate:"omitempty,url"`
	Listen string `yaml:"listen" validate:"required"`
}

func Defaults(dataDir string) Config {
	return Config{
		DataDir:  dataDir,
		DBPath:   filepath.Join(dataDir, "worktime.db"),
		PhotoDir: filepath.Join(dataDir, "photos"),
		LogDir:   filepath.Join(dataDir, "logs"),
		LogLevel: "info",
		Office: Office{
			Latitude:          -6.1421841,
			Longitude:         106.8164501,
			RadiusMeters:      200,
			MaxAccuracyMeters: 80,
			MaxFixAgeMillis:   120000,
		},
		Schedule: Schedule{OvertimeStartHour: 18},
		Backend: Backend{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 15,
		},
		Geocode: Geocode{
			UserAgent:     "worktime/1.0",
			RatePerSecond: 1,
		},
		Driver: Driver{
			Name:         "simdevice",
			Version:      "1.0.0",
			Capabilities: []string{"location", "camera"},
		},
		Shell: Shell{Listen: "127.0.0.1:8787"},
	}
}

// Load layers defaults, the YAML file, .env files and WORKTIME_* variables, in that order.
// An empty file path means <dataDir>/worktime.yaml when present.
func Load(dataDir, file string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Defaults(dataDir)

	explicit := file != ""
	if !explicit {
		file = filepath.Join(dataDir, FileName)
	}
	raw, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", file, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	for _, envFile := range []string{filepath.Join(dataDir, ".env"), ".env"} {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Geocode.URL == "" {
		cfg.Geocode.URL = strings.TrimRight(cfg.Backend.BaseURL, "/") + "/api/reverse-geocode"
	}
	if cfg.Shell.Origin == "" {
		cfg.Shell.Origin = cfg.Backend.BaseURL
	}
	if cfg.Driver.Binary != "" && !filepath.IsAbs(cfg.Driver.Binary) {
		cfg.Driver.Binary = filepath.Join(dataDir, cfg.Driver.Binary)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	floats := map[string]*float64{
		"WORKTIME_OFFICE_LAT":    &cfg.Office.Latitude,
		"WORKTIME_OFFICE_LNG":    &cfg.Office.Longitude,
		"WORKTIME_OFFICE_RADIUS": &cfg.Office.RadiusMeters,
		"WORKTIME_MAX_ACCURACY":  &cfg.Office.MaxAccuracyMeters,
		"WORKTIME_GEOCODE_RATE":  &cfg.Geocode.RatePerSecond,
	}
	for key, dst := range floats {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = v
	}

	ints := map[string]*int{
		"WORKTIME_LATE_TOLERANCE":  &cfg.Schedule.LateToleranceMinutes,
		"WORKTIME_OVERTIME_HOUR":   &cfg.Schedule.OvertimeStartHour,
		"WORKTIME_BACKEND_TIMEOUT": &cfg.Backend.TimeoutSeconds,
	}
	for key, dst := range ints {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = v
	}

	strs := map[string]*string{
		"WORKTIME_LOG_LEVEL":     &cfg.LogLevel,
		"WORKTIME_WORK_START":    &cfg.Schedule.WorkStart,
		"WORKTIME_BACKEND_URL":   &cfg.Backend.BaseURL,
		"WORKTIME_CSRF_TOKEN":    &cfg.Backend.CSRFToken,
		"WORKTIME_GEOCODE_URL":   &cfg.Geocode.URL,
		"WORKTIME_DRIVER_BINARY": &cfg.Driver.Binary,
		"WORKTIME_DRIVER_SHA256": &cfg.Driver.SHA256,
		"WORKTIME_SHELL_ORIGIN":  &cfg.Shell.Origin,
		"WORKTIME_SHELL_LISTEN":  &cfg.Shell.Listen,
	}
	for key, dst := range strs {
		if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
			*dst = raw
		}
	}

	if raw := strings.TrimSpace(os.Getenv("WORKTIME_MAX_FIX_AGE_MS")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("parse WORKTIME_MAX_FIX_AGE_MS: %w", err)
		}
		cfg.Office.MaxFixAgeMillis = v
	}
	if raw := strings.TrimSpace(os.Getenv("WORKTIME_DRIVER_ENABLED")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse WORKTIME_DRIVER_ENABLED: %w", err)
		}
		cfg.Driver.Enabled = v
	}
	return nil
}

// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/alexanderramin/taskport/internal/importer"
	"github.com/alexanderramin/taskport/internal/report"
	"github.com/alexanderramin/taskport/internal/workday"
)

// DefaultEnvFiles are read, when present, before the environment is parsed.
var DefaultEnvFiles = []string{".env", ".env.local"}

type Config struct {
	DBPath               string   `env:"TASKPORT_DB"`
	ReportDir            string   `env:"TASKPORT_REPORT_DIR" envDefault:"error-reports"`
	MaxUploadBytes       int64    `env:"TASKPORT_MAX_UPLOAD_BYTES" envDefault:"10485760"`
	WorkingDayLabels     []string `env:"TASKPORT_WORKING_DAYS" envSeparator:"," envDefault:"MON,TUE,WED,THU,FRI"`
	HolidayLabels        []string `env:"TASKPORT_HOLIDAYS" envSeparator:","`
	LogUseCases          bool     `env:"TASKPORT_LOG_USE_CASES" envDefault:"false"`
	CheckPersistedCycles bool     `env:"TASKPORT_CYCLE_CHECK_PERSISTED" envDefault:"true"`

	WorkingDays []time.Weekday `env:"-"`
	Holidays    []time.Time    `env:"-"`
}

// LoadEnv loads whichever of files exist and reports how many were read.
func LoadEnv(files []string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if info, err := os.Stat(f); err == nil && !info.IsDir() {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return 0, fmt.Errorf("loading env files: %w", err)
	}
	return len(existing), nil
}

// Load reads DefaultEnvFiles and then the process environment.
func Load() (*Config, error) {
	if _, err := LoadEnv(DefaultEnvFiles); err != nil {
		return nil, err
	}
	return Parse()
}

// Parse builds a Config from the process environment alone.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolve() error {
	if c.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		c.DBPath = filepath.Join(home, ".taskport", "taskport.db")
	}
	if c.ReportDir == "" {
		c.ReportDir = report.DefaultDir
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = importer.DefaultMaxBytes
	}

	days, err := workday.ParseWeekdays(trimAll(c.WorkingDayLabels))
	if err != nil {
		return fmt.Errorf("TASKPORT_WORKING_DAYS: %w", err)
	}
	if len(days) == 0 {
		return fmt.Errorf("TASKPORT_WORKING_DAYS: %w", workday.ErrEmptyWorkingDays)
	}
	c.WorkingDays = days

	c.Holidays = c.Holidays[:0]
	for _, label := range trimAll(c.HolidayLabels) {
		d, err := time.Parse("2006-01-02", label)
		if err != nil {
			return fmt.Errorf("TASKPORT_HOLIDAYS: invalid date %q (expected yyyy-MM-dd)", label)
		}
		c.Holidays = append(c.Holidays, d)
	}
	return nil
}

// Calendar builds a working-day calculator from the configured days.
func (c *Config) Calendar() (*workday.Calculator, error) {
	cal := workday.NewCalculator()
	if err := cal.SetWorkingDays(c.WorkingDays); err != nil {
		return nil, err
	}
	cal.SetHolidays(c.Holidays)
	return cal, nil
}

func trimAll(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

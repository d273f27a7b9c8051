package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"TASKPORT_DB", "TASKPORT_REPORT_DIR", "TASKPORT_MAX_UPLOAD_BYTES",
	"TASKPORT_WORKING_DAYS", "TASKPORT_HOLIDAYS", "TASKPORT_LOG_USE_CASES",
	"TASKPORT_CYCLE_CHECK_PERSISTED",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".taskport", "taskport.db"), cfg.DBPath)
	assert.Equal(t, "error-reports", cfg.ReportDir)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, cfg.WorkingDays)
	assert.Empty(t, cfg.Holidays)
	assert.False(t, cfg.LogUseCases)
	assert.True(t, cfg.CheckPersistedCycles)
}

func TestParse_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKPORT_DB", "/tmp/tp.db")
	t.Setenv("TASKPORT_REPORT_DIR", "/tmp/reports")
	t.Setenv("TASKPORT_MAX_UPLOAD_BYTES", "2048")
	t.Setenv("TASKPORT_WORKING_DAYS", "sun, mon,Tuesday")
	t.Setenv("TASKPORT_HOLIDAYS", "2025-12-25,2026-01-01")
	t.Setenv("TASKPORT_LOG_USE_CASES", "true")
	t.Setenv("TASKPORT_CYCLE_CHECK_PERSISTED", "false")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/tp.db", cfg.DBPath)
	assert.Equal(t, "/tmp/reports", cfg.ReportDir)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
	assert.Equal(t, []time.Weekday{time.Sunday, time.Monday, time.Tuesday}, cfg.WorkingDays)
	assert.Equal(t, []time.Time{
		time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}, cfg.Holidays)
	assert.True(t, cfg.LogUseCases)
	assert.False(t, cfg.CheckPersistedCycles)

	cal, err := cfg.Calendar()
	require.NoError(t, err)
	assert.True(t, cal.IsWorkingDay(time.Date(2025, 12, 7, 0, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsWorkingDay(time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)))
}

func TestParse_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"weekday", "TASKPORT_WORKING_DAYS", "MON,FUNDAY"},
		{"holiday", "TASKPORT_HOLIDAYS", "25/12/2025"},
		{"upload size", "TASKPORT_MAX_UPLOAD_BYTES", "lots"},
		{"bool", "TASKPORT_LOG_USE_CASES", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TASKPORT_DB", "/tmp/tp.db")
			t.Setenv(tt.key, tt.val)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TASKPORT_REPORT_DIR=/var/reports\n"), 0o644))

	n, err := LoadEnv([]string{envFile, filepath.Join(dir, ".env.local")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	t.Cleanup(func() { os.Unsetenv("TASKPORT_REPORT_DIR") })

	t.Setenv("TASKPORT_DB", "/tmp/tp.db")
	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "/var/reports", cfg.ReportDir)
}

func TestLoadEnv_NoFiles(t *testing.T) {
	n, err := LoadEnv([]string{filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)
	assert.Zero(t, n)
}

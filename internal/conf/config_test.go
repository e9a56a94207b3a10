package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8090", settings.Listen)
	assert.Equal(t, "info", settings.LogLevel)
	assert.Equal(t, "sqlite", settings.Database.Driver)
	assert.Equal(t, 48*time.Hour, settings.Alerting.DueSoonWindow.Std())
	assert.Equal(t, 24*time.Hour, settings.Alerting.MaintenanceUrgentWindow.Std())
	assert.Equal(t, 7*24*time.Hour, settings.Alerting.MaintenanceReminderWindow.Std())
	assert.Equal(t, 20.0, settings.Alerting.LowFuelThresholdPct)
	assert.Equal(t, 2, settings.Fetch.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, settings.Fetch.BackoffBase.Std())
	assert.Equal(t, time.Minute, settings.RefreshInterval())
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: "0.0.0.0:9000"
log_level: debug
database:
  driver: mysql
  dsn: "user:pass@tcp(localhost:3306)/rentalops"
alerting:
  due_soon_window: 24h
  low_fuel_threshold_pct: 15
fetch:
  cache_ttl: 10s
  max_retries: 4
`), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", settings.Listen)
	assert.Equal(t, "mysql", settings.Database.Driver)
	assert.Equal(t, 24*time.Hour, settings.Alerting.DueSoonWindow.Std())
	assert.Equal(t, 15.0, settings.Alerting.LowFuelThresholdPct)
	assert.Equal(t, 10*time.Second, settings.Fetch.CacheTTL.Std())
	assert.Equal(t, 4, settings.Fetch.MaxRetries)

	// Unset keys fall back to defaults.
	assert.Equal(t, 24*time.Hour, settings.Alerting.MaintenanceUrgentWindow.Std())
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("RENTALOPS_ALERTING_DUE_SOON_WINDOW", "12h")
	t.Setenv("RENTALOPS_FETCH_MAX_RETRIES", "5")

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 12*time.Hour, settings.Alerting.DueSoonWindow.Std())
	assert.Equal(t, 5, settings.Fetch.MaxRetries)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Settings {
		s, err := Load("")
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"unknown driver", func(s *Settings) { s.Database.Driver = "postgres" }, "unknown database driver"},
		{"zero due soon window", func(s *Settings) { s.Alerting.DueSoonWindow = 0 }, "due_soon_window"},
		{"reminder shorter than urgent", func(s *Settings) { s.Alerting.MaintenanceReminderWindow = Duration(time.Hour) }, "reminder"},
		{"fuel threshold over 100", func(s *Settings) { s.Alerting.LowFuelThresholdPct = 120 }, "low_fuel_threshold_pct"},
		{"negative retries", func(s *Settings) { s.Fetch.MaxRetries = -1 }, "max_retries"},
		{"cap below base", func(s *Settings) { s.Fetch.BackoffCap = Duration(time.Millisecond) }, "backoff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

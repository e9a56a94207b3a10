// Package conf loads and validates application settings.
package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseSettings selects the backing database.
type DatabaseSettings struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "mysql"
	DSN    string `mapstructure:"dsn"`
}

// AlertingSettings holds the threshold windows the aggregation engine
// classifies against. Operational policy lives here, not in adapter code.
type AlertingSettings struct {
	DueSoonWindow             Duration `mapstructure:"due_soon_window"`
	MaintenanceUrgentWindow   Duration `mapstructure:"maintenance_urgent_window"`
	MaintenanceReminderWindow Duration `mapstructure:"maintenance_reminder_window"`
	LowFuelThresholdPct       float64  `mapstructure:"low_fuel_threshold_pct"`
	ApprovalEscalationWindow  Duration `mapstructure:"approval_escalation_window"`
	RefreshInterval           Duration `mapstructure:"refresh_interval"`
	AggregateTimeout          Duration `mapstructure:"aggregate_timeout"`
}

// FetchSettings tunes the resilient accessor shared by all adapters and
// the pricing service.
type FetchSettings struct {
	CacheTTL    Duration `mapstructure:"cache_ttl"`
	Timeout     Duration `mapstructure:"timeout"`
	MaxRetries  int      `mapstructure:"max_retries"`
	BackoffBase Duration `mapstructure:"backoff_base"`
	BackoffCap  Duration `mapstructure:"backoff_cap"`
}

// Settings is the root configuration.
type Settings struct {
	Listen   string           `mapstructure:"listen"`
	LogLevel string           `mapstructure:"log_level"`
	Database DatabaseSettings `mapstructure:"database"`
	Alerting AlertingSettings `mapstructure:"alerting"`
	Fetch    FetchSettings    `mapstructure:"fetch"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "127.0.0.1:8090")
	v.SetDefault("log_level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "rentalops.db")
	v.SetDefault("alerting.due_soon_window", "48h")
	v.SetDefault("alerting.maintenance_urgent_window", "24h")
	v.SetDefault("alerting.maintenance_reminder_window", "168h")
	v.SetDefault("alerting.low_fuel_threshold_pct", 20.0)
	v.SetDefault("alerting.approval_escalation_window", "24h")
	v.SetDefault("alerting.refresh_interval", "1m")
	v.SetDefault("alerting.aggregate_timeout", "10s")
	v.SetDefault("fetch.cache_ttl", "30s")
	v.SetDefault("fetch.timeout", "5s")
	v.SetDefault("fetch.max_retries", 2)
	v.SetDefault("fetch.backoff_base", "200ms")
	v.SetDefault("fetch.backoff_cap", "2s")
}

// Load reads settings from the given config file (optional), environment
// variables prefixed with RENTALOPS_, and built-in defaults, in that
// order of precedence.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RENTALOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings, viper.DecodeHook(DurationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate rejects settings the alerting core cannot operate with.
// Called at startup so misconfiguration fails fast instead of surfacing
// as odd classification behavior later.
func (s *Settings) Validate() error {
	var errs []error

	switch s.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", s.Database.Driver))
	}
	if s.Alerting.DueSoonWindow <= 0 {
		errs = append(errs, errors.New("alerting.due_soon_window must be positive"))
	}
	if s.Alerting.MaintenanceUrgentWindow <= 0 {
		errs = append(errs, errors.New("alerting.maintenance_urgent_window must be positive"))
	}
	if s.Alerting.MaintenanceReminderWindow < s.Alerting.MaintenanceUrgentWindow {
		errs = append(errs, errors.New("alerting.maintenance_reminder_window must not be shorter than the urgent window"))
	}
	if s.Alerting.LowFuelThresholdPct <= 0 || s.Alerting.LowFuelThresholdPct > 100 {
		errs = append(errs, fmt.Errorf("alerting.low_fuel_threshold_pct must be in (0, 100], got %v", s.Alerting.LowFuelThresholdPct))
	}
	if s.Alerting.AggregateTimeout <= 0 {
		errs = append(errs, errors.New("alerting.aggregate_timeout must be positive"))
	}
	if s.Fetch.MaxRetries < 0 {
		errs = append(errs, errors.New("fetch.max_retries must not be negative"))
	}
	if s.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch.timeout must be positive"))
	}
	if s.Fetch.BackoffBase <= 0 || s.Fetch.BackoffCap < s.Fetch.BackoffBase {
		errs = append(errs, errors.New("fetch backoff must satisfy 0 < backoff_base <= backoff_cap"))
	}

	return errors.Join(errs...)
}

// RefreshInterval returns the auto-refresh period, or zero when periodic
// refresh is disabled.
func (s *Settings) RefreshInterval() time.Duration {
	return s.Alerting.RefreshInterval.Std()
}

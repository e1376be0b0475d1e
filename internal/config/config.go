package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Loans     LoanConfig      `yaml:"loans"`
	Rates     RateConfig      `yaml:"rates"`
	Damage    DamageConfig    `yaml:"damage"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// LoanConfig contains loan policy settings
type LoanConfig struct {
	MaxActivePerClient int32 `yaml:"max_active_per_client"`
	FineDueDays        int   `yaml:"fine_due_days"`
}

// RateFallbackMode decides what happens when no active rate window covers
// the requested date.
type RateFallbackMode string

const (
	// RateFallbackStrict surfaces a validation error; nothing that affects
	// money is silently defaulted.
	RateFallbackStrict RateFallbackMode = "strict"
	// RateFallbackDefault resolves to the configured default amount for the
	// rate type and logs a warning.
	RateFallbackDefault RateFallbackMode = "default"
)

// RateConfig contains rate resolution policy settings
type RateConfig struct {
	FallbackMode         RateFallbackMode `yaml:"fallback_mode"`
	DefaultRentalDaily   decimal.Decimal  `yaml:"default_rental_daily"`
	DefaultLateFeeDaily  decimal.Decimal  `yaml:"default_late_fee_daily"`
	DefaultRepairRatePct decimal.Decimal  `yaml:"default_repair_rate_pct"`
}

// DamageConfig contains damage escalation thresholds in days
type DamageConfig struct {
	UrgentAfterDays   int `yaml:"urgent_after_days"`
	StagnantAfterDays int `yaml:"stagnant_after_days"`
	RepairDueDays     int `yaml:"repair_due_days"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	RefreshClientRestrictions string `yaml:"refresh_client_restrictions"`
	FlagUrgentDamages         string `yaml:"flag_urgent_damages"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Rates
	if val := os.Getenv("RATE_FALLBACK_MODE"); val != "" {
		c.Rates.FallbackMode = RateFallbackMode(val)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration and fills policy defaults
func (c *Config) Validate() error {
	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Loan policy defaults
	if c.Loans.MaxActivePerClient == 0 {
		c.Loans.MaxActivePerClient = 5
	}
	if c.Loans.FineDueDays == 0 {
		c.Loans.FineDueDays = 30
	}

	// Rate policy
	switch c.Rates.FallbackMode {
	case "":
		c.Rates.FallbackMode = RateFallbackStrict
	case RateFallbackStrict, RateFallbackDefault:
	default:
		return fmt.Errorf("invalid rate fallback mode: %s", c.Rates.FallbackMode)
	}
	if c.Rates.FallbackMode == RateFallbackDefault {
		if c.Rates.DefaultRentalDaily.IsZero() ||
			c.Rates.DefaultLateFeeDaily.IsZero() ||
			c.Rates.DefaultRepairRatePct.IsZero() {
			return fmt.Errorf("rate fallback mode 'default' requires all default amounts to be configured")
		}
	}

	// Damage thresholds
	if c.Damage.UrgentAfterDays == 0 {
		c.Damage.UrgentAfterDays = 3
	}
	if c.Damage.StagnantAfterDays == 0 {
		c.Damage.StagnantAfterDays = 7
	}
	if c.Damage.RepairDueDays == 0 {
		c.Damage.RepairDueDays = 14
	}

	// Scheduler defaults
	if c.Scheduler.RefreshClientRestrictions == "" {
		c.Scheduler.RefreshClientRestrictions = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.FlagUrgentDamages == "" {
		c.Scheduler.FlagUrgentDamages = "0 0 3 * * *" // 3 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

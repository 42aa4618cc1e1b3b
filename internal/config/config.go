// Package config provides configuration management for the PMU Edge application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	PMU        PMUConfig        `mapstructure:"pmu" validate:"required"`
	Prediction PredictionConfig `mapstructure:"prediction" validate:"required"`
	Betting    BettingConfig    `mapstructure:"betting" validate:"required"`
	Ingestion  IngestionConfig  `mapstructure:"ingestion" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// PMUConfig represents the upstream PMU API configuration
type PMUConfig struct {
	BaseURL           string  `mapstructure:"base_url" validate:"required,url"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts     int     `mapstructure:"retry_attempts" validate:"required,gte=0"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
	RequestBurst      int     `mapstructure:"request_burst" validate:"required,gt=0"`
	UserAgent         string  `mapstructure:"user_agent"`
}

// PredictionConfig represents the prediction pipeline configuration
type PredictionConfig struct {
	CacheTTLMinutes  int `mapstructure:"cache_ttl_minutes" validate:"required,gt=0"`
	CombinationLimit int `mapstructure:"combination_limit" validate:"required,gt=0"`
	MinFieldSize     int `mapstructure:"min_field_size" validate:"required,gte=3"`
}

// BettingConfig represents the staking policy configuration
type BettingConfig struct {
	Bankroll          float64 `mapstructure:"bankroll" validate:"required,gt=0"`
	KellyFraction     float64 `mapstructure:"kelly_fraction" validate:"required,gt=0,lte=1"`
	MinStake          float64 `mapstructure:"min_stake" validate:"required,gt=0"`
	CombinationBudget float64 `mapstructure:"combination_budget" validate:"required,gte=0"`
	MaxDailyStake     float64 `mapstructure:"max_daily_stake" validate:"required,gt=0"`
}

// IngestionConfig represents data ingestion scheduling configuration
type IngestionConfig struct {
	ProgramCron   string `mapstructure:"program_cron" validate:"required"`
	ResultsCron   string `mapstructure:"results_cron" validate:"required"`
	ReportCron    string `mapstructure:"report_cron" validate:"required"`
	BatchSize     int    `mapstructure:"batch_size" validate:"required,gt=0"`
	HistoryMonths int    `mapstructure:"history_months" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// PMUTimeout returns the upstream request timeout as a duration
func (c *Config) PMUTimeout() time.Duration {
	return time.Duration(c.PMU.TimeoutSeconds) * time.Second
}

// PredictionCacheTTL returns the prediction cache lifetime as a duration
func (c *Config) PredictionCacheTTL() time.Duration {
	return time.Duration(c.Prediction.CacheTTLMinutes) * time.Minute
}

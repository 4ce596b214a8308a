package config

import "time"

// Config holds all application configuration
type Config struct {
	API       APIConfig       `mapstructure:"api" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	WordBook  WordBookConfig  `mapstructure:"wordbook" validate:"required"`
	Study     StudyConfig     `mapstructure:"study" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Telegram  TelegramConfig  `mapstructure:"telegram" validate:"required"`
	Log       LogConfig       `mapstructure:"log" validate:"required"`
}

// APIConfig describes the vocabulary service the client talks to
type APIConfig struct {
	URL            string        `mapstructure:"url" validate:"required,url"`
	Token          string        `mapstructure:"token"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst" validate:"gt=0"`
}

// DatabaseConfig selects the store for per-account client state
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite3 postgres pgx"`
	DSN    string `mapstructure:"dsn" validate:"required"`
}

// WordBookConfig selects where word-books come from
type WordBookConfig struct {
	Source  string `mapstructure:"source" validate:"required,oneof=remote file"`
	Dir     string `mapstructure:"dir" validate:"required_if=Source file"`
	Default string `mapstructure:"default" validate:"required"`
}

type StudyConfig struct {
	DailyCount int `mapstructure:"daily_count" validate:"gt=0"`
}

type SchedulerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	RolloverAt       string        `mapstructure:"rollover_at" validate:"omitempty,datetime=15:04"`
	FavoritesRefresh time.Duration `mapstructure:"favorites_refresh" validate:"gte=0"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:            "http://localhost:8000",
			Timeout:        10 * time.Second,
			RateLimitRPS:   5,
			RateLimitBurst: 5,
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "data/wordcards.db",
		},
		WordBook: WordBookConfig{
			Source:  "remote",
			Default: "default",
		},
		Study: StudyConfig{
			DailyCount: 5,
		},
		Scheduler: SchedulerConfig{
			Enabled:          true,
			RolloverAt:       "00:00",
			FavoritesRefresh: 30 * time.Minute,
		},
		Log: LogConfig{
			Level:       "info",
			Development: true,
		},
	}
}

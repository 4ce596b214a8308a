package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "WORDCARDS"

// Load reads configuration from defaults, an optional wordcards.yaml found in
// configPaths (the working directory when none are given) and WORDCARDS_*
// environment variables, in increasing order of precedence.
func Load(configPaths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("wordcards")
	v.SetConfigType("yaml")
	if len(configPaths) == 0 {
		configPaths = []string{"."}
	}
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the bot token keeps its conventional name as well
	if err := v.BindEnv("telegram.token", envPrefix+"_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind telegram token: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("api.url", d.API.URL)
	v.SetDefault("api.token", d.API.Token)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.rate_limit_rps", d.API.RateLimitRPS)
	v.SetDefault("api.rate_limit_burst", d.API.RateLimitBurst)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)

	v.SetDefault("wordbook.source", d.WordBook.Source)
	v.SetDefault("wordbook.dir", d.WordBook.Dir)
	v.SetDefault("wordbook.default", d.WordBook.Default)

	v.SetDefault("study.daily_count", d.Study.DailyCount)

	v.SetDefault("scheduler.enabled", d.Scheduler.Enabled)
	v.SetDefault("scheduler.rollover_at", d.Scheduler.RolloverAt)
	v.SetDefault("scheduler.favorites_refresh", d.Scheduler.FavoritesRefresh)

	v.SetDefault("telegram.token", d.Telegram.Token)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
}

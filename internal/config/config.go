package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Rules   RulesConfig   `mapstructure:"rules"`
	Toggles TogglesConfig `mapstructure:"toggles"`
	Session SessionConfig `mapstructure:"session"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	Cron    CronConfig    `mapstructure:"cron"`
}

type AppConfig struct {
	Env           string `mapstructure:"env"`
	DefaultSymbol string `mapstructure:"default_symbol"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	// Empty DSN runs the service on the in-memory store (state does not
	// survive restarts; bootstrap has no durable history to replay).
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	OpTimeout       time.Duration `mapstructure:"op_timeout"`
	Timezone        string        `mapstructure:"timezone"`
}

type RulesConfig struct {
	Path string `mapstructure:"path"`
}

type TogglesConfig struct {
	// Tag suffixes seeded as defaults for each base (C/CALL/Call/P/PUT/Put).
	TagSuffixes []string `mapstructure:"tag_suffixes"`
}

type SessionConfig struct {
	Timezone  string `mapstructure:"timezone"`
	OpenHour  int    `mapstructure:"open_hour"`
	CloseHour int    `mapstructure:"close_hour"`
}

type WebhookConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	ScalpURL string        `mapstructure:"scalp_url"`
}

type CronConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DailySummary string `mapstructure:"daily_summary"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.default_symbol", "SPY")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 2)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.op_timeout", "5s")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("rules.path", "confluence_rules.json")
	v.SetDefault("toggles.tag_suffixes", []string{"1", "5", "15", "30", "1H", "2H", "4H", "1D"})
	v.SetDefault("session.timezone", "America/Los_Angeles")
	v.SetDefault("session.open_hour", 6)
	v.SetDefault("session.close_hour", 13)
	v.SetDefault("webhook.timeout", "10s")
	v.SetDefault("webhook.scalp_url", "")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.daily_summary", "0 0 21 * * MON-FRI")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

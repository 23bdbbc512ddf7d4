// Package config loads service configuration from an optional YAML file and
// the environment, layered over per-service defaults.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment EnvironmentConfig
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Cache       CacheConfig
	Events      EventsConfig
	Services    ServicesConfig
}

type EnvironmentConfig struct {
	Current  string
	LogLevel string `mapstructure:"loglevel"`
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration `mapstructure:"shutdowntimeout"`
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int `mapstructure:"maxopenconns"`
	MaxIdleConns int `mapstructure:"maxidleconns"`
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CacheConfig struct {
	UserTTL   time.Duration `mapstructure:"userttl"`
	RecentTTL time.Duration `mapstructure:"recentttl"`
}

type EventsConfig struct {
	StreamMaxLen int64 `mapstructure:"streammaxlen"`
	Consumer     string
}

// ServicesConfig holds upstream addresses; only the gateway reads it.
type ServicesConfig struct {
	UserURL    string `mapstructure:"userurl"`
	MessageURL string `mapstructure:"messageurl"`
}

// Defaults are the per-service values that differ between binaries.
type Defaults struct {
	Port        string
	DatabaseURL string
}

// envKeys maps the flat environment variable names operators use onto the
// nested config keys.
var envKeys = map[string]string{
	"environment.current":    "ENVIRONMENT",
	"environment.loglevel":   "LOG_LEVEL",
	"server.port":            "PORT",
	"server.shutdowntimeout": "SHUTDOWN_TIMEOUT",
	"database.url":           "DATABASE_URL",
	"database.maxopenconns":  "DATABASE_MAX_OPEN_CONNS",
	"database.maxidleconns":  "DATABASE_MAX_IDLE_CONNS",
	"redis.addr":             "REDIS_ADDR",
	"redis.password":         "REDIS_PASSWORD",
	"redis.db":               "REDIS_DB",
	"cache.userttl":          "CACHE_USER_TTL",
	"cache.recentttl":        "CACHE_RECENT_TTL",
	"events.streammaxlen":    "EVENTS_STREAM_MAX_LEN",
	"events.consumer":        "EVENTS_CONSUMER",
	"services.userurl":       "USER_SERVICE_URL",
	"services.messageurl":    "MESSAGE_SERVICE_URL",
}

// Load reads <service>.yaml from ./config or the working directory if
// present, then applies environment overrides.
func Load(service string, defaults Defaults) (*Config, error) {
	v := viper.New()
	v.SetConfigName(service)
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v, service, defaults)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Services.UserURL = strings.TrimSuffix(cfg.Services.UserURL, "/")
	cfg.Services.MessageURL = strings.TrimSuffix(cfg.Services.MessageURL, "/")
	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string, d Defaults) {
	v.SetDefault("environment.current", "development")
	v.SetDefault("environment.loglevel", "info")
	v.SetDefault("server.port", d.Port)
	v.SetDefault("server.shutdowntimeout", 10*time.Second)
	v.SetDefault("database.url", d.DatabaseURL)
	v.SetDefault("database.maxopenconns", 20)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.userttl", time.Hour)
	v.SetDefault("cache.recentttl", 5*time.Second)
	v.SetDefault("events.streammaxlen", 10000)
	v.SetDefault("events.consumer", service+"-1")
	v.SetDefault("services.userurl", "http://localhost:8082")
	v.SetDefault("services.messageurl", "http://localhost:8083")
}

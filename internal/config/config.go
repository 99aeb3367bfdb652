package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Cache     CacheConfig     `koanf:"cache"`
	Auth      AuthConfig      `koanf:"auth"`
	Weather   WeatherConfig   `koanf:"weather"`
	Notify    NotifyConfig    `koanf:"notify"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Logging   LoggingConfig   `koanf:"logging"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type ServerConfig struct {
	Port           string `koanf:"port"`
	Environment    string `koanf:"environment"`
	AppURL         string `koanf:"app_url"`
	AllowedOrigins string `koanf:"allowed_origins"`
	CookieDomain   string `koanf:"cookie_domain"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver"` // postgres, mysql, sqlite
	URL    string `koanf:"url"`
}

type RedisConfig struct {
	URL string `koanf:"url"`
}

// CacheConfig holds the TTL buckets in seconds.
type CacheConfig struct {
	ShortTTL  int `koanf:"short_ttl"`
	MediumTTL int `koanf:"medium_ttl"`
	LongTTL   int `koanf:"long_ttl"`
}

type AuthConfig struct {
	JWTSecret    string `koanf:"jwt_secret"`
	JWTExpiresIn string `koanf:"jwt_expires_in"`
}

type WeatherConfig struct {
	APIURL  string        `koanf:"api_url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

type NotifyConfig struct {
	DiscordWebhookURL string `koanf:"discord_webhook_url"`
	SlackWebhookURL   string `koanf:"slack_webhook_url"`
}

type SchedulerConfig struct {
	Enabled             bool   `koanf:"enabled"`
	IngestCities        string `koanf:"ingest_cities"`
	IngestSchedule      string `koanf:"ingest_schedule"`
	AlertExpirySchedule string `koanf:"alert_expiry_schedule"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type RateLimitConfig struct {
	AuthRequestsPerSecond float64 `koanf:"auth_rps"`
	AuthBurst             int     `koanf:"auth_burst"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "3000",
			Environment: "development",
			AppURL:      "http://localhost:3000",
		},
		Database: DatabaseConfig{
			Driver: "postgres",
		},
		Redis: RedisConfig{
			URL: "redis://localhost:6379/0",
		},
		Cache: CacheConfig{
			ShortTTL:  300,
			MediumTTL: 1800,
			LongTTL:   3600,
		},
		Auth: AuthConfig{
			JWTExpiresIn: "7d",
		},
		Weather: WeatherConfig{
			APIURL:  "https://api.openweathermap.org/data/2.5",
			Timeout: 10 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled:             true,
			IngestSchedule:      "@every 1h",
			AlertExpirySchedule: "@every 5m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimitConfig{
			AuthRequestsPerSecond: 1,
			AuthBurst:             5,
		},
	}
}

// envMappings maps the flat environment variable names used in deployment
// onto koanf paths. Unlisted variables are ignored.
var envMappings = map[string]string{
	"port":                  "server.port",
	"environment":           "server.environment",
	"app_url":               "server.app_url",
	"allowed_origins":       "server.allowed_origins",
	"cookie_domain":         "server.cookie_domain",
	"database_driver":       "database.driver",
	"database_url":          "database.url",
	"redis_url":             "redis.url",
	"cache_ttl_short":       "cache.short_ttl",
	"cache_ttl_medium":      "cache.medium_ttl",
	"cache_ttl_long":        "cache.long_ttl",
	"jwt_secret":            "auth.jwt_secret",
	"jwt_expires_in":        "auth.jwt_expires_in",
	"weather_api_url":       "weather.api_url",
	"weather_api_key":       "weather.api_key",
	"weather_timeout":       "weather.timeout",
	"discord_webhook_url":   "notify.discord_webhook_url",
	"slack_webhook_url":     "notify.slack_webhook_url",
	"scheduler_enabled":     "scheduler.enabled",
	"ingest_cities":         "scheduler.ingest_cities",
	"ingest_schedule":       "scheduler.ingest_schedule",
	"alert_expiry_schedule": "scheduler.alert_expiry_schedule",
	"log_level":             "logging.level",
	"log_format":            "logging.format",
	"auth_rate_limit":       "rate_limit.auth_rps",
	"auth_rate_burst":       "rate_limit.auth_burst",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Load layers struct defaults, an optional YAML file and the environment
// (a .env file in the working directory is read first when present).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters in production")
	}

	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	if c.Cache.ShortTTL <= 0 || c.Cache.MediumTTL <= 0 || c.Cache.LongTTL <= 0 {
		return errors.New("cache TTLs must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Origins returns the CORS allow-list: APP_URL plus ALLOWED_ORIGINS.
func (c *Config) Origins() []string {
	origins := []string{}
	if c.Server.AppURL != "" {
		origins = append(origins, c.Server.AppURL)
	}
	return append(origins, splitList(c.Server.AllowedOrigins)...)
}

func (c *Config) IngestCities() []string {
	return splitList(c.Scheduler.IngestCities)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	HistoryDriverMemory   = "memory"
	HistoryDriverPostgres = "postgres"
	HistoryDriverSQLite   = "sqlite"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Calculator CalculatorConfig `yaml:"calculator"`
	Inventory  InventoryConfig  `yaml:"inventory"`
	Weather    WeatherConfig    `yaml:"weather"`
	History    HistoryConfig    `yaml:"history"`
	Reports    ReportsConfig    `yaml:"reports"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// CalculatorConfig tunes the dose calculator.
type CalculatorConfig struct {
	RiskAdjustment RiskAdjustmentConfig `yaml:"riskAdjustment"`
}

// RiskAdjustmentConfig maps each environmental risk bucket to a dose multiplier.
type RiskAdjustmentConfig struct {
	Low    float64 `yaml:"low"`
	Medium float64 `yaml:"medium"`
	High   float64 `yaml:"high"`
}

// InventoryConfig points at the farm backend that owns stock levels.
type InventoryConfig struct {
	BaseURL  string        `yaml:"baseUrl"`
	APIToken string        `yaml:"apiToken"`
	Timeout  time.Duration `yaml:"timeout"`
	Cache    CacheConfig   `yaml:"cache"`
}

// CacheConfig contains connection information for the stock cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	Prefix  string        `yaml:"prefix"`
	TTL     time.Duration `yaml:"ttl"`
}

// WeatherConfig points at an Open-Meteo compatible forecast API.
type WeatherConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// HistoryConfig selects where calculation records are kept.
type HistoryConfig struct {
	Driver       string         `yaml:"driver"`
	SQLitePath   string         `yaml:"sqlitePath"`
	DefaultLimit int            `yaml:"defaultLimit"`
	MaxLimit     int            `yaml:"maxLimit"`
	Postgres     PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ReportsConfig controls where exported reports are uploaded.
type ReportsConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// Load reads configuration from a YAML file and environment variables.
// A .env file, when present, is loaded into the environment first.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func loadDotEnv() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("RISK_FACTOR_LOW"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Calculator.RiskAdjustment.Low = parsed
		}
	}
	if v := os.Getenv("RISK_FACTOR_MEDIUM"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Calculator.RiskAdjustment.Medium = parsed
		}
	}
	if v := os.Getenv("RISK_FACTOR_HIGH"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Calculator.RiskAdjustment.High = parsed
		}
	}
	if v := os.Getenv("INVENTORY_BASE_URL"); v != "" {
		cfg.Inventory.BaseURL = v
	}
	if v := os.Getenv("INVENTORY_API_TOKEN"); v != "" {
		cfg.Inventory.APIToken = v
	}
	if v := os.Getenv("INVENTORY_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Inventory.Timeout = parsed
		}
	}
	if v := os.Getenv("STOCK_CACHE_ENABLED"); v != "" {
		cfg.Inventory.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("STOCK_CACHE_ADDR"); v != "" {
		cfg.Inventory.Cache.Addr = v
	}
	if v := os.Getenv("STOCK_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Inventory.Cache.TTL = parsed
		}
	}
	if v := os.Getenv("WEATHER_BASE_URL"); v != "" {
		cfg.Weather.BaseURL = v
	}
	if v := os.Getenv("HISTORY_DRIVER"); v != "" {
		cfg.History.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("HISTORY_SQLITE_PATH"); v != "" {
		cfg.History.SQLitePath = v
	}
	if v := os.Getenv("HISTORY_POSTGRES_DSN"); v != "" {
		cfg.History.Postgres.DSN = v
	}
	if v := os.Getenv("HISTORY_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.History.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("HISTORY_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.History.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("REPORTS_ENDPOINT"); v != "" {
		cfg.Reports.Endpoint = v
	}
	if v := os.Getenv("REPORTS_ACCESS_KEY"); v != "" {
		cfg.Reports.AccessKey = v
	}
	if v := os.Getenv("REPORTS_SECRET_KEY"); v != "" {
		cfg.Reports.SecretKey = v
	}
	if v := os.Getenv("REPORTS_BUCKET"); v != "" {
		cfg.Reports.Bucket = v
	}
	if v := os.Getenv("REPORTS_REGION"); v != "" {
		cfg.Reports.Region = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/calculations/reports",
				},
			},
		},
		Calculator: CalculatorConfig{
			RiskAdjustment: RiskAdjustmentConfig{
				Low:    1.0,
				Medium: 1.1,
				High:   1.2,
			},
		},
		Inventory: InventoryConfig{
			Timeout: 5 * time.Second,
			Cache: CacheConfig{
				Enabled: false,
				Prefix:  "agrocalc",
				TTL:     2 * time.Minute,
			},
		},
		Weather: WeatherConfig{
			BaseURL: "https://api.open-meteo.com/v1/forecast",
			Timeout: 10 * time.Second,
		},
		History: HistoryConfig{
			Driver:       HistoryDriverMemory,
			SQLitePath:   "agrocalc.db",
			DefaultLimit: 50,
			MaxLimit:     500,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Reports: ReportsConfig{
			Bucket: "agrocalc-reports",
			Region: "auto",
			Prefix: "reports",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	adj := c.Calculator.RiskAdjustment
	if adj.Low <= 0 || adj.Medium <= 0 || adj.High <= 0 {
		return errors.New("calculator.riskAdjustment factors must be positive")
	}
	if c.Inventory.Cache.Enabled && strings.TrimSpace(c.Inventory.Cache.Addr) == "" {
		return errors.New("inventory.cache.addr cannot be empty when the stock cache is enabled")
	}
	if c.Inventory.Cache.TTL < 0 {
		return errors.New("inventory.cache.ttl cannot be negative")
	}
	if strings.TrimSpace(c.Weather.BaseURL) == "" {
		return errors.New("weather.baseUrl cannot be empty")
	}
	switch c.History.Driver {
	case HistoryDriverMemory:
	case HistoryDriverPostgres:
		if strings.TrimSpace(c.History.Postgres.DSN) == "" {
			return errors.New("history.postgres.dsn cannot be empty when driver is postgres")
		}
	case HistoryDriverSQLite:
		if strings.TrimSpace(c.History.SQLitePath) == "" {
			return errors.New("history.sqlitePath cannot be empty when driver is sqlite")
		}
	default:
		return fmt.Errorf("history.driver %q is not supported", c.History.Driver)
	}
	if c.History.DefaultLimit <= 0 || c.History.MaxLimit <= 0 {
		return errors.New("history limits must be positive")
	}
	if c.Reports.Endpoint != "" && strings.TrimSpace(c.Reports.Bucket) == "" {
		return errors.New("reports.bucket cannot be empty when an endpoint is set")
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Converter ConverterConfig `mapstructure:"converter"`
	Storage   StorageConfig   `mapstructure:"storage"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"` // debug, release, test
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
	OpenAPIPath  string `mapstructure:"openapi_path"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	RatesKey string `mapstructure:"rates_key"` // hash holding pair -> rate
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	JWTExpiry  time.Duration `mapstructure:"jwt_expiry"`
	JWTIssuer  string        `mapstructure:"jwt_issuer"`
	APIKeyHash string        `mapstructure:"api_key_hash"` // argon2id hash of the operator API key
}

// Converter modes.
const (
	ConverterFixed = "fixed"
	ConverterTable = "table"
)

type ConverterConfig struct {
	Mode          string  `mapstructure:"mode"` // fixed, table
	BTCETHRate    float64 `mapstructure:"btc_eth_rate"`
	SeedFromRedis bool    `mapstructure:"seed_from_redis"`
}

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type StorageConfig struct {
	Backend string `mapstructure:"backend"` // memory, postgres
}

// Rate limit stores.
const (
	RateLimitRedis  = "redis"
	RateLimitMemory = "memory"
)

// RateLimitConfig enables the request limiter. The redis store shares
// counters between instances; the memory store is per process.
type RateLimitConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Store   string `mapstructure:"store"` // redis, memory
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Validate checks values that have no usable default.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Converter.Mode {
	case ConverterFixed, ConverterTable:
	default:
		return fmt.Errorf("unknown converter mode %q", c.Converter.Mode)
	}
	if c.RateLimit.Enabled {
		switch c.RateLimit.Store {
		case RateLimitRedis, RateLimitMemory:
		default:
			return fmt.Errorf("unknown rate limit store %q", c.RateLimit.Store)
		}
	}
	if c.Converter.BTCETHRate <= 0 {
		return fmt.Errorf("converter.btc_eth_rate must be positive, got %v", c.Converter.BTCETHRate)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	return nil
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: EWL_ (Ethereum Wallet).
// Nested keys use underscore: EWL_DATABASE_HOST, EWL_AUTH_JWT_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.openapi_path", "docs/api/openapi.yaml")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "ethereum_wallet")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.rates_key", "ewl:rates")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_expiry", "24h")
	v.SetDefault("auth.jwt_issuer", "ethereum-wallet")
	v.SetDefault("auth.api_key_hash", "")
	v.SetDefault("converter.mode", ConverterFixed)
	v.SetDefault("converter.btc_eth_rate", 15.5)
	v.SetDefault("converter.seed_from_redis", false)
	v.SetDefault("storage.backend", StorageMemory)
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.store", RateLimitRedis)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: EWL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("EWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// NeedsRedis reports whether any enabled component talks to Redis.
func (c *Config) NeedsRedis() bool {
	return (c.RateLimit.Enabled && c.RateLimit.Store == RateLimitRedis) ||
		(c.Converter.Mode == ConverterTable && c.Converter.SeedFromRedis)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application level configuration. Values come from an optional
// YAML file (CONFIG_FILE) and are then overridden by environment variables.
type Config struct {
	ServerPort  string        `yaml:"server_port"`
	DBDriver    string        `yaml:"db_driver"`
	DatabaseDSN string        `yaml:"database_dsn"`
	RedisAddr   string        `yaml:"redis_addr"`
	RedisDB     int           `yaml:"redis_db"`
	RedisPass   string        `yaml:"redis_password"`
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	AMQPURL     string        `yaml:"amqp_url"`
	LogLevel    string        `yaml:"log_level"`
	SwaggerHost string        `yaml:"swagger_host"`
	ResetDB     bool          `yaml:"reset_db"`
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

func defaults() *Config {
	return &Config{
		ServerPort:  "8080",
		DBDriver:    DriverMySQL,
		DatabaseDSN: "user:password@tcp(localhost:3306)/tasks?charset=utf8mb4&parseTime=True&loc=UTC",
		RedisAddr:   "localhost:6379",
		JWTSecret:   "change-me",
		TokenTTL:    24 * time.Hour,
		LogLevel:    "info",
	}
}

// Load builds Config from defaults, the optional YAML file and the environment.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the token service cannot run with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: jwt secret must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: token ttl must be positive, got %s", c.TokenTTL)
	}
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("config: unsupported db driver %q", c.DBDriver)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}
	return nil
}

func overrideFromEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", cfg.DatabaseDSN)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.RedisPass = getEnv("REDIS_PASSWORD", cfg.RedisPass)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", cfg.TokenTTL)
	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.SwaggerHost = getEnv("SWAGGER_HOST", cfg.SwaggerHost)
	cfg.ResetDB = getEnv("RESET_DB", strconv.FormatBool(cfg.ResetDB)) == "true"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

// Package config loads runtime settings from the environment and opens
// the database and cache connections.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/yeremiapane/restaurant-platform/utils"
)

type Config struct {
	Port    string `env:"PORT,default=8080"`
	GinMode string `env:"GIN_MODE,default=debug"`

	DBDriver    string `env:"DB_DRIVER,default=postgres"`
	DatabaseURL string `env:"DATABASE_URL,default=host=localhost user=restaurant password=restaurant dbname=restaurant port=5432 sslmode=disable"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,default=24h"`

	CORSOrigins     string        `env:"CORS_ORIGINS,default=*"`
	RateLimit       int           `env:"RATE_LIMIT,default=100"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW,default=1m"`

	RedisURL     string `env:"REDIS_URL"`
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE,default=orders_topic"`

	PrinterWidth   int           `env:"PRINTER_WIDTH,default=32"`
	PrinterWorkers int           `env:"PRINTER_WORKERS,default=4"`
	PrinterTimeout time.Duration `env:"PRINTER_TIMEOUT,default=5s"`
	Currency       string        `env:"CURRENCY,default=MAD"`

	ApprovalTTL time.Duration `env:"ORDER_APPROVAL_TTL,default=2h"`

	LogFormat string `env:"LOG_FORMAT,default=text"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFile   string `env:"LOG_FILE"`

	SuperAdminUsername string `env:"SUPER_ADMIN_USERNAME,default=admin"`
	SuperAdminPassword string `env:"SUPER_ADMIN_PASSWORD"`
}

// Load reads .env when present, then decodes the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debug("no .env file, using process environment")
	}
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		utils.ErrorLogger.Warn("JWT_SECRET is not set, using the development secret")
	}
	return &cfg, nil
}

// Origins splits CORS_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) LogOptions() utils.LogOptions {
	return utils.LogOptions{Format: c.LogFormat, Level: c.LogLevel, File: c.LogFile}
}

package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"shop"`
	ServerPort  int    `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	JWTSecret    string `envconfig:"JWT_SECRET"`
	CookieSecure bool   `envconfig:"COOKIE_SECURE" default:"false"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	RedisAddr    string   `envconfig:"REDIS_ADDR"`

	LowStockThreshold      int64         `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`
	IdempotencyTTL         time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	StrictOrderTransitions bool          `envconfig:"STRICT_ORDER_TRANSITIONS" default:"false"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("notice: .env not loaded (%v), using process environment", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

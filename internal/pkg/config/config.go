package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr        string        `env:"METRICS_ADDR" envDefault:":9091"`
	DatabaseURL        string        `env:"DATABASE_URL,required"`
	RedisURL           string        `env:"REDIS_URL"`
	JWTSecret          string        `env:"JWT_SECRET,required"`
	TokenTTL           time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	FreePlanNoteLimit  int           `env:"FREE_PLAN_NOTE_LIMIT" envDefault:"3"`
	RateLimitMax       int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	RateLimitWindow    time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	SeedDemoData       bool          `env:"SEED_DEMO_DATA" envDefault:"true"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

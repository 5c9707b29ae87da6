package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const EnvDevelopment = "development"

type Config struct {
	DBURL              string
	Port               string
	AppEnv             string
	LogLevel           string
	RabbitMQURL        string
	CORSAllowedOrigins []string
}

// IsDevelopment reports whether internal error detail may reach clients.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, relying on environment variables")
	}

	cfg := &Config{
		DBURL:              os.Getenv("DB_URL"),
		Port:               getEnv("PORT", "8080"),
		AppEnv:             getEnv("APP_ENV", "production"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RabbitMQURL:        os.Getenv("RABBITMQ_URL"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.DBURL == "" {
		log.Error().Msg("DB_URL environment variable is not set")
		return nil, errors.New("DB_URL is required")
	}

	if cfg.RabbitMQURL == "" {
		log.Info().Msg("RABBITMQ_URL not set, customer events will not be published")
	}

	return cfg, nil
}

// SetupLogger configures the global zerolog logger for the given config.
func SetupLogger(cfg *Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

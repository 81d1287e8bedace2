package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	MQTTEnabled  bool   `env:"MQTT_ENABLED" envDefault:"true"`
	MQTTURL      string `env:"MQTT_URL" envDefault:"tcp://localhost:1883" validate:"required_if=MQTTEnabled true"`
	MQTTClientID string `env:"MQTT_CLIENT_ID" envDefault:"riego-server"`

	// Timezone governs schedule evaluation: "next watering" is computed in
	// the garden's local time, not the server's.
	Timezone   string `env:"TIMEZONE" envDefault:"America/Argentina/Buenos_Aires" validate:"required"`
	ResyncCron string `env:"RESYNC_CRON" envDefault:"0 3 * * *"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

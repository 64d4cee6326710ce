package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the relay process.
type Config struct {
	// BindAddr is the listen address for the HTTP/WebSocket server.
	BindAddr string `env:"BIND_ADDR" envDefault:":3016"`

	// APIURL is the base URL of the persistence/notification backend,
	// e.g. http://localhost:8000/api.
	APIURL string `env:"API_URL,required,notEmpty"`

	// APITimeout bounds each backend call end to end.
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"5s"`

	// LogFormat selects the slog handler: "text" or "json".
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// SendBuffer is the per-connection outbound message buffer. A client
	// that falls this far behind is treated as gone.
	SendBuffer int `env:"WS_SEND_BUFFER" envDefault:"256"`
}

// New loads configuration from the environment, reading a .env file first
// if one exists.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

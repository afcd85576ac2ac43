package cli

import (
	"github.com/caarlos0/env/v11"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string `env:"SCRIMCTL_SERVER" envDefault:"http://localhost:8080"`
	Output    string `env:"SCRIMCTL_OUTPUT" envDefault:"text"`
}

// DefaultConfig returns a Config read from the environment, falling back to defaults
func DefaultConfig() *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		// Plain string fields cannot fail to parse
		return &Config{ServerURL: "http://localhost:8080", Output: "text"}
	}
	return &cfg
}

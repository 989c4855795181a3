// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/abhisek/neuroveil/internal/narrative"
	"github.com/abhisek/neuroveil/internal/timer"
)

// Config holds every environment-tunable setting.
type Config struct {
	// DBPath overrides the SQLite file location. Empty uses the XDG default.
	DBPath string `env:"NEUROVEIL_DB"`

	// SessionMinutes is the standard Pomodoro length.
	SessionMinutes int `env:"NEUROVEIL_SESSION_MINUTES" envDefault:"25"`

	// QuizSize is the number of questions per knowledge check.
	QuizSize int `env:"NEUROVEIL_QUIZ_SIZE" envDefault:"5"`

	// Scope limits quizzes to these concept names. Empty uses the content
	// pack's scope.
	Scope []string `env:"NEUROVEIL_SCOPE" envSeparator:","`
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig() Config {
	return Config{
		SessionMinutes: 25,
		QuizSize:       5,
	}
}

// Load parses the environment over the defaults and validates the result.
func Load() (Config, error) {
	cfg := DefaultConfig()
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate reports every out-of-range setting.
func (c Config) Validate() error {
	var errs []error
	if c.SessionMinutes < 1 || c.SessionMinutes > narrative.MaxSessionMinutes {
		errs = append(errs, fmt.Errorf("NEUROVEIL_SESSION_MINUTES must be 1-%d, got %d", narrative.MaxSessionMinutes, c.SessionMinutes))
	}
	if c.QuizSize < 1 {
		errs = append(errs, fmt.Errorf("NEUROVEIL_QUIZ_SIZE must be positive, got %d", c.QuizSize))
	}
	return errors.Join(errs...)
}

// Narrative converts the settings for the narrative engine. The test cycle
// is always timer.FastDuration.
func (c Config) Narrative() narrative.Config {
	return narrative.Config{
		SessionDuration: time.Duration(c.SessionMinutes) * time.Minute,
		FastDuration:    timer.FastDuration,
		QuizSize:        c.QuizSize,
	}
}

// Package config loads runtime settings from EXAMPREP_* environment
// variables. Command-line flags override individual fields.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/abhisek/examprep/internal/lesson"
	"github.com/abhisek/examprep/internal/llm"
)

type Config struct {
	// DBPath is the local SQLite file. Empty selects the XDG default.
	DBPath string `env:"EXAMPREP_DB"`

	// APIURL selects the remote lesson service. Empty means the local
	// database is used directly.
	APIURL string `env:"EXAMPREP_API_URL"`
	Token  string `env:"EXAMPREP_TOKEN"`

	LearnerID string `env:"EXAMPREP_LEARNER" envDefault:"local"`
	Role      string `env:"EXAMPREP_ROLE" envDefault:"STUDENT"`

	Addr    string `env:"EXAMPREP_ADDR" envDefault:"127.0.0.1:8080"`
	LogMode string `env:"EXAMPREP_LOG" envDefault:"dev"`
	// LogFile receives logs while the TUI owns the terminal. Empty
	// discards them there.
	LogFile string `env:"EXAMPREP_LOG_FILE"`
	Subject string `env:"EXAMPREP_SUBJECT" envDefault:"math"`
	GroupID string `env:"EXAMPREP_GROUP" envDefault:"demo"`

	LLM llm.Config
}

// Load parses the environment. When no LLM provider is named, vendor
// API key variables are probed.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if !cfg.LLM.Enabled() {
		if found, ok := llm.DiscoverConfig(); ok {
			cfg.LLM = found
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := parseRole(c.Role); err != nil {
		return err
	}
	if strings.TrimSpace(c.LearnerID) == "" {
		return fmt.Errorf("EXAMPREP_LEARNER must not be empty")
	}
	return c.LLM.Validate()
}

// Remote reports whether lessons come from the API service.
func (c Config) Remote() bool { return c.APIURL != "" }

// Identity is the local caller.
func (c Config) Identity() lesson.Identity {
	role, _ := parseRole(c.Role)
	return lesson.Identity{LearnerID: strings.TrimSpace(c.LearnerID), Role: role}
}

func parseRole(s string) (lesson.Role, error) {
	switch r := lesson.Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case lesson.RoleTeacher, lesson.RoleStudent:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q: want TEACHER or STUDENT", s)
}

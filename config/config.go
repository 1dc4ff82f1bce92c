package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/1broseidon/director/common"
	"github.com/1broseidon/director/models"
)

// Config holds the environment driven configuration for the director service.
type Config struct {
	// Credential
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	LegacyAPIKey string `env:"API_KEY"`

	// Service Configuration
	Environment     string        `env:"DIRECTOR_ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"DIRECTOR_PORT" envDefault:"8080"`
	LogLevel        string        `env:"DIRECTOR_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"DIRECTOR_LOG_FORMAT" envDefault:"console"`
	RequestTimeout  time.Duration `env:"DIRECTOR_REQUEST_TIMEOUT" envDefault:"3m"`
	ShutdownTimeout time.Duration `env:"DIRECTOR_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Planning
	PlannerModel       string  `env:"DIRECTOR_PLANNER_MODEL" envDefault:"gemini-2.5-flash"`
	PlannerTemperature float32 `env:"DIRECTOR_PLANNER_TEMPERATURE" envDefault:"0.6"`
	PolicyFile         string  `env:"DIRECTOR_POLICY_FILE"`

	// Generation and capability resolution
	ImageModel      string        `env:"DIRECTOR_IMAGE_MODEL" envDefault:"gemini-3-pro-image-preview"`
	FallbackModel   string        `env:"DIRECTOR_FALLBACK_MODEL" envDefault:"gemini-2.5-flash-image"`
	FallbackStatus  []int         `env:"DIRECTOR_FALLBACK_STATUSES" envDefault:"403,404,429" envSeparator:","`
	AdvancedMarkers []string      `env:"DIRECTOR_ADVANCED_MARKERS" envDefault:"pro,preview,veo" envSeparator:","`
	CapabilityTTL   time.Duration `env:"DIRECTOR_CAPABILITY_TTL" envDefault:"0s"`
	SafetyThreshold string        `env:"DIRECTOR_SAFETY_THRESHOLD" envDefault:"BLOCK_NONE"`

	// Uploads
	MaxFaceImages  int   `env:"DIRECTOR_MAX_FACE_IMAGES" envDefault:"5"`
	MaxBodyImages  int   `env:"DIRECTOR_MAX_BODY_IMAGES" envDefault:"5"`
	MaxStyleImages int   `env:"DIRECTOR_MAX_STYLE_IMAGES" envDefault:"4"`
	MaxUploadBytes int64 `env:"DIRECTOR_MAX_UPLOAD_BYTES" envDefault:"20971520"`

	policy *Policy
}

// Load parses environment variables into Config and loads the planner policy.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.GeminiAPIKey = strings.TrimSpace(cfg.GeminiAPIKey)
	cfg.LegacyAPIKey = strings.TrimSpace(cfg.LegacyAPIKey)
	cfg.SafetyThreshold = strings.ToUpper(strings.TrimSpace(cfg.SafetyThreshold))
	if cfg.SafetyThreshold == models.SafetyServiceDefault {
		cfg.SafetyThreshold = ""
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if _, err := common.ParseLogLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("DIRECTOR_LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("DIRECTOR_LOG_FORMAT must be console or json, got %q", cfg.LogFormat)
	}
	if !models.ValidSafetyThreshold(cfg.SafetyThreshold) {
		return nil, fmt.Errorf("DIRECTOR_SAFETY_THRESHOLD: unknown threshold %q", cfg.SafetyThreshold)
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 * 1024 * 1024
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("DIRECTOR_REQUEST_TIMEOUT must be positive")
	}
	if cfg.CapabilityTTL < 0 {
		return nil, fmt.Errorf("DIRECTOR_CAPABILITY_TTL must not be negative")
	}

	policy, err := LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	cfg.policy = policy
	return cfg, nil
}

// LoadEnvFiles loads .env files from the working directory and its parent.
// Variables already set in the environment take precedence.
func LoadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}

// APIKey returns the configured credential, preferring GEMINI_API_KEY.
func (c *Config) APIKey() string {
	if c.GeminiAPIKey != "" {
		return c.GeminiAPIKey
	}
	return c.LegacyAPIKey
}

// Policy returns the planner policy loaded from PolicyFile, or the built-in default.
func (c *Config) Policy() *Policy {
	if c.policy == nil {
		return DefaultPolicy()
	}
	return c.policy
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// Level returns the parsed log level.
func (c *Config) Level() common.LogLevel {
	level, err := common.ParseLogLevel(c.LogLevel)
	if err != nil {
		return common.InfoLevel
	}
	return level
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

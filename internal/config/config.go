package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
)

// Config holds all configuration for the simulator
type Config struct {
	// Core settings
	SimulatorName string
	OPCUAPort     int
	OPCUAEnabled  bool
	HTTPPort      int
	LogLevel      string

	// Timing settings
	TickInterval  time.Duration
	PlaybackSpeed float64

	// Session settings
	Exercise     string
	CatalogFile  string
	TunablesFile string

	// Webhook settings (empty endpoint disables)
	WebhookEndpoint    string
	WebhookRepPath     string
	WebhookSummaryPath string
	WebhookTimeout     time.Duration
}

// Load reads configuration from environment variables with defaults
func Load() (*Config, error) {
	cfg := &Config{
		// Core settings
		SimulatorName: getEnvOrDefault("SIMULATOR_NAME", "ExerciseSimulator-01"),
		OPCUAPort:     getEnvAsIntOrDefault("OPCUA_PORT", 4840),
		OPCUAEnabled:  getEnvAsBoolOrDefault("OPCUA_ENABLED", true),
		HTTPPort:      getEnvAsIntOrDefault("HTTP_PORT", 8081),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),

		// Timing settings
		TickInterval:  getDurationOrDefault("TICK_INTERVAL", 16*time.Millisecond),
		PlaybackSpeed: getEnvAsFloatOrDefault("PLAYBACK_SPEED", 1.0),

		// Session settings
		Exercise:     getEnvOrDefault("EXERCISE", string(catalog.Squat)),
		CatalogFile:  os.Getenv("CATALOG_FILE"),
		TunablesFile: os.Getenv("TUNABLES_FILE"),

		// Webhook settings
		WebhookEndpoint:    os.Getenv("WEBHOOK_ENDPOINT"),
		WebhookRepPath:     getEnvOrDefault("WEBHOOK_REP_PATH", "/api/reps"),
		WebhookSummaryPath: getEnvOrDefault("WEBHOOK_SUMMARY_PATH", "/api/sessions"),
		WebhookTimeout:     getDurationOrDefault("WEBHOOK_TIMEOUT", 10*time.Second),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.OPCUAPort <= 0 || c.OPCUAPort > 65535 {
		return fmt.Errorf("OPCUA_PORT must be between 1 and 65535, got %d", c.OPCUAPort)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort)
	}
	if c.TickInterval < time.Millisecond {
		return fmt.Errorf("TICK_INTERVAL must be at least 1ms, got %s", c.TickInterval)
	}
	if err := validatePlaybackSpeed(c.PlaybackSpeed); err != nil {
		return fmt.Errorf("PLAYBACK_SPEED: %w", err)
	}
	if c.WebhookEndpoint != "" && c.WebhookTimeout <= 0 {
		return fmt.Errorf("WEBHOOK_TIMEOUT must be positive, got %s", c.WebhookTimeout)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

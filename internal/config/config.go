package config

import (
	"fmt"
	"os"

	"claimbridge/internal/logger"
)

// Config holds the deployment configuration. Everything is sourced from the
// environment; main loads a .env file first so local runs work without
// exported variables.
type Config struct {
	// Schema variant pinned for this deployment. The observed form variants
	// disagree on a few field positions, so the mapping is configuration,
	// never guessed from the data.
	SchemaVariant string

	// OCR collaborator selection and Google Cloud settings
	OCRBackend            string // "vision" or "documentai"
	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string

	// Logging configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	config := &Config{
		SchemaVariant:         getEnv("SCHEMA_VARIANT", "form1500"),
		OCRBackend:            getEnv("OCR_BACKEND", "vision"),
		GoogleCloudProject:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:   getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID: getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.OCRBackend != "vision" && c.OCRBackend != "documentai" {
		return fmt.Errorf("OCR_BACKEND must be \"vision\" or \"documentai\", got %q", c.OCRBackend)
	}
	if c.OCRBackend == "documentai" && c.DocumentAIProcessorID == "" {
		return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required when OCR_BACKEND=documentai")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config.
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

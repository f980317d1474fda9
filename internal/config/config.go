// Package config provides application configuration management with
// support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Server     ServerConfig
	Data       DataConfig
	Catalog    CatalogConfig
	Generation GenerationConfig
	Ferium     FeriumConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `validate:"required,oneof=development staging production"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `validate:"required,oneof=debug info warn error"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string `validate:"required,numeric"`
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DataConfig holds on-disk data locations.
type DataConfig struct {
	// BasePath is the root data directory (default: ~/ModSmith).
	BasePath string `validate:"required"`
	// LearningPath is the learning store directory (default: {base}/learning).
	LearningPath string `validate:"required"`
	// ReportsPath receives generated report files (default: {base}/generated).
	ReportsPath string `validate:"required"`
	// ModsPath receives downloaded mod jars (default: {base}/mods).
	ModsPath string `validate:"required"`
}

// CatalogConfig holds Modrinth client configuration.
type CatalogConfig struct {
	BaseURL string `validate:"required,url"`
	Timeout time.Duration
	// Pacing is the minimum spacing between live catalog queries.
	Pacing time.Duration
}

// GenerationConfig holds candidate-generation configuration.
type GenerationConfig struct {
	// APIKey for the OpenAI-compatible endpoint. Empty disables
	// generation; validation-only use stays available.
	APIKey string
	Model  string
}

// FeriumConfig holds download orchestration configuration.
type FeriumConfig struct {
	// Binary overrides PATH lookup of the ferium executable.
	Binary string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for ModSmith data")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	catalogURL := flag.String("catalog-url", "", "Modrinth API base URL")
	catalogTimeout := flag.String("catalog-timeout", "", "Catalog request timeout (default: 10s)")
	catalogPacing := flag.String("catalog-pacing", "", "Spacing between catalog queries (default: 200ms)")
	generationModel := flag.String("generation-model", "", "Chat model for candidate generation")
	feriumBinary := flag.String("ferium-binary", "", "Path to the ferium executable")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Catalog: CatalogConfig{
			BaseURL: getConfigValue(*catalogURL, "CATALOG_URL", "https://api.modrinth.com/v2"),
		},
		Generation: GenerationConfig{
			APIKey: getConfigValue("", "OPENAI_API_KEY", ""),
			Model:  getConfigValue(*generationModel, "GENERATION_MODEL", "gpt-4o-mini"),
		},
		Ferium: FeriumConfig{
			Binary: getConfigValue(*feriumBinary, "FERIUM_BINARY", ""),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Catalog.Timeout, err = parseDurationValue(*catalogTimeout, "CATALOG_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.Catalog.Pacing, err = parseDurationValue(*catalogPacing, "CATALOG_PACING", "200ms"); err != nil {
		return nil, err
	}

	if err := cfg.expandDataPaths(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// expandDataPaths resolves the data root and derives the per-purpose
// subdirectories that were not set explicitly.
func (c *Config) expandDataPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	base, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, "ModSmith"))
	if err != nil {
		return err
	}
	c.Data.BasePath = base

	if c.Data.LearningPath == "" {
		c.Data.LearningPath = filepath.Join(base, "learning")
	}
	if c.Data.ReportsPath == "" {
		c.Data.ReportsPath = filepath.Join(base, "generated")
	}
	if c.Data.ModsPath == "" {
		c.Data.ModsPath = filepath.Join(base, "mods")
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", envKey, raw, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}

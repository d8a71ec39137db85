package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const defaultPort = 3000

// Config holds the runtime settings for the print bridge
type Config struct {
	// Port is the HTTP listen port
	Port int

	// LogLevel controls logging verbosity (debug, info, warn, error)
	LogLevel string

	// CORSOrigins lists browser origins allowed to call the API.
	// Empty means allow any origin.
	CORSOrigins []string
}

// Load creates a Config by reading from environment variables
// and applying defaults where values are not set
func Load() *Config {
	return &Config{
		Port:        getEnvInt("PRINTBRIDGE_PORT", defaultPort),
		LogLevel:    getEnvOrDefault("PRINTBRIDGE_LOG_LEVEL", "info"),
		CORSOrigins: splitList(os.Getenv("PRINTBRIDGE_CORS_ORIGINS")),
	}
}

type fileConfig struct {
	Port        int      `toml:"port"`
	LogLevel    string   `toml:"log_level"`
	CORSOrigins []string `toml:"cors_origins"`
}

// LoadFile overlays values from a TOML file on top of the config.
// Keys absent from the file leave the current values untouched.
func (c *Config) LoadFile(path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config file: %w", err)
	}

	if meta.IsDefined("port") {
		c.Port = raw.Port
	}
	if meta.IsDefined("log_level") {
		c.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("cors_origins") {
		c.CORSOrigins = raw.CORSOrigins
	}

	return nil
}

// Validate checks that the configuration can actually be served
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid listen port %d (must be 1-65535)", c.Port)
	}
	return nil
}

// getEnvOrDefault retrieves an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable, falling back to the
// default when unset or unparseable
func getEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return n
}

// splitList parses a comma-separated list, dropping empty entries
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

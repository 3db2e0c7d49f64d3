// Package config provides configuration management for the pose converter.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/heimdex/heimdex-pose/internal/keypoints"
)

const (
	// Default values
	DefaultPort     = 8788
	DefaultLogLevel = "info"
	DefaultDataDir  = ".heimdex-pose"

	// Environment variable names
	EnvPort         = "POSE_PORT"
	EnvLogLevel     = "POSE_LOG_LEVEL"
	EnvDataDir      = "POSE_DATA_DIR"
	EnvDefaultNames = "POSE_DEFAULT_NAMES"
	EnvHistory      = "POSE_HISTORY"

	// Database filename
	DBFilename = "runs.db"

	// Upload limit for the HTTP convert endpoint
	DefaultMaxUploadBytes = 256 * 1024 * 1024
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	ExportsDir() string
	DefaultNames() []string
	HistoryEnabled() bool
	MaxUploadBytes() int64
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port         int
	logLevel     string
	dataDir      string
	defaultNames []string
	history      bool
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:     DefaultPort,
		logLevel: DefaultLogLevel,
		dataDir:  defaultDataDir(),
		history:  true,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if dn := os.Getenv(EnvDefaultNames); dn != "" {
		names := SplitNames(dn)
		if err := keypoints.Default.ValidateNames(names); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvDefaultNames, err)
		}
		cfg.defaultNames = names
	}

	if h := os.Getenv(EnvHistory); h != "" {
		history, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHistory, err)
		}
		cfg.history = history
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// ExportsDir is where the HTTP API saves named documents.
func (c *EnvConfig) ExportsDir() string {
	return filepath.Join(c.dataDir, "exports")
}

// DefaultNames returns the names exported when a request names none.
func (c *EnvConfig) DefaultNames() []string {
	if len(c.defaultNames) > 0 {
		return c.defaultNames
	}
	return keypoints.DefaultNames
}

func (c *EnvConfig) HistoryEnabled() bool {
	return c.history
}

func (c *EnvConfig) MaxUploadBytes() int64 {
	return DefaultMaxUploadBytes
}

// SplitNames splits a comma-separated name list, dropping blanks.
func SplitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

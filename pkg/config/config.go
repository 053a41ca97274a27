// Package config resolves the client's runtime settings.
//
// Sources are applied in order, later ones winning: built-in defaults, a .env
// file and the process environment, then command-line flags bound by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kerbaras/minty/pkg/data"
	"github.com/sirupsen/logrus"
)

const (
	EnvBackendURL = "MINTY_BACKEND_URL"
	EnvDataDir    = "MINTY_DATA_DIR"
	EnvStore      = "MINTY_STORE"
	EnvLogLevel   = "MINTY_LOG_LEVEL"
	EnvExportDir  = "MINTY_EXPORT_DIR"
)

type Config struct {
	// BackendURL is the origin every API path is appended to.
	BackendURL string
	// DataDir holds the token database and the log file.
	DataDir   string
	Store     string
	LogLevel  string
	ExportDir string
}

// LoadDefaults populates c with the built-in defaults.
func (c *Config) LoadDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.BackendURL = "http://localhost:8000"
	c.DataDir = filepath.Join(home, ".minty")
	c.Store = data.DriverDuckDB
	c.LogLevel = logrus.InfoLevel.String()
	c.ExportDir = filepath.Join(home, "Downloads")
}

// LoadEnv overlays every variable lookup knows about.
func (c *Config) LoadEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.BackendURL, EnvBackendURL)
	set(&c.DataDir, EnvDataDir)
	set(&c.Store, EnvStore)
	set(&c.LogLevel, EnvLogLevel)
	set(&c.ExportDir, EnvExportDir)
}

// Load applies defaults, then the given .env files (".env" when none are
// named) and the environment. Missing .env files are not an error; variables
// already set in the environment take precedence over the files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.LoadEnv(os.LookupEnv)
	return cfg, nil
}

// Validate checks the settings after all sources have been applied.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend url %q", c.BackendURL)
	}
	switch c.Store {
	case data.DriverDuckDB, data.DriverSQLite:
	default:
		return fmt.Errorf("invalid store %q: want %s or %s", c.Store, data.DriverDuckDB, data.DriverSQLite)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if c.DataDir == "" {
		return errors.New("data dir must not be empty")
	}
	return nil
}

// StorePath is the token database file for the configured driver.
func (c *Config) StorePath() string {
	if c.Store == data.DriverSQLite {
		return filepath.Join(c.DataDir, "minty.sqlite")
	}
	return filepath.Join(c.DataDir, "minty.duckdb")
}

func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "minty.log")
}

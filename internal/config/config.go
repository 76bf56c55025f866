package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL is the hosted practice API.
const DefaultAPIBaseURL = "https://toeic-practice-hze3cbbff4ctd8ce.southeastasia-01.azurewebsites.net/api/v1"

// Config holds all runtime configuration.
type Config struct {
	// APIBaseURL is the practice API root, including the /api/v1 prefix.
	APIBaseURL string

	// DBPath is the local SQLite file. Empty means the default XDG path.
	DBPath string

	// LogFile receives structured logs. The terminal belongs to the UI,
	// so logs never go to stdout.
	LogFile string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// HTTPTimeout bounds a single API request. Default: 15s.
	HTTPTimeout time.Duration

	// PageSize is the number of questions per practice page. Default: 5.
	PageSize int
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		APIBaseURL:  DefaultAPIBaseURL,
		LogFile:     defaultLogFile(),
		LogLevel:    "info",
		HTTPTimeout: 15 * time.Second,
		PageSize:    5,
	}
}

// Load reads an optional .env file, then overlays environment variables
// onto Default.
func Load() Config {
	// A missing .env is the normal case.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset or unparsable values.
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv("TOEIC_API_URL"); v != "" {
		cfg.APIBaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("TOEIC_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TOEIC_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TOEIC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("TOEIC_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if v := os.Getenv("TOEIC_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PageSize = n
		}
	}

	return cfg
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error

	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("TOEIC_API_URL cannot be empty"))
	} else if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("TOEIC_API_URL %q is not an absolute URL", c.APIBaseURL))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("TOEIC_LOG_LEVEL %q must be one of debug, info, warn, error", c.LogLevel))
	}

	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("TOEIC_HTTP_TIMEOUT must be positive"))
	}

	if c.PageSize < 1 || c.PageSize > 50 {
		errs = append(errs, fmt.Errorf("TOEIC_PAGE_SIZE must be between 1 and 50, got %d", c.PageSize))
	}

	return errors.Join(errs...)
}

// defaultLogFile returns $XDG_STATE_HOME/toeic/toeic.log, falling back to
// ~/.local/state.
func defaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "toeic", "toeic.log")
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
)

// Supported browser drivers
const (
	DriverPlaywright = "playwright"
	DriverSelenium   = "selenium"
)

const stateDir = ".pfda_functional"

// Config holds the settings of a functional run
type Config struct {
	BaseURL          string        `envconfig:"PFDA_BASE_URL"`
	Driver           string        `envconfig:"PFDA_DRIVER"`
	Headless         bool          `envconfig:"PFDA_HEADLESS"`
	PageReadyTimeout time.Duration `envconfig:"PFDA_PAGE_READY_TIMEOUT"`
	PollInterval     time.Duration `envconfig:"PFDA_POLL_INTERVAL"`
	ReportPath       string        `envconfig:"PFDA_REPORT_PATH"`
	StorageStatePath string        `envconfig:"PFDA_STORAGE_STATE_PATH"`
	LogLevel         string        `envconfig:"PFDA_LOG_LEVEL"`
	DriverPath       string        `envconfig:"BROWSER_DRIVER_PATH"`
	ChromeBinaryPath string        `envconfig:"CHROME_BINARY_PATH"`
	SeleniumPort     int           `envconfig:"PFDA_SELENIUM_PORT"`
}

// NewConfig returns a Config with default values
func NewConfig() Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return Config{
		BaseURL:          "http://localhost:3000",
		Driver:           DriverPlaywright,
		Headless:         true,
		PageReadyTimeout: 10 * time.Second,
		PollInterval:     250 * time.Millisecond,
		ReportPath:       filepath.Join(homeDir, stateDir, "reports.json"),
		StorageStatePath: filepath.Join(homeDir, stateDir, "storage_state.json"),
		LogLevel:         "info",
		SeleniumPort:     9515,
	}
}

// Load reads an optional .env file and applies environment variables on top of the defaults
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv applies variables resolved by lookup on top of the defaults
func FromEnv(lookup func(key string) (string, bool)) (Config, error) {
	cfg := NewConfig()
	if err := envconfig.Process("", &cfg, lookup); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base url is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base url %q must start with http:// or https://", c.BaseURL)
	}
	switch c.Driver {
	case DriverPlaywright, DriverSelenium:
	default:
		return fmt.Errorf("unsupported driver %q (use %s or %s)", c.Driver, DriverPlaywright, DriverSelenium)
	}
	if c.PageReadyTimeout <= 0 {
		return fmt.Errorf("page ready timeout must be positive, got %s", c.PageReadyTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// URL joins the base url with a site path
func (c Config) URL(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// NewLogger creates the logger used by a run
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}

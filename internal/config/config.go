package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rshade/marketdash/internal/schedule"
)

// Environment variable names recognised by ApplyEnv.
const (
	EnvHome        = "MARKETDASH_HOME"
	EnvConfig      = "MARKETDASH_CONFIG"
	EnvAPIURL      = "MARKETDASH_API_URL"
	EnvTimeout     = "MARKETDASH_TIMEOUT"
	EnvLogLevel    = "MARKETDASH_LOG_LEVEL"
	EnvLogFormat   = "MARKETDASH_LOG_FORMAT"
	EnvLogFile     = "MARKETDASH_LOG_FILE"
	EnvAutoRefresh = "MARKETDASH_AUTO_REFRESH"
	EnvLocation    = "MARKETDASH_LOCATION"
)

// Defaults.
const (
	DefaultBaseURL        = "http://localhost:8080"
	DefaultStocksPath     = "/api/stocks/nasdaq10"
	DefaultAnalysisPath   = "/api/analysis/latest"
	DefaultTimeoutSeconds = 15
	DefaultLocation       = "Local"

	configFileName  = "config.yaml"
	overlayFileName = ".marketdash.yaml"
	homeDirName     = ".marketdash"
)

// Config is the full marketdash configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Display DisplayConfig `yaml:"display"`
	Refresh RefreshConfig `yaml:"refresh"`
	Logging LoggingConfig `yaml:"logging"`

	// path is the file the config was loaded from (empty when defaults only).
	path string
}

// APIConfig locates the backend endpoints.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	StocksPath     string `yaml:"stocks_path"`
	AnalysisPath   string `yaml:"analysis_path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DisplayConfig controls rendering.
type DisplayConfig struct {
	// Location is an IANA zone name used for the analysis timestamp ("Local" by default).
	Location string `yaml:"location"`
	// Markdown renders the analysis summary through glamour.
	Markdown bool `yaml:"markdown"`
}

// RefreshConfig controls the optional scheduled refresh.
type RefreshConfig struct {
	// Schedule is a cron spec ("@every 5m"); empty disables auto refresh.
	Schedule string `yaml:"schedule"`
}

// LoggingConfig controls log level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Timeout returns the HTTP timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// ResolveLocation loads the configured display location.
func (d DisplayConfig) ResolveLocation() (*time.Location, error) {
	if d.Location == "" || d.Location == DefaultLocation {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(d.Location)
	if err != nil {
		return nil, fmt.Errorf("loading location %q: %w", d.Location, err)
	}
	return loc, nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// HomeDir returns the marketdash home directory (~/.marketdash unless MARKETDASH_HOME is set).
func HomeDir() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return homeDirName
	}
	return filepath.Join(home, homeDirName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(HomeDir(), configFileName)
}

// DefaultLogFile returns the default log file location.
func DefaultLogFile() string {
	return filepath.Join(HomeDir(), "logs", "marketdash.log")
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        DefaultBaseURL,
			StocksPath:     DefaultStocksPath,
			AnalysisPath:   DefaultAnalysisPath,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Display: DisplayConfig{
			Location: DefaultLocation,
			Markdown: true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "json",
		},
	}
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads the config file at path on top of the defaults, then merges a
// project-local .marketdash.yaml from workDir (if any), then applies
// environment overrides. A missing config file is not an error.
func Load(path, workDir string) (*Config, error) {
	cfg := New()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		cfg.path = path
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if workDir != "" {
		overlay := filepath.Join(workDir, overlayFileName)
		if _, statErr := os.Stat(overlay); statErr == nil {
			if mergeErr := ShallowMergeYAML(cfg, overlay); mergeErr != nil {
				return nil, mergeErr
			}
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) error {
	if v, ok := lookupEnv(EnvAPIURL); ok && v != "" {
		c.API.BaseURL = v
	}
	if v, ok := lookupEnv(EnvTimeout); ok && v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		c.API.TimeoutSeconds = secs
	}
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookupEnv(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
	if v, ok := lookupEnv(EnvLogFile); ok && v != "" {
		c.Logging.File = v
	}
	if v, ok := lookupEnv(EnvAutoRefresh); ok {
		c.Refresh.Schedule = v
	}
	if v, ok := lookupEnv(EnvLocation); ok && v != "" {
		c.Display.Location = v
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", c.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url has no host: %q", c.API.BaseURL)
	}
	if c.API.StocksPath == "" || c.API.AnalysisPath == "" {
		return errors.New("api.stocks_path and api.analysis_path must be set")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be > 0, got %d", c.API.TimeoutSeconds)
	}
	if c.Refresh.Schedule != "" {
		if _, err := schedule.ParseSpec(c.Refresh.Schedule); err != nil {
			return fmt.Errorf("refresh.schedule: %w", err)
		}
	}
	if _, err := c.Display.ResolveLocation(); err != nil {
		return fmt.Errorf("display.location: %w", err)
	}
	return nil
}

// Save writes the config as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	c.path = path
	return nil
}

//nolint:gochecknoglobals // Process-wide config set once by the CLI.
var (
	globalConfig   *Config
	globalConfigMu sync.RWMutex
)

// SetGlobalConfig stores cfg as the process-wide configuration.
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig returns the process-wide configuration, or defaults.
func GetGlobalConfig() *Config {
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	if globalConfig == nil {
		return New()
	}
	return globalConfig
}

// ResetGlobalConfigForTest clears the process-wide configuration.
func ResetGlobalConfigForTest() {
	SetGlobalConfig(nil)
}

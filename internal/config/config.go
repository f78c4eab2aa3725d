// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Suite   SuiteConfig   `mapstructure:"suite" yaml:"suite"`
	Report  ReportConfig  `mapstructure:"report" yaml:"report"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the single browser instance owned by a suite run.
type BrowserConfig struct {
	StartURL          string        `mapstructure:"start_url" yaml:"start_url"`
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	Maximized         bool          `mapstructure:"maximized" yaml:"maximized"`
	WindowWidth       int           `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight      int           `mapstructure:"window_height" yaml:"window_height"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	ExecPath          string        `mapstructure:"exec_path" yaml:"exec_path"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	Args              []string      `mapstructure:"args" yaml:"args"`
	LaunchTimeout     time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	// CaptureConsole records console errors and warnings into the report.
	CaptureConsole bool `mapstructure:"capture_console" yaml:"capture_console"`
}

// SuiteConfig tunes the step runner.
type SuiteConfig struct {
	// WaitTimeout bounds polling waits for an element to appear.
	WaitTimeout  time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// SettleDelay lets animations and navigations finish after an interaction.
	SettleDelay time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	// WindowWait is the budget for a new window to show up after a trigger.
	WindowWait time.Duration `mapstructure:"window_wait" yaml:"window_wait"`
	Only       []string      `mapstructure:"only" yaml:"only"`
}

// ReportConfig controls where and how the HTML report is written.
type ReportConfig struct {
	Dir         string `mapstructure:"dir" yaml:"dir"`
	File        string `mapstructure:"file" yaml:"file"`
	Title       string `mapstructure:"title" yaml:"title"`
	Name        string `mapstructure:"name" yaml:"name"`
	JSONSummary bool   `mapstructure:"json_summary" yaml:"json_summary"`
}

// Path returns the absolute location of the HTML report file.
func (r ReportConfig) Path() string {
	return filepath.Join(r.Dir, r.File)
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "sitecheck")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.start_url", "https://www.recodesolutions.com")
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.maximized", true)
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.launch_timeout", "45s")
	v.SetDefault("browser.navigation_timeout", "60s")
	v.SetDefault("browser.action_timeout", "30s")
	v.SetDefault("browser.capture_console", true)

	// -- Suite --
	v.SetDefault("suite.wait_timeout", "10s")
	v.SetDefault("suite.poll_interval", "250ms")
	v.SetDefault("suite.settle_delay", "1s")
	v.SetDefault("suite.window_wait", "2s")

	// -- Report --
	v.SetDefault("report.dir", "Reports")
	v.SetDefault("report.file", "ExtentReport.html")
	v.SetDefault("report.title", "Recode Solutions - Test Report")
	v.SetDefault("report.name", "Recode UI Automation Suite")
	v.SetDefault("report.json_summary", true)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	dir, err := homedir.Expand(cfg.Report.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand report directory %q: %w", cfg.Report.Dir, err)
	}
	cfg.Report.Dir = dir

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.Browser.Validate(); err != nil {
		return fmt.Errorf("browser configuration invalid: %w", err)
	}
	if err := c.Suite.Validate(); err != nil {
		return fmt.Errorf("suite configuration invalid: %w", err)
	}
	if c.Report.Dir == "" || c.Report.File == "" {
		return fmt.Errorf("report.dir and report.file are required")
	}
	if filepath.Ext(c.Report.File) != ".html" {
		return fmt.Errorf("report.file must be an .html file, got %q", c.Report.File)
	}
	return nil
}

// Validate checks the browser settings.
func (b *BrowserConfig) Validate() error {
	if b.StartURL == "" {
		return fmt.Errorf("start_url is required")
	}
	u, err := url.Parse(b.StartURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("start_url %q is not an absolute URL", b.StartURL)
	}
	if b.WindowWidth <= 0 || b.WindowHeight <= 0 {
		return fmt.Errorf("window_width and window_height must be positive")
	}
	if b.LaunchTimeout <= 0 || b.NavigationTimeout <= 0 || b.ActionTimeout <= 0 {
		return fmt.Errorf("launch_timeout, navigation_timeout and action_timeout must be positive durations")
	}
	return nil
}

// Validate checks the suite timing settings.
func (s *SuiteConfig) Validate() error {
	if s.WaitTimeout <= 0 {
		return fmt.Errorf("wait_timeout must be a positive duration")
	}
	if s.PollInterval <= 0 || s.PollInterval > s.WaitTimeout {
		return fmt.Errorf("poll_interval must be positive and no larger than wait_timeout")
	}
	if s.SettleDelay < 0 || s.WindowWait < 0 {
		return fmt.Errorf("settle_delay and window_wait cannot be negative")
	}
	return nil
}

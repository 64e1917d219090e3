package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/juparave/a11yfix/internal/util"
)

// Config holds all application configuration
type Config struct {
	Scan    ScanConfig    `yaml:"scan"`
	AI      AIConfig      `yaml:"ai"`
	Reports ReportsConfig `yaml:"reports"`
	Email   EmailConfig   `yaml:"email"`
	Fix     FixConfig     `yaml:"fix"`
	Verbose bool          `yaml:"-"` // Set via CLI only
	DryRun  bool          `yaml:"-"` // Set via CLI only
}

// ScanConfig controls which detectors run and how pages are fetched
type ScanConfig struct {
	Detectors      []string `yaml:"detectors"` // empty means all
	Disabled       []string `yaml:"disabled"`
	Workers        int      `yaml:"workers"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	UserAgent      string   `yaml:"user_agent"`
}

// AIConfig holds suggestion model settings
type AIConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"` // openai, googleai
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"` // Custom OpenAI-compatible endpoint
}

// ReportsConfig holds report output and storage settings
type ReportsConfig struct {
	OutputDir  string `yaml:"output_dir"`
	Format     string `yaml:"format"`  // markdown, html, json
	Backend    string `yaml:"backend"` // file, redis, none
	RedisURL   string `yaml:"redis_url"`
	KeyPrefix  string `yaml:"key_prefix"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// EmailConfig holds email delivery settings
type EmailConfig struct {
	Enabled      bool    `yaml:"enabled"`
	SMTPHost     string  `yaml:"smtp_host"`
	SMTPPort     int     `yaml:"smtp_port"`
	SMTPUser     string  `yaml:"smtp_user"`
	SMTPPassword string  `yaml:"smtp_password"`
	FromAddress  string  `yaml:"from_address"`
	FromName     string  `yaml:"from_name"`
	ToAddress    string  `yaml:"to_address"`
	MinScore     float64 `yaml:"min_score"` // only mail reports scoring below this
}

// FixConfig holds patch generation settings
type FixConfig struct {
	AutoApplyThreshold float64 `yaml:"auto_apply_threshold"`
	DefaultLang        string  `yaml:"default_lang"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Workers:        4,
			TimeoutSeconds: 30,
			UserAgent:      "a11yfix/1.0 (+accessibility scanner)",
		},
		AI: AIConfig{
			Enabled:  false,
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Reports: ReportsConfig{
			OutputDir:  "reports",
			Format:     "markdown",
			Backend:    "file",
			KeyPrefix:  "a11y:report:",
			TTLSeconds: 30 * 24 * 60 * 60,
		},
		Email: EmailConfig{
			SMTPPort: 587,
			FromName: "Accessibility Scanner",
			MinScore: 90,
		},
		Fix: FixConfig{
			AutoApplyThreshold: 0.8,
			DefaultLang:        "en",
		},
	}
}

// Load reads configuration from file and merges with defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Determine config file path
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil // Use defaults if can't find home
		}
		path = filepath.Join(homeDir, ".config", "a11y", "config.yaml")
	}

	path = util.ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if file doesn't exist
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Reports.OutputDir = util.ExpandPath(cfg.Reports.OutputDir)

	return cfg, nil
}

// Validate checks if the configuration is valid and fills secrets from
// the environment
func (c *Config) Validate() error {
	if c.Scan.Workers < 1 {
		c.Scan.Workers = 1
	}
	if c.Scan.TimeoutSeconds <= 0 {
		return fmt.Errorf("scan.timeout_seconds must be positive")
	}

	switch c.Reports.Format {
	case "markdown", "html", "json":
	default:
		return fmt.Errorf("unknown report format %q (want markdown, html or json)", c.Reports.Format)
	}

	if c.Reports.RedisURL == "" {
		c.Reports.RedisURL = os.Getenv("A11Y_REDIS_URL")
	}
	switch c.Reports.Backend {
	case "file", "none", "":
	case "redis":
		if c.Reports.RedisURL == "" {
			return fmt.Errorf("redis_url is required when reports.backend is redis")
		}
	default:
		return fmt.Errorf("unknown report backend %q", c.Reports.Backend)
	}

	if c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("smtp_host is required when email is enabled")
		}
		if c.Email.ToAddress == "" {
			return fmt.Errorf("to_address is required when email is enabled")
		}
	}

	if c.Fix.AutoApplyThreshold < 0 || c.Fix.AutoApplyThreshold > 1 {
		return fmt.Errorf("fix.auto_apply_threshold must be within [0, 1]")
	}
	if c.Fix.DefaultLang == "" {
		c.Fix.DefaultLang = "en"
	}

	if c.AI.Enabled && c.AI.APIKey == "" {
		// Check environment variables
		switch c.AI.Provider {
		case "googleai":
			if key := os.Getenv("GEMINI_API_KEY"); key != "" {
				c.AI.APIKey = key
			} else {
				c.AI.APIKey = os.Getenv("GOOGLE_API_KEY")
			}
		default:
			c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	return nil
}

// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type StoreConfig struct {
	Region      string `yaml:"region"`
	TablePrefix string `yaml:"table_prefix"`
	// Endpoint overrides the service endpoint, for dynamodb-local.
	Endpoint        string `yaml:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"-"` // Loaded from environment
	SecretAccessKey string `yaml:"-"` // Loaded from environment
}

type MediaConfig struct {
	Bucket    string        `yaml:"bucket"`
	URLExpiry time.Duration `yaml:"url_expiry"`
}

type MonitorConfig struct {
	Cron     string        `yaml:"cron"`
	Cooldown time.Duration `yaml:"cooldown"`
}

type NotifyConfig struct {
	WebhookURL string `yaml:"-"` // Loaded from environment
}

type RulesConfig struct {
	MaxAlliedUniversities int `yaml:"max_allied_universities"`
}

type ScheduleConfig struct {
	// TimetablePath overrides the embedded timetable when set.
	TimetablePath string `yaml:"timetable_path,omitempty"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"app"`

	Store    StoreConfig    `yaml:"store"`
	Media    MediaConfig    `yaml:"media"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Notify   NotifyConfig   `yaml:"notify"`
	Rules    RulesConfig    `yaml:"rules"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Read and parse YAML config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Load sensitive values from environment
	cfg.Store.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Store.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	cfg.Notify.WebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")

	cfg.applyDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Store.Region == "" {
		c.Store.Region = "eu-west-2"
	}
	if c.Media.URLExpiry == 0 {
		c.Media.URLExpiry = 15 * time.Minute
	}
	if c.Monitor.Cron == "" {
		c.Monitor.Cron = "0 * * * *"
	}
	if c.Monitor.Cooldown == 0 {
		c.Monitor.Cooldown = 6 * time.Hour
	}
	if c.Rules.MaxAlliedUniversities == 0 {
		c.Rules.MaxAlliedUniversities = 2
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Media.URLExpiry < 0 {
		return fmt.Errorf("media url expiry must be positive")
	}
	if c.Monitor.Cooldown < 0 {
		return fmt.Errorf("monitor cooldown must be positive")
	}
	if c.Rules.MaxAlliedUniversities < 0 {
		return fmt.Errorf("allied university cap must be positive")
	}
	return nil
}

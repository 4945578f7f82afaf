package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Site is the Stack Exchange API site name, e.g. stackoverflow.
	Site string `yaml:"site"`
	// DomainTag is always added to searches to keep them within the host
	// language's ecosystem.
	DomainTag string `yaml:"domain_tag"`
	APIKey    string `yaml:"api_key,omitempty"`
	APIURL    string `yaml:"api_url"`
	// AnswerBase and AskURL default to the site's own URLs when empty.
	AnswerBase        string        `yaml:"answer_base,omitempty"`
	AskURL            string        `yaml:"ask_url,omitempty"`
	RequireAccepted   *bool         `yaml:"require_accepted,omitempty"`
	IgnoredCategories []string      `yaml:"ignored_categories"`
	Timeout           time.Duration `yaml:"timeout"`
	RateLimit         float64       `yaml:"rate_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		Site:              "stackoverflow",
		DomainTag:         "python",
		APIURL:            "https://api.stackexchange.com/2.2",
		IgnoredCategories: []string{"KeyboardInterrupt", "KeyError", "AttributeError", "context.Canceled"},
		RateLimit:         10,
	}
}

// DefaultPath is config.yaml under the user's configuration directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "laze", "config.yaml")
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error. Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if site := os.Getenv("LAZE_SITE"); site != "" {
		c.Site = site
	}
	if tag := os.Getenv("LAZE_DOMAIN_TAG"); tag != "" {
		c.DomainTag = tag
	}
	if key := os.Getenv("STACKEXCHANGE_KEY"); key != "" {
		c.APIKey = key
	}
	if u := os.Getenv("LAZE_API_URL"); u != "" {
		c.APIURL = u
	}
	if v := os.Getenv("LAZE_ACCEPTED"); v != "" {
		accepted, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LAZE_ACCEPTED: %w", err)
		}
		c.RequireAccepted = &accepted
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Site == "" {
		return fmt.Errorf("site is required")
	}
	if c.DomainTag == "" {
		return fmt.Errorf("domain_tag is required")
	}
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}

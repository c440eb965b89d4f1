package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Proxy    ProxyConfig    `yaml:"proxy"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"PORT" default:"3000"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"5m"`
}

// ProviderConfig holds upstream provider API configuration.
type ProviderConfig struct {
	TikwmBaseURL string        `yaml:"tikwm_base_url" envconfig:"TIKWM_BASE_URL" default:"https://www.tikwm.com"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"PROVIDER_TIMEOUT" default:"30s"`
	UserAgent    string        `yaml:"user_agent" envconfig:"PROVIDER_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
}

// ProxyConfig holds media and image proxy configuration.
type ProxyConfig struct {
	// FetchTimeout bounds a single media fetch end to end.
	FetchTimeout time.Duration `yaml:"fetch_timeout" envconfig:"PROXY_FETCH_TIMEOUT" default:"2m"`
	// ImageTimeout bounds a thumbnail fetch end to end.
	ImageTimeout time.Duration `yaml:"image_timeout" envconfig:"PROXY_IMAGE_TIMEOUT" default:"10s"`
	UserAgent    string        `yaml:"user_agent" envconfig:"PROXY_USER_AGENT" default:"Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36"`
	Referer      string        `yaml:"referer" envconfig:"PROXY_REFERER" default:"https://www.tiktok.com/"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Provider.TikwmBaseURL == "" {
		return fmt.Errorf("TIKWM_BASE_URL is required")
	}
	if c.Proxy.FetchTimeout <= 0 {
		return fmt.Errorf("PROXY_FETCH_TIMEOUT must be positive")
	}
	if c.Proxy.ImageTimeout <= 0 {
		return fmt.Errorf("PROXY_IMAGE_TIMEOUT must be positive")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

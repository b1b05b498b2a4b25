// Package config loads orchestrator configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/riaz37/meetgenie-sub001/pkg/platform"
)

// ZoomConfig holds Zoom SDK credentials.
type ZoomConfig struct {
	SDKKey    string `yaml:"sdk_key"`
	SDKSecret string `yaml:"sdk_secret"`
	BaseURL   string `yaml:"base_url"`
}

// OAuthPlatformConfig holds client-credentials settings for Teams and
// Google Meet.
type OAuthPlatformConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TokenURL     string `yaml:"token_url"`
	BaseURL      string `yaml:"base_url"`
}

// WebexConfig holds Webex access-token settings.
type WebexConfig struct {
	AccessToken  string `yaml:"access_token"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	BaseURL      string `yaml:"base_url"`
}

// PlatformsConfig groups the per-platform credential sections. An empty
// section means no credentials are configured for that platform, which is
// a valid state.
type PlatformsConfig struct {
	Zoom       ZoomConfig          `yaml:"zoom"`
	Teams      OAuthPlatformConfig `yaml:"teams"`
	GoogleMeet OAuthPlatformConfig `yaml:"google_meet"`
	Webex      WebexConfig         `yaml:"webex"`
}

// WebSocketConfig holds settings for the audio streaming endpoint.
type WebSocketConfig struct {
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
	PingIntervalSeconds int `yaml:"ping_interval_seconds"`
	QueueSize           int `yaml:"queue_size"`
}

// WriteTimeout returns the write timeout as a duration.
func (w WebSocketConfig) WriteTimeout() time.Duration {
	return time.Duration(w.WriteTimeoutSeconds) * time.Second
}

// PingInterval returns the ping interval as a duration.
func (w WebSocketConfig) PingInterval() time.Duration {
	return time.Duration(w.PingIntervalSeconds) * time.Second
}

// Config is the complete orchestrator configuration.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	LogLevel string `yaml:"log_level"`

	// AdapterTimeoutSeconds bounds join/leave/record adapter calls.
	AdapterTimeoutSeconds int `yaml:"adapter_timeout_seconds"`
	// ProbeTimeoutSeconds bounds authentication and health probes.
	ProbeTimeoutSeconds int `yaml:"probe_timeout_seconds"`

	Platforms PlatformsConfig `yaml:"platforms"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

// AdapterTimeout returns the adapter operation timeout as a duration.
func (c *Config) AdapterTimeout() time.Duration {
	return time.Duration(c.AdapterTimeoutSeconds) * time.Second
}

// ProbeTimeout returns the probe timeout as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

func defaults() *Config {
	return &Config{
		HTTPAddr:              ":8080",
		LogLevel:              "info",
		AdapterTimeoutSeconds: 30,
		ProbeTimeoutSeconds:   10,
		WebSocket: WebSocketConfig{
			WriteTimeoutSeconds: 5,
			PingIntervalSeconds: 30,
			QueueSize:           1000,
		},
	}
}

// Load reads configuration from path (optional; empty path skips the
// file), then applies environment-variable overrides on top.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if timeout := os.Getenv("ADAPTER_TIMEOUT_SECONDS"); timeout != "" {
		if seconds, err := strconv.Atoi(timeout); err == nil {
			cfg.AdapterTimeoutSeconds = seconds
		}
	}
	if timeout := os.Getenv("PROBE_TIMEOUT_SECONDS"); timeout != "" {
		if seconds, err := strconv.Atoi(timeout); err == nil {
			cfg.ProbeTimeoutSeconds = seconds
		}
	}
	if key := os.Getenv("ZOOM_SDK_KEY"); key != "" {
		cfg.Platforms.Zoom.SDKKey = key
	}
	if secret := os.Getenv("ZOOM_SDK_SECRET"); secret != "" {
		cfg.Platforms.Zoom.SDKSecret = secret
	}
	if id := os.Getenv("TEAMS_CLIENT_ID"); id != "" {
		cfg.Platforms.Teams.ClientID = id
	}
	if secret := os.Getenv("TEAMS_CLIENT_SECRET"); secret != "" {
		cfg.Platforms.Teams.ClientSecret = secret
	}
	if url := os.Getenv("TEAMS_TOKEN_URL"); url != "" {
		cfg.Platforms.Teams.TokenURL = url
	}
	if id := os.Getenv("MEET_CLIENT_ID"); id != "" {
		cfg.Platforms.GoogleMeet.ClientID = id
	}
	if secret := os.Getenv("MEET_CLIENT_SECRET"); secret != "" {
		cfg.Platforms.GoogleMeet.ClientSecret = secret
	}
	if url := os.Getenv("MEET_TOKEN_URL"); url != "" {
		cfg.Platforms.GoogleMeet.TokenURL = url
	}
	if token := os.Getenv("WEBEX_ACCESS_TOKEN"); token != "" {
		cfg.Platforms.Webex.AccessToken = token
	}
	if id := os.Getenv("WEBEX_CLIENT_ID"); id != "" {
		cfg.Platforms.Webex.ClientID = id
	}
	if secret := os.Getenv("WEBEX_CLIENT_SECRET"); secret != "" {
		cfg.Platforms.Webex.ClientSecret = secret
	}
}

// Validate checks the non-credential settings. Missing credentials for any
// platform are deliberately not an error.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return ErrMissingHTTPAddr
	}
	if c.AdapterTimeoutSeconds <= 0 || c.ProbeTimeoutSeconds <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Credentials maps the configured credential sections to per-platform
// credentials, omitting platforms with nothing configured.
func (c *Config) Credentials() map[platform.Platform]platform.Credentials {
	out := make(map[platform.Platform]platform.Credentials)

	if c.Platforms.Zoom.SDKKey != "" || c.Platforms.Zoom.SDKSecret != "" {
		out[platform.Zoom] = platform.APIKeyCredentials(c.Platforms.Zoom.SDKKey, c.Platforms.Zoom.SDKSecret)
	}
	if c.Platforms.Teams.ClientID != "" || c.Platforms.Teams.ClientSecret != "" {
		out[platform.Teams] = platform.OAuthClientCredentials(
			c.Platforms.Teams.ClientID, c.Platforms.Teams.ClientSecret, c.Platforms.Teams.TokenURL)
	}
	if c.Platforms.GoogleMeet.ClientID != "" || c.Platforms.GoogleMeet.ClientSecret != "" {
		out[platform.GoogleMeet] = platform.OAuthClientCredentials(
			c.Platforms.GoogleMeet.ClientID, c.Platforms.GoogleMeet.ClientSecret, c.Platforms.GoogleMeet.TokenURL)
	}
	if c.Platforms.Webex.AccessToken != "" {
		out[platform.Webex] = platform.AccessTokenCredentials(
			c.Platforms.Webex.AccessToken, c.Platforms.Webex.ClientID, c.Platforms.Webex.ClientSecret)
	}
	return out
}

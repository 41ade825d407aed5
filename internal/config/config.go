// Package config provides file-based configuration for the billing server.
// XML is the default format; files ending in .yaml or .yml are read as YAML.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"WaterBilling" yaml:"-"`

	Server   ServerConfig   `xml:"Server" yaml:"server"`
	Relay    RelayConfig    `xml:"Relay" yaml:"relay"`
	Mega     MegaConfig     `xml:"Mega" yaml:"mega"`
	S3       S3Config       `xml:"S3" yaml:"s3"`
	SMS      SMSConfig      `xml:"SMS" yaml:"sms"`
	Advanced AdvancedConfig `xml:"Advanced" yaml:"advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port" yaml:"port"`
	BindAddress  string `xml:"BindAddress" yaml:"bindAddress"`
	EnableCORS   bool   `xml:"EnableCORS" yaml:"enableCors"`
	AllowOrigins string `xml:"AllowOrigins" yaml:"allowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds" yaml:"readTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds" yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds" yaml:"idleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit" yaml:"bodyLimit"`
}

// RelayConfig contains the remote upload relay settings. Timeouts are in
// milliseconds and depend on the deployment network.
type RelayConfig struct {
	Provider             string `xml:"Provider" yaml:"provider"`
	AuthTimeoutMs        int    `xml:"AuthTimeoutMs" yaml:"authTimeoutMs"`
	UploadTimeoutMs      int    `xml:"UploadTimeoutMs" yaml:"uploadTimeoutMs"`
	MaxConcurrentUploads int    `xml:"MaxConcurrentUploads" yaml:"maxConcurrentUploads"` // 0 = unlimited
}

// MegaConfig contains MEGA client settings
type MegaConfig struct {
	APIURL             string `xml:"APIURL" yaml:"apiUrl"` // empty = public MEGA API
	Retries            int    `xml:"Retries" yaml:"retries"`
	HTTPTimeoutSeconds int    `xml:"HTTPTimeoutSeconds" yaml:"httpTimeoutSeconds"`
}

// S3Config contains S3-compatible provider settings
type S3Config struct {
	Endpoint  string `xml:"Endpoint" yaml:"endpoint"`
	Bucket    string `xml:"Bucket" yaml:"bucket"`
	Region    string `xml:"Region" yaml:"region"`
	KeyPrefix string `xml:"KeyPrefix" yaml:"keyPrefix"`
	UseSSL    bool   `xml:"UseSSL" yaml:"useSSL"`
}

// SMSConfig contains SMS endpoint settings
type SMSConfig struct {
	RatePerMinute int `xml:"RatePerMinute" yaml:"ratePerMinute"` // 0 = unlimited
}

// AdvancedConfig contains logging options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel" yaml:"logLevel"`
	LogFormat            string `xml:"LogFormat" yaml:"logFormat"` // text or json
	EnableRequestLogging bool   `xml:"EnableRequestLogging" yaml:"enableRequestLogging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         10000,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 120,
			IdleTimeout:  120,
			BodyLimit:    "10M",
		},
		Relay: RelayConfig{
			Provider:             "mega",
			AuthTimeoutMs:        20000,
			UploadTimeoutMs:      60000,
			MaxConcurrentUploads: 0,
		},
		Mega: MegaConfig{
			Retries:            3,
			HTTPTimeoutSeconds: 60,
		},
		S3: S3Config{
			Region:    "us-east-1",
			KeyPrefix: "billing",
			UseSSL:    true,
		},
		SMS: SMSConfig{
			RatePerMinute: 30,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			LogFormat:            "text",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from configPath, writing the defaults there
// first if the file does not exist.
func LoadConfig(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		return config, config.Validate()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(configPath) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = xml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration in the format implied by the file extension
func (c *AppConfig) Save(configPath string) error {
	var content []byte
	if isYAML(configPath) {
		output, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		content = append([]byte("# Water Billing Server configuration (auto-generated on first run)\n"), output...)
	} else {
		output, err := xml.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		header := []byte(xml.Header + "\n<!-- Water Billing Server Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
		content = append(header, output...)
	}

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects settings the server cannot run with
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Relay.AuthTimeoutMs <= 0 {
		return fmt.Errorf("relay auth timeout must be positive, got %dms", c.Relay.AuthTimeoutMs)
	}
	if c.Relay.UploadTimeoutMs <= 0 {
		return fmt.Errorf("relay upload timeout must be positive, got %dms", c.Relay.UploadTimeoutMs)
	}
	if c.Relay.MaxConcurrentUploads < 0 {
		return fmt.Errorf("relay max concurrent uploads must not be negative")
	}

	switch strings.ToLower(c.Relay.Provider) {
	case "mega":
	case "s3":
		if c.S3.Endpoint == "" || c.S3.Bucket == "" {
			return fmt.Errorf("s3 provider requires endpoint and bucket")
		}
	default:
		return fmt.Errorf("unknown relay provider: %q", c.Relay.Provider)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if provider := os.Getenv("RELAY_PROVIDER"); provider != "" {
		c.Relay.Provider = provider
	}
	if ms := os.Getenv("RELAY_AUTH_TIMEOUT_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil {
			c.Relay.AuthTimeoutMs = v
		}
	}
	if ms := os.Getenv("RELAY_UPLOAD_TIMEOUT_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil {
			c.Relay.UploadTimeoutMs = v
		}
	}

	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		c.S3.Endpoint = endpoint
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		c.S3.Bucket = bucket
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// AuthTimeout returns the relay login budget
func (c *AppConfig) AuthTimeout() time.Duration {
	return time.Duration(c.Relay.AuthTimeoutMs) * time.Millisecond
}

// UploadTimeout returns the relay transfer budget
func (c *AppConfig) UploadTimeout() time.Duration {
	return time.Duration(c.Relay.UploadTimeoutMs) * time.Millisecond
}

// DefaultPath returns the config file path next to the executable
func DefaultPath() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(exePath), "WaterBilling.config"), nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

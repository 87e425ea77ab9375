// Package config loads the settings shared by the qschema tools: log level,
// payload size limit and telemetry export.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMaxPayloadBytes bounds the size of a decoded parameter payload.
const DefaultMaxPayloadBytes = 64 << 20

// Config holds the tool configuration.
type Config struct {
	LogLevel        string          `yaml:"log_level" json:"log_level"`
	MaxPayloadBytes int64           `yaml:"max_payload_bytes" json:"max_payload_bytes"`
	Telemetry       TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled" json:"enabled"`
	OTLPEndpoint string `yaml:"otlp_endpoint" json:"otlp_endpoint"` // host:port, gRPC
	Insecure     bool   `yaml:"insecure" json:"insecure"`
	ServiceName  string `yaml:"service_name" json:"service_name"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:        "INFO",
		MaxPayloadBytes: DefaultMaxPayloadBytes,
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "localhost:4317",
			ServiceName:  "qschema",
		},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// QSCHEMA_CONFIG (if any) and then environment overrides:
//
//	QSCHEMA_LOG_LEVEL          DEBUG | INFO | WARN | ERROR
//	QSCHEMA_MAX_PAYLOAD_BYTES  positive integer
//	QSCHEMA_TELEMETRY          "true" enables OTLP export
//	QSCHEMA_OTLP_ENDPOINT      host:port of the collector
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("QSCHEMA_CONFIG"); path != "" {
		if err := cfg.merge(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadFile reads a YAML configuration on top of the defaults, without
// consulting the environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.merge(path); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("QSCHEMA_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("QSCHEMA_MAX_PAYLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("QSCHEMA_MAX_PAYLOAD_BYTES: %w", err)
		}
		c.MaxPayloadBytes = n
	}
	if v := os.Getenv("QSCHEMA_TELEMETRY"); v != "" {
		c.Telemetry.Enabled = v == "true"
	}
	if v := os.Getenv("QSCHEMA_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.OTLPEndpoint = v
	}
	return nil
}

// Validate rejects settings the tools cannot run with.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxPayloadBytes <= 0 {
		return fmt.Errorf("config: max_payload_bytes must be positive, got %d", c.MaxPayloadBytes)
	}
	if c.Telemetry.Enabled && c.Telemetry.OTLPEndpoint == "" {
		return fmt.Errorf("config: telemetry enabled without an OTLP endpoint")
	}
	return nil
}

// Level returns the slog level for LogLevel, INFO if it is unknown.
func (c *Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
	return l, nil
}

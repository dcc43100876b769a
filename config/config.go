// Package config loads the paywalld service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of the service configuration.
type Config struct {
	Server struct {
		Port          int    `yaml:"port" validate:"required,gt=0,lte=65535"`
		LogLevel      string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
		EnableMetrics bool   `yaml:"enable_metrics"`
	} `yaml:"server"`

	Network string `yaml:"network" validate:"omitempty,oneof=mainnet testnet"`

	Oracle struct {
		Kind         string `yaml:"kind" validate:"required,oneof=stacks evm static"`
		StacksAPIURL string `yaml:"stacks_api_url" validate:"required_if=Kind stacks,omitempty,url"`
		EVMRPCURL    string `yaml:"evm_rpc_url" validate:"required_if=Kind evm,omitempty,url"`
		EVMCurrency  string `yaml:"evm_currency"`
		Timeout      string `yaml:"timeout"`
	} `yaml:"oracle"`

	Verification struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"verification"`
}

// ParsedConfig carries the config with duration strings parsed.
type ParsedConfig struct {
	Config
	OracleTimeout time.Duration
	VerifyTimeout time.Duration
}

// Load reads, validates and parses a YAML configuration file.
func Load(path string) (*ParsedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	parsed := &ParsedConfig{Config: cfg}

	parsed.OracleTimeout, err = parseDuration(cfg.Oracle.Timeout, 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid oracle.timeout: %w", err)
	}
	parsed.VerifyTimeout, err = parseDuration(cfg.Verification.Timeout, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid verification.timeout: %w", err)
	}

	if parsed.Network == "" {
		parsed.Network = "mainnet"
	}
	if parsed.Server.LogLevel == "" {
		parsed.Server.LogLevel = "info"
	}

	return parsed, nil
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}

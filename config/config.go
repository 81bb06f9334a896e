package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Rhymond/go-money"
	"gopkg.in/yaml.v3"

	"github.com/investsim/ledger/internal/cron"
	"github.com/investsim/ledger/market"
)

// Config represents the complete ledger configuration
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Prices   PricesConfig   `json:"prices" yaml:"prices"`
	Deposits DepositsConfig `json:"deposits" yaml:"deposits"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Server   ServerConfig   `json:"server" yaml:"server"`
}

// AccountConfig contains account provisioning parameters
type AccountConfig struct {
	Currency       string       `json:"currency" yaml:"currency"`
	InitialFunding market.Money `json:"initial_funding" yaml:"initial_funding"`
}

// Store types accepted by StoreConfig.Type.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// StoreConfig selects and configures the ledger store
type StoreConfig struct {
	Type         string `json:"type" yaml:"type"` // "memory", "sqlite" or "postgres"
	DBPath       string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	DSN          string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	MaxOpenConns int    `json:"max_open_conns,omitempty" yaml:"max_open_conns,omitempty"`
}

// PricesConfig controls the simulated price updates
type PricesConfig struct {
	WalkEnabled    bool    `json:"walk_enabled" yaml:"walk_enabled"`
	WalkSchedule   string  `json:"walk_schedule" yaml:"walk_schedule"` // e.g. "@every 30s"
	MaxStepPercent float64 `json:"max_step_percent" yaml:"max_step_percent"`
	SeedCatalog    bool    `json:"seed_catalog" yaml:"seed_catalog"`
}

// MaxStep returns MaxStepPercent as a Percent.
func (p PricesConfig) MaxStep() market.Percent { return market.P(p.MaxStepPercent) }

// DepositsConfig controls the fixed deposit maturity sweep
type DepositsConfig struct {
	MaturitySchedule string `json:"maturity_schedule" yaml:"maturity_schedule"`
}

// LogConfig contains logger parameters
type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Encoding    string `json:"encoding" yaml:"encoding"` // "console" or "json"
	Development bool   `json:"development" yaml:"development"`
}

// ServerConfig contains HTTP API parameters
type ServerConfig struct {
	HTTPAddr string `json:"http_addr" yaml:"http_addr"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if money.GetCurrency(c.Account.Currency) == nil {
		return fmt.Errorf("account.currency %q is not an ISO 4217 code", c.Account.Currency)
	}
	if !c.Account.InitialFunding.IsPositive() {
		return fmt.Errorf("account.initial_funding must be positive")
	}

	switch c.Store.Type {
	case StoreMemory:
	case StoreSQLite:
		if c.Store.DBPath == "" {
			return fmt.Errorf("store db_path required for sqlite type")
		}
	case StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store dsn required for postgres type")
		}
	default:
		return fmt.Errorf("store.type must be 'memory', 'sqlite' or 'postgres'")
	}
	if c.Store.MaxOpenConns < 0 {
		return fmt.Errorf("store.max_open_conns must not be negative")
	}

	if c.Prices.MaxStepPercent <= 0 || c.Prices.MaxStepPercent >= 100 {
		return fmt.Errorf("prices.max_step_percent must be between 0 and 100")
	}
	if c.Prices.WalkEnabled {
		if err := cron.Validate(c.Prices.WalkSchedule); err != nil {
			return fmt.Errorf("prices.walk_schedule: %w", err)
		}
	}
	if c.Deposits.MaturitySchedule != "" {
		if err := cron.Validate(c.Deposits.MaturitySchedule); err != nil {
			return fmt.Errorf("deposits.maturity_schedule: %w", err)
		}
	}

	if c.Log.Encoding != "" && c.Log.Encoding != "console" && c.Log.Encoding != "json" {
		return fmt.Errorf("log.encoding must be 'console' or 'json'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Currency:       "USD",
			InitialFunding: market.MustMoney("10000.00"),
		},
		Store: StoreConfig{
			Type:   StoreSQLite,
			DBPath: "./ledger.db",
		},
		Prices: PricesConfig{
			WalkEnabled:    true,
			WalkSchedule:   "@every 30s",
			MaxStepPercent: 2,
			SeedCatalog:    true,
		},
		Deposits: DepositsConfig{
			MaturitySchedule: "@every 1h",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Server: ServerConfig{
			HTTPAddr: ":8080",
		},
	}
}

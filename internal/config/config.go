package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Table  TableSettings  `hcl:"table,block"`
	Store  StoreSettings  `hcl:"store,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	FrontendURL string `hcl:"frontend_url,optional"`
	LogLevel    string `hcl:"log_level,optional"`
}

// TableSettings holds the defaults for new tables
type TableSettings struct {
	StartingMoney int    `hcl:"starting_money,optional"`
	Seed          *int64 `hcl:"seed,optional"`
}

// StoreSettings selects where table state is kept
type StoreSettings struct {
	Driver string `hcl:"driver,optional"`
	DSN    string `hcl:"dsn,optional"`
}

// Store drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerSettings{
			Address:     ":8080",
			FrontendURL: "http://localhost:5173",
			LogLevel:    "info",
		},
		Table: TableSettings{
			StartingMoney: 1000,
		},
		Store: StoreSettings{
			Driver: DriverMemory,
		},
	}
}

// Load reads an HCL configuration file. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.FrontendURL == "" {
		c.Server.FrontendURL = def.Server.FrontendURL
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}
	if c.Table.StartingMoney == 0 {
		c.Table.StartingMoney = def.Table.StartingMoney
	}
	if c.Store.Driver == "" {
		c.Store.Driver = def.Store.Driver
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Server.LogLevel)
	}

	if c.Table.StartingMoney <= 0 {
		return fmt.Errorf("starting money must be positive, got %d", c.Table.StartingMoney)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store driver %s requires a dsn", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-ecomgen.
// Configuration is loaded from a config file and ECOMGEN_* environment
// variables. CLI flags take precedence over both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/generate"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
)

// EnvPrefix is the prefix of environment variable overrides, e.g.
// ECOMGEN_STORE_CONNECTION.
const EnvPrefix = "ECOMGEN"

// Config holds all configuration for pgedge-ecomgen.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	Store    StoreConfig    `mapstructure:"store"`
	Generate GenerateConfig `mapstructure:"generate"`
	Output   OutputConfig   `mapstructure:"output"`
	Queries  QueriesConfig  `mapstructure:"queries"`
	Report   ReportConfig   `mapstructure:"report"`
}

// StoreConfig selects the relational store.
type StoreConfig struct {
	// Driver is a registered store backend: sqlite or postgres.
	Driver string `mapstructure:"driver"`

	// Connection is a SQLite file path or a PostgreSQL connection string.
	Connection string `mapstructure:"connection"`
}

// GenerateConfig holds the dataset generation parameters.
type GenerateConfig struct {
	UserCount        int      `mapstructure:"user_count"`
	ProductCount     int      `mapstructure:"product_count"`
	OrderCount       int      `mapstructure:"order_count"`
	MaxItemsPerOrder int      `mapstructure:"max_items_per_order"`
	MaxQuantity      int      `mapstructure:"max_quantity"`
	Seed             uint64   `mapstructure:"seed"`
	PaymentMethods   []string `mapstructure:"payment_methods"`

	// ReferenceDate is the dataset's "today" as YYYY-MM-DD.
	ReferenceDate string `mapstructure:"reference_date"`
}

// OutputConfig controls where interchange files are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// QueriesConfig points at a directory of .sql files replacing the built-in
// analytics queries. Empty means the built-in set.
type QueriesConfig struct {
	Dir string `mapstructure:"dir"`
}

// ReportConfig controls the status report.
type ReportConfig struct {
	PreviewRows int `mapstructure:"preview_rows"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	opts := generate.DefaultOptions()
	return &Config{
		LogLevel: "info",
		Store: StoreConfig{
			Driver:     "sqlite",
			Connection: filepath.Join("db", "ecom.db"),
		},
		Generate: GenerateConfig{
			UserCount:        opts.UserCount,
			ProductCount:     opts.ProductCount,
			OrderCount:       opts.OrderCount,
			MaxItemsPerOrder: opts.MaxItemsPerOrder,
			MaxQuantity:      opts.MaxQuantity,
			Seed:             opts.Seed,
			PaymentMethods:   opts.PaymentMethods,
			ReferenceDate:    opts.ReferenceDate.Format(dataset.DateLayout),
		},
		Output: OutputConfig{Dir: "data"},
		Report: ReportConfig{PreviewRows: 10},
	}
}

// setDefaults registers every key with viper so AutomaticEnv can override
// keys that are absent from the config file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("store.driver", cfg.Store.Driver)
	v.SetDefault("store.connection", cfg.Store.Connection)
	v.SetDefault("generate.user_count", cfg.Generate.UserCount)
	v.SetDefault("generate.product_count", cfg.Generate.ProductCount)
	v.SetDefault("generate.order_count", cfg.Generate.OrderCount)
	v.SetDefault("generate.max_items_per_order", cfg.Generate.MaxItemsPerOrder)
	v.SetDefault("generate.max_quantity", cfg.Generate.MaxQuantity)
	v.SetDefault("generate.seed", cfg.Generate.Seed)
	v.SetDefault("generate.payment_methods", cfg.Generate.PaymentMethods)
	v.SetDefault("generate.reference_date", cfg.Generate.ReferenceDate)
	v.SetDefault("output.dir", cfg.Output.Dir)
	v.SetDefault("queries.dir", cfg.Queries.Dir)
	v.SetDefault("report.preview_rows", cfg.Report.PreviewRows)
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-ecomgen.yaml
// 3. ~/.config/pgedge-ecomgen/pgedge-ecomgen.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("pgedge-ecomgen")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-ecomgen"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("%w: error reading config file: %v", dataset.ErrConfiguration, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: error parsing config: %v", dataset.ErrConfiguration, err)
	}

	return cfg, nil
}

// ValidateStore checks configuration required to open the store.
func (c *Config) ValidateStore() error {
	if c.Store.Driver == "" {
		return fmt.Errorf("%w: store driver is required", dataset.ErrConfiguration)
	}
	if !slices.Contains(store.Drivers(), c.Store.Driver) {
		return fmt.Errorf("%w: unknown store driver %q (available: %s)",
			dataset.ErrConfiguration, c.Store.Driver, strings.Join(store.Drivers(), ", "))
	}
	if c.Store.Connection == "" {
		return fmt.Errorf("%w: store connection is required", dataset.ErrConfiguration)
	}
	return nil
}

// ValidateGenerate checks configuration required for the generate command.
func (c *Config) ValidateGenerate() error {
	if c.Output.Dir == "" {
		return fmt.Errorf("%w: output directory is required", dataset.ErrConfiguration)
	}
	opts, err := c.GenerateOptions()
	if err != nil {
		return err
	}
	return opts.Validate()
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if c.Output.Dir == "" {
		return fmt.Errorf("%w: output directory is required", dataset.ErrConfiguration)
	}
	return c.ValidateStore()
}

// ValidateRun checks configuration required to run the whole pipeline.
func (c *Config) ValidateRun() error {
	if err := c.ValidateGenerate(); err != nil {
		return err
	}
	return c.ValidateStore()
}

// ValidateReport checks configuration required for the report command.
func (c *Config) ValidateReport() error {
	if err := c.ValidateLoad(); err != nil {
		return err
	}
	if c.Report.PreviewRows < 1 {
		return fmt.Errorf("%w: report preview_rows must be at least 1", dataset.ErrConfiguration)
	}
	return nil
}

// GenerateOptions converts the generate section to generator options.
func (c *Config) GenerateOptions() (generate.Options, error) {
	g := c.Generate
	opts := generate.Options{
		UserCount:        g.UserCount,
		ProductCount:     g.ProductCount,
		OrderCount:       g.OrderCount,
		MaxItemsPerOrder: g.MaxItemsPerOrder,
		MaxQuantity:      g.MaxQuantity,
		Seed:             g.Seed,
		PaymentMethods:   g.PaymentMethods,
	}
	if g.ReferenceDate != "" {
		d, err := time.Parse(dataset.DateLayout, g.ReferenceDate)
		if err != nil {
			return opts, fmt.Errorf("%w: reference_date %q is not YYYY-MM-DD", dataset.ErrConfiguration, g.ReferenceDate)
		}
		opts.ReferenceDate = d
	}
	return opts, nil
}

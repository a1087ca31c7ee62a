//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-ecomgen.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-ecomgen/internal/config"
	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
	"github.com/pgEdge/pgedge-ecomgen/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	envFile    string
	driver     string
	connection string
	outputDir  string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-ecomgen",
		Short: "Synthetic e-commerce data pipeline",
		Long: `pgedge-ecomgen generates a referentially consistent synthetic
e-commerce dataset (users, products, orders, order items and payments),
writes it as CSV files with a checksummed manifest, loads it into SQLite
or PostgreSQL in a single transaction and reports on the result.

The same seed always produces byte-identical files.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-ecomgen.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"dotenv file with ECOMGEN_* overrides")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "",
		"store driver (sqlite, postgres)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"SQLite database path or PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output", "",
		"directory for the CSV files and manifest")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(tablesCmd)
}

func initConfig() error {
	// The environment wins over the dotenv file
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: failed to load %s: %v", dataset.ErrConfiguration, envFile, err)
		}
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if driver != "" {
		cfg.Store.Driver = driver
	}
	if connection != "" {
		cfg.Store.Connection = connection
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:   cfg.LogLevel,
		Pretty:  true,
		NoColor: color.NoColor,
	})

	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// openStore validates the store settings and connects.
func openStore(ctx context.Context) (store.Store, error) {
	if err := cfg.ValidateStore(); err != nil {
		return nil, err
	}
	s, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.Connection)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	return s, nil
}

func closeStore(s store.Store) {
	if err := s.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close store")
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the entity tables and store drivers",
	Long: `List every entity table in load order with its columns, primary key
and foreign keys, followed by the registered store drivers.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		color.New(color.FgCyan, color.Bold).Fprintln(out, "Entity tables (load order):")

		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "  TABLE\tKEY\tREFERENCES\tCOLUMNS")
		for _, t := range dataset.Catalog {
			refs := make([]string, 0, len(t.ForeignKeys))
			for _, fk := range t.ForeignKeys {
				refs = append(refs, fk.Column+" -> "+fk.RefTable)
			}
			ref := "-"
			if len(refs) > 0 {
				ref = strings.Join(refs, ", ")
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
				color.GreenString(t.Name), t.PrimaryKey, ref, strings.Join(t.ColumnNames(), ", "))
		}
		w.Flush()

		fmt.Fprintln(out)
		color.New(color.FgCyan, color.Bold).Fprintln(out, "Store drivers:")
		for _, d := range store.Drivers() {
			fmt.Fprintf(out, "  %s\n", d)
		}
	},
}

// status prints a one-line result to stdout.
func status(cmd *cobra.Command, ok bool, format string, args ...any) {
	c := color.New(color.FgGreen)
	mark := "✓"
	if !ok {
		c = color.New(color.FgRed)
		mark = "✗"
	}
	c.Fprintf(cmd.OutOrStdout(), mark+" "+format+"\n", args...)
}

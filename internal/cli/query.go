package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-ecomgen/internal/analytics"
	"github.com/pgEdge/pgedge-ecomgen/internal/report"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
)

var (
	queriesDir  string
	previewRows int
	queryList   bool
)

var queryCmd = &cobra.Command{
	Use:   "query [name...]",
	Short: "Run analytics queries against the loaded store",
	Long: `Run the named analytics queries, or all of them, in a read-only
transaction and print the results. The built-in queries are
total_revenue_per_user, top_selling_products, monthly_sales_summary and
payment_method_distribution; --queries-dir replaces them with the .sql
files of a directory.

Example:
  pgedge-ecomgen query
  pgedge-ecomgen query top_selling_products --queries-dir sql`,
	RunE: runQuery,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compare CSV files with the store and preview KPIs",
	Long: `Print row and column counts of the CSV files next to the store's row
counts, flag any table that does not match, and preview the revenue per
user and top selling products queries.`,
	RunE: runReportCmd,
}

func init() {
	for _, cmd := range []*cobra.Command{queryCmd, reportCmd} {
		cmd.Flags().StringVar(&queriesDir, "queries-dir", "",
			"directory of .sql files replacing the built-in queries")
	}
	queryCmd.Flags().BoolVar(&queryList, "list", false, "list query names and exit")
	reportCmd.Flags().IntVar(&previewRows, "preview-rows", 0, "rows shown per KPI preview")
}

// newRunner builds the analytics runner from the configured query set.
func newRunner(s store.Store) (*analytics.Runner, error) {
	if queriesDir != "" {
		cfg.Queries.Dir = queriesDir
	}
	if cfg.Queries.Dir == "" {
		return analytics.NewRunner(s, nil), nil
	}
	queries, err := analytics.LoadQueries(cfg.Queries.Dir)
	if err != nil {
		return nil, err
	}
	return analytics.NewRunner(s, queries), nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryList {
		runner, err := newRunner(nil)
		if err != nil {
			return err
		}
		for _, name := range runner.Names() {
			cmd.Println(name)
		}
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(s)

	runner, err := newRunner(s)
	if err != nil {
		return err
	}
	outputs, err := runner.Run(ctx, args...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, o := range outputs {
		fmt.Fprintf(out, "[%s] %s\n", color.CyanString(o.Name), o.Duration.Round(time.Microsecond))
		if err := report.PrintResult(out, o.Result); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return nil
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(s)

	return printReport(ctx, cmd, s)
}

func printReport(ctx context.Context, cmd *cobra.Command, s store.Store) error {
	if previewRows > 0 {
		cfg.Report.PreviewRows = previewRows
	}
	if err := cfg.ValidateReport(); err != nil {
		return err
	}

	runner, err := newRunner(s)
	if err != nil {
		return err
	}
	r, err := report.Build(ctx, cfg.Output.Dir, s, runner, report.Options{
		PreviewRows: cfg.Report.PreviewRows,
	})
	if err != nil {
		return err
	}
	return report.Print(cmd.OutOrStdout(), r)
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-ecomgen/internal/csvio"
	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
	"github.com/pgEdge/pgedge-ecomgen/internal/pipeline"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
)

var runReport bool

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load written CSV files into the store",
	Long: `Rebuild the schema and load the CSV files in the output directory
into the store in one transaction. The files are checked against their
manifest first; any failure rolls the load back and leaves empty tables.

Example:
  pgedge-ecomgen load --driver sqlite --connection db/ecom.db
  pgedge-ecomgen load --driver postgres --connection "postgres://..."`,
	RunE: runLoad,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate, write, load and validate in one go",
	Long: `Run the whole pipeline: generate the dataset, write the CSV files,
rebuild the schema and load and validate the files. Stops at the first
failing step.

Example:
  pgedge-ecomgen run --orders 1000 --seed 7
  pgedge-ecomgen run --driver postgres --connection "postgres://..." --report`,
	RunE: runRun,
}

func init() {
	addGenerateFlags(runCmd)
	runCmd.Flags().BoolVar(&runReport, "report", false,
		"print the status report after a successful run")
}

func runLoad(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	m, err := csvio.ReadManifest(cfg.Output.Dir)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(s)

	p := pipeline.Resume(cfg.Output.Dir, m, s)
	return finish(ctx, cmd, p, s)
}

func runRun(cmd *cobra.Command, args []string) error {
	opts, err := generateOptions(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateRun(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(s)

	logging.Info().
		Str("driver", s.Driver()).
		Str("output", cfg.Output.Dir).
		Uint64("seed", opts.Seed).
		Msg("Starting pipeline")

	p := pipeline.New(opts, cfg.Output.Dir, s)
	if err := finish(ctx, cmd, p, s); err != nil {
		return err
	}
	if runReport {
		return printReport(ctx, cmd, s)
	}
	return nil
}

// finish drives p to Validated and prints the outcome.
func finish(ctx context.Context, cmd *cobra.Command, p *pipeline.Pipeline, s store.Store) error {
	if err := p.Run(ctx); err != nil {
		step, _ := p.Failure()
		status(cmd, false, "Pipeline stopped at %s during %s", p.State(), step)
		return err
	}
	res := p.Result()
	status(cmd, true, "Loaded %d rows into %s (run %s)", res.Counts.Total(), s.Driver(), res.RunID)
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-ecomgen/internal/csvio"
	"github.com/pgEdge/pgedge-ecomgen/internal/generate"
	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
	"github.com/pgEdge/pgedge-ecomgen/internal/pipeline"
)

var (
	genUsers         int
	genProducts      int
	genOrders        int
	genMaxItems      int
	genMaxQuantity   int
	genSeed          uint64
	genMethods       []string
	genReferenceDate string
	genVerify        bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the dataset and write the CSV files",
	Long: `Generate users, products, orders, order items and payments from a
seed and write one CSV file per table plus manifest.yaml to the output
directory. Nothing is written if generation fails.

Example:
  pgedge-ecomgen generate --orders 1000 --seed 7 --output data
  pgedge-ecomgen generate --verify`,
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd)
	generateCmd.Flags().BoolVar(&genVerify, "verify", false,
		"only check existing files against the manifest")
}

// addGenerateFlags registers the generation flags shared by generate and
// run.
func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&genUsers, "users", 0, "number of users")
	cmd.Flags().IntVar(&genProducts, "products", 0, "number of products")
	cmd.Flags().IntVar(&genOrders, "orders", 0, "number of orders")
	cmd.Flags().IntVar(&genMaxItems, "max-items", 0, "maximum distinct products per order")
	cmd.Flags().IntVar(&genMaxQuantity, "max-quantity", 0, "maximum quantity per order item")
	cmd.Flags().Uint64Var(&genSeed, "seed", 0, "random seed (non-zero)")
	cmd.Flags().StringSliceVar(&genMethods, "payment-methods", nil,
		"comma-separated payment methods")
	cmd.Flags().StringVar(&genReferenceDate, "reference-date", "",
		"date all generated dates are relative to (YYYY-MM-DD)")
}

// generateOptions applies the changed generation flags to the config and
// returns validated options.
func generateOptions(cmd *cobra.Command) (generate.Options, error) {
	flags := cmd.Flags()
	if flags.Changed("users") {
		cfg.Generate.UserCount = genUsers
	}
	if flags.Changed("products") {
		cfg.Generate.ProductCount = genProducts
	}
	if flags.Changed("orders") {
		cfg.Generate.OrderCount = genOrders
	}
	if flags.Changed("max-items") {
		cfg.Generate.MaxItemsPerOrder = genMaxItems
	}
	if flags.Changed("max-quantity") {
		cfg.Generate.MaxQuantity = genMaxQuantity
	}
	if flags.Changed("seed") {
		cfg.Generate.Seed = genSeed
	}
	if flags.Changed("payment-methods") {
		cfg.Generate.PaymentMethods = genMethods
	}
	if genReferenceDate != "" {
		cfg.Generate.ReferenceDate = genReferenceDate
	}

	if err := cfg.ValidateGenerate(); err != nil {
		return generate.Options{}, err
	}
	return cfg.GenerateOptions()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if genVerify {
		return verifyFiles(cmd, cfg.Output.Dir)
	}

	opts, err := generateOptions(cmd)
	if err != nil {
		return err
	}

	logging.Info().
		Int("users", opts.UserCount).
		Int("products", opts.ProductCount).
		Int("orders", opts.OrderCount).
		Uint64("seed", opts.Seed).
		Str("output", cfg.Output.Dir).
		Msg("Generating dataset")

	p := pipeline.New(opts, cfg.Output.Dir, nil)
	if err := p.Generate(); err != nil {
		return err
	}
	if err := p.Write(); err != nil {
		return err
	}

	size, err := csvio.DirSize(p.Dir(), p.Manifest())
	if err != nil {
		return err
	}
	status(cmd, true, "Wrote %d rows to %s (%s)", p.Manifest().Counts().Total(), p.Dir(), size)
	return nil
}

// verifyFiles checks the files in dir against their manifest.
func verifyFiles(cmd *cobra.Command, dir string) error {
	m, err := csvio.ReadManifest(dir)
	if err != nil {
		return err
	}
	if err := m.Verify(dir); err != nil {
		status(cmd, false, "Files in %s do not match the manifest", dir)
		return err
	}
	status(cmd, true, "%d files in %s match the manifest (seed %d)", len(m.Tables), dir, m.Seed)
	for _, t := range m.Tables {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %8d rows  %s\n", t.Name, t.Rows, t.SHA256[:12])
	}
	return nil
}

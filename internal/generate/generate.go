package generate

import (
	"fmt"

	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
)

// Generate builds a dataset for opts. The same options always produce the
// same dataset. Nothing is written; a referential error is reported before
// the caller has anything to write.
func Generate(opts Options) (*dataset.Dataset, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := checkStageOrder(stages); err != nil {
		return nil, err
	}

	c := newContext(opts)
	logging.Info().
		Uint64("seed", opts.Seed).
		Int("users", opts.UserCount).
		Int("products", opts.ProductCount).
		Int("orders", opts.OrderCount).
		Str("reference_date", c.now.Format(dataset.DateLayout)).
		Strs("stages", stageNames()).
		Msg("Generating dataset")

	for _, s := range stages {
		if err := s.run(c); err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", s.name, err)
		}
	}

	logging.Info().
		Int64("rows", c.ds.Counts().Total()).
		Msg("Dataset generated")
	return c.ds, nil
}

package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
)

// moneyTolerance absorbs floating point noise on backends that store
// NUMERIC as REAL. Real discrepancies are at least one cent.
const moneyTolerance = "0.005"

// check is a reconciliation query counting offending rows.
type check struct {
	name  string
	query string
}

var checks = []check{
	{
		name: "order items whose line total is not quantity x unit price",
		query: `SELECT COUNT(*) FROM order_items
WHERE ABS(line_total - quantity * unit_price) >= ` + moneyTolerance,
	},
	{
		name: "orders whose total differs from the sum of their items",
		query: `SELECT COUNT(*) FROM orders o
LEFT JOIN (
    SELECT order_id, SUM(line_total) AS items_total
    FROM order_items GROUP BY order_id
) i ON i.order_id = o.order_id
WHERE ABS(o.total_amount - COALESCE(i.items_total, 0)) >= ` + moneyTolerance,
	},
	{
		name: "payments whose amount differs from the order total",
		query: `SELECT COUNT(*) FROM payments p
JOIN orders o ON o.order_id = p.order_id
WHERE ABS(p.amount - o.total_amount) >= ` + moneyTolerance,
	},
	{
		name: "orders without exactly one payment",
		query: `SELECT COUNT(*) FROM orders o
LEFT JOIN (
    SELECT order_id, COUNT(*) AS n FROM payments GROUP BY order_id
) p ON p.order_id = o.order_id
WHERE COALESCE(p.n, 0) <> 1`,
	},
}

// validate compares the in-transaction row counts with the expected ones
// and runs every reconciliation check. It returns the counted rows.
func validate(ctx context.Context, tx store.Tx, expected dataset.Counts) (dataset.Counts, error) {
	counts := make(dataset.Counts, len(dataset.Catalog))
	for _, name := range dataset.TableNames() {
		n, err := tx.Count(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", name, err)
		}
		counts[name] = n
	}
	if diffs := expected.Diff(counts); len(diffs) > 0 {
		return nil, fmt.Errorf("row counts do not match manifest: %s", strings.Join(diffs, "; "))
	}

	for _, c := range checks {
		n, err := tx.QueryInt(ctx, c.query)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", c.name, err)
		}
		if n > 0 {
			return nil, fmt.Errorf("%d %s", n, c.name)
		}
		logging.Debug().Str("check", c.name).Msg("Check passed")
	}
	return counts, nil
}

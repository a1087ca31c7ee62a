//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package analytics runs read-only SQL queries against a loaded store. The
// queries are opaque text; a default set is embedded in the binary.
package analytics

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
)

//go:embed sql/*.sql
var defaultSQL embed.FS

// defaultOrder is the run order of the embedded queries.
var defaultOrder = []string{
	"total_revenue_per_user",
	"top_selling_products",
	"monthly_sales_summary",
	"payment_method_distribution",
}

// Query is a named SQL statement.
type Query struct {
	Name string
	SQL  string
}

// Output is the result of one query.
type Output struct {
	Name     string
	Result   *store.Result
	Duration time.Duration
}

// DefaultQueries returns the embedded query set.
func DefaultQueries() []Query {
	queries := make([]Query, 0, len(defaultOrder))
	for _, name := range defaultOrder {
		data, err := defaultSQL.ReadFile(path.Join("sql", name+".sql"))
		if err != nil {
			// Embedded at build time; a missing file is a build defect.
			panic(err)
		}
		queries = append(queries, Query{Name: name, SQL: string(data)})
	}
	return queries
}

// LoadQueries reads every .sql file in dir, sorted by name. The query name
// is the file name without extension.
func LoadQueries(dir string) ([]Query, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dataset.ErrIO, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no .sql files in %s", dataset.ErrIO, dir)
	}
	sort.Strings(matches)

	queries := make([]Query, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", dataset.ErrIO, err)
		}
		queries = append(queries, Query{
			Name: strings.TrimSuffix(filepath.Base(m), ".sql"),
			SQL:  string(data),
		})
	}
	return queries, nil
}

// Runner executes queries against a store without modifying it.
type Runner struct {
	store   store.Store
	queries []Query
}

// NewRunner creates a runner over queries. A nil or empty query list means
// DefaultQueries.
func NewRunner(s store.Store, queries []Query) *Runner {
	if len(queries) == 0 {
		queries = DefaultQueries()
	}
	return &Runner{store: s, queries: queries}
}

// Names returns the available query names in run order.
func (r *Runner) Names() []string {
	names := make([]string, len(r.queries))
	for i, q := range r.queries {
		names[i] = q.Name
	}
	return names
}

// Run executes the named queries, or all of them when names is empty,
// inside one read-only transaction that is always rolled back.
func (r *Runner) Run(ctx context.Context, names ...string) ([]Output, error) {
	selected, err := r.selectQueries(names)
	if err != nil {
		return nil, err
	}

	tx, err := r.store.BeginReadOnly(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			logging.Warn().Err(err).Msg("Rollback failed")
		}
	}()

	outputs := make([]Output, 0, len(selected))
	for _, q := range selected {
		start := time.Now()
		res, err := tx.Query(ctx, q.SQL)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", q.Name, err)
		}
		out := Output{Name: q.Name, Result: res, Duration: time.Since(start)}
		if len(res.Rows) == 0 {
			logging.Warn().Str("query", q.Name).Msg("No rows returned")
		}
		logging.Debug().
			Str("query", q.Name).
			Int("rows", len(res.Rows)).
			Dur("duration", out.Duration).
			Msg("Query executed")
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func (r *Runner) selectQueries(names []string) ([]Query, error) {
	if len(names) == 0 {
		return r.queries, nil
	}
	byName := make(map[string]Query, len(r.queries))
	for _, q := range r.queries {
		byName[q.Name] = q
	}

	selected := make([]Query, 0, len(names))
	for _, name := range names {
		q, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown query %q (available: %s)",
				dataset.ErrConfiguration, name, strings.Join(r.Names(), ", "))
		}
		selected = append(selected, q)
	}
	return selected, nil
}

// Head returns a copy of res truncated to at most n rows.
func Head(res *store.Result, n int) *store.Result {
	if res == nil || n < 0 || len(res.Rows) <= n {
		return res
	}
	return &store.Result{Columns: res.Columns, Rows: res.Rows[:n]}
}

//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// Integration tests for the PostgreSQL store.
// Run with: go test -tags=integration ./internal/store/postgres/...
// Requires PostgreSQL to be available.
// Set PGEDGE_TEST_CONN environment variable to override connection string.

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-ecomgen/internal/analytics"
	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/loader"
	"github.com/pgEdge/pgedge-ecomgen/internal/report"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
	"github.com/pgEdge/pgedge-ecomgen/internal/store/postgres"
	"github.com/pgEdge/pgedge-ecomgen/internal/testutil"
)

func openTestStore(t *testing.T, name string) *postgres.Store {
	t.Helper()
	baseConnStr := testutil.SkipIfNoPostgres(t)
	connStr := testutil.CreateTestDB(t, baseConnStr, name)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := postgres.Open(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestLoadIntegration loads a small dataset end-to-end and runs the
// analytics queries against it.
func TestLoadIntegration(t *testing.T) {
	s := openTestStore(t, "load")
	ds, dir, m := testutil.WriteDataset(t, testutil.SmallOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	l := loader.New(s)
	if err := l.BuildSchema(ctx); err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}
	res, err := l.Load(ctx, dir, m)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diffs := ds.Counts().Diff(res.Counts); len(diffs) > 0 {
		t.Errorf("Count mismatch: %v", diffs)
	}

	md, err := s.Metadata(ctx)
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if md["run_id"] != res.RunID {
		t.Errorf("Expected run_id %s, got %s", res.RunID, md["run_id"])
	}

	outputs, err := analytics.NewRunner(s, nil).Run(ctx)
	if err != nil {
		t.Fatalf("Analytics failed: %v", err)
	}
	for _, o := range outputs {
		if len(o.Result.Rows) == 0 {
			t.Errorf("Query %s returned no rows", o.Name)
		}
	}

	r, err := report.Build(ctx, dir, s, nil, report.Options{})
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if !r.Consistent() {
		t.Errorf("Expected store to match files: %+v", r.Tables)
	}

	// Loading again after a rebuild gives the same counts
	if err := l.BuildSchema(ctx); err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}
	if _, err := l.Load(ctx, dir, m); err != nil {
		t.Fatalf("Second load failed: %v", err)
	}
}

// TestForeignKeyViolationIntegration checks that an orphaned order item is
// rejected and leaves nothing behind.
func TestForeignKeyViolationIntegration(t *testing.T) {
	s := openTestStore(t, "fk")
	ctx := context.Background()

	if err := s.ResetSchema(ctx); err != nil {
		t.Fatalf("ResetSchema failed: %v", err)
	}

	table, _ := dataset.LookupTable(dataset.TableOrderItems)
	row := make([]any, len(table.Columns))
	for i, cell := range []string{"1", "99", "1", "1", "2.50", "2.50"} {
		v, err := table.Columns[i].Parse(cell)
		if err != nil {
			t.Fatal(err)
		}
		row[i] = v
	}

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	_, err = tx.Insert(ctx, table, [][]any{row})
	if !errors.Is(err, dataset.ErrForeignKeyViolation) {
		t.Errorf("Expected ErrForeignKeyViolation, got %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Errorf("Rollback failed: %v", err)
	}

	counts, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Total() != 0 {
		t.Errorf("Expected empty tables, got %v", counts)
	}
}

// TestReadOnlyIntegration checks that analytics cannot write.
func TestReadOnlyIntegration(t *testing.T) {
	s := openTestStore(t, "readonly")
	ctx := context.Background()

	if err := s.ResetSchema(ctx); err != nil {
		t.Fatalf("ResetSchema failed: %v", err)
	}

	r := analytics.NewRunner(s, []analytics.Query{{
		Name: "write",
		SQL:  "INSERT INTO " + store.MetadataTable + " (key, value) VALUES ('x', 'y')",
	}})
	if _, err := r.Run(ctx); err == nil {
		t.Error("Expected write in a read-only transaction to fail")
	}

	md, err := s.Metadata(ctx)
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if len(md) != 0 {
		t.Errorf("Expected no metadata, got %v", md)
	}
}

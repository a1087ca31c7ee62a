//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package store defines the relational store the pipeline loads into and
// the registry of store backends.
package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
)

// MetadataTable holds key/value facts about the last validated load.
const MetadataTable = "pipeline_metadata"

// Store is a relational database holding the e-commerce tables.
type Store interface {
	// Driver returns the registered backend name.
	Driver() string

	// ResetSchema drops every entity table and recreates it empty, with
	// primary keys and foreign keys enforced. Stored metadata is cleared.
	ResetSchema(ctx context.Context) error

	// Begin starts a read-write transaction.
	Begin(ctx context.Context) (Tx, error)

	// BeginReadOnly starts a transaction that cannot persist writes. Callers
	// must still roll it back.
	BeginReadOnly(ctx context.Context) (Tx, error)

	// Counts returns the row count of every entity table.
	Counts(ctx context.Context) (dataset.Counts, error)

	// Metadata returns all metadata entries. A missing table yields an
	// empty map.
	Metadata(ctx context.Context) (map[string]string, error)

	Close() error
}

// Tx is an open store transaction.
type Tx interface {
	// Insert bulk inserts rows into table. Each row holds one value per
	// catalog column, as returned by dataset.Column.Parse. A foreign key
	// violation wraps dataset.ErrForeignKeyViolation.
	Insert(ctx context.Context, table dataset.Table, rows [][]any) (int64, error)

	// Count returns the row count of table.
	Count(ctx context.Context, table string) (int64, error)

	// QueryInt runs a query returning a single integer.
	QueryInt(ctx context.Context, query string) (int64, error)

	// Query runs an arbitrary read query.
	Query(ctx context.Context, query string) (*Result, error)

	// SaveMetadata upserts metadata entries. They become visible only if
	// the transaction commits.
	SaveMetadata(ctx context.Context, entries map[string]string) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Result is a fully materialized query result rendered as text.
type Result struct {
	Columns []string
	Rows    [][]string
}

// FormatValue renders a driver value for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', 2, 32)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(dataset.DateLayout)
		}
		return x.Format(dataset.TimestampLayout)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

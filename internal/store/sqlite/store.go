//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package sqlite implements the SQLite store backend. It needs no server,
// which makes it the default for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"github.com/pgEdge/pgedge-ecomgen/internal/datagen"
	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
)

// Driver is the registry name of this backend.
const Driver = "sqlite"

func init() {
	store.Register(Driver, func(ctx context.Context, connection string) (store.Store, error) {
		return Open(ctx, connection)
	})
}

// Store is a SQLite-backed store. It holds a single connection, so a
// transaction owns the whole database while it is open.
type Store struct {
	db        *sql.DB
	qb        squirrel.StatementBuilderType
	path      string
	batchSize int
}

var _ store.Store = (*Store)(nil)

// DSN turns a path or sqlite:// URL into a go-sqlite3 DSN with foreign keys
// enforced.
func DSN(connection string) string {
	dsn := strings.TrimPrefix(connection, "sqlite://")
	params := "_foreign_keys=on&_busy_timeout=5000"
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}
	return dsn + "?" + params
}

// Open opens (creating if needed) the database file named by connection.
func Open(ctx context.Context, connection string) (*Store, error) {
	path := strings.TrimPrefix(connection, "sqlite://")
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is required")
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", DSN(connection))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	logging.Info().Str("path", path).Msg("Connected to database")

	return &Store{
		db:        db,
		qb:        squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		path:      path,
		batchSize: datagen.DefaultBatchConfig().BatchSize,
	}, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Driver() string {
	return Driver
}

// ResetSchema drops and recreates every entity table in one transaction.
func (s *Store) ResetSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", dataset.ErrSchema, err)
	}
	defer tx.Rollback()

	steps := []struct {
		name string
		sql  string
	}{
		{"drop tables", dropSchemaSQL},
		{"create tables", createSchemaSQL},
		{"create metadata table", createMetadataTableSQL},
		{"clear metadata", "DELETE FROM " + store.MetadataTable},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.sql); err != nil {
			return fmt.Errorf("%w: failed to %s: %v", dataset.ErrSchema, step.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit schema: %v", dataset.ErrSchema, err)
	}

	logging.Info().Msg("Schema created successfully")
	return nil
}

func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx, store: s}, nil
}

// BeginReadOnly starts a transaction with query_only set for the
// connection until the transaction ends.
func (s *Store) BeginReadOnly(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin read-only transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to set query_only: %w", err)
	}
	return &Tx{tx: tx, store: s, readOnly: true}, nil
}

func (s *Store) Counts(ctx context.Context) (dataset.Counts, error) {
	counts := make(dataset.Counts, len(dataset.Catalog))
	for _, name := range dataset.TableNames() {
		query, args, err := s.qb.Select("COUNT(*)").From(name).ToSql()
		if err != nil {
			return nil, err
		}
		var n int64
		if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", name, err)
		}
		counts[name] = n
	}
	return counts, nil
}

// Metadata retrieves all metadata as a map.
func (s *Store) Metadata(ctx context.Context) (map[string]string, error) {
	metadata := make(map[string]string)

	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		store.MetadataTable).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return metadata, nil
	}

	query, args, err := s.qb.Select("key", "value").From(store.MetadataTable).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}
	return metadata, rows.Err()
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Tx is an open SQLite transaction.
type Tx struct {
	tx       *sql.Tx
	store    *Store
	readOnly bool
}

// Insert writes rows with multi-row INSERT statements of at most batchSize
// rows each.
func (t *Tx) Insert(ctx context.Context, table dataset.Table, rows [][]any) (int64, error) {
	var inserted int64
	for start := 0; start < len(rows); start += t.store.batchSize {
		end := min(start+t.store.batchSize, len(rows))

		builder := t.store.qb.Insert(table.Name).Columns(table.ColumnNames()...)
		for _, row := range rows[start:end] {
			builder = builder.Values(bindRow(table, row)...)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return inserted, fmt.Errorf("failed to build insert for %s: %w", table.Name, err)
		}
		res, err := t.tx.ExecContext(ctx, query, args...)
		if err != nil {
			if isForeignKeyViolation(err) {
				return inserted, fmt.Errorf("%w: %s: %v", dataset.ErrForeignKeyViolation, table.Name, err)
			}
			return inserted, fmt.Errorf("failed to insert into %s: %w", table.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += n
	}
	return inserted, nil
}

func (t *Tx) Count(ctx context.Context, table string) (int64, error) {
	query, _, err := t.store.qb.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, err
	}
	return t.QueryInt(ctx, query)
}

func (t *Tx) QueryInt(ctx context.Context, query string) (int64, error) {
	var n int64
	if err := t.tx.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (t *Tx) Query(ctx context.Context, query string) (*store.Result, error) {
	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	result := &store.Result{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = store.FormatValue(v)
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

// SaveMetadata upserts metadata entries in key order.
func (t *Tx) SaveMetadata(ctx context.Context, entries map[string]string) error {
	if _, err := t.tx.ExecContext(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	for _, key := range slices.Sorted(maps.Keys(entries)) {
		query, args, err := t.store.qb.Insert(store.MetadataTable).
			Columns("key", "value").
			Values(key, entries[key]).
			Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value").
			ToSql()
		if err != nil {
			return err
		}
		if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().Int("entries", len(entries)).Msg("Saved metadata")
	return nil
}

func (t *Tx) Commit(ctx context.Context) error {
	err := t.tx.Commit()
	t.release(ctx)
	return err
}

func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback()
	t.release(ctx)
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// release clears query_only once a read-only transaction has ended.
func (t *Tx) release(ctx context.Context) {
	if !t.readOnly {
		return
	}
	t.readOnly = false
	if _, err := t.store.db.ExecContext(ctx, "PRAGMA query_only = OFF"); err != nil {
		logging.Warn().Err(err).Msg("Failed to reset query_only")
	}
}

// bindRow formats dates and timestamps as text so they sort and compare
// the same way they read in the CSV files.
func bindRow(table dataset.Table, row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
		ts, ok := v.(time.Time)
		if !ok || i >= len(table.Columns) {
			continue
		}
		switch table.Columns[i].Type {
		case dataset.TypeDate:
			out[i] = ts.Format(dataset.DateLayout)
		case dataset.TypeTimestamp:
			out[i] = ts.Format(dataset.TimestampLayout)
		}
	}
	return out
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

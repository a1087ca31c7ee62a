//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package loader builds the relational schema and loads a written dataset
// into it. A load is all-or-nothing: it runs in one transaction and any
// failed step rolls everything back, leaving the empty schema.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pgEdge/pgedge-ecomgen/internal/csvio"
	"github.com/pgEdge/pgedge-ecomgen/internal/datagen"
	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
	"github.com/pgEdge/pgedge-ecomgen/pkg/version"
)

// Loader loads interchange files into a store.
type Loader struct {
	store    store.Store
	cfg      datagen.BatchInsertConfig
	now      func() time.Time
	onLoaded func()
}

// New creates a loader for s.
func New(s store.Store) *Loader {
	return &Loader{
		store: s,
		cfg:   datagen.DefaultBatchConfig(),
		now:   time.Now,
	}
}

// OnLoaded registers fn to run once every table is inserted, before the
// load is validated and committed.
func (l *Loader) OnLoaded(fn func()) {
	l.onLoaded = fn
}

// BuildSchema drops and recreates every entity table. Failures wrap
// dataset.ErrSchema.
func (l *Loader) BuildSchema(ctx context.Context) error {
	logging.Info().Str("driver", l.store.Driver()).Msg("Building schema")
	return l.store.ResetSchema(ctx)
}

// Result describes a committed load.
type Result struct {
	RunID  string
	Counts dataset.Counts
}

// Load inserts every table listed in the manifest, in foreign key order,
// inside one transaction, then validates row counts and totals and records
// the run metadata before committing. On any failure the transaction is
// rolled back and the error wraps dataset.ErrValidation; foreign key
// failures also wrap dataset.ErrForeignKeyViolation.
func (l *Loader) Load(ctx context.Context, dir string, manifest *csvio.Manifest) (*Result, error) {
	if err := manifest.Verify(dir); err != nil {
		return nil, fmt.Errorf("%w: %w", dataset.ErrValidation, err)
	}

	tx, err := l.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dataset.ErrValidation, err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logging.Warn().Err(rbErr).Msg("Rollback failed")
			}
		}
	}()

	for _, table := range dataset.Catalog {
		if err := l.loadTable(ctx, tx, dir, table, manifest); err != nil {
			logging.Table(table.Name).Error().Err(err).Msg("Load failed, rolling back")
			return nil, fmt.Errorf("%w: %w", dataset.ErrValidation, err)
		}
	}

	if l.onLoaded != nil {
		l.onLoaded()
	}

	counts, err := validate(ctx, tx, manifest.Counts())
	if err != nil {
		logging.Error().Err(err).Msg("Validation failed, rolling back")
		return nil, fmt.Errorf("%w: %w", dataset.ErrValidation, err)
	}

	result := &Result{RunID: uuid.NewString(), Counts: counts}
	if err := tx.SaveMetadata(ctx, l.metadata(result, manifest)); err != nil {
		logging.Error().Err(err).Msg("Saving metadata failed, rolling back")
		return nil, fmt.Errorf("%w: %w", dataset.ErrValidation, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to commit: %w", dataset.ErrValidation, err)
	}
	committed = true

	logging.Info().
		Str("run_id", result.RunID).
		Int64("rows", counts.Total()).
		Msg("Load committed")
	return result, nil
}

func (l *Loader) loadTable(ctx context.Context, tx store.Tx, dir string, table dataset.Table, manifest *csvio.Manifest) error {
	entry, ok := manifest.Lookup(table.Name)
	if !ok {
		return fmt.Errorf("manifest has no entry for %s", table.Name)
	}

	header, records, err := csvio.ReadTable(filepath.Join(dir, entry.File))
	if err != nil {
		return err
	}
	if !slices.Equal(header, table.ColumnNames()) {
		return fmt.Errorf("%s: header %v does not match columns %v", entry.File, header, table.ColumnNames())
	}

	progress := datagen.NewProgressReporter(table.Name, "Loading rows", int64(len(records)), l.cfg.ProgressInterval)
	batch := make([][]any, 0, l.cfg.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := tx.Insert(ctx, table, batch)
		if err != nil {
			return err
		}
		progress.Update(n)
		batch = batch[:0]
		return nil
	}

	for i, record := range records {
		if len(record) != len(table.Columns) {
			return fmt.Errorf("%s line %d: expected %d cells, got %d", entry.File, i+2, len(table.Columns), len(record))
		}
		row := make([]any, len(record))
		for c, cell := range record {
			v, err := table.Columns[c].Parse(cell)
			if err != nil {
				return fmt.Errorf("%s line %d: %w", entry.File, i+2, err)
			}
			row[c] = v
		}
		batch = append(batch, row)

		if len(batch) >= l.cfg.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	progress.Done()
	return nil
}

func (l *Loader) metadata(result *Result, manifest *csvio.Manifest) map[string]string {
	md := map[string]string{
		"run_id":    result.RunID,
		"seed":      strconv.FormatUint(manifest.Seed, 10),
		"version":   version.Short(),
		"loaded_at": l.now().UTC().Format(time.RFC3339),
	}
	for name, n := range result.Counts {
		md["rows."+name] = strconv.FormatInt(n, 10)
	}
	return md
}

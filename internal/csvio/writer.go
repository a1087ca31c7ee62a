//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package csvio writes a dataset as one CSV interchange file per entity,
// plus a manifest, and reads those files back.
package csvio

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pgEdge/pgedge-ecomgen/internal/datagen"
	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
)

// Writer writes datasets into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer for dir. The directory is created on Write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write checks the dataset, then writes one CSV file per table in catalog
// order and the manifest. Each file is written to a temporary name and
// renamed into place, so a reader never sees a partial file. Identical
// datasets produce byte-identical files.
func (w *Writer) Write(ds *dataset.Dataset) (*Manifest, error) {
	if err := ds.CheckIntegrity(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create output directory: %v", dataset.ErrIO, err)
	}

	manifest := &Manifest{Seed: ds.Seed}
	for _, table := range dataset.Catalog {
		records, err := ds.Records(table.Name)
		if err != nil {
			return nil, err
		}

		sum, err := writeAtomic(w.dir, table.FileName(), func(f *os.File) error {
			return writeCSV(f, table.ColumnNames(), records)
		})
		if err != nil {
			return nil, err
		}

		manifest.Tables = append(manifest.Tables, TableEntry{
			Name:    table.Name,
			File:    table.FileName(),
			Rows:    int64(len(records)),
			Columns: len(table.Columns),
			SHA256:  sum,
		})

		logging.Table(table.Name).Info().
			Int("rows", len(records)).
			Str("file", filepath.Join(w.dir, table.FileName())).
			Msg("Wrote CSV file")
	}

	if err := writeManifest(w.dir, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// DirSize returns the total size of the files listed in the manifest,
// formatted for display.
func DirSize(dir string, m *Manifest) (string, error) {
	var total int64
	for _, t := range m.Tables {
		info, err := os.Stat(filepath.Join(dir, t.File))
		if err != nil {
			return "", fmt.Errorf("%w: %v", dataset.ErrIO, err)
		}
		total += info.Size()
	}
	return datagen.FormatSize(total), nil
}

func writeCSV(out io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

// writeAtomic writes name in dir through fill, via a temporary file that is
// renamed into place. It returns the hex SHA-256 of the written bytes.
func writeAtomic(dir, name string, fill func(*os.File) error) (string, error) {
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("%w: failed to create %s: %v", dataset.ErrIO, name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := fill(tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: failed to write %s: %v", dataset.ErrIO, name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: failed to sync %s: %v", dataset.ErrIO, name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: failed to close %s: %v", dataset.ErrIO, name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("%w: failed to chmod %s: %v", dataset.ErrIO, name, err)
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("%w: failed to rename %s: %v", dataset.ErrIO, name, err)
	}
	return fileChecksum(path)
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", dataset.ErrIO, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("%w: failed to read %s: %v", dataset.ErrIO, path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

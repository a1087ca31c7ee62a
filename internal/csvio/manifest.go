//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package csvio

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
)

// ManifestFile is the name of the manifest written next to the CSV files.
const ManifestFile = "manifest.yaml"

// Manifest describes one written dataset: what was generated and what each
// file should contain.
type Manifest struct {
	Seed   uint64       `yaml:"seed"`
	Tables []TableEntry `yaml:"tables"`
}

// TableEntry describes one interchange file.
type TableEntry struct {
	Name    string `yaml:"name"`
	File    string `yaml:"file"`
	Rows    int64  `yaml:"rows"`
	Columns int    `yaml:"columns"`
	SHA256  string `yaml:"sha256"`
}

// Counts returns the expected row count per table.
func (m *Manifest) Counts() dataset.Counts {
	counts := make(dataset.Counts, len(m.Tables))
	for _, t := range m.Tables {
		counts[t.Name] = t.Rows
	}
	return counts
}

// Lookup returns the entry for table.
func (m *Manifest) Lookup(table string) (TableEntry, bool) {
	for _, t := range m.Tables {
		if t.Name == table {
			return t, true
		}
	}
	return TableEntry{}, false
}

// Verify checks that every file listed in the manifest belongs to a
// catalog table and exists in dir with the recorded checksum. A mismatch
// wraps dataset.ErrValidation.
func (m *Manifest) Verify(dir string) error {
	for _, t := range m.Tables {
		table, ok := dataset.LookupTable(t.Name)
		if !ok {
			return fmt.Errorf("%w: manifest lists unknown table %q", dataset.ErrValidation, t.Name)
		}
		if t.File != table.FileName() {
			return fmt.Errorf("%w: manifest file %q for %s, expected %q",
				dataset.ErrValidation, t.File, t.Name, table.FileName())
		}
		sum, err := fileChecksum(filepath.Join(dir, t.File))
		if err != nil {
			return err
		}
		if sum != t.SHA256 {
			return fmt.Errorf("%w: %s checksum %s does not match manifest %s",
				dataset.ErrValidation, t.File, sum, t.SHA256)
		}
	}
	return nil
}

// ReadManifest loads the manifest from dir.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read manifest: %v", dataset.ErrIO, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: failed to parse manifest %s: %v", dataset.ErrIO, path, err)
	}
	return &m, nil
}

func writeManifest(dir string, m *Manifest) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("%w: failed to encode manifest: %v", dataset.ErrIO, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: failed to encode manifest: %v", dataset.ErrIO, err)
	}

	_, err := writeAtomic(dir, ManifestFile, func(f *os.File) error {
		_, err := f.Write(buf.Bytes())
		return err
	})
	return err
}

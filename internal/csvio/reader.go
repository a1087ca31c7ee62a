package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
)

// ReadTable reads a CSV file, returning its header and data rows. Every row
// must have as many cells as the header.
func ReadTable(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", dataset.ErrIO, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to parse %s: %v", dataset.ErrIO, path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: %s has no header row", dataset.ErrIO, path)
	}
	return records[0], records[1:], nil
}

// CountRows returns the header and the number of data rows of a CSV file
// without holding it in memory.
func CountRows(path string) (header []string, rows int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", dataset.ErrIO, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	first, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("%w: %s has no header row", dataset.ErrIO, path)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to parse %s: %v", dataset.ErrIO, path, err)
	}
	header = slices.Clone(first)

	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("%w: failed to parse %s: %v", dataset.ErrIO, path, err)
		}
		rows++
	}
	return header, rows, nil
}

// Package report summarizes a pipeline run: interchange file counts next to
// store counts, plus short previews of the KPI queries.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/pgEdge/pgedge-ecomgen/internal/analytics"
	"github.com/pgEdge/pgedge-ecomgen/internal/csvio"
	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
)

// DefaultPreviewRows is the number of rows shown per KPI preview.
const DefaultPreviewRows = 10

// DefaultPreviews are the queries previewed when Options.Previews is empty.
var DefaultPreviews = []string{"total_revenue_per_user", "top_selling_products"}

// sampleColumns is how many header names a file summary lists.
const sampleColumns = 5

// Options controls what Build includes.
type Options struct {
	PreviewRows int
	Previews    []string
}

// FileStat describes one interchange file.
type FileStat struct {
	Table   string
	File    string
	Rows    int64
	Columns int
	Sample  []string
	Missing bool
}

// TableStat compares one table's file row count with its store row count.
type TableStat struct {
	Table     string
	FileRows  int64
	StoreRows int64
	Match     bool
}

// Report is the assembled summary.
type Report struct {
	Dir      string
	Driver   string
	Files    []FileStat
	Tables   []TableStat
	Previews []analytics.Output
	Metadata map[string]string
}

// Consistent reports whether every table's store count matches its file.
func (r *Report) Consistent() bool {
	for _, t := range r.Tables {
		if !t.Match {
			return false
		}
	}
	return len(r.Tables) > 0
}

// Build collects file statistics from dir, row counts from s and, when
// runner is not nil, previews of the KPI queries. Missing files are
// reported, not fatal.
func Build(ctx context.Context, dir string, s store.Store, runner *analytics.Runner, opts Options) (*Report, error) {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = DefaultPreviewRows
	}
	if len(opts.Previews) == 0 {
		opts.Previews = DefaultPreviews
	}

	r := &Report{Dir: dir, Driver: s.Driver()}

	fileRows := make(map[string]int64, len(dataset.Catalog))
	for _, table := range dataset.Catalog {
		stat := FileStat{Table: table.Name, File: table.FileName()}
		path := filepath.Join(dir, stat.File)

		header, rows, err := csvio.CountRows(path)
		if err != nil {
			if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
				return nil, err
			}
			logging.Warn().Str("file", path).Msg("File missing for report")
			stat.Missing = true
		} else {
			stat.Rows, stat.Columns = rows, len(header)
			stat.Sample = header[:min(sampleColumns, len(header))]
			fileRows[table.Name] = rows
		}
		r.Files = append(r.Files, stat)
	}

	counts, err := s.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count store rows: %w", err)
	}
	for _, table := range dataset.Catalog {
		n, ok := fileRows[table.Name]
		r.Tables = append(r.Tables, TableStat{
			Table:     table.Name,
			FileRows:  n,
			StoreRows: counts[table.Name],
			Match:     ok && n == counts[table.Name],
		})
	}

	md, err := s.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	r.Metadata = md

	if runner != nil {
		names := make([]string, 0, len(opts.Previews))
		for _, name := range opts.Previews {
			if !slices.Contains(runner.Names(), name) {
				logging.Warn().Str("query", name).Msg("Preview query not available")
				continue
			}
			names = append(names, name)
		}
		if len(names) > 0 {
			outputs, err := runner.Run(ctx, names...)
			if err != nil {
				return nil, err
			}
			for i := range outputs {
				outputs[i].Result = analytics.Head(outputs[i].Result, opts.PreviewRows)
			}
			r.Previews = outputs
		}
	}

	return r, nil
}

// Print renders r as aligned text.
func Print(w io.Writer, r *Report) error {
	heading := color.New(color.FgCyan, color.Bold)

	heading.Fprintln(w, "=== CSV DATASETS ===")
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tROWS\tCOLUMNS\tSAMPLE COLUMNS")
	for _, f := range r.Files {
		if f.Missing {
			fmt.Fprintf(tw, "%s\t-\t-\t%s\n", f.Table, color.YellowString("missing %s", f.File))
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", f.Table, f.Rows, f.Columns, strings.Join(f.Sample, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	heading.Fprintf(w, "=== TABLE COUNTS (%s) ===\n", r.Driver)
	tw = tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tCSV ROWS\tSTORE ROWS\tSTATUS")
	for _, t := range r.Tables {
		status := color.GreenString("ok")
		if !t.Match {
			status = color.RedString("mismatch")
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", t.Table, t.FileRows, t.StoreRows, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if runID := r.Metadata["run_id"]; runID != "" {
		fmt.Fprintf(w, "Last load: %s at %s (seed %s)\n", runID, r.Metadata["loaded_at"], r.Metadata["seed"])
	}

	if len(r.Previews) > 0 {
		fmt.Fprintln(w)
		heading.Fprintln(w, "=== KPI SNAPSHOTS ===")
		for _, p := range r.Previews {
			fmt.Fprintf(w, "[%s]\n", color.CyanString(p.Name))
			if err := PrintResult(w, p.Result); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}
	}

	if r.Consistent() {
		color.New(color.FgGreen).Fprintln(w, "Workflow summary complete.")
	} else {
		color.New(color.FgRed).Fprintln(w, "Store does not match the interchange files.")
	}
	return nil
}

// PrintResult renders a query result as an aligned table.
func PrintResult(w io.Writer, res *store.Result) error {
	if res == nil || len(res.Columns) == 0 {
		fmt.Fprintln(w, "(no columns)")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(res.Columns, "\t")))
	for _, row := range res.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
	return nil
}

package datagen

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
)

// BatchInsertConfig configures batch insert behavior.
type BatchInsertConfig struct {
	// BatchSize is the number of rows per batch insert.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultBatchConfig returns default batch insert configuration.
func DefaultBatchConfig() BatchInsertConfig {
	return BatchInsertConfig{
		BatchSize:        500,
		ProgressInterval: 10000,
	}
}

// ProgressReporter tracks and reports generation and load progress.
type ProgressReporter struct {
	log              *zerolog.Logger
	action           string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter. action names the work
// being reported, e.g. "Generating data" or "Loading rows".
func NewProgressReporter(tableName, action string, totalRows int64, interval int64) *ProgressReporter {
	if interval <= 0 {
		interval = max(1, totalRows)
	}
	return &ProgressReporter{
		log:              logging.Table(tableName),
		action:           action,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(rows int64) {
	oldRow := p.currentRow
	p.currentRow += rows

	// Check if we crossed a progress interval
	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		p.log.Info().
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", p.Percent()).
			Msg(p.action)
	}
}

// Rows returns the number of rows reported so far.
func (p *ProgressReporter) Rows() int64 {
	return p.currentRow
}

// Percent returns the completed share of totalRows.
func (p *ProgressReporter) Percent() float64 {
	if p.totalRows == 0 {
		return 100
	}
	return float64(p.currentRow) / float64(p.totalRows) * 100
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	p.log.Info().
		Int64("rows", p.currentRow).
		Msg("Table complete")
}

// FormatSize formats a byte count as a human-readable string.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

package datagen

import "testing"

func TestDefaultBatchConfig(t *testing.T) {
	cfg := DefaultBatchConfig()
	if cfg.BatchSize <= 0 {
		t.Errorf("Expected positive BatchSize, got %d", cfg.BatchSize)
	}
	if cfg.ProgressInterval <= 0 {
		t.Errorf("Expected positive ProgressInterval, got %d", cfg.ProgressInterval)
	}
}

func TestProgressReporter(t *testing.T) {
	p := NewProgressReporter("orders", "Generating data", 100, 30)
	for i := 0; i < 4; i++ {
		p.Update(25)
	}
	if p.Rows() != 100 {
		t.Errorf("Expected 100 rows, got %d", p.Rows())
	}
	if p.Percent() != 100 {
		t.Errorf("Expected 100 percent, got %f", p.Percent())
	}
	p.Done()
}

func TestProgressReporterZeroInterval(t *testing.T) {
	// Must not divide by zero
	p := NewProgressReporter("users", "Loading rows", 0, 0)
	p.Update(0)
	p.Update(3)
	if p.Rows() != 3 {
		t.Errorf("Expected 3 rows, got %d", p.Rows())
	}
	if p.Percent() != 100 {
		t.Errorf("Expected 100 percent for empty total, got %f", p.Percent())
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
		{2 * 1024 * 1024 * 1024 * 1024, "2.00 TB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) expected %s, got %s", tt.bytes, tt.want, got)
		}
	}
}

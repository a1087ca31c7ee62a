//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-ecomgen/internal/store"
	// Import backend packages to trigger their init() functions which register the drivers
	_ "github.com/pgEdge/pgedge-ecomgen/internal/store/postgres"
	_ "github.com/pgEdge/pgedge-ecomgen/internal/store/sqlite"
)

func TestDrivers(t *testing.T) {
	drivers := store.Drivers()

	expected := []string{"postgres", "sqlite"}
	if len(drivers) < len(expected) {
		t.Fatalf("Expected at least %d drivers, got %d: %v", len(expected), len(drivers), drivers)
	}

	for _, name := range expected {
		found := false
		for _, d := range drivers {
			if d == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected driver '%s' not registered", name)
		}
	}

	for i := 1; i < len(drivers); i++ {
		if drivers[i-1] > drivers[i] {
			t.Errorf("Drivers not sorted: %v", drivers)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := store.Open(context.Background(), "nonexistent", "")
	if err == nil {
		t.Error("Expected error for unknown driver, got nil")
	}
}

func TestOpenEmptyDriver(t *testing.T) {
	_, err := store.Open(context.Background(), "", "")
	if err == nil {
		t.Error("Expected error for empty driver name, got nil")
	}
}

func TestRegisterCustomDriver(t *testing.T) {
	sentinel := errors.New("opened")
	store.Register("test-driver", func(ctx context.Context, conn string) (store.Store, error) {
		return nil, sentinel
	})

	_, err := store.Open(context.Background(), "test-driver", "x")
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected opener error, got %v", err)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"bytes", []byte("abc"), "abc"},
		{"string", "card", "card"},
		{"int", int64(42), "42"},
		{"float", 19.9, "19.90"},
		{"date", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "2025-03-01"},
		{"timestamp", time.Date(2025, 3, 1, 8, 5, 9, 0, time.UTC), "2025-03-01 08:05:09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := store.FormatValue(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

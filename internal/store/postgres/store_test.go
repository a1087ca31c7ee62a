package postgres

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig()
	if cfg.MaxConns < cfg.MinConns {
		t.Errorf("MaxConns %d should not be below MinConns %d", cfg.MaxConns, cfg.MinConns)
	}
	if cfg.MinConns < 1 {
		t.Errorf("Expected MinConns >= 1, got %d", cfg.MinConns)
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
	if !isForeignKeyViolation(fk) {
		t.Error("Expected 23503 to be a foreign key violation")
	}
	if !isForeignKeyViolation(fmt.Errorf("copy: %w", fk)) {
		t.Error("Expected wrapped 23503 to be a foreign key violation")
	}
	if isForeignKeyViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("Unique violation should not be a foreign key violation")
	}
	if isForeignKeyViolation(fmt.Errorf("plain error")) {
		t.Error("Plain error should not be a foreign key violation")
	}
}

func TestCountSQL(t *testing.T) {
	if got := countSQL("order_items"); got != `SELECT COUNT(*) FROM "order_items"` {
		t.Errorf("Unexpected count SQL: %s", got)
	}
}

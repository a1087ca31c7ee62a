package loader

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-ecomgen/internal/csvio"
	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
	"github.com/pgEdge/pgedge-ecomgen/internal/testutil"
)

// tamper rewrites one cell of a written CSV file and updates the manifest
// checksum, so the loader sees a consistent but wrong interchange file.
func tamper(t *testing.T, dir string, m *csvio.Manifest, table string, row, col int, value string) {
	t.Helper()

	path := filepath.Join(dir, table+".csv")
	header, records, err := csvio.ReadTable(path)
	require.NoError(t, err)
	records[row][col] = value

	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.Write(header))
	require.NoError(t, w.WriteAll(records))
	require.NoError(t, f.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := sha256.Sum256(raw)
	for i := range m.Tables {
		if m.Tables[i].Name == table {
			m.Tables[i].SHA256 = hex.EncodeToString(sum[:])
		}
	}
}

func assertEmpty(t *testing.T, s store.Store) {
	t.Helper()
	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	for _, name := range dataset.TableNames() {
		assert.Equal(t, int64(0), counts[name], "%s should be empty after rollback", name)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	ds, dir, m := testutil.WriteDataset(t, testutil.SmallOptions())
	s := testutil.SQLiteStore(t)
	ctx := context.Background()

	l := New(s)
	l.cfg.BatchSize = 7
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	require.NoError(t, l.BuildSchema(ctx))
	res, err := l.Load(ctx, dir, m)
	require.NoError(t, err)
	assert.Equal(t, ds.Counts(), res.Counts)
	assert.NotEmpty(t, res.RunID)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, ds.Counts(), counts)

	md, err := s.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.RunID, md["run_id"])
	assert.Equal(t, "42", md["seed"])
	assert.Equal(t, "2026-01-02T03:04:05Z", md["loaded_at"])
	assert.Equal(t, "20", md["rows.orders"])
}

func TestLoadTwiceAfterRebuild(t *testing.T) {
	ds, dir, m := testutil.WriteDataset(t, testutil.SmallOptions())
	s := testutil.SQLiteStore(t)
	ctx := context.Background()
	l := New(s)

	for i := 0; i < 2; i++ {
		require.NoError(t, l.BuildSchema(ctx))
		res, err := l.Load(ctx, dir, m)
		require.NoError(t, err)
		assert.Equal(t, ds.Counts(), res.Counts)
	}
}

func TestLoadForeignKeyViolationRollsBack(t *testing.T) {
	_, dir, m := testutil.WriteDataset(t, testutil.SmallOptions())
	s := testutil.SQLiteStore(t)
	ctx := context.Background()

	// product_id of the first order item points at a product that does not exist
	tamper(t, dir, m, dataset.TableOrderItems, 0, 2, "999")

	_, err := New(s).Load(ctx, dir, m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrValidation), "got %v", err)
	assert.True(t, errors.Is(err, dataset.ErrForeignKeyViolation), "got %v", err)
	assertEmpty(t, s)

	md, err := s.Metadata(ctx)
	require.NoError(t, err)
	assert.Empty(t, md)
}

func TestLoadValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, dir string, m *csvio.Manifest)
	}{
		{"order total off by a cent", func(t *testing.T, dir string, m *csvio.Manifest) {
			_, records, err := csvio.ReadTable(filepath.Join(dir, "orders.csv"))
			require.NoError(t, err)
			total, err := dataset.ParseMoney(records[0][6])
			require.NoError(t, err)
			tamper(t, dir, m, dataset.TableOrders, 0, 6, (total + 1).String())
		}},
		{"payment amount differs", func(t *testing.T, dir string, m *csvio.Manifest) {
			tamper(t, dir, m, dataset.TablePayments, 0, 3, "0.01")
		}},
		{"line total wrong", func(t *testing.T, dir string, m *csvio.Manifest) {
			tamper(t, dir, m, dataset.TableOrderItems, 0, 5, "0.00")
		}},
		{"manifest count wrong", func(t *testing.T, dir string, m *csvio.Manifest) {
			m.Tables[0].Rows++
		}},
		{"bad cell", func(t *testing.T, dir string, m *csvio.Manifest) {
			tamper(t, dir, m, dataset.TableOrderItems, 0, 3, "two")
		}},
		{"checksum mismatch", func(t *testing.T, dir string, m *csvio.Manifest) {
			m.Tables[1].SHA256 = "00"
		}},
		{"missing manifest entry", func(t *testing.T, dir string, m *csvio.Manifest) {
			m.Tables = m.Tables[:4]
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, dir, m := testutil.WriteDataset(t, testutil.SmallOptions())
			s := testutil.SQLiteStore(t)
			tt.mutate(t, dir, m)

			_, err := New(s).Load(context.Background(), dir, m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, dataset.ErrValidation), "got %v", err)
			assert.False(t, errors.Is(err, dataset.ErrForeignKeyViolation), "got %v", err)
			assertEmpty(t, s)
		})
	}
}

func TestLoadHeaderMismatch(t *testing.T) {
	_, dir, m := testutil.WriteDataset(t, testutil.SmallOptions())
	s := testutil.SQLiteStore(t)

	path := filepath.Join(dir, "products.csv")
	header, records, err := csvio.ReadTable(path)
	require.NoError(t, err)
	header[1], header[2] = header[2], header[1]
	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.Write(header))
	require.NoError(t, w.WriteAll(records))
	require.NoError(t, f.Close())
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := sha256.Sum256(raw)
	m.Tables[1].SHA256 = hex.EncodeToString(sum[:])

	_, err = New(s).Load(context.Background(), dir, m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrValidation), "got %v", err)
	assert.Contains(t, err.Error(), "header")
	assertEmpty(t, s)
}

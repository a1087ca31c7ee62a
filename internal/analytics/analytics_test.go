package analytics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/loader"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
	"github.com/pgEdge/pgedge-ecomgen/internal/testutil"
)

func loadedStore(t *testing.T) store.Store {
	t.Helper()
	_, dir, m := testutil.WriteDataset(t, testutil.SmallOptions())
	s := testutil.SQLiteStore(t)
	_, err := loader.New(s).Load(context.Background(), dir, m)
	require.NoError(t, err)
	return s
}

func TestDefaultQueries(t *testing.T) {
	queries := DefaultQueries()
	require.Len(t, queries, 4)
	assert.Equal(t, defaultOrder, NewRunner(nil, nil).Names())
	for _, q := range queries {
		assert.Contains(t, q.SQL, "SELECT", q.Name)
	}
}

func TestRunDefaultQueries(t *testing.T) {
	s := loadedStore(t)
	outputs, err := NewRunner(s, nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, outputs, 4)

	for _, out := range outputs {
		assert.NotEmpty(t, out.Result.Columns, out.Name)
		assert.NotEmpty(t, out.Result.Rows, out.Name)
	}

	top := outputs[1]
	assert.Equal(t, "top_selling_products", top.Name)
	assert.LessOrEqual(t, len(top.Result.Rows), 10)
}

func TestRunSelectedQuery(t *testing.T) {
	s := loadedStore(t)
	outputs, err := NewRunner(s, nil).Run(context.Background(), "payment_method_distribution")
	require.NoError(t, err)
	require.Len(t, outputs, 1)

	var payments int
	for _, row := range outputs[0].Result.Rows {
		require.Len(t, row, len(outputs[0].Result.Columns))
		n := 0
		for _, c := range row[1] {
			n = n*10 + int(c-'0')
		}
		payments += n
	}
	assert.Equal(t, testutil.SmallOptions().OrderCount, payments)
}

func TestRunUnknownQuery(t *testing.T) {
	_, err := NewRunner(testutil.SQLiteStore(t), nil).Run(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrConfiguration), "got %v", err)
}

func TestRunCannotPersistWrites(t *testing.T) {
	s := loadedStore(t)
	ctx := context.Background()
	before, err := s.Counts(ctx)
	require.NoError(t, err)

	r := NewRunner(s, []Query{{Name: "purge", SQL: "DELETE FROM payments"}})
	_, err = r.Run(ctx)
	assert.Error(t, err)

	after, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLoadQueries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.sql"), []byte("SELECT 2"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.sql"), []byte("SELECT 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	queries, err := LoadQueries(dir)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "a", queries[0].Name)
	assert.Equal(t, "SELECT 2", queries[1].SQL)

	_, err = LoadQueries(t.TempDir())
	assert.True(t, errors.Is(err, dataset.ErrIO), "got %v", err)
}

func TestHead(t *testing.T) {
	res := &store.Result{Columns: []string{"a"}, Rows: [][]string{{"1"}, {"2"}, {"3"}}}
	assert.Len(t, Head(res, 2).Rows, 2)
	assert.Len(t, Head(res, 5).Rows, 3)
	assert.Nil(t, Head(nil, 2))
}

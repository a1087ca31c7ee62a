package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.ResetSchema(context.Background()))
	return s
}

func userRow(id int64, email string) []any {
	return []any{id, "Ada", "Lovelace", email, email + "-phone",
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "gold", "Wales"}
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "data/x.db?_foreign_keys=on&_busy_timeout=5000", DSN("sqlite://data/x.db"))
	assert.Equal(t, "x.db?cache=shared&_foreign_keys=on&_busy_timeout=5000", DSN("x.db?cache=shared"))
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "sqlite://")
	assert.Error(t, err)
}

func TestResetSchemaEmptyTables(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	for _, name := range dataset.TableNames() {
		assert.Equal(t, int64(0), counts[name], name)
	}

	// Reset is repeatable
	require.NoError(t, s.ResetSchema(ctx))
}

func TestInsertCommitAndCount(t *testing.T) {
	s := openTemp(t)
	s.batchSize = 2
	ctx := context.Background()
	users, _ := dataset.LookupTable(dataset.TableUsers)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	n, err := tx.Insert(ctx, users, [][]any{
		userRow(1, "a@example.com"),
		userRow(2, "b@example.com"),
		userRow(3, "c@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	inTx, err := tx.Count(ctx, dataset.TableUsers)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inTx)
	require.NoError(t, tx.Commit(ctx))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[dataset.TableUsers])
}

func TestInsertForeignKeyViolation(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	orders, _ := dataset.LookupTable(dataset.TableOrders)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Insert(ctx, orders, [][]any{
		{int64(1), int64(99), time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC), "pending", "card", "1 Main St", 10.5},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrForeignKeyViolation), "got %v", err)
	require.NoError(t, tx.Rollback(ctx))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.Total())
}

func TestRollbackDiscardsRows(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	users, _ := dataset.LookupTable(dataset.TableUsers)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Insert(ctx, users, [][]any{userRow(1, "a@example.com")})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))
	// A second rollback is harmless
	require.NoError(t, tx.Rollback(ctx))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts[dataset.TableUsers])
}

func TestReadOnlyTransaction(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	tx, err := s.BeginReadOnly(ctx)
	require.NoError(t, err)
	_, err = tx.Query(ctx, "DELETE FROM users")
	assert.Error(t, err)
	require.NoError(t, tx.Rollback(ctx))

	// Writes work again once the read-only transaction is over
	users, _ := dataset.LookupTable(dataset.TableUsers)
	rw, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = rw.Insert(ctx, users, [][]any{userRow(1, "a@example.com")})
	require.NoError(t, err)
	require.NoError(t, rw.Commit(ctx))
}

func TestQueryFormatsValues(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	users, _ := dataset.LookupTable(dataset.TableUsers)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Insert(ctx, users, [][]any{userRow(1, "a@example.com")})
	require.NoError(t, err)

	res, err := tx.Query(ctx, "SELECT user_id, email, SUBSTR(signup_date, 1, 7) AS month, 2.5 AS amount FROM users")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))

	assert.Equal(t, []string{"user_id", "email", "month", "amount"}, res.Columns)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []string{"1", "a@example.com", "2025-01", "2.50"}, res.Rows[0])
}

func TestMetadata(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	md, err := s.Metadata(ctx)
	require.NoError(t, err)
	assert.Empty(t, md)

	save := func(entries map[string]string, commit bool) {
		tx, err := s.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.SaveMetadata(ctx, entries))
		if commit {
			require.NoError(t, tx.Commit(ctx))
		} else {
			require.NoError(t, tx.Rollback(ctx))
		}
	}

	save(map[string]string{"seed": "42", "run_id": "a"}, true)
	save(map[string]string{"run_id": "b"}, true)

	md, err = s.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"seed": "42", "run_id": "b"}, md)

	// Rolled back entries are discarded
	save(map[string]string{"run_id": "c"}, false)
	md, err = s.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", md["run_id"])

	// Reset clears metadata
	require.NoError(t, s.ResetSchema(ctx))
	md, err = s.Metadata(ctx)
	require.NoError(t, err)
	assert.Empty(t, md)
}

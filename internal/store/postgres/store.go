package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
)

// foreignKeyViolation is the SQLSTATE of a foreign key violation.
const foreignKeyViolation = "23503"

// Store is a PostgreSQL-backed store.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Open connects to PostgreSQL.
func Open(ctx context.Context, connString string) (*Store, error) {
	pool, err := Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) Driver() string {
	return Driver
}

// ResetSchema drops and recreates every entity table in one transaction.
func (s *Store) ResetSchema(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", dataset.ErrSchema, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, dropSchemaSQL); err != nil {
		return fmt.Errorf("%w: failed to drop tables: %v", dataset.ErrSchema, err)
	}
	if _, err := tx.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("%w: failed to create tables: %v", dataset.ErrSchema, err)
	}
	if _, err := tx.Exec(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("%w: failed to create metadata table: %v", dataset.ErrSchema, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM "+store.MetadataTable); err != nil {
		return fmt.Errorf("%w: failed to clear metadata: %v", dataset.ErrSchema, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit schema: %v", dataset.ErrSchema, err)
	}

	logging.Info().Msg("Schema created successfully")
	return nil
}

func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// BeginReadOnly starts a READ ONLY transaction.
func (s *Store) BeginReadOnly(ctx context.Context) (store.Tx, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read-only transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

func (s *Store) Counts(ctx context.Context) (dataset.Counts, error) {
	counts := make(dataset.Counts, len(dataset.Catalog))
	for _, name := range dataset.TableNames() {
		var n int64
		if err := s.pool.QueryRow(ctx, countSQL(name)).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", name, err)
		}
		counts[name] = n
	}
	return counts, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Tx is an open PostgreSQL transaction.
type Tx struct {
	tx pgx.Tx
}

// Insert copies rows into table with the COPY protocol.
func (t *Tx) Insert(ctx context.Context, table dataset.Table, rows [][]any) (int64, error) {
	n, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{table.Name},
		table.ColumnNames(),
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: %s: %v", dataset.ErrForeignKeyViolation, table.Name, err)
		}
		return 0, fmt.Errorf("failed to copy into %s: %w", table.Name, err)
	}
	return n, nil
}

func (t *Tx) Count(ctx context.Context, table string) (int64, error) {
	return t.QueryInt(ctx, countSQL(table))
}

func (t *Tx) QueryInt(ctx context.Context, query string) (int64, error) {
	var n int64
	if err := t.tx.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (t *Tx) Query(ctx context.Context, query string) (*store.Result, error) {
	rows, err := t.tx.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	result := &store.Result{}
	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func countSQL(table string) string {
	return "SELECT COUNT(*) FROM " + pgx.Identifier{table}.Sanitize()
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

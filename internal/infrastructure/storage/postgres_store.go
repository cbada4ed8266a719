package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/ports"
)

// DefaultTable stores snapshot documents when no table is configured.
const DefaultTable = "catalog_snapshots"

// PostgresStore persists the snapshot as one JSONB row.
type PostgresStore struct {
	db     *sql.DB
	table  string
	key    string
	logger *slog.Logger
	psql   sq.StatementBuilderType
}

var _ ports.SnapshotStore = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB, table string, logger *slog.Logger) *PostgresStore {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresStore{
		db:     db,
		table:  pq.QuoteIdentifier(table),
		key:    DefaultSnapshotKey,
		logger: logger,
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the snapshot table when missing.
func (r *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
              id TEXT PRIMARY KEY,
              document JSONB NOT NULL,
              synced_at TIMESTAMPTZ,
              updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
          )`, r.table)

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ReadSnapshot loads the stored document or the empty default when no row exists.
func (r *PostgresStore) ReadSnapshot(ctx context.Context) (domain.CatalogSnapshot, error) {
	query, args, err := r.psql.
		Select("document").
		From(r.table).
		Where(sq.Eq{"id": r.key}).
		ToSql()
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("build select: %w", err)
	}

	var document []byte
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.EmptySnapshot(), nil
	}
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("query snapshot: %w", err)
	}

	return decodeSnapshot(document)
}

// WriteSnapshot upserts the document in a single statement.
func (r *PostgresStore) WriteSnapshot(ctx context.Context, snapshot domain.CatalogSnapshot) error {
	document, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	var syncedAt interface{}
	if snapshot.LastSyncedAt != nil {
		syncedAt = snapshot.LastSyncedAt.UTC()
	}

	query, args, err := r.psql.
		Insert(r.table).
		Columns("id", "document", "synced_at", "updated_at").
		Values(r.key, string(document), syncedAt, sq.Expr("NOW()")).
		Suffix(`ON CONFLICT (id) DO UPDATE
              SET document = EXCLUDED.document,
                  synced_at = EXCLUDED.synced_at,
                  updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	if r.logger != nil {
		r.logger.Debug("snapshot upserted", "table", r.table, "products", len(snapshot.Products))
	}
	return nil
}

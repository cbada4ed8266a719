package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PostCatalog/internal/domain"
)

func sampleSnapshot() domain.CatalogSnapshot {
	synced := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	price := 3200.0
	return domain.CatalogSnapshot{
		Store: &domain.StoreMetadata{
			PageURL:         "https://facebook.com/shop",
			DisplayName:     "Shop",
			Description:     "Catalog generated from https://facebook.com/shop with 1 category.",
			LastSyncedAt:    synced,
			TotalProducts:   1,
			TotalCategories: 1,
		},
		Products: []domain.ProductRecord{{
			ID:           "prod-1",
			Title:        "Saree",
			Price:        &price,
			Currency:     "BDT",
			CategoryID:   "fashion-apparel",
			CategoryName: "Fashion & Apparel",
			ImageURLs:    []string{},
			Tags:         []string{"fashion", "fashion-apparel"},
			Availability: domain.AvailabilityInStock,
			SourcePostID: "1",
			PublishedAt:  synced,
		}},
		Categories: []domain.CategoryRecord{{
			ID:           "fashion-apparel",
			Name:         "Fashion & Apparel",
			ProductCount: 1,
			Keywords:     []string{"fashion"},
		}},
		LastSyncedAt: &synced,
	}
}

func TestFileStoreInitializesMissingDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "catalog.json")
	store := NewFileStore(path, nil)

	snapshot, err := store.ReadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snapshot.Store)
	assert.Empty(t, snapshot.Products)
	assert.NotNil(t, snapshot.Products)
	assert.Nil(t, snapshot.LastSyncedAt)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"store":null,"products":[],"categories":[],"lastSyncedAt":null}`, string(data))
}

func TestFileStoreRoundTripIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "catalog.json"), nil)
	ctx := context.Background()

	require.NoError(t, store.WriteSnapshot(ctx, sampleSnapshot()))
	first, err := store.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), first)

	require.NoError(t, store.WriteSnapshot(ctx, first))
	second, err := store.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStoreRejectsCorruptDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path, nil).ReadSnapshot(context.Background())
	require.Error(t, err)
}

func TestMemoryStoreCopiesOnReadAndWrite(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	empty, err := store.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.EmptySnapshot(), empty)

	snapshot := sampleSnapshot()
	require.NoError(t, store.WriteSnapshot(ctx, snapshot))
	snapshot.Products[0].Title = "mutated"

	got, err := store.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Saree", got.Products[0].Title)
	assert.Equal(t, 1, store.Writes())
}

func TestPostgresStoreReadMissingRow(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT document FROM "catalog_snapshots" WHERE id = $1`)).
		WithArgs(DefaultSnapshotKey).
		WillReturnError(sql.ErrNoRows)

	snapshot, err := NewPostgresStore(db, "", nil).ReadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.EmptySnapshot(), snapshot)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreWriteThenRead(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db, "snapshots", nil)
	snapshot := sampleSnapshot()
	document, err := encodeSnapshot(snapshot)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "snapshots" (id,document,synced_at,updated_at) VALUES ($1,$2,$3,NOW()) ON CONFLICT (id) DO UPDATE`)).
		WithArgs(DefaultSnapshotKey, string(document), snapshot.LastSyncedAt.UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT document FROM "snapshots"`)).
		WithArgs(DefaultSnapshotKey).
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(document))

	require.NoError(t, store.WriteSnapshot(context.Background(), snapshot))
	got, err := store.ReadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snapshot, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreEnsureSchema(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "catalog_snapshots"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewPostgresStore(db, "", nil).EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreWrapsQueryErrors(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	connReset := errors.New("connection reset by peer")
	mock.ExpectQuery(`SELECT document`).WillReturnError(connReset)

	_, err = NewPostgresStore(db, "", nil).ReadSnapshot(context.Background())
	require.ErrorIs(t, err, connReset)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	store := NewRedisStore(client, "")
	ctx := context.Background()

	empty, err := store.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.EmptySnapshot(), empty)

	require.NoError(t, store.WriteSnapshot(ctx, sampleSnapshot()))
	assert.True(t, server.Exists(DefaultRedisKey))

	got, err := store.ReadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)
}

func TestRedisStoreUnavailable(t *testing.T) {
	t.Parallel()

	server, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	defer client.Close()
	server.Close()

	_, err = NewRedisStore(client, "catalog").ReadSnapshot(context.Background())
	require.Error(t, err)
}

package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/linkresolver/internal/resolve"
)

func TestPostgresStorePutUpserts(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostgresStoreWithPool(mock, "product_library", 7*24*time.Hour)
	require.NoError(t, err)

	entry := sampleEntry("abc123")
	resultJSON, err := json.Marshal(entry.Result)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO product_library").
		WithArgs(
			entry.Key,
			entry.URL,
			resultJSON,
			string(entry.SourceStage),
			entry.Result.Confidence,
			entry.ResolvedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Put(context.Background(), entry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetBumpsHits(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostgresStoreWithPool(mock, "product_library", 7*24*time.Hour)
	require.NoError(t, err)

	want := sampleEntry("abc123")
	resultJSON, err := json.Marshal(want.Result)
	require.NoError(t, err)

	mock.ExpectQuery("UPDATE product_library").
		WithArgs(want.Key, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"url", "result", "source_stage", "resolved_at", "hits"}).
			AddRow(want.URL, resultJSON, string(want.SourceStage), want.ResolvedAt, 4))

	got, err := store.Get(context.Background(), "abc123")
	require.NoError(t, err)
	require.Equal(t, "abc123", got.Key)
	require.Equal(t, want.URL, got.URL)
	require.Equal(t, resolve.StageStructured, got.SourceStage)
	require.Equal(t, "Nike", got.Result.Brand)
	require.Equal(t, 4, got.Hits)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetMiss(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostgresStoreWithPool(mock, "product_library", 7*24*time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery("UPDATE product_library").
		WithArgs("nope", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err = store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, resolve.ErrCacheMiss)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreRejectsBadTableName(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewPostgresStoreWithPool(mock, "products; DROP TABLE", time.Hour)
	require.Error(t, err)
}

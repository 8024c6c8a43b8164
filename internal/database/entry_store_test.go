package database

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

func TestSaveEntryInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewEntryStoreWithPool(mock, "warn_entries")
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()

	entry := warn.Entry{
		ID:          "uuid-1",
		StateName:   "New Jersey",
		StateAbbrev: "NJ",
		Timestamp:   now,
		URL:         "https://www.nj.gov/warn",
		ContentHash: "abc123",
		Fields:      warn.Row{"Company": "Acme"},
		NormalizedFields: map[string]string{
			"company": "Acme",
		},
	}

	mock.ExpectExec("INSERT INTO warn_entries").
		WithArgs(
			entry.ID,
			entry.StateName,
			entry.StateAbbrev,
			entry.Timestamp,
			entry.URL,
			entry.ContentHash,
			[]byte(`{"Company":"Acme"}`),
			[]byte(`{"company":"Acme"}`),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.SaveEntry(context.Background(), entry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveEntryRequiresID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewEntryStoreWithPool(mock, "warn_entries")
	require.NoError(t, err)

	err = store.SaveEntry(context.Background(), warn.Entry{})
	require.Error(t, err)
}

func TestNewEntryStoreRejectsBadTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewEntryStoreWithPool(mock, "warn; DROP TABLE")
	require.Error(t, err)
}

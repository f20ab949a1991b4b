package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndList(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{Dataset: "btc.csv", Rows: 50, Columns: 3, Windows: 30, Duration: time.Second, Timestamp: base},
		{Dataset: "btc.csv", Rows: 60, Columns: 3, Windows: 38, Duration: 2 * time.Second, Timestamp: base.Add(time.Hour)},
		{Dataset: "eth.csv", Rows: 10, SkipReason: "no close column", Timestamp: base},
	}
	for _, rec := range records {
		require.NoError(t, store.Append(rec))
	}

	got, err := store.List("btc.csv", base.Add(-time.Minute), base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 50, got[0].Rows)
	assert.Equal(t, 60, got[1].Rows)

	// Range filter excludes the second record.
	got, err = store.List("btc.csv", base.Add(-time.Minute), base.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 50, got[0].Rows)

	// Skip reasons round-trip.
	got, err = store.List("eth.csv", base.Add(-time.Minute), base.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "no close column", got[0].SkipReason)
}

func TestListUnknownDataset(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	got, err := store.List("missing.csv", time.Time{}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

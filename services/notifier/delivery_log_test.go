package notifier

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeliveryLog(t *testing.T) *DeliveryLog {
	t.Helper()
	dl, err := OpenDeliveryLog(filepath.Join(t.TempDir(), "data", "notifications.db"))
	require.NoError(t, err, "opening should also create the data directory")
	t.Cleanup(func() { dl.Close() })
	return dl
}

func TestLastSentAtEmptyLog(t *testing.T) {
	dl := newTestDeliveryLog(t)

	_, found, err := dl.LastSentAt(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRecordAndLastSentAt(t *testing.T) {
	dl := newTestDeliveryLog(t)
	ctx := context.Background()

	first := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	second := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	require.NoError(t, dl.Record(ctx, "alert-1", "AAPL", StatusAboveReached, first))
	require.NoError(t, dl.Record(ctx, "alert-1", "AAPL", StatusAboveReached, second))
	require.NoError(t, dl.Record(ctx, "alert-2", "TSLA", StatusBelowHit, first))

	sentAt, found, err := dl.LastSentAt(ctx, "alert-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, sentAt.Equal(second), "most recent send wins")

	sentAt, found, err = dl.LastSentAt(ctx, "alert-2")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, sentAt.Equal(first))
}

func TestPurgeOlderThan(t *testing.T) {
	dl := newTestDeliveryLog(t)
	ctx := context.Background()

	old := time.Now().Add(-40 * 24 * time.Hour)
	recent := time.Now().Add(-1 * time.Hour)
	require.NoError(t, dl.Record(ctx, "stale", "AAPL", StatusAboveReached, old))
	require.NoError(t, dl.Record(ctx, "fresh", "TSLA", StatusBelowHit, recent))

	purged, err := dl.PurgeOlderThan(ctx, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, found, err := dl.LastSentAt(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = dl.LastSentAt(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, found)
}

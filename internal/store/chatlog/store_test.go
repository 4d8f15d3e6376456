package chatlog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chatlog"
)

func seed(t *testing.T, store Store) {
	t.Helper()
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	entries := []chatlog.Entry{
		{UserID: "ana", Source: chatlog.SourceDirect, LatencyMs: 300},
		{UserID: "luis", Source: chatlog.SourceCanned, LatencyMs: 10},
		{UserID: "ana", Source: chatlog.SourceCanned, LatencyMs: 20},
		{UserID: "anonymous", Source: chatlog.SourceError, LatencyMs: 70},
	}
	for i, entry := range entries {
		entry.ID = fmt.Sprintf("log-%d", i)
		entry.Message = fmt.Sprintf("mensaje %d", i)
		entry.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Append(context.Background(), entry))
	}
}

func TestMemoryStoreListByUserNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store)

	logs, err := store.ListByUser(context.Background(), "ana", 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "log-2", logs[0].ID)
	assert.Equal(t, "log-0", logs[1].ID)

	logs, err = store.ListByUser(context.Background(), "nadie", 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestMemoryStoreListHonoursLimit(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store)

	logs, err := store.List(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "log-3", logs[0].ID)
}

func TestMemoryStoreStats(t *testing.T) {
	store := NewMemoryStore()

	empty, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, empty.TotalMessages)
	assert.Zero(t, empty.AverageLatencyMs)

	seed(t, store)
	stats, err := store.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalMessages)
	assert.Equal(t, int64(3), stats.UniqueUsers)
	assert.Equal(t, int64(3), stats.FallbackResponses)
	assert.InDelta(t, 100.0, stats.AverageLatencyMs, 0.001)
	assert.Equal(t, int64(2), stats.BySource[chatlog.SourceCanned])
}

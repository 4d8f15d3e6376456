package chatlog

import (
	"context"
	"sort"
	"sync"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chatlog"
)

// DefaultLimit bounds list queries that did not ask for a limit.
const DefaultLimit = 100

// Store persists chatbot exchanges for the analytics endpoints.
type Store interface {
	Append(ctx context.Context, entry chatlog.Entry) error
	// ListByUser returns the user's newest entries first.
	ListByUser(ctx context.Context, userID string, limit int) ([]chatlog.Entry, error)
	// List returns every user's newest entries first.
	List(ctx context.Context, limit int) ([]chatlog.Entry, error)
	Stats(ctx context.Context) (chatlog.Statistics, error)
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []chatlog.Entry
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make([]chatlog.Entry, 0, 64)}
}

func (s *MemoryStore) Append(_ context.Context, entry chatlog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string, limit int) ([]chatlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.entries, limit, func(e chatlog.Entry) bool { return e.UserID == userID }), nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]chatlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.entries, limit, nil), nil
}

func (s *MemoryStore) Stats(_ context.Context) (chatlog.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := chatlog.Statistics{BySource: make(map[string]int64)}
	users := make(map[string]struct{})
	var latency int64
	for _, entry := range s.entries {
		stats.TotalMessages++
		stats.BySource[entry.Source]++
		users[entry.UserID] = struct{}{}
		latency += entry.LatencyMs
	}
	stats.UniqueUsers = int64(len(users))
	finishStats(&stats, latency)
	return stats, nil
}

func newestFirst(entries []chatlog.Entry, limit int, keep func(chatlog.Entry) bool) []chatlog.Entry {
	if limit <= 0 {
		limit = DefaultLimit
	}

	out := make([]chatlog.Entry, 0, min(limit, len(entries)))
	for _, entry := range entries {
		if keep == nil || keep(entry) {
			out = append(out, entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// finishStats derives the fallback count and mean latency from the per-source
// counts and the summed latency.
func finishStats(stats *chatlog.Statistics, latencySum int64) {
	stats.FallbackResponses = stats.BySource[chatlog.SourceCanned] + stats.BySource[chatlog.SourceError]
	if stats.TotalMessages > 0 {
		stats.AverageLatencyMs = float64(latencySum) / float64(stats.TotalMessages)
	}
}

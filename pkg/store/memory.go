package store

import (
	"context"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/tephi/pkg/chart"
	"github.com/matzehuels/tephi/pkg/errors"
)

// MemoryStore keeps charts in a map. Charts are copied in and out so
// callers cannot mutate stored state.
type MemoryStore struct {
	mu     sync.RWMutex
	charts map[string]*chart.Chart
	clock  clockwork.Clock
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(clockwork.NewRealClock())
}

// NewMemoryStoreWithClock creates an in-memory store that timestamps charts
// with clock.
func NewMemoryStoreWithClock(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{charts: make(map[string]*chart.Chart), clock: clock}
}

func (s *MemoryStore) Save(ctx context.Context, c *chart.Chart) (string, error) {
	if err := prepare(c, s.clock); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charts[c.ID] = clone(c)
	return c.ID, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*chart.Chart, error) {
	if err := errors.ValidateChartID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.charts[id]
	if !ok {
		return nil, notFound(id)
	}
	return clone(c), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateChartID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.charts[id]; !ok {
		return notFound(id)
	}
	delete(s.charts, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.charts))
	for _, c := range s.charts {
		out = append(out, entryOf(c))
	}
	s.mu.RUnlock()

	sortEntries(out)
	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

// Len returns the number of stored charts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.charts)
}

func clone(c *chart.Chart) *chart.Chart {
	out := *c
	out.Lines = slices.Clone(c.Lines)
	out.Profiles = slices.Clone(c.Profiles)
	return &out
}

// sortEntries orders newest first, breaking ties by ID.
func sortEntries(es []Entry) {
	slices.SortFunc(es, func(a, b Entry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}

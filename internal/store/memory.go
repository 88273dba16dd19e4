package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thermogain/thermogain/internal/projection"
	"github.com/thermogain/thermogain/pkg/energy"
)

var (
	_ ModelStore  = (*MemoryModelStore)(nil)
	_ ResultStore = (*MemoryResultStore)(nil)
)

// MemoryModelStore is an in-memory ModelStore for the CLI and tests.
type MemoryModelStore struct {
	mu     sync.RWMutex
	models map[energy.Type]StoredModel
}

// NewMemoryModelStore constructs an empty store.
func NewMemoryModelStore() *MemoryModelStore {
	return &MemoryModelStore{models: make(map[energy.Type]StoredModel)}
}

// LoadModel returns the stored model of an energy type.
func (s *MemoryModelStore) LoadModel(_ context.Context, e energy.Type) (StoredModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.models[e]
	if !ok {
		return StoredModel{}, ErrNotFound
	}
	return m, nil
}

// SaveModel stores or replaces a model.
func (s *MemoryModelStore) SaveModel(_ context.Context, m StoredModel) error {
	if m.Model.Energy == "" {
		return errors.New("memory model store: empty energy type")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[m.Model.Energy] = m
	return nil
}

// ListModels returns every stored model ordered by energy type.
func (s *MemoryModelStore) ListModels(_ context.Context) ([]StoredModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StoredModel, 0, len(s.models))
	for _, m := range s.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model.Energy < out[j].Model.Energy })
	return out, nil
}

// MemoryResultStore is an in-memory ResultStore. Results are stored encoded so
// callers never share state with the store.
type MemoryResultStore struct {
	mu      sync.RWMutex
	records map[string][]memoryRecord
	now     func() time.Time
}

type memoryRecord struct {
	id        string
	createdAt time.Time
	payload   []byte
}

// NewMemoryResultStore constructs an empty store.
func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{records: make(map[string][]memoryRecord), now: time.Now}
}

// SaveResults appends a calculation to the history of its project.
func (s *MemoryResultStore) SaveResults(_ context.Context, results *projection.Results) (ResultRecord, error) {
	payload, err := EncodeResults(results)
	if err != nil {
		return ResultRecord{}, err
	}
	rec := memoryRecord{id: uuid.NewString(), createdAt: s.now().UTC(), payload: payload}

	s.mu.Lock()
	s.records[results.ProjectID] = append(s.records[results.ProjectID], rec)
	s.mu.Unlock()

	return ResultRecord{ID: rec.id, ProjectID: results.ProjectID, CreatedAt: rec.createdAt, Results: results}, nil
}

// LatestResults returns the most recent calculation of a project.
func (s *MemoryResultStore) LatestResults(_ context.Context, projectID string) (ResultRecord, error) {
	s.mu.RLock()
	history := s.records[projectID]
	var rec memoryRecord
	if len(history) > 0 {
		rec = history[len(history)-1]
	}
	s.mu.RUnlock()

	if rec.id == "" {
		return ResultRecord{}, ErrNotFound
	}
	results, err := DecodeResults(rec.payload)
	if err != nil {
		return ResultRecord{}, err
	}
	return ResultRecord{ID: rec.id, ProjectID: projectID, CreatedAt: rec.createdAt, Results: results}, nil
}

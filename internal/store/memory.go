package store

import (
	"context"
	"sync"
	"time"

	"github.com/jordigilh/uccompare/internal/model"
)

// memoryCore is the shared state behind MemoryJobStore and
// MemorySegmentStore. JobStore and SegmentStore both declare a two-arg
// Get method with different key types, so Go cannot dispatch a single
// concrete type to both interfaces; splitting into two thin wrappers
// over one guarded core keeps a single in-process backing store usable
// as both contracts (construct both with NewMemoryStore).
type memoryCore struct {
	mu       sync.Mutex
	jobs     map[string]model.Job
	results  map[string]model.ComparisonResult
	segments map[SegmentKey][]byte
}

// MemoryJobStore is an in-process JobStore double for tests and
// single-process deployments without Postgres configured.
type MemoryJobStore struct{ core *memoryCore }

// MemorySegmentStore is an in-process SegmentStore double sharing its
// backing core with a MemoryJobStore constructed via the same
// NewMemoryStore call, so MemoryJobStore.Purge can clear a purged job's
// segments too. DeleteByJob removes segment artifacts only, not job state.
type MemorySegmentStore struct{ core *memoryCore }

// NewMemoryStore creates a linked MemoryJobStore + MemorySegmentStore
// pair backed by one mutex-guarded core.
func NewMemoryStore() (*MemoryJobStore, *MemorySegmentStore) {
	core := &memoryCore{
		jobs:     make(map[string]model.Job),
		results:  make(map[string]model.ComparisonResult),
		segments: make(map[SegmentKey][]byte),
	}
	return &MemoryJobStore{core: core}, &MemorySegmentStore{core: core}
}

func (m *MemoryJobStore) Create(ctx context.Context, job model.Job) error {
	m.core.mu.Lock()
	defer m.core.mu.Unlock()
	m.core.jobs[job.JobID] = job
	return nil
}

func (m *MemoryJobStore) Get(ctx context.Context, jobID string) (model.Job, error) {
	m.core.mu.Lock()
	defer m.core.mu.Unlock()
	j, ok := m.core.jobs[jobID]
	if !ok {
		return model.Job{}, ErrNotFound
	}
	return j, nil
}

func (m *MemoryJobStore) Update(ctx context.Context, jobID string, mutate func(*model.Job)) error {
	m.core.mu.Lock()
	defer m.core.mu.Unlock()
	j, ok := m.core.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	mutate(&j)
	j.UpdatedAt = time.Now()
	m.core.jobs[jobID] = j
	return nil
}

func (m *MemoryJobStore) List(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	m.core.mu.Lock()
	defer m.core.mu.Unlock()

	var out []model.Job
	for _, j := range m.core.jobs {
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		out = append(out, j)
	}

	sortJobsByCreatedDesc(out)

	offset := filter.Offset
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func sortJobsByCreatedDesc(jobs []model.Job) {
	for i := 1; i < len(jobs); i++ {
		for j := i; j > 0 && jobs[j-1].CreatedAt.Before(jobs[j].CreatedAt); j-- {
			jobs[j-1], jobs[j] = jobs[j], jobs[j-1]
		}
	}
}

func (m *MemoryJobStore) SetResult(ctx context.Context, jobID string, result model.ComparisonResult) error {
	m.core.mu.Lock()
	defer m.core.mu.Unlock()
	m.core.results[jobID] = result
	if j, ok := m.core.jobs[jobID]; ok {
		j.HasResult = true
		m.core.jobs[jobID] = j
	}
	return nil
}

func (m *MemoryJobStore) GetResult(ctx context.Context, jobID string) (model.ComparisonResult, error) {
	m.core.mu.Lock()
	defer m.core.mu.Unlock()
	r, ok := m.core.results[jobID]
	if !ok {
		return model.ComparisonResult{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryJobStore) Purge(ctx context.Context, olderThan time.Time) (int, error) {
	m.core.mu.Lock()
	defer m.core.mu.Unlock()

	n := 0
	for id, j := range m.core.jobs {
		if !j.Status.IsTerminal() || j.CompletedAt == nil {
			continue
		}
		if j.CompletedAt.Before(olderThan) {
			delete(m.core.jobs, id)
			delete(m.core.results, id)
			for k := range m.core.segments {
				if k.JobID == id {
					delete(m.core.segments, k)
				}
			}
			n++
		}
	}
	return n, nil
}

func (m *MemorySegmentStore) Put(ctx context.Context, key SegmentKey, value []byte) error {
	m.core.mu.Lock()
	defer m.core.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.core.segments[key] = cp
	return nil
}

func (m *MemorySegmentStore) Get(ctx context.Context, key SegmentKey) ([]byte, error) {
	m.core.mu.Lock()
	defer m.core.mu.Unlock()
	v, ok := m.core.segments[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *MemorySegmentStore) Delete(ctx context.Context, key SegmentKey) error {
	m.core.mu.Lock()
	defer m.core.mu.Unlock()
	delete(m.core.segments, key)
	return nil
}

func (m *MemorySegmentStore) DeleteByJob(ctx context.Context, jobID string) error {
	m.core.mu.Lock()
	defer m.core.mu.Unlock()
	for k := range m.core.segments {
		if k.JobID == jobID {
			delete(m.core.segments, k)
		}
	}
	return nil
}

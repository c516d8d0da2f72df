// Package store implements the JobStore and SegmentStore contracts
// (spec §4.9, §4.12): job record persistence with single-writer-per-job
// semantics, and content-addressed intermediate artifact storage.
//
// Grounded on codeready-toolchain-tarsy's pkg/database/client.go
// connection/migration pattern (pgx stdlib driver registration,
// golang-migrate with embedded migration files) and the CRUD shape of
// internal/jobs/manager.go, replacing DefraDB-over-Docker with Postgres:
// nothing in this system's data model needs a document store running in
// a managed container, and §6 names two plain SQL tables directly.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jordigilh/uccompare/internal/model"
)

// ErrNotFound is returned when a job or segment artifact does not exist.
var ErrNotFound = errors.New("store: not found")

// JobFilter selects a subset of jobs for List.
type JobFilter struct {
	Status model.JobStatus
	Limit  int
	Offset int
}

// JobStore persists Job records with single-writer-per-job_id semantics
// (§4.9). The Orchestrator is the sole writer; all other components are
// read-only consumers.
type JobStore interface {
	Create(ctx context.Context, job model.Job) error
	Get(ctx context.Context, jobID string) (model.Job, error)
	Update(ctx context.Context, jobID string, mutate func(*model.Job)) error
	List(ctx context.Context, filter JobFilter) ([]model.Job, error)
	SetResult(ctx context.Context, jobID string, result model.ComparisonResult) error
	GetResult(ctx context.Context, jobID string) (model.ComparisonResult, error)
	// Purge deletes terminal jobs (and their result/segment artifacts)
	// older than olderThan, per the §4.9 retention window.
	Purge(ctx context.Context, olderThan time.Time) (int, error)
}

// SegmentKey identifies one artifact: per-document segments key on
// (doc_id, segment_id); pair segments key on (job_id, segment_id).
type SegmentKey struct {
	DocID     string
	JobID     string
	SegmentID int
}

// SegmentStore persists intermediate pipeline artifacts keyed by
// SegmentKey (§4.12). Values are opaque to the store; callers serialize.
type SegmentStore interface {
	Put(ctx context.Context, key SegmentKey, value []byte) error
	Get(ctx context.Context, key SegmentKey) ([]byte, error)
	Delete(ctx context.Context, key SegmentKey) error
	DeleteByJob(ctx context.Context, jobID string) error
}

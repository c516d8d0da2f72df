// Package orchestrator implements the Orchestrator (spec §4.10): it drives
// the fixed 12-segment chain for a comparison job, owns the Job state
// machine, and is the sole writer of Job records (§5).
//
// Grounded on the teacher's internal/jobs/scheduler.go goroutine-per-job,
// mutex-guarded-map submission model (Submit tracks in-memory state,
// enqueues work, a background goroutine drives it to completion) and
// internal/jobs/job.go's Status/Done state-machine shape, replaced here
// with UCC's single fixed segment chain instead of the teacher's dynamic
// multi-phase work-unit graph, since §4.10 has no branching: segments run
// strictly sequentially, one job, no intra-job parallelism (§5).
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/jordigilh/uccompare/internal/align"
	"github.com/jordigilh/uccompare/internal/classify"
	"github.com/jordigilh/uccompare/internal/definitions"
	"github.com/jordigilh/uccompare/internal/delta"
	"github.com/jordigilh/uccompare/internal/dna"
	"github.com/jordigilh/uccompare/internal/embed"
	"github.com/jordigilh/uccompare/internal/metrics"
	"github.com/jordigilh/uccompare/internal/model"
	"github.com/jordigilh/uccompare/internal/pdfx"
	"github.com/jordigilh/uccompare/internal/progressbus"
	"github.com/jordigilh/uccompare/internal/store"
	"github.com/jordigilh/uccompare/internal/summarize"
	"github.com/jordigilh/uccompare/internal/uccerr"
)

// Config holds the §5/§6 tunables: retry policy, timeouts, and the
// alignment parameters threaded through from request options.
type Config struct {
	MaxRetries             int
	SegmentSoftTimeout     time.Duration
	JobHardTimeout         time.Duration
	WorkerConcurrency      int
	SimilarityThreshold    float64
	MaxCandidatesPerClause int
	Backend                embed.Backend
	RemoteEmbedder         embed.RemoteConfig
}

// DefaultConfig returns the §4.10/§5 defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:             3,
		SegmentSoftTimeout:     540 * time.Second,
		JobHardTimeout:         600 * time.Second,
		WorkerConcurrency:      2,
		SimilarityThreshold:    0.72,
		MaxCandidatesPerClause: 2,
		Backend:                embed.BackendAuto,
	}
}

// LayoutExtractor is the §4.1 LayoutExtractor contract: raw PDF bytes in,
// an ordered Block sequence out, a *uccerr.Error of KindParseError when
// the document has no extractable text layer. *pdfx.Extractor is the only
// implementation; the interface exists so segment 1/5's one-side-parse-
// error path (§4.1/§7) can be exercised with a fake in tests.
type LayoutExtractor interface {
	Extract(docID string, pdfBytes []byte) ([]model.Block, error)
}

// Orchestrator drives jobs end to end: pipeline stages, persistence,
// progress publication, retry, cancellation, and timeout enforcement.
type Orchestrator struct {
	cfg       Config
	jobs      store.JobStore
	segments  store.SegmentStore
	bus       *progressbus.Bus
	metrics   *metrics.Recorder
	logger    *slog.Logger
	extractor LayoutExtractor
	resolver  *definitions.Resolver
	classify  *classify.Classifier
	dna       *dna.Extractor
	delta     *delta.Interpreter
	summarize *summarize.Summarizer

	sem chan struct{}

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// New constructs an Orchestrator. embedder selection happens once per job
// inside runJob (per §9), not here, since a future job may request a
// different backend via request options.
func New(cfg Config, jobs store.JobStore, segments store.SegmentStore, bus *progressbus.Bus, rec *metrics.Recorder, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Orchestrator{
		cfg:       cfg,
		jobs:      jobs,
		segments:  segments,
		bus:       bus,
		metrics:   rec,
		logger:    logger,
		extractor: pdfx.New(logger),
		resolver:  definitions.New(),
		classify:  classify.New(),
		dna:       dna.New(),
		delta:     delta.New(cfg.SimilarityThreshold),
		summarize: summarize.New(),
		sem:       make(chan struct{}, concurrency),
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Options carries the per-request overrides named in §6's `options` field.
type Options struct {
	Backend                embed.Backend
	SimilarityThreshold    float64
	ReturnTokenDiffs       bool
	MaxCandidatesPerClause int
}

// Submit creates a Job record in PENDING/QUEUED state and starts it on a
// background goroutine. It returns immediately with the new job_id.
// Idempotency (§4.10): Submit always creates a fresh job_id; re-running the
// same job_id is the caller's concern at the HTTP layer, not here.
func (o *Orchestrator) Submit(ctx context.Context, docA, docB model.Document, fileNameA, fileNameB string, opts Options) (string, error) {
	jobID := uuid.New().String()
	now := time.Now()

	job := model.Job{
		JobID:     jobID,
		DocIDA:    docA.DocID,
		DocIDB:    docB.DocID,
		FileNameA: fileNameA,
		FileNameB: fileNameB,
		Status:    model.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := o.jobs.Create(ctx, job); err != nil {
		return "", uccerr.StorageTransient("failed to create job record", err)
	}

	if err := o.jobs.Update(ctx, jobID, func(j *model.Job) {
		j.Status = model.JobQueued
	}); err != nil {
		return "", uccerr.StorageTransient("failed to queue job", err)
	}
	o.bus.Publish(model.ProgressFrame{
		Type: model.FrameInitial, JobID: jobID, Status: model.JobQueued, Timestamp: time.Now(),
	})

	go o.runJob(jobID, docA, docB, opts)

	return jobID, nil
}

// Cancel requests cooperative cancellation of a running job (§5). It
// returns false if the job is not currently tracked as running (already
// terminal, or never existed under this process).
func (o *Orchestrator) Cancel(jobID string) bool {
	o.mu.Lock()
	cancel, ok := o.cancels[jobID]
	o.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

// runJob executes the 12-segment chain for one job on its own goroutine,
// bounded by the worker semaphore (§5: N workers in parallel, strictly
// sequential segments within one job).
func (o *Orchestrator) runJob(jobID string, docA, docB model.Document, opts Options) {
	o.sem <- struct{}{}
	defer func() { <-o.sem }()

	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.JobHardTimeout)
	o.mu.Lock()
	o.cancels[jobID] = cancel
	o.mu.Unlock()
	defer func() {
		cancel()
		o.mu.Lock()
		delete(o.cancels, jobID)
		o.mu.Unlock()
	}()

	threshold := o.cfg.SimilarityThreshold
	if opts.SimilarityThreshold > 0 {
		threshold = opts.SimilarityThreshold
	}
	maxCandidates := o.cfg.MaxCandidatesPerClause
	if opts.MaxCandidatesPerClause > 0 {
		maxCandidates = opts.MaxCandidatesPerClause
	}
	backend := o.cfg.Backend
	if opts.Backend != "" {
		backend = opts.Backend
	}
	embedder := embed.Select(backend, o.cfg.RemoteEmbedder)

	started := time.Now()
	if err := o.jobs.Update(ctx, jobID, func(j *model.Job) {
		j.Status = model.JobRunning
		j.StartedAt = &started
	}); err != nil {
		o.logger.Error("failed to mark job running", "job_id", jobID, "error", err)
		return
	}

	run := &jobRun{
		o:         o,
		ctx:       ctx,
		jobID:     jobID,
		docA:      docA,
		docB:      docB,
		embedder:  embedder,
		threshold: threshold,
		maxCand:   maxCandidates,
	}

	result, err := run.execute()
	switch {
	case err != nil && uccerr.KindOf(err) == uccerr.KindCancelled:
		o.finish(jobID, model.JobCancelled, "")
	case err != nil:
		o.finish(jobID, model.JobFailed, err.Error())
	default:
		o.finishSuccess(jobID, result)
	}
	if o.metrics != nil {
		o.metrics.ObserveJobDuration(time.Since(started))
	}
}

func (o *Orchestrator) finishSuccess(jobID string, result model.ComparisonResult) {
	ctx := context.Background()
	if err := o.jobs.SetResult(ctx, jobID, result); err != nil {
		o.finish(jobID, model.JobFailed, "failed to persist result: "+err.Error())
		return
	}
	now := time.Now()
	pct := 100.0
	_ = o.jobs.Update(ctx, jobID, func(j *model.Job) {
		j.Status = model.JobCompleted
		j.CompletedAt = &now
		j.CurrentSegment = 11
		j.CurrentSegmentName = model.SegmentNames[11]
		j.ProgressPct = pct
	})
	o.bus.Publish(model.ProgressFrame{
		Type: model.FrameFinal, JobID: jobID, Status: model.JobCompleted,
		ProgressPct: &pct, Timestamp: time.Now(),
	})
	_ = o.segments.DeleteByJob(ctx, jobID)
}

func (o *Orchestrator) finish(jobID string, status model.JobStatus, reason string) {
	ctx := context.Background()
	now := time.Now()
	_ = o.jobs.Update(ctx, jobID, func(j *model.Job) {
		j.Status = status
		j.CompletedAt = &now
		j.ErrorMessage = reason
	})
	frameType := model.FrameFinal
	if status == model.JobFailed {
		frameType = model.FrameError
	}
	o.bus.Publish(model.ProgressFrame{
		Type: frameType, JobID: jobID, Status: status, ErrorMessage: reason, Timestamp: time.Now(),
	})
	_ = o.segments.DeleteByJob(ctx, jobID)
}

// withRetryLabeled runs fn, retrying transient uccerr classes up to
// MaxRetries with exponential backoff and jitter (§5: base 30s, cap 120s).
// Non-transient errors (ParseError, Internal, InvalidInput) fail
// immediately. segmentName labels the retry counter.
func (o *Orchestrator) withRetryLabeled(ctx context.Context, segmentName string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(uint(o.cfg.MaxRetries)+1),
		retry.Delay(30*time.Second),
		retry.MaxDelay(120*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxJitter(5*time.Second),
		retry.RetryIf(uccerr.IsTransient),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if o.metrics != nil {
				o.metrics.IncRetry(segmentName)
			}
		}),
	)
}

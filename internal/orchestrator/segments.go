package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/jordigilh/uccompare/internal/align"
	"github.com/jordigilh/uccompare/internal/embed"
	"github.com/jordigilh/uccompare/internal/model"
	"github.com/jordigilh/uccompare/internal/uccerr"
)

// layoutSegmentSide names which document a layout segment (1 or 5) parses,
// for the one-side-parse-error warning path (§4.1, §7).
var layoutSegmentSide = map[int]string{1: "A", 5: "B"}

// jobRun holds the state threaded through one job's 12-segment chain.
// A fresh jobRun is built per job; nothing here is shared across jobs.
type jobRun struct {
	o         *Orchestrator
	ctx       context.Context
	jobID     string
	docA      model.Document
	docB      model.Document
	embedder  embed.Embedder
	threshold float64
	maxCand   int

	blocksA, blocksB   []model.Block
	defsA, defsB       model.DefinitionMap
	clausesA, clausesB []model.Clause
	alignResult        align.Result
	byID               map[string]model.Clause
}

// execute runs segments 1 through 11 in order, checking cooperative
// cancellation between each (§4.10, §5). It returns the assembled
// ComparisonResult (including any warnings accumulated along the way) and
// the first terminal error (ParseError/Timeout/Cancelled/Internal)
// encountered.
func (r *jobRun) execute() (model.ComparisonResult, error) {
	steps := []struct {
		segment int
		fn      func() error
	}{
		{1, r.stepLayout(&r.blocksA, r.docA)},
		{2, r.stepDefinitions(&r.defsA, &r.blocksA)},
		{3, r.stepClassify(&r.clausesA, &r.blocksA)},
		{4, r.stepDNA(&r.clausesA)},
		{5, r.stepLayout(&r.blocksB, r.docB)},
		{6, r.stepDefinitions(&r.defsB, &r.blocksB)},
		{7, r.stepClassify(&r.clausesB, &r.blocksB)},
		{8, r.stepDNA(&r.clausesB)},
		{9, r.stepAlign()},
		{10, r.stepDelta()},
		{11, r.stepSummary()},
	}

	var warnings []string
	var parseErrA, parseErrB bool
	var firstParseErr error

	for _, step := range steps {
		if err := r.ctx.Err(); err != nil {
			if err == context.DeadlineExceeded {
				return model.ComparisonResult{}, uccerr.Timeout("job hard timeout exceeded", err)
			}
			return model.ComparisonResult{}, uccerr.Cancelled("job cancelled at segment boundary")
		}

		if err := r.advance(step.segment); err != nil {
			return model.ComparisonResult{}, err
		}

		segCtx, cancel := context.WithTimeout(r.ctx, r.o.cfg.SegmentSoftTimeout)
		start := time.Now()
		err := r.o.withRetryLabeled(segCtx, model.SegmentNames[step.segment], step.fn)
		cancel()
		if r.o.metrics != nil {
			r.o.metrics.ObserveSegmentDuration(model.SegmentNames[step.segment], time.Since(start))
		}
		if err != nil {
			if segCtx.Err() == context.DeadlineExceeded {
				return model.ComparisonResult{}, uccerr.Timeout("segment soft timeout exceeded", err)
			}
			if r.ctx.Err() != nil {
				return model.ComparisonResult{}, uccerr.Cancelled("job cancelled during segment")
			}

			if side, ok := layoutSegmentSide[step.segment]; ok && uccerr.KindOf(err) == uccerr.KindParseError {
				warnings = append(warnings, fmt.Sprintf("parse error: %s", side))
				if firstParseErr == nil {
					firstParseErr = err
				}
				if side == "A" {
					parseErrA = true
				} else {
					parseErrB = true
				}
				continue
			}

			return model.ComparisonResult{}, err
		}
	}

	if parseErrA && parseErrB {
		return model.ComparisonResult{}, uccerr.ParseError("both documents failed to parse", firstParseErr)
	}

	result := model.ComparisonResult{
		Summary:   r.o.summarize.Summarize(r.alignResult.Matches, r.byID),
		Matches:   r.alignResult.Matches,
		UnmappedA: r.alignResult.UnmappedA,
		UnmappedB: r.alignResult.UnmappedB,
		Warnings:  append(warnings, r.alignResult.Warnings...),
	}
	return result, nil
}

// advance writes the Job's current-segment state before the segment's work
// begins and publishes a progress frame, so a subscriber's observed segment
// id is always monotonically non-decreasing (§4.10).
func (r *jobRun) advance(segment int) error {
	name := model.SegmentNames[segment]
	pct := model.ProgressPctForSegment(segment)

	if err := r.o.jobs.Update(r.ctx, r.jobID, func(j *model.Job) {
		j.CurrentSegment = segment
		j.CurrentSegmentName = name
		j.ProgressPct = pct
	}); err != nil {
		return uccerr.StorageTransient("failed to advance job segment", err)
	}

	r.o.bus.Publish(model.ProgressFrame{
		Type: model.FrameProgress, JobID: r.jobID, Status: model.JobRunning,
		Segment: &segment, SegmentName: name, ProgressPct: &pct, Timestamp: time.Now(),
	})
	return nil
}

func (r *jobRun) stepLayout(dst *[]model.Block, doc model.Document) func() error {
	return func() error {
		blocks, err := r.o.extractor.Extract(doc.DocID, doc.Bytes)
		if err != nil {
			return err
		}
		*dst = blocks
		return nil
	}
}

func (r *jobRun) stepDefinitions(dst *model.DefinitionMap, blocks *[]model.Block) func() error {
	return func() error {
		*dst = r.o.resolver.Resolve(*blocks)
		return nil
	}
}

func (r *jobRun) stepClassify(dst *[]model.Clause, blocks *[]model.Block) func() error {
	return func() error {
		*dst = r.o.classify.ClassifyAll(*blocks)
		return nil
	}
}

func (r *jobRun) stepDNA(clauses *[]model.Clause) func() error {
	return func() error {
		r.o.dna.ExtractAll(*clauses)
		return nil
	}
}

func (r *jobRun) stepAlign() func() error {
	return func() error {
		aligner := align.New(r.embedder)
		opts := align.Options{
			SimilarityThreshold:    r.threshold,
			MaxCandidatesPerClause: r.maxCand,
		}
		result, err := aligner.Align(r.ctx, r.clausesA, r.clausesB, r.defsA, r.defsB, opts)
		if err != nil {
			return err
		}
		r.alignResult = result
		if len(result.Warnings) > 0 && r.o.metrics != nil {
			r.o.metrics.IncEmbedderFallback()
		}

		r.byID = make(map[string]model.Clause, len(r.clausesA)+len(r.clausesB))
		for _, c := range r.clausesA {
			r.byID[c.BlockID] = c
		}
		for _, c := range r.clausesB {
			r.byID[c.BlockID] = c
		}
		return nil
	}
}

func (r *jobRun) stepDelta() func() error {
	return func() error {
		r.o.delta.Interpret(r.alignResult.Matches, r.byID)
		return nil
	}
}

func (r *jobRun) stepSummary() func() error {
	return func() error {
		// Summary assembly happens once in execute() after all segments
		// succeed; this segment exists as a named chain step for progress
		// reporting purposes (§4.10's fixed 12-segment table).
		return nil
	}
}

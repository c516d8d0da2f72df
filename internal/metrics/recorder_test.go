package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_ObserveJobDuration(t *testing.T) {
	r := NewRecorder()
	r.ObserveJobDuration(2 * time.Second)

	if got := testutil.CollectAndCount(r.jobDuration); got != 1 {
		t.Fatalf("sample count = %d, want 1", got)
	}
}

func TestRecorder_SegmentDurationLabeledBySegment(t *testing.T) {
	r := NewRecorder()
	r.ObserveSegmentDuration("A: Layout", 500*time.Millisecond)
	r.ObserveSegmentDuration("B: Layout", 750*time.Millisecond)

	if got := testutil.CollectAndCount(r.segmentDuration); got != 2 {
		t.Fatalf("sample count = %d, want 2", got)
	}
}

func TestRecorder_RetryCounterIncrementsPerSegment(t *testing.T) {
	r := NewRecorder()
	r.IncRetry("Alignment")
	r.IncRetry("Alignment")
	r.IncRetry("Delta")

	if got := testutil.ToFloat64(r.retries.WithLabelValues("Alignment")); got != 2 {
		t.Fatalf("Alignment retries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.retries.WithLabelValues("Delta")); got != 1 {
		t.Fatalf("Delta retries = %v, want 1", got)
	}
}

func TestRecorder_EmbedderFallbackCounter(t *testing.T) {
	r := NewRecorder()
	r.IncEmbedderFallback()
	r.IncEmbedderFallback()

	if got := testutil.ToFloat64(r.embedderFallback); got != 2 {
		t.Fatalf("fallback count = %v, want 2", got)
	}
}

func TestRecorder_JobsInStatusGauge(t *testing.T) {
	r := NewRecorder()
	r.SetJobsInStatus("RUNNING", 3)
	r.SetJobsInStatus("QUEUED", 5)

	if got := testutil.ToFloat64(r.jobsByStatus.WithLabelValues("RUNNING")); got != 3 {
		t.Fatalf("RUNNING gauge = %v, want 3", got)
	}
	if got := testutil.ToFloat64(r.jobsByStatus.WithLabelValues("QUEUED")); got != 5 {
		t.Fatalf("QUEUED gauge = %v, want 5", got)
	}
}

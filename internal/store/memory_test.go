package store

import (
	"context"
	"testing"
	"time"

	"github.com/jordigilh/uccompare/internal/model"
)

func TestMemoryJobStore_CreateGetUpdate(t *testing.T) {
	jobs, _ := NewMemoryStore()
	ctx := context.Background()

	job := model.Job{
		JobID:     "job-1",
		DocIDA:    "doc-a",
		DocIDB:    "doc-b",
		Status:    model.JobPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := jobs.Create(ctx, job); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := jobs.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != model.JobPending {
		t.Fatalf("Status = %q, want PENDING", got.Status)
	}

	if err := jobs.Update(ctx, "job-1", func(j *model.Job) {
		j.Status = model.JobRunning
		j.CurrentSegment = 3
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err = jobs.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got.Status != model.JobRunning || got.CurrentSegment != 3 {
		t.Fatalf("got %+v, want RUNNING/segment 3", got)
	}
}

func TestMemoryJobStore_GetMissing(t *testing.T) {
	jobs, _ := NewMemoryStore()
	if _, err := jobs.Get(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryJobStore_UpdateMissing(t *testing.T) {
	jobs, _ := NewMemoryStore()
	err := jobs.Update(context.Background(), "missing", func(j *model.Job) {})
	if err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryJobStore_ListFiltersAndOrders(t *testing.T) {
	jobs, _ := NewMemoryStore()
	ctx := context.Background()

	base := time.Now()
	mustCreate := func(id string, status model.JobStatus, created time.Time) {
		if err := jobs.Create(ctx, model.Job{
			JobID: id, Status: status, CreatedAt: created, UpdatedAt: created,
		}); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	mustCreate("j1", model.JobCompleted, base)
	mustCreate("j2", model.JobRunning, base.Add(time.Second))
	mustCreate("j3", model.JobCompleted, base.Add(2*time.Second))

	out, err := jobs.List(ctx, JobFilter{Status: model.JobCompleted})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d jobs, want 2", len(out))
	}
	if out[0].JobID != "j3" || out[1].JobID != "j1" {
		t.Fatalf("order = %v, want [j3 j1] (created_at desc)", []string{out[0].JobID, out[1].JobID})
	}
}

func TestMemoryJobStore_ListLimitOffset(t *testing.T) {
	jobs, _ := NewMemoryStore()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		if err := jobs.Create(ctx, model.Job{
			JobID: id, Status: model.JobPending,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	out, err := jobs.List(ctx, JobFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d, want 2", len(out))
	}
}

func TestMemoryJobStore_SetResultGetResult(t *testing.T) {
	jobs, _ := NewMemoryStore()
	ctx := context.Background()

	if err := jobs.Create(ctx, model.Job{JobID: "job-1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	result := model.ComparisonResult{Warnings: []string{"w1"}}
	if err := jobs.SetResult(ctx, "job-1", result); err != nil {
		t.Fatalf("SetResult: %v", err)
	}

	got, err := jobs.GetResult(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if len(got.Warnings) != 1 || got.Warnings[0] != "w1" {
		t.Fatalf("got %+v", got)
	}

	j, err := jobs.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !j.HasResult {
		t.Fatalf("HasResult = false, want true after SetResult")
	}
}

func TestMemoryJobStore_GetResultMissing(t *testing.T) {
	jobs, _ := NewMemoryStore()
	if _, err := jobs.GetResult(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryJobStore_Purge(t *testing.T) {
	jobs, segments := NewMemoryStore()
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()

	mustCreate := func(id string, status model.JobStatus, completedAt *time.Time) {
		if err := jobs.Create(ctx, model.Job{
			JobID: id, Status: status, CreatedAt: old, CompletedAt: completedAt,
		}); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	oldCompleted := old
	recentCompleted := recent
	mustCreate("expired", model.JobCompleted, &oldCompleted)
	mustCreate("fresh", model.JobCompleted, &recentCompleted)
	mustCreate("still-running", model.JobRunning, nil)

	if err := segments.Put(ctx, SegmentKey{JobID: "expired", SegmentID: 1}, []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	n, err := jobs.Purge(ctx, cutoff)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("purged %d, want 1", n)
	}

	if _, err := jobs.Get(ctx, "expired"); err != ErrNotFound {
		t.Fatalf("expired job still present")
	}
	if _, err := jobs.Get(ctx, "fresh"); err != nil {
		t.Fatalf("fresh job should survive purge: %v", err)
	}
	if _, err := segments.Get(ctx, SegmentKey{JobID: "expired", SegmentID: 1}); err != ErrNotFound {
		t.Fatalf("expired job's segments should be purged too")
	}
}

func TestMemorySegmentStore_PutGetDelete(t *testing.T) {
	_, segments := NewMemoryStore()
	ctx := context.Background()
	key := SegmentKey{DocID: "doc-a", JobID: "job-1", SegmentID: 2}

	if err := segments.Put(ctx, key, []byte("payload")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := segments.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("got %q, want payload", got)
	}

	if err := segments.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := segments.Get(ctx, key); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound after Delete", err)
	}
}

func TestMemorySegmentStore_PutCopiesValue(t *testing.T) {
	_, segments := NewMemoryStore()
	ctx := context.Background()
	key := SegmentKey{JobID: "job-1", SegmentID: 1}

	value := []byte("original")
	if err := segments.Put(ctx, key, value); err != nil {
		t.Fatalf("Put: %v", err)
	}
	value[0] = 'X'

	got, err := segments.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("stored value was mutated by caller's backing array: got %q", got)
	}
}

func TestMemorySegmentStore_DeleteByJob(t *testing.T) {
	_, segments := NewMemoryStore()
	ctx := context.Background()

	if err := segments.Put(ctx, SegmentKey{JobID: "job-1", SegmentID: 1}, []byte("a")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := segments.Put(ctx, SegmentKey{JobID: "job-1", SegmentID: 2}, []byte("b")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := segments.Put(ctx, SegmentKey{JobID: "job-2", SegmentID: 1}, []byte("c")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := segments.DeleteByJob(ctx, "job-1"); err != nil {
		t.Fatalf("DeleteByJob: %v", err)
	}

	if _, err := segments.Get(ctx, SegmentKey{JobID: "job-1", SegmentID: 1}); err != ErrNotFound {
		t.Fatalf("job-1 segment 1 should be gone")
	}
	if _, err := segments.Get(ctx, SegmentKey{JobID: "job-1", SegmentID: 2}); err != ErrNotFound {
		t.Fatalf("job-1 segment 2 should be gone")
	}
	if _, err := segments.Get(ctx, SegmentKey{JobID: "job-2", SegmentID: 1}); err != nil {
		t.Fatalf("job-2 segment should survive: %v", err)
	}
}

package model

import "time"

// JobStatus is the Job lifecycle state (§4.10 state machine).
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobQueued    JobStatus = "QUEUED"
	JobRunning   JobStatus = "RUNNING"
	JobRetrying  JobStatus = "RETRYING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
	JobCancelled JobStatus = "CANCELLED"
)

// IsTerminal reports whether status is a write-once terminal state.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled:
		return true
	default:
		return false
	}
}

// SegmentNames is the fixed 12-segment chain (§4.10), indexed by segment id.
var SegmentNames = [12]string{
	0:  "Queued",
	1:  "A: Layout",
	2:  "A: Definitions",
	3:  "A: Classification",
	4:  "A: DNA",
	5:  "B: Layout",
	6:  "B: Definitions",
	7:  "B: Classification",
	8:  "B: DNA",
	9:  "Alignment",
	10: "Delta",
	11: "Summary",
}

// Job is the mutable job record owned exclusively by the Orchestrator.
type Job struct {
	JobID              string
	DocIDA             string
	DocIDB             string
	FileNameA          string
	FileNameB          string
	Status             JobStatus
	CurrentSegment     int
	CurrentSegmentName string
	ProgressPct        float64
	ErrorMessage       string
	HasResult          bool
	RetryCount         int
	CreatedAt          time.Time
	StartedAt          *time.Time
	CompletedAt        *time.Time
	UpdatedAt          time.Time
}

// ProgressPctForSegment computes the monotonic progress percentage for a
// segment id per §4.10: progress_pct = 100 * (current_segment / 11).
func ProgressPctForSegment(segment int) float64 {
	return 100.0 * float64(segment) / 11.0
}

// FrameType is the ProgressBus message discriminator (§4.11).
type FrameType string

const (
	FrameInitial  FrameType = "initial"
	FrameProgress FrameType = "progress"
	FrameFinal    FrameType = "final"
	FrameError    FrameType = "error"
)

// ProgressFrame is a single message published on a job's ProgressBus topic.
type ProgressFrame struct {
	Type         FrameType `json:"type"`
	JobID        string    `json:"job_id"`
	Status       JobStatus `json:"status"`
	Segment      *int      `json:"segment,omitempty"`
	SegmentName  string    `json:"segment_name,omitempty"`
	ProgressPct  *float64  `json:"progress_pct,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

type MemoryJobStatus string

const (
	MemoryJobStatusPending   MemoryJobStatus = "pending"
	MemoryJobStatusCompleted MemoryJobStatus = "completed"
	MemoryJobStatusFailed    MemoryJobStatus = "failed"
)

// MaxJobAttempts bounds how many times a job may fail before it becomes
// terminally failed.
const MaxJobAttempts = 3

// MemoryJob is one unit of "produce a web memory for post X" work.
// There is at most one job per post. Only the queue worker mutates a job,
// and only through the transition methods below.
type MemoryJob struct {
	ID          string
	PostID      string
	Status      MemoryJobStatus
	Attempts    int
	LastError   string
	LastErrorAt *time.Time
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// NewMemoryJob creates a pending job for the given post. Job IDs are ULIDs
// so lexical order matches creation order.
func NewMemoryJob(postID string) *MemoryJob {
	now := time.Now()
	return &MemoryJob{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		PostID:    postID,
		Status:    MemoryJobStatusPending,
		CreatedAt: now,
	}
}

// Complete transitions pending -> completed.
func (j *MemoryJob) Complete(now time.Time) {
	j.Status = MemoryJobStatusCompleted
	j.ProcessedAt = &now
}

// Fail records a failed attempt. The job stays pending and claimable until
// the attempt bound is reached, then becomes terminally failed.
func (j *MemoryJob) Fail(now time.Time, cause error) {
	j.Attempts++
	if cause != nil {
		j.LastError = cause.Error()
	}
	j.LastErrorAt = &now
	if j.Attempts >= MaxJobAttempts {
		j.Status = MemoryJobStatusFailed
		j.ProcessedAt = &now
		return
	}
	j.Status = MemoryJobStatusPending
}

// Terminal reports whether the job can never be claimed again.
func (j *MemoryJob) Terminal() bool {
	return j.Status == MemoryJobStatusCompleted || j.Status == MemoryJobStatusFailed
}

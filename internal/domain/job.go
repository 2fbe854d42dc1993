package domain

// JobStatus represents a job's scheduling state.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// String returns the string representation of JobStatus.
func (s JobStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid value.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s in the job state
// graph: pending → running → {completed, failed}, pending → cancelled.
// Reachability is transitive, so a pending job may complete or fail directly
// without an observed running phase.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	if !next.IsValid() || next == s {
		return false
	}
	switch s {
	case JobStatusPending:
		return next != JobStatusPending
	case JobStatusRunning:
		return next == JobStatusCompleted || next == JobStatusFailed
	}
	return false
}

// Job represents a scheduled compute job with escrowed quantum time units.
type Job struct {
	ID               int64     // monotonic, assigned once at submission
	Owner            string    // submitting principal
	Status           JobStatus
	Priority         int64
	QuantumTimeUnits uint64 // units escrowed at submission
	HardwareProvider string // provider ID reference
	SubmittedAt      int64  // unix ms
}

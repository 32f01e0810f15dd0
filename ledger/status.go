package ledger

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of one submission event. A given mtime
// version of a submission moves forward through at most one of
// queued->running->completed, queued->running->killed,
// queued->running->failed(N), or directly to file_too_large.
type Status string

const (
	// StatusQueued marks a submission admitted and waiting to run
	StatusQueued Status = "queued"

	// StatusRunning marks a submission whose grading action is executing
	StatusRunning Status = "running"

	// StatusCompleted marks a grading action which exited with code 0
	StatusCompleted Status = "completed"

	// StatusKilled marks a grading action terminated for exceeding its
	// time limit
	StatusKilled Status = "killed"

	// StatusFileTooLarge marks a submission rejected for exceeding the
	// project size limit. Terminal, such submissions are never queued.
	StatusFileTooLarge Status = "file_too_large"
)

// StatusFailed returns the status for a grading action which exited with the
// given non-zero code
func StatusFailed(code int) Status {
	return Status(fmt.Sprintf("failed(%d)", code))
}

// IsFailure indicates the status belongs to the failed class shown on the
// status pages: failed(*), killed, and file_too_large
func (s Status) IsFailure() bool {
	return strings.HasPrefix(string(s), "failed") ||
		s == StatusKilled ||
		s == StatusFileTooLarge
}

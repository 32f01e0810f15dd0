package monitor

import (
	"github.com/kartikmohta/submit-system/config"
	"github.com/kartikmohta/submit-system/store"
)

// Action is one queued grading invocation for an admitted submission.
// Created by discovery, consumed exactly once by the supervisor, then
// discarded. The outcome lives in the ledger, not in the Action.
type Action struct {
	// ID correlates an action's log lines across its lifecycle
	ID string

	// Project is the configuration of the project being graded
	Project config.Project

	// Submission is the file the grading action runs against
	Submission store.Info

	// StdoutPath and StderrPath are where the grading action's output is
	// captured. Populated at execution time, deterministic per
	// (project, filename) so duplicate runs overwrite prior logs.
	StdoutPath string
	StderrPath string
}

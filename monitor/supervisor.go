package monitor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/kartikmohta/submit-system/ledger"
	"github.com/kartikmohta/submit-system/metrics"
	"github.com/kartikmohta/submit-system/notify"

	"github.com/Noah-Huppert/golog"
	"github.com/prometheus/client_golang/prometheus"
)

// Supervisor drains an action queue strictly sequentially, one grading
// process at a time in admission order. Grading workloads may be resource
// heavy, serialization avoids oversubscribing the grading host.
type Supervisor struct {
	// Logger
	Logger golog.Logger

	// Ledger records status transitions as actions execute
	Ledger *ledger.Ledger

	// Notifier delivers received and failure notices to submission owners
	Notifier notify.Notifier

	// MailDomain derives owner addresses from submission file names
	MailDomain string

	// LogDir is where captured stdout / stderr files are written
	LogDir string

	// Metrics
	Metrics metrics.Metrics
}

// Drain notifies every queued submission's owner of its queue position, then
// executes the actions in order. A failing action never aborts the rest of
// the queue.
func (s Supervisor) Drain(ctx context.Context, queue []Action) {
	s.Logger.Infof("%d actions in queue", len(queue))

	for i, action := range queue {
		recipient := notify.Recipient(action.Submission.Name, s.MailDomain)
		body := receivedBody(recipient, action.Project.Name, i)
		if err := s.Notifier.Notify(recipient, subjectReceived, body); err != nil {
			s.Logger.Errorf("failed to send received notice to %s: %s",
				recipient, err.Error())
		}
	}

	for i := range queue {
		s.execute(ctx, &queue[i])
	}
}

// execute runs one grading action to a terminal state and records it
func (s Supervisor) execute(ctx context.Context, action *Action) {
	project := action.Project.Name
	filename := action.Submission.Name

	s.Logger.Infof("executing action %s: %s %s %s",
		action.ID, action.Project.Action, project, filename)

	action.StdoutPath = filepath.Join(s.LogDir,
		fmt.Sprintf("stdout.%s.%s", project, filename))
	action.StderrPath = filepath.Join(s.LogDir,
		fmt.Sprintf("stderr.%s.%s", project, filename))

	// Stale logs from a previous run of the same submission name are
	// removed best effort, a leftover log must not block grading.
	for _, path := range []string{action.StdoutPath, action.StderrPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.Logger.Errorf("could not remove stale log %s: %s", path, err.Error())
		}
	}

	stdoutFile, err := os.Create(action.StdoutPath)
	if err != nil {
		s.fail(action, ledger.StatusFailed(-1),
			fmt.Errorf("failed to create stdout log: %s", err.Error()))
		return
	}
	defer stdoutFile.Close()

	stderrFile, err := os.Create(action.StderrPath)
	if err != nil {
		s.fail(action, ledger.StatusFailed(-1),
			fmt.Errorf("failed to create stderr log: %s", err.Error()))
		return
	}
	defer stderrFile.Close()

	timeLimit := time.Duration(action.Project.TimeLimitSecs * float64(time.Second))
	runCtx, cancel := context.WithTimeout(ctx, timeLimit)
	defer cancel()

	cmd := exec.Command(action.Project.Action, project, filename)
	cmd.Stdout = stdoutFile
	cmd.Stderr = stderrFile
	setProcessGroup(cmd)

	s.Ledger.Upsert(project, filename, ledger.StatusRunning,
		action.Submission.Size, action.Submission.ModTime)

	durationTimer := s.Metrics.StartTimer()

	status := s.run(runCtx, cmd, timeLimit)

	durationTimer.Finish(s.Metrics.ActionDurationsSeconds.
		With(prometheus.Labels{"project": project}))
	s.Metrics.ActionsRunTotal.With(prometheus.Labels{
		"project": project,
		"status":  statusClass(status),
	}).Inc()

	s.Ledger.Upsert(project, filename, status,
		action.Submission.Size, action.Submission.ModTime)

	if status != ledger.StatusCompleted {
		s.notifyFailure(action)
	}
}

// run starts the grading process and blocks until it reaches a terminal
// state. On timeout the entire process group is killed so grading helpers
// spawned by the action cannot outlive it.
func (s Supervisor) run(ctx context.Context, cmd *exec.Cmd, timeLimit time.Duration) ledger.Status {
	if err := cmd.Start(); err != nil {
		s.Logger.Errorf("failed to start grading action: %s", err.Error())
		return ledger.StatusFailed(-1)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err == nil {
			s.Logger.Infof("action returned with code 0")
			return ledger.StatusCompleted
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			s.Logger.Errorf("action returned with code %d", exitErr.ExitCode())
			return ledger.StatusFailed(exitErr.ExitCode())
		}

		s.Logger.Errorf("action failed: %s", err.Error())
		return ledger.StatusFailed(-1)

	case <-ctx.Done():
		s.Logger.Errorf("action is overtime after %s, killing process group %d",
			timeLimit, cmd.Process.Pid)
		killProcessGroup(cmd)
		<-done
		return ledger.StatusKilled
	}
}

// fail records a terminal failure that happened before the grading process
// could start
func (s Supervisor) fail(action *Action, status ledger.Status, err error) {
	s.Logger.Errorf("action %s: %s", action.ID, err.Error())

	s.Ledger.Upsert(action.Project.Name, action.Submission.Name, status,
		action.Submission.Size, action.Submission.ModTime)
	s.Metrics.ActionsRunTotal.With(prometheus.Labels{
		"project": action.Project.Name,
		"status":  statusClass(status),
	}).Inc()

	s.notifyFailure(action)
}

// notifyFailure sends the owner a templated failure notice for the action's
// recorded terminal state
func (s Supervisor) notifyFailure(action *Action) {
	record, ok := s.Ledger.Get(action.Project.Name, action.Submission.Name)
	if !ok {
		return
	}

	recipient := notify.Recipient(action.Submission.Name, s.MailDomain)
	body := failureBody(recipient, action.Project.Name, record, action)
	if err := s.Notifier.Notify(recipient, subjectFailure, body); err != nil {
		s.Logger.Errorf("failed to send failure notice to %s: %s",
			recipient, err.Error())
	}
}

// statusClass maps a terminal status onto its metric label
func statusClass(status ledger.Status) string {
	switch status {
	case ledger.StatusCompleted:
		return "completed"
	case ledger.StatusKilled:
		return "killed"
	default:
		return "failed"
	}
}

package monitor

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/kartikmohta/submit-system/ledger"
	"github.com/kartikmohta/submit-system/store"

	"github.com/Noah-Huppert/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSupervisor wires a Supervisor around fakes and a temp log dir
func newSupervisor(t *testing.T) (Supervisor, *recordingNotifier) {
	notifier := &recordingNotifier{}

	supervisor := Supervisor{
		Logger:     golog.NewStdLogger("test"),
		Ledger:     newTestLedger(t),
		Notifier:   notifier,
		MailDomain: "example.edu",
		LogDir:     t.TempDir(),
		Metrics:    testMetrics,
	}

	return supervisor, notifier
}

// newAction builds a queued action for the given grading script
func newAction(script, filename string, timeLimitSecs float64) Action {
	conf := testConf(script)
	conf.Projects[0].TimeLimitSecs = timeLimitSecs

	return Action{
		ID:      "test-action",
		Project: conf.Projects[0],
		Submission: store.Info{
			Name:    filename,
			Size:    3_000_000,
			ModTime: at(60),
		},
	}
}

func TestDrainCompletedAction(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\necho grading \"$1\" \"$2\"\nexit 0\n")

	supervisor, notifier := newSupervisor(t)
	action := newAction(script, "alice.tar", 10)

	supervisor.Drain(context.Background(), []Action{action})

	record, ok := supervisor.Ledger.Get("project1", "alice.tar")
	require.True(t, ok)
	assert.Equal(t, ledger.StatusCompleted, record.Status)

	require.Len(t, notifier.sent, 1, "a completed action sends only the received notice")
	assert.Equal(t, "alice@example.edu", notifier.sent[0].Recipient)
	assert.Equal(t, subjectReceived, notifier.sent[0].Subject)
	assert.Contains(t, notifier.sent[0].Body, "0 submissions ahead")
}

func TestDrainCapturesActionOutput(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\necho grading \"$1\" \"$2\"\nexit 0\n")

	supervisor, _ := newSupervisor(t)
	queue := []Action{newAction(script, "alice.tar", 10)}

	supervisor.Drain(context.Background(), queue)

	stdout, err := os.ReadFile(queue[0].StdoutPath)
	require.NoError(t, err)
	assert.Equal(t, "grading project1 alice.tar\n", string(stdout),
		"the action must receive the project and filename as arguments")
}

func TestDrainFailedAction(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\necho broken submission >&2\nexit 3\n")

	supervisor, notifier := newSupervisor(t)
	action := newAction(script, "bob.tar", 10)

	supervisor.Drain(context.Background(), []Action{action})

	record, ok := supervisor.Ledger.Get("project1", "bob.tar")
	require.True(t, ok)
	assert.Equal(t, ledger.StatusFailed(3), record.Status)

	require.Len(t, notifier.sent, 2)
	failure := notifier.sent[1]
	assert.Equal(t, subjectFailure, failure.Subject)
	assert.Contains(t, failure.Body, "failed(3)")
	assert.Contains(t, failure.Body, "STDERR")
	assert.Contains(t, failure.Body, "broken submission",
		"captured logs are attached to failure notices")
}

func TestDrainKillsOvertimeAction(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\nsleep 30\n")

	supervisor, notifier := newSupervisor(t)
	action := newAction(script, "carol.tar", 1)

	start := time.Now()
	supervisor.Drain(context.Background(), []Action{action})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 10*time.Second,
		"the action must be terminated shortly after its time limit")

	record, ok := supervisor.Ledger.Get("project1", "carol.tar")
	require.True(t, ok)
	assert.Equal(t, ledger.StatusKilled, record.Status)

	require.Len(t, notifier.sent, 2)
	failure := notifier.sent[1]
	assert.Equal(t, subjectFailure, failure.Subject)
	assert.Contains(t, failure.Body, "killed")
	assert.NotContains(t, failure.Body, "STDOUT",
		"overtime kills send no logs, partial output is misleading")
}

func TestDrainContinuesPastFailures(t *testing.T) {
	failing := writeScript(t, "#!/bin/sh\nexit 1\n")
	passing := writeScript(t, "#!/bin/sh\nexit 0\n")

	supervisor, notifier := newSupervisor(t)
	queue := []Action{
		newAction(failing, "bob.tar", 10),
		newAction(passing, "alice.tar", 10),
	}

	supervisor.Drain(context.Background(), queue)

	record, ok := supervisor.Ledger.Get("project1", "alice.tar")
	require.True(t, ok)
	assert.Equal(t, ledger.StatusCompleted, record.Status,
		"a failing action must not abort the rest of the queue")

	// Two received notices plus one failure notice.
	assert.Len(t, notifier.sent, 3)
	assert.Contains(t, notifier.sent[1].Body, "1 submissions ahead")
}

func TestDrainMissingActionExecutable(t *testing.T) {
	supervisor, notifier := newSupervisor(t)
	action := newAction("/no/such/grader", "dave.tar", 10)

	supervisor.Drain(context.Background(), []Action{action})

	record, ok := supervisor.Ledger.Get("project1", "dave.tar")
	require.True(t, ok)
	assert.Equal(t, ledger.StatusFailed(-1), record.Status)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, subjectFailure, notifier.sent[1].Subject)
}

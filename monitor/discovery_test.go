package monitor

import (
	"testing"

	"github.com/kartikmohta/submit-system/ledger"
	"github.com/kartikmohta/submit-system/store"

	"github.com/Noah-Huppert/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newDiscovery wires a Discovery around fakes for one project
func newDiscovery(t *testing.T, entries []store.Info) (Discovery, *recordingNotifier) {
	notifier := &recordingNotifier{}

	discovery := Discovery{
		Logger: golog.NewStdLogger("test"),
		Conf:   testConf("/bin/true"),
		Store: fakeStore{dirs: map[string][]store.Info{
			"/submit":          {},
			"/submit/project1": entries,
		}},
		Ledger:     newTestLedger(t),
		Notifier:   notifier,
		MailDomain: "example.edu",
		Metrics:    testMetrics,
	}

	return discovery, notifier
}

func TestDiscoveryAdmitsNewSubmission(t *testing.T) {
	discovery, notifier := newDiscovery(t, []store.Info{
		{Name: "alice.tar", Size: 3_000_000, ModTime: at(60)},
	})

	queue, err := discovery.Run()
	require.NoError(t, err)

	require.Len(t, queue, 1)
	assert.Equal(t, "alice.tar", queue[0].Submission.Name)
	assert.Equal(t, "project1", queue[0].Project.Name)
	assert.NotEmpty(t, queue[0].ID)

	record, ok := discovery.Ledger.Get("project1", "alice.tar")
	require.True(t, ok)
	assert.Equal(t, ledger.StatusQueued, record.Status)

	assert.Empty(t, notifier.sent, "admission sends no notifications, the "+
		"received notice is sent when the queue drains")
}

func TestDiscoveryIsIdempotent(t *testing.T) {
	discovery, _ := newDiscovery(t, []store.Info{
		{Name: "alice.tar", Size: 3_000_000, ModTime: at(60)},
	})

	queue, err := discovery.Run()
	require.NoError(t, err)
	require.Len(t, queue, 1)

	before, ok := discovery.Ledger.Get("project1", "alice.tar")
	require.True(t, ok)

	// The same listing again must produce no queue entries and no ledger
	// mutation.
	queue, err = discovery.Run()
	require.NoError(t, err)
	assert.Empty(t, queue)

	after, ok := discovery.Ledger.Get("project1", "alice.tar")
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestDiscoveryAdmitsResubmissionWithNewerModTime(t *testing.T) {
	discovery, _ := newDiscovery(t, []store.Info{
		{Name: "alice.tar", Size: 3_000_000, ModTime: at(600)},
	})

	queue, err := discovery.Run()
	require.NoError(t, err)
	require.Len(t, queue, 1)

	// Same file name, strictly newer modification time: a new event.
	discovery.Store = fakeStore{dirs: map[string][]store.Info{
		"/submit":          {},
		"/submit/project1": {{Name: "alice.tar", Size: 3_100_000, ModTime: at(60)}},
	}}

	queue, err = discovery.Run()
	require.NoError(t, err)
	require.Len(t, queue, 1)

	record, ok := discovery.Ledger.Get("project1", "alice.tar")
	require.True(t, ok)
	assert.Equal(t, ledger.StatusQueued, record.Status)
	assert.Equal(t, "3.1000", record.SizeMB)
}

func TestDiscoveryRejectsOversizeSubmission(t *testing.T) {
	discovery, notifier := newDiscovery(t, []store.Info{
		{Name: "bob.tar", Size: 8_000_000, ModTime: at(60)},
	})

	queue, err := discovery.Run()
	require.NoError(t, err)

	assert.Empty(t, queue, "an over limit submission must never be enqueued")

	record, ok := discovery.Ledger.Get("project1", "bob.tar")
	require.True(t, ok)
	assert.Equal(t, ledger.StatusFileTooLarge, record.Status)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "bob@example.edu", notifier.sent[0].Recipient)
	assert.Equal(t, subjectFailure, notifier.sent[0].Subject)
	assert.Contains(t, notifier.sent[0].Body, "file_too_large")
	assert.NotContains(t, notifier.sent[0].Body, "STDOUT",
		"a rejected submission has no captured logs to attach")
}

func TestDiscoveryOrderIsOldestFirst(t *testing.T) {
	// The fake store returns entries in the order given, ordering is the
	// store's contract. Discovery must preserve it in the queue.
	discovery, _ := newDiscovery(t, []store.Info{
		{Name: "old.tar", Size: 1_000, ModTime: at(600)},
		{Name: "new.tar", Size: 1_000, ModTime: at(60)},
	})

	queue, err := discovery.Run()
	require.NoError(t, err)

	require.Len(t, queue, 2)
	assert.Equal(t, "old.tar", queue[0].Submission.Name)
	assert.Equal(t, "new.tar", queue[1].Submission.Name)
}

func TestDiscoveryFailsWhenTargetDirUnavailable(t *testing.T) {
	discovery, _ := newDiscovery(t, nil)
	discovery.Store = fakeStore{dirs: map[string][]store.Info{}}

	_, err := discovery.Run()
	require.Error(t, err, "an unreachable target directory fails the pass")
}

func TestDiscoverySkipsAbsentProject(t *testing.T) {
	discovery, _ := newDiscovery(t, nil)
	discovery.Store = fakeStore{dirs: map[string][]store.Info{
		"/submit": {},
	}}

	queue, err := discovery.Run()
	require.NoError(t, err, "a project without a sub-directory is skipped, not fatal")
	assert.Empty(t, queue)
}

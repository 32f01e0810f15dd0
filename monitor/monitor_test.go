package monitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kartikmohta/submit-system/config"
	"github.com/kartikmohta/submit-system/ledger"
	"github.com/kartikmohta/submit-system/metrics"
	"github.com/kartikmohta/submit-system/store"

	"github.com/Noah-Huppert/golog"
	"github.com/stretchr/testify/require"
)

// testMetrics is shared by all tests in the package, Prometheus collectors
// register globally and can only be created once per process
var testMetrics = metrics.NewMetrics()

// sentMessage is one notification captured by recordingNotifier
type sentMessage struct {
	Recipient string
	Subject   string
	Body      string
}

// recordingNotifier captures notifications instead of sending them
type recordingNotifier struct {
	sent []sentMessage
}

// Notify implements notify.Notifier
func (n *recordingNotifier) Notify(recipient, subject, body string) error {
	n.sent = append(n.sent, sentMessage{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	})

	return nil
}

// fakeStore serves listings from memory
type fakeStore struct {
	dirs map[string][]store.Info
}

// List implements store.Store
func (s fakeStore) List(dir string) ([]store.Info, error) {
	entries, ok := s.dirs[dir]
	if !ok {
		return nil, store.UnavailableError{Path: dir, Err: os.ErrNotExist}
	}

	return entries, nil
}

// Close implements store.Store
func (s fakeStore) Close() error {
	return nil
}

// newTestLedger creates a ledger backed by a temp dir with no publisher
func newTestLedger(t *testing.T) *ledger.Ledger {
	return ledger.New(golog.NewStdLogger("test"), t.TempDir(), "cis520")
}

// testConf builds a single project monitor configuration. The grading action
// is only used by supervisor tests.
func testConf(action string) *config.Monitor {
	return &config.Monitor{
		TargetDir: "/submit",
		Username:  "cis520",
		Local:     true,
		Projects: []config.Project{
			{
				Name:          "project1",
				Action:        action,
				SizeLimitMB:   5,
				TimeLimitSecs: 600,
			},
		},
	}
}

// writeScript writes an executable shell script for supervisor tests
func writeScript(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "action.sh")

	err := os.WriteFile(path, []byte(contents), 0755)
	require.NoError(t, err)

	return path
}

// at builds a deterministic submission time for fixtures
func at(secondsAgo int) time.Time {
	return time.Now().Add(-time.Duration(secondsAgo) * time.Second).Truncate(time.Second)
}

package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Noah-Huppert/golog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLedger creates a ledger storing files under a temp dir
func newTestLedger(t *testing.T) (*Ledger, string) {
	dir := t.TempDir()
	return New(golog.NewStdLogger("test"), dir, "cis520"), dir
}

func TestUpsertAndGet(t *testing.T) {
	led, _ := newTestLedger(t)

	mtime := time.Now().Add(-time.Hour).Truncate(time.Second)
	led.Upsert("project1", "alice.tar", StatusQueued, 3_000_000, mtime)

	record, ok := led.Get("project1", "alice.tar")
	require.True(t, ok)

	assert.Equal(t, "alice.tar", record.Name)
	assert.Equal(t, StatusQueued, record.Status)
	assert.Equal(t, "3.0000", record.SizeMB)
	assert.True(t, record.Submitted.Equal(mtime))

	_, ok = led.Get("project1", "bob.tar")
	assert.False(t, ok)
}

func TestUpsertTriggersPublisher(t *testing.T) {
	led, _ := newTestLedger(t)

	published := 0
	led.SetPublisher(func() {
		published++
	})

	led.Upsert("project1", "alice.tar", StatusQueued, 100, time.Now())
	led.Upsert("project1", "alice.tar", StatusRunning, 100, time.Now())

	assert.Equal(t, 2, published, "every mutation must republish")
}

func TestFlushLoadRoundTrip(t *testing.T) {
	led, dir := newTestLedger(t)

	base := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	led.Upsert("project1", "alice.tar", StatusCompleted, 3_000_000, base)
	led.Upsert("project1", "bob.tar", StatusFailed(2), 1_234_567, base.Add(time.Minute))
	led.Upsert("project1", "web_test.tar", StatusFileTooLarge, 9_000_000, base.Add(time.Hour))

	require.NoError(t, led.Flush("project1"))

	firstFlush, err := os.ReadFile(filepath.Join(dir, "cis520.project1"))
	require.NoError(t, err)

	reloaded := New(golog.NewStdLogger("test"), dir, "cis520")
	require.NoError(t, reloaded.Load("project1"))
	require.NoError(t, reloaded.Flush("project1"))

	secondFlush, err := os.ReadFile(filepath.Join(dir, "cis520.project1"))
	require.NoError(t, err)

	assert.Equal(t, string(firstFlush), string(secondFlush),
		"flush then load must reproduce identical record content")

	record, ok := reloaded.Get("project1", "bob.tar")
	require.True(t, ok)
	assert.Equal(t, StatusFailed(2), record.Status)
	assert.Equal(t, "1.2346", record.SizeMB)
	assert.True(t, record.Submitted.Equal(base.Add(time.Minute)))
}

func TestLoadSkipsMalformedRecords(t *testing.T) {
	led, dir := newTestLedger(t)

	contents := "alice.tar,3.0000,1600000100,1600000000,completed\n" +
		"not a record at all\n" +
		"bob.tar,1.0000,garbage,1600000000,queued\n" +
		"carol.tar,2.0000,1600000300,1600000200,queued\n"
	err := os.WriteFile(filepath.Join(dir, "cis520.project1"), []byte(contents), 0644)
	require.NoError(t, err)

	require.NoError(t, led.Load("project1"), "malformed records are not fatal")

	assert.Len(t, led.Records("project1"), 2)

	_, ok := led.Get("project1", "alice.tar")
	assert.True(t, ok)
	_, ok = led.Get("project1", "bob.tar")
	assert.False(t, ok, "the malformed record must be skipped")
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	led, _ := newTestLedger(t)

	require.NoError(t, led.Load("project1"))
	assert.Empty(t, led.Records("project1"))
}

func TestStatusFailureClass(t *testing.T) {
	assert.True(t, StatusFailed(1).IsFailure())
	assert.True(t, StatusKilled.IsFailure())
	assert.True(t, StatusFileTooLarge.IsFailure())

	assert.False(t, StatusQueued.IsFailure())
	assert.False(t, StatusRunning.IsFailure())
	assert.False(t, StatusCompleted.IsFailure())
}

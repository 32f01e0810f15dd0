package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/kartikmohta/submit-system/config"
)

// Info describes one submission file in a project directory
type Info struct {
	// Name is the submission file name
	Name string

	// Size is the file size in bytes
	Size int64

	// ModTime is the file modification time, the source of truth for when
	// the submission was made
	ModTime time.Time
}

// Store lists submission files in project directories. The backing store may
// be a local filesystem or a remote SFTP session, callers cannot tell the
// difference.
type Store interface {
	// List returns the entries of dir ordered by ascending modification
	// time so the oldest submission is serviced first. A directory or
	// connection failure is reported as an UnavailableError.
	List(dir string) ([]Info, error)

	// Close releases any session held by the store
	Close() error
}

// UnavailableError indicates the store's directory or connection could not be
// established. Fatal for the current discovery pass, the next invocation
// may retry.
type UnavailableError struct {
	// Path is the directory being listed, empty for connection failures
	Path string

	// Err is the underlying failure
	Err error
}

// Error implements error
func (e UnavailableError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("submission store unavailable: %s", e.Err.Error())
	}

	return fmt.Sprintf("submission store unavailable at %s: %s", e.Path, e.Err.Error())
}

// Unwrap returns the underlying failure
func (e UnavailableError) Unwrap() error {
	return e.Err
}

// New creates the store selected by the monitor configuration
func New(conf *config.Monitor) (Store, error) {
	if conf.Local {
		return NewLocal(), nil
	}

	return DialSFTP(conf.Hostname, conf.Username, conf.PrivateKeyFile,
		conf.PrivateKeyPassphrase)
}

// sortByModTime orders entries by ascending modification time, breaking ties
// by name so listings are deterministic
func sortByModTime(entries []Info) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].ModTime.Before(entries[j].ModTime)
	})
}

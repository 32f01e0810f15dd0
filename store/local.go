package store

import (
	"os"
	"path/filepath"
)

// localStore lists directories on the local filesystem
type localStore struct{}

// NewLocal creates a store backed by the local filesystem
func NewLocal() Store {
	return localStore{}
}

// List implements Store
func (s localStore) List(dir string) ([]Info, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, UnavailableError{Path: dir, Err: err}
	}

	entries := []Info{}
	for _, dirEntry := range dirEntries {
		fileInfo, err := os.Stat(filepath.Join(dir, dirEntry.Name()))
		if err != nil {
			return nil, UnavailableError{Path: dir, Err: err}
		}

		if fileInfo.IsDir() {
			continue
		}

		entries = append(entries, Info{
			Name:    dirEntry.Name(),
			Size:    fileInfo.Size(),
			ModTime: fileInfo.ModTime(),
		})
	}

	sortByModTime(entries)

	return entries, nil
}

// Close implements Store
func (s localStore) Close() error {
	return nil
}

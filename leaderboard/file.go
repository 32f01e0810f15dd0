package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// fileStore persists leaderboard records as one JSON file
type fileStore struct {
	path string
}

// NewFileStore creates a store backed by a JSON file
func NewFileStore(path string) Store {
	return fileStore{path: path}
}

// Load implements Store
func (s fileStore) Load(ctx context.Context) (map[string]Record, error) {
	contents, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]Record{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard file %s: %s",
			s.path, err.Error())
	}

	records := map[string]Record{}
	if err := json.Unmarshal(contents, &records); err != nil {
		return nil, fmt.Errorf("failed to parse leaderboard file %s: %s",
			s.path, err.Error())
	}

	return records, nil
}

// Save implements Store
func (s fileStore) Save(ctx context.Context, records map[string]Record) error {
	contents, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize leaderboard records: %s", err.Error())
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, contents, 0644); err != nil {
		return fmt.Errorf("failed to write leaderboard file %s: %s",
			tmpPath, err.Error())
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace leaderboard file %s: %s",
			s.path, err.Error())
	}

	return nil
}

// Close implements Store
func (s fileStore) Close(ctx context.Context) error {
	return nil
}

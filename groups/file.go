package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// fileStore persists membership state as one JSON file
type fileStore struct {
	path string
}

// NewFileStore creates a store backed by a JSON file
func NewFileStore(path string) Store {
	return fileStore{path: path}
}

// Load implements Store
func (s fileStore) Load(ctx context.Context) (*Membership, error) {
	contents, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return NewMembership(), nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read membership file %s: %s",
			s.path, err.Error())
	}

	membership := NewMembership()
	if err := json.Unmarshal(contents, membership); err != nil {
		return nil, fmt.Errorf("failed to parse membership file %s: %s",
			s.path, err.Error())
	}

	return membership, nil
}

// Save implements Store
func (s fileStore) Save(ctx context.Context, membership *Membership) error {
	contents, err := json.MarshalIndent(membership, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize membership state: %s", err.Error())
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, contents, 0644); err != nil {
		return fmt.Errorf("failed to write membership file %s: %s",
			tmpPath, err.Error())
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace membership file %s: %s",
			s.path, err.Error())
	}

	return nil
}

// Close implements Store
func (s fileStore) Close(ctx context.Context) error {
	return nil
}

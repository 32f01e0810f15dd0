package groups

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Membership is the full group membership state: every user belongs to at
// most one group at a time, and a group's member set lists exactly the users
// mapped to it.
type Membership struct {
	// Users maps username -> groupname
	Users map[string]string `json:"users"`

	// Groups maps groupname -> member usernames
	Groups map[string][]string `json:"groups"`
}

// NewMembership creates an empty membership state
func NewMembership() *Membership {
	return &Membership{
		Users:  map[string]string{},
		Groups: map[string][]string{},
	}
}

// Store persists membership state. Each tool invocation is one short-lived
// transaction: load, validate, mutate, save.
type Store interface {
	// Load reads the full membership state. A store which has never been
	// written loads as empty.
	Load(ctx context.Context) (*Membership, error)

	// Save writes the full membership state
	Save(ctx context.Context, membership *Membership) error

	// Close releases the store's connection
	Close(ctx context.Context) error
}

// NewStore selects a store implementation from the database argument: a
// mongodb:// URI opens a MongoDB store, anything else is a JSON file path.
func NewStore(ctx context.Context, db string) (Store, error) {
	if strings.HasPrefix(db, "mongodb://") {
		return DialMongo(ctx, db)
	}

	return NewFileStore(db), nil
}

// Assign places username in groupname, removing the user from any previous
// group first. Returns the new group's member list.
func (m *Membership) Assign(username, groupname string) ([]string, error) {
	if _, taken := m.Users[groupname]; taken {
		return nil, fmt.Errorf("invalid groupname %s; this belongs to a username",
			groupname)
	}

	if previous, ok := m.Users[username]; ok {
		members, found := remove(m.Groups[previous], username)
		if !found {
			return nil, fmt.Errorf("membership state is corrupt: user %s has no group",
				username)
		}

		if len(members) == 0 {
			delete(m.Groups, previous)
		} else {
			m.Groups[previous] = members
		}
	}

	members := append(m.Groups[groupname], username)
	sort.Strings(members)
	m.Groups[groupname] = members
	m.Users[username] = groupname

	return members, nil
}

// remove deletes one occurrence of name from members, reporting whether it
// was present
func remove(members []string, name string) ([]string, bool) {
	for i, member := range members {
		if member == name {
			return append(members[:i], members[i+1:]...), true
		}
	}

	return members, false
}

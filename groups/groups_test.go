package groups

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// totalMembers counts memberships across every group
func totalMembers(m *Membership) int {
	total := 0
	for _, members := range m.Groups {
		total += len(members)
	}

	return total
}

func TestAssignNewUser(t *testing.T) {
	membership := NewMembership()

	members, err := membership.Assign("alice", "overfitters")
	require.NoError(t, err)

	assert.Equal(t, []string{"alice"}, members)
	assert.Equal(t, "overfitters", membership.Users["alice"])
}

func TestAssignReassignsExactlyOnce(t *testing.T) {
	membership := NewMembership()

	_, err := membership.Assign("alice", "overfitters")
	require.NoError(t, err)
	_, err = membership.Assign("bob", "overfitters")
	require.NoError(t, err)
	_, err = membership.Assign("carol", "regressors")
	require.NoError(t, err)

	before := totalMembers(membership)

	members, err := membership.Assign("alice", "regressors")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"alice", "carol"}, members)
	assert.Equal(t, []string{"bob"}, membership.Groups["overfitters"],
		"the user must be removed from exactly one prior member set")
	assert.Equal(t, "regressors", membership.Users["alice"])
	assert.Equal(t, before, totalMembers(membership),
		"reassignment must not change the total membership count")
}

func TestAssignRemovesEmptyGroup(t *testing.T) {
	membership := NewMembership()

	_, err := membership.Assign("alice", "solo")
	require.NoError(t, err)
	_, err = membership.Assign("alice", "duo")
	require.NoError(t, err)

	_, exists := membership.Groups["solo"]
	assert.False(t, exists, "a drained group disappears")
}

func TestAssignRejectsUsernameAsGroup(t *testing.T) {
	membership := NewMembership()

	_, err := membership.Assign("alice", "overfitters")
	require.NoError(t, err)

	_, err = membership.Assign("bob", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "belongs to a username")
}

func TestAssignDetectsCorruptState(t *testing.T) {
	membership := NewMembership()
	membership.Users["alice"] = "ghosts"

	_, err := membership.Assign("alice", "overfitters")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt")
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "groups.db")

	db := NewFileStore(path)

	membership, err := db.Load(ctx)
	require.NoError(t, err, "a store which has never been written loads as empty")
	assert.Empty(t, membership.Users)

	_, err = membership.Assign("alice", "overfitters")
	require.NoError(t, err)
	_, err = membership.Assign("bob", "overfitters")
	require.NoError(t, err)

	require.NoError(t, db.Save(ctx, membership))

	reloaded, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, membership, reloaded)
}

func TestNewStoreSelectsFileBackend(t *testing.T) {
	db, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "groups.db"))
	require.NoError(t, err)

	_, ok := db.(fileStore)
	assert.True(t, ok, "plain paths select the JSON file backend")
}

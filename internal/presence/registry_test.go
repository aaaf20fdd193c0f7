package presence

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_AnnounceOverwrites(t *testing.T) {
	r := NewRegistry()

	r.Announce("u1", "s1")
	r.Announce("u1", "s2")

	session, ok := r.Lookup("u1")
	require.True(t, ok)
	require.Equal(t, SessionHandle("s2"), session)
	require.Equal(t, []string{"u1"}, r.Snapshot())
}

func TestRegistry_RevokeMatchingSession(t *testing.T) {
	r := NewRegistry()

	r.Announce("u1", "s1")
	r.Revoke("u1", "s1")

	_, ok := r.Lookup("u1")
	require.False(t, ok)
	require.Empty(t, r.Snapshot())
}

func TestRegistry_StaleRevokeIsNoOp(t *testing.T) {
	r := NewRegistry()

	// Reconnect lands before the old session's disconnect fires.
	r.Announce("u1", "s1")
	r.Announce("u1", "s2")
	r.Revoke("u1", "s1")

	session, ok := r.Lookup("u1")
	require.True(t, ok)
	require.Equal(t, SessionHandle("s2"), session)
}

func TestRegistry_RevokeUnknownUser(t *testing.T) {
	r := NewRegistry()
	r.Revoke("ghost", "s1")
	require.Empty(t, r.Snapshot())
}

func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry()
	r.Announce("u1", "s1")
	r.Announce("u2", "s2")
	r.Announce("u3", "s3")
	r.Revoke("u2", "s2")

	online := r.Snapshot()
	sort.Strings(online)
	require.Equal(t, []string{"u1", "u3"}, online)
}

func TestRegistry_ConcurrentChurn(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handle := SessionHandle(rune('a' + i%8))
			r.Announce("u1", handle)
			r.Lookup("u1")
			r.Snapshot()
			r.Revoke("u1", handle)
		}(i)
	}
	wg.Wait()

	// At most one entry may remain for the user.
	require.LessOrEqual(t, len(r.Snapshot()), 1)
}

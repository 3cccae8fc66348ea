package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func trackerAt(t *testing.T, start time.Time) (*Tracker, *time.Time) {
	t.Helper()
	current := start
	tr := NewTracker()
	tr.now = func() time.Time { return current }
	return tr, &current
}

func TestSetAndActive(t *testing.T) {
	tr, _ := trackerAt(t, time.Now())

	require.Equal(t, []string{"alice"}, tr.Set(7, "alice", true))
	require.Equal(t, []string{"alice", "bob"}, tr.Set(7, "bob", true))
	require.Equal(t, []string{"alice", "bob"}, tr.Active(7))

	require.Equal(t, []string{"bob"}, tr.Set(7, "alice", false))
	require.Equal(t, []string{"bob"}, tr.Active(7))
}

func TestEntriesExpireAfterTTL(t *testing.T) {
	tr, now := trackerAt(t, time.Now())

	tr.Set(7, "alice", true)
	*now = now.Add(7 * time.Second)
	require.Empty(t, tr.Active(7))
}

func TestRefreshExtendsExpiry(t *testing.T) {
	tr, now := trackerAt(t, time.Now())

	tr.Set(7, "alice", true)
	*now = now.Add(4 * time.Second)
	tr.Set(7, "alice", true)
	*now = now.Add(4 * time.Second)
	require.Equal(t, []string{"alice"}, tr.Active(7))
}

func TestClearUserDropsAllThreads(t *testing.T) {
	tr, _ := trackerAt(t, time.Now())

	tr.Set(1, "alice", true)
	tr.Set(2, "alice", true)
	tr.Set(2, "bob", true)

	touched := tr.ClearUser("alice")
	require.ElementsMatch(t, []int64{1, 2}, touched)
	require.Empty(t, tr.Active(1))
	require.Equal(t, []string{"bob"}, tr.Active(2))

	require.Empty(t, tr.ClearUser("alice"))
}

func TestOffForUnknownUserIsHarmless(t *testing.T) {
	tr, _ := trackerAt(t, time.Now())
	require.Empty(t, tr.Set(9, "ghost", false))
}

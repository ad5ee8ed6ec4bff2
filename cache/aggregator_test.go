package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock drives an aggregator's notion of time from a fixed base.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestAggregator() (*Aggregator, *testClock) {
	clock := &testClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)}
	agg := NewAggregator()
	agg.activeWindow = 30 * time.Minute
	agg.userTTL = time.Hour
	agg.sessionTTL = 24 * time.Hour
	agg.recentDays = 7
	agg.now = clock.Now
	return agg, clock
}

func TestInitSession_MintsNewUserPerCall(t *testing.T) {
	agg, _ := newTestAggregator()

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		userID, sessionID, ts := agg.InitSession("")
		require.NotEmpty(t, userID)
		require.NotEmpty(t, sessionID)
		assert.NotEqual(t, userID, sessionID)
		assert.False(t, ts.IsZero())
		seen[userID] = true
	}

	assert.Len(t, seen, 5, "each call should mint a distinct user")
	assert.Equal(t, int64(5), agg.Snapshot().TotalUsers)
}

func TestInitSession_ReusesTrackedUser(t *testing.T) {
	agg, _ := newTestAggregator()

	userID, firstSession, _ := agg.InitSession("")
	resolvedID, secondSession, _ := agg.InitSession(userID)

	assert.Equal(t, userID, resolvedID)
	assert.NotEqual(t, firstSession, secondSession, "every call mints a fresh session")
	assert.Equal(t, int64(1), agg.Snapshot().TotalUsers)

	// The user record now points at the newest session.
	assert.Equal(t, secondSession, agg.users[userID].CurrentSessionID)
}

func TestInitSession_UnrecognizedIDMintsFresh(t *testing.T) {
	agg, _ := newTestAggregator()

	userID, _, _ := agg.InitSession("stale-client-id")

	assert.NotEqual(t, "stale-client-id", userID)
	assert.Equal(t, int64(1), agg.Snapshot().TotalUsers)
	assert.NotContains(t, agg.users, "stale-client-id")
}

func TestInitSession_TouchesTodayWithoutEntries(t *testing.T) {
	agg, _ := newTestAggregator()

	agg.InitSession("")
	snap := agg.Snapshot()

	assert.Equal(t, int64(0), snap.Today.Entries)
	assert.Equal(t, 1, snap.Today.UniqueUsers)
}

func TestHeartbeat_RefreshesLiveness(t *testing.T) {
	agg, clock := newTestAggregator()
	base := clock.Now()

	ts, err := agg.Heartbeat("u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, base, ts)
	require.Contains(t, agg.users, "u1")
	require.Contains(t, agg.sessions, "s1")

	clock.Set(base.Add(10 * time.Minute))
	_, err = agg.Heartbeat("u1", "s1")
	require.NoError(t, err)

	assert.Equal(t, base.Add(10*time.Minute), agg.users["u1"].LastSeenAt)
	assert.Equal(t, base, agg.sessions["s1"].StartedAt, "heartbeats must not reset session age")
}

func TestHeartbeat_NeverChangesCounters(t *testing.T) {
	agg, _ := newTestAggregator()

	userID, sessionID, _ := agg.InitSession("")
	agg.TrackEntry(userID, sessionID, 3, "log", nil)

	for i := 0; i < 10; i++ {
		_, err := agg.Heartbeat(userID, sessionID)
		require.NoError(t, err)
	}
	agg.Heartbeat("brand-new-user", "brand-new-session")

	snap := agg.Snapshot()
	assert.Equal(t, int64(1), snap.TotalUsers)
	assert.Equal(t, int64(3), snap.TotalEntries)
}

func TestHeartbeat_MissingIDs(t *testing.T) {
	agg, _ := newTestAggregator()

	_, err := agg.Heartbeat("", "s1")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotContains(t, agg.sessions, "s1", "failed heartbeat must not create state")

	_, err = agg.Heartbeat("u1", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotContains(t, agg.users, "u1")
}

func TestTrackEntry_Counts(t *testing.T) {
	agg, _ := newTestAggregator()

	total, _, err := agg.TrackEntry("u1", "", 5, "log", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	// Negative counts apply unclamped (correction entries).
	total, _, err = agg.TrackEntry("u1", "", -2, "log", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	snap := agg.Snapshot()
	assert.Equal(t, int64(3), snap.TotalEntries)
	assert.Equal(t, int64(3), snap.Today.Entries)
	assert.Equal(t, 1, snap.Today.UniqueUsers)
}

func TestTrackEntry_DoesNotCreateUserRecord(t *testing.T) {
	agg, clock := newTestAggregator()

	_, _, err := agg.TrackEntry("ghost", "", 1, "log", nil)
	require.NoError(t, err)
	assert.Empty(t, agg.users, "tracking must not register unknown users")

	// But it refreshes a tracked user's liveness.
	userID, sessionID, _ := agg.InitSession("")
	later := clock.Now().Add(20 * time.Minute)
	clock.Set(later)
	_, _, err = agg.TrackEntry(userID, sessionID, 1, "log", nil)
	require.NoError(t, err)
	assert.Equal(t, later, agg.users[userID].LastSeenAt)
}

func TestTrackEntry_MissingUserID(t *testing.T) {
	agg, _ := newTestAggregator()

	_, _, err := agg.TrackEntry("", "s1", 4, "log", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	snap := agg.Snapshot()
	assert.Equal(t, int64(0), snap.TotalEntries)
	assert.Equal(t, int64(0), snap.Today.Entries)
}

func TestSnapshot_ActiveWindowAndEviction(t *testing.T) {
	agg, clock := newTestAggregator()
	base := clock.Now()

	agg.Heartbeat("fresh", "s1")

	clock.Set(base.Add(-10 * time.Minute))
	agg.Heartbeat("recent", "s2")

	clock.Set(base.Add(-31 * time.Minute))
	agg.Heartbeat("stale", "s3")

	clock.Set(base.Add(-2 * time.Hour))
	agg.Heartbeat("ancient", "s4")

	clock.Set(base)
	snap := agg.Snapshot()

	assert.Equal(t, 2, snap.ActiveUsers)
	assert.Len(t, agg.users, 2, "snapshot evicts users past the active window")
	assert.Contains(t, agg.users, "fresh")
	assert.Contains(t, agg.users, "recent")
}

func TestSnapshot_DoesNotCreateDayStats(t *testing.T) {
	agg, _ := newTestAggregator()

	snap := agg.Snapshot()

	assert.Equal(t, int64(0), snap.Today.Entries)
	assert.Equal(t, 0, snap.Today.UniqueUsers)
	assert.Empty(t, agg.days, "reading must not create day buckets")
}

func TestSnapshot_RecentStatsSeries(t *testing.T) {
	agg, clock := newTestAggregator()
	base := clock.Now()

	// Record activity three days back, then snapshot from today.
	clock.Set(base.AddDate(0, 0, -3))
	agg.TrackEntry("u1", "", 7, "log", nil)

	clock.Set(base)
	agg.TrackEntry("u2", "", 2, "log", nil)
	snap := agg.Snapshot()

	require.Len(t, snap.RecentStats, 7)
	assert.Equal(t, base.Format("Mon Jan 02 2006"), snap.RecentStats[6].Date, "series ends today")
	assert.Equal(t, base.AddDate(0, 0, -6).Format("Mon Jan 02 2006"), snap.RecentStats[0].Date, "series starts six days back")

	assert.Equal(t, int64(7), snap.RecentStats[3].Entries)
	assert.Equal(t, 1, snap.RecentStats[3].UniqueUsers)
	assert.Equal(t, int64(2), snap.RecentStats[6].Entries)

	// Days with no recorded activity stay zero-valued.
	assert.Equal(t, int64(0), snap.RecentStats[0].Entries)
	assert.Equal(t, 0, snap.RecentStats[0].UniqueUsers)
}

func TestCleanup_Horizons(t *testing.T) {
	agg, clock := newTestAggregator()
	base := clock.Now()

	clock.Set(base.Add(-2 * time.Hour))
	agg.Heartbeat("stale-user", "stale-session-window")

	clock.Set(base.Add(-25 * time.Hour))
	agg.Heartbeat("ancient-user", "ancient-session")

	clock.Set(base.Add(-30 * time.Minute))
	agg.Heartbeat("fresh-user", "fresh-session")
	agg.TrackEntry("fresh-user", "fresh-session", 4, "log", nil)

	clock.Set(base)
	removedUsers, removedSessions := agg.Cleanup()

	assert.Equal(t, 2, removedUsers)
	assert.Equal(t, 1, removedSessions)
	assert.Contains(t, agg.users, "fresh-user")
	assert.Contains(t, agg.sessions, "fresh-session")
	assert.Contains(t, agg.sessions, "stale-session-window", "sessions younger than the retention horizon survive")

	// Day stats and global counters are untouched by cleanup.
	snap := agg.Snapshot()
	assert.Equal(t, int64(4), snap.TotalEntries)
	assert.NotEmpty(t, agg.days)
}

func TestScenario_InitTrackHeartbeatSnapshot(t *testing.T) {
	agg, _ := newTestAggregator()

	userID, sessionID, _ := agg.InitSession("")
	require.NotEmpty(t, userID)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, int64(1), agg.Snapshot().TotalUsers)

	total, _, err := agg.TrackEntry(userID, sessionID, 5, "log", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	snap := agg.Snapshot()
	assert.Equal(t, int64(5), snap.Today.Entries)
	assert.Equal(t, 1, snap.Today.UniqueUsers)

	_, err = agg.Heartbeat(userID, sessionID)
	require.NoError(t, err)

	snap = agg.Snapshot()
	assert.Equal(t, int64(5), snap.TotalEntries)
	assert.Equal(t, 1, snap.ActiveUsers)
}

func TestConcurrentTrackEntry_NoLostUpdates(t *testing.T) {
	agg, _ := newTestAggregator()
	userID, sessionID, _ := agg.InitSession("")

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			agg.TrackEntry(userID, sessionID, 1, "log", nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(workers), agg.Snapshot().TotalEntries)
}

func TestConcurrentMixedOperations(t *testing.T) {
	agg, _ := newTestAggregator()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(4)
		go func() {
			defer wg.Done()
			agg.InitSession("")
		}()
		go func() {
			defer wg.Done()
			agg.Heartbeat("shared-user", "shared-session")
		}()
		go func() {
			defer wg.Done()
			agg.Snapshot()
		}()
		go func() {
			defer wg.Done()
			agg.Cleanup()
		}()
	}
	wg.Wait()

	snap := agg.Snapshot()
	assert.Equal(t, int64(25), snap.TotalUsers)
}

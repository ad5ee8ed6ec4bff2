// Package cache provides the in-memory telemetry aggregation store.
package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AtRiskMedia/pulsetrack-go/config"
	"github.com/AtRiskMedia/pulsetrack-go/models"
	"github.com/AtRiskMedia/pulsetrack-go/utils"
)

// ErrInvalidArgument is returned when a required identifier is missing.
// Callers map it to a client-facing rejection; no state is mutated on
// this path.
var ErrInvalidArgument = errors.New("invalid argument")

// Aggregator owns all mutable telemetry state: global counters, active-user
// and session tracking, and per-day stats. All operations are safe under
// concurrent invocation.
//
// Locking: a single RWMutex guards every map and counter. Operations are
// short, in-memory read-modify-write sequences, so one coarse lock keeps
// the invariants simple and is never contended for long.
type Aggregator struct {
	mu       sync.RWMutex
	users    map[string]*models.UserRecord
	sessions map[string]*models.SessionRecord
	days     map[string]*models.DayStats

	totalEntries int64
	totalUsers   int64

	activeWindow time.Duration
	userTTL      time.Duration
	sessionTTL   time.Duration
	recentDays   int

	now func() time.Time
}

// NewAggregator creates an empty aggregator with horizons from config.
func NewAggregator() *Aggregator {
	return &Aggregator{
		users:        make(map[string]*models.UserRecord),
		sessions:     make(map[string]*models.SessionRecord),
		days:         make(map[string]*models.DayStats),
		activeWindow: config.ActiveUserWindow,
		userTTL:      config.UserRecordTTL,
		sessionTTL:   config.SessionRecordTTL,
		recentDays:   config.RecentDays,
		now:          time.Now,
	}
}

// InitSession resolves or mints a user id, always mints a fresh session id,
// and records both. TotalUsers increments only when the supplied id is
// absent or unrecognized; reconnecting users keep their identity.
func (a *Aggregator) InitSession(existingUserID string) (userID, sessionID string, ts time.Time) {
	ts = a.now()

	a.mu.Lock()
	defer a.mu.Unlock()

	userID = existingUserID
	if userID == "" || a.users[userID] == nil {
		userID = utils.GenerateULID()
		a.totalUsers++
	}

	sessionID = utils.GenerateULID()

	a.users[userID] = &models.UserRecord{
		UserID:           userID,
		LastSeenAt:       ts,
		CurrentSessionID: sessionID,
	}
	a.sessions[sessionID] = &models.SessionRecord{
		SessionID: sessionID,
		UserID:    userID,
		StartedAt: ts,
	}

	// Registering counts toward today's unique users but adds no entries.
	day := a.touchDayLocked(ts)
	day.UniqueUsers[userID] = true

	return userID, sessionID, ts
}

// Heartbeat refreshes a user's liveness. Unknown user or session ids are
// created on first sight, but this path never increments TotalUsers and
// never resets an existing session's start time.
func (a *Aggregator) Heartbeat(userID, sessionID string) (time.Time, error) {
	if userID == "" || sessionID == "" {
		return time.Time{}, fmt.Errorf("%w: userId and sessionId are required", ErrInvalidArgument)
	}

	ts := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()

	if user, exists := a.users[userID]; exists {
		user.LastSeenAt = ts
	} else {
		a.users[userID] = &models.UserRecord{
			UserID:           userID,
			LastSeenAt:       ts,
			CurrentSessionID: sessionID,
		}
	}

	if _, exists := a.sessions[sessionID]; !exists {
		a.sessions[sessionID] = &models.SessionRecord{
			SessionID: sessionID,
			UserID:    userID,
			StartedAt: ts,
		}
	}

	return ts, nil
}

// TrackEntry adds entryCount to the global and per-day entry counters and
// marks the user in today's unique-user set. Negative and zero counts are
// applied as-is so callers can issue corrections. A tracked user's liveness
// is refreshed, but unlike Heartbeat this never creates a UserRecord.
// entryType and metadata are accepted for forward compatibility and do not
// affect counters.
func (a *Aggregator) TrackEntry(userID, sessionID string, entryCount int64, entryType string, metadata map[string]any) (int64, time.Time, error) {
	if userID == "" {
		return 0, time.Time{}, fmt.Errorf("%w: userId is required", ErrInvalidArgument)
	}

	ts := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalEntries += entryCount

	if user, exists := a.users[userID]; exists {
		user.LastSeenAt = ts
	}

	day := a.touchDayLocked(ts)
	day.EntryCount += entryCount
	day.UniqueUsers[userID] = true

	return a.totalEntries, ts, nil
}

// Snapshot reports all aggregate counters. Counting active users and
// evicting users stale beyond the active window are fused into one pass, so
// this takes the write lock despite being a read operation. Day buckets are
// never created as a side effect of reading.
func (a *Aggregator) Snapshot() models.AnalyticsSnapshot {
	ts := a.now()
	cutoff := ts.Add(-a.activeWindow)

	a.mu.Lock()
	defer a.mu.Unlock()

	activeUsers := 0
	for id, user := range a.users {
		if user.LastSeenAt.Before(cutoff) {
			delete(a.users, id)
			continue
		}
		activeUsers++
	}

	today := models.TodayStats{}
	if day, exists := a.days[utils.FormatDayKey(ts)]; exists {
		today.Entries = day.EntryCount
		today.UniqueUsers = len(day.UniqueUsers)
	}

	recentStats := make([]models.DayStatSummary, 0, a.recentDays)
	for _, dayKey := range utils.GetDayKeysForRange(ts, a.recentDays) {
		summary := models.DayStatSummary{Date: dayKey}
		if day, exists := a.days[dayKey]; exists {
			summary.Entries = day.EntryCount
			summary.UniqueUsers = len(day.UniqueUsers)
		}
		recentStats = append(recentStats, summary)
	}

	return models.AnalyticsSnapshot{
		TotalEntries: a.totalEntries,
		TotalUsers:   a.totalUsers,
		ActiveUsers:  activeUsers,
		Today:        today,
		RecentStats:  recentStats,
		Timestamp:    ts.UnixMilli(),
	}
}

// Cleanup removes user records stale beyond the user TTL and sessions older
// than the session TTL. Day stats and global counters are never touched.
// Returns eviction counts for logging.
func (a *Aggregator) Cleanup() (removedUsers, removedSessions int) {
	ts := a.now()
	userCutoff := ts.Add(-a.userTTL)
	sessionCutoff := ts.Add(-a.sessionTTL)

	a.mu.Lock()
	defer a.mu.Unlock()

	for id, user := range a.users {
		if user.LastSeenAt.Before(userCutoff) {
			delete(a.users, id)
			removedUsers++
		}
	}

	for id, session := range a.sessions {
		if session.StartedAt.Before(sessionCutoff) {
			delete(a.sessions, id)
			removedSessions++
		}
	}

	return removedUsers, removedSessions
}

// TrackedCounts reports current map sizes for health and metrics reporting.
func (a *Aggregator) TrackedCounts() (users, sessions, days int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.users), len(a.sessions), len(a.days)
}

// touchDayLocked returns the day bucket for ts, creating it on first touch.
// ASSUMES: caller holds a.mu.Lock()
func (a *Aggregator) touchDayLocked(ts time.Time) *models.DayStats {
	dayKey := utils.FormatDayKey(ts)
	day, exists := a.days[dayKey]
	if !exists {
		day = &models.DayStats{
			Date:        dayKey,
			UniqueUsers: make(map[string]bool),
		}
		a.days[dayKey] = day
	}
	return day
}

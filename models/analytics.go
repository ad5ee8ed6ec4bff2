// Package models defines telemetry aggregation data structures.
package models

import "time"

// =============================================================================
// Aggregator State Types
// =============================================================================

// UserRecord tracks a single user's liveness. Present in the active-user map
// only while fresh under the cleanup horizon; expired records are removed,
// never marked.
type UserRecord struct {
	UserID           string    `json:"userId"`
	LastSeenAt       time.Time `json:"lastSeenAt"`
	CurrentSessionID string    `json:"currentSessionId"`
}

// SessionRecord tracks one client session. CurrentSessionID on UserRecord is
// a soft reference; a session may be purged while its user stays active.
type SessionRecord struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	StartedAt time.Time `json:"startedAt"`
}

// DayStats accumulates per-calendar-day counters. Created lazily on first
// touch of a date, never pruned.
type DayStats struct {
	Date        string          `json:"date"`
	EntryCount  int64           `json:"entryCount"`
	UniqueUsers map[string]bool `json:"-"` // Set of user IDs
}

// =============================================================================
// API Response Types
// =============================================================================

// DayStatSummary is one element of the trailing 7-day series.
type DayStatSummary struct {
	Date        string `json:"date"`
	Entries     int64  `json:"entries"`
	UniqueUsers int    `json:"uniqueUsers"`
}

// TodayStats reports the current day's counters.
type TodayStats struct {
	Entries     int64 `json:"entries"`
	UniqueUsers int   `json:"uniqueUsers"`
}

// AnalyticsSnapshot is the dashboard view of all aggregate counters.
type AnalyticsSnapshot struct {
	TotalEntries int64            `json:"totalEntries"`
	TotalUsers   int64            `json:"totalUsers"`
	ActiveUsers  int              `json:"activeUsers"`
	Today        TodayStats       `json:"today"`
	RecentStats  []DayStatSummary `json:"recentStats"`
	Timestamp    int64            `json:"timestamp"`
}

// =============================================================================
// API Request Types
// =============================================================================

type InitSessionRequest struct {
	UserID *string `json:"userId,omitempty"`
}

type HeartbeatRequest struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
}

type TrackEntryRequest struct {
	UserID     string         `json:"userId"`
	SessionID  *string        `json:"sessionId,omitempty"`
	EntryCount *int64         `json:"entryCount,omitempty"`
	EntryType  *string        `json:"entryType,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

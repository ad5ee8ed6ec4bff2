package html

import (
	"testing"
	"time"

	"github.com/AtRiskMedia/pulsetrack-go/models"
	"github.com/stretchr/testify/assert"
)

func TestRenderDashboard(t *testing.T) {
	snapshot := models.AnalyticsSnapshot{
		TotalEntries: 42,
		TotalUsers:   7,
		ActiveUsers:  3,
		Today:        models.TodayStats{Entries: 11, UniqueUsers: 2},
		RecentStats: []models.DayStatSummary{
			{Date: "Sun Jun 15 2025", Entries: 11, UniqueUsers: 2},
		},
		Timestamp: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC).UnixMilli(),
	}

	page := RenderDashboard(snapshot)

	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, "http-equiv=\"refresh\"")
	assert.Contains(t, page, ">42<")
	assert.Contains(t, page, "total entries")
	assert.Contains(t, page, "Sun Jun 15 2025")
}

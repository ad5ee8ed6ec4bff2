// Package api provides HTTP handlers for analytics endpoints.
package api

import (
	"net/http"

	"github.com/AtRiskMedia/pulsetrack-go/cache"
	"github.com/AtRiskMedia/pulsetrack-go/exporter"
	"github.com/AtRiskMedia/pulsetrack-go/html"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandlers serves the aggregate counter views.
type AnalyticsHandlers struct {
	agg      *cache.Aggregator
	exporter *exporter.PrometheusExporter
}

func NewAnalyticsHandlers(agg *cache.Aggregator, exp *exporter.PrometheusExporter) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		agg:      agg,
		exporter: exp,
	}
}

// SnapshotHandler handles GET /api/v1/analytics/snapshot
func (h *AnalyticsHandlers) SnapshotHandler(c *gin.Context) {
	snapshot := h.agg.Snapshot()

	if h.exporter != nil {
		_, sessions, _ := h.agg.TrackedCounts()
		h.exporter.UpdateFromSnapshot(snapshot, sessions)
	}

	c.JSON(http.StatusOK, snapshot)
}

// DashboardHandler handles GET /dashboard
func (h *AnalyticsHandlers) DashboardHandler(c *gin.Context) {
	snapshot := h.agg.Snapshot()

	if h.exporter != nil {
		_, sessions, _ := h.agg.TrackedCounts()
		h.exporter.UpdateFromSnapshot(snapshot, sessions)
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html.RenderDashboard(snapshot)))
}

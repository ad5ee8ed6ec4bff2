// Package exporter publishes aggregate telemetry counters as Prometheus metrics.
package exporter

import (
	"github.com/AtRiskMedia/pulsetrack-go/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PrometheusExporter struct {
	totalEntries    prometheus.Gauge
	totalUsers      prometheus.Gauge
	activeUsers     prometheus.Gauge
	trackedSessions prometheus.Gauge
	trackRequests   *prometheus.CounterVec
}

func NewPrometheusExporter() *PrometheusExporter {
	totalEntries := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pulsetrack_total_entries",
		Help: "Running total of tracked usage entries",
	})

	totalUsers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pulsetrack_total_users",
		Help: "Number of distinct users ever minted",
	})

	activeUsers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pulsetrack_active_users",
		Help: "Users seen within the active window",
	})

	trackedSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pulsetrack_tracked_sessions",
		Help: "Session records currently held in memory",
	})

	trackRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsetrack_track_requests_total",
			Help: "Track requests received, by entry type",
		},
		[]string{"entry_type"},
	)

	prometheus.MustRegister(totalEntries)
	prometheus.MustRegister(totalUsers)
	prometheus.MustRegister(activeUsers)
	prometheus.MustRegister(trackedSessions)
	prometheus.MustRegister(trackRequests)

	return &PrometheusExporter{
		totalEntries:    totalEntries,
		totalUsers:      totalUsers,
		activeUsers:     activeUsers,
		trackedSessions: trackedSessions,
		trackRequests:   trackRequests,
	}
}

// UpdateFromSnapshot mirrors aggregate counters into the registered gauges.
func (p *PrometheusExporter) UpdateFromSnapshot(snap models.AnalyticsSnapshot, sessions int) {
	p.totalEntries.Set(float64(snap.TotalEntries))
	p.totalUsers.Set(float64(snap.TotalUsers))
	p.activeUsers.Set(float64(snap.ActiveUsers))
	p.trackedSessions.Set(float64(sessions))
}

// ObserveTrackRequest counts one track request for the given entry type.
func (p *PrometheusExporter) ObserveTrackRequest(entryType string) {
	p.trackRequests.WithLabelValues(entryType).Inc()
}

// Handler returns the /metrics endpoint handler.
func (p *PrometheusExporter) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Package api provides HTTP handlers for telemetry ingestion endpoints.
package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/AtRiskMedia/pulsetrack-go/cache"
	"github.com/AtRiskMedia/pulsetrack-go/exporter"
	"github.com/AtRiskMedia/pulsetrack-go/models"
	"github.com/gin-gonic/gin"
)

// TelemetryHandlers binds the aggregator and metrics exporter to the
// ingestion routes.
type TelemetryHandlers struct {
	agg      *cache.Aggregator
	exporter *exporter.PrometheusExporter
}

func NewTelemetryHandlers(agg *cache.Aggregator, exp *exporter.PrometheusExporter) *TelemetryHandlers {
	return &TelemetryHandlers{
		agg:      agg,
		exporter: exp,
	}
}

// InitSessionHandler handles POST /api/v1/telemetry/init
func (h *TelemetryHandlers) InitSessionHandler(c *gin.Context) {
	var req models.InitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	existingUserID := ""
	if req.UserID != nil {
		existingUserID = *req.UserID
	}

	userID, sessionID, ts := h.agg.InitSession(existingUserID)

	c.JSON(http.StatusOK, gin.H{
		"userId":    userID,
		"sessionId": sessionID,
		"timestamp": ts.UnixMilli(),
	})
}

// HeartbeatHandler handles POST /api/v1/telemetry/heartbeat
func (h *TelemetryHandlers) HeartbeatHandler(c *gin.Context) {
	var req models.HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	ts, err := h.agg.Heartbeat(req.UserID, req.SessionID)
	if err != nil {
		if errors.Is(err, cache.ErrInvalidArgument) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("ERROR: Heartbeat failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"timestamp": ts.UnixMilli(),
	})
}

// TrackEntryHandler handles POST /api/v1/telemetry/track
func (h *TelemetryHandlers) TrackEntryHandler(c *gin.Context) {
	var req models.TrackEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	sessionID := ""
	if req.SessionID != nil {
		sessionID = *req.SessionID
	}

	// Count defaults to 1 for a bare track call. Negative counts pass
	// through unclamped so clients can issue corrections.
	entryCount := int64(1)
	if req.EntryCount != nil {
		entryCount = *req.EntryCount
	}

	entryType := "log"
	if req.EntryType != nil && *req.EntryType != "" {
		entryType = *req.EntryType
	}

	totalEntries, ts, err := h.agg.TrackEntry(req.UserID, sessionID, entryCount, entryType, req.Metadata)
	if err != nil {
		if errors.Is(err, cache.ErrInvalidArgument) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("ERROR: TrackEntry failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if h.exporter != nil {
		h.exporter.ObserveTrackRequest(entryType)
	}

	c.JSON(http.StatusOK, gin.H{
		"totalEntries": totalEntries,
		"timestamp":    ts.UnixMilli(),
	})
}

package api

import (
	"net/http"
	"time"

	"github.com/AtRiskMedia/pulsetrack-go/cache"
	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// HealthHandler handles GET /api/v1/health
func HealthHandler(agg *cache.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, sessions, days := agg.TrackedCounts()
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"uptimeSeconds":   int64(time.Since(startedAt).Seconds()),
			"trackedUsers":    users,
			"trackedSessions": sessions,
			"trackedDays":     days,
		})
	}
}
